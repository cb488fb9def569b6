package preview

import (
	"fmt"

	"github.com/ktrn/tilesplit/common"
	"github.com/ktrn/tilesplit/gltfdoc"
)

// decodedTexture is a material's base color texture, decoded to raw RGBA
// once per material rather than once per pixel.
type decodedTexture struct {
	pix           []byte
	width, height int
}

// at samples the nearest texel for a UV pair, wrapping (glTF's default
// REPEAT behavior) rather than clamping.
func (t *decodedTexture) at(u, v float32) [4]float32 {
	x := wrapTexel(u, t.width)
	y := wrapTexel(v, t.height)
	i := (y*t.width + x) * 4
	return [4]float32{
		float32(t.pix[i]) / 255,
		float32(t.pix[i+1]) / 255,
		float32(t.pix[i+2]) / 255,
		float32(t.pix[i+3]) / 255,
	}
}

func wrapTexel(coord float32, size int) int {
	if size <= 0 {
		return 0
	}
	f := coord - float32(int(coord))
	if f < 0 {
		f += 1
	}
	x := int(f * float32(size))
	if x >= size {
		x = size - 1
	}
	if x < 0 {
		x = 0
	}
	return x
}

// resolveTexture decodes a material's base color texture, if it has one.
// Returns nil, nil for a material with no base color texture (flat-color
// shading is used instead).
func resolveTexture(doc *gltfdoc.Document, materialIndex *int) (*decodedTexture, error) {
	if materialIndex == nil || *materialIndex >= len(doc.Materials) {
		return nil, nil
	}
	mat := doc.Materials[*materialIndex]
	if mat.PbrMetallicRoughness == nil || mat.PbrMetallicRoughness.BaseColorTexture == nil {
		return nil, nil
	}
	texIndex := mat.PbrMetallicRoughness.BaseColorTexture.Index
	if texIndex < 0 || texIndex >= len(doc.Textures) {
		return nil, nil
	}
	tex := doc.Textures[texIndex]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, nil
	}
	img := doc.Images[*tex.Source]
	if img.BufferView == nil {
		return nil, nil // external URI textures aren't resolved; tile GLBs embed images
	}
	bv := doc.BufferViews[*img.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("preview: image bufferView references out-of-range buffer %d", bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]

	imported := &common.ImportedTexture{Name: img.Name, Data: data, MimeType: img.MimeType}
	pix, width, height, err := imported.Decode()
	if err != nil {
		return nil, fmt.Errorf("preview: decode base color texture: %w", err)
	}
	return &decodedTexture{pix: pix, width: int(width), height: int(height)}, nil
}
