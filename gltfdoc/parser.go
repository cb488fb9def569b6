package gltfdoc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	qgltf "github.com/qmuntal/gltf"
)

// Errors returned while loading a glTF/GLB document.
var (
	ErrInvalidVersion     = errors.New("gltfdoc: invalid glTF version, must be 2.x")
	ErrInvalidGLBMagic    = errors.New("gltfdoc: invalid GLB magic number")
	ErrInvalidGLBVersion  = errors.New("gltfdoc: invalid GLB version, must be 2")
	ErrMissingJSONChunk   = errors.New("gltfdoc: GLB file missing JSON chunk")
	ErrBufferSizeMismatch = errors.New("gltfdoc: buffer size mismatch")
	ErrSparseUnsupported  = errors.New("gltfdoc: sparse accessors are not supported")
	ErrNoDocument         = errors.New("gltfdoc: no document loaded")
)

// baseDirs tracks the directory a document was loaded from, used to resolve
// relative buffer/image URIs. Not part of the JSON document, so it lives in
// a side table keyed by document pointer rather than on Document itself —
// keeping Document a plain, directly-marshalable value.
var baseDirs = map[*Document]string{}

// Load reads and parses a glTF or GLB file from path, auto-detecting the
// format from its extension (falling back to sniffing the GLB magic
// number for extensionless paths). Buffer resolution (GLB BIN chunk,
// external .bin files, base64 data URIs) is delegated to qmuntal/gltf's
// decoder rather than hand-rolled here; this package's own json.Unmarshal
// pass over the same bytes stays the source of truth for the document's
// structure, so AttributeMap's insertion-order decoding is unaffected.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gltfdoc: read %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	ext := strings.ToLower(filepath.Ext(path))
	isGLB := ext == ".glb" || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == GLBMagic)

	doc, err := decode(data, isGLB, path)
	if err != nil {
		return nil, err
	}
	baseDirs[doc] = baseDir
	return doc, nil
}

// Decode parses a glTF document from an in-memory reader. Unlike Load,
// there is no backing file path, so qmuntal/gltf can only resolve
// GLB-embedded and data-URI buffers here — a document with a relative
// external .bin URI needs Load instead. baseDir is kept for API
// compatibility with callers that track it for other relative references.
func Decode(r io.Reader, isGLB bool, baseDir string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gltfdoc: read: %w", err)
	}
	doc, err := decode(data, isGLB, "")
	if err != nil {
		return nil, err
	}
	baseDirs[doc] = baseDir
	return doc, nil
}

// decode parses jsonData structurally via this package's own ordered
// json.Unmarshal, then resolves every Buffer's Data by decoding the same
// bytes through qmuntal/gltf and copying its resolved buffer payloads over
// by index (buffer order is positional per the glTF spec, so this is a
// safe match). path is the file backing this document, used by qmuntal to
// resolve external buffer URIs; empty when decoding an in-memory reader
// with no backing file.
func decode(data []byte, isGLB bool, path string) (*Document, error) {
	var jsonData []byte

	if isGLB {
		var err error
		jsonData, err = splitGLB(data)
		if err != nil {
			return nil, err
		}
	} else {
		jsonData = data
	}

	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("gltfdoc: parse JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, ErrInvalidVersion
	}

	if err := resolveBuffers(&doc, data, path); err != nil {
		return nil, fmt.Errorf("gltfdoc: resolve buffers: %w", err)
	}

	return &doc, nil
}

// splitGLB returns a GLB binary container's JSON chunk. The glTF spec
// requires the JSON chunk to be the first chunk in the container, so this
// only needs to read that one chunk; the BIN chunk (if any) is left to
// qmuntal/gltf's own decode of the same bytes in resolveBuffers.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func splitGLB(data []byte) (jsonData []byte, err error) {
	if len(data) < 12 {
		return nil, errors.New("gltfdoc: GLB file too small")
	}

	r := bytes.NewReader(data)

	var header GLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("gltfdoc: read GLB header: %w", err)
	}
	if header.Magic != GLBMagic {
		return nil, ErrInvalidGLBMagic
	}
	if header.Version != GLBVersion {
		return nil, ErrInvalidGLBVersion
	}

	var chunkHeader GLBChunkHeader
	if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
		return nil, fmt.Errorf("gltfdoc: read chunk header: %w", err)
	}
	if chunkHeader.ChunkType != GLBChunkJSON {
		return nil, ErrMissingJSONChunk
	}

	jsonData = make([]byte, chunkHeader.ChunkLength)
	if _, err := io.ReadFull(r, jsonData); err != nil {
		return nil, fmt.Errorf("gltfdoc: read chunk data: %w", err)
	}
	return jsonData, nil
}

// resolveBuffers fills in doc.Buffers[i].Data (and doc.Blob for an embedded
// buffer 0) by decoding data through qmuntal/gltf, which already implements
// GLB BIN chunk extraction, external .bin file loading, and base64 data-URI
// decoding — the three cases this package used to hand-roll. doc's own
// structure, already parsed by the caller, is left untouched; only buffer
// payloads are copied over.
func resolveBuffers(doc *Document, data []byte, path string) error {
	var qdoc qgltf.Document

	if path != "" {
		opened, err := qgltf.Open(path)
		if err != nil {
			return err
		}
		qdoc = *opened
	} else if err := qgltf.NewDecoder(bytes.NewReader(data)).Decode(&qdoc); err != nil {
		return err
	}

	if len(qdoc.Buffers) != len(doc.Buffers) {
		return fmt.Errorf("buffer count mismatch: document declares %d, resolved %d", len(doc.Buffers), len(qdoc.Buffers))
	}
	for i := range doc.Buffers {
		doc.Buffers[i].Data = qdoc.Buffers[i].Data
		if len(doc.Buffers[i].Data) < doc.Buffers[i].ByteLength {
			return fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
		}
	}

	if len(doc.Buffers) > 0 && doc.Buffers[0].URI == "" {
		doc.Blob = doc.Buffers[0].Data
	}

	return nil
}

// --- Typed accessor reads ---

// ReadAccessorData returns the raw, de-interleaved bytes for an accessor.
func (doc *Document) ReadAccessorData(accessorIndex int) ([]byte, error) {
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, fmt.Errorf("gltfdoc: accessor index %d out of range", accessorIndex)
	}
	acc := &doc.Accessors[accessorIndex]

	if acc.Sparse != nil {
		return nil, ErrSparseUnsupported
	}
	if acc.BufferView == nil {
		return nil, errors.New("gltfdoc: accessor has no bufferView")
	}

	bv := &doc.BufferViews[*acc.BufferView]
	buf := &doc.Buffers[bv.Buffer]

	componentSize := ComponentTypeSize(acc.ComponentType)
	componentCount := AccessorTypeComponentCount(acc.Type)
	elementSize := componentSize * componentCount

	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	bufferOffset := bv.ByteOffset + acc.ByteOffset

	result := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		srcOffset := bufferOffset + i*stride
		dstOffset := i * elementSize
		copy(result[dstOffset:dstOffset+elementSize], buf.Data[srcOffset:srcOffset+elementSize])
	}

	return result, nil
}

// ReadVec2Accessor reads an accessor as VEC2 FLOAT data.
func (doc *Document) ReadVec2Accessor(accessorIndex int) ([][2]float32, error) {
	acc := &doc.Accessors[accessorIndex]
	if acc.Type != TypeVec2 || acc.ComponentType != ComponentTypeFloat {
		return nil, fmt.Errorf("gltfdoc: accessor is not VEC2 FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	data, err := doc.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	result := make([][2]float32, acc.Count)
	r := bytes.NewReader(data)
	for i := 0; i < acc.Count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ReadVec3Accessor reads an accessor as VEC3 FLOAT data.
func (doc *Document) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	acc := &doc.Accessors[accessorIndex]
	if acc.Type != TypeVec3 || acc.ComponentType != ComponentTypeFloat {
		return nil, fmt.Errorf("gltfdoc: accessor is not VEC3 FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	data, err := doc.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	result := make([][3]float32, acc.Count)
	r := bytes.NewReader(data)
	for i := 0; i < acc.Count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ReadVec4Accessor reads an accessor as VEC4 FLOAT data.
func (doc *Document) ReadVec4Accessor(accessorIndex int) ([][4]float32, error) {
	acc := &doc.Accessors[accessorIndex]
	if acc.Type != TypeVec4 || acc.ComponentType != ComponentTypeFloat {
		return nil, fmt.Errorf("gltfdoc: accessor is not VEC4 FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	data, err := doc.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	result := make([][4]float32, acc.Count)
	r := bytes.NewReader(data)
	for i := 0; i < acc.Count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ReadScalarAccessor reads an accessor as SCALAR FLOAT data.
func (doc *Document) ReadScalarAccessor(accessorIndex int) ([]float32, error) {
	acc := &doc.Accessors[accessorIndex]
	if acc.Type != TypeScalar || acc.ComponentType != ComponentTypeFloat {
		return nil, fmt.Errorf("gltfdoc: accessor is not SCALAR FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	data, err := doc.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	result := make([]float32, acc.Count)
	r := bytes.NewReader(data)
	for i := 0; i < acc.Count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ReadMat4Accessor reads an accessor as MAT4 FLOAT data.
func (doc *Document) ReadMat4Accessor(accessorIndex int) ([][16]float32, error) {
	acc := &doc.Accessors[accessorIndex]
	if acc.Type != TypeMat4 || acc.ComponentType != ComponentTypeFloat {
		return nil, fmt.Errorf("gltfdoc: accessor is not MAT4 FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	data, err := doc.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	result := make([][16]float32, acc.Count)
	r := bytes.NewReader(data)
	for i := 0; i < acc.Count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ReadIndicesAccessor reads an accessor as triangle index data, widening
// UNSIGNED_BYTE/SHORT/INT component types to a uniform []uint32.
func (doc *Document) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc := &doc.Accessors[accessorIndex]
	if acc.Type != TypeScalar {
		return nil, fmt.Errorf("gltfdoc: index accessor is not SCALAR: type=%s", acc.Type)
	}
	data, err := doc.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, acc.Count)
	r := bytes.NewReader(data)

	switch acc.ComponentType {
	case ComponentTypeUnsignedByte:
		for i := 0; i < acc.Count; i++ {
			var v uint8
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			result[i] = uint32(v)
		}
	case ComponentTypeUnsignedShort:
		for i := 0; i < acc.Count; i++ {
			var v uint16
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			result[i] = uint32(v)
		}
	case ComponentTypeUnsignedInt:
		if err := binary.Read(r, binary.LittleEndian, &result); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("gltfdoc: unsupported index component type: %d", acc.ComponentType)
	}

	return result, nil
}

// ReadJointsAccessor reads an accessor as VEC4 joint indices.
func (doc *Document) ReadJointsAccessor(accessorIndex int) ([][4]uint32, error) {
	acc := &doc.Accessors[accessorIndex]
	if acc.Type != TypeVec4 {
		return nil, fmt.Errorf("gltfdoc: joints accessor is not VEC4: type=%s", acc.Type)
	}
	data, err := doc.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([][4]uint32, acc.Count)
	r := bytes.NewReader(data)

	switch acc.ComponentType {
	case ComponentTypeUnsignedByte:
		for i := 0; i < acc.Count; i++ {
			var v [4]uint8
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			result[i] = [4]uint32{uint32(v[0]), uint32(v[1]), uint32(v[2]), uint32(v[3])}
		}
	case ComponentTypeUnsignedShort:
		for i := 0; i < acc.Count; i++ {
			var v [4]uint16
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			result[i] = [4]uint32{uint32(v[0]), uint32(v[1]), uint32(v[2]), uint32(v[3])}
		}
	default:
		return nil, fmt.Errorf("gltfdoc: unsupported joints component type: %d", acc.ComponentType)
	}

	return result, nil
}

// ComponentTypeSize returns the byte size of one component of the given
// component type.
func ComponentTypeSize(componentType int) int {
	switch componentType {
	case ComponentTypeByte, ComponentTypeUnsignedByte:
		return 1
	case ComponentTypeShort, ComponentTypeUnsignedShort:
		return 2
	case ComponentTypeUnsignedInt, ComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// AccessorTypeComponentCount returns the number of components an accessor
// element type is made of.
func AccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	default:
		return 0
	}
}
