package splitter

import (
	"testing"

	"github.com/ktrn/tilesplit/gltfdoc"
)

func intPtr(v int) *int { return &v }

// meshDoc builds a two-node document: node 0 has a mesh with an indexed
// primitive and a material with a base color texture; node 1 is a child of
// node 0 with its own skin. Every resource is deliberately given a distinct
// original index so a dedup bug would show up as a count mismatch.
func meshDoc() *gltfdoc.Document {
	attrs := gltfdoc.NewAttributeMap()
	attrs.Set("POSITION", 0)

	matIdx := 0
	texIdx := 0
	indices := 1
	skinIdx := 0

	return &gltfdoc.Document{
		Nodes: []gltfdoc.Node{
			{Mesh: intPtr(0), Children: []int{1}},
			{Skin: &skinIdx},
		},
		Meshes: []gltfdoc.Mesh{
			{Primitives: []gltfdoc.Primitive{{Attributes: attrs, Material: &matIdx, Indices: &indices}}},
		},
		Materials: []gltfdoc.Material{
			{PbrMetallicRoughness: &gltfdoc.PbrMetallicRoughness{BaseColorTexture: &gltfdoc.TextureInfo{Index: texIdx}}},
		},
		Textures: []gltfdoc.Texture{{Source: intPtr(0)}},
		Images:   []gltfdoc.Image{{BufferView: intPtr(1)}},
		Accessors: []gltfdoc.Accessor{
			{BufferView: intPtr(0)}, // POSITION
			{BufferView: intPtr(0)}, // indices
		},
		BufferViews: []gltfdoc.BufferView{
			{Buffer: 0, ByteLength: 12},
			{Buffer: 0, ByteLength: 4},
		},
		Buffers: []gltfdoc.Buffer{{ByteLength: 16, Data: make([]byte, 16)}},
		Skins: []gltfdoc.Skin{
			{InverseBindMatrices: intPtr(0), Joints: []int{1}},
		},
	}
}

// TestCollectorCollectsEveryAccessorsBufferViewAndBuffer pins the
// collector invariant: every accessor referenced by a collected primitive
// or skin has its bufferView and buffer collected too.
func TestCollectorCollectsEveryAccessorsBufferViewAndBuffer(t *testing.T) {
	doc := meshDoc()
	c := NewCollector(doc)
	info := newCollectedInfo()
	c.Collect(info, 0, 10)

	if len(info.Accessors) != 2 {
		t.Fatalf("len(Accessors) = %d, want 2 (POSITION + indices)", len(info.Accessors))
	}
	for i, acc := range info.Accessors {
		if acc.BufferView == nil {
			continue
		}
		if *acc.BufferView < 0 || *acc.BufferView >= len(info.BufferViews) {
			t.Errorf("accessor %d references bufferView %d out of %d collected", i, *acc.BufferView, len(info.BufferViews))
		}
	}
	if len(info.BufferViews) == 0 {
		t.Fatal("expected bufferViews to be collected")
	}
	if len(info.Buffers) == 0 {
		t.Fatal("expected buffers to be collected")
	}

	// The skin's inverse-bind accessor must also be collected.
	if len(info.Skins) != 1 || info.Skins[0].InverseBindMatrices == nil {
		t.Fatalf("skin not collected: %+v", info.Skins)
	}
}

func TestCollectorCollectsMaterialTextureChain(t *testing.T) {
	doc := meshDoc()
	c := NewCollector(doc)
	info := newCollectedInfo()
	c.Collect(info, 0, 10)

	if len(info.Materials) != 1 {
		t.Fatalf("len(Materials) = %d, want 1", len(info.Materials))
	}
	if len(info.Textures) != 1 {
		t.Fatalf("len(Textures) = %d, want 1", len(info.Textures))
	}
	if len(info.Images) != 1 {
		t.Fatalf("len(Images) = %d, want 1", len(info.Images))
	}
}

func TestCollectorStopsAtWindowSize(t *testing.T) {
	doc := meshDoc()
	c := NewCollector(doc)
	info := newCollectedInfo()
	c.Collect(info, 0, 1)

	if len(info.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1 (window size caps the DFS)", len(info.Nodes))
	}
}

func TestCollectorDedupsRevisitedNode(t *testing.T) {
	doc := meshDoc()
	doc.Nodes[1].Children = []int{0} // cycle back to the root
	c := NewCollector(doc)
	info := newCollectedInfo()
	c.Collect(info, 0, 10)

	if len(info.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2 (cycle must not duplicate node 0)", len(info.Nodes))
	}
}
