package gltfdoc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// triangleGLBBytes builds a minimal valid GLB: one node, one mesh, one
// POSITION accessor over a single 36-byte bufferView/buffer.
func triangleGLBBytes(t *testing.T) []byte {
	t.Helper()
	attrs := NewAttributeMap()
	attrs.Set("POSITION", 0)

	blob := make([]byte, 36)
	for i := range blob {
		blob[i] = byte(i + 1)
	}

	scene := 0
	doc := &Document{
		Asset:  Asset{Version: "2.0"},
		Scene:  &scene,
		Scenes: []Scene{{Nodes: []int{0}}},
		Nodes:  []Node{{Mesh: intPtrRT(0)}},
		Meshes: []Mesh{{Primitives: []Primitive{{Attributes: attrs}}}},
		Accessors: []Accessor{
			{BufferView: intPtrRT(0), Count: 3, Type: TypeVec3, ComponentType: ComponentTypeFloat},
		},
		BufferViews: []BufferView{{Buffer: 0, ByteLength: 36}},
		Buffers:     []Buffer{{ByteLength: 36, Data: blob}},
		Blob:        blob,
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return out
}

func intPtrRT(v int) *int { return &v }

// TestRoundTripPreservesStructureAndBlob pins the round-trip property:
// loading a GLB and writing it back unchanged produces identical
// accessor/bufferView/buffer counts and byte-identical blob content.
func TestRoundTripPreservesStructureAndBlob(t *testing.T) {
	data := triangleGLBBytes(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "tri.glb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	reSaved := filepath.Join(dir, "tri_resaved.glb")
	if err := doc.Save(reSaved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	doc2, err := Load(reSaved)
	if err != nil {
		t.Fatalf("Load resaved: %v", err)
	}

	if len(doc.Accessors) != len(doc2.Accessors) {
		t.Errorf("accessor count changed: %d -> %d", len(doc.Accessors), len(doc2.Accessors))
	}
	if len(doc.BufferViews) != len(doc2.BufferViews) {
		t.Errorf("bufferView count changed: %d -> %d", len(doc.BufferViews), len(doc2.BufferViews))
	}
	if len(doc.Buffers) != len(doc2.Buffers) {
		t.Errorf("buffer count changed: %d -> %d", len(doc.Buffers), len(doc2.Buffers))
	}
	if !bytes.Equal(doc.Blob, doc2.Blob) {
		t.Errorf("blob changed across round-trip: %v -> %v", doc.Blob, doc2.Blob)
	}
}
