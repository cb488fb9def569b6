package metadata

import (
	"testing"

	"github.com/ktrn/tilesplit/gltfdoc"
)

func TestFormatPropertyValue(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"whole float", float64(3), "3"},
		{"fractional float", 3.5, "3.5"},
		{"map", map[string]any{"a": float64(1)}, `{"a":1}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := formatPropertyValue(c.in); got != c.want {
				t.Errorf("formatPropertyValue(%v) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestBuildStructuralMetadata(t *testing.T) {
	doc := &gltfdoc.Document{Buffers: []gltfdoc.Buffer{{ByteLength: 100}}}
	batchTable := map[string][]any{
		"batchId":  {float64(0), float64(1)},
		"globalId": {"a-guid", "b-guid"},
		"empty":    {},
	}

	metadata, buf := buildStructuralMetadata(doc, batchTable, []string{"batchId", "globalId", "empty"})
	if len(buf) == 0 {
		t.Fatal("expected non-empty buffer data")
	}
	if len(doc.Accessors) != 4 {
		t.Fatalf("len(Accessors) = %d, want 4 (2 columns x 2 accessors each)", len(doc.Accessors))
	}
	if len(doc.BufferViews) != 4 {
		t.Fatalf("len(BufferViews) = %d, want 4", len(doc.BufferViews))
	}
	for _, bv := range doc.BufferViews {
		if bv.Buffer != 1 {
			t.Errorf("BufferView.Buffer = %d, want 1 (the not-yet-appended metadata buffer)", bv.Buffer)
		}
	}

	schema := metadata["schema"].(map[string]any)
	classes := schema["classes"].(map[string]any)
	classBatchTable := classes["class_batch_table"].(map[string]any)
	props := classBatchTable["properties"].(map[string]any)
	if _, ok := props["empty"]; ok {
		t.Error("empty column should not appear in schema properties")
	}
	if _, ok := props["batchId"]; !ok {
		t.Error("batchId column should appear in schema properties")
	}

	tables := metadata["propertyTables"].([]any)
	if len(tables) != 1 {
		t.Fatalf("len(propertyTables) = %d, want 1", len(tables))
	}
	table := tables[0].(map[string]any)
	if table["count"] != 2 {
		t.Errorf("propertyTables[0].count = %v, want 2", table["count"])
	}
}

func TestAddStructuralMetadataToGltf(t *testing.T) {
	doc := &gltfdoc.Document{Buffers: []gltfdoc.Buffer{{ByteLength: 10}}}
	addStructuralMetadataToGltf(doc, "meta.bin", map[string]any{"schema": "x"}, []byte{1, 2, 3})

	if len(doc.Buffers) != 2 {
		t.Fatalf("len(Buffers) = %d, want 2", len(doc.Buffers))
	}
	if doc.Buffers[1].URI != "meta.bin" || doc.Buffers[1].ByteLength != 3 {
		t.Errorf("Buffers[1] = %+v, want URI=meta.bin ByteLength=3", doc.Buffers[1])
	}

	found := map[string]bool{}
	for _, ext := range doc.ExtensionsUsed {
		found[ext] = true
	}
	if !found["EXT_structural_metadata"] || !found["EXT_mesh_features"] {
		t.Errorf("ExtensionsUsed = %v, want both EXT_structural_metadata and EXT_mesh_features", doc.ExtensionsUsed)
	}
	if doc.Extensions["EXT_structural_metadata"] == nil {
		t.Error("doc.Extensions[EXT_structural_metadata] not set")
	}
}
