package metadata

import (
	"testing"

	"github.com/ktrn/tilesplit/gltfdoc"
	"github.com/ktrn/tilesplit/ifcbuild"
)

func TestAddFeatureIDs(t *testing.T) {
	attrs := gltfdoc.NewAttributeMap()
	attrs.Set("POSITION", 0)

	doc := &gltfdoc.Document{
		Accessors: []gltfdoc.Accessor{{Count: 3, Type: gltfdoc.TypeVec3, ComponentType: gltfdoc.ComponentTypeFloat}},
		Meshes: []gltfdoc.Mesh{
			{Name: "wall-guid", Primitives: []gltfdoc.Primitive{{Attributes: attrs}}},
		},
	}

	batchMapping := ifcbuild.BatchTableMapping{
		"wall-guid0": {BatchID: 7, MeshIndex: 0},
	}
	meshNameMapping := map[string]string{"wall-guid": "Wall-1"}

	buf := addFeatureIDs(doc, batchMapping, meshNameMapping)
	if len(buf) != 3*4 {
		t.Fatalf("len(buf) = %d, want %d (3 vertices x 4 bytes)", len(buf), 3*4)
	}

	if doc.Meshes[0].Name != "Wall-1" {
		t.Errorf("Meshes[0].Name = %q, want Wall-1 (renamed back)", doc.Meshes[0].Name)
	}

	prim := doc.Meshes[0].Primitives[0]
	featureAccessor, ok := prim.Attributes.Get("_FEATURE_ID_0")
	if !ok {
		t.Fatal("primitive missing _FEATURE_ID_0 attribute")
	}
	if doc.Accessors[featureAccessor].Count != 3 {
		t.Errorf("feature accessor Count = %d, want 3", doc.Accessors[featureAccessor].Count)
	}
	if doc.Accessors[featureAccessor].ComponentType != gltfdoc.ComponentTypeFloat {
		t.Errorf("feature accessor ComponentType = %v, want Float", doc.Accessors[featureAccessor].ComponentType)
	}

	ext, ok := prim.Extensions["EXT_mesh_features"]
	if !ok {
		t.Fatal("primitive missing EXT_mesh_features extension")
	}
	extMap := ext.(map[string]any)
	featureIDs := extMap["featureIds"].([]any)
	if len(featureIDs) != 1 {
		t.Fatalf("len(featureIds) = %d, want 1", len(featureIDs))
	}
}

func TestAddFeatureIDsSkipsUnmappedMesh(t *testing.T) {
	doc := &gltfdoc.Document{
		Meshes: []gltfdoc.Mesh{{Name: "unknown", Primitives: []gltfdoc.Primitive{{Attributes: gltfdoc.NewAttributeMap()}}}},
	}
	buf := addFeatureIDs(doc, ifcbuild.BatchTableMapping{}, map[string]string{})
	if buf != nil {
		t.Errorf("buf = %v, want nil for a mesh with no batch-table mapping", buf)
	}
}
