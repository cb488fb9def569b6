package preview

import (
	"math"
	"testing"

	"github.com/ktrn/tilesplit/gltfdoc"
)

func triangleDoc(translation *[3]float32) *gltfdoc.Document {
	attrs := gltfdoc.NewAttributeMap()
	attrs.Set("POSITION", 0)

	scene := 0
	return &gltfdoc.Document{
		Scene:  &scene,
		Scenes: []gltfdoc.Scene{{Nodes: []int{0}}},
		Nodes: []gltfdoc.Node{
			{Mesh: intPtr(0), Translation: translation},
		},
		Meshes: []gltfdoc.Mesh{
			{Primitives: []gltfdoc.Primitive{{Attributes: attrs}}},
		},
		Accessors: []gltfdoc.Accessor{
			{Count: 3, Type: gltfdoc.TypeVec3, ComponentType: gltfdoc.ComponentTypeFloat, BufferView: intPtr(0)},
		},
		BufferViews: []gltfdoc.BufferView{{Buffer: 0, ByteLength: 36}},
		Buffers:     []gltfdoc.Buffer{{ByteLength: 36, Data: vertexBytes}},
		Blob:        vertexBytes,
	}
}

var vertexBytes = vec3Bytes([3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})

func intPtr(v int) *int { return &v }

func vec3Bytes(vs [3][3]float32) []byte {
	out := make([]byte, 0, 36)
	for _, v := range vs {
		for _, f := range v {
			bits := math.Float32bits(f)
			out = append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
		}
	}
	return out
}

func TestExtractTrianglesAppliesNodeTranslation(t *testing.T) {
	doc := triangleDoc(&[3]float32{10, 0, 0})
	tris, err := extractTriangles(doc)
	if err != nil {
		t.Fatalf("extractTriangles: %v", err)
	}
	if len(tris) != 1 {
		t.Fatalf("len(tris) = %d, want 1", len(tris))
	}
	if tris[0].v0 != [3]float32{10, 0, 0} {
		t.Errorf("v0 = %v, want translated origin", tris[0].v0)
	}
	if tris[0].v1 != [3]float32{11, 0, 0} {
		t.Errorf("v1 = %v, want translated", tris[0].v1)
	}
}

func TestExtractTrianglesDefaultMaterialIsGrey(t *testing.T) {
	doc := triangleDoc(nil)
	tris, err := extractTriangles(doc)
	if err != nil {
		t.Fatalf("extractTriangles: %v", err)
	}
	want := [4]float32{0.5, 0.5, 0.5, 1}
	if tris[0].color != want {
		t.Errorf("color = %v, want %v", tris[0].color, want)
	}
}

func TestBoundingBoxEmptyReturnsFalse(t *testing.T) {
	_, _, ok := boundingBox(nil)
	if ok {
		t.Error("boundingBox(nil) should report ok=false")
	}
}

func TestBoundingBoxSpansVertices(t *testing.T) {
	tris := []triangle{{
		v0: [3]float32{-1, -2, -3},
		v1: [3]float32{4, 5, 6},
		v2: [3]float32{0, 0, 0},
	}}
	min, max, ok := boundingBox(tris)
	if !ok {
		t.Fatal("boundingBox should report ok=true")
	}
	if min != [3]float32{-1, -2, -3} {
		t.Errorf("min = %v", min)
	}
	if max != [3]float32{4, 5, 6} {
		t.Errorf("max = %v", max)
	}
}
