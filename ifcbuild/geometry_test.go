package ifcbuild

import (
	"testing"

	"github.com/ktrn/tilesplit/gltfdoc"
)

func TestNormalizeMaterialGreyFallback(t *testing.T) {
	got := normalizeMaterial(Material{Name: "none", Diffuse: [4]float32{0, 0, 0, 0}})
	want := [4]float32{0.5, 0.5, 0.5, 1}
	if got.Diffuse != want {
		t.Errorf("Diffuse = %v, want %v", got.Diffuse, want)
	}
}

func TestNormalizeMaterialRescales255Range(t *testing.T) {
	got := normalizeMaterial(Material{Name: "red", Diffuse: [4]float32{255, 0, 0, 1}})
	want := [4]float32{1, 0, 0, 1}
	if got.Diffuse != want {
		t.Errorf("Diffuse = %v, want %v", got.Diffuse, want)
	}
}

func TestNormalizeMaterialLeavesValidColorAlone(t *testing.T) {
	got := normalizeMaterial(Material{Name: "blue", Diffuse: [4]float32{0, 0, 1, 1}})
	want := [4]float32{0, 0, 1, 1}
	if got.Diffuse != want {
		t.Errorf("Diffuse = %v, want %v", got.Diffuse, want)
	}
}

func TestAlphaMode(t *testing.T) {
	if got := alphaMode([4]float32{1, 1, 1, 1}); got != gltfdoc.AlphaModeOpaque {
		t.Errorf("alphaMode(opaque) = %q, want OPAQUE", got)
	}
	if got := alphaMode([4]float32{1, 1, 1, 0.5}); got != gltfdoc.AlphaModeBlend {
		t.Errorf("alphaMode(translucent) = %q, want BLEND", got)
	}
}

func TestPermuteVertices(t *testing.T) {
	got := permuteVertices([]float32{1, 2, 3, 4, 5, 6})
	want := [][3]float32{{-1, 3, 2}, {-4, 6, 5}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIndexComponentType(t *testing.T) {
	cases := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, gltfdoc.ComponentTypeUnsignedByte},
		{"small", []uint32{0, 1, 255}, gltfdoc.ComponentTypeUnsignedByte},
		{"medium", []uint32{0, 256, 65535}, gltfdoc.ComponentTypeUnsignedShort},
		{"large", []uint32{0, 65536}, gltfdoc.ComponentTypeUnsignedInt},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := indexComponentType(c.indices); got != c.want {
				t.Errorf("indexComponentType(%v) = %v, want %v", c.indices, got, c.want)
			}
		})
	}
}
