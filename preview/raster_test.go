package preview

import (
	"image/color"
	"testing"
)

func TestRasterizeFillsBackgroundWhenNoTriangles(t *testing.T) {
	identity := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	img := rasterize(nil, identity, 4, 4)
	got := img.NRGBAAt(0, 0)
	if got != backgroundColor {
		t.Errorf("pixel = %v, want background %v", got, backgroundColor)
	}
}

func TestRasterizeDrawsFrontFacingTriangle(t *testing.T) {
	// A triangle filling clip space (z/w = 0.5, mid-depth) should cover the
	// center pixel of a small image with its flat color.
	tris := []triangle{{
		v0:    [3]float32{-1, -1, 0.5},
		v1:    [3]float32{1, -1, 0.5},
		v2:    [3]float32{0, 1, 0.5},
		color: [4]float32{1, 0, 0, 1},
	}}
	identity := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	img := rasterize(tris, identity, 10, 10)

	got := img.NRGBAAt(5, 6)
	if got == (color.NRGBA{}) {
		t.Fatal("expected a drawn pixel, got zero value")
	}
	if got.R == backgroundColor.R && got.G == backgroundColor.G && got.B == backgroundColor.B {
		t.Errorf("center pixel %v looks like background, expected shaded red triangle", got)
	}
}

func TestRasterizeDropsTriangleBehindCamera(t *testing.T) {
	tris := []triangle{{
		v0:    [3]float32{-1, -1, -0.5},
		v1:    [3]float32{1, -1, -0.5},
		v2:    [3]float32{0, 1, -0.5},
		color: [4]float32{1, 0, 0, 1},
	}}
	// w = -1 for every vertex under this matrix (negates the homogeneous w
	// coordinate), simulating points entirely behind the camera.
	behind := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, -1}
	img := rasterize(tris, behind, 10, 10)
	got := img.NRGBAAt(5, 5)
	if got != backgroundColor {
		t.Errorf("pixel = %v, want background (triangle should be culled)", got)
	}
}
