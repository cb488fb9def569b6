package preview

import "testing"

func TestPlaceCameraLooksAtBoundingBoxCenter(t *testing.T) {
	min := [3]float32{-1, -1, -1}
	max := [3]float32{1, 1, 1}
	cam := placeCamera(min, max, 1.3, 0, 0, 30, 16.0/9.0)

	want := [3]float32{0, 0, 0}
	if cam.target != want {
		t.Errorf("target = %v, want %v", cam.target, want)
	}
	if cam.eye == cam.target {
		t.Error("eye must not coincide with target")
	}
	if cam.fovY <= 0 {
		t.Errorf("fovY = %v, want > 0", cam.fovY)
	}
}

func TestPlaceCameraRotationChangesPosition(t *testing.T) {
	min := [3]float32{-1, -1, -1}
	max := [3]float32{1, 1, 1}
	base := placeCamera(min, max, 1.3, 0, 0, 30, 16.0/9.0)
	rotated := placeCamera(min, max, 1.3, 90, 0, 30, 16.0/9.0)

	if base.eye == rotated.eye {
		t.Error("a 90 degree horizontal rotation must move the camera")
	}

	baseRadius := dist(base.eye, base.target)
	rotatedRadius := dist(rotated.eye, rotated.target)
	if diff := baseRadius - rotatedRadius; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("rotation changed camera distance from target: %v vs %v", baseRadius, rotatedRadius)
	}
}

func TestVerticalFovNarrowsWithLongerLens(t *testing.T) {
	wide := verticalFov(sensorWidthMM, 18, 16.0/9.0)
	tele := verticalFov(sensorWidthMM, 200, 16.0/9.0)
	if tele >= wide {
		t.Errorf("a longer lens should narrow FOV: 18mm=%v 200mm=%v", wide, tele)
	}
}

func dist(a, b [3]float32) float32 {
	return sqrt32((a[0]-b[0])*(a[0]-b[0]) + (a[1]-b[1])*(a[1]-b[1]) + (a[2]-b[2])*(a[2]-b[2]))
}
