package preview

import (
	"fmt"
	"image/png"
	"os"

	"github.com/ktrn/tilesplit/apperr"
	"github.com/ktrn/tilesplit/common"
	"github.com/ktrn/tilesplit/gltfdoc"
)

// Render resolution, fixed rather than CLI-configurable, matching the
// reference renderer's fixed 1920x1080 output.
const (
	width  = 1920
	height = 1080
)

// Render loads the GLB at inputPath, frames its geometry with a camera
// placed distanceFactor times the model's largest bounding-box dimension
// away from the bounding box center (rotated by rotationHDeg/rotationVDeg around that center), and
// writes a single PNG snapshot to outputPath.
func Render(inputPath, outputPath string, focalLengthMM, distanceFactor, rotationHDeg, rotationVDeg float32) error {
	doc, err := gltfdoc.Load(inputPath)
	if err != nil {
		return apperr.New(apperr.KindInputIO, "preview.Render", err)
	}

	tris, err := extractTriangles(doc)
	if err != nil {
		return apperr.New(apperr.KindInvalidReference, "preview.Render", err)
	}
	min, max, ok := boundingBox(tris)
	if !ok {
		return apperr.New(apperr.KindInvalidReference, "preview.Render", fmt.Errorf("no renderable geometry in %s", inputPath))
	}

	cam := placeCamera(min, max, distanceFactor, rotationHDeg, rotationVDeg, focalLengthMM, float32(width)/float32(height))

	var view, proj [16]float32
	common.LookAt(view[:], cam.eye[0], cam.eye[1], cam.eye[2], cam.target[0], cam.target[1], cam.target[2], cam.up[0], cam.up[1], cam.up[2])
	common.Perspective(proj[:], cam.fovY, float32(width)/float32(height), 0.1, nearFarCeiling(min, max))

	var viewProj [16]float32
	common.Mul4(viewProj[:], proj[:], view[:])

	img := rasterize(tris, viewProj, width, height)

	out, err := os.Create(outputPath)
	if err != nil {
		return apperr.New(apperr.KindOutputIO, "preview.Render", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return apperr.New(apperr.KindOutputIO, "preview.Render", err)
	}
	return nil
}

// nearFarCeiling picks a far clip plane generous enough to hold the whole
// model plus the camera's standoff distance, rather than the reference
// renderer's fixed 3000-unit clip_end, since a tile's units aren't
// guaranteed to be meters.
func nearFarCeiling(min, max [3]float32) float32 {
	dx := max[0] - min[0]
	dy := max[1] - min[1]
	dz := max[2] - min[2]
	diag := sqrt32(dx*dx + dy*dy + dz*dz)
	if diag == 0 {
		return 1000
	}
	return diag * 8
}
