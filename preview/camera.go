package preview

import "math"

// sensorWidthMM is the 35mm-equivalent sensor width used to turn a lens
// focal length into a horizontal field of view, matching the default
// sensor size of the reference renderer this package replaces.
const sensorWidthMM = 36

// cameraPlacement is the resolved eye/target/up triple and vertical field
// of view for a render.
type cameraPlacement struct {
	eye, target, up [3]float32
	fovY            float32
}

// placeCamera frames a scene's bounding box the way the reference
// renderer does: the camera starts directly in front of the model, offset
// by distanceFactor times the model's largest dimension and raised half
// the model's height, then orbits around the bounding box center by the
// requested horizontal/vertical degrees. Positive rotationHDeg rotates
// clockwise as seen from above; positive rotationVDeg rotates upward.
func placeCamera(min, max [3]float32, distanceFactor, rotationHDeg, rotationVDeg, focalLengthMM, aspect float32) cameraPlacement {
	center := [3]float32{
		(min[0] + max[0]) / 2,
		(min[1] + max[1]) / 2,
		(min[2] + max[2]) / 2,
	}
	size := [3]float32{max[0] - min[0], max[1] - min[1], max[2] - min[2]}
	maxDimension := size[0]
	if size[1] > maxDimension {
		maxDimension = size[1]
	}
	if size[2] > maxDimension {
		maxDimension = size[2]
	}
	if maxDimension == 0 {
		maxDimension = 1
	}

	distance := maxDimension * distanceFactor
	base := [3]float32{0, size[1] / 2, distance}

	radius := float32(math.Sqrt(float64(base[0]*base[0] + base[1]*base[1] + base[2]*base[2])))
	if radius == 0 {
		radius = distance
	}
	azimuth := float32(math.Atan2(float64(-base[2]), float64(base[0])))
	elevation := float32(math.Asin(float64(base[1] / radius)))

	azimuth -= radians(rotationHDeg)
	elevation += radians(rotationVDeg)
	elevation = clamp(elevation, radians(-89), radians(89))

	eye := [3]float32{
		center[0] + radius*float32(math.Cos(float64(elevation)))*float32(math.Cos(float64(azimuth))),
		center[1] + radius*float32(math.Sin(float64(elevation))),
		center[2] - radius*float32(math.Cos(float64(elevation)))*float32(math.Sin(float64(azimuth))),
	}

	return cameraPlacement{
		eye:    eye,
		target: center,
		up:     [3]float32{0, 1, 0},
		fovY:   verticalFov(sensorWidthMM, focalLengthMM, aspect),
	}
}

// verticalFov derives the vertical field of view from a horizontal sensor
// width, a lens focal length, and the render's aspect ratio: first the
// horizontal FOV from the lens equation, then the vertical FOV implied by
// the aspect ratio, matching how a camera with a fixed sensor width
// reports FOV on a wider-than-tall render.
func verticalFov(sensorWidthMM, focalLengthMM, aspect float32) float32 {
	fovX := 2 * float32(math.Atan(float64(sensorWidthMM)/(2*float64(focalLengthMM))))
	return 2 * float32(math.Atan(math.Tan(float64(fovX)/2)/float64(aspect)))
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
