// Package preview renders a single PNG snapshot of a GLB tile with a
// from-scratch software rasterizer, for spot-checking a tile's contents
// without a full scene viewer.
package preview

import (
	"math"

	"github.com/ktrn/tilesplit/common"
)

// quatToMatrix converts a glTF node rotation quaternion (x, y, z, w) to a
// column-major 4x4 rotation matrix. common.BuildModelMatrix only builds
// rotations from Euler angles, so a node's TRS quaternion needs this
// separate conversion before it can be composed with the rest of a
// node's local transform.
func quatToMatrix(q [4]float32) [16]float32 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	var m [16]float32
	m[0], m[1], m[2], m[3] = 1-(yy+zz), xy+wz, xz-wy, 0
	m[4], m[5], m[6], m[7] = xy-wz, 1-(xx+zz), yz+wx, 0
	m[8], m[9], m[10], m[11] = xz+wy, yz-wx, 1-(xx+yy), 0
	m[12], m[13], m[14], m[15] = 0, 0, 0, 1
	return m
}

// translationMatrix builds a column-major translation matrix.
func translationMatrix(t [3]float32) [16]float32 {
	m := [16]float32{}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

// scaleMatrix builds a column-major scale matrix.
func scaleMatrix(s [3]float32) [16]float32 {
	m := [16]float32{}
	m[0], m[5], m[10], m[15] = s[0], s[1], s[2], 1
	return m
}

// mul4 wraps common.Mul4 for fixed-size array operands, so callers can
// chain matrix multiplications without managing slice backing arrays.
func mul4(a, b [16]float32) [16]float32 {
	var out [16]float32
	common.Mul4(out[:], a[:], b[:])
	return out
}

// transformPoint applies a column-major 4x4 matrix to a point (w=1) and
// returns the transformed homogeneous coordinates.
func transformPoint(m [16]float32, p [3]float32) [4]float32 {
	v := [4]float32{p[0], p[1], p[2], 1}
	var out [4]float32
	for row := 0; row < 4; row++ {
		var sum float32
		for col := 0; col < 4; col++ {
			sum += m[col*4+row] * v[col]
		}
		out[row] = sum
	}
	return out
}

func radians(deg float32) float32 {
	return deg * float32(math.Pi) / 180
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
