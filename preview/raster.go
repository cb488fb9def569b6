package preview

import (
	"image"
	"image/color"
)

// lightDir is a fixed overhead-and-to-the-side directional light used for
// flat Lambertian shading; this tool spot-checks geometry, not lighting,
// so a single directional term (instead of the reference renderer's
// path-traced global illumination) is enough to read shape from an image.
var lightDir = normalize([3]float32{0.4, 0.8, 0.5})

const ambientFloor = 0.35

// backgroundColor matches the reference renderer's fixed world background.
var backgroundColor = color.NRGBA{R: 204, G: 204, B: 204, A: 255}

// rasterize projects world-space triangles through viewProj, shades them
// with a single directional light, and resolves visibility with a
// per-pixel depth buffer. Triangles entirely behind the camera (all three
// clip-space w <= 0) are dropped rather than clipped against the near
// plane, a deliberate simplification for a tool that only ever renders a
// whole tile framed to fit.
func rasterize(tris []triangle, viewProj [16]float32, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, backgroundColor)
		}
	}
	depth := make([]float32, width*height)
	for i := range depth {
		depth[i] = 1
	}

	for _, t := range tris {
		c0 := transformPoint(viewProj, t.v0)
		c1 := transformPoint(viewProj, t.v1)
		c2 := transformPoint(viewProj, t.v2)
		if c0[3] <= 0 && c1[3] <= 0 && c2[3] <= 0 {
			continue
		}

		s0, z0 := toScreen(c0, width, height)
		s1, z1 := toScreen(c1, width, height)
		s2, z2 := toScreen(c2, width, height)

		normal := normalize(cross(sub(t.v1, t.v0), sub(t.v2, t.v0)))
		shade := ambientFloor + (1-ambientFloor)*max0(dot(normal, lightDir))

		drawTriangle(img, depth, width, height, s0, s1, s2, z0, z1, z2, shade, t)
	}
	return img
}

// toScreen perspective-divides a clip-space point and maps it to pixel
// coordinates, with the image's Y axis flipped relative to NDC (NDC +Y is
// up, image rows grow downward).
func toScreen(c [4]float32, width, height int) (p [2]float32, z float32) {
	w := c[3]
	if w == 0 {
		w = 1e-6
	}
	ndcX := c[0] / w
	ndcY := c[1] / w
	ndcZ := c[2] / w
	x := (ndcX*0.5 + 0.5) * float32(width)
	y := (1 - (ndcY*0.5 + 0.5)) * float32(height)
	return [2]float32{x, y}, ndcZ
}

func drawTriangle(img *image.RGBA, depth []float32, width, height int, a, b, c [2]float32, za, zb, zc, shade float32, t triangle) {
	minX := minOf3(a[0], b[0], c[0])
	maxX := maxOf3(a[0], b[0], c[0])
	minY := minOf3(a[1], b[1], c[1])
	maxY := maxOf3(a[1], b[1], c[1])

	x0 := clampInt(int(minX), 0, width-1)
	x1 := clampInt(int(maxX)+1, 0, width-1)
	y0 := clampInt(int(minY), 0, height-1)
	y1 := clampInt(int(maxY)+1, 0, height-1)

	area := edgeFunction(a, b, c)
	if area == 0 {
		return
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := [2]float32{float32(x) + 0.5, float32(y) + 0.5}
			w0 := edgeFunction(b, c, p)
			w1 := edgeFunction(c, a, p)
			w2 := edgeFunction(a, b, p)
			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else {
				if w0 > 0 || w1 > 0 || w2 > 0 {
					continue
				}
			}
			w0 /= area
			w1 /= area
			w2 /= area
			z := w0*za + w1*zb + w2*zc
			idx := y*width + x
			if z < 0 || z > 1 || z >= depth[idx] {
				continue
			}
			depth[idx] = z

			base := t.color
			if t.texture != nil {
				u := w0*t.uv0[0] + w1*t.uv1[0] + w2*t.uv2[0]
				v := w0*t.uv0[1] + w1*t.uv1[1] + w2*t.uv2[1]
				texel := t.texture.at(u, v)
				base = [4]float32{base[0] * texel[0], base[1] * texel[1], base[2] * texel[2], base[3] * texel[3]}
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(base[0] * shade),
				G: toByte(base[1] * shade),
				B: toByte(base[2] * shade),
				A: toByte(base[3]),
			})
		}
	}
}

func edgeFunction(a, b, c [2]float32) float32 {
	return (c[0]-a[0])*(b[1]-a[1]) - (c[1]-a[1])*(b[0]-a[0])
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func normalize(v [3]float32) [3]float32 {
	length := dot(v, v)
	if length == 0 {
		return v
	}
	inv := 1 / sqrt32(length)
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

func max0(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

func minOf3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxOf3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
