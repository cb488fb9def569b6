package ifcbuild

import (
	"encoding/binary"
	"math"

	"github.com/ktrn/tilesplit/gltfdoc"
)

// buildMesh turns one CollectedGeometry into a glTF mesh plus the two
// bufferViews/accessors (indices, then positions) and binary blob it
// needs, at a given byte offset into the eventual document blob. Ports
// __create_gltf_mesh.
func buildMesh(geom *CollectedGeometry, materialIndex map[string]int, meshIndex, byteOffset int) (gltfdoc.Mesh, []gltfdoc.BufferView, []gltfdoc.Accessor, []byte) {
	indicesBlob := encodeIndices(geom.Indices)
	positionsBlob := encodePositions(geom.Positions)

	indicesBufferView := meshIndex * 2
	positionsBufferView := meshIndex*2 + 1
	indicesAccessor := indicesBufferView
	positionsAccessor := positionsBufferView

	mode := gltfdoc.ModeTriangles
	material := materialIndex[geom.Material.Name]

	mesh := gltfdoc.Mesh{
		Primitives: []gltfdoc.Primitive{
			{
				Attributes: positionOnlyAttributes(positionsAccessor),
				Indices:    intPtr(indicesAccessor),
				Material:   intPtr(material),
				Mode:       intPtr(mode),
			},
		},
	}

	bufferViews := []gltfdoc.BufferView{
		{
			Buffer:     0,
			ByteOffset: byteOffset,
			ByteLength: len(indicesBlob),
			Target:     intPtr(gltfdoc.TargetElementArrayBuffer),
		},
		{
			Buffer:     0,
			ByteOffset: byteOffset + len(indicesBlob),
			ByteLength: len(positionsBlob),
			Target:     intPtr(gltfdoc.TargetArrayBuffer),
		},
	}

	indexMin, indexMax := minMaxUint32(geom.Indices)
	posMin, posMax := minMaxVec3(geom.Positions)

	accessors := []gltfdoc.Accessor{
		{
			BufferView:    intPtr(indicesBufferView),
			ComponentType: indexComponentType(geom.Indices),
			Count:         len(geom.Indices),
			Type:          gltfdoc.TypeScalar,
			Min:           []float64{float64(indexMin)},
			Max:           []float64{float64(indexMax)},
		},
		{
			BufferView:    intPtr(positionsBufferView),
			ComponentType: gltfdoc.ComponentTypeFloat,
			Count:         len(geom.Positions),
			Type:          gltfdoc.TypeVec3,
			Min:           posMin[:],
			Max:           posMax[:],
		},
	}

	blob := append(append([]byte(nil), indicesBlob...), positionsBlob...)

	return mesh, bufferViews, accessors, blob
}

func positionOnlyAttributes(positionsAccessor int) gltfdoc.AttributeMap {
	attrs := gltfdoc.NewAttributeMap()
	attrs.Set("POSITION", positionsAccessor)
	return attrs
}

func intPtr(v int) *int { return &v }

// encodeIndices packs indices as whatever component width
// indexComponentType selected, little-endian, matching
// `indices.astype(...).tobytes()`.
func encodeIndices(indices []uint32) []byte {
	switch indexComponentType(indices) {
	case gltfdoc.ComponentTypeUnsignedByte:
		out := make([]byte, len(indices))
		for i, v := range indices {
			out[i] = byte(v)
		}
		return out
	case gltfdoc.ComponentTypeUnsignedShort:
		out := make([]byte, len(indices)*2)
		for i, v := range indices {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		return out
	default:
		out := make([]byte, len(indices)*4)
		for i, v := range indices {
			binary.LittleEndian.PutUint32(out[i*4:], v)
		}
		return out
	}
}

func encodePositions(positions [][3]float32) []byte {
	out := make([]byte, len(positions)*12)
	for i, p := range positions {
		binary.LittleEndian.PutUint32(out[i*12:], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(out[i*12+4:], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(out[i*12+8:], math.Float32bits(p[2]))
	}
	return out
}

func minMaxUint32(values []uint32) (uint32, uint32) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func minMaxVec3(positions [][3]float32) ([3]float64, [3]float64) {
	if len(positions) == 0 {
		return [3]float64{}, [3]float64{}
	}
	min := [3]float64{float64(positions[0][0]), float64(positions[0][1]), float64(positions[0][2])}
	max := min
	for _, p := range positions[1:] {
		for axis := 0; axis < 3; axis++ {
			v := float64(p[axis])
			if v < min[axis] {
				min[axis] = v
			}
			if v > max[axis] {
				max[axis] = v
			}
		}
	}
	return min, max
}
