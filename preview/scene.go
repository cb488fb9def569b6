package preview

import (
	"fmt"

	"github.com/ktrn/tilesplit/gltfdoc"
)

// triangle is one world-space face ready for rasterization: flat-colored,
// or textured when its material has a base color texture (uv0-uv2 are
// then meaningful and texture is non-nil).
type triangle struct {
	v0, v1, v2    [3]float32
	uv0, uv1, uv2 [2]float32
	color         [4]float32
	texture       *decodedTexture
}

// extractTriangles walks every scene node reachable from doc's default
// scene (scene 0 if no default is set, or every node that is no other
// node's child if the document has no scenes), accumulating
// each node's local transform into its parent's world transform, and
// flattens every mesh primitive it finds into world-space triangles.
func extractTriangles(doc *gltfdoc.Document) ([]triangle, error) {
	roots := defaultSceneRoots(doc)
	var tris []triangle
	identity := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	for _, root := range roots {
		out, err := walkNode(doc, root, identity, tris)
		if err != nil {
			return nil, err
		}
		tris = out
	}
	return tris, nil
}

func defaultSceneRoots(doc *gltfdoc.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	isChild := make([]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			if child >= 0 && child < len(isChild) {
				isChild[child] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func walkNode(doc *gltfdoc.Document, nodeIndex int, parentWorld [16]float32, tris []triangle) ([]triangle, error) {
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return nil, fmt.Errorf("preview: node index %d out of range", nodeIndex)
	}
	node := &doc.Nodes[nodeIndex]
	world := mul4(parentWorld, localMatrix(node))

	if node.Mesh != nil {
		meshTris, err := meshTriangles(doc, *node.Mesh, world)
		if err != nil {
			return nil, err
		}
		tris = append(tris, meshTris...)
	}

	for _, child := range node.Children {
		out, err := walkNode(doc, child, world, tris)
		if err != nil {
			return nil, err
		}
		tris = out
	}
	return tris, nil
}

// localMatrix returns a node's local transform, either its explicit matrix
// or the composition of translation, rotation and scale (TRS), matching
// the glTF node spec's "matrix XOR TRS" rule.
func localMatrix(node *gltfdoc.Node) [16]float32 {
	if node.Matrix != nil {
		return *node.Matrix
	}

	t := [3]float32{0, 0, 0}
	r := [4]float32{0, 0, 0, 1}
	s := [3]float32{1, 1, 1}
	if node.Translation != nil {
		t = *node.Translation
	}
	if node.Rotation != nil {
		r = *node.Rotation
	}
	if node.Scale != nil {
		s = *node.Scale
	}

	trm := mul4(translationMatrix(t), quatToMatrix(r))
	return mul4(trm, scaleMatrix(s))
}

func meshTriangles(doc *gltfdoc.Document, meshIndex int, world [16]float32) ([]triangle, error) {
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("preview: mesh index %d out of range", meshIndex)
	}
	mesh := &doc.Meshes[meshIndex]

	var tris []triangle
	for _, prim := range mesh.Primitives {
		if prim.Mode != nil && *prim.Mode != gltfdoc.ModeTriangles {
			continue
		}
		posAccessor, ok := prim.Attributes.Get("POSITION")
		if !ok {
			continue
		}
		positions, err := doc.ReadVec3Accessor(posAccessor)
		if err != nil {
			return nil, fmt.Errorf("preview: read POSITION: %w", err)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = doc.ReadIndicesAccessor(*prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("preview: read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		var uvs [][2]float32
		if uvAccessor, ok := prim.Attributes.Get("TEXCOORD_0"); ok {
			uvs, err = doc.ReadVec2Accessor(uvAccessor)
			if err != nil {
				return nil, fmt.Errorf("preview: read TEXCOORD_0: %w", err)
			}
		}

		color := materialColor(doc, prim.Material)
		texture, err := resolveTexture(doc, prim.Material)
		if err != nil {
			return nil, err
		}

		for i := 0; i+2 < len(indices); i += 3 {
			ia, ib, ic := indices[i], indices[i+1], indices[i+2]
			wa := transformPoint(world, positions[ia])
			wb := transformPoint(world, positions[ib])
			wc := transformPoint(world, positions[ic])
			tri := triangle{
				v0:    [3]float32{wa[0], wa[1], wa[2]},
				v1:    [3]float32{wb[0], wb[1], wb[2]},
				v2:    [3]float32{wc[0], wc[1], wc[2]},
				color: color,
			}
			if uvs != nil && texture != nil {
				tri.uv0, tri.uv1, tri.uv2 = uvs[ia], uvs[ib], uvs[ic]
				tri.texture = texture
			}
			tris = append(tris, tri)
		}
	}
	return tris, nil
}

// materialColor resolves a primitive's flat shading color from its
// material's base color factor, defaulting to mid-grey for an unassigned
// material (mirrors ifcbuild's own "no material" fallback).
func materialColor(doc *gltfdoc.Document, materialIndex *int) [4]float32 {
	if materialIndex == nil || *materialIndex < 0 || *materialIndex >= len(doc.Materials) {
		return [4]float32{0.5, 0.5, 0.5, 1}
	}
	mat := doc.Materials[*materialIndex]
	if mat.PbrMetallicRoughness == nil || mat.PbrMetallicRoughness.BaseColorFactor == nil {
		return [4]float32{0.5, 0.5, 0.5, 1}
	}
	return *mat.PbrMetallicRoughness.BaseColorFactor
}

// boundingBox computes the axis-aligned min/max over every triangle vertex.
func boundingBox(tris []triangle) (min, max [3]float32, ok bool) {
	if len(tris) == 0 {
		return min, max, false
	}
	min = tris[0].v0
	max = tris[0].v0
	grow := func(p [3]float32) {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	for _, t := range tris {
		grow(t.v0)
		grow(t.v1)
		grow(t.v2)
	}
	return min, max, true
}
