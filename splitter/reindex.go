package splitter

import "github.com/ktrn/tilesplit/gltfdoc"

// Reindexer rewrites a CollectedInfo's resources into a fresh Document with
// 0-based indices, in the fixed order each stage depends on the one before
// it: bufferViews, skins, accessors, meshes (materials + textures in
// lock-step), nodes, animations, cameras, scenes. Grounded on
// __reindex_entities: each stage only ever references resources reindexed
// by an earlier stage, so a single forward pass suffices.
//
// Every CollectedInfo *Indices map already records original source index ->
// final collection position (collector.go builds them in first-seen,
// append order), so reindexing a reference is just a map lookup — no
// separate old->new map needs to be built here.
type Reindexer struct {
	src *gltfdoc.Document
}

// NewReindexer creates a Reindexer against the original source document,
// needed to look up cameras (CollectedInfo does not carry them — cameras
// are pulled in lazily once a node's new index is known).
func NewReindexer(src *gltfdoc.Document) *Reindexer {
	return &Reindexer{src: src}
}

// Reindex builds a new, self-contained Document from a window's
// CollectedInfo.
func (r *Reindexer) Reindex(info *CollectedInfo) *gltfdoc.Document {
	out := &gltfdoc.Document{Asset: r.src.Asset}

	r.reindexBufferViews(info, out)
	r.reindexSkins(info, out)
	r.reindexAccessors(info, out)
	r.reindexMaterialsAndTextures(info, out)
	r.reindexMeshes(info, out)
	r.reindexNodes(info, out)
	r.reindexAnimations(info, out)
	r.reindexCameras(out)
	r.reindexScenes(info, out)

	return out
}

// 1. BufferViews — already in final order; copied as-is.
func (r *Reindexer) reindexBufferViews(info *CollectedInfo, out *gltfdoc.Document) {
	out.BufferViews = append([]gltfdoc.BufferView(nil), info.BufferViews...)
}

// 2. Skins. The source this is grounded on sets
// `skin_copy.inverseBindMatrices = new_index`, the skin's own new index,
// with the correct accessor-remap branch commented out (see
// tile_chunk_service.py __reindex_skin, lines ~804-827). We do not
// replicate that: InverseBindMatrices is remapped through
// info.AccessorIndices like every other accessor reference, pinned by
// reindex_test.go.
func (r *Reindexer) reindexSkins(info *CollectedInfo, out *gltfdoc.Document) {
	out.Skins = make([]gltfdoc.Skin, len(info.Skins))
	for i, skin := range info.Skins {
		newSkin := skin
		if skin.InverseBindMatrices != nil {
			remapped := info.AccessorIndices[*skin.InverseBindMatrices]
			newSkin.InverseBindMatrices = &remapped
		}
		out.Skins[i] = newSkin
	}
}

// 3. Accessors — rewrite each accessor's BufferView reference.
func (r *Reindexer) reindexAccessors(info *CollectedInfo, out *gltfdoc.Document) {
	out.Accessors = make([]gltfdoc.Accessor, len(info.Accessors))
	for i, acc := range info.Accessors {
		newAcc := acc
		if acc.BufferView != nil {
			newBV := info.BufferViewIndices[*acc.BufferView]
			newAcc.BufferView = &newBV
		}
		out.Accessors[i] = newAcc
	}
}

// 4. Materials, textures, samplers, images — already deduplicated and in
// final order by the collector; images need their BufferView rewritten.
func (r *Reindexer) reindexMaterialsAndTextures(info *CollectedInfo, out *gltfdoc.Document) {
	out.Samplers = append([]gltfdoc.Sampler(nil), info.Samplers...)
	out.Textures = append([]gltfdoc.Texture(nil), info.Textures...)
	out.Materials = append([]gltfdoc.Material(nil), info.Materials...)

	out.Images = make([]gltfdoc.Image, len(info.Images))
	for i, img := range info.Images {
		newImg := img
		if img.BufferView != nil {
			newBV := info.BufferViewIndices[*img.BufferView]
			newImg.BufferView = &newBV
		}
		out.Images[i] = newImg
	}
}

// 5. Meshes — rewrite each primitive's attribute/target/index/material
// accessor references.
func (r *Reindexer) reindexMeshes(info *CollectedInfo, out *gltfdoc.Document) {
	out.Meshes = make([]gltfdoc.Mesh, len(info.Meshes))

	for i, mesh := range info.Meshes {
		newMesh := gltfdoc.Mesh{Name: mesh.Name, Weights: mesh.Weights}
		newMesh.Primitives = make([]gltfdoc.Primitive, len(mesh.Primitives))

		for p, prim := range mesh.Primitives {
			newPrim := gltfdoc.Primitive{Mode: prim.Mode, Extensions: prim.Extensions}

			newAttrs := gltfdoc.NewAttributeMap()
			prim.Attributes.Range(func(key string, value int) bool {
				newAttrs.Set(key, info.AccessorIndices[value])
				return true
			})
			newPrim.Attributes = newAttrs

			if len(prim.Targets) > 0 {
				newPrim.Targets = make([]gltfdoc.AttributeMap, len(prim.Targets))
				for t, target := range prim.Targets {
					newTarget := gltfdoc.NewAttributeMap()
					target.Range(func(key string, value int) bool {
						newTarget.Set(key, info.AccessorIndices[value])
						return true
					})
					newPrim.Targets[t] = newTarget
				}
			}

			if prim.Indices != nil {
				newIdx := info.AccessorIndices[*prim.Indices]
				newPrim.Indices = &newIdx
			}
			if prim.Material != nil {
				newMat := info.MaterialIndices[*prim.Material]
				newPrim.Material = &newMat
			}

			newMesh.Primitives[p] = newPrim
		}

		out.Meshes[i] = newMesh
	}
}

// 6. Nodes — two-pass: copy flat (rewriting Mesh/Skin) so every node has a
// new index, then patch Children once the full map is known, dropping any
// child reference that fell outside this window.
func (r *Reindexer) reindexNodes(info *CollectedInfo, out *gltfdoc.Document) {
	out.Nodes = make([]gltfdoc.Node, len(info.Nodes))
	for i, node := range info.Nodes {
		newNode := node
		if node.Mesh != nil {
			newMesh := info.MeshIndices[*node.Mesh]
			newNode.Mesh = &newMesh
		}
		if node.Skin != nil {
			newSkin := info.SkinIndices[*node.Skin]
			newNode.Skin = &newSkin
		}
		out.Nodes[i] = newNode
	}

	for i, node := range info.Nodes {
		if len(node.Children) == 0 {
			continue
		}
		children := make([]int, 0, len(node.Children))
		for _, child := range node.Children {
			if newChild, ok := info.NodeIndexMap[child]; ok {
				children = append(children, newChild)
			}
		}
		out.Nodes[i].Children = children
	}
}

// 7. Animations — rewrite channel target nodes and sampler accessors.
func (r *Reindexer) reindexAnimations(info *CollectedInfo, out *gltfdoc.Document) {
	out.Animations = make([]gltfdoc.Animation, len(info.Animations))
	for i, anim := range info.Animations {
		newAnim := gltfdoc.Animation{Name: anim.Name}
		newAnim.Channels = make([]gltfdoc.AnimChannel, len(anim.Channels))
		for c, ch := range anim.Channels {
			newCh := ch
			if ch.Target.Node != nil {
				newNode := info.NodeIndexMap[*ch.Target.Node]
				newCh.Target.Node = &newNode
			}
			newAnim.Channels[c] = newCh
		}
		newAnim.Samplers = make([]gltfdoc.AnimSampler, len(anim.Samplers))
		for s, sampler := range anim.Samplers {
			newAnim.Samplers[s] = gltfdoc.AnimSampler{
				Input:         info.AccessorIndices[sampler.Input],
				Output:        info.AccessorIndices[sampler.Output],
				Interpolation: sampler.Interpolation,
			}
		}
		out.Animations[i] = newAnim
	}
}

// 8. Cameras — copied lazily: walk the already-renumbered new nodes
// (Camera still holds the source document's camera index at this point —
// nothing upstream of this step rewrites it), copying each referenced
// source camera the first time it's seen.
func (r *Reindexer) reindexCameras(out *gltfdoc.Document) {
	cameraIndexMap := make(map[int]int)
	for i := range out.Nodes {
		node := &out.Nodes[i]
		if node.Camera == nil {
			continue
		}
		srcCameraIdx := *node.Camera
		newIdx, ok := cameraIndexMap[srcCameraIdx]
		if !ok {
			if srcCameraIdx < 0 || srcCameraIdx >= len(r.src.Cameras) {
				continue
			}
			newIdx = len(out.Cameras)
			out.Cameras = append(out.Cameras, r.src.Cameras[srcCameraIdx])
			cameraIndexMap[srcCameraIdx] = newIdx
		}
		node.Camera = &newIdx
	}
}

// 9. Scenes — if, after rewriting, the scene array is empty (the source had
// no scenes, or every scene's nodes were all dropped by this window),
// synthesize one scene containing every retained node with a non-nil mesh
// (matches __reindex_scenes's fallback).
func (r *Reindexer) reindexScenes(info *CollectedInfo, out *gltfdoc.Document) {
	for sceneIdx, nodeIndices := range info.SceneNodeIndices {
		if len(nodeIndices) == 0 {
			continue
		}
		var remapped []int
		for _, origNodeIdx := range nodeIndices {
			if newIdx, ok := info.NodeIndexMap[origNodeIdx]; ok {
				remapped = append(remapped, newIdx)
			}
		}
		if len(remapped) == 0 {
			continue
		}
		name := ""
		if sceneIdx < len(r.src.Scenes) {
			name = r.src.Scenes[sceneIdx].Name
		}
		out.Scenes = append(out.Scenes, gltfdoc.Scene{Name: name, Nodes: remapped})
	}

	if len(out.Scenes) == 0 {
		var roots []int
		for i, node := range out.Nodes {
			if node.Mesh != nil {
				roots = append(roots, i)
			}
		}
		out.Scenes = []gltfdoc.Scene{{Nodes: roots}}
	}

	defaultScene := 0
	out.Scene = &defaultScene
}
