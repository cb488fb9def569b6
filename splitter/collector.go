package splitter

import "github.com/ktrn/tilesplit/gltfdoc"

// materialTexturePaths enumerates the texture-bearing fields of a Material
// that must be walked when collecting a material's dependencies. Order
// matches the source pipeline's _material_property_paths.
var materialTexturePaths = []string{
	"pbrMetallicRoughness.baseColorTexture",
	"pbrMetallicRoughness.metallicRoughnessTexture",
	"normalTexture",
	"occlusionTexture",
	"emissiveTexture",
}

// Collector walks a source document's node graph and copies everything a
// bounded window of nodes transitively references into an independent
// CollectedInfo, deduplicating every resource by its original index.
type Collector struct {
	doc *gltfdoc.Document
}

// NewCollector creates a Collector over a source document. The document is
// only ever read, never mutated, so one Collector may safely be shared by
// concurrently running windows.
func NewCollector(doc *gltfdoc.Document) *Collector {
	return &Collector{doc: doc}
}

// Collect runs a bounded DFS starting at rootNodeIndex, stopping once the
// window already holds windowSize nodes or every reachable node has been
// visited. info accumulates across repeated calls so a Chunker can collect
// every root of a window into one CollectedInfo.
func (c *Collector) Collect(info *CollectedInfo, rootNodeIndex, windowSize int) {
	c.collectNode(info, rootNodeIndex, windowSize)
}

func (c *Collector) collectNode(info *CollectedInfo, nodeIndex, windowSize int) {
	if len(info.Nodes) >= windowSize {
		return
	}
	if _, visited := info.NodeIndices[nodeIndex]; visited {
		return
	}

	node := c.doc.Nodes[nodeIndex]
	info.NodeIndices[nodeIndex] = struct{}{}
	info.NodeIndexMap[nodeIndex] = len(info.Nodes)
	info.Nodes = append(info.Nodes, node)

	if node.Skin != nil {
		c.collectSkin(info, *node.Skin)
	}
	if node.Mesh != nil {
		c.collectMesh(info, *node.Mesh)
	}

	for _, childIndex := range node.Children {
		c.collectNode(info, childIndex, windowSize)
	}
}

// CollectSceneMembership records, for every source scene, which of its
// nodes this window ended up collecting. Called once per window after the
// DFS roots have all been walked.
func (c *Collector) CollectSceneMembership(info *CollectedInfo) {
	info.SceneNodeIndices = make([][]int, len(c.doc.Scenes))
	for sceneIdx, scene := range c.doc.Scenes {
		for _, nodeIdx := range scene.Nodes {
			if _, ok := info.NodeIndices[nodeIdx]; ok {
				info.SceneNodeIndices[sceneIdx] = append(info.SceneNodeIndices[sceneIdx], nodeIdx)
			}
		}
	}
}

// CollectAnimations pulls in every animation with a channel targeting
// nodeIndex, plus every accessor (and its bufferView/buffer) any of that
// animation's samplers reference. Called once per window root, not from
// within the node DFS.
func (c *Collector) CollectAnimations(info *CollectedInfo, nodeIndex int) {
	for _, anim := range c.doc.Animations {
		relevant := false
		for _, ch := range anim.Channels {
			if ch.Target.Node != nil && *ch.Target.Node == nodeIndex {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}

		for _, sampler := range anim.Samplers {
			c.collectAccessor(info, sampler.Input)
			c.collectAccessor(info, sampler.Output)
		}
		info.Animations = append(info.Animations, anim)
	}
}

func (c *Collector) collectSkin(info *CollectedInfo, skinIndex int) int {
	if newIdx, ok := info.SkinIndices[skinIndex]; ok {
		return newIdx
	}

	skin := c.doc.Skins[skinIndex]
	if skin.InverseBindMatrices != nil {
		c.collectAccessor(info, *skin.InverseBindMatrices)
	}

	newIdx := len(info.Skins)
	info.Skins = append(info.Skins, skin)
	info.SkinIndices[skinIndex] = newIdx
	return newIdx
}

func (c *Collector) collectMesh(info *CollectedInfo, meshIndex int) int {
	if newIdx, ok := info.MeshIndices[meshIndex]; ok {
		return newIdx
	}

	mesh := c.doc.Meshes[meshIndex]
	for _, prim := range mesh.Primitives {
		if prim.Material != nil {
			c.collectMaterial(info, *prim.Material)
		}
		c.collectAttributes(info, prim)
	}

	newIdx := len(info.Meshes)
	info.Meshes = append(info.Meshes, mesh)
	info.MeshIndices[meshIndex] = newIdx
	return newIdx
}

// collectAttributes visits a primitive's vertex attributes (sorted by
// original accessor index, ties broken by insertion order — mirrors the
// source's dict(sorted(...)) convention), then each morph target's
// entries sorted the same way, then the indices accessor, and dedups each
// accessor plus its bufferView and buffer.
func (c *Collector) collectAttributes(info *CollectedInfo, prim gltfdoc.Primitive) {
	for _, entry := range prim.Attributes.SortedEntries() {
		c.collectAccessor(info, entry.Value)
	}
	for _, target := range prim.Targets {
		for _, entry := range target.SortedEntries() {
			c.collectAccessor(info, entry.Value)
		}
	}
	if prim.Indices != nil {
		c.collectAccessor(info, *prim.Indices)
	}
}

func (c *Collector) collectMaterial(info *CollectedInfo, materialIndex int) int {
	if newIdx, ok := info.MaterialIndices[materialIndex]; ok {
		return newIdx
	}

	material := c.doc.Materials[materialIndex]
	newIdx := len(info.Materials)
	info.Materials = append(info.Materials, material)
	info.MaterialIndices[materialIndex] = newIdx

	for _, path := range materialTexturePaths {
		if texInfo := materialTextureInfo(&material, path); texInfo != nil {
			c.collectTexture(info, texInfo.Index)
		}
	}

	return newIdx
}

// materialTextureInfo resolves one of the five well-known texture slots on
// a material by name, returning nil when that slot is unset.
func materialTextureInfo(m *gltfdoc.Material, path string) *gltfdoc.TextureInfo {
	switch path {
	case "pbrMetallicRoughness.baseColorTexture":
		if m.PbrMetallicRoughness != nil {
			return m.PbrMetallicRoughness.BaseColorTexture
		}
	case "pbrMetallicRoughness.metallicRoughnessTexture":
		if m.PbrMetallicRoughness != nil {
			return m.PbrMetallicRoughness.MetallicRoughnessTexture
		}
	case "normalTexture":
		if m.NormalTexture != nil {
			return &m.NormalTexture.TextureInfo
		}
	case "occlusionTexture":
		if m.OcclusionTexture != nil {
			return &m.OcclusionTexture.TextureInfo
		}
	case "emissiveTexture":
		return m.EmissiveTexture
	}
	return nil
}

func (c *Collector) collectTexture(info *CollectedInfo, textureIndex int) int {
	if newIdx, ok := info.TextureIndices[textureIndex]; ok {
		return newIdx
	}

	texture := c.doc.Textures[textureIndex]
	if texture.Sampler != nil {
		c.collectSampler(info, *texture.Sampler)
	}
	if texture.Source != nil {
		c.collectImage(info, *texture.Source)
	}

	newIdx := len(info.Textures)
	info.Textures = append(info.Textures, texture)
	info.TextureIndices[textureIndex] = newIdx
	return newIdx
}

func (c *Collector) collectSampler(info *CollectedInfo, samplerIndex int) int {
	if newIdx, ok := info.SamplerIndices[samplerIndex]; ok {
		return newIdx
	}
	newIdx := len(info.Samplers)
	info.Samplers = append(info.Samplers, c.doc.Samplers[samplerIndex])
	info.SamplerIndices[samplerIndex] = newIdx
	return newIdx
}

func (c *Collector) collectImage(info *CollectedInfo, imageIndex int) int {
	if newIdx, ok := info.ImageIndices[imageIndex]; ok {
		return newIdx
	}

	image := c.doc.Images[imageIndex]
	if image.BufferView != nil {
		c.collectBufferView(info, *image.BufferView)
	}

	newIdx := len(info.Images)
	info.Images = append(info.Images, image)
	info.ImageIndices[imageIndex] = newIdx
	return newIdx
}

func (c *Collector) collectAccessor(info *CollectedInfo, accessorIndex int) int {
	if newIdx, ok := info.AccessorIndices[accessorIndex]; ok {
		return newIdx
	}

	accessor := c.doc.Accessors[accessorIndex]
	if accessor.BufferView != nil {
		c.collectBufferView(info, *accessor.BufferView)
	}

	newIdx := len(info.Accessors)
	info.Accessors = append(info.Accessors, accessor)
	info.AccessorIndices[accessorIndex] = newIdx
	return newIdx
}

func (c *Collector) collectBufferView(info *CollectedInfo, bufferViewIndex int) int {
	if newIdx, ok := info.BufferViewIndices[bufferViewIndex]; ok {
		return newIdx
	}

	bufferView := c.doc.BufferViews[bufferViewIndex]
	c.collectBuffer(info, bufferView.Buffer)

	newIdx := len(info.BufferViews)
	info.BufferViews = append(info.BufferViews, bufferView)
	info.BufferViewIndices[bufferViewIndex] = newIdx
	return newIdx
}

func (c *Collector) collectBuffer(info *CollectedInfo, bufferIndex int) int {
	for i, b := range info.Buffers {
		if buffersEqual(b, c.doc.Buffers[bufferIndex]) {
			return i
		}
	}
	newIdx := len(info.Buffers)
	info.Buffers = append(info.Buffers, c.doc.Buffers[bufferIndex])
	return newIdx
}

// buffersEqual compares buffers by identity of their backing data, not
// value equality of the whole struct (avoids an O(n) byte compare per
// bufferView — buffers collected from the same document share the same
// Data slice header whenever they are, in fact, the same buffer).
func buffersEqual(a, b gltfdoc.Buffer) bool {
	if len(a.Data) != len(b.Data) {
		return false
	}
	if len(a.Data) == 0 {
		return a.URI == b.URI
	}
	return &a.Data[0] == &b.Data[0]
}
