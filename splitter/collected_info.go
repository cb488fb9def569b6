// Package splitter implements the node-windowed GLB split pipeline: collect
// a subtree of a source document into a self-contained CollectedInfo,
// reindex it against fresh 0-based index spaces, repack its binary buffer,
// and repeat per window until the whole source scene has been chunked.
package splitter

import "github.com/ktrn/tilesplit/gltfdoc"

// CollectedInfo is the output of Collector.Collect: every resource a window
// of nodes transitively references, deduplicated by the source document's
// original index, plus the old->new index maps the Reindexer consumes.
type CollectedInfo struct {
	Nodes       []gltfdoc.Node
	Meshes      []gltfdoc.Mesh
	Materials   []gltfdoc.Material
	Textures    []gltfdoc.Texture
	Images      []gltfdoc.Image
	Samplers    []gltfdoc.Sampler
	Accessors   []gltfdoc.Accessor
	BufferViews []gltfdoc.BufferView
	Buffers     []gltfdoc.Buffer
	Animations  []gltfdoc.Animation
	Scenes      []gltfdoc.Scene
	Skins       []gltfdoc.Skin

	// SceneNodeIndices[i] holds the (original) node indices belonging to
	// source scene i, restricted to nodes this window actually collected.
	SceneNodeIndices [][]int

	// NodeIndices is the set of original node indices already visited by
	// this window's DFS, used both as a dedup guard and a membership test.
	NodeIndices map[int]struct{}

	// *Indices map an original source index to this window's freshly
	// assigned, 0-based collection index (first-seen order). Since every
	// collected slice is appended to in that same first-seen order, each
	// map's values also equal that resource's final position in the
	// Reindexer's output — these maps double as the Reindexer's index
	// maps, no separate remapping pass needed.
	NodeIndexMap      map[int]int
	MeshIndices       map[int]int
	MaterialIndices   map[int]int
	SamplerIndices    map[int]int
	ImageIndices      map[int]int
	TextureIndices    map[int]int
	AccessorIndices   map[int]int
	BufferViewIndices map[int]int
	SkinIndices       map[int]int
}

// newCollectedInfo allocates an empty CollectedInfo with fresh index maps.
// Called once per window: the source pipeline this is grounded on shares
// these maps across every window, which is a defect deliberately not
// reproduced here.
func newCollectedInfo() *CollectedInfo {
	return &CollectedInfo{
		NodeIndices:       make(map[int]struct{}),
		NodeIndexMap:      make(map[int]int),
		MeshIndices:       make(map[int]int),
		MaterialIndices:   make(map[int]int),
		SamplerIndices:    make(map[int]int),
		ImageIndices:      make(map[int]int),
		TextureIndices:    make(map[int]int),
		AccessorIndices:   make(map[int]int),
		BufferViewIndices: make(map[int]int),
		SkinIndices:       make(map[int]int),
	}
}
