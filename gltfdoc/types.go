// Package gltfdoc models a glTF 2.0 / GLB document as a mutable, in-memory
// value that can be parsed, rewritten, and re-serialized. It generalizes a
// read-only glTF loader into a round-trippable document model: every index
// (accessor, bufferView, mesh, material, texture, node, ...) is a plain int
// so the graph stays trivially copyable and serializable, and nothing here
// assumes the document will only ever be read once.
//
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package gltfdoc

// Document is the root of a glTF JSON document plus any binary blob loaded
// alongside it (the GLB BIN chunk, or an external .bin file).
type Document struct {
	Asset   Asset  `json:"asset"`
	Scene   *int   `json:"scene,omitempty"`
	Scenes  []Scene `json:"scenes,omitempty"`
	Nodes   []Node  `json:"nodes,omitempty"`
	Meshes  []Mesh  `json:"meshes,omitempty"`

	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`

	Materials []Material `json:"materials,omitempty"`
	Textures  []Texture  `json:"textures,omitempty"`
	Images    []Image    `json:"images,omitempty"`
	Samplers  []Sampler  `json:"samplers,omitempty"`

	Skins      []Skin      `json:"skins,omitempty"`
	Animations []Animation `json:"animations,omitempty"`
	Cameras    []Camera    `json:"cameras,omitempty"`

	ExtensionsUsed     []string       `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string       `json:"extensionsRequired,omitempty"`
	Extensions         map[string]any `json:"extensions,omitempty"`

	// Blob holds the raw bytes of the single GLB-embedded buffer (buffer 0
	// with no URI). Populated on load; BlobRepacker rewrites it when a
	// document is reassembled from a window of the original buffer ranges.
	Blob []byte `json:"-"`
}

// Asset carries metadata about the glTF asset.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Scene is a set of root nodes to render.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is a node in the scene's transform hierarchy.
type Node struct {
	Name        string      `json:"name,omitempty"`
	Children    []int       `json:"children,omitempty"`
	Mesh        *int        `json:"mesh,omitempty"`
	Skin        *int        `json:"skin,omitempty"`
	Camera      *int        `json:"camera,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32 `json:"translation,omitempty"`
	Rotation    *[4]float32 `json:"rotation,omitempty"`
	Scale       *[3]float32 `json:"scale,omitempty"`
	Weights     []float32   `json:"weights,omitempty"`
	Extensions  map[string]any `json:"extensions,omitempty"`
}

// Mesh is a set of primitives to render.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
	Weights    []float32   `json:"weights,omitempty"`
}

// Primitive defines one piece of renderable geometry.
type Primitive struct {
	Attributes AttributeMap     `json:"attributes"`
	Indices    *int             `json:"indices,omitempty"`
	Material   *int             `json:"material,omitempty"`
	Mode       *int             `json:"mode,omitempty"`
	Targets    []AttributeMap   `json:"targets,omitempty"`
	Extensions map[string]any   `json:"extensions,omitempty"`
}

// Primitive topology modes.
const (
	ModePoints        = 0
	ModeLines         = 1
	ModeLineLoop      = 2
	ModeLineStrip     = 3
	ModeTriangles     = 4
	ModeTriangleStrip = 5
	ModeTriangleFan   = 6
)

// Accessor defines how to interpret a slice of buffer-view data.
type Accessor struct {
	Name          string               `json:"name,omitempty"`
	BufferView    *int                 `json:"bufferView,omitempty"`
	ByteOffset    int                  `json:"byteOffset,omitempty"`
	ComponentType int                  `json:"componentType"`
	Normalized    bool                 `json:"normalized,omitempty"`
	Count         int                  `json:"count"`
	Type          string               `json:"type"`
	Max           []float64            `json:"max,omitempty"`
	Min           []float64            `json:"min,omitempty"`
	Sparse        *AccessorSparse      `json:"sparse,omitempty"`
}

// Component type constants.
const (
	ComponentTypeByte          = 5120
	ComponentTypeUnsignedByte  = 5121
	ComponentTypeShort         = 5122
	ComponentTypeUnsignedShort = 5123
	ComponentTypeUnsignedInt   = 5125
	ComponentTypeFloat         = 5126
)

// Accessor element type constants.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
	TypeMat2   = "MAT2"
	TypeMat3   = "MAT3"
	TypeMat4   = "MAT4"
)

// AccessorSparse is retained only so a sparse accessor round-trips its
// count; the parser rejects actually-sparse accessors (ReadAccessorData
// returns ErrSparseUnsupported) since nothing in this tool's pipelines
// produces or consumes sparse storage.
type AccessorSparse struct {
	Count int `json:"count"`
}

// BufferView is a contiguous byte range within a Buffer.
type BufferView struct {
	Name       string `json:"name,omitempty"`
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride *int   `json:"byteStride,omitempty"`
	Target     *int   `json:"target,omitempty"`
}

// Buffer GPU targets.
const (
	TargetArrayBuffer        = 34962
	TargetElementArrayBuffer = 34963
)

// Buffer is a container of raw binary data.
type Buffer struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
	Data       []byte `json:"-"`
}

// Material defines the PBR appearance of a primitive. Unlike a read-only
// loader that only needs BaseColorFactor for rendering, this model carries
// every field the IFC builder and metadata-merge steps populate or read:
// AlphaMode/DoubleSided (driven by IFC transparency), and
// Occlusion/Emissive (round-tripped from source glTF materials that set
// them).
type Material struct {
	Name                 string                    `json:"name,omitempty"`
	PbrMetallicRoughness *PbrMetallicRoughness     `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *NormalTextureInfo        `json:"normalTexture,omitempty"`
	OcclusionTexture     *OcclusionTextureInfo     `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo              `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32               `json:"emissiveFactor,omitempty"`
	AlphaMode            string                    `json:"alphaMode,omitempty"`
	AlphaCutoff          *float32                  `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                      `json:"doubleSided,omitempty"`
}

// Alpha rendering modes.
const (
	AlphaModeOpaque = "OPAQUE"
	AlphaModeMask   = "MASK"
	AlphaModeBlend  = "BLEND"
)

// PbrMetallicRoughness is the metallic-roughness material model.
type PbrMetallicRoughness struct {
	BaseColorFactor          *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32     `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// TextureInfo references a texture and UV set.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// NormalTextureInfo references a normal map with an additional scale factor.
type NormalTextureInfo struct {
	TextureInfo
	Scale *float32 `json:"scale,omitempty"`
}

// OcclusionTextureInfo references an occlusion map with an additional
// strength factor.
type OcclusionTextureInfo struct {
	TextureInfo
	Strength *float32 `json:"strength,omitempty"`
}

// Texture combines an image source and a sampler.
type Texture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

// Image is a texture image source, either a URI or an embedded bufferView.
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Sampler defines texture sampling parameters.
type Sampler struct {
	Name      string `json:"name,omitempty"`
	MagFilter *int   `json:"magFilter,omitempty"`
	MinFilter *int   `json:"minFilter,omitempty"`
	WrapS     *int   `json:"wrapS,omitempty"`
	WrapT     *int   `json:"wrapT,omitempty"`
}

// Sampler filter constants.
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987
)

// Sampler wrap constants.
const (
	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)

// Skin defines how a mesh is deformed by a skeleton.
type Skin struct {
	Name                string `json:"name,omitempty"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
	Skeleton            *int   `json:"skeleton,omitempty"`
	Joints              []int  `json:"joints"`
}

// Animation defines keyframe animation.
type Animation struct {
	Name     string            `json:"name,omitempty"`
	Channels []AnimChannel     `json:"channels"`
	Samplers []AnimSampler     `json:"samplers"`
}

// AnimChannel connects a sampler to a target node/property.
type AnimChannel struct {
	Sampler int        `json:"sampler"`
	Target  AnimTarget `json:"target"`
}

// AnimTarget specifies the animated node and property path.
type AnimTarget struct {
	Node *int   `json:"node,omitempty"`
	Path string `json:"path"`
}

// Animation path constants.
const (
	AnimPathTranslation = "translation"
	AnimPathRotation    = "rotation"
	AnimPathScale       = "scale"
	AnimPathWeights     = "weights"
)

// AnimSampler defines animation keyframe data.
type AnimSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation,omitempty"`
}

// Camera is a projection definition attached to a node.
type Camera struct {
	Name        string              `json:"name,omitempty"`
	Type        string              `json:"type"`
	Perspective *CameraPerspective  `json:"perspective,omitempty"`
	Orthographic *CameraOrthographic `json:"orthographic,omitempty"`
}

// CameraPerspective is a perspective projection.
type CameraPerspective struct {
	AspectRatio *float32 `json:"aspectRatio,omitempty"`
	YFov        float32  `json:"yfov"`
	ZFar        *float32 `json:"zfar,omitempty"`
	ZNear       float32  `json:"znear"`
}

// CameraOrthographic is an orthographic projection.
type CameraOrthographic struct {
	XMag  float32 `json:"xmag"`
	YMag  float32 `json:"ymag"`
	ZFar  float32 `json:"zfar"`
	ZNear float32 `json:"znear"`
}

// --- GLB binary container ---

// GLBHeader is the 12-byte header of a GLB file.
type GLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// GLBChunkHeader is the 8-byte header preceding each GLB chunk.
type GLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// GLB magic number, version, and chunk type constants.
const (
	GLBMagic     = 0x46546C67 // "glTF" little-endian ASCII
	GLBVersion   = 2
	GLBChunkJSON = 0x4E4F534A // "JSON"
	GLBChunkBIN  = 0x004E4942 // "BIN\0"
)
