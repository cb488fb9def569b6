// Package ifcbuild turns a parsed IFC model into a self-contained GLB,
// walking the spatial-decomposition tree exactly as
// ifc_tree_structure_model.py's IfcTreeStructure does, then flattening
// that tree into glTF nodes/meshes/accessors the same way
// ifc_service.py's __to_glb does. Actual geometry generation is
// delegated to an injected GeometryEngine — this package has no IFC
// geometry kernel of its own, matching the source's dependency on
// ifcopenshell.
package ifcbuild

import (
	"fmt"

	"github.com/ktrn/tilesplit/apperr"
	"github.com/ktrn/tilesplit/common"
	"github.com/ktrn/tilesplit/gltfdoc"
	"github.com/ktrn/tilesplit/ifcstep"
)

// rootTypes lists the IFC types this package will accept as a file's
// spatial root, tried in order. IfcProject is always the top of
// IsDecomposedBy in a valid file, so it is preferred over source's
// "first IfcProduct in file" rule — which needs the full IfcProduct
// subtype hierarchy to replicate exactly, and ifcstep carries no such
// schema.
var rootTypes = []string{"IFCPROJECT", "IFCSITE", "IFCBUILDING"}

// Builder drives one IFC-model-to-GLB build. Constructed per call, not a
// process-lifetime singleton.
type Builder struct {
	model  *ifcstep.Model
	engine GeometryEngine
}

// NewBuilder creates a Builder over a parsed model and a caller-supplied
// geometry engine.
func NewBuilder(model *ifcstep.Model, engine GeometryEngine) *Builder {
	return &Builder{model: model, engine: engine}
}

// Result is everything a build produces: the GLB document itself, plus
// the three JSON side-cars a later metadata-merge step consumes.
type Result struct {
	Document          *gltfdoc.Document
	BatchTable        BatchTable
	BatchTableMapping BatchTableMapping
	MeshNameMapping   map[string]string // GlobalId -> original mesh name
}

// Build walks the model's spatial tree, generates geometry for every
// element with a representation, and assembles one GLB document plus its
// batch-table side-cars. Mirrors ifc_to_glb + __to_glb.
func (b *Builder) Build() (*Result, error) {
	var root *ifcstep.Entity
	for _, t := range rootTypes {
		if e, ok := b.model.FirstOfType(t); ok {
			root = e
			break
		}
	}
	if root == nil {
		return nil, apperr.New(apperr.KindInvalidReference, "ifcbuild.Build", fmt.Errorf("no %v entity found", rootTypes))
	}

	tree, err := buildTree(b.model, b.engine, root)
	if err != nil {
		return nil, apperr.New(apperr.KindGeometryEngine, "ifcbuild.Build", err)
	}

	materialIndex, materials := collectMaterials(tree)
	batchTable, batchMapping := initBatchTableKeys(b.model, root)
	meshNameMapping := make(map[string]string)

	doc := &gltfdoc.Document{
		Asset:     gltfdoc.Asset{Version: "2.0", Generator: "ifcbuild"},
		Materials: materials,
	}

	byteOffset := 0
	emitter := &nodeEmitter{
		doc:             doc,
		materialIndex:   materialIndex,
		batchTable:      batchTable,
		batchMapping:    batchMapping,
		meshNameMapping: meshNameMapping,
		model:           b.model,
	}
	rootIndex, err := emitter.emit(tree, &byteOffset)
	if err != nil {
		return nil, apperr.New(apperr.KindGeometryEngine, "ifcbuild.Build", err)
	}

	defaultScene := 0
	doc.Scene = &defaultScene
	doc.Scenes = []gltfdoc.Scene{{Nodes: []int{rootIndex}}}
	doc.Buffers = []gltfdoc.Buffer{{ByteLength: len(emitter.blob), Data: emitter.blob}}
	doc.Blob = emitter.blob

	return &Result{
		Document:          doc,
		BatchTable:        batchTable,
		BatchTableMapping: batchMapping,
		MeshNameMapping:   meshNameMapping,
	}, nil
}

// nodeEmitter threads the mutable state __to_glb's closure over
// gltf_data captures: the document being assembled, the running byte
// offset, and the binary blob accumulated so far.
type nodeEmitter struct {
	doc             *gltfdoc.Document
	materialIndex   map[string]int
	batchTable      BatchTable
	batchMapping    BatchTableMapping
	meshNameMapping map[string]string
	model           *ifcstep.Model
	blob            []byte
}

// emit appends node (and its mesh, if any) to the document, recursing
// into children afterward, and returns node's own index. Ports
// __create_gltf_node_mesh.
func (e *nodeEmitter) emit(node *TreeNode, byteOffset *int) (int, error) {
	idx := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, gltfdoc.Node{Name: node.Name})

	if node.Mesh != nil {
		meshIndex := len(e.doc.Meshes)
		mesh, bufferViews, accessors, blob := buildMesh(node.Mesh, e.materialIndex, meshIndex, *byteOffset)

		if node.GlobalID != "" {
			data := extractElementData(e.model, node.element)
			addRow(e.batchTable, e.batchMapping, meshIndex, meshIndex, data)

			e.meshNameMapping[node.GlobalID] = common.Coalesce(mesh.Name, data.Name, "Mesh")
			mesh.Name = node.GlobalID
		}

		e.doc.Meshes = append(e.doc.Meshes, mesh)
		e.doc.BufferViews = append(e.doc.BufferViews, bufferViews...)
		e.doc.Accessors = append(e.doc.Accessors, accessors...)
		e.blob = append(e.blob, blob...)
		*byteOffset += len(blob)

		meshRef := meshIndex
		e.doc.Nodes[idx].Mesh = &meshRef
	}

	for _, child := range node.Children {
		childIdx, err := e.emit(child, byteOffset)
		if err != nil {
			return 0, err
		}
		e.doc.Nodes[idx].Children = append(e.doc.Nodes[idx].Children, childIdx)
	}

	return idx, nil
}

// collectMaterials walks tree in the same order emit will later use,
// assigning each distinct material name a glTF material slot the first
// time it's seen — mirrors material_dict's insertion-order-as-index
// convention. Returns the name->index map and the built material list.
func collectMaterials(tree *TreeNode) (map[string]int, []gltfdoc.Material) {
	index := make(map[string]int)
	var materials []gltfdoc.Material

	var walk func(node *TreeNode)
	walk = func(node *TreeNode) {
		if node.Mesh != nil {
			name := node.Mesh.Material.Name
			if _, ok := index[name]; !ok {
				index[name] = len(materials)
				materials = append(materials, toGltfMaterial(node.Mesh.Material))
			}
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(tree)

	return index, materials
}

func toGltfMaterial(m Material) gltfdoc.Material {
	color := m.Diffuse
	return gltfdoc.Material{
		Name: m.Name,
		PbrMetallicRoughness: &gltfdoc.PbrMetallicRoughness{
			BaseColorFactor: &color,
			MetallicFactor:  floatPtr(0),
			RoughnessFactor: floatPtr(0.5),
		},
		AlphaMode:   alphaMode(color),
		DoubleSided: false,
	}
}

func floatPtr(v float32) *float32 { return &v }
