package ifcbuild

import (
	"fmt"

	"github.com/ktrn/tilesplit/ifcstep"
)

// TreeNode is one node of the spatial-decomposition tree built from an
// IFC file: either a pure group (Mesh nil) or a leaf carrying one
// collected mesh.
type TreeNode struct {
	GlobalID string
	Name     string
	Mesh     *CollectedGeometry
	Children []*TreeNode

	// element backs batch-table row extraction (WBS + other properties).
	// Unexported: nothing outside this package needs the raw IFC entity.
	element *ifcstep.Entity
}

// CollectedGeometry is one mesh's geometry, already permuted to glTF
// vertex convention and with its material run through the color law.
type CollectedGeometry struct {
	Positions [][3]float32
	Indices   []uint32
	Material  Material
}

// buildTree walks the spatial-decomposition/containment graph starting
// at root, mirroring explore_element's recursive shape.
func buildTree(model *ifcstep.Model, engine GeometryEngine, root *ifcstep.Entity) (*TreeNode, error) {
	return exploreElement(model, engine, root)
}

func exploreElement(model *ifcstep.Model, engine GeometryEngine, element *ifcstep.Entity) (*TreeNode, error) {
	node := &TreeNode{GlobalID: element.GlobalID(), Name: elementLabel(element), element: element}

	if _, hasRepresentation := element.Representation(); hasRepresentation {
		groups, err := engine.Shape(element)
		if err != nil {
			return nil, fmt.Errorf("ifcbuild: shape %s: %w", node.GlobalID, err)
		}

		switch len(groups) {
		case 0:
			// No usable geometry (e.g. a non-solid representation) —
			// falls through to a plain group node below.
		case 1:
			node.Mesh = toCollectedGeometry(groups[0])
		default:
			// Multi-material split: one synthetic child per material
			// group, named "<parent> | <material>". Matches
			// explore_element's early return — the element's own
			// structural children are not explored in this branch.
			for _, g := range groups {
				node.Children = append(node.Children, &TreeNode{
					GlobalID: element.GlobalID(),
					Name:     fmt.Sprintf("%s | %s", node.Name, g.Material.Name),
					Mesh:     toCollectedGeometry(g),
					element:  element,
				})
			}
			return node, nil
		}
	}

	for _, child := range model.Children(element) {
		childNode, err := exploreElement(model, engine, child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}

	return node, nil
}

// elementLabel mirrors TreeNode's Python constructor: the IFC type name,
// plus " | <Name>" when the element has one. This repo's type name stays
// upper-cased (IFCWALL, not IfcWall) since the STEP file itself only
// records the upper-cased token and no schema name table is available to
// restore the canonical mixed case.
func elementLabel(e *ifcstep.Entity) string {
	label := e.Type
	if name := e.Name(); name != "" {
		label += " | " + name
	}
	return label
}

func toCollectedGeometry(g Geometry) *CollectedGeometry {
	return &CollectedGeometry{
		Positions: permuteVertices(g.Vertices),
		Indices:   g.Faces,
		Material:  normalizeMaterial(g.Material),
	}
}
