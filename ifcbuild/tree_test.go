package ifcbuild

import (
	"strings"
	"testing"

	"github.com/ktrn/tilesplit/ifcstep"
)

// fakeEngine returns canned geometry groups keyed by element global id.
type fakeEngine struct {
	byGUID map[string][]Geometry
}

func (f *fakeEngine) Shape(element *ifcstep.Entity) ([]Geometry, error) {
	return f.byGUID[element.GlobalID()], nil
}

func parseTestModel(t *testing.T, spf string) *ifcstep.Model {
	t.Helper()
	model, err := ifcstep.Parse(strings.NewReader(spf))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return model
}

func TestExploreElementSingleGeometryGroup(t *testing.T) {
	model := parseTestModel(t, sampleSPFForBuild)
	root, ok := model.FirstOfType("IFCPROJECT")
	if !ok {
		t.Fatal("no project found")
	}

	engine := &fakeEngine{byGUID: map[string][]Geometry{
		"wall-guid": {{Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Faces: []uint32{0, 1, 2}, Material: Material{Name: "Mat1", Diffuse: [4]float32{1, 0, 0, 1}}}},
	}}

	tree, err := buildTree(model, engine, root)
	if err != nil {
		t.Fatalf("buildTree: %v", err)
	}

	wall := findNode(tree, "wall-guid")
	if wall == nil {
		t.Fatal("wall node not found in tree")
	}
	if wall.Mesh == nil {
		t.Fatal("wall node has no mesh")
	}
	if len(wall.Mesh.Positions) != 3 {
		t.Errorf("len(Positions) = %d, want 3", len(wall.Mesh.Positions))
	}
	if wall.Mesh.Material.Name != "Mat1" {
		t.Errorf("Material.Name = %q, want Mat1", wall.Mesh.Material.Name)
	}
}

func TestExploreElementMultiMaterialSplit(t *testing.T) {
	model := parseTestModel(t, sampleSPFForBuild)
	root, ok := model.FirstOfType("IFCPROJECT")
	if !ok {
		t.Fatal("no project found")
	}

	engine := &fakeEngine{byGUID: map[string][]Geometry{
		"wall-guid": {
			{Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Faces: []uint32{0, 1, 2}, Material: Material{Name: "Mat1"}},
			{Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Faces: []uint32{0, 1, 2}, Material: Material{Name: "Mat2"}},
		},
	}}

	tree, err := buildTree(model, engine, root)
	if err != nil {
		t.Fatalf("buildTree: %v", err)
	}

	wall := findNode(tree, "wall-guid")
	if wall == nil {
		t.Fatal("wall node not found in tree")
	}
	if wall.Mesh != nil {
		t.Error("multi-material wall should not carry its own Mesh")
	}
	if len(wall.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(wall.Children))
	}
	for _, child := range wall.Children {
		if child.Mesh == nil {
			t.Errorf("child %q has no mesh", child.Name)
		}
		if child.GlobalID != "wall-guid" {
			t.Errorf("child GlobalID = %q, want wall-guid", child.GlobalID)
		}
	}
}

func TestExploreElementNoRepresentationIsGroupOnly(t *testing.T) {
	model := parseTestModel(t, sampleSPFForBuild)
	root, ok := model.FirstOfType("IFCPROJECT")
	if !ok {
		t.Fatal("no project found")
	}

	engine := &fakeEngine{byGUID: map[string][]Geometry{}}
	tree, err := buildTree(model, engine, root)
	if err != nil {
		t.Fatalf("buildTree: %v", err)
	}
	if tree.Mesh != nil {
		t.Error("project node should have no mesh")
	}
	if len(tree.Children) == 0 {
		t.Error("project node should have children")
	}
}

func findNode(node *TreeNode, globalID string) *TreeNode {
	if node.GlobalID == globalID {
		return node
	}
	for _, child := range node.Children {
		if found := findNode(child, globalID); found != nil {
			return found
		}
	}
	return nil
}

const sampleSPFForBuild = `ISO-10303-21;
HEADER;
ENDSEC;
DATA;
#1=IFCPROJECT('proj-guid',$,'Project',$,$,$,$,$,$);
#2=IFCSITE('site-guid',$,'Site',$,$,$,$,$,$,$,$,$,$,$);
#3=IFCRELAGGREGATES('rel1',$,$,$,#1,(#2));
#4=IFCWALL('wall-guid',$,'Wall-1',$,$,$,#10,$);
#5=IFCRELCONTAINEDINSPATIALSTRUCTURE('rel2',$,$,$,(#4),#2);
ENDSEC;
END-ISO-10303-21;
`
