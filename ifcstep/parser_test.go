package ifcstep

import "testing"

func TestParseValue(t *testing.T) {
	cases := []struct {
		name string
		tok  string
		want Value
	}{
		{"null", "$", Value{Kind: KindNull}},
		{"derived", "*", Value{Kind: KindNull}},
		{"ref", "#42", Value{Kind: KindRef, Ref: 42}},
		{"string", "'hello'", Value{Kind: KindString, Str: "hello"}},
		{"string with escaped quote", "'it''s'", Value{Kind: KindString, Str: "it's"}},
		{"enum", ".T.", Value{Kind: KindEnum, Enum: "T"}},
		{"number", "3.14", Value{Kind: KindNumber, Num: 3.14}},
		{"negative number", "-12", Value{Kind: KindNumber, Num: -12}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := parseValue(c.tok)
			if got.Kind != c.want.Kind {
				t.Fatalf("Kind = %v, want %v", got.Kind, c.want.Kind)
			}
			switch c.want.Kind {
			case KindRef:
				if got.Ref != c.want.Ref {
					t.Errorf("Ref = %v, want %v", got.Ref, c.want.Ref)
				}
			case KindString:
				if got.Str != c.want.Str {
					t.Errorf("Str = %q, want %q", got.Str, c.want.Str)
				}
			case KindEnum:
				if got.Enum != c.want.Enum {
					t.Errorf("Enum = %q, want %q", got.Enum, c.want.Enum)
				}
			case KindNumber:
				if got.Num != c.want.Num {
					t.Errorf("Num = %v, want %v", got.Num, c.want.Num)
				}
			}
		})
	}
}

func TestParseValueList(t *testing.T) {
	got := parseValue("(#1,#2,#3)")
	if got.Kind != KindList {
		t.Fatalf("Kind = %v, want KindList", got.Kind)
	}
	if len(got.List) != 3 {
		t.Fatalf("len(List) = %d, want 3", len(got.List))
	}
	for i, want := range []ID{1, 2, 3} {
		if ref, ok := got.List[i].AsRef(); !ok || ref != want {
			t.Errorf("List[%d] = %v, want ref %v", i, got.List[i], want)
		}
	}
}

func TestParseValueTypedWrapper(t *testing.T) {
	got := parseValue("IFCLABEL('WBS')")
	if got.Kind != KindTyped {
		t.Fatalf("Kind = %v, want KindTyped", got.Kind)
	}
	if got.TypeName != "IFCLABEL" {
		t.Errorf("TypeName = %q, want IFCLABEL", got.TypeName)
	}
	if s, ok := got.Unwrap().AsString(); !ok || s != "WBS" {
		t.Errorf("Unwrap().AsString() = %q, %v, want WBS, true", s, ok)
	}
}

func TestSplitTopLevelRespectsNestingAndQuotes(t *testing.T) {
	got := splitTopLevel("#1,'a,b',(#2,#3),$")
	want := []string{"#1", "'a,b'", "(#2,#3)", "$"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitStatementsRespectsQuotedSemicolons(t *testing.T) {
	got := splitStatements("#1=IFCWALL('a;b',$);#2=IFCDOOR($);")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(got), got)
	}
}

func TestParseStatement(t *testing.T) {
	e, err := parseStatement("#10=IFCWALL('guid',$,'Wall-1',$,$,$,#99,$)")
	if err != nil {
		t.Fatalf("parseStatement: %v", err)
	}
	if e.ID != 10 {
		t.Errorf("ID = %v, want 10", e.ID)
	}
	if e.Type != "IFCWALL" {
		t.Errorf("Type = %q, want IFCWALL", e.Type)
	}
	if e.GlobalID() != "guid" {
		t.Errorf("GlobalID() = %q, want guid", e.GlobalID())
	}
	if e.Name() != "Wall-1" {
		t.Errorf("Name() = %q, want Wall-1", e.Name())
	}
	if ref, ok := e.Representation(); !ok || ref != 99 {
		t.Errorf("Representation() = %v, %v, want 99, true", ref, ok)
	}
}

func TestParseStatementMalformed(t *testing.T) {
	if _, err := parseStatement("#10 IFCWALL()"); err == nil {
		t.Fatal("expected error for missing '='")
	}
	if _, err := parseStatement("#10=IFCWALL"); err == nil {
		t.Fatal("expected error for missing parens")
	}
}

func TestParseContentMissingDataSection(t *testing.T) {
	_, err := parseContent("ISO-10303-21;\nHEADER;\nENDSEC;\nEND-ISO-10303-21;")
	if err != ErrMissingDataSection {
		t.Fatalf("err = %v, want ErrMissingDataSection", err)
	}
}

const sampleSPF = `ISO-10303-21;
HEADER;
ENDSEC;
DATA;
#1=IFCPROJECT('proj-guid',$,'Project',$,$,$,$,$,$);
#2=IFCSITE('site-guid',$,'Site',$,$,$,$,$,$,$,$,$,$,$);
#3=IFCRELAGGREGATES('rel1',$,$,$,#1,(#2));
#4=IFCWALL('wall-guid',$,'Wall-1',$,$,$,#10,$);
#5=IFCRELCONTAINEDINSPATIALSTRUCTURE('rel2',$,$,$,(#4),#2);
#6=IFCPROPERTYSET('ps-guid',$,'Pset',$,(#7));
#7=IFCPROPERTYSINGLEVALUE('WBS',$,'1.2.3',$);
#8=IFCRELDEFINESBYPROPERTIES('rd-guid',$,$,$,(#4),#6);
ENDSEC;
END-ISO-10303-21;
`

func TestParseContentAndTreeWalk(t *testing.T) {
	model, err := parseContent(sampleSPF)
	if err != nil {
		t.Fatalf("parseContent: %v", err)
	}

	project, ok := model.FirstOfType("IFCPROJECT")
	if !ok {
		t.Fatal("no IFCPROJECT found")
	}

	children := model.Children(project)
	if len(children) != 1 || children[0].Type != "IFCSITE" {
		t.Fatalf("Children(project) = %v, want one IFCSITE", children)
	}

	site := children[0]
	siteChildren := model.Children(site)
	if len(siteChildren) != 1 || siteChildren[0].Type != "IFCWALL" {
		t.Fatalf("Children(site) = %v, want one IFCWALL", siteChildren)
	}

	wall := siteChildren[0]
	if wall.GlobalID() != "wall-guid" {
		t.Errorf("wall.GlobalID() = %q, want wall-guid", wall.GlobalID())
	}
	if ref, ok := wall.Representation(); !ok || ref != 10 {
		t.Errorf("wall.Representation() = %v, %v, want 10, true", ref, ok)
	}

	if got := model.WBS(wall); got != "1.2.3" {
		t.Errorf("WBS(wall) = %q, want 1.2.3", got)
	}
	props := model.Properties(wall)
	if props["WBS"] != "1.2.3" {
		t.Errorf("Properties(wall)[WBS] = %q, want 1.2.3", props["WBS"])
	}
}
