package ifcstep

// Entity is one parsed STEP instance: `#id=TYPE(args);`. Args are kept
// purely positional, following the EXPRESS schema's attribute ordering —
// this tool never needs a full schema, only the handful of well-known
// offsets the accessors below name.
type Entity struct {
	ID   ID
	Type string
	Args []Value
}

// Arg returns attribute i, or a null Value if the entity has fewer
// attributes than i (lenient rather than panicking — schema versions
// vary in trailing optional attributes across IFC2x3/IFC4).
func (e *Entity) Arg(i int) Value {
	if i < 0 || i >= len(e.Args) {
		return Value{Kind: KindNull}
	}
	return e.Args[i]
}

// Is reports whether the entity's type name matches (case already
// normalized to upper by the parser).
func (e *Entity) Is(typeName string) bool { return e.Type == typeName }

// GlobalID returns attribute 0, valid for any IfcRoot-derived entity —
// the only branch of the schema this tool ever walks (IfcObjectDefinition,
// IfcPropertyDefinition, IfcRelationship all descend from IfcRoot).
func (e *Entity) GlobalID() string {
	s, _ := e.Arg(0).AsString()
	return s
}

// Name returns attribute 2 (IfcRoot.Name).
func (e *Entity) Name() string {
	s, _ := e.Arg(2).AsString()
	return s
}

// Representation returns attribute 6 (IfcProduct.Representation). The
// offset is stable across every IfcProduct subtype because EXPRESS always
// appends a subtype's own attributes after its supertype's.
func (e *Entity) Representation() (ID, bool) {
	return e.Arg(6).AsRef()
}

// RefList reads an attribute expected to hold a list of entity references
// and resolves each one against model.
func (m *Model) RefList(v Value) []*Entity {
	if v.Kind != KindList {
		return nil
	}
	out := make([]*Entity, 0, len(v.List))
	for _, item := range v.List {
		if ref, ok := item.AsRef(); ok {
			if e, ok := m.ByID(ref); ok {
				out = append(out, e)
			}
		}
	}
	return out
}
