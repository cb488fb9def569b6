// Package ifcstep reads an IFC-SPF (ISO-10303-21) file into an in-memory
// entity graph: every instance line parsed into an Entity keyed by its
// STEP instance id, plus the handful of relationship walks ifcbuild needs
// (spatial decomposition, containment, property definition) resolved
// against that graph. There is no general EXPRESS schema here — only the
// fixed attribute offsets and relationship entity types the IFC4 spec
// defines for IfcRoot, IfcRelAggregates, IfcRelContainedInSpatialStructure,
// and IfcRelDefinesByProperties, which is all ifcbuild's tree walk needs.
package ifcstep

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrMissingDataSection is returned when a file has no DATA; section,
	// meaning it isn't a STEP physical file at all.
	ErrMissingDataSection = errors.New("ifcstep: no DATA; section found")
	// ErrMalformedStatement is returned when an instance line doesn't
	// match `#id=TYPE(...)`.
	ErrMalformedStatement = errors.New("ifcstep: malformed instance statement")
)

// Model is a parsed IFC file: every entity instance, indexed both by id
// and by type.
type Model struct {
	entities map[ID]*Entity
	byType   map[string][]*Entity
}

func newModel() *Model {
	return &Model{
		entities: make(map[ID]*Entity),
		byType:   make(map[string][]*Entity),
	}
}

func (m *Model) add(e *Entity) {
	m.entities[e.ID] = e
	m.byType[e.Type] = append(m.byType[e.Type], e)
}

// ByID looks up an entity by its STEP instance label.
func (m *Model) ByID(id ID) (*Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// ByType returns every entity of the given (upper-cased) IFC type, e.g.
// "IFCWALL". Order matches file declaration order.
func (m *Model) ByType(t string) []*Entity {
	return m.byType[t]
}

// FirstOfType returns the first entity of the given type in file order,
// used to locate a build's spatial root.
func (m *Model) FirstOfType(t string) (*Entity, bool) {
	list := m.byType[t]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Children returns element's spatial-decomposition and containment
// children, mirroring get_child_elements: every IfcRelAggregates naming
// element as RelatingObject contributes its RelatedObjects, and every
// IfcRelContainedInSpatialStructure naming element as RelatingStructure
// contributes its RelatedElements.
func (m *Model) Children(element *Entity) []*Entity {
	var out []*Entity

	for _, rel := range m.byType["IFCRELAGGREGATES"] {
		if relating, ok := rel.Arg(4).AsRef(); ok && relating == element.ID {
			out = append(out, m.RefList(rel.Arg(5))...)
		}
	}
	for _, rel := range m.byType["IFCRELCONTAINEDINSPATIALSTRUCTURE"] {
		if relating, ok := rel.Arg(5).AsRef(); ok && relating == element.ID {
			out = append(out, m.RefList(rel.Arg(4))...)
		}
	}

	return out
}

// Properties walks every IfcRelDefinesByProperties relating element to an
// IfcPropertySet and returns its IfcPropertySingleValue members as a flat
// name->value map. Generalizes __get_wbs_data (which scans the same
// relations for a single named property) to every property an element
// carries, since the batch-table column set isn't known ahead of time.
func (m *Model) Properties(element *Entity) map[string]string {
	props := make(map[string]string)

	for _, rel := range m.byType["IFCRELDEFINESBYPROPERTIES"] {
		related := m.RefList(rel.Arg(4))
		isTarget := false
		for _, r := range related {
			if r.ID == element.ID {
				isTarget = true
				break
			}
		}
		if !isTarget {
			continue
		}

		propSetRef, ok := rel.Arg(5).AsRef()
		if !ok {
			continue
		}
		propSet, ok := m.ByID(propSetRef)
		if !ok || propSet.Type != "IFCPROPERTYSET" {
			continue
		}

		for _, prop := range m.RefList(propSet.Arg(4)) {
			if prop.Type != "IFCPROPERTYSINGLEVALUE" {
				continue
			}
			// IfcPropertySingleValue is not IfcRoot-derived: Name(0),
			// Description(1), NominalValue(2), Unit(3).
			name, _ := prop.Arg(0).AsString()
			if name == "" {
				continue
			}
			if value, ok := prop.Arg(2).AsString(); ok {
				props[name] = value
			} else if value, ok := prop.Arg(2).AsNumber(); ok {
				props[name] = fmt.Sprintf("%g", value)
			}
		}
	}

	return props
}

// WBS returns the "WBS" property from Properties, mirroring
// __get_wbs_data. Empty string if none is found.
func (m *Model) WBS(element *Entity) string {
	return m.Properties(element)["WBS"]
}

// ParseFile reads and parses path as an IFC-SPF file.
func ParseFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ifcstep: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an IFC-SPF stream into a Model.
func Parse(r io.Reader) (*Model, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ifcstep: read: %w", err)
	}
	return parseContent(string(raw))
}
