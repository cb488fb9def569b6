package ifcbuild

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ktrn/tilesplit/ifcstep"
)

// BatchTable is a column store: one slice per property name, one entry
// per batched mesh, in batch-id order.
type BatchTable map[string][]any

// BatchTableMapping looks up a mesh's batch row by "<mesh name><mesh
// index>", the same composite key generate_feature_data_helper uses.
type BatchTableMapping map[string]BatchRow

// BatchRow is one mesh's batch-table coordinates.
type BatchRow struct {
	BatchID   int
	MeshIndex int
}

// elementData is the subset of an IFC element's data this tool can
// extract without a full EXPRESS schema: identity, WBS, and any other
// IfcPropertySingleValue the element carries. Stands in for to_dict's
// generic attribute-reflection dump, narrowed to what ifcstep's
// schema-free reader can actually name.
type elementData struct {
	GlobalID   string
	Name       string
	Type       string
	Properties map[string]string
}

func extractElementData(model *ifcstep.Model, element *ifcstep.Entity) elementData {
	return elementData{
		GlobalID:   element.GlobalID(),
		Name:       element.Name(),
		Type:       element.Type,
		Properties: model.Properties(element),
	}
}

func (d elementData) columns() map[string]any {
	cols := map[string]any{
		"globalId": d.GlobalID,
		"name":     d.Name,
		"type":     d.Type,
	}
	for k, v := range d.Properties {
		cols[k] = v
	}
	return cols
}

// initBatchTableKeys seeds a BatchTable with "batchId" plus one column
// per key the project root's extracted data exposes. Columns that only
// later elements carry (such as WBS) are added by addRow. Mirrors
// init_batch_table_keys.
func initBatchTableKeys(model *ifcstep.Model, project *ifcstep.Entity) (BatchTable, BatchTableMapping) {
	table := BatchTable{"batchId": {}}
	for key := range extractElementData(model, project).columns() {
		table[key] = []any{}
	}
	return table, BatchTableMapping{}
}

// addRow appends one mesh's data to the batch table under batchID (the
// mesh's own index — the source reuses node.mesh_index as the batch id
// directly, one row appended per mesh in mesh-index order) and records
// the mapping entry used to look it up later. The mapping key is the
// element's GlobalId plus its mesh index (create_batch_table's
// `property["globalId"] + str(index)`), not the mesh's own name — by the
// time a later merge step reads this mapping back, the mesh has already
// been renamed to its GlobalId, so the two agree. Mirrors
// create_batch_table.
func addRow(table BatchTable, mapping BatchTableMapping, meshIndex, batchID int, data elementData) {
	table["batchId"] = append(table["batchId"], batchID)

	for key, value := range data.columns() {
		if _, known := table[key]; !known {
			// A column first seen on this row: earlier rows get "".
			column := make([]any, len(table["batchId"])-1, len(table["batchId"]))
			for i := range column {
				column[i] = ""
			}
			table[key] = column
		}
		table[key] = append(table[key], value)
	}
	// Backfill any column this row didn't supply, so every column stays
	// the same length (batchId just grew by one).
	for key, values := range table {
		if key == "batchId" {
			continue
		}
		if len(values) < len(table["batchId"]) {
			table[key] = append(values, "")
		}
	}

	mapping[fmt.Sprintf("%s%d", data.GlobalID, meshIndex)] = BatchRow{BatchID: batchID, MeshIndex: meshIndex}
}

// SaveBatchTable writes the batch table and its mapping as two JSON
// side-cars next to a build's output GLB, mirroring save_batch_table.
func SaveBatchTable(outputDir, baseName string, table BatchTable, mapping BatchTableMapping) error {
	if err := writeJSON(filepath.Join(outputDir, baseName+"_batch_table.json"), table); err != nil {
		return err
	}
	return writeJSON(filepath.Join(outputDir, baseName+"_batch_table_mapping.json"), mapping)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ifcbuild: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ifcbuild: write %s: %w", path, err)
	}
	return nil
}
