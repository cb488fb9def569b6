package ifcbuild

import (
	"strings"
	"testing"

	"github.com/ktrn/tilesplit/ifcstep"
)

func TestInitBatchTableKeysAndAddRow(t *testing.T) {
	model, err := ifcstep.Parse(strings.NewReader(sampleSPFForBuild))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	project, ok := model.FirstOfType("IFCPROJECT")
	if !ok {
		t.Fatal("no project found")
	}
	wall, ok := model.ByID(4)
	if !ok {
		t.Fatal("no wall found")
	}

	table, mapping := initBatchTableKeys(model, project)
	if _, ok := table["batchId"]; !ok {
		t.Fatal("table missing batchId column")
	}
	if _, ok := table["globalId"]; !ok {
		t.Fatal("table missing globalId column")
	}

	data := extractElementData(model, wall)
	addRow(table, mapping, 0, 0, data)

	if len(table["batchId"]) != 1 || table["batchId"][0] != 0 {
		t.Errorf("batchId column = %v, want [0]", table["batchId"])
	}
	if len(table["globalId"]) != 1 || table["globalId"][0] != "wall-guid" {
		t.Errorf("globalId column = %v, want [wall-guid]", table["globalId"])
	}

	row, ok := mapping["wall-guid0"]
	if !ok {
		t.Fatal("mapping missing wall-guid0 key")
	}
	if row.BatchID != 0 || row.MeshIndex != 0 {
		t.Errorf("row = %+v, want BatchID=0 MeshIndex=0", row)
	}
}

func TestAddRowBackfillsMissingColumns(t *testing.T) {
	table := BatchTable{"batchId": {}, "globalId": {}, "WBS": {}}
	mapping := BatchTableMapping{}

	addRow(table, mapping, 0, 0, elementData{GlobalID: "a", Properties: map[string]string{"WBS": "1.1"}})
	addRow(table, mapping, 1, 1, elementData{GlobalID: "b"})

	if len(table["WBS"]) != 2 {
		t.Fatalf("len(WBS) = %d, want 2", len(table["WBS"]))
	}
	if table["WBS"][0] != "1.1" {
		t.Errorf("WBS[0] = %v, want 1.1", table["WBS"][0])
	}
	if table["WBS"][1] != "" {
		t.Errorf("WBS[1] = %v, want empty backfill", table["WBS"][1])
	}
}
