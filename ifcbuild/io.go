package ifcbuild

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ktrn/tilesplit/apperr"
)

// BuildToDir runs Build and writes its outputs the way ifc_to_glb does:
// <outputBase>.glb, <outputBase>_batch_table.json,
// <outputBase>_batch_table_mapping.json, and
// <outputBase>_mesh_name_mapping.json, all under outputDir.
func (b *Builder) BuildToDir(outputDir, outputBase string) (*Result, error) {
	result, err := b.Build()
	if err != nil {
		return nil, err
	}

	glbPath := filepath.Join(outputDir, outputBase+".glb")
	if err := result.Document.Save(glbPath); err != nil {
		return nil, apperr.New(apperr.KindOutputIO, "ifcbuild.BuildToDir", err)
	}

	if err := SaveBatchTable(outputDir, outputBase, result.BatchTable, result.BatchTableMapping); err != nil {
		return nil, apperr.New(apperr.KindOutputIO, "ifcbuild.BuildToDir", err)
	}

	if err := saveMeshNameMapping(outputDir, outputBase, result.MeshNameMapping); err != nil {
		return nil, apperr.New(apperr.KindOutputIO, "ifcbuild.BuildToDir", err)
	}

	return result, nil
}

// saveMeshNameMapping mirrors __save_mesh_name_mapping.
func saveMeshNameMapping(outputDir, outputBase string, mapping map[string]string) error {
	path := filepath.Join(outputDir, outputBase+"_mesh_name_mapping.json")
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("ifcbuild: marshal mesh name mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ifcbuild: write %s: %w", path, err)
	}
	return nil
}
