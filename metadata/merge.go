package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ktrn/tilesplit/apperr"
	"github.com/ktrn/tilesplit/gltfdoc"
	"github.com/ktrn/tilesplit/ifcbuild"
)

// Merge reads a build's three JSON side-cars and its GLB from outputDir,
// attaches EXT_structural_metadata and EXT_mesh_features, writes the two
// new .bin buffers those extensions need, and saves
// "<baseName>_merged_with_metadata.glb". Mirrors merge_metadata.
func Merge(outputDir, baseName string) (string, error) {
	batchTable, err := readJSON[map[string][]any](filepath.Join(outputDir, baseName+"_batch_table.json"))
	if err != nil {
		return "", apperr.New(apperr.KindInputIO, "metadata.Merge", err)
	}
	batchMapping, err := readJSON[ifcbuild.BatchTableMapping](filepath.Join(outputDir, baseName+"_batch_table_mapping.json"))
	if err != nil {
		return "", apperr.New(apperr.KindInputIO, "metadata.Merge", err)
	}
	meshNameMapping, err := readJSON[map[string]string](filepath.Join(outputDir, baseName+"_mesh_name_mapping.json"))
	if err != nil {
		return "", apperr.New(apperr.KindInputIO, "metadata.Merge", err)
	}

	glbPath := filepath.Join(outputDir, baseName+".glb")
	doc, err := gltfdoc.Load(glbPath)
	if err != nil {
		return "", apperr.New(apperr.KindInputIO, "metadata.Merge", err)
	}

	structuralMetadata, structuralBuf := buildStructuralMetadata(doc, batchTable, sortedColumns(batchTable))
	structuralBinName := baseName + "_feature_metadata_buffer.bin"
	addStructuralMetadataToGltf(doc, structuralBinName, structuralMetadata, structuralBuf)
	if err := os.WriteFile(filepath.Join(outputDir, structuralBinName), structuralBuf, 0o644); err != nil {
		return "", apperr.New(apperr.KindOutputIO, "metadata.Merge", err)
	}

	featureBuf := addFeatureIDs(doc, batchMapping, meshNameMapping)
	if len(featureBuf) > 0 {
		featureBinName := baseName + "_feature_ids_buffer.bin"
		doc.Buffers = append(doc.Buffers, gltfdoc.Buffer{URI: featureBinName, ByteLength: len(featureBuf)})
		if err := os.WriteFile(filepath.Join(outputDir, featureBinName), featureBuf, 0o644); err != nil {
			return "", apperr.New(apperr.KindOutputIO, "metadata.Merge", err)
		}
	}

	mergedPath := filepath.Join(outputDir, baseName+"_merged_with_metadata.glb")
	if err := doc.Save(mergedPath); err != nil {
		return "", apperr.New(apperr.KindOutputIO, "metadata.Merge", err)
	}

	return mergedPath, nil
}

// sortedColumns orders a decoded batch table's columns deterministically:
// "batchId" first, then every other column alphabetically. JSON object key
// order isn't preserved by map[string][]any, so this is a reproducibility
// choice rather than a faithful port of Python's insertion-order dict.
func sortedColumns(table map[string][]any) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		if k == "batchId" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append([]string{"batchId"}, keys...)
}

func readJSON[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("metadata: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("metadata: decode %s: %w", path, err)
	}
	return out, nil
}
