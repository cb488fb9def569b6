// Package metadata merges a build's batch-table side-cars into its GLB as
// standard 3D Tiles next-generation metadata: EXT_structural_metadata for
// the property table itself, and EXT_mesh_features for the per-primitive
// feature-id attribute that indexes into it. Grounded on ifc_service.py's
// merge_metadata and its four callees.
package metadata

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ktrn/tilesplit/gltfdoc"
)

// buildStructuralMetadata builds the EXT_structural_metadata schema plus
// its side-car buffer data, one string-valued property per batch-table
// column, laid out as bufferViews/accessors referencing a buffer index
// not yet appended to doc (the caller appends it right after, at exactly
// that index). Mirrors create_structural_metadata.
func buildStructuralMetadata(doc *gltfdoc.Document, batchTable map[string][]any, columnOrder []string) (map[string]any, []byte) {
	var buf []byte
	bufferIndex := len(doc.Buffers)

	addStringBufferViewAndAccessor := func(values []any) (int, int) {
		var offsets []uint32
		byteOffset := len(buf)
		currentOffset := 0

		for _, v := range values {
			encoded := []byte(formatPropertyValue(v))
			buf = append(buf, encoded...)
			offsets = append(offsets, uint32(currentOffset))
			currentOffset += len(encoded)
		}
		if currentOffset == 0 {
			return 0, 0
		}
		offsets = append(offsets, uint32(currentOffset))

		doc.BufferViews = append(doc.BufferViews, gltfdoc.BufferView{
			Buffer:     bufferIndex,
			ByteOffset: byteOffset,
			ByteLength: currentOffset,
		})
		doc.Accessors = append(doc.Accessors, gltfdoc.Accessor{
			BufferView:    intPtr(len(doc.BufferViews) - 1),
			ComponentType: gltfdoc.ComponentTypeUnsignedByte,
			Count:         currentOffset,
			Type:          gltfdoc.TypeScalar,
		})

		offsetsByteOffset := len(buf)
		offsetsData := make([]byte, len(offsets)*4)
		for i, o := range offsets {
			binary.LittleEndian.PutUint32(offsetsData[i*4:], o)
		}
		buf = append(buf, offsetsData...)

		doc.BufferViews = append(doc.BufferViews, gltfdoc.BufferView{
			Buffer:     bufferIndex,
			ByteOffset: offsetsByteOffset,
			ByteLength: len(offsetsData),
		})
		doc.Accessors = append(doc.Accessors, gltfdoc.Accessor{
			BufferView:    intPtr(len(doc.BufferViews) - 1),
			ComponentType: gltfdoc.ComponentTypeUnsignedInt,
			Count:         len(offsets),
			Type:          gltfdoc.TypeScalar,
		})

		return len(doc.Accessors) - 2, len(doc.Accessors) - 1
	}

	properties := map[string]any{}
	classProperties := map[string]any{}

	for _, key := range columnOrder {
		values := batchTable[key]
		if len(values) == 0 {
			continue
		}

		valuesAccessor, offsetsAccessor := addStringBufferViewAndAccessor(values)
		if valuesAccessor == 0 && offsetsAccessor == 0 {
			continue
		}
		properties[key] = map[string]any{
			"values":        valuesAccessor,
			"stringOffsets": offsetsAccessor,
		}
		classProperties[key] = map[string]any{
			"name":        key,
			"type":        "STRING",
			"description": fmt.Sprintf("Generated from %s", key),
		}
	}

	structuralMetadata := map[string]any{
		"schema": map[string]any{
			"id":   "ID_batch_table",
			"name": "Generated from batch_table",
			"classes": map[string]any{
				"class_batch_table": map[string]any{"properties": classProperties},
			},
		},
		"propertyTables": []any{
			map[string]any{
				"class":      "class_batch_table",
				"count":      len(batchTable["globalId"]),
				"properties": properties,
			},
		},
	}

	return structuralMetadata, buf
}

// addStructuralMetadataToGltf registers the EXT_structural_metadata
// extension on doc and appends its buffer, pointing at an external .bin
// side-car the caller writes separately. Mirrors
// add_structural_metadata_to_gltf.
func addStructuralMetadataToGltf(doc *gltfdoc.Document, binFilename string, structuralMetadata map[string]any, data []byte) {
	doc.ExtensionsUsed = appendUnique(doc.ExtensionsUsed, "EXT_structural_metadata", "EXT_mesh_features")

	if doc.Extensions == nil {
		doc.Extensions = make(map[string]any)
	}
	doc.Extensions["EXT_structural_metadata"] = structuralMetadata

	doc.Buffers = append(doc.Buffers, gltfdoc.Buffer{URI: binFilename, ByteLength: len(data)})
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

// formatPropertyValue renders one batch-table cell the way Python's
// add_string_buffer_view_and_accessor does: nil -> empty string, dict ->
// its JSON encoding, numbers (batchId is the only numeric column) -> their
// decimal form, strings passed through untouched.
func formatPropertyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case map[string]any:
		data, _ := json.Marshal(t)
		return string(data)
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}

func intPtr(v int) *int { return &v }
