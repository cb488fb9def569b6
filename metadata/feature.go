package metadata

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/ktrn/tilesplit/gltfdoc"
	"github.com/ktrn/tilesplit/ifcbuild"
)

// addFeatureIDs walks every mesh in doc, attaching an EXT_mesh_features
// _FEATURE_ID_0 accessor (the mesh's batch id, repeated once per vertex)
// to each of its primitives, and renaming the mesh back to its
// pre-batch-table name via meshNameMapping. Returns the accumulated
// feature-id buffer data, to be saved as its own .bin side-car (nil if no
// mesh contributed any). Mirrors generate_feature_data /
// generate_feature_data_helper.
func addFeatureIDs(doc *gltfdoc.Document, batchMapping ifcbuild.BatchTableMapping, meshNameMapping map[string]string) []byte {
	var buf []byte
	bufferIndex := len(doc.Buffers)

	for meshIndex := range doc.Meshes {
		mesh := &doc.Meshes[meshIndex]

		mappingKey := mesh.Name + strconv.Itoa(meshIndex)
		row, ok := batchMapping[mappingKey]
		if !ok {
			continue
		}

		if original, ok := meshNameMapping[mesh.Name]; ok {
			mesh.Name = original
		}

		for primIndex := range mesh.Primitives {
			primitive := &mesh.Primitives[primIndex]

			posAccessor, ok := primitive.Attributes.Get("POSITION")
			if !ok {
				continue
			}
			vertexCount := doc.Accessors[posAccessor].Count

			data := make([]byte, vertexCount*4)
			featureID := float32(row.BatchID)
			for i := 0; i < vertexCount; i++ {
				binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(featureID))
			}
			if len(data) == 0 {
				continue
			}

			byteOffset := len(buf)
			buf = append(buf, data...)

			doc.BufferViews = append(doc.BufferViews, gltfdoc.BufferView{
				Buffer:     bufferIndex,
				ByteOffset: byteOffset,
				ByteLength: len(data),
				Target:     intPtr(gltfdoc.TargetArrayBuffer),
			})
			doc.Accessors = append(doc.Accessors, gltfdoc.Accessor{
				BufferView:    intPtr(len(doc.BufferViews) - 1),
				ComponentType: gltfdoc.ComponentTypeFloat,
				Count:         vertexCount,
				Type:          gltfdoc.TypeScalar,
			})
			featureAccessor := len(doc.Accessors) - 1

			primitive.Attributes.Set("_FEATURE_ID_0", featureAccessor)
			primitive.Extensions = map[string]any{
				"EXT_mesh_features": map[string]any{
					"featureIds": []any{
						map[string]any{
							"attribute":     0,
							"featureCount":  1,
							"propertyTable": 0,
						},
					},
				},
			}
		}
	}

	return buf
}
