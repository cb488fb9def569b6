package gltfdoc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Save serializes the document as a GLB file at path. The document's single
// binary buffer (Blob) is embedded as the GLB BIN chunk; Buffers[0].URI must
// be empty for this to round-trip through Load.
func (doc *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gltfdoc: create %s: %w", path, err)
	}
	defer f.Close()

	if err := doc.Write(f); err != nil {
		return fmt.Errorf("gltfdoc: write %s: %w", path, err)
	}
	return nil
}

// Write encodes the document as a binary GLB container: a 12-byte header
// followed by a mandatory JSON chunk and an optional BIN chunk, each padded
// to a 4-byte boundary per the GLB chunk layout.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (doc *Document) Write(w io.Writer) error {
	if doc.Asset.Version == "" {
		doc.Asset.Version = "2.0"
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("gltfdoc: marshal JSON: %w", err)
	}
	jsonChunk := padChunk(jsonBytes, ' ')

	var binChunk []byte
	if len(doc.Blob) > 0 {
		binChunk = padChunk(doc.Blob, 0)
	}

	totalLength := uint32(12) + uint32(8+len(jsonChunk))
	if binChunk != nil {
		totalLength += uint32(8 + len(binChunk))
	}

	header := GLBHeader{Magic: GLBMagic, Version: GLBVersion, Length: totalLength}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write GLB header: %w", err)
	}

	jsonHeader := GLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: GLBChunkJSON}
	if err := binary.Write(w, binary.LittleEndian, &jsonHeader); err != nil {
		return fmt.Errorf("write JSON chunk header: %w", err)
	}
	if _, err := w.Write(jsonChunk); err != nil {
		return fmt.Errorf("write JSON chunk: %w", err)
	}

	if binChunk != nil {
		binHeader := GLBChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: GLBChunkBIN}
		if err := binary.Write(w, binary.LittleEndian, &binHeader); err != nil {
			return fmt.Errorf("write BIN chunk header: %w", err)
		}
		if _, err := w.Write(binChunk); err != nil {
			return fmt.Errorf("write BIN chunk: %w", err)
		}
	}

	return nil
}

// padChunk right-pads data to a 4-byte boundary with the given filler byte,
// per the GLB spec's chunk alignment requirement (space for JSON, zero for
// BIN).
func padChunk(data []byte, filler byte) []byte {
	padding := (4 - len(data)%4) % 4
	if padding == 0 {
		return data
	}
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = filler
	}
	return out
}

// Bytes returns the document's GLB encoding as an in-memory byte slice.
func (doc *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
