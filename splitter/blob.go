package splitter

import "github.com/ktrn/tilesplit/gltfdoc"

// Repacker rewrites a reindexed document's bufferViews to reference a
// single freshly-built buffer, slicing each bufferView's byte range out of
// the original source blob and concatenating the slices in bufferView
// order. Grounded on __recalculate_buffers_and_save_bin.
type Repacker struct {
	srcBlob []byte
}

// NewRepacker creates a Repacker over the source document's binary blob
// (buffer 0, GLB-embedded).
func NewRepacker(srcBlob []byte) *Repacker {
	return &Repacker{srcBlob: srcBlob}
}

// Repack slices out each bufferView's byte range from the source blob,
// concatenates them into one new blob, and rewrites doc's bufferViews to
// reference it (Buffer index 0, ByteOffset = position in the new blob).
// doc is mutated in place.
func (p *Repacker) Repack(doc *gltfdoc.Document) {
	var newBlob []byte

	for i := range doc.BufferViews {
		bv := &doc.BufferViews[i]
		start := bv.ByteOffset
		end := start + bv.ByteLength

		newOffset := len(newBlob)
		if start >= 0 && end <= len(p.srcBlob) {
			newBlob = append(newBlob, p.srcBlob[start:end]...)
		} else {
			// Out-of-range bufferView (shouldn't happen for a well-formed
			// source): pad with zeros rather than panic, so one malformed
			// tile doesn't abort the whole split run.
			newBlob = append(newBlob, make([]byte, bv.ByteLength)...)
		}

		bv.Buffer = 0
		bv.ByteOffset = newOffset
	}

	doc.Blob = newBlob
	doc.Buffers = []gltfdoc.Buffer{{ByteLength: len(newBlob), Data: newBlob}}
}
