package marc

import (
	"bytes"
	"fmt"
	"io"
)

// Writer encodes records to a byte stream in ISO 2709 transmission
// format. The leader's record-length and base-address slots are
// recomputed for every record; the remaining leader positions are taken
// from Record.Leader (or DefaultLeader when it is not 24 bytes).
type Writer struct {
	w io.Writer
}

// NewWriter wraps w in an ISO 2709 record writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes one record.
func (w *Writer) Write(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("write record: nil record")
	}

	var dir, data bytes.Buffer
	for _, f := range rec.Fields {
		start := data.Len()
		if err := encodeField(&data, f); err != nil {
			return err
		}
		// The directory slots are fixed-width: 4 digits for the field
		// length, 5 for its start position.
		if fl := data.Len() - start; fl > 9999 {
			return fmt.Errorf("write record: field %s is %d bytes, exceeds format maximum of 9999", f.Tag, fl)
		}
		if start > 99999 {
			return fmt.Errorf("write record: field %s starts at %d, exceeds format maximum of 99999", f.Tag, start)
		}
		dir.WriteString(fmt.Sprintf("%s%04d%05d", f.Tag, data.Len()-start, start))
	}
	dir.WriteByte(fieldTerminator)

	leader := []byte(rec.Leader)
	if len(leader) != leaderLength {
		leader = []byte(DefaultLeader)
	}
	baseAddr := leaderLength + dir.Len()
	recLen := baseAddr + data.Len() + 1
	if recLen > 99999 {
		return fmt.Errorf("write record: encoded length %d exceeds format maximum", recLen)
	}
	copy(leader[0:5], fmt.Sprintf("%05d", recLen))
	copy(leader[12:17], fmt.Sprintf("%05d", baseAddr))

	var out bytes.Buffer
	out.Grow(recLen)
	out.Write(leader)
	out.Write(dir.Bytes())
	out.Write(data.Bytes())
	out.WriteByte(recordTerminator)

	_, err := w.w.Write(out.Bytes())
	return err
}

func encodeField(buf *bytes.Buffer, f *Field) error {
	if len(f.Tag) != 3 {
		return fmt.Errorf("write record: field tag %q must be 3 characters", f.Tag)
	}
	if f.IsControl() {
		buf.WriteString(f.Data)
	} else {
		buf.WriteByte(printableIndicator(f.Ind1))
		buf.WriteByte(printableIndicator(f.Ind2))
		for _, sf := range f.Subfields {
			buf.WriteByte(subfieldDelimiter)
			buf.WriteByte(sf.Code)
			buf.WriteString(sf.Value)
		}
	}
	buf.WriteByte(fieldTerminator)
	return nil
}
