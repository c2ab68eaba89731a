package marc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// ISO 2709 structural delimiters.
const (
	fieldTerminator    = 0x1e
	recordTerminator   = 0x1d
	subfieldDelimiter  = 0x1f
	leaderLength       = 24
	directoryEntrySize = 12
)

// Reader decodes ISO 2709 (MARC transmission format) records from a byte
// stream. Records are returned one at a time; Next returns io.EOF after
// the last record.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r in an ISO 2709 record reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next reads and decodes the next record. A malformed record yields a
// descriptive error; the stream position is then undefined and the caller
// should stop reading.
func (r *Reader) Next() (*Record, error) {
	leader := make([]byte, leaderLength)
	if _, err := io.ReadFull(r.r, leader); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read leader: %w", err)
	}

	recLen, err := strconv.Atoi(string(leader[0:5]))
	if err != nil || recLen < leaderLength+1 {
		return nil, fmt.Errorf("invalid record length %q in leader", leader[0:5])
	}
	baseAddr, err := strconv.Atoi(string(leader[12:17]))
	if err != nil || baseAddr < leaderLength+1 || baseAddr > recLen {
		return nil, fmt.Errorf("invalid base address %q in leader", leader[12:17])
	}

	body := make([]byte, recLen-leaderLength)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return nil, fmt.Errorf("read record body: %w", err)
	}
	if body[len(body)-1] != recordTerminator {
		return nil, fmt.Errorf("record does not end with record terminator")
	}

	rec := &Record{Leader: string(leader)}

	// The directory runs from the end of the leader up to its field
	// terminator.
	dirLen := baseAddr - leaderLength - 1
	if dirLen < 0 || dirLen%directoryEntrySize != 0 || body[dirLen] != fieldTerminator {
		return nil, fmt.Errorf("malformed directory (length %d)", dirLen)
	}
	data := body[baseAddr-leaderLength:]

	for off := 0; off < dirLen; off += directoryEntrySize {
		entry := body[off : off+directoryEntrySize]
		tag := string(entry[0:3])
		fl, err := strconv.Atoi(string(entry[3:7]))
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid length %q", tag, entry[3:7])
		}
		start, err := strconv.Atoi(string(entry[7:12]))
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid start position %q", tag, entry[7:12])
		}
		if start < 0 || fl < 1 || start+fl > len(data) || data[start+fl-1] != fieldTerminator {
			return nil, fmt.Errorf("field %s: directory entry out of bounds", tag)
		}

		f, err := decodeField(tag, data[start:start+fl-1])
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, f)
	}

	return rec, nil
}

func decodeField(tag string, body []byte) (*Field, error) {
	f := &Field{Tag: tag}
	if f.IsControl() {
		f.Data = string(body)
		return f, nil
	}

	if len(body) < 2 {
		return nil, fmt.Errorf("field %s: variable field shorter than its indicators", tag)
	}
	f.Ind1, f.Ind2 = body[0], body[1]

	for _, chunk := range splitSubfields(body[2:]) {
		if len(chunk) < 1 {
			return nil, fmt.Errorf("field %s: empty subfield", tag)
		}
		f.Subfields = append(f.Subfields, Subfield{Code: chunk[0], Value: string(chunk[1:])})
	}
	return f, nil
}

// splitSubfields splits a variable-field body on the subfield delimiter.
// The body starts with a delimiter, so the leading empty chunk is dropped.
func splitSubfields(body []byte) [][]byte {
	var out [][]byte
	start := -1
	for i, b := range body {
		if b == subfieldDelimiter {
			if start >= 0 {
				out = append(out, body[start:i])
			}
			start = i + 1
		}
	}
	if start >= 0 {
		out = append(out, body[start:])
	}
	return out
}
