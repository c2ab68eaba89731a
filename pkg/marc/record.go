package marc

// DefaultLeader is used when writing a record that was built in memory
// rather than read from a file. Length and base-address slots are
// recomputed on write, so only the status/type positions matter here.
const DefaultLeader = "00000nam a2200000 a 4500"

// Record is an ordered collection of MARC fields plus the 24-character
// leader. Field order is significant and preserved.
type Record struct {
	Leader string
	Fields []*Field
}

// NewRecord returns an empty record with the default leader.
func NewRecord() *Record {
	return &Record{Leader: DefaultLeader}
}

// Clone returns an independent deep copy of the record. Mutating the copy
// never affects the original.
func (r *Record) Clone() *Record {
	out := &Record{Leader: r.Leader}
	if len(r.Fields) > 0 {
		out.Fields = make([]*Field, len(r.Fields))
		for i, f := range r.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	return out
}

// FieldsByTag returns every field instance with the given tag, in record
// order. The returned slice shares field pointers with the record.
func (r *Record) FieldsByTag(tag string) []*Field {
	var out []*Field
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// AddField inserts a field grouped with existing fields of the same tag:
// after the last same-tag field when one exists, otherwise in ascending
// tag order. Appends at the end when no ordering slot is found.
func (r *Record) AddField(f *Field) {
	// After the last field sharing the tag.
	for i := len(r.Fields) - 1; i >= 0; i-- {
		if r.Fields[i].Tag == f.Tag {
			r.Fields = append(r.Fields[:i+1], append([]*Field{f}, r.Fields[i+1:]...)...)
			return
		}
	}
	// Otherwise before the first field with a greater tag.
	for i, existing := range r.Fields {
		if existing.Tag > f.Tag {
			r.Fields = append(r.Fields[:i], append([]*Field{f}, r.Fields[i:]...)...)
			return
		}
	}
	r.Fields = append(r.Fields, f)
}

// ControlValue returns the data of the first control field with the given
// tag, or "" if the record has none. Used for diagnostic identification
// of records (typically tag 001).
func (r *Record) ControlValue(tag string) string {
	for _, f := range r.Fields {
		if f.Tag == tag && f.IsControl() {
			return f.Data
		}
	}
	return ""
}
