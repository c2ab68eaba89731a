// Package marc provides a minimal MARC21 record and field model together
// with a reader and writer for the ISO 2709 transmission format. It covers
// exactly what the subject-heading translation engine consumes: iteration
// over fields and subfields, indicator access, record cloning, grouped
// field insertion, and control-field lookup.
package marc

import "fmt"

// Subfield is one labeled fragment of a variable field's content,
// identified by a single code character.
type Subfield struct {
	Code  byte
	Value string
}

// Field is a single MARC field. Control fields (tags 001-009) carry their
// content in Data and have no indicators or subfields; variable fields use
// Ind1/Ind2 and Subfields.
type Field struct {
	Tag       string
	Ind1      byte
	Ind2      byte
	Subfields []Subfield

	// Data is the body of a control field. Empty for variable fields.
	Data string
}

// NewField builds a variable field from a tag, two indicators and a flat
// code/value sequence, e.g.:
//
//	f, err := marc.NewField("650", ' ', '0', "a", "Dogs", "x", "History")
//
// It returns an error when the pair sequence is uneven or a code is not a
// single character.
func NewField(tag string, ind1, ind2 byte, pairs ...string) (*Field, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("field %s: subfield pairs must come in code/value couples, got %d items", tag, len(pairs))
	}

	f := &Field{Tag: tag, Ind1: ind1, Ind2: ind2}
	for i := 0; i < len(pairs); i += 2 {
		code := pairs[i]
		if len(code) != 1 {
			return nil, fmt.Errorf("field %s: subfield code %q must be a single character", tag, code)
		}
		f.Subfields = append(f.Subfields, Subfield{Code: code[0], Value: pairs[i+1]})
	}
	return f, nil
}

// NewControlField builds a control field (no indicators, no subfields).
func NewControlField(tag, data string) *Field {
	return &Field{Tag: tag, Data: data}
}

// IsControl reports whether the field is a control field (tag 001-009).
func (f *Field) IsControl() bool {
	return len(f.Tag) == 3 && f.Tag[0] == '0' && f.Tag[1] == '0'
}

// HasSubfield reports whether at least one subfield with the given code is
// present.
func (f *Field) HasSubfield(code byte) bool {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return true
		}
	}
	return false
}

// SubfieldValue returns the value of the first subfield with the given
// code, or "" when absent.
func (f *Field) SubfieldValue(code byte) string {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value
		}
	}
	return ""
}

// Clone returns an independent deep copy of the field.
func (f *Field) Clone() *Field {
	out := &Field{Tag: f.Tag, Ind1: f.Ind1, Ind2: f.Ind2, Data: f.Data}
	if len(f.Subfields) > 0 {
		out.Subfields = make([]Subfield, len(f.Subfields))
		copy(out.Subfields, f.Subfields)
	}
	return out
}

// String renders the field in the conventional human-readable form, e.g.
// "650  0 $aDogs$xHistory" or "001 12345" for control fields. Used only
// for diagnostics.
func (f *Field) String() string {
	if f.IsControl() {
		return fmt.Sprintf("%s %s", f.Tag, f.Data)
	}
	s := fmt.Sprintf("%s %c%c", f.Tag, printableIndicator(f.Ind1), printableIndicator(f.Ind2))
	for i, sf := range f.Subfields {
		if i == 0 {
			s += " "
		}
		s += fmt.Sprintf("$%c%s", sf.Code, sf.Value)
	}
	return s
}

func printableIndicator(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}
