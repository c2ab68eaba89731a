package subjectmap

import "strings"

// FieldSpec declares, for one record-field tag, which subfield codes are
// copied into the translated field verbatim and which are looked up in
// the rule table. The two lists are ordered, append-only and disjoint.
type FieldSpec struct {
	tag        string
	copyList   []byte
	translates []byte
}

// NewFieldSpec returns an empty spec for the given field tag.
func NewFieldSpec(tag string) *FieldSpec {
	return &FieldSpec{tag: tag}
}

// Tag returns the field tag this spec applies to.
func (s *FieldSpec) Tag() string { return s.tag }

// AddCopy appends a subfield code to the copy list. Adding a code already
// present in the translate list fails with a ConflictError and leaves
// both lists unchanged. A zero code is a no-op.
func (s *FieldSpec) AddCopy(code byte) error {
	if code == 0 {
		return nil
	}
	if contains(s.translates, code) {
		return &ConflictError{Tag: s.tag, Code: code, List: "translate"}
	}
	if !contains(s.copyList, code) {
		s.copyList = append(s.copyList, code)
	}
	return nil
}

// AddTranslate appends a subfield code to the translate list. Adding a
// code already present in the copy list fails with a ConflictError and
// leaves both lists unchanged. A zero code is a no-op.
func (s *FieldSpec) AddTranslate(code byte) error {
	if code == 0 {
		return nil
	}
	if contains(s.copyList, code) {
		return &ConflictError{Tag: s.tag, Code: code, List: "copy"}
	}
	if !contains(s.translates, code) {
		s.translates = append(s.translates, code)
	}
	return nil
}

// Copy returns a snapshot of the copy list in add order.
func (s *FieldSpec) Copy() []byte {
	return append([]byte(nil), s.copyList...)
}

// Translate returns a snapshot of the translate list in add order.
func (s *FieldSpec) Translate() []byte {
	return append([]byte(nil), s.translates...)
}

// Copies reports whether the given subfield code is in the copy list.
func (s *FieldSpec) Copies(code byte) bool {
	return contains(s.copyList, code)
}

// Translates reports whether the given subfield code is in the translate
// list.
func (s *FieldSpec) Translates(code byte) bool {
	return contains(s.translates, code)
}

// Markup renders the spec's <field> fragment. Copy entries come before
// translate entries, each list in add order.
func (s *FieldSpec) Markup() string {
	var b strings.Builder
	s.writeMarkup(&b, "")
	return b.String()
}

func (s *FieldSpec) writeMarkup(b *strings.Builder, indent string) {
	b.WriteString(indent)
	b.WriteString(`<field tag="`)
	b.WriteString(escapeText(s.tag))
	b.WriteString("\">\n")
	for _, code := range s.copyList {
		b.WriteString(indent)
		b.WriteString("  <copy>")
		b.WriteString(escapeText(string(code)))
		b.WriteString("</copy>\n")
	}
	for _, code := range s.translates {
		b.WriteString(indent)
		b.WriteString("  <translate>")
		b.WriteString(escapeText(string(code)))
		b.WriteString("</translate>\n")
	}
	b.WriteString(indent)
	b.WriteString("</field>\n")
}

func contains(codes []byte, code byte) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
