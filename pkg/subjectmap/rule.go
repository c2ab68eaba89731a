package subjectmap

import (
	"fmt"
	"strings"
)

// Rule is one literal mapping from an original subfield value to its
// translation: (field tag, subfield code, original text) identify the
// rule, Translation carries the replacement text and Source names the
// vocabulary or authority the translation came from. Translation and
// Source may be empty. Rules are treated as immutable once added to a
// table.
type Rule struct {
	Field       string
	Subfield    byte
	Original    string
	Translation string
	Source      string
}

// Describe produces a single-line human-readable summary of the rule,
// used only for diagnostics.
func (r *Rule) Describe() string {
	return fmt.Sprintf("field: %s subfield: %s original: %s translation: %s source: %s",
		r.Field, string(r.Subfield), r.Original, r.Translation, r.Source)
}

// Markup renders the rule's <rule> fragment, with child elements in the
// fixed order original, translation, source.
func (r *Rule) Markup() string {
	var b strings.Builder
	r.writeMarkup(&b, "")
	return b.String()
}

func (r *Rule) writeMarkup(b *strings.Builder, indent string) {
	b.WriteString(indent)
	b.WriteString(`<rule field="`)
	b.WriteString(escapeText(r.Field))
	b.WriteString(`" subfield="`)
	b.WriteString(escapeText(string(r.Subfield)))
	b.WriteString("\">\n")
	writeTextElement(b, indent+"  ", "original", r.Original)
	writeTextElement(b, indent+"  ", "translation", r.Translation)
	writeTextElement(b, indent+"  ", "source", r.Source)
	b.WriteString(indent)
	b.WriteString("</rule>\n")
}

func writeTextElement(b *strings.Builder, indent, name, text string) {
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(name)
	b.WriteByte('>')
	b.WriteString(escapeText(text))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">\n")
}

// escapeText escapes text content for the configuration markup: < and >
// always, and & only when it does not already open a recognized entity,
// so an existing &amp; is not escaped twice.
func escapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			if opensEntity(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var knownEntities = []string{"&amp;", "&lt;", "&gt;", "&apos;", "&quot;"}

func opensEntity(s string) bool {
	for _, e := range knownEntities {
		if strings.HasPrefix(s, e) {
			return true
		}
	}
	return false
}
