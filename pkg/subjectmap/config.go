package subjectmap

import (
	"fmt"
	"io"
	"strings"
)

// xmlProlog is emitted at the top of every saved configuration document.
const xmlProlog = `<?xml version="1.0" encoding="UTF-8"?>`

// Config aggregates an ordered list of FieldSpecs and at most one
// RuleTable. FieldSpec insertion order is significant and preserved on
// serialization. Setting rules a second time replaces the previous table
// wholesale.
type Config struct {
	fieldSpecs []*FieldSpec
	ruleTable  *RuleTable
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{}
}

// AddField appends a field spec. A nil spec is rejected.
func (c *Config) AddField(spec *FieldSpec) error {
	if spec == nil {
		return ErrNilFieldSpec
	}
	c.fieldSpecs = append(c.fieldSpecs, spec)
	return nil
}

// Fields returns a snapshot of the field specs in add order.
func (c *Config) Fields() []*FieldSpec {
	return append([]*FieldSpec(nil), c.fieldSpecs...)
}

// FieldSpecFor returns the first spec registered for the given tag, or
// nil when the tag has none.
func (c *Config) FieldSpecFor(tag string) *FieldSpec {
	for _, spec := range c.fieldSpecs {
		if spec.tag == tag {
			return spec
		}
	}
	return nil
}

// Rules returns the current rule table, or nil when none has been set.
func (c *Config) Rules() *RuleTable {
	return c.ruleTable
}

// SetRules replaces the configuration's rule table. A nil table is
// rejected; the previous table, if any, is discarded.
func (c *Config) SetRules(t *RuleTable) error {
	if t == nil {
		return ErrNilRuleTable
	}
	c.ruleTable = t
	return nil
}

// Markup renders the full configuration document.
func (c *Config) Markup() string {
	var b strings.Builder
	b.WriteString(xmlProlog)
	b.WriteString("\n<config>\n  <fields>\n")
	for _, spec := range c.fieldSpecs {
		spec.writeMarkup(&b, "    ")
	}
	b.WriteString("  </fields>\n")
	if c.ruleTable != nil {
		b.WriteString("  <rules>\n")
		c.ruleTable.writeMarkup(&b, "    ")
		b.WriteString("  </rules>\n")
	}
	b.WriteString("</config>\n")
	return b.String()
}

// Save writes the full configuration document to the sink. Any byte sink
// works; nothing here assumes a file.
func (c *Config) Save(w io.Writer) error {
	if _, err := io.WriteString(w, c.Markup()); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	return nil
}
