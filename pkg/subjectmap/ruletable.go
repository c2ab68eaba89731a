package subjectmap

import "strings"

type ruleKey struct {
	field    string
	subfield byte
	original string
}

// RuleTable is an indexed collection of Rules keyed by the triple
// (field, subfield, original). Lookup is amortized O(1); tables routinely
// hold many thousands of entries. Serialization walks rules in insertion
// order, which keeps output deterministic; re-adding an existing triple
// replaces the rule in place without moving it.
type RuleTable struct {
	rules map[ruleKey]*Rule
	order []ruleKey
}

// NewRuleTable returns an empty table.
func NewRuleTable() *RuleTable {
	return &RuleTable{rules: make(map[ruleKey]*Rule)}
}

// Add inserts the rule, replacing any existing rule with the same
// (field, subfield, original) triple.
func (t *RuleTable) Add(r *Rule) error {
	if r == nil {
		return ErrNilRule
	}
	key := ruleKey{field: r.Field, subfield: r.Subfield, original: r.Original}
	if _, exists := t.rules[key]; !exists {
		t.order = append(t.order, key)
	}
	t.rules[key] = r
	return nil
}

// Get returns the rule matching the triple exactly, or nil when the table
// has no entry for it. A missing entry is an expected condition, not an
// error.
func (t *RuleTable) Get(field string, subfield byte, original string) *Rule {
	return t.rules[ruleKey{field: field, subfield: subfield, original: original}]
}

// Len returns the number of rules in the table.
func (t *RuleTable) Len() int { return len(t.rules) }

// Rules returns every rule in insertion order.
func (t *RuleTable) Rules() []*Rule {
	out := make([]*Rule, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.rules[key])
	}
	return out
}

// Markup renders every contained rule in insertion order.
func (t *RuleTable) Markup() string {
	var b strings.Builder
	t.writeMarkup(&b, "")
	return b.String()
}

func (t *RuleTable) writeMarkup(b *strings.Builder, indent string) {
	for _, key := range t.order {
		t.rules[key].writeMarkup(b, indent)
	}
}
