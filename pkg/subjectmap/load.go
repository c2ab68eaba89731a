package subjectmap

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Wire form of the configuration document. Element and attribute names
// are normative; see the package's configuration grammar.
type xmlConfig struct {
	XMLName xml.Name   `xml:"config"`
	Fields  []xmlField `xml:"fields>field"`
	Rules   *xmlRules  `xml:"rules"`
}

type xmlField struct {
	Tag       string   `xml:"tag,attr"`
	Copy      []string `xml:"copy"`
	Translate []string `xml:"translate"`
}

type xmlRules struct {
	Rules []xmlRule `xml:"rule"`
}

type xmlRule struct {
	Field       string `xml:"field,attr"`
	Subfield    string `xml:"subfield,attr"`
	Original    string `xml:"original"`
	Translation string `xml:"translation"`
	Source      string `xml:"source"`
}

// LoadConfig reads and parses a configuration document from the given
// path. Any failure comes back as a *ConfigError naming the path and
// wrapping the cause.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}
	defer f.Close()
	return ParseConfig(f, path)
}

// ParseConfig parses a configuration document from any reader. The source
// identifier is used only for error reporting. A document without a
// <rules> block yields a Config with no rule table.
func ParseConfig(r io.Reader, source string) (*Config, error) {
	var doc xmlConfig
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ConfigError{Source: source, Err: err}
	}

	cfg := NewConfig()
	for _, xf := range doc.Fields {
		spec := NewFieldSpec(xf.Tag)
		for _, s := range xf.Copy {
			code, err := subfieldCode(xf.Tag, s)
			if err == nil {
				err = spec.AddCopy(code)
			}
			if err != nil {
				return nil, &ConfigError{Source: source, Err: err}
			}
		}
		for _, s := range xf.Translate {
			code, err := subfieldCode(xf.Tag, s)
			if err == nil {
				err = spec.AddTranslate(code)
			}
			if err != nil {
				return nil, &ConfigError{Source: source, Err: err}
			}
		}
		if err := cfg.AddField(spec); err != nil {
			return nil, &ConfigError{Source: source, Err: err}
		}
	}

	if doc.Rules != nil {
		table := NewRuleTable()
		for _, xr := range doc.Rules.Rules {
			if len(xr.Subfield) != 1 {
				return nil, &ConfigError{Source: source, Err: fmt.Errorf("rule for field %s: subfield attribute %q must be a single character", xr.Field, xr.Subfield)}
			}
			rule := &Rule{
				Field:       xr.Field,
				Subfield:    xr.Subfield[0],
				Original:    xr.Original,
				Translation: xr.Translation,
				Source:      xr.Source,
			}
			if err := table.Add(rule); err != nil {
				return nil, &ConfigError{Source: source, Err: err}
			}
		}
		if err := cfg.SetRules(table); err != nil {
			return nil, &ConfigError{Source: source, Err: err}
		}
	}

	return cfg, nil
}

// subfieldCode validates a <copy> or <translate> element body. An empty
// element yields the zero code, which the FieldSpec adders treat as a
// no-op; anything longer than one character is malformed.
func subfieldCode(tag, s string) (byte, error) {
	if len(s) > 1 {
		return 0, fmt.Errorf("field %s: subfield code %q must be a single character", tag, s)
	}
	if s == "" {
		return 0, nil
	}
	return s[0], nil
}
