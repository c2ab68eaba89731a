// Command subjmap-template scans a corpus of MARC records and emits a
// template subjectmap configuration: one field spec per requested tag and
// one rule per distinct subfield value found, with empty translation and
// source elements ready to be filled in by a cataloger.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opencataloging/subjectmap/pkg/marc"
	"github.com/opencataloging/subjectmap/pkg/subjectmap"
)

var (
	inPath   = flag.String("in", "-", "Input MARC file in ISO 2709 format, or - for stdin")
	outPath  = flag.String("out", "-", "Output configuration XML, or - for stdout")
	logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")

	translateSpecs mappingFlags
	copySpecs      mappingFlags
)

func init() {
	flag.Var(&translateSpecs, "translate", "TAG=CODES subfields to translate, e.g. 650=abz (repeatable)")
	flag.Var(&copySpecs, "copy", "TAG=CODES subfields to copy verbatim, e.g. 650=cd (repeatable)")
}

// mappingFlags collects repeated TAG=CODES flag values in order.
type mappingFlags []mapping

type mapping struct {
	tag   string
	codes string
}

func (m *mappingFlags) String() string {
	parts := make([]string, len(*m))
	for i, mp := range *m {
		parts[i] = mp.tag + "=" + mp.codes
	}
	return strings.Join(parts, ",")
}

func (m *mappingFlags) Set(value string) error {
	tag, codes, ok := strings.Cut(value, "=")
	if !ok || tag == "" || codes == "" {
		return fmt.Errorf("mapping %q must have the form TAG=CODES", value)
	}
	*m = append(*m, mapping{tag: tag, codes: codes})
	return nil
}

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if len(translateSpecs) == 0 {
		logger.Fatal("At least one -translate TAG=CODES mapping is required")
	}

	cfg, err := buildTemplateConfig(translateSpecs, copySpecs)
	if err != nil {
		logger.WithError(err).Fatal("Invalid field mappings")
	}

	in, err := openInput(*inPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open input file")
	}
	defer in.Close()

	read, rules, err := collectRules(cfg, marc.NewReader(in))
	if err != nil {
		logger.WithError(err).Fatal("Failed to scan corpus")
	}
	logger.WithFields(logrus.Fields{
		"records_read": read,
		"rules":        rules,
	}).Info("Corpus scan complete")

	out, err := openOutput(*outPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open output file")
	}
	defer out.Close()

	if err := cfg.Save(out); err != nil {
		logger.WithError(err).Fatal("Failed to write configuration")
	}
}

// buildTemplateConfig turns the flag mappings into a Config with one
// FieldSpec per tag and an empty rule table.
func buildTemplateConfig(translates, copies mappingFlags) (*subjectmap.Config, error) {
	cfg := subjectmap.NewConfig()
	specs := make(map[string]*subjectmap.FieldSpec)

	specFor := func(tag string) (*subjectmap.FieldSpec, error) {
		if spec, ok := specs[tag]; ok {
			return spec, nil
		}
		spec := subjectmap.NewFieldSpec(tag)
		if err := cfg.AddField(spec); err != nil {
			return nil, err
		}
		specs[tag] = spec
		return spec, nil
	}

	for _, m := range copies {
		spec, err := specFor(m.tag)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(m.codes); i++ {
			if err := spec.AddCopy(m.codes[i]); err != nil {
				return nil, err
			}
		}
	}
	for _, m := range translates {
		spec, err := specFor(m.tag)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(m.codes); i++ {
			if err := spec.AddTranslate(m.codes[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.SetRules(subjectmap.NewRuleTable()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// collectRules walks the corpus and adds one empty-translation rule per
// distinct (tag, code, value) selected by the config's translate lists.
// First-seen order is preserved by the rule table.
func collectRules(cfg *subjectmap.Config, reader *marc.Reader) (read, rules int, err error) {
	table := cfg.Rules()
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return read, table.Len(), nil
		}
		if err != nil {
			return read, table.Len(), err
		}
		read++

		for _, spec := range cfg.Fields() {
			for _, f := range rec.FieldsByTag(spec.Tag()) {
				for _, sf := range f.Subfields {
					if !spec.Translates(sf.Code) {
						continue
					}
					if table.Get(f.Tag, sf.Code, sf.Value) != nil {
						continue
					}
					rule := &subjectmap.Rule{Field: f.Tag, Subfield: sf.Code, Original: sf.Value}
					if err := table.Add(rule); err != nil {
						return read, table.Len(), err
					}
				}
			}
		}
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
