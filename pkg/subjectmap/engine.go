// Package subjectmap translates subject-heading fields in bibliographic
// records from one controlled vocabulary or language into another, driven
// by a declarative configuration: a list of field/subfield combinations
// to examine and a table of literal original-to-translation rules.
package subjectmap

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opencataloging/subjectmap/pkg/marc"
)

// Outcome is the terminal state of a single field translation attempt.
type Outcome string

const (
	// OutcomeTranslated means a new translated field was produced.
	OutcomeTranslated Outcome = "translated"
	// OutcomeSkipped means the field was not eligible for translation
	// (already source-tagged, or not an LCSH heading).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means a subfield had no matching rule and the whole
	// field was dropped from the translated output.
	OutcomeFailed Outcome = "failed"
)

const (
	// sourceSubfieldCode is the subfield carrying the provenance label of
	// a translated heading ("source specified in subfield 2").
	sourceSubfieldCode = '2'
	// indicatorLCSH marks a Library of Congress subject heading in the
	// second indicator; only these headings are translated.
	indicatorLCSH = '0'
	// indicatorSourceSpecified is stamped on every translated field.
	indicatorSourceSpecified = '7'
	// controlNumberTag identifies records in failure diagnostics.
	controlNumberTag = "001"
)

// EngineConfig holds everything needed to build an Engine.
type EngineConfig struct {
	// Config supplies the field specs and rule table. Required.
	Config *Config
	// Logger receives diagnostics. If nil, a default logger writing to
	// stderr is created.
	Logger *logrus.Logger
	// LogPath, when non-empty, redirects diagnostics to the named file,
	// opened for append. The engine owns the handle and releases it on
	// Close.
	LogPath string
}

// Engine applies a Config to records and fields. It holds no mutable
// state beyond the log sink, so a single engine may be used for an entire
// batch, record after record.
type Engine struct {
	config  *Config
	logger  *logrus.Logger
	logFile *os.File
}

// NewEngine creates a translation engine. A failure to open the requested
// log file is surfaced to the caller.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Config == nil {
		return nil, ErrNilConfig
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	e := &Engine{config: cfg.Config, logger: logger}
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.logFile = f
		logger.SetOutput(f)
	}
	return e, nil
}

// Close releases the engine's log file, if it owns one.
func (e *Engine) Close() error {
	if e.logFile == nil {
		return nil
	}
	err := e.logFile.Close()
	e.logFile = nil
	return err
}

// TranslateField attempts to translate a single field. It returns the new
// field with OutcomeTranslated, or nil with OutcomeSkipped or
// OutcomeFailed. The input field is never modified.
//
// A field already carrying a subfield 2, or whose second indicator is not
// '0', is skipped. Subfield codes in the spec's copy list pass through
// verbatim; every other subfield must resolve through the rule table or
// the whole field fails. A rule with an empty translation drops just that
// subfield. After assembly the last emitted value gets a trailing period
// unless it already ends in '.' or ')', one subfield 2 is appended per
// distinct rule source, and the new field keeps the original tag and
// first indicator with the second indicator forced to '7'.
func (e *Engine) TranslateField(f *marc.Field) (*marc.Field, Outcome, error) {
	if f == nil {
		return nil, OutcomeFailed, ErrNilField
	}

	if f.HasSubfield(sourceSubfieldCode) {
		e.logger.WithFields(logrus.Fields{
			"field": f.Tag,
		}).Debug("field already carries a source subfield, skipping")
		fieldTranslationsTotal.WithLabelValues(string(OutcomeSkipped)).Inc()
		return nil, OutcomeSkipped, nil
	}
	if f.Ind2 != indicatorLCSH {
		e.logger.WithFields(logrus.Fields{
			"field":      f.Tag,
			"indicator2": string(f.Ind2),
		}).Debug("not a Library of Congress subject heading, skipping")
		fieldTranslationsTotal.WithLabelValues(string(OutcomeSkipped)).Inc()
		return nil, OutcomeSkipped, nil
	}

	spec := e.config.FieldSpecFor(f.Tag)
	table := e.config.Rules()

	var out []marc.Subfield
	var sources []string
	seenSources := make(map[string]bool)

	for _, sf := range f.Subfields {
		if spec != nil && spec.Copies(sf.Code) {
			out = append(out, sf)
			continue
		}

		var rule *Rule
		if table != nil {
			rule = table.Get(f.Tag, sf.Code, sf.Value)
		}
		if rule == nil {
			ruleLookupsTotal.WithLabelValues("miss").Inc()
			e.logger.WithFields(logrus.Fields{
				"field":    f.Tag,
				"subfield": string(sf.Code),
				"value":    sf.Value,
			}).Warn("no rule found for subfield value")
			fieldTranslationsTotal.WithLabelValues(string(OutcomeFailed)).Inc()
			return nil, OutcomeFailed, nil
		}
		ruleLookupsTotal.WithLabelValues("hit").Inc()

		if rule.Translation == "" {
			droppedSubfieldsTotal.Inc()
			e.logger.WithFields(logrus.Fields{
				"field":    f.Tag,
				"subfield": string(sf.Code),
				"value":    sf.Value,
			}).Warn("rule has no translation, dropping subfield")
			continue
		}

		out = append(out, marc.Subfield{Code: sf.Code, Value: rule.Translation})
		if rule.Source == "" {
			e.logger.WithFields(logrus.Fields{
				"field":    f.Tag,
				"subfield": string(sf.Code),
				"value":    sf.Value,
			}).Warn("rule has no source")
		} else if !seenSources[rule.Source] {
			seenSources[rule.Source] = true
			sources = append(sources, rule.Source)
		}
	}

	// Terminal punctuation on the last heading value, before the source
	// subfields go on.
	if n := len(out); n > 0 {
		last := out[n-1].Value
		if !strings.HasSuffix(last, ".") && !strings.HasSuffix(last, ")") {
			out[n-1].Value = last + "."
		}
	}
	for _, src := range sources {
		out = append(out, marc.Subfield{Code: sourceSubfieldCode, Value: src})
	}

	translated := &marc.Field{
		Tag:       f.Tag,
		Ind1:      f.Ind1,
		Ind2:      indicatorSourceSpecified,
		Subfields: out,
	}
	fieldTranslationsTotal.WithLabelValues(string(OutcomeTranslated)).Inc()
	return translated, OutcomeTranslated, nil
}

// TranslateRecord attempts to translate every field the configuration's
// specs select. The input record is never mutated; translated fields
// replace their originals in a clone. It returns (clone, true) when at
// least one field was translated and (nil, false) otherwise. Per-field
// failures are logged and never abort the record.
func (e *Engine) TranslateRecord(rec *marc.Record) (*marc.Record, bool, error) {
	if rec == nil {
		return nil, false, ErrNilRecord
	}

	work := rec.Clone()
	translatedAny := false

	for _, spec := range e.config.Fields() {
		ordinal := 0
		for i, f := range work.Fields {
			if f.Tag != spec.Tag() {
				continue
			}
			ordinal++

			translated, outcome, err := e.TranslateField(f)
			if err != nil {
				return nil, false, err
			}
			switch outcome {
			case OutcomeTranslated:
				work.Fields[i] = translated
				translatedAny = true
			case OutcomeFailed:
				e.logger.WithFields(logrus.Fields{
					"field":   spec.Tag(),
					"ordinal": ordinalName(ordinal),
					"record":  rec.ControlValue(controlNumberTag),
				}).Warn("unable to translate field")
			}
		}
	}

	if !translatedAny {
		recordTranslationsTotal.WithLabelValues("unchanged").Inc()
		return nil, false, nil
	}
	recordTranslationsTotal.WithLabelValues(string(OutcomeTranslated)).Inc()
	return work, true, nil
}

// ordinalName formats a 1-based position as 1st, 2nd, 3rd, 4th and so on.
func ordinalName(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
