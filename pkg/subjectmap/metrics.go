package subjectmap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Per-field translation outcomes.
	fieldTranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subjectmap_field_translations_total",
			Help: "Per-field translation outcomes (translated, skipped, failed)",
		},
		[]string{"outcome"},
	)

	// Per-record translation outcomes.
	recordTranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subjectmap_record_translations_total",
			Help: "Per-record translation outcomes (translated, unchanged)",
		},
		[]string{"outcome"},
	)

	// Rule table lookups performed by the engine.
	ruleLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subjectmap_rule_lookups_total",
			Help: "Rule table lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	// Subfields dropped because their rule carries no translation text.
	droppedSubfieldsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subjectmap_dropped_subfields_total",
			Help: "Subfields dropped because the matching rule has no translation",
		},
	)
)
