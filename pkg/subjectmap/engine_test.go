package subjectmap

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencataloging/subjectmap/pkg/marc"
)

// newTestEngine builds an engine over the given rules with a null logger
// whose entries can be inspected.
func newTestEngine(t *testing.T, rules ...*Rule) (*Engine, *logtest.Hook) {
	t.Helper()

	cfg := NewConfig()
	spec := NewFieldSpec("650")
	require.NoError(t, spec.AddCopy('c'))
	require.NoError(t, spec.AddTranslate('a'))
	require.NoError(t, spec.AddTranslate('x'))
	require.NoError(t, cfg.AddField(spec))

	table := NewRuleTable()
	for _, r := range rules {
		require.NoError(t, table.Add(r))
	}
	require.NoError(t, cfg.SetRules(table))

	logger, hook := logtest.NewNullLogger()
	engine, err := NewEngine(EngineConfig{Config: cfg, Logger: logger})
	require.NoError(t, err)
	return engine, hook
}

func mustField(t *testing.T, tag string, ind1, ind2 byte, pairs ...string) *marc.Field {
	t.Helper()
	f, err := marc.NewField(tag, ind1, ind2, pairs...)
	require.NoError(t, err)
	return f
}

func hasLogMessage(hook *logtest.Hook, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func TestTranslateFieldSkipsSourceTagged(t *testing.T) {
	engine, _ := newTestEngine(t)
	f := mustField(t, "650", ' ', '0', "a", "Dogs", "2", "mesh")

	got, outcome, err := engine.TranslateField(f)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Nil(t, got)
}

func TestTranslateFieldSkipsNonLCSH(t *testing.T) {
	engine, _ := newTestEngine(t,
		&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: "Perros", Source: "test"})
	f := mustField(t, "650", ' ', '4', "a", "Dogs")

	got, outcome, err := engine.TranslateField(f)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Nil(t, got)
}

func TestTranslateFieldFailsWithoutRule(t *testing.T) {
	engine, hook := newTestEngine(t)
	f := mustField(t, "650", ' ', '0', "a", "Dogs")

	got, outcome, err := engine.TranslateField(f)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Nil(t, got)

	require.True(t, hasLogMessage(hook, "no rule found for subfield value"))
	entry := hook.LastEntry()
	assert.Equal(t, "650", entry.Data["field"])
	assert.Equal(t, "a", entry.Data["subfield"])
	assert.Equal(t, "Dogs", entry.Data["value"])
}

func TestTranslateFieldFull(t *testing.T) {
	engine, _ := newTestEngine(t,
		&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: "Perros", Source: "test"},
		&Rule{Field: "650", Subfield: 'x', Original: "History", Translation: "Historia", Source: "test"})
	f := mustField(t, "650", '1', '0', "a", "Dogs", "x", "History")

	got, outcome, err := engine.TranslateField(f)
	require.NoError(t, err)
	require.Equal(t, OutcomeTranslated, outcome)
	require.NotNil(t, got)

	assert.Equal(t, "650", got.Tag)
	assert.Equal(t, byte('1'), got.Ind1)
	assert.Equal(t, byte('7'), got.Ind2)
	require.Len(t, got.Subfields, 3)
	assert.Equal(t, marc.Subfield{Code: 'a', Value: "Perros"}, got.Subfields[0])
	assert.Equal(t, marc.Subfield{Code: 'x', Value: "Historia."}, got.Subfields[1])
	assert.Equal(t, marc.Subfield{Code: '2', Value: "test"}, got.Subfields[2])

	// The input field is untouched.
	assert.Equal(t, "Dogs", f.SubfieldValue('a'))
	assert.Equal(t, byte('0'), f.Ind2)
}

func TestTranslateFieldPunctuation(t *testing.T) {
	tests := []struct {
		name        string
		translation string
		want        string
	}{
		{"appends period", "Perros", "Perros."},
		{"keeps period", "Perros.", "Perros."},
		{"keeps parenthesis", "Perros (animales)", "Perros (animales)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(t,
				&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: tt.translation, Source: "test"})
			f := mustField(t, "650", ' ', '0', "a", "Dogs")

			got, outcome, err := engine.TranslateField(f)
			require.NoError(t, err)
			require.Equal(t, OutcomeTranslated, outcome)
			assert.Equal(t, tt.want, got.SubfieldValue('a'))
		})
	}
}

func TestTranslateFieldCopiesVerbatim(t *testing.T) {
	engine, _ := newTestEngine(t,
		&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: "Perros", Source: "test"})
	f := mustField(t, "650", ' ', '0', "a", "Dogs", "c", "Kennel Club")

	got, outcome, err := engine.TranslateField(f)
	require.NoError(t, err)
	require.Equal(t, OutcomeTranslated, outcome)
	require.Len(t, got.Subfields, 3)
	assert.Equal(t, marc.Subfield{Code: 'a', Value: "Perros"}, got.Subfields[0])
	// Copied value is the last emitted, so punctuation lands on it.
	assert.Equal(t, marc.Subfield{Code: 'c', Value: "Kennel Club."}, got.Subfields[1])
	assert.Equal(t, marc.Subfield{Code: '2', Value: "test"}, got.Subfields[2])
}

func TestTranslateFieldMissingTranslationDropsSubfield(t *testing.T) {
	engine, hook := newTestEngine(t,
		&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: "Perros", Source: "test"},
		&Rule{Field: "650", Subfield: 'x', Original: "History"})
	f := mustField(t, "650", ' ', '0', "a", "Dogs", "x", "History")

	got, outcome, err := engine.TranslateField(f)
	require.NoError(t, err)
	require.Equal(t, OutcomeTranslated, outcome)
	require.Len(t, got.Subfields, 2)
	assert.Equal(t, marc.Subfield{Code: 'a', Value: "Perros."}, got.Subfields[0])
	assert.Equal(t, marc.Subfield{Code: '2', Value: "test"}, got.Subfields[1])
	assert.True(t, hasLogMessage(hook, "rule has no translation, dropping subfield"))
}

func TestTranslateFieldMissingSourceStillEmits(t *testing.T) {
	engine, hook := newTestEngine(t,
		&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: "Perros"})
	f := mustField(t, "650", ' ', '0', "a", "Dogs")

	got, outcome, err := engine.TranslateField(f)
	require.NoError(t, err)
	require.Equal(t, OutcomeTranslated, outcome)
	require.Len(t, got.Subfields, 1)
	assert.Equal(t, marc.Subfield{Code: 'a', Value: "Perros."}, got.Subfields[0])
	assert.True(t, hasLogMessage(hook, "rule has no source"))
}

func TestTranslateFieldDeduplicatesSources(t *testing.T) {
	engine, _ := newTestEngine(t,
		&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: "Perros", Source: "test"},
		&Rule{Field: "650", Subfield: 'x', Original: "History", Translation: "Historia", Source: "test"})
	f := mustField(t, "650", ' ', '0', "a", "Dogs", "x", "History")

	got, _, err := engine.TranslateField(f)
	require.NoError(t, err)

	var sourceCount int
	for _, sf := range got.Subfields {
		if sf.Code == '2' {
			sourceCount++
		}
	}
	assert.Equal(t, 1, sourceCount)
}

func TestTranslateFieldNil(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, _, err := engine.TranslateField(nil)
	assert.ErrorIs(t, err, ErrNilField)
}

func TestTranslateRecordReplacesTranslatedFields(t *testing.T) {
	engine, hook := newTestEngine(t,
		&Rule{Field: "650", Subfield: 'a', Original: "Dogs", Translation: "Perros", Source: "test"})

	rec := marc.NewRecord()
	rec.AddField(marc.NewControlField("001", "rec-42"))
	rec.AddField(mustField(t, "650", ' ', '0', "a", "Dogs"))
	rec.AddField(mustField(t, "650", ' ', '0', "a", "Cats"))

	got, ok, err := engine.TranslateRecord(rec)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got)
	assert.NotSame(t, rec, got)

	// The original record is untouched.
	fields := rec.FieldsByTag("650")
	require.Len(t, fields, 2)
	assert.Equal(t, "Dogs", fields[0].SubfieldValue('a'))
	assert.Equal(t, byte('0'), fields[0].Ind2)

	// The clone carries the translated field and keeps the failed one.
	gotFields := got.FieldsByTag("650")
	require.Len(t, gotFields, 2)
	assert.Equal(t, "Perros.", gotFields[0].SubfieldValue('a'))
	assert.Equal(t, byte('7'), gotFields[0].Ind2)
	assert.Equal(t, "Cats", gotFields[1].SubfieldValue('a'))

	// The failure names the ordinal position and the record identifier.
	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "unable to translate field" {
			found = true
			assert.Equal(t, "2nd", e.Data["ordinal"])
			assert.Equal(t, "rec-42", e.Data["record"])
			assert.Equal(t, "650", e.Data["field"])
		}
	}
	assert.True(t, found)
}

func TestTranslateRecordNothingTranslated(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := marc.NewRecord()
	rec.AddField(marc.NewControlField("001", "rec-43"))
	rec.AddField(mustField(t, "245", '1', '0', "a", "A title"))

	got, ok, err := engine.TranslateRecord(rec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestTranslateRecordNil(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, _, err := engine.TranslateRecord(nil)
	assert.ErrorIs(t, err, ErrNilRecord)
}

func TestNewEngineRequiresConfig(t *testing.T) {
	_, err := NewEngine(EngineConfig{})
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNewEngineLogFile(t *testing.T) {
	path := t.TempDir() + "/diag.log"
	cfg := NewConfig()
	logger := logrus.New()

	engine, err := NewEngine(EngineConfig{Config: cfg, Logger: logger, LogPath: path})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, engine.Close())

	assert.FileExists(t, path)
}

func TestOrdinalName(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 101: "101st", 111: "111th",
	}
	for n, want := range cases {
		assert.Equal(t, want, ordinalName(n))
	}
}
