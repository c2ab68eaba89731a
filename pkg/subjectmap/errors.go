package subjectmap

import (
	"errors"
	"fmt"
)

// Nil-argument errors. These are the cases Go's type system cannot catch
// statically; they are always surfaced to the caller, never recovered
// silently.
var (
	ErrNilFieldSpec = errors.New("field spec must not be nil")
	ErrNilRuleTable = errors.New("rule table must not be nil")
	ErrNilRule      = errors.New("rule must not be nil")
	ErrNilField     = errors.New("field must not be nil")
	ErrNilRecord    = errors.New("record must not be nil")
	ErrNilConfig    = errors.New("config must not be nil")
)

// ConflictError reports an attempt to register a subfield code in both
// the copy and translate lists of the same FieldSpec.
type ConflictError struct {
	Tag  string
	Code byte
	// List names the list the code already belongs to ("copy" or
	// "translate").
	List string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("field %s: subfield code %q is already registered for %s", e.Tag, string(e.Code), e.List)
}

// ConfigError reports an unreadable or malformed configuration source.
// It names the source and wraps the underlying cause.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("load configuration %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
