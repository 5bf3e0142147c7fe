// Package lenserr defines the typed failures of schema resolution.
//
// Every failure carries a Kind from a closed taxonomy plus the identifiers
// (table, field, intent, concept, perspective) a human needs to add the
// missing rule. Kinds compare with errors.Is through any amount of wrapping:
//
//	if errors.Is(err, lenserr.ErrNoPathFound) { ... }
package lenserr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/schemalens/errors"
)

// Context keys attached to errors
const (
	KeyTable       = "table"
	KeyField       = "field"
	KeyFromTable   = "from_table"
	KeyToTable     = "to_table"
	KeyConcept     = "concept"
	KeyPerspective = "perspective"
	KeyIntent      = "intent"
	KeyValue       = "value"
	KeyFile        = "file"
)

// Error is a classified schema-resolution failure.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]string
	Err     error // optional cause
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]string),
	}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	e := New(kind, format, args...)
	e.Err = err
	return e
}

// With attaches an identifier to the error.
func (e *Error) With(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work
// as errors.Is targets.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Category reports when the failure occurred.
func (e *Error) Category() Category {
	return e.Kind.Category()
}

// Get returns an attached identifier.
func (e *Error) Get(key string) string {
	return e.Context[key]
}

// ContextString renders identifiers as sorted key=value pairs.
func (e *Error) ContextString() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Context[k])
	}
	return strings.Join(parts, " ")
}

// KindOf extracts the kind of a classified error anywhere in the chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindUnknown, false
}

// As extracts the classified error anywhere in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Sentinels for errors.Is checks
var (
	ErrDuplicateNode                    = &Error{Kind: KindDuplicateNode}
	ErrDanglingEdgeReference            = &Error{Kind: KindDanglingEdgeReference}
	ErrInvalidJoinCost                  = &Error{Kind: KindInvalidJoinCost}
	ErrDuplicateConcept                 = &Error{Kind: KindDuplicateConcept}
	ErrInvalidConceptType               = &Error{Kind: KindInvalidConceptType}
	ErrUnknownConceptReference          = &Error{Kind: KindUnknownConceptReference}
	ErrCyclicConceptHierarchy           = &Error{Kind: KindCyclicConceptHierarchy}
	ErrDuplicateBinding                 = &Error{Kind: KindDuplicateBinding}
	ErrAmbiguousOrMissingPrimaryMeaning = &Error{Kind: KindAmbiguousOrMissingPrimaryMeaning}
	ErrDuplicatePerspective             = &Error{Kind: KindDuplicatePerspective}
	ErrUnknownPerspectiveReference      = &Error{Kind: KindUnknownPerspectiveReference}
	ErrInvalidRelationshipType          = &Error{Kind: KindInvalidRelationshipType}
	ErrInvalidPriorityWeight            = &Error{Kind: KindInvalidPriorityWeight}
	ErrDuplicateIntent                  = &Error{Kind: KindDuplicateIntent}
	ErrUnknownIntentReference           = &Error{Kind: KindUnknownIntentReference}
	ErrInvalidWeightValue               = &Error{Kind: KindInvalidWeightValue}
	ErrDuplicateWeight                  = &Error{Kind: KindDuplicateWeight}
	ErrConflictingElevation             = &Error{Kind: KindConflictingElevation}
	ErrIncompatibleSeedFormat           = &Error{Kind: KindIncompatibleSeedFormat}
	ErrNoPathFound                      = &Error{Kind: KindNoPathFound}
	ErrNoActiveConceptAfterSuppression  = &Error{Kind: KindNoActiveConceptAfterSuppression}
	ErrPerspectiveConceptConflict       = &Error{Kind: KindPerspectiveConceptConflict}
	ErrUnboundField                     = &Error{Kind: KindUnboundField}
	ErrUnknownTable                     = &Error{Kind: KindUnknownTable}
	ErrUnknownIntent                    = &Error{Kind: KindUnknownIntent}
	ErrEmptyTableSet                    = &Error{Kind: KindEmptyTableSet}
)
