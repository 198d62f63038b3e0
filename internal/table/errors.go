package table

import (
	"errors"
	"fmt"
)

// SchemaErrorKind classifies why a record type was rejected.
type SchemaErrorKind int

const (
	MissingKey SchemaErrorKind = iota + 1
	MultipleKeys
	InvalidAttributeCombination
)

func (k SchemaErrorKind) String() string {
	switch k {
	case MissingKey:
		return "missing key"
	case MultipleKeys:
		return "multiple keys"
	case InvalidAttributeCombination:
		return "invalid attribute combination"
	default:
		return "unknown schema error"
	}
}

// Sentinel errors matched by SchemaError.Is.
var (
	ErrMissingKey        = errors.New("table schema has no key field")
	ErrMultipleKeys      = errors.New("table schema has more than one key field")
	ErrInvalidAttributes = errors.New("invalid field attribute combination")
)

// Runtime errors returned to hosts routing interactions into a Table.
var (
	ErrRowNotFound   = errors.New("row not found")
	ErrUnknownColumn = errors.New("unknown column")
	ErrSelectionOff  = errors.New("selection is disabled for this table")
)

// SchemaError is returned by Build when a record type is invalid.
type SchemaError struct {
	Kind   SchemaErrorKind
	Record string   // Record type name
	Fields []string // Offending fields, if any
	Reason string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("table %q: %s", e.Record, e.Kind)
	if len(e.Fields) > 0 {
		msg += fmt.Sprintf(" %v", e.Fields)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is the sentinel for this error's kind.
func (e *SchemaError) Is(target error) bool {
	switch e.Kind {
	case MissingKey:
		return target == ErrMissingKey
	case MultipleKeys:
		return target == ErrMultipleKeys
	case InvalidAttributeCombination:
		return target == ErrInvalidAttributes
	}
	return false
}

func invalidAttrs(record, field, reason string) *SchemaError {
	return &SchemaError{
		Kind:   InvalidAttributeCombination,
		Record: record,
		Fields: []string{field},
		Reason: reason,
	}
}
