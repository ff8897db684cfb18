// Package errors provides SILO's error taxonomy. It offers consistent error
// wrapping, logging, and handling patterns so the query driver can map
// failures to the right status without string-matching messages.
package errors

import (
	"fmt"
	"log"
	"runtime"
	"strings"
)

// Op represents an operation name for error context, e.g. "filter.compile"
// or "sequencestore.append".
type Op string

// Error represents a SILO error with context.
type Error struct {
	Op   Op     // Operation that failed
	Kind Kind   // Category of error
	Err  error  // Underlying error
	Msg  string // Additional context message
}

// Kind represents the category of error, matching spec.md §7.
type Kind uint8

const (
	// KindUnknown is used for errors that predate classification.
	KindUnknown Kind = iota
	// KindBadRequest covers malformed query JSON, unknown columns/sequences,
	// out-of-range positions, parse failures, and limit/offset misuse. It is
	// the only kind the query driver surfaces with a user-facing message and
	// HTTP-equivalent status 400.
	KindBadRequest
	// KindQueryCompilation marks an impossible branch reached by the
	// filter-expression-to-operator compiler: an invariant violation
	// between the AST and the schema that validation should have caught.
	// Internal bug, surfaced as a 500-equivalent.
	KindQueryCompilation
	// KindLoadDatabase covers I/O and format errors while loading a
	// partition or schema descriptor from disk.
	KindLoadDatabase
	// KindSaveDatabase covers I/O and format errors while serializing a
	// partition or schema descriptor to disk.
	KindSaveDatabase
	// KindPreprocessing covers errors while building/validating a partition
	// during ingest, before it is frozen.
	KindPreprocessing
	// KindDuplicatePrimaryKey is raised by table validation when the
	// primary-key uniqueness invariant is violated after an append.
	KindDuplicatePrimaryKey
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindQueryCompilation:
		return "QueryCompilationException"
	case KindLoadDatabase:
		return "LoadDatabaseException"
	case KindSaveDatabase:
		return "SaveDatabaseException"
	case KindPreprocessing:
		return "PreprocessingException"
	case KindDuplicatePrimaryKey:
		return "DuplicatePrimaryKeyException"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
		if e.Err != nil {
			b.WriteString(": ")
		}
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error with the given arguments.
// Arguments can be: Op, Kind, error, string (message).
func E(args ...interface{}) *Error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case error:
			e.Err = a
		case string:
			e.Msg = a
		}
	}
	return e
}

// BadRequest builds a KindBadRequest error naming the offending field or
// condition, per spec.md §4.B validation contract.
func BadRequest(op Op, msg string) *Error {
	return &Error{Op: op, Kind: KindBadRequest, Msg: msg}
}

// QueryCompilation builds a KindQueryCompilation error for an impossible
// compiler branch.
func QueryCompilation(op Op, msg string) *Error {
	return &Error{Op: op, Kind: KindQueryCompilation, Msg: msg}
}

// DuplicatePrimaryKey builds a KindDuplicatePrimaryKey error naming the
// colliding key.
func DuplicatePrimaryKey(op Op, key string) *Error {
	return &Error{Op: op, Kind: KindDuplicatePrimaryKey, Msg: "duplicate primary key: " + key}
}

// Wrap wraps an error with an operation name for context.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind wraps an error with an operation name, kind, and message.
func WrapKind(op Op, kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Msg: msg, Err: err}
}

// IsKind reports whether an error is of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}

// GetKind returns the kind of an error, or KindUnknown.
func GetKind(err error) Kind {
	e, ok := err.(*Error)
	if !ok {
		return KindUnknown
	}
	return e.Kind
}

// MustHandle panics if the error is not nil.
// Use this only for errors that should never happen in normal operation,
// e.g. an invariant the schema validator already checked.
func MustHandle(err error) {
	if err != nil {
		panic(fmt.Sprintf("unexpected error: %v", err))
	}
}

// Must panics if the error is not nil and returns the value otherwise.
// Use this only for initialization code where errors are unexpected.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("unexpected error: %v", err))
	}
	return v
}

// IgnoreError explicitly ignores an error with a reason, documenting that
// the omission is intentional rather than an oversight.
func IgnoreError(err error, reason string) {
	if err != nil {
		log.Printf("Debug: ignoring error (%s): %v", reason, err)
	}
}

// LogAndContinue logs an error at its call site. Used at partition
// boundaries in the parallel executor, never inside a single operator's
// evaluate() call.
func LogAndContinue(operation string, err error) {
	_, file, line, ok := runtime.Caller(1)
	if ok {
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		log.Printf("Warning [%s:%d]: %s failed: %v", file, line, operation, err)
	} else {
		log.Printf("Warning: %s failed: %v", operation, err)
	}
}
