package reconcile

import (
	"errors"
	"fmt"
)

// MismatchCode categorizes structural mismatches.
type MismatchCode string

const (
	// CodeTagMismatch indicates the markup holds an element with a
	// different tag than the replayed stream expects.
	CodeTagMismatch MismatchCode = "TAG_MISMATCH"

	// CodeWrongKind indicates the markup holds a node of the wrong kind
	// (element where text was expected, or the reverse).
	CodeWrongKind MismatchCode = "WRONG_KIND"

	// CodeMissingChild indicates the replayed stream expects a node at a
	// slot the markup does not populate.
	CodeMissingChild MismatchCode = "MISSING_CHILD"

	// CodeUnterminatedRange indicates a range-start marker with no
	// matching range-end. Always fatal to the walk.
	CodeUnterminatedRange MismatchCode = "UNTERMINATED_RANGE"

	// CodeCountMismatch indicates the client produced a different number
	// of fragment items than the delivered region holds.
	CodeCountMismatch MismatchCode = "COUNT_MISMATCH"

	// CodeMissingRange indicates the stream expects a marker-bounded
	// region where the markup has none.
	CodeMissingRange MismatchCode = "MISSING_RANGE"
)

// MismatchError is the terminal disagreement between the replayed
// construction stream and the delivered markup. It is fatal to the current
// island's hydration pass and never to the page: the orchestrator catches
// it at island granularity.
//
// Path is the coordinate the walk had reached, in Position.String form,
// so operators can locate the divergence in the delivered markup.
type MismatchError struct {
	Code     MismatchCode
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s at %s: expected %s, found %s", e.Code, e.Path, e.Expected, e.Actual)
}

// IsMismatch reports whether err is (or wraps) a structural mismatch.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}

// AsMismatch extracts the mismatch from err, or nil.
func AsMismatch(err error) *MismatchError {
	var me *MismatchError
	if errors.As(err, &me) {
		return me
	}
	return nil
}

func newMismatch(code MismatchCode, path, expected, actual string) *MismatchError {
	return &MismatchError{Code: code, Path: path, Expected: expected, Actual: actual}
}
