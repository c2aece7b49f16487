package render

import (
	"errors"
	"fmt"
)

// RegistrationError reports island registration misuse: registering an
// island outside an active render session, after the session was finalized,
// or with malformed metadata. It is a server-side programmer error and is
// fatal at render time — the server errors loudly rather than silently
// shipping markup with no hydration script.
type RegistrationError struct {
	Type   string
	Reason string
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("island registration misuse (type=%s): %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("island registration misuse: %s", e.Reason)
}

// IsRegistrationError reports whether err is (or wraps) registration
// misuse.
func IsRegistrationError(err error) bool {
	var re *RegistrationError
	return errors.As(err, &re)
}
