package jpake

import "errors"

// Common error kinds returned by the library. Every error returned from a
// Session or ThreePass operation wraps exactly one of these, so callers can
// classify failures with errors.Is.
var (
	// ErrInvalidArgument indicates a caller-supplied value is syntactically
	// or semantically out of range.
	ErrInvalidArgument = errors.New("jpake: invalid argument")

	// ErrInvalidState indicates an operation was invoked outside its
	// permitted source state.
	ErrInvalidState = errors.New("jpake: invalid state")

	// ErrVerification indicates a cryptographic check failed.
	ErrVerification = errors.New("jpake: verification failed")

	// ErrInternal indicates an invariant was violated inside the library.
	ErrInternal = errors.New("jpake: internal error")
)

// Error wraps one of the error kinds with a human-readable reason. The
// reason never contains secret material.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func argError(reason string) *Error {
	return newError(ErrInvalidArgument, reason)
}

func stateError(reason string) *Error {
	return newError(ErrInvalidState, reason)
}

func verificationError(reason string) *Error {
	return newError(ErrVerification, reason)
}

func internalError(reason string) *Error {
	return newError(ErrInternal, reason)
}
