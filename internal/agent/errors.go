package agent

import "fmt"

type ErrorKind int

const (
	// InvalidRequest - the caller built a malformed request.
	InvalidRequest ErrorKind = iota + 1
	// InvalidResponse - the agent answered with something that is not the expected JSON.
	InvalidResponse
	// Internal - transport or provider failure.
	Internal
)

func (that ErrorKind) String() string {
	switch that {
	case InvalidRequest:
		return "invalid request"
	case InvalidResponse:
		return "invalid response"
	case Internal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// Error is returned by every backend. Compare kinds with errors.Is against the
// Err* values below.
type Error struct {
	Kind    ErrorKind
	Message string
}

var (
	ErrInvalidRequest  = &Error{Kind: InvalidRequest}
	ErrInvalidResponse = &Error{Kind: InvalidResponse}
	ErrInternal        = &Error{Kind: Internal}
)

func (that *Error) Error() string {
	return that.Kind.String() + ": " + that.Message
}

func (that *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return other.Kind == that.Kind && (other.Message == "" || other.Message == that.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidRequest(format string, args ...any) *Error {
	return newError(InvalidRequest, format, args...)
}

func invalidResponse(format string, args ...any) *Error {
	return newError(InvalidResponse, format, args...)
}

func internal(format string, args ...any) *Error {
	return newError(Internal, format, args...)
}
