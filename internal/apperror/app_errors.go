package apperror

import "errors"

var (
	ErrUnknownGame      = errors.New("unknown game name")
	ErrUnknownAgentKind = errors.New("invalid agent kind")
	ErrUnknownOrder     = errors.New("unknown player order")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrInvalidTestCase  = errors.New("invalid test case")
	ErrResultNotFound   = errors.New("result not found")
	ErrUnknownStorage   = errors.New("unknown storage driver")
	ErrNoCaseOrTestFile = errors.New("no test case or test file provided")
	ErrMissingField     = errors.New("missing required field")
)
