package parser

// ErrorCode identifies a validation problem recorded on an element.
type ErrorCode string

const (
	// ErrInvalidAlias marks a single-dash token with more than one character.
	ErrInvalidAlias ErrorCode = "invalid_alias"
	// ErrEmptyArgumentName marks a bare "--".
	ErrEmptyArgumentName ErrorCode = "empty_argument_name"
	// ErrOrphanValue marks a bare word that follows no argument name.
	ErrOrphanValue ErrorCode = "orphan_value"
)

// ValidationError is a non-fatal problem attached to an element.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e ValidationError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func newError(code ErrorCode, msg string) ValidationError {
	return ValidationError{Code: code, Message: msg}
}
