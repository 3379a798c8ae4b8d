package codec

import (
	"errors"
	"fmt"
)

// ErrMalformed is the kind of every decode failure.
var ErrMalformed = errors.New("malformed state document")

// ParseError describes why a document could not be decoded.
type ParseError struct {
	Key string
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", ErrMalformed.Error(), msg)
	}
	return fmt.Sprintf("%s: %q: %s", ErrMalformed.Error(), e.Key, msg)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

func parseErrorf(key string, cause error, format string, args ...any) error {
	return &ParseError{Key: key, Msg: fmt.Sprintf(format, args...), Err: cause}
}
