package jpool

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error definitions for pool, decode and query operations
var (
	// ErrSyntax reports input that does not match the JSON grammar, nests
	// deeper than the configured limit, or exceeds the length range of the
	// pool's profile.
	ErrSyntax = errors.New("jpool: invalid JSON")
	// ErrPoolExhausted reports that a node could not be allocated.
	ErrPoolExhausted = errors.New("jpool: pool exhausted")
	ErrFreed         = errors.New("jpool: pool has been freed")
	ErrProfile       = errors.New("jpool: offset type narrower than index type")
	ErrReadOnly      = errors.New("jpool: pool holds a decoded document")
	ErrInvalidNode   = errors.New("jpool: invalid node index")
	ErrInvalidQuery  = errors.New("jpool: invalid query syntax")
	ErrNotFound      = errors.New("jpool: path not found")
)

// DecodeError is returned by Decode. Err is ErrSyntax or ErrPoolExhausted.
type DecodeError struct {
	Err    error
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	kind := "syntax error"
	if errors.Is(e.Err, ErrPoolExhausted) {
		kind = "allocation failed"
	}
	if e.Reason == "" {
		return fmt.Sprintf("jpool: %s at offset %d", kind, e.Offset)
	}
	return fmt.Sprintf("jpool: %s at offset %d: %s", kind, e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func syntaxError(pos int, format string, args ...interface{}) error {
	return &DecodeError{Err: ErrSyntax, Offset: pos, Reason: fmt.Sprintf(format, args...)}
}

// exhausted wraps an allocator failure with the input position at which it
// happened. Errors that are already positioned pass through.
func exhausted(pos int, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Err: err, Offset: pos, Reason: err.Error()}
}
