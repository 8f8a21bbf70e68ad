package sqlite

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPool marks failures to acquire a pooled connection. These are
	// never retried here; retry policy belongs to the caller.
	ErrPool = errors.New("connection pool unavailable")

	// ErrDecode marks a stored row that could not be decoded back into
	// an event.
	ErrDecode = errors.New("malformed stored event")
)

// storeError wraps an operation failure, folding connection-wait
// timeouts into the pool error kind
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrPool)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsPoolError reports whether err is a pool-acquisition failure
func IsPoolError(err error) bool {
	return errors.Is(err, ErrPool)
}

// IsDecodeError reports whether err came from decoding a stored row
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}
