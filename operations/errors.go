package operations

import "errors"

var (
	// ErrScopeMismatch is returned when an operation targets another wave or
	// wavelet than the manager.
	ErrScopeMismatch = errors.New("operation scope mismatch")
	// ErrInvalidPayloadShape is returned when a record's payload does not
	// match its kind.
	ErrInvalidPayloadShape = errors.New("invalid payload shape")
	ErrNegativeLength      = errors.New("negative length")
	// ErrUnpositionedOperation is returned for operations whose index is unset.
	ErrUnpositionedOperation = errors.New("operation is not positioned")
	ErrUnknownKind           = errors.New("unknown operation kind")
	// ErrNullOperation is returned where an empty insert or zero-length
	// delete cannot be stored.
	ErrNullOperation = errors.New("null operation")
)
