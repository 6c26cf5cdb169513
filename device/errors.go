package device

import "github.com/cockroachdb/errors"

var (
	// ErrInitializationFailure marks errors caused by a native create call reporting a
	// non-success status. The attempt is not retried.
	ErrInitializationFailure = errors.New("native object initialization failed")
	// ErrUnsupportedResourceState is returned when the driver reports a state this module
	// cannot work with, such as an instance with no physical devices
	ErrUnsupportedResourceState = errors.New("unsupported resource state")
	// ErrInvalidState is returned when an operation is called on a Device in a state that
	// does not allow it
	ErrInvalidState = errors.New("operation is not valid in the current state")
	// ErrDisposed is returned when an Instance or Device is used after it was destroyed
	ErrDisposed = errors.New("object has been destroyed")
)

func initializationFailure(err error, call string) error {
	return errors.Mark(errors.Wrapf(err, "%s", call), ErrInitializationFailure)
}
