package memutils

import "github.com/pkg/errors"

// ErrNotPowerOfTwo is returned by CheckPow2 for an alignment that is not a power of two
var ErrNotPowerOfTwo = errors.New("alignment must be a power of two")

// ErrUnsupportedMemoryConfiguration is returned when no memory type allowed by a candidate bitmask
// carries every required property flag
var ErrUnsupportedMemoryConfiguration = errors.New("no memory type satisfies the requested properties")
