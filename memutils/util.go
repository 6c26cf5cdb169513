package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

// CheckPow2 returns an error wrapping ErrNotPowerOfTwo unless alignment is zero or a power
// of two. name identifies the offending value in the error.
func CheckPow2(alignment int, name string) error {
	if alignment < 0 || alignment&(alignment-1) != 0 {
		return cerrors.Wrapf(ErrNotPowerOfTwo, "%s is %d", name, alignment)
	}
	return nil
}

// AlignUp rounds size up to the next multiple of alignment. Alignments of 0 and 1 leave
// size unchanged; any other alignment must have passed CheckPow2.
func AlignUp(size, alignment int) int {
	if alignment <= 1 {
		return size
	}

	mask := alignment - 1
	return (size + mask) &^ mask
}
