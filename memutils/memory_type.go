package memutils

import (
	"math"
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// SelectMemoryType returns the lowest memory type index that is permitted by candidateBits
// and whose property flags include every flag in required. Bit i of candidateBits permits
// memoryTypes[i]. If no memory type qualifies, an error wrapping
// ErrUnsupportedMemoryConfiguration is returned.
func SelectMemoryType(
	candidateBits uint32,
	required core1_0.MemoryPropertyFlags,
	memoryTypes []core1_0.MemoryType,
) (int, error) {
	return FindMemoryTypeIndex(candidateBits, required, 0, 0, memoryTypes)
}

// FindMemoryTypeIndex is SelectMemoryType with soft preferences. Among the memory types that
// pass the bitmask and carry every required flag, the one with the fewest missing preferred
// flags plus present notPreferred flags wins, and ties go to the lowest index.
func FindMemoryTypeIndex(
	candidateBits uint32,
	required, preferred, notPreferred core1_0.MemoryPropertyFlags,
	memoryTypes []core1_0.MemoryType,
) (int, error) {
	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	typeCount := len(memoryTypes)
	if typeCount > 32 {
		typeCount = 32
	}

	for memTypeIndex := 0; memTypeIndex < typeCount; memTypeIndex++ {
		memTypeBit := uint32(1) << memTypeIndex

		if memTypeBit&candidateBits == 0 {
			// This memory type is banned by the bitmask
			continue
		}

		flags := memoryTypes[memTypeIndex].PropertyFlags
		if required&flags != required {
			// This memory type is missing required flags
			continue
		}

		missingPreferredFlags := preferred & ^flags
		presentNotPreferredFlags := notPreferred & flags
		cost := bits.OnesCount32(uint32(missingPreferredFlags)) + bits.OnesCount32(uint32(presentNotPreferredFlags))
		if cost == 0 {
			return memTypeIndex, nil
		} else if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	if bestMemoryTypeIndex < 0 {
		return -1, cerrors.Wrapf(ErrUnsupportedMemoryConfiguration,
			"candidate bits %#b, required flags %s", candidateBits, required)
	}

	return bestMemoryTypeIndex, nil
}
