package resource

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// CreateFlags indicate specific resource manager behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that the manager and its allocations are not
	// synchronized internally. The consumer must guarantee they are used from only one
	// goroutine at a time or are synchronized by some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
}

// CreateOptions contains optional settings when creating a Manager
type CreateOptions struct {
	// Flags indicates specific manager behaviors to activate or deactivate
	Flags CreateFlags

	// HeapSizeLimits caps the number of bytes the manager will allocate from each memory heap.
	// If provided, it must have one entry per heap of the physical device. An entry of 0
	// means the heap is not limited.
	HeapSizeLimits []int
}

// AllocationCreateInfo describes a request to Manager.AllocateMemory
type AllocationCreateInfo struct {
	// MemoryTypeBits permits memory type i when bit i is set, as reported in the memory
	// requirements of the resource being backed
	MemoryTypeBits uint32
	// Alignment rounds the allocation size up to a multiple of itself. It must be 0 or a
	// power of two.
	Alignment int

	// RequiredFlags must all be present on the chosen memory type
	RequiredFlags core1_0.MemoryPropertyFlags
	// PreferredFlags should be present on the chosen memory type if possible
	PreferredFlags core1_0.MemoryPropertyFlags
	// NotPreferredFlags should be absent from the chosen memory type if possible
	NotPreferredFlags core1_0.MemoryPropertyFlags
}
