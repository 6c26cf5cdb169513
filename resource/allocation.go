package resource

import (
	"sync/atomic"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/vke/native"
)

// Allocation is one block of device memory owned by a Manager
type Allocation struct {
	manager *Manager

	memory          native.DeviceMemory
	size            int
	memoryTypeIndex int
	heapIndex       int
	name            string

	freed atomic.Bool

	listed bool
	prev   *Allocation
	next   *Allocation
}

func (a *Allocation) Memory() native.DeviceMemory {
	return a.memory
}

func (a *Allocation) Size() int {
	return a.size
}

func (a *Allocation) MemoryTypeIndex() int {
	return a.memoryTypeIndex
}

func (a *Allocation) HeapIndex() int {
	return a.heapIndex
}

func (a *Allocation) Name() string {
	return a.name
}

// SetName attaches a name that is reported by Manager.BuildStatsString
func (a *Allocation) SetName(name string) {
	a.name = name
}

// Freed reports whether the memory has been given back, either by Free or by the Manager
// being destroyed
func (a *Allocation) Freed() bool {
	return a.freed.Load()
}

// Free gives the memory back to the driver. Calling Free more than once, or after the
// Manager has been destroyed, does nothing.
func (a *Allocation) Free() {
	a.manager.logger.Debug("Allocation::Free")

	if !a.freed.CompareAndSwap(false, true) {
		return
	}

	a.manager.allocations.Unregister(a)
	a.manager.validateAllocations()
	a.manager.release(a)
}

func (a *Allocation) printParameters(json *jwriter.ObjectState) {
	json.Name("MemoryTypeIndex").Int(a.memoryTypeIndex)
	json.Name("HeapIndex").Int(a.heapIndex)
	json.Name("Size").Int(a.size)

	if a.name != "" {
		json.Name("Name").String(a.name)
	}
}
