package resource

import (
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/vke/memutils"
	"github.com/vkngwrapper/vke/native"
)

// heapUsage tracks, per memory heap, how much device memory the manager holds. Updates are
// atomic so allocations can be counted without taking the manager's list lock.
type heapUsage struct {
	allocationCount [native.MaxMemoryHeaps]int32
	allocationBytes [native.MaxMemoryHeaps]int64

	heapLimits []int
}

func (u *heapUsage) reserve(heapIndex, size int) error {
	limit := u.heapLimits[heapIndex]
	if limit == 0 {
		atomic.AddInt64(&u.allocationBytes[heapIndex], int64(size))
		atomic.AddInt32(&u.allocationCount[heapIndex], 1)
		return nil
	}

	for {
		currentVal := atomic.LoadInt64(&u.allocationBytes[heapIndex])
		targetVal := currentVal + int64(size)

		if targetVal > int64(limit) {
			return errors.Wrapf(core1_0.VKErrorOutOfDeviceMemory.ToError(),
				"allocating %d bytes would exceed the %d byte limit of heap %d", size, limit, heapIndex)
		}

		if atomic.CompareAndSwapInt64(&u.allocationBytes[heapIndex], currentVal, targetVal) {
			break
		}
	}

	atomic.AddInt32(&u.allocationCount[heapIndex], 1)
	return nil
}

func (u *heapUsage) release(heapIndex, size int) {
	newVal := atomic.AddInt64(&u.allocationBytes[heapIndex], int64(-size))
	if newVal < 0 {
		panic(fmt.Sprintf("allocation bytes for heapIndex %d went negative", heapIndex))
	}

	newCountVal := atomic.AddInt32(&u.allocationCount[heapIndex], -1)
	if newCountVal < 0 {
		panic(fmt.Sprintf("allocation count for heapIndex %d went negative", heapIndex))
	}
}

func (u *heapUsage) statistics(heapIndex int) memutils.Statistics {
	return memutils.Statistics{
		AllocationCount: int(atomic.LoadInt32(&u.allocationCount[heapIndex])),
		AllocationBytes: int(atomic.LoadInt64(&u.allocationBytes[heapIndex])),
	}
}
