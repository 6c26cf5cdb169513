// Package resource is the device memory manager a device.Device can own. Every allocation
// gets its own block of device memory; allocations still alive when the manager is
// destroyed are freed with it.
package resource

import (
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/vke/device"
	"github.com/vkngwrapper/vke/memutils"
	"github.com/vkngwrapper/vke/native"
	"golang.org/x/exp/slog"
)

// HeapBudget reports how much of one memory heap the manager is using
type HeapBudget struct {
	Statistics memutils.Statistics
	// HeapSize is the size of the heap reported by the physical device
	HeapSize int
	// Limit is the configured cap for the heap, or 0 if it is not limited
	Limit int
}

// Manager allocates device memory for a single active device. A Manager keeps its Device
// reachable, so the native device is not collected while the Manager is still in use.
type Manager struct {
	logger      *slog.Logger
	driver      native.Driver
	device      *device.Device
	handle      native.Device
	createFlags CreateFlags

	memoryTypes []core1_0.MemoryType
	memoryHeaps []core1_0.MemoryHeap

	usage       heapUsage
	allocations allocationList
	destroyed   atomic.Bool
}

var _ device.ResourceManager = &Manager{}

// Factory returns a device.ResourceManagerFactory that builds a Manager with options once
// the device is active
func Factory(logger *slog.Logger, options CreateOptions) device.ResourceManagerFactory {
	return func(dev *device.Device) (device.ResourceManager, error) {
		return New(logger, dev, options)
	}
}

// New creates a Manager for an active device
func New(logger *slog.Logger, dev *device.Device, options CreateOptions) (*Manager, error) {
	if logger == nil {
		logger = dev.Logger()
	}
	logger.Debug("Manager::New", slog.String("flags", options.Flags.String()))

	if dev.State() != device.StateActive {
		return nil, errors.Wrapf(device.ErrInvalidState, "resource manager requires an active device, device is %s", dev.State())
	}

	physicalDevice := dev.PhysicalDevice()
	heapCount := len(physicalDevice.MemoryHeaps())
	heapLimitCount := len(options.HeapSizeLimits)

	if heapLimitCount > 0 && heapLimitCount != heapCount {
		return nil, errors.Newf("resource.CreateOptions.HeapSizeLimits has %d entries, but the physical device has %d heaps", heapLimitCount, heapCount)
	}

	manager := &Manager{
		logger:      logger,
		driver:      dev.Driver(),
		device:      dev,
		handle:      dev.Handle(),
		createFlags: options.Flags,
		memoryTypes: physicalDevice.MemoryTypes(),
		memoryHeaps: physicalDevice.MemoryHeaps(),
	}

	manager.usage.heapLimits = make([]int, heapCount)
	copy(manager.usage.heapLimits, options.HeapSizeLimits)

	useMutex := options.Flags&CreateExternallySynchronized == 0
	manager.allocations.Init(useMutex)

	return manager, nil
}

// Allocate allocates size bytes of device memory from the lowest memory type that is
// allowed by memoryTypeBits and has every flag in required. The returned error wraps
// memutils.ErrUnsupportedMemoryConfiguration if there is no such memory type, and
// core1_0.VKErrorOutOfDeviceMemory if the heap limit would be exceeded.
func (m *Manager) Allocate(size int, memoryTypeBits uint32, required core1_0.MemoryPropertyFlags) (*Allocation, error) {
	return m.AllocateMemory(size, AllocationCreateInfo{
		MemoryTypeBits: memoryTypeBits,
		RequiredFlags:  required,
	})
}

// AllocateMemory allocates at least size bytes of device memory as described by info. The
// size is rounded up to info.Alignment. Among the memory types that pass
// info.MemoryTypeBits and carry every required flag, the one that best matches the
// preferred and not-preferred flags is used.
func (m *Manager) AllocateMemory(size int, info AllocationCreateInfo) (*Allocation, error) {
	m.logger.Debug("Manager::AllocateMemory")

	if m.destroyed.Load() {
		return nil, errors.Wrap(device.ErrDisposed, "resource manager")
	}
	if m.device.State() != device.StateActive {
		return nil, errors.Wrapf(device.ErrDisposed, "resource manager device is %s", m.device.State())
	}

	if size <= 0 {
		return nil, errors.Newf("allocation size must be positive, got %d", size)
	}

	err := memutils.CheckPow2(info.Alignment, "AllocationCreateInfo.Alignment")
	if err != nil {
		return nil, err
	}
	size = memutils.AlignUp(size, info.Alignment)

	memoryTypeIndex, err := memutils.FindMemoryTypeIndex(
		info.MemoryTypeBits,
		info.RequiredFlags,
		info.PreferredFlags,
		info.NotPreferredFlags,
		m.memoryTypes,
	)
	if err != nil {
		return nil, err
	}

	heapIndex := m.memoryTypes[memoryTypeIndex].HeapIndex
	err = m.usage.reserve(heapIndex, size)
	if err != nil {
		return nil, err
	}

	var memory native.DeviceMemory
	err = native.WithArena(func(arena *native.Arena) error {
		allocateInfo := &native.MemoryAllocateInfo{
			SType:           native.StructureTypeMemoryAllocateInfo,
			AllocationSize:  uint64(size),
			MemoryTypeIndex: uint32(memoryTypeIndex),
		}
		arena.Pin(allocateInfo)

		res := m.driver.AllocateMemory(m.handle, allocateInfo, &memory)
		runtime.KeepAlive(m.device)

		return native.Check(res, "vkAllocateMemory")
	})
	if err != nil {
		m.usage.release(heapIndex, size)
		return nil, err
	}

	alloc := &Allocation{
		manager:         m,
		memory:          memory,
		size:            size,
		memoryTypeIndex: memoryTypeIndex,
		heapIndex:       heapIndex,
	}
	m.allocations.Register(alloc)
	m.validateAllocations()

	return alloc, nil
}

func (m *Manager) release(alloc *Allocation) {
	m.driver.FreeMemory(m.handle, alloc.memory)
	runtime.KeepAlive(m.device)

	m.usage.release(alloc.heapIndex, alloc.size)
}

// Device is the device this manager allocates from
func (m *Manager) Device() *device.Device {
	return m.device
}

// AllocationCount is the number of live allocations
func (m *Manager) AllocationCount() int {
	return m.allocations.Len()
}

// HeapBudgets reports the usage of every memory heap
func (m *Manager) HeapBudgets() []HeapBudget {
	budgets := make([]HeapBudget, len(m.memoryHeaps))
	for heapIndex, heap := range m.memoryHeaps {
		budgets[heapIndex] = HeapBudget{
			Statistics: m.usage.statistics(heapIndex),
			HeapSize:   heap.Size,
			Limit:      m.usage.heapLimits[heapIndex],
		}
	}
	return budgets
}

// CalculateStatistics totals the live allocations of one memory type, or of every memory
// type if memoryTypeIndex is negative
func (m *Manager) CalculateStatistics(memoryTypeIndex int) memutils.DetailedStatistics {
	var stats memutils.DetailedStatistics
	stats.Clear()
	m.allocations.AddDetailedStatistics(&stats, memoryTypeIndex)
	return stats
}

// BuildStatsString renders the manager's usage as JSON. If detailedMap is true, every live
// allocation is listed.
func (m *Manager) BuildStatsString(detailedMap bool) string {
	writer := jwriter.NewWriter()

	obj := writer.Object()

	total := m.CalculateStatistics(-1)
	totalObj := obj.Name("Total").Object()
	printDetailedStatistics(&totalObj, &total)
	totalObj.End()

	heaps := obj.Name("MemoryHeaps").Array()
	for heapIndex, budget := range m.HeapBudgets() {
		heapObj := heaps.Object()
		heapObj.Name("Index").Int(heapIndex)
		heapObj.Name("Size").Int(budget.HeapSize)
		heapObj.Name("Flags").String(m.memoryHeaps[heapIndex].Flags.String())
		heapObj.Name("Limit").Int(budget.Limit)
		heapObj.Name("AllocationCount").Int(budget.Statistics.AllocationCount)
		heapObj.Name("AllocationBytes").Int(budget.Statistics.AllocationBytes)

		types := heapObj.Name("MemoryTypes").Array()
		for typeIndex, memoryType := range m.memoryTypes {
			if memoryType.HeapIndex != heapIndex {
				continue
			}

			stats := m.CalculateStatistics(typeIndex)
			typeObj := types.Object()
			typeObj.Name("Index").Int(typeIndex)
			typeObj.Name("Flags").String(memoryType.PropertyFlags.String())
			printDetailedStatistics(&typeObj, &stats)
			typeObj.End()
		}
		types.End()

		heapObj.End()
	}
	heaps.End()

	if detailedMap {
		m.allocations.BuildStatsString(&obj)
	}

	obj.End()

	return string(writer.Bytes())
}

func printDetailedStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)

	if stats.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
}

// Destroy frees every allocation that is still alive. The owning device calls it right
// before the native device is destroyed. Calling Destroy more than once does nothing.
func (m *Manager) Destroy() error {
	m.logger.Debug("Manager::Destroy")

	if !m.destroyed.CompareAndSwap(false, true) {
		return nil
	}

	m.validateAllocations()
	leaked := m.allocations.TakeAll()
	if len(leaked) > 0 {
		m.logger.Warn("freeing allocations that are still alive", slog.Int("count", len(leaked)))
	}

	for _, alloc := range leaked {
		if alloc.freed.CompareAndSwap(false, true) {
			m.release(alloc)
		}
	}

	return nil
}
