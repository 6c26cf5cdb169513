package resource

import (
	"encoding/json"
	"io"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/vke/device"
	"github.com/vkngwrapper/vke/memutils"
	"github.com/vkngwrapper/vke/native"
	"github.com/vkngwrapper/vke/native/mocks"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

const (
	testInstanceHandle       native.Instance       = 0x1000
	testPhysicalDeviceHandle native.PhysicalDevice = 0x2000
	testDeviceHandle         native.Device         = 0x3000
)

type ManagerSetup struct {
	MemoryTypes []native.MemoryType
	MemoryHeaps []native.MemoryHeap
}

func defaultSetup() ManagerSetup {
	return ManagerSetup{
		MemoryTypes: []native.MemoryType{
			{PropertyFlags: uint32(core1_0.MemoryPropertyHostVisible), HeapIndex: 1},
			{PropertyFlags: uint32(core1_0.MemoryPropertyDeviceLocal), HeapIndex: 0},
			{PropertyFlags: uint32(core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostCoherent), HeapIndex: 0},
			{PropertyFlags: uint32(core1_0.MemoryPropertyHostVisible), HeapIndex: 1},
		},
		MemoryHeaps: []native.MemoryHeap{
			{Size: 1 << 30, Flags: uint32(core1_0.MemoryHeapDeviceLocal)},
			{Size: 1 << 32},
		},
	}
}

// createActiveDevice brings up a device with the given memory layout on a mock driver.
// Destroying the device destroys the native device and instance.
func createActiveDevice(t *testing.T, driver *mocks.MockDriver, setup ManagerSetup, options CreateOptions) (*device.Device, error) {
	return createTrackedDevice(t, driver, setup, options, &atomic.Bool{})
}

// createTrackedDevice is createActiveDevice, setting deviceDestroyed once the native device
// has been destroyed
func createTrackedDevice(t *testing.T, driver *mocks.MockDriver, setup ManagerSetup, options CreateOptions, deviceDestroyed *atomic.Bool) (*device.Device, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	driver.EXPECT().EnumerateInstanceExtensionProperties().Return(nil, core1_0.VKSuccess)
	driver.EXPECT().CreateInstance(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *native.InstanceCreateInfo, instance *native.Instance) common.VkResult {
			*instance = testInstanceHandle
			return core1_0.VKSuccess
		})
	driver.EXPECT().EnumeratePhysicalDevices(testInstanceHandle).
		Return([]native.PhysicalDevice{testPhysicalDeviceHandle}, core1_0.VKSuccess)
	driver.EXPECT().GetPhysicalDeviceProperties(testPhysicalDeviceHandle, gomock.Any())
	driver.EXPECT().GetPhysicalDeviceQueueFamilyProperties(testPhysicalDeviceHandle).Return(nil)
	driver.EXPECT().GetPhysicalDeviceMemoryProperties(testPhysicalDeviceHandle, gomock.Any()).Do(
		func(_ native.PhysicalDevice, properties *native.PhysicalDeviceMemoryProperties) {
			properties.MemoryTypeCount = uint32(len(setup.MemoryTypes))
			copy(properties.MemoryTypes[:], setup.MemoryTypes)
			properties.MemoryHeapCount = uint32(len(setup.MemoryHeaps))
			copy(properties.MemoryHeaps[:], setup.MemoryHeaps)
		})
	driver.EXPECT().EnumerateDeviceExtensionProperties(testPhysicalDeviceHandle).Return(nil, core1_0.VKSuccess)
	driver.EXPECT().CreateDevice(testPhysicalDeviceHandle, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ native.PhysicalDevice, _ *native.DeviceCreateInfo, device *native.Device) common.VkResult {
			*device = testDeviceHandle
			return core1_0.VKSuccess
		})
	driver.EXPECT().DestroyDevice(testDeviceHandle).Do(func(native.Device) {
		deviceDestroyed.Store(true)
	})
	driver.EXPECT().DestroyInstance(testInstanceHandle)

	instance, err := device.NewInstance(logger, driver, device.InstanceOptions{})
	require.NoError(t, err)
	t.Cleanup(instance.Destroy)

	physicalDevices, err := instance.PhysicalDevices()
	require.NoError(t, err)

	dev := device.NewDevice(logger, physicalDevices[0], device.DeviceOptions{
		ResourceManager: Factory(logger, options),
	})
	return dev, dev.Activate(device.ActivateOptions{})
}

func expectAllocateMemory(driver *mocks.MockDriver, size uint64, memoryTypeIndex uint32, memory native.DeviceMemory) *gomock.Call {
	return driver.EXPECT().AllocateMemory(testDeviceHandle, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ native.Device, allocateInfo *native.MemoryAllocateInfo, out *native.DeviceMemory) common.VkResult {
			if allocateInfo.SType != native.StructureTypeMemoryAllocateInfo ||
				allocateInfo.AllocationSize != size ||
				allocateInfo.MemoryTypeIndex != memoryTypeIndex {
				return core1_0.VKErrorUnknown
			}
			*out = memory
			return core1_0.VKSuccess
		})
}

var allocateTestCases = map[string]struct {
	MemoryTypeBits uint32
	Required       core1_0.MemoryPropertyFlags

	ExpectedTypeIndex int
	ExpectedHeapIndex int
}{
	"TestDeviceLocal": {
		MemoryTypeBits:    0b0110,
		Required:          core1_0.MemoryPropertyDeviceLocal,
		ExpectedTypeIndex: 1,
		ExpectedHeapIndex: 0,
	},
	"TestCoherent": {
		MemoryTypeBits:    0b1111,
		Required:          core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostCoherent,
		ExpectedTypeIndex: 2,
		ExpectedHeapIndex: 0,
	},
	"TestHostVisible": {
		MemoryTypeBits:    0b1000,
		Required:          core1_0.MemoryPropertyHostVisible,
		ExpectedTypeIndex: 3,
		ExpectedHeapIndex: 1,
	},
}

func TestAllocate(t *testing.T) {
	for testName, testCase := range allocateTestCases {
		t.Run(testName, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			driver := mocks.NewMockDriver(ctrl)

			dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{})
			require.NoError(t, err)
			manager := dev.ResourceManager().(*Manager)

			expectAllocateMemory(driver, 4096, uint32(testCase.ExpectedTypeIndex), 0x77)
			driver.EXPECT().FreeMemory(testDeviceHandle, native.DeviceMemory(0x77)).Times(1)

			alloc, err := manager.Allocate(4096, testCase.MemoryTypeBits, testCase.Required)
			require.NoError(t, err)
			require.Equal(t, native.DeviceMemory(0x77), alloc.Memory())
			require.Equal(t, 4096, alloc.Size())
			require.Equal(t, testCase.ExpectedTypeIndex, alloc.MemoryTypeIndex())
			require.Equal(t, testCase.ExpectedHeapIndex, alloc.HeapIndex())
			require.Equal(t, 1, manager.AllocationCount())
			require.NoError(t, manager.allocations.Validate())

			budgets := manager.HeapBudgets()
			require.Equal(t, memutils.Statistics{AllocationCount: 1, AllocationBytes: 4096}, budgets[testCase.ExpectedHeapIndex].Statistics)

			alloc.Free()
			alloc.Free()
			require.True(t, alloc.Freed())
			require.Equal(t, 0, manager.AllocationCount())
			require.Equal(t, memutils.Statistics{}, manager.HeapBudgets()[testCase.ExpectedHeapIndex].Statistics)

			require.NoError(t, dev.Destroy())
		})
	}
}

func TestAllocateUnsupportedConfiguration(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{})
	require.NoError(t, err)
	defer dev.Destroy()
	manager := dev.ResourceManager().(*Manager)

	_, err = manager.Allocate(4096, 0b1001, core1_0.MemoryPropertyDeviceLocal)
	require.True(t, errors.Is(err, memutils.ErrUnsupportedMemoryConfiguration))

	_, err = manager.Allocate(0, 0b1111, 0)
	require.Error(t, err)
}

func TestAllocateNativeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{})
	require.NoError(t, err)
	defer dev.Destroy()
	manager := dev.ResourceManager().(*Manager)

	driver.EXPECT().AllocateMemory(testDeviceHandle, gomock.Any(), gomock.Any()).Return(core1_0.VKErrorOutOfDeviceMemory)

	_, err = manager.Allocate(4096, 0b0010, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "vkAllocateMemory")
	require.Equal(t, memutils.Statistics{}, manager.HeapBudgets()[0].Statistics)
}

func TestHeapSizeLimits(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{HeapSizeLimits: []int{8192, 0}})
	require.NoError(t, err)
	manager := dev.ResourceManager().(*Manager)

	expectAllocateMemory(driver, 6144, 1, 0x10)
	first, err := manager.Allocate(6144, 0b0010, core1_0.MemoryPropertyDeviceLocal)
	require.NoError(t, err)

	_, err = manager.Allocate(4096, 0b0010, core1_0.MemoryPropertyDeviceLocal)
	require.Error(t, err)
	require.Contains(t, err.Error(), "limit")

	// The other heap is unlimited
	expectAllocateMemory(driver, 1<<20, 0, 0x11)
	second, err := manager.Allocate(1<<20, 0b0001, 0)
	require.NoError(t, err)

	budgets := manager.HeapBudgets()
	require.Equal(t, HeapBudget{
		Statistics: memutils.Statistics{AllocationCount: 1, AllocationBytes: 6144},
		HeapSize:   1 << 30,
		Limit:      8192,
	}, budgets[0])
	require.Equal(t, 0, budgets[1].Limit)

	driver.EXPECT().FreeMemory(testDeviceHandle, native.DeviceMemory(0x10))
	first.Free()

	expectAllocateMemory(driver, 4096, 1, 0x12)
	_, err = manager.Allocate(4096, 0b0010, core1_0.MemoryPropertyDeviceLocal)
	require.NoError(t, err)

	// Destroying the device frees what is left before the native device goes away
	gomock.InOrder(
		driver.EXPECT().FreeMemory(testDeviceHandle, native.DeviceMemory(0x11)),
		driver.EXPECT().FreeMemory(testDeviceHandle, native.DeviceMemory(0x12)),
	)
	require.NoError(t, dev.Destroy())
	require.True(t, second.Freed())

	second.Free()
	_, err = manager.Allocate(4096, 0b0010, 0)
	require.True(t, errors.Is(err, device.ErrDisposed))
}

func TestHeapSizeLimitsMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{HeapSizeLimits: []int{8192}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "HeapSizeLimits")
	require.Equal(t, device.StateDisposed, dev.State())
}

func TestBuildStatsString(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{Flags: CreateExternallySynchronized})
	require.NoError(t, err)
	manager := dev.ResourceManager().(*Manager)

	expectAllocateMemory(driver, 256, 1, 0x20)
	expectAllocateMemory(driver, 1024, 1, 0x21)
	driver.EXPECT().FreeMemory(testDeviceHandle, gomock.Any()).Times(2)

	small, err := manager.Allocate(256, 0b0010, core1_0.MemoryPropertyDeviceLocal)
	require.NoError(t, err)
	small.SetName("vertices")
	_, err = manager.Allocate(1024, 0b0010, core1_0.MemoryPropertyDeviceLocal)
	require.NoError(t, err)

	var stats struct {
		Total struct {
			AllocationCount   int
			AllocationBytes   int
			AllocationSizeMin int
			AllocationSizeMax int
		}
		MemoryHeaps []struct {
			Index           int
			Size            int
			Limit           int
			AllocationCount int
			MemoryTypes     []struct {
				Index           int
				AllocationCount int
			}
		}
		Allocations []struct {
			MemoryTypeIndex int
			Size            int
			Name            string
		}
	}

	require.NoError(t, json.Unmarshal([]byte(manager.BuildStatsString(true)), &stats))
	require.Equal(t, 2, stats.Total.AllocationCount)
	require.Equal(t, 1280, stats.Total.AllocationBytes)
	require.Equal(t, 256, stats.Total.AllocationSizeMin)
	require.Equal(t, 1024, stats.Total.AllocationSizeMax)

	require.Len(t, stats.MemoryHeaps, 2)
	require.Equal(t, 2, stats.MemoryHeaps[0].AllocationCount)
	require.Len(t, stats.MemoryHeaps[0].MemoryTypes, 2)
	require.Equal(t, 1, stats.MemoryHeaps[0].MemoryTypes[0].Index)
	require.Equal(t, 2, stats.MemoryHeaps[0].MemoryTypes[0].AllocationCount)
	require.Len(t, stats.MemoryHeaps[1].MemoryTypes, 2)

	require.Len(t, stats.Allocations, 2)
	require.Equal(t, "vertices", stats.Allocations[0].Name)
	require.Equal(t, 1024, stats.Allocations[1].Size)

	stats.Allocations = nil
	require.NoError(t, json.Unmarshal([]byte(manager.BuildStatsString(false)), &stats))
	require.Nil(t, stats.Allocations)

	require.NoError(t, dev.Destroy())
	require.Equal(t, 0, manager.AllocationCount())
	require.NoError(t, manager.Destroy())
}

func TestNewRequiresActiveDevice(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, dev.Destroy())

	_, err = New(nil, dev, CreateOptions{})
	require.True(t, errors.Is(err, device.ErrInvalidState))
}

var allocateMemoryTestCases = map[string]struct {
	Size int
	Info AllocationCreateInfo

	ExpectedSize      int
	ExpectedTypeIndex int
}{
	"TestPreferredFlags": {
		Size: 4096,
		Info: AllocationCreateInfo{
			MemoryTypeBits: 0b1111,
			RequiredFlags:  core1_0.MemoryPropertyDeviceLocal,
			PreferredFlags: core1_0.MemoryPropertyHostCoherent,
		},
		ExpectedSize:      4096,
		ExpectedTypeIndex: 2,
	},
	"TestNotPreferredFlags": {
		Size: 4096,
		Info: AllocationCreateInfo{
			MemoryTypeBits:    0b1011,
			NotPreferredFlags: core1_0.MemoryPropertyHostVisible,
		},
		ExpectedSize:      4096,
		ExpectedTypeIndex: 1,
	},
	"TestPreferredFlagsUnavailable": {
		Size: 4096,
		Info: AllocationCreateInfo{
			MemoryTypeBits: 0b1000,
			PreferredFlags: core1_0.MemoryPropertyDeviceLocal,
		},
		ExpectedSize:      4096,
		ExpectedTypeIndex: 3,
	},
	"TestAlignment": {
		Size: 1000,
		Info: AllocationCreateInfo{
			MemoryTypeBits: 0b0010,
			Alignment:      256,
		},
		ExpectedSize:      1024,
		ExpectedTypeIndex: 1,
	},
}

func TestAllocateMemory(t *testing.T) {
	for testName, testCase := range allocateMemoryTestCases {
		t.Run(testName, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			driver := mocks.NewMockDriver(ctrl)

			dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{})
			require.NoError(t, err)
			defer dev.Destroy()
			manager := dev.ResourceManager().(*Manager)

			expectAllocateMemory(driver, uint64(testCase.ExpectedSize), uint32(testCase.ExpectedTypeIndex), 0x40)
			driver.EXPECT().FreeMemory(testDeviceHandle, native.DeviceMemory(0x40))

			alloc, err := manager.AllocateMemory(testCase.Size, testCase.Info)
			require.NoError(t, err)
			require.Equal(t, testCase.ExpectedSize, alloc.Size())
			require.Equal(t, testCase.ExpectedTypeIndex, alloc.MemoryTypeIndex())

			heapIndex := alloc.HeapIndex()
			require.Equal(t, testCase.ExpectedSize, manager.HeapBudgets()[heapIndex].Statistics.AllocationBytes)
			alloc.Free()
		})
	}
}

func TestAllocateMemoryBadAlignment(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{})
	require.NoError(t, err)
	defer dev.Destroy()
	manager := dev.ResourceManager().(*Manager)

	_, err = manager.AllocateMemory(1000, AllocationCreateInfo{MemoryTypeBits: 0b1111, Alignment: 48})
	require.True(t, errors.Is(err, memutils.ErrNotPowerOfTwo))
	require.Contains(t, err.Error(), "Alignment is 48")
	require.Equal(t, 0, manager.AllocationCount())
}

func TestManagerKeepsDeviceAlive(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	var deviceDestroyed atomic.Bool
	manager := func() *Manager {
		dev, err := createTrackedDevice(t, driver, defaultSetup(), CreateOptions{}, &deviceDestroyed)
		require.NoError(t, err)
		return dev.ResourceManager().(*Manager)
	}()

	for i := 0; i < 3; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	require.False(t, deviceDestroyed.Load())

	driver.EXPECT().AllocateMemory(testDeviceHandle, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ native.Device, _ *native.MemoryAllocateInfo, out *native.DeviceMemory) common.VkResult {
			if deviceDestroyed.Load() {
				return core1_0.VKErrorDeviceLost
			}
			*out = 0x30
			return core1_0.VKSuccess
		})
	driver.EXPECT().FreeMemory(testDeviceHandle, native.DeviceMemory(0x30))

	alloc, err := manager.Allocate(1024, 0b0010, core1_0.MemoryPropertyDeviceLocal)
	require.NoError(t, err)
	alloc.Free()

	require.NoError(t, manager.Device().Destroy())
	require.True(t, deviceDestroyed.Load())

	_, err = manager.Allocate(1024, 0b0010, 0)
	require.True(t, errors.Is(err, device.ErrDisposed))
}

func TestAllocateAfterDeviceDestroyed(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	dev, err := createActiveDevice(t, driver, defaultSetup(), CreateOptions{})
	require.NoError(t, err)

	// A manager the device does not own is not destroyed along with it
	standalone, err := New(nil, dev, CreateOptions{})
	require.NoError(t, err)
	require.Same(t, dev, standalone.Device())

	require.NoError(t, dev.Destroy())

	_, err = standalone.Allocate(1024, 0b0010, 0)
	require.True(t, errors.Is(err, device.ErrDisposed))
	require.NoError(t, standalone.Destroy())
}
