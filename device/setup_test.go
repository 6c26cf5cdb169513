package device

import (
	"io"
	"testing"
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readCString(ptr unsafe.Pointer) string {
	var out []byte
	for {
		b := *(*byte)(ptr)
		if b == 0 {
			return string(out)
		}
		out = append(out, b)
		ptr = unsafe.Add(ptr, 1)
	}
}

func readCStringArray(array unsafe.Pointer, count uint32) []string {
	if count == 0 {
		return nil
	}

	var names []string
	for _, ptr := range unsafe.Slice((*unsafe.Pointer)(array), count) {
		names = append(names, readCString(ptr))
	}
	return names
}

func extensionProperties(names ...string) []native.ExtensionProperties {
	properties := make([]native.ExtensionProperties, len(names))
	for i, name := range names {
		copy(properties[i].ExtensionName[:], name)
		properties[i].SpecVersion = 1
	}
	return properties
}

type AdapterSetup struct {
	Name          string
	Type          core1_0.PhysicalDeviceType
	APIVersion    common.APIVersion
	QueueFamilies []native.QueueFamilyProperties
	MemoryTypes   []native.MemoryType
	MemoryHeaps   []native.MemoryHeap
	Extensions    []string
}

func defaultAdapter() AdapterSetup {
	return AdapterSetup{
		Name:       "Test GPU",
		Type:       core1_0.PhysicalDeviceTypeDiscreteGPU,
		APIVersion: common.Vulkan1_0,
		QueueFamilies: []native.QueueFamilyProperties{
			{QueueFlags: uint32(core1_0.QueueGraphics | core1_0.QueueCompute), QueueCount: 2},
			{QueueFlags: uint32(core1_0.QueueCompute), QueueCount: 1},
		},
		MemoryTypes: []native.MemoryType{
			{PropertyFlags: uint32(core1_0.MemoryPropertyDeviceLocal), HeapIndex: 0},
			{PropertyFlags: uint32(core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent), HeapIndex: 1},
		},
		MemoryHeaps: []native.MemoryHeap{
			{Size: 8 * 1024 * 1024 * 1024, Flags: uint32(core1_0.MemoryHeapDeviceLocal)},
			{Size: 16 * 1024 * 1024 * 1024},
		},
		Extensions: []string{"VK_KHR_swapchain"},
	}
}

// expectAdapter sets up the calls made while PhysicalDevices builds its descriptors
func expectAdapter(driver *mocks.MockDriver, handle native.PhysicalDevice, setup AdapterSetup) {
	driver.EXPECT().GetPhysicalDeviceProperties(handle, gomock.Any()).Do(
		func(_ native.PhysicalDevice, properties *native.PhysicalDeviceProperties) {
			copy(properties.DeviceName[:], setup.Name)
			properties.DeviceType = uint32(setup.Type)
			properties.APIVersion = uint32(setup.APIVersion)
			properties.VendorID = 0x10de
			properties.DeviceID = 0x2204
		})

	driver.EXPECT().GetPhysicalDeviceQueueFamilyProperties(handle).Return(setup.QueueFamilies)

	driver.EXPECT().GetPhysicalDeviceMemoryProperties(handle, gomock.Any()).Do(
		func(_ native.PhysicalDevice, properties *native.PhysicalDeviceMemoryProperties) {
			properties.MemoryTypeCount = uint32(len(setup.MemoryTypes))
			copy(properties.MemoryTypes[:], setup.MemoryTypes)
			properties.MemoryHeapCount = uint32(len(setup.MemoryHeaps))
			copy(properties.MemoryHeaps[:], setup.MemoryHeaps)
		})

	driver.EXPECT().EnumerateDeviceExtensionProperties(handle).
		Return(extensionProperties(setup.Extensions...), core1_0.VKSuccess).AnyTimes()
}

// createTestInstance returns an instance created against driver. The native instance is
// expected to be destroyed once.
func createTestInstance(t *testing.T, driver *mocks.MockDriver, options InstanceOptions) *Instance {
	driver.EXPECT().EnumerateInstanceExtensionProperties().Return(extensionProperties(), core1_0.VKSuccess)
	driver.EXPECT().CreateInstance(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *native.InstanceCreateInfo, instance *native.Instance) common.VkResult {
			*instance = testInstanceHandle
			return core1_0.VKSuccess
		})

	instance, err := NewInstance(testLogger(), driver, options)
	if err != nil {
		t.Fatal(err)
	}
	return instance
}

// createTestPhysicalDevice returns the single adapter of a fresh test instance
func createTestPhysicalDevice(t *testing.T, driver *mocks.MockDriver, setup AdapterSetup) *PhysicalDevice {
	instance := createTestInstance(t, driver, InstanceOptions{})

	driver.EXPECT().EnumeratePhysicalDevices(testInstanceHandle).
		Return([]native.PhysicalDevice{testPhysicalDeviceHandle}, core1_0.VKSuccess)
	expectAdapter(driver, testPhysicalDeviceHandle, setup)

	physicalDevices, err := instance.PhysicalDevices()
	if err != nil {
		t.Fatal(err)
	}
	return physicalDevices[0]
}
