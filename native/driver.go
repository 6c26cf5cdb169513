// Package native is the boundary between this module and the Vulkan loader: the C ABI
// structures, the Driver interface over the handful of entry points device bring-up needs,
// and the Arena that keeps every argument of a native call pinned until it returns.
package native

import (
	"github.com/vkngwrapper/core/v2/common"
)

//go:generate mockgen -source driver.go -destination ./mocks/driver.go -package mocks

// Driver is the set of native entry points used during bring-up and teardown. Create
// calls take fully marshaled ABI structures; enumerations hand back Go slices because
// their two-call protocol has nothing worth pinning.
type Driver interface {
	CreateInstance(createInfo *InstanceCreateInfo, instance *Instance) common.VkResult
	DestroyInstance(instance Instance)
	EnumerateInstanceExtensionProperties() ([]ExtensionProperties, common.VkResult)
	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, common.VkResult)

	GetPhysicalDeviceProperties(physicalDevice PhysicalDevice, properties *PhysicalDeviceProperties)
	GetPhysicalDeviceQueueFamilyProperties(physicalDevice PhysicalDevice) []QueueFamilyProperties
	GetPhysicalDeviceMemoryProperties(physicalDevice PhysicalDevice, properties *PhysicalDeviceMemoryProperties)
	EnumerateDeviceExtensionProperties(physicalDevice PhysicalDevice) ([]ExtensionProperties, common.VkResult)

	CreateDevice(physicalDevice PhysicalDevice, createInfo *DeviceCreateInfo, device *Device) common.VkResult
	DestroyDevice(device Device)
	GetDeviceQueue(device Device, queueFamilyIndex, queueIndex uint32) Queue
	DeviceWaitIdle(device Device) common.VkResult
	WaitForFences(device Device, fences []Fence, waitAll bool, timeout uint64) common.VkResult

	AllocateMemory(device Device, allocateInfo *MemoryAllocateInfo, memory *DeviceMemory) common.VkResult
	FreeMemory(device Device, memory DeviceMemory)
}
