//go:build darwin || linux || freebsd

package native

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/purego"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Library is the Driver backed by the system Vulkan loader, resolved at runtime with purego
type Library struct {
	handle uintptr

	vkCreateInstance                         func(createInfo *InstanceCreateInfo, allocator unsafe.Pointer, instance *Instance) int32
	vkDestroyInstance                        func(instance Instance, allocator unsafe.Pointer)
	vkEnumerateInstanceExtensionProperties   func(layerName unsafe.Pointer, count *uint32, properties *ExtensionProperties) int32
	vkEnumeratePhysicalDevices               func(instance Instance, count *uint32, physicalDevices *PhysicalDevice) int32
	vkGetPhysicalDeviceProperties            func(physicalDevice PhysicalDevice, properties *PhysicalDeviceProperties)
	vkGetPhysicalDeviceQueueFamilyProperties func(physicalDevice PhysicalDevice, count *uint32, properties *QueueFamilyProperties)
	vkGetPhysicalDeviceMemoryProperties      func(physicalDevice PhysicalDevice, properties *PhysicalDeviceMemoryProperties)
	vkEnumerateDeviceExtensionProperties     func(physicalDevice PhysicalDevice, layerName unsafe.Pointer, count *uint32, properties *ExtensionProperties) int32
	vkCreateDevice                           func(physicalDevice PhysicalDevice, createInfo *DeviceCreateInfo, allocator unsafe.Pointer, device *Device) int32
	vkDestroyDevice                          func(device Device, allocator unsafe.Pointer)
	vkGetDeviceQueue                         func(device Device, queueFamilyIndex, queueIndex uint32, queue *Queue)
	vkDeviceWaitIdle                         func(device Device) int32
	vkWaitForFences                          func(device Device, fenceCount uint32, fences *Fence, waitAll Bool32, timeout uint64) int32
	vkAllocateMemory                         func(device Device, allocateInfo *MemoryAllocateInfo, allocator unsafe.Pointer, memory *DeviceMemory) int32
	vkFreeMemory                             func(device Device, memory DeviceMemory, allocator unsafe.Pointer)
}

var _ Driver = &Library{}

// Load opens the Vulkan loader at libraryPath, or the platform's default loader when
// libraryPath is empty, and resolves every entry point Driver needs.
func Load(libraryPath string) (lib *Library, err error) {
	if libraryPath == "" {
		libraryPath = defaultLibraryName
	}

	handle, err := purego.Dlopen(libraryPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open vulkan loader %s", libraryPath)
	}

	// RegisterLibFunc panics on a missing symbol
	defer func() {
		if r := recover(); r != nil {
			_ = purego.Dlclose(handle)
			lib = nil
			err = errors.Newf("vulkan loader %s is missing an entry point: %v", libraryPath, r)
		}
	}()

	lib = &Library{handle: handle}
	purego.RegisterLibFunc(&lib.vkCreateInstance, handle, "vkCreateInstance")
	purego.RegisterLibFunc(&lib.vkDestroyInstance, handle, "vkDestroyInstance")
	purego.RegisterLibFunc(&lib.vkEnumerateInstanceExtensionProperties, handle, "vkEnumerateInstanceExtensionProperties")
	purego.RegisterLibFunc(&lib.vkEnumeratePhysicalDevices, handle, "vkEnumeratePhysicalDevices")
	purego.RegisterLibFunc(&lib.vkGetPhysicalDeviceProperties, handle, "vkGetPhysicalDeviceProperties")
	purego.RegisterLibFunc(&lib.vkGetPhysicalDeviceQueueFamilyProperties, handle, "vkGetPhysicalDeviceQueueFamilyProperties")
	purego.RegisterLibFunc(&lib.vkGetPhysicalDeviceMemoryProperties, handle, "vkGetPhysicalDeviceMemoryProperties")
	purego.RegisterLibFunc(&lib.vkEnumerateDeviceExtensionProperties, handle, "vkEnumerateDeviceExtensionProperties")
	purego.RegisterLibFunc(&lib.vkCreateDevice, handle, "vkCreateDevice")
	purego.RegisterLibFunc(&lib.vkDestroyDevice, handle, "vkDestroyDevice")
	purego.RegisterLibFunc(&lib.vkGetDeviceQueue, handle, "vkGetDeviceQueue")
	purego.RegisterLibFunc(&lib.vkDeviceWaitIdle, handle, "vkDeviceWaitIdle")
	purego.RegisterLibFunc(&lib.vkWaitForFences, handle, "vkWaitForFences")
	purego.RegisterLibFunc(&lib.vkAllocateMemory, handle, "vkAllocateMemory")
	purego.RegisterLibFunc(&lib.vkFreeMemory, handle, "vkFreeMemory")

	return lib, nil
}

// Close unloads the Vulkan loader. Every object created through the library must have
// been destroyed first.
func (l *Library) Close() error {
	return purego.Dlclose(l.handle)
}

func enumerate[T any](call func(count *uint32, out *T) int32) ([]T, common.VkResult) {
	for {
		var count uint32
		res := common.VkResult(call(&count, nil))
		if res != core1_0.VKSuccess || count == 0 {
			return nil, res
		}

		out := make([]T, count)
		res = common.VkResult(call(&count, &out[0]))
		if res == ResultIncomplete {
			// The list grew between the two calls
			continue
		}
		if res != core1_0.VKSuccess {
			return nil, res
		}

		return out[:count], res
	}
}

func (l *Library) CreateInstance(createInfo *InstanceCreateInfo, instance *Instance) common.VkResult {
	return common.VkResult(l.vkCreateInstance(createInfo, nil, instance))
}

func (l *Library) DestroyInstance(instance Instance) {
	l.vkDestroyInstance(instance, nil)
}

func (l *Library) EnumerateInstanceExtensionProperties() ([]ExtensionProperties, common.VkResult) {
	return enumerate(func(count *uint32, out *ExtensionProperties) int32 {
		return l.vkEnumerateInstanceExtensionProperties(nil, count, out)
	})
}

func (l *Library) EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, common.VkResult) {
	return enumerate(func(count *uint32, out *PhysicalDevice) int32 {
		return l.vkEnumeratePhysicalDevices(instance, count, out)
	})
}

func (l *Library) GetPhysicalDeviceProperties(physicalDevice PhysicalDevice, properties *PhysicalDeviceProperties) {
	l.vkGetPhysicalDeviceProperties(physicalDevice, properties)
}

func (l *Library) GetPhysicalDeviceQueueFamilyProperties(physicalDevice PhysicalDevice) []QueueFamilyProperties {
	var count uint32
	l.vkGetPhysicalDeviceQueueFamilyProperties(physicalDevice, &count, nil)
	if count == 0 {
		return nil
	}

	out := make([]QueueFamilyProperties, count)
	l.vkGetPhysicalDeviceQueueFamilyProperties(physicalDevice, &count, &out[0])
	return out[:count]
}

func (l *Library) GetPhysicalDeviceMemoryProperties(physicalDevice PhysicalDevice, properties *PhysicalDeviceMemoryProperties) {
	l.vkGetPhysicalDeviceMemoryProperties(physicalDevice, properties)
}

func (l *Library) EnumerateDeviceExtensionProperties(physicalDevice PhysicalDevice) ([]ExtensionProperties, common.VkResult) {
	return enumerate(func(count *uint32, out *ExtensionProperties) int32 {
		return l.vkEnumerateDeviceExtensionProperties(physicalDevice, nil, count, out)
	})
}

func (l *Library) CreateDevice(physicalDevice PhysicalDevice, createInfo *DeviceCreateInfo, device *Device) common.VkResult {
	return common.VkResult(l.vkCreateDevice(physicalDevice, createInfo, nil, device))
}

func (l *Library) DestroyDevice(device Device) {
	l.vkDestroyDevice(device, nil)
}

func (l *Library) GetDeviceQueue(device Device, queueFamilyIndex, queueIndex uint32) Queue {
	var queue Queue
	l.vkGetDeviceQueue(device, queueFamilyIndex, queueIndex, &queue)
	return queue
}

func (l *Library) DeviceWaitIdle(device Device) common.VkResult {
	return common.VkResult(l.vkDeviceWaitIdle(device))
}

func (l *Library) WaitForFences(device Device, fences []Fence, waitAll bool, timeout uint64) common.VkResult {
	if len(fences) == 0 {
		return core1_0.VKSuccess
	}

	waitAllFlag := False
	if waitAll {
		waitAllFlag = True
	}
	return common.VkResult(l.vkWaitForFences(device, uint32(len(fences)), &fences[0], waitAllFlag, timeout))
}

func (l *Library) AllocateMemory(device Device, allocateInfo *MemoryAllocateInfo, memory *DeviceMemory) common.VkResult {
	return common.VkResult(l.vkAllocateMemory(device, allocateInfo, nil, memory))
}

func (l *Library) FreeMemory(device Device, memory DeviceMemory) {
	l.vkFreeMemory(device, memory, nil)
}
