package device

import (
	"runtime"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/vke/caps"
	"github.com/vkngwrapper/vke/native"
)

// QueueFamily describes one queue family of a physical device
type QueueFamily struct {
	Index      int
	Flags      core1_0.QueueFlags
	QueueCount int
}

// PhysicalDevice describes one adapter. Properties are read once when the instance
// enumerates its adapters, the supported extensions on first use.
type PhysicalDevice struct {
	instance *Instance
	handle   native.PhysicalDevice

	name          string
	deviceType    core1_0.PhysicalDeviceType
	apiVersion    common.APIVersion
	driverVersion uint32
	vendorID      uint32
	deviceID      uint32

	queueFamilies []QueueFamily
	memoryTypes   []core1_0.MemoryType
	memoryHeaps   []core1_0.MemoryHeap

	extensions *caps.NameSet
}

func newPhysicalDevice(instance *Instance, handle native.PhysicalDevice) *PhysicalDevice {
	driver := instance.driver

	var properties native.PhysicalDeviceProperties
	driver.GetPhysicalDeviceProperties(handle, &properties)

	physicalDevice := &PhysicalDevice{
		instance:      instance,
		handle:        handle,
		name:          native.GoString(properties.DeviceName[:]),
		deviceType:    core1_0.PhysicalDeviceType(properties.DeviceType),
		apiVersion:    common.APIVersion(properties.APIVersion),
		driverVersion: properties.DriverVersion,
		vendorID:      properties.VendorID,
		deviceID:      properties.DeviceID,
	}

	for index, family := range driver.GetPhysicalDeviceQueueFamilyProperties(handle) {
		physicalDevice.queueFamilies = append(physicalDevice.queueFamilies, QueueFamily{
			Index:      index,
			Flags:      core1_0.QueueFlags(family.QueueFlags),
			QueueCount: int(family.QueueCount),
		})
	}

	var memoryProperties native.PhysicalDeviceMemoryProperties
	driver.GetPhysicalDeviceMemoryProperties(handle, &memoryProperties)

	typeCount := min(int(memoryProperties.MemoryTypeCount), native.MaxMemoryTypes)
	for _, memoryType := range memoryProperties.MemoryTypes[:typeCount] {
		physicalDevice.memoryTypes = append(physicalDevice.memoryTypes, core1_0.MemoryType{
			PropertyFlags: core1_0.MemoryPropertyFlags(memoryType.PropertyFlags),
			HeapIndex:     int(memoryType.HeapIndex),
		})
	}

	heapCount := min(int(memoryProperties.MemoryHeapCount), native.MaxMemoryHeaps)
	for _, memoryHeap := range memoryProperties.MemoryHeaps[:heapCount] {
		heap := core1_0.MemoryHeap{Size: int(memoryHeap.Size)}
		if memoryHeap.Flags&uint32(core1_0.MemoryHeapDeviceLocal) != 0 {
			heap.Flags |= core1_0.MemoryHeapDeviceLocal
		}
		physicalDevice.memoryHeaps = append(physicalDevice.memoryHeaps, heap)
	}
	runtime.KeepAlive(instance.owner)

	return physicalDevice
}

func (p *PhysicalDevice) Handle() native.PhysicalDevice {
	return p.handle
}

func (p *PhysicalDevice) Instance() *Instance {
	return p.instance
}

func (p *PhysicalDevice) Name() string {
	return p.name
}

func (p *PhysicalDevice) Type() core1_0.PhysicalDeviceType {
	return p.deviceType
}

func (p *PhysicalDevice) APIVersion() common.APIVersion {
	return p.apiVersion
}

func (p *PhysicalDevice) DriverVersion() uint32 {
	return p.driverVersion
}

func (p *PhysicalDevice) VendorID() uint32 {
	return p.vendorID
}

func (p *PhysicalDevice) DeviceID() uint32 {
	return p.deviceID
}

// QueueFamilies lists the queue families in family index order
func (p *PhysicalDevice) QueueFamilies() []QueueFamily {
	return p.queueFamilies
}

// MaxQueueCount is the number of queues family exposes, or 0 if there is no such family
func (p *PhysicalDevice) MaxQueueCount(family int) int {
	if family < 0 || family >= len(p.queueFamilies) {
		return 0
	}
	return p.queueFamilies[family].QueueCount
}

// FindQueueFamily returns the lowest family index that supports every flag in flags, or -1
func (p *PhysicalDevice) FindQueueFamily(flags core1_0.QueueFlags) int {
	for _, family := range p.queueFamilies {
		if family.QueueCount > 0 && family.Flags&flags == flags {
			return family.Index
		}
	}
	return -1
}

func (p *PhysicalDevice) MemoryTypes() []core1_0.MemoryType {
	return p.memoryTypes
}

func (p *PhysicalDevice) MemoryHeaps() []core1_0.MemoryHeap {
	return p.memoryHeaps
}

// SupportedExtensions lists the device extensions the adapter offers. The result is cached
// after the first successful call.
func (p *PhysicalDevice) SupportedExtensions() (*caps.NameSet, error) {
	if p.extensions != nil {
		return p.extensions, nil
	}

	properties, res := p.instance.driver.EnumerateDeviceExtensionProperties(p.handle)
	runtime.KeepAlive(p.instance.owner)
	if err := native.Check(res, "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}

	extensions := caps.NewNameSet()
	for i := range properties {
		extensions.Add(properties[i].Name())
	}

	p.extensions = extensions
	return extensions, nil
}
