package device

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/vke/native"
)

// InstanceCreateFlags switch optional instance behavior on
type InstanceCreateFlags int32

var instanceCreateFlagsMapping = common.NewFlagStringMapping[InstanceCreateFlags]()

func (f InstanceCreateFlags) Register(str string) {
	instanceCreateFlagsMapping.Register(f, str)
}
func (f InstanceCreateFlags) String() string {
	return instanceCreateFlagsMapping.FlagsToString(f)
}

const (
	// InstanceCreateValidationLayer enables the Khronos validation layer and asks for the
	// debug utils extension. The layer must be installed.
	InstanceCreateValidationLayer InstanceCreateFlags = 1 << iota
	// InstanceCreateCaptureLayer enables the RenderDoc capture layer. The layer must be installed.
	InstanceCreateCaptureLayer
	// InstanceCreateEnumeratePortability asks for portability enumeration so that
	// non-conformant implementations, such as MoltenVK, are listed by PhysicalDevices. It is
	// dropped silently if the loader does not offer the extension.
	InstanceCreateEnumeratePortability
)

func init() {
	InstanceCreateValidationLayer.Register("InstanceCreateValidationLayer")
	InstanceCreateCaptureLayer.Register("InstanceCreateCaptureLayer")
	InstanceCreateEnumeratePortability.Register("InstanceCreateEnumeratePortability")
}

// InstanceOptions contains the settings used to create an Instance
type InstanceOptions struct {
	Flags InstanceCreateFlags

	ApplicationName    string
	ApplicationVersion common.Version
	EngineName         string
	EngineVersion      common.Version
	// APIVersion is the highest API version the application will use. It defaults to
	// common.Vulkan1_0.
	APIVersion common.APIVersion

	// Extensions are the instance extensions to enable if the loader supports them. Any
	// that are not supported are logged and left out.
	Extensions []string
}

// ResourceManager is an optional subsystem owned by a Device. It is created right after the
// Device is activated and destroyed right before the native device is.
type ResourceManager interface {
	Destroy() error
}

// ResourceManagerFactory builds the ResourceManager for a freshly activated Device
type ResourceManagerFactory func(device *Device) (ResourceManager, error)

// DeviceOptions contains the settings used to construct a Device
type DeviceOptions struct {
	// ResourceManager, if set, is called once the Device is active. A failure destroys the
	// Device and fails Activate.
	ResourceManager ResourceManagerFactory
}

// ActivateOptions contains the settings for the native device create call
type ActivateOptions struct {
	// Features is the set of core features to enable. A nil value enables none.
	Features *native.PhysicalDeviceFeatures
	// Extensions are the device extensions to enable if the physical device supports them.
	// Any that are not supported are logged and left out.
	Extensions []string
}
