// Package device brings a Vulkan instance and logical device up and tears them down again.
//
// Every native handle is owned by exactly one Instance or Device and destroyed exactly once.
// Calling Destroy is the normal way to release them; an Instance or Device that is dropped
// without being destroyed has its native handle released by the garbage collector instead.
// In that case only the native handle is released: a Device's ResourceManager is never
// touched from a finalizer.
package device

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v2/khr_portability_enumeration"
	"github.com/vkngwrapper/vke/caps"
	"github.com/vkngwrapper/vke/native"
	"golang.org/x/exp/slog"
)

// Instance owns a native instance handle. It is active as soon as NewInstance returns.
type Instance struct {
	logger *slog.Logger
	driver native.Driver
	owner  *owner[native.Instance]

	apiVersion    common.APIVersion
	extensions    caps.Negotiation
	enabledLayers []string
}

// NewInstance negotiates the requested extensions against what the loader offers and
// creates the native instance. Unsupported extensions are logged and left out. If the
// native create call fails, the returned error is marked with ErrInitializationFailure.
func NewInstance(logger *slog.Logger, driver native.Driver, options InstanceOptions) (*Instance, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Instance::New", slog.String("flags", options.Flags.String()))

	if options.APIVersion == 0 {
		options.APIVersion = common.Vulkan1_0
	}

	properties, res := driver.EnumerateInstanceExtensionProperties()
	if err := native.Check(res, "vkEnumerateInstanceExtensionProperties"); err != nil {
		return nil, initializationFailure(err, "failed to list instance extensions")
	}

	supported := caps.NewNameSet()
	for i := range properties {
		supported.Add(properties[i].Name())
	}

	requested := append([]string(nil), options.Extensions...)
	if options.Flags&InstanceCreateValidationLayer != 0 {
		requested = append(requested, ext_debug_utils.ExtensionName)
	}
	if options.Flags&InstanceCreateEnumeratePortability != 0 {
		requested = append(requested, khr_portability_enumeration.ExtensionName)
	}

	negotiation := caps.Negotiate(logger, "instance extension", requested, supported)
	layers := caps.EnabledLayers(caps.LayerOptions{
		Validation: options.Flags&InstanceCreateValidationLayer != 0,
		Capture:    options.Flags&InstanceCreateCaptureLayer != 0,
	})

	var createFlags uint32
	if status, _ := negotiation.Status(khr_portability_enumeration.ExtensionName); status.Supported {
		createFlags |= uint32(khr_portability_enumeration.InstanceCreateEnumeratePortability)
	}

	var handle native.Instance
	err := native.WithArena(func(arena *native.Arena) error {
		appInfo := &native.ApplicationInfo{
			SType:              native.StructureTypeApplicationInfo,
			ApplicationVersion: uint32(options.ApplicationVersion),
			EngineVersion:      uint32(options.EngineVersion),
			APIVersion:         uint32(options.APIVersion),
		}
		if options.ApplicationName != "" {
			appInfo.PApplicationName = arena.CString(options.ApplicationName)
		}
		if options.EngineName != "" {
			appInfo.PEngineName = arena.CString(options.EngineName)
		}
		arena.Pin(appInfo)

		createInfo := &native.InstanceCreateInfo{
			SType:                   native.StructureTypeInstanceCreateInfo,
			Flags:                   createFlags,
			PApplicationInfo:        appInfo,
			EnabledLayerCount:       uint32(len(layers)),
			PpEnabledLayerNames:     arena.CStringArray(layers),
			EnabledExtensionCount:   uint32(len(negotiation.Enabled)),
			PpEnabledExtensionNames: arena.CStringArray(negotiation.Enabled),
		}
		arena.Pin(createInfo)

		return native.Check(driver.CreateInstance(createInfo, &handle), "vkCreateInstance")
	})
	if err != nil {
		return nil, initializationFailure(err, "failed to create instance")
	}

	logger.Info("created native instance",
		slog.Any("extensions", negotiation.Enabled),
		slog.Any("layers", layers))

	instance := &Instance{
		logger:        logger,
		driver:        driver,
		apiVersion:    options.APIVersion,
		extensions:    negotiation,
		enabledLayers: layers,
	}
	instance.owner = newOwner(handle, func(handle native.Instance) {
		driver.DestroyInstance(handle)
		logger.Info("destroyed native instance")
	}, nil)

	return instance, nil
}

// Handle is the native instance handle, or 0 once Destroy has been called
func (i *Instance) Handle() native.Instance {
	if i.owner.isDisposed() {
		return 0
	}
	return i.owner.handle
}

func (i *Instance) Driver() native.Driver {
	return i.driver
}

func (i *Instance) APIVersion() common.APIVersion {
	return i.apiVersion
}

// Extensions is the outcome of negotiating the instance extensions
func (i *Instance) Extensions() caps.Negotiation {
	return i.extensions
}

// EnabledExtensions lists the instance extensions that were enabled, in request order
func (i *Instance) EnabledExtensions() []string {
	return i.extensions.Enabled
}

// EnabledLayers lists the layers the instance was created with. Devices created from this
// instance enable the same layers.
func (i *Instance) EnabledLayers() []string {
	return i.enabledLayers
}

// PhysicalDevices lists the adapters the instance can see. An instance with no adapters
// returns an error marked with ErrUnsupportedResourceState.
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	i.logger.Debug("Instance::PhysicalDevices")

	if i.owner.isDisposed() {
		return nil, errors.Wrap(ErrDisposed, "instance")
	}

	handles, res := i.driver.EnumeratePhysicalDevices(i.owner.handle)
	runtime.KeepAlive(i.owner)
	if err := native.Check(res, "vkEnumeratePhysicalDevices"); err != nil {
		return nil, err
	}

	if len(handles) == 0 {
		return nil, errors.Wrap(ErrUnsupportedResourceState, "instance reports no physical devices")
	}

	physicalDevices := make([]*PhysicalDevice, 0, len(handles))
	for _, handle := range handles {
		physicalDevices = append(physicalDevices, newPhysicalDevice(i, handle))
	}

	return physicalDevices, nil
}

// IsDestroyed reports whether Destroy has been called
func (i *Instance) IsDestroyed() bool {
	return i.owner.isDisposed()
}

// Destroy releases the native instance. If devices created from this instance are still
// alive, the native instance is destroyed when the last of them is. Calling Destroy more
// than once does nothing.
func (i *Instance) Destroy() {
	i.logger.Debug("Instance::Destroy")

	if !i.owner.dispose() {
		return
	}

	if !i.owner.isDestroyed() {
		i.logger.Warn("instance destroyed while devices are alive, deferring native destruction",
			slog.Int("devices", int(i.owner.children.Load())))
	}
}
