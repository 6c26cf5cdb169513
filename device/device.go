package device

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/extensions/v2/khr_portability_subset"
	"github.com/vkngwrapper/vke/caps"
	"github.com/vkngwrapper/vke/native"
	"github.com/vkngwrapper/vke/queues"
	"golang.org/x/exp/slog"
)

// State is the lifecycle state of a Device
type State int32

const (
	StateUninitialized State = iota
	StateActive
	StateDisposed
)

var stateMapping = make(map[State]string)

func (s State) String() string {
	return stateMapping[s]
}

func init() {
	stateMapping[StateUninitialized] = "StateUninitialized"
	stateMapping[StateActive] = "StateActive"
	stateMapping[StateDisposed] = "StateDisposed"
}

// Device is a logical device under construction or in use. Queues are requested while it is
// uninitialized, Activate creates the native device and binds the queues, and Destroy tears
// everything down again.
//
// A Device is not safe for concurrent use.
type Device struct {
	logger         *slog.Logger
	physicalDevice *PhysicalDevice
	options        DeviceOptions

	state  State
	queues []*Queue
	owner  *owner[native.Device]

	extensions      caps.Negotiation
	resourceManager ResourceManager
}

// NewDevice returns an uninitialized Device for physicalDevice. Nothing native is created
// until Activate.
func NewDevice(logger *slog.Logger, physicalDevice *PhysicalDevice, options DeviceOptions) *Device {
	if logger == nil {
		logger = slog.Default()
	}

	return &Device{
		logger:         logger,
		physicalDevice: physicalDevice,
		options:        options,
		state:          StateUninitialized,
	}
}

func (d *Device) State() State {
	return d.state
}

func (d *Device) PhysicalDevice() *PhysicalDevice {
	return d.physicalDevice
}

func (d *Device) Driver() native.Driver {
	return d.physicalDevice.instance.driver
}

func (d *Device) Logger() *slog.Logger {
	return d.logger
}

// Handle is the native device handle, or 0 if the device is not active
func (d *Device) Handle() native.Device {
	if d.state != StateActive {
		return 0
	}
	return d.owner.handle
}

// Queues lists the queues in the order they were requested
func (d *Device) Queues() []*Queue {
	return d.queues
}

// Extensions is the outcome of negotiating the device extensions during Activate
func (d *Device) Extensions() caps.Negotiation {
	return d.extensions
}

// EnabledExtensions lists the device extensions that were enabled, in request order
func (d *Device) EnabledExtensions() []string {
	return d.extensions.Enabled
}

// ResourceManager is the subsystem built by DeviceOptions.ResourceManager, or nil
func (d *Device) ResourceManager() ResourceManager {
	return d.resourceManager
}

func (d *Device) checkState(expected State) error {
	if d.state == expected {
		return nil
	}
	if d.state == StateDisposed {
		return errors.Wrap(ErrDisposed, "device")
	}
	return errors.Wrapf(ErrInvalidState, "device is %s, expected %s", d.state, expected)
}

// RequestQueue asks for a queue from family. It may only be called before Activate; the
// returned Queue is bound to a native queue once Activate succeeds.
func (d *Device) RequestQueue(family int, priority float32) (*Queue, error) {
	if err := d.checkState(StateUninitialized); err != nil {
		return nil, err
	}

	queue := &Queue{
		familyIndex:   family,
		priority:      priority,
		indexInFamily: -1,
	}
	d.queues = append(d.queues, queue)
	return queue, nil
}

// Activate creates the native device. Requested extensions the physical device does not
// support are logged and left out; the portability subset extension is always enabled when
// the physical device offers it. Every requested Queue is bound before Activate returns.
//
// If the native create call fails, the returned error is marked with
// ErrInitializationFailure and the Device stays uninitialized. If the resource manager
// cannot be built, the native device is destroyed again and the Device is disposed.
func (d *Device) Activate(options ActivateOptions) error {
	d.logger.Debug("Device::Activate")

	if err := d.checkState(StateUninitialized); err != nil {
		return err
	}

	instance := d.physicalDevice.instance
	if instance.owner.isDisposed() {
		return errors.Wrap(ErrDisposed, "instance")
	}

	supported, err := d.physicalDevice.SupportedExtensions()
	if err != nil {
		return initializationFailure(err, "failed to list device extensions")
	}

	requested := append([]string(nil), options.Extensions...)
	if supported.Has(khr_portability_subset.ExtensionName) {
		requested = append(requested, khr_portability_subset.ExtensionName)
	}
	negotiation := caps.Negotiate(d.logger, "device extension", requested, supported)

	requests := make([]queues.Request, 0, len(d.queues))
	for _, queue := range d.queues {
		requests = append(requests, queues.Request{FamilyIndex: queue.familyIndex, Priority: queue.priority})
	}
	plan := queues.Build(requests, d.physicalDevice.MaxQueueCount)

	layers := instance.enabledLayers
	driver := instance.driver

	var handle native.Device
	err = native.WithArena(func(arena *native.Arena) error {
		queueInfos := make([]native.DeviceQueueCreateInfo, 0, len(plan.Families))
		for _, family := range plan.Families {
			queueInfos = append(queueInfos, native.DeviceQueueCreateInfo{
				SType:            native.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: uint32(family.FamilyIndex),
				QueueCount:       uint32(family.QueueCount),
				PQueuePriorities: native.PinSlice(arena, family.Priorities),
			})
		}

		createInfo := &native.DeviceCreateInfo{
			SType:                   native.StructureTypeDeviceCreateInfo,
			QueueCreateInfoCount:    uint32(len(queueInfos)),
			PQueueCreateInfos:       native.PinSlice(arena, queueInfos),
			EnabledLayerCount:       uint32(len(layers)),
			PpEnabledLayerNames:     arena.CStringArray(layers),
			EnabledExtensionCount:   uint32(len(negotiation.Enabled)),
			PpEnabledExtensionNames: arena.CStringArray(negotiation.Enabled),
		}

		if options.Features != nil {
			features := *options.Features
			arena.Pin(&features)
			createInfo.PEnabledFeatures = &features
		}
		arena.Pin(createInfo)

		res := driver.CreateDevice(d.physicalDevice.handle, createInfo, &handle)
		runtime.KeepAlive(instance.owner)

		return native.Check(res, "vkCreateDevice")
	})
	if err != nil {
		return initializationFailure(err, "failed to create device")
	}

	logger := d.logger
	d.owner = newOwner(handle, func(handle native.Device) {
		driver.DestroyDevice(handle)
		logger.Info("destroyed native device")
	}, instance.owner)
	d.extensions = negotiation
	d.state = StateActive

	d.bindQueues(plan)

	logger.Info("created native device",
		slog.String("physicalDevice", d.physicalDevice.name),
		slog.Any("extensions", negotiation.Enabled),
		slog.Int("queueFamilies", len(plan.Families)))

	if d.options.ResourceManager != nil {
		resourceManager, err := d.options.ResourceManager(d)
		if err != nil {
			d.unbindQueues()
			d.owner.dispose()
			d.state = StateDisposed
			return errors.Wrap(err, "failed to create resource manager")
		}
		d.resourceManager = resourceManager
	}

	return nil
}

func (d *Device) bindQueues(plan queues.Plan) {
	driver := d.Driver()
	handles := swiss.NewMap[queues.Assignment, native.Queue](uint32(len(plan.Assignments) + 1))

	for requestIndex, assignment := range plan.Assignments {
		handle, ok := handles.Get(assignment)
		if !ok {
			handle = driver.GetDeviceQueue(d.owner.handle, uint32(assignment.FamilyIndex), uint32(assignment.IndexInFamily))
			handles.Put(assignment, handle)
		}

		queue := d.queues[requestIndex]
		queue.indexInFamily = assignment.IndexInFamily
		queue.handle = handle
	}
	runtime.KeepAlive(d.owner)
}

func (d *Device) unbindQueues() {
	for _, queue := range d.queues {
		queue.unbind()
	}
}

// WaitIdle blocks until every queue of the device is idle
func (d *Device) WaitIdle() error {
	if err := d.checkState(StateActive); err != nil {
		return err
	}

	res := d.Driver().DeviceWaitIdle(d.owner.handle)
	runtime.KeepAlive(d.owner)

	return native.Check(res, "vkDeviceWaitIdle")
}

// WaitForFences waits on fences until all of them (or, if waitAll is false, any of them)
// are signaled or timeout nanoseconds have passed. Running out of time is reported through
// timedOut, not as an error.
func (d *Device) WaitForFences(fences []native.Fence, waitAll bool, timeout uint64) (timedOut bool, err error) {
	if err := d.checkState(StateActive); err != nil {
		return false, err
	}

	res := d.Driver().WaitForFences(d.owner.handle, fences, waitAll, timeout)
	runtime.KeepAlive(d.owner)

	if res == native.ResultTimeout {
		return true, nil
	}

	return false, native.Check(res, "vkWaitForFences")
}

// Destroy tears the Device down: the resource manager first, then the native device. The
// native device is destroyed even if the resource manager reports an error, which is
// returned. Calling Destroy on an uninitialized Device only disposes it; calling it more
// than once does nothing.
func (d *Device) Destroy() error {
	d.logger.Debug("Device::Destroy")

	if d.state == StateDisposed {
		return nil
	}

	var err error
	if d.resourceManager != nil {
		err = d.resourceManager.Destroy()
		if err != nil {
			err = errors.Wrap(err, "failed to destroy resource manager")
		}
		d.resourceManager = nil
	}

	d.unbindQueues()
	if d.owner != nil {
		d.owner.dispose()
	}

	d.state = StateDisposed
	return err
}
