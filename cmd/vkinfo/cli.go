package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/vke/device"
	"github.com/vkngwrapper/vke/native"
	"github.com/vkngwrapper/vke/resource"
	"golang.org/x/exp/slog"
)

// loaderFunc opens a native driver and returns the func that closes it again
type loaderFunc func(libraryPath string) (native.Driver, func() error, error)

type globalOptions struct {
	library     string
	validation  bool
	capture     bool
	portability bool
	logLevel    string
	extensions  []string
}

func newCLI(load loaderFunc) *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:           "vkinfo",
		Short:         "Inspect Vulkan adapters and bring up a logical device",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.library, "library", "", "Path to the Vulkan loader (default: the system loader)")
	flags.BoolVar(&opts.validation, "validation", false, "Enable the Khronos validation layer")
	flags.BoolVar(&opts.capture, "capture", false, "Enable the RenderDoc capture layer")
	flags.BoolVar(&opts.portability, "portability", false, "List portability (non-conformant) implementations")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringSliceVar(&opts.extensions, "instance-extension", nil, "Instance extension to enable if available (repeatable)")

	rootCmd.AddCommand(newDevicesCmd(load, &opts), newActivateCmd(load, &opts))
	return rootCmd
}

func (o *globalOptions) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, errors.Wrapf(err, "invalid --log-level %q", o.logLevel)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func (o *globalOptions) instanceOptions() device.InstanceOptions {
	var flags device.InstanceCreateFlags
	if o.validation {
		flags |= device.InstanceCreateValidationLayer
	}
	if o.capture {
		flags |= device.InstanceCreateCaptureLayer
	}
	if o.portability {
		flags |= device.InstanceCreateEnumeratePortability
	}

	return device.InstanceOptions{
		Flags:              flags,
		ApplicationName:    "vkinfo",
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "vke",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_0,
		Extensions:         o.extensions,
	}
}

// withInstance loads the driver, creates an instance, and tears both down after run
func (o *globalOptions) withInstance(cmd *cobra.Command, load loaderFunc, run func(logger *slog.Logger, instance *device.Instance) error) (err error) {
	logger, err := o.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	driver, closeDriver, err := load(o.library)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeDriver(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	instance, err := device.NewInstance(logger, driver, o.instanceOptions())
	if err != nil {
		return err
	}
	defer instance.Destroy()

	return run(logger, instance)
}

func newDevicesCmd(load loaderFunc, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List physical devices as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withInstance(cmd, load, func(_ *slog.Logger, instance *device.Instance) error {
				physicalDevices, err := instance.PhysicalDevices()
				if err != nil {
					return err
				}

				writer := jwriter.NewWriter()
				arr := writer.Array()
				for index, physicalDevice := range physicalDevices {
					obj := arr.Object()
					obj.Name("Index").Int(index)
					printPhysicalDevice(&obj, physicalDevice)
					obj.End()
				}
				arr.End()

				return writeJSON(cmd.OutOrStdout(), &writer)
			})
		},
	}
}

type activateOptions struct {
	deviceIndex int
	queues      []string
	extensions  []string
	allocate    int
	alignment   int
}

func newActivateCmd(load loaderFunc, opts *globalOptions) *cobra.Command {
	var activateOpts activateOptions

	activateCmd := &cobra.Command{
		Use:   "activate",
		Short: "Create a logical device with the requested queues and report the outcome as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withInstance(cmd, load, func(logger *slog.Logger, instance *device.Instance) error {
				return runActivate(cmd.OutOrStdout(), logger, instance, activateOpts)
			})
		},
	}

	activateCmd.Flags().IntVar(&activateOpts.deviceIndex, "device", 0, "Index of the physical device to activate")
	activateCmd.Flags().StringSliceVar(&activateOpts.queues, "queue", []string{"graphics:1.0"},
		"Queue request as FAMILY:PRIORITY, where FAMILY is an index, graphics, compute or transfer (repeatable)")
	activateCmd.Flags().StringSliceVar(&activateOpts.extensions, "device-extension", nil, "Device extension to enable if available (repeatable)")
	activateCmd.Flags().IntVar(&activateOpts.allocate, "allocate", 0, "Allocate this many bytes, preferring device-local memory, and report memory statistics")
	activateCmd.Flags().IntVar(&activateOpts.alignment, "alignment", 0, "Round the --allocate size up to this power of two")

	return activateCmd
}

func runActivate(w io.Writer, logger *slog.Logger, instance *device.Instance, opts activateOptions) error {
	physicalDevices, err := instance.PhysicalDevices()
	if err != nil {
		return err
	}

	if opts.deviceIndex < 0 || opts.deviceIndex >= len(physicalDevices) {
		return errors.Newf("--device %d is out of range, %d physical devices are available", opts.deviceIndex, len(physicalDevices))
	}
	physicalDevice := physicalDevices[opts.deviceIndex]

	var deviceOptions device.DeviceOptions
	if opts.allocate > 0 {
		deviceOptions.ResourceManager = resource.Factory(logger, resource.CreateOptions{})
	}

	dev := device.NewDevice(logger, physicalDevice, deviceOptions)
	defer dev.Destroy()

	for _, request := range opts.queues {
		family, priority, err := parseQueueRequest(request, physicalDevice)
		if err != nil {
			return err
		}

		if _, err := dev.RequestQueue(family, priority); err != nil {
			return err
		}
	}

	err = dev.Activate(device.ActivateOptions{Extensions: opts.extensions})
	if err != nil {
		return err
	}

	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("PhysicalDevice").String(physicalDevice.Name())

	negotiation := dev.Extensions()
	printStrings(&obj, "EnabledExtensions", negotiation.Enabled)
	printStrings(&obj, "RejectedExtensions", negotiation.Rejected)

	queueArr := obj.Name("Queues").Array()
	for _, queue := range dev.Queues() {
		queueObj := queueArr.Object()
		queueObj.Name("Family").Int(queue.FamilyIndex())
		queueObj.Name("Index").Int(queue.IndexInFamily())
		queueObj.Name("Priority").Float64(float64(queue.Priority()))
		queueObj.Name("Handle").String(fmt.Sprintf("%#x", uintptr(queue.Handle())))
		queueObj.End()
	}
	queueArr.End()

	if manager, ok := dev.ResourceManager().(*resource.Manager); ok {
		alloc, err := manager.AllocateMemory(opts.allocate, resource.AllocationCreateInfo{
			MemoryTypeBits:    ^uint32(0),
			Alignment:         opts.alignment,
			PreferredFlags:    core1_0.MemoryPropertyDeviceLocal,
			NotPreferredFlags: core1_0.MemoryPropertyHostVisible,
		})
		if err != nil {
			obj.End()
			return err
		}
		alloc.SetName("vkinfo")
		obj.Name("Memory").Raw([]byte(manager.BuildStatsString(true)))
		alloc.Free()
	}

	obj.End()

	if err := writeJSON(w, &writer); err != nil {
		return err
	}

	return dev.Destroy()
}

func parseQueueRequest(request string, physicalDevice *device.PhysicalDevice) (int, float32, error) {
	familyStr, priorityStr, found := strings.Cut(request, ":")
	if !found {
		priorityStr = "1.0"
	}

	priority, err := strconv.ParseFloat(priorityStr, 32)
	if err != nil || priority < 0 || priority > 1 {
		return 0, 0, errors.Newf("invalid priority in queue request %q, expected a number from 0 to 1", request)
	}

	var flags core1_0.QueueFlags
	switch strings.ToLower(familyStr) {
	case "graphics":
		flags = core1_0.QueueGraphics
	case "compute":
		flags = core1_0.QueueCompute
	case "transfer":
		flags = core1_0.QueueTransfer
	default:
		family, err := strconv.Atoi(familyStr)
		if err != nil || family < 0 {
			return 0, 0, errors.Newf("invalid family in queue request %q", request)
		}
		return family, float32(priority), nil
	}

	family := physicalDevice.FindQueueFamily(flags)
	if family < 0 {
		return 0, 0, errors.Wrapf(device.ErrUnsupportedResourceState, "%s has no %s queue family", physicalDevice.Name(), familyStr)
	}
	return family, float32(priority), nil
}

func printPhysicalDevice(obj *jwriter.ObjectState, physicalDevice *device.PhysicalDevice) {
	obj.Name("Name").String(physicalDevice.Name())
	obj.Name("Type").String(physicalDevice.Type().String())
	obj.Name("APIVersion").String(physicalDevice.APIVersion().String())
	obj.Name("VendorID").String(fmt.Sprintf("%#04x", physicalDevice.VendorID()))
	obj.Name("DeviceID").String(fmt.Sprintf("%#04x", physicalDevice.DeviceID()))

	families := obj.Name("QueueFamilies").Array()
	for _, family := range physicalDevice.QueueFamilies() {
		familyObj := families.Object()
		familyObj.Name("Index").Int(family.Index)
		familyObj.Name("Flags").String(family.Flags.String())
		familyObj.Name("QueueCount").Int(family.QueueCount)
		familyObj.End()
	}
	families.End()

	types := obj.Name("MemoryTypes").Array()
	for index, memoryType := range physicalDevice.MemoryTypes() {
		typeObj := types.Object()
		typeObj.Name("Index").Int(index)
		typeObj.Name("Flags").String(memoryType.PropertyFlags.String())
		typeObj.Name("HeapIndex").Int(memoryType.HeapIndex)
		typeObj.End()
	}
	types.End()

	heaps := obj.Name("MemoryHeaps").Array()
	for index, heap := range physicalDevice.MemoryHeaps() {
		heapObj := heaps.Object()
		heapObj.Name("Index").Int(index)
		heapObj.Name("Size").Int(heap.Size)
		heapObj.Name("DeviceLocal").Bool(heap.Flags&core1_0.MemoryHeapDeviceLocal != 0)
		heapObj.End()
	}
	heaps.End()
}

func printStrings(obj *jwriter.ObjectState, name string, values []string) {
	arr := obj.Name(name).Array()
	for _, value := range values {
		arr.String(value)
	}
	arr.End()
}

func writeJSON(w io.Writer, writer *jwriter.Writer) error {
	if err := writer.Error(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, string(writer.Bytes()))
	return err
}
