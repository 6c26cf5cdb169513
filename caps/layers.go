package caps

const (
	ValidationLayerName = "VK_LAYER_KHRONOS_validation"
	CaptureLayerName    = "VK_LAYER_RENDERDOC_Capture"
)

// LayerOptions switches the fixed set of optional layers on or off.
//
// Layers are not checked against what the loader can find. Only enable a layer that is
// installed in the environment the program runs in: the create call fails otherwise.
type LayerOptions struct {
	Validation bool
	Capture    bool
}

// EnabledLayers lists the layers switched on in options, validation first
func EnabledLayers(options LayerOptions) []string {
	var layers []string
	if options.Validation {
		layers = append(layers, ValidationLayerName)
	}
	if options.Capture {
		layers = append(layers, CaptureLayerName)
	}
	return layers
}
