package native

const defaultLibraryName = "libvulkan.1.dylib"
