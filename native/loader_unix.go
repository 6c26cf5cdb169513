//go:build linux || freebsd

package native

const defaultLibraryName = "libvulkan.so.1"
