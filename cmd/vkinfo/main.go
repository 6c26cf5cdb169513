//go:build darwin || linux || freebsd

package main

import (
	"fmt"
	"os"

	"github.com/vkngwrapper/vke/native"
)

func loadLibrary(path string) (native.Driver, func() error, error) {
	lib, err := native.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return lib, lib.Close, nil
}

func main() {
	if err := newCLI(loadLibrary).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
