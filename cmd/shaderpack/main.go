// Command shaderpack compiles shaders into loadable resources.
//
// Usage:
//
//	shaderpack [options] <input>...
//
// Examples:
//
//	shaderpack -stage vertex -o mesh.vs.shpk mesh.hlsl
//	shaderpack -stage fragment -entry fs_main -target spirv -o out/ a.wgsl b.wgsl
//	shaderpack -describe mesh.vs.shpk
//
// dxc must be on PATH, or named with -dxc, unless every input is WGSL or
// precompiled and the target is spirv.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "shaderpack: %v\n", err)
		os.Exit(1)
	}
}
