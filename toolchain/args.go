// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"github.com/gogpu/shaderpack/shader"
)

// Flags are compile settings that come from the environment rather than
// from the policy.
type Flags struct {
	// WarningsAsErrors adds -WX.
	WarningsAsErrors bool

	// Extra is appended after every generated argument.
	Extra []string
}

// optimizationArgs holds exactly one argument group per level.
var optimizationArgs = map[shader.Optimization][]string{
	shader.OptimizationNone:        {"-Od", "-Zi"},
	shader.OptimizationSize:        {"-O1"},
	shader.OptimizationPerformance: {"-O2"},
	shader.OptimizationFull:        {"-O3"},
}

// Arguments builds the dxc argument list for p. The order is fixed:
// entry point, target profile, optimization group, -WX, -spirv, one -D per
// define and one -I per include path in policy order, then flags.Extra.
// Input and output file arguments are not included.
func Arguments(p *shader.Policy, flags Flags) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	profile, err := shader.TargetProfile(p.Stage, p.ShaderModel)
	if err != nil {
		return nil, err
	}

	args := []string{"-E", p.EntryPoint, "-T", profile}
	args = append(args, optimizationArgs[p.Optimization]...)
	if flags.WarningsAsErrors {
		args = append(args, "-WX")
	}
	if p.Target == shader.TargetCrossCompiled {
		args = append(args, "-spirv")
	}
	for _, d := range p.Defines {
		if d.Value == "" {
			args = append(args, "-D"+d.Name)
			continue
		}
		args = append(args, "-D"+d.Name+"="+d.Value)
	}
	for _, dir := range p.UniqueIncludePaths() {
		args = append(args, "-I"+dir)
	}
	args = append(args, flags.Extra...)
	return args, nil
}
