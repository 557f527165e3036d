// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/hlsl"
	nagaspirv "github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderpack/shader"
	"github.com/gogpu/shaderpack/spirv"
)

// NagaOptions configures a Naga toolchain.
type NagaOptions struct {
	// DXC compiles the generated HLSL for native targets. Without it only
	// SPIR-V targets are available.
	DXC *DXC

	// Logger receives warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Naga compiles WGSL in-process.
type Naga struct {
	dxc    *DXC
	logger *slog.Logger
}

// NewNaga returns a WGSL toolchain.
func NewNaga(opts NagaOptions) *Naga {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Naga{dxc: opts.DXC, logger: logger}
}

// Name implements Toolchain.
func (n *Naga) Name() string {
	return "naga"
}

// hlslModels maps resolved shader models onto naga's HLSL backend.
var hlslModels = map[shader.ShaderModel]hlsl.ShaderModel{
	shader.ShaderModel5_1: hlsl.ShaderModel5_1,
	shader.ShaderModel6_0: hlsl.ShaderModel6_0,
	shader.ShaderModel6_1: hlsl.ShaderModel6_1,
	shader.ShaderModel6_2: hlsl.ShaderModel6_2,
	shader.ShaderModel6_3: hlsl.ShaderModel6_3,
	shader.ShaderModel6_4: hlsl.ShaderModel6_4,
	shader.ShaderModel6_5: hlsl.ShaderModel6_5,
	shader.ShaderModel6_6: hlsl.ShaderModel6_6,
}

// Compile implements Toolchain. Defines and include paths have no meaning
// for WGSL and are ignored with a warning.
func (n *Naga) Compile(p *shader.Policy, source string) (*shader.Bytecode, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Language != shader.LanguageWGSL {
		return nil, shader.Errorf(shader.ErrInvalidPolicy, "naga cannot compile %s source", p.Language)
	}
	if len(p.Defines) > 0 || len(p.IncludePaths) > 0 {
		n.logger.Warn("defines and include paths are ignored for WGSL",
			"entry", p.EntryPoint, "defines", len(p.Defines), "includes", len(p.IncludePaths))
	}

	if p.Target == shader.TargetCrossCompiled {
		return n.compileSPIRV(p, source)
	}
	return n.compileNative(p, source)
}

func (n *Naga) compileSPIRV(p *shader.Policy, source string) (*shader.Bytecode, error) {
	code, err := naga.CompileWithOptions(source, naga.CompileOptions{
		SPIRVVersion: nagaspirv.Version1_3,
		Debug:        debugNames(p),
		Validate:     true,
	})
	if err != nil {
		return nil, shader.CompileError("naga "+p.EntryPoint, err.Error())
	}

	module, err := spirv.Parse(code)
	if err != nil {
		return nil, shader.WrapError(shader.ErrCompileFailed, "naga emitted invalid SPIR-V", err)
	}
	if !slices.Contains(module.EntryPoints(), p.EntryPoint) {
		return nil, shader.Errorf(shader.ErrCompileFailed, "entry point %q not found", p.EntryPoint)
	}

	return &shader.Bytecode{Code: code, Target: shader.TargetCrossCompiled}, nil
}

// debugNames reports whether naga should emit OpName and OpMemberName.
// Reflection reads resource, member and attribute names from them.
func debugNames(p *shader.Policy) bool {
	return p.UseReflection || p.Optimization == shader.OptimizationNone
}

func (n *Naga) compileNative(p *shader.Policy, source string) (*shader.Bytecode, error) {
	if n.dxc == nil {
		return nil, shader.NewError(shader.ErrToolchainUnavailable, "native WGSL compiles need dxc")
	}

	text, entry, err := TranslateHLSL(source, p.EntryPoint, p.ShaderModel)
	if err != nil {
		return nil, err
	}

	hp := *p
	hp.Language = shader.LanguageHLSL
	hp.EntryPoint = entry
	hp.Defines = nil
	hp.IncludePaths = nil
	return n.dxc.Compile(&hp, text)
}

// TranslateHLSL lowers WGSL source to HLSL text for one entry point and
// returns the generated entry point name.
func TranslateHLSL(source, entryPoint string, model shader.ShaderModel) (string, string, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return "", "", shader.CompileError("parse WGSL", err.Error())
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return "", "", shader.CompileError("lower WGSL", err.Error())
	}

	opts := hlsl.DefaultOptions()
	opts.ShaderModel = hlslModels[model.Resolve()]
	opts.EntryPoint = entryPoint
	opts.FakeMissingBindings = true

	text, info, err := hlsl.Compile(module, opts)
	if err != nil {
		return "", "", shader.CompileError(fmt.Sprintf("generate HLSL for %s", entryPoint), err.Error())
	}

	entry := entryPoint
	if info != nil {
		if name, ok := info.EntryPointNames[entryPoint]; ok {
			entry = name
		}
	}
	return text, entry, nil
}

// Disassemble implements Toolchain.
func (n *Naga) Disassemble(b *shader.Bytecode) (string, error) {
	if b.Empty() {
		return "", shader.NewError(shader.ErrReflectionFailed, "no bytecode to disassemble")
	}
	if b.Target == shader.TargetCrossCompiled {
		return disassembleSPIRV(b.Code)
	}
	if n.dxc == nil {
		return "", shader.NewError(shader.ErrToolchainUnavailable, "native disassembly needs dxc")
	}
	return n.dxc.Disassemble(b)
}
