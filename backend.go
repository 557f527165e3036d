// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpack

import (
	"log/slog"
	"strings"

	"github.com/gogpu/shaderpack/dxbc"
	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
	"github.com/gogpu/shaderpack/spirv"
	"github.com/gogpu/shaderpack/toolchain"
)

// Backend compiles and reflects one bytecode target.
type Backend interface {
	// Target is the bytecode flavor the backend produces.
	Target() shader.Target

	// Compile runs the toolchain for p's source language.
	Compile(p *shader.Policy, source string) (*shader.Bytecode, error)

	// Verify runs non-fatal integrity checks and logs what it finds.
	Verify(b *shader.Bytecode)

	// Reflect describes every resource the shader binds.
	Reflect(p *shader.Policy, b *shader.Bytecode) (*reflection.Descriptor, error)

	// Disassemble renders the bytecode as text.
	Disassemble(p *shader.Policy, b *shader.Bytecode) (string, error)
}

// toolSet picks a toolchain per source language.
type toolSet struct {
	hlsl toolchain.Toolchain
	wgsl toolchain.Toolchain
}

func newToolSet(opts Options, logger *slog.Logger) (*toolSet, error) {
	if opts.Toolchain != nil {
		return &toolSet{hlsl: opts.Toolchain, wgsl: opts.Toolchain}, nil
	}

	dxc, err := toolchain.NewDXC(toolchain.DXCOptions{
		Path:             opts.DXCPath,
		WarningsAsErrors: opts.WarningsAsErrors,
		ExtraArgs:        opts.ExtraArgs,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}
	return &toolSet{
		hlsl: dxc,
		wgsl: toolchain.NewNaga(toolchain.NagaOptions{DXC: dxc, Logger: logger}),
	}, nil
}

func (t *toolSet) forPolicy(p *shader.Policy) toolchain.Toolchain {
	if p.Language == shader.LanguageWGSL {
		return t.wgsl
	}
	return t.hlsl
}

func (t *toolSet) compile(p *shader.Policy, source string) (*shader.Bytecode, error) {
	b, err := t.forPolicy(p).Compile(p, source)
	if err != nil {
		return nil, err
	}
	if b.Empty() {
		return nil, shader.CompileError("toolchain produced no bytecode for "+p.EntryPoint, b.Diagnostics)
	}
	if b.Target != p.Target {
		return nil, shader.Errorf(shader.ErrCompileFailed, "toolchain produced %s bytecode, want %s", b.Target, p.Target)
	}
	return b, nil
}

// nativeBackend handles DXBC and DXIL containers.
type nativeBackend struct {
	tools  *toolSet
	logger *slog.Logger
}

func (n *nativeBackend) Target() shader.Target {
	return shader.TargetNative
}

func (n *nativeBackend) Compile(p *shader.Policy, source string) (*shader.Bytecode, error) {
	return n.tools.compile(p, source)
}

// Verify logs unsigned containers. Unsigned bytecode is still accepted.
func (n *nativeBackend) Verify(b *shader.Bytecode) {
	dxbc.CheckSigned(b.Code, n.logger)
}

func (n *nativeBackend) Reflect(_ *shader.Policy, b *shader.Bytecode) (*reflection.Descriptor, error) {
	return dxbc.Reflect(b.Code)
}

func (n *nativeBackend) Disassemble(p *shader.Policy, b *shader.Bytecode) (string, error) {
	return n.tools.forPolicy(p).Disassemble(b)
}

// crossBackend handles SPIR-V modules.
type crossBackend struct {
	tools *toolSet
}

func (c *crossBackend) Target() shader.Target {
	return shader.TargetCrossCompiled
}

func (c *crossBackend) Compile(p *shader.Policy, source string) (*shader.Bytecode, error) {
	return c.tools.compile(p, source)
}

func (c *crossBackend) Verify(*shader.Bytecode) {}

func (c *crossBackend) Reflect(p *shader.Policy, b *shader.Bytecode) (*reflection.Descriptor, error) {
	return spirv.ReflectEntryPoint(b.Code, p.EntryPoint)
}

// Disassemble uses the built-in SPIR-V disassembler; no toolchain is
// needed.
func (c *crossBackend) Disassemble(_ *shader.Policy, b *shader.Bytecode) (string, error) {
	var sb strings.Builder
	if err := spirv.Disassemble(b.Code, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
