// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shaderpack compiles shaders into loadable resources.
//
// A compile runs the source through a toolchain, checks native containers
// for a signature, reflects every resource the shader binds and serializes
// the bytecode and reflection into one versioned stream:
//
//	c, err := shaderpack.New(shaderpack.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err) // dxc not found
//	}
//	p := shader.DefaultPolicy(shader.StageVertex)
//	res, err := c.Compile("mesh.vs", p, source)
//
// HLSL is compiled by the dxc executable. WGSL is compiled in-process by
// naga; native WGSL targets go through naga's HLSL backend and then dxc.
// New requires dxc unless Options.Toolchain is set, so a SPIR-V only setup
// passes a toolchain.Naga there.
//
// Reflection is backend independent. Native register and space pairs are
// normalized into descriptor sets per resource category; SPIR-V modules keep
// their DescriptorSet and Binding decorations.
package shaderpack

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/resource"
	"github.com/gogpu/shaderpack/shader"
	"github.com/gogpu/shaderpack/toolchain"
)

// Options configures a Compiler.
type Options struct {
	// DXCPath is the dxc executable. Bare names are searched on PATH.
	DXCPath string

	// Toolchain replaces the default dxc and naga toolchains for every
	// language. When set, DXCPath, WarningsAsErrors and ExtraArgs are unused.
	Toolchain toolchain.Toolchain

	// Logger receives warnings and debug output. Nil means slog.Default().
	Logger *slog.Logger

	// WarningsAsErrors makes dxc fail on warnings.
	WarningsAsErrors bool

	// Disassemble logs a disassembly of every compiled shader at debug level.
	Disassemble bool

	// ExtraArgs are appended to every dxc command line.
	ExtraArgs []string
}

// DefaultOptions returns options that locate dxc on PATH and log to the
// default logger.
func DefaultOptions() Options {
	return Options{
		DXCPath: toolchain.DefaultDXCPath,
		Logger:  slog.Default(),
	}
}

// Compiler turns shader source into resources. A Compiler holds only
// immutable configuration; concurrent Compile calls are safe.
type Compiler struct {
	logger      *slog.Logger
	disassemble bool
	backends    [2]Backend
}

// New creates a Compiler. Failing to locate dxc is an
// ErrToolchainUnavailable error unless Options.Toolchain is set.
func New(opts Options) (*Compiler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tools, err := newToolSet(opts, logger)
	if err != nil {
		return nil, err
	}

	return &Compiler{
		logger:      logger,
		disassemble: opts.Disassemble,
		backends: [2]Backend{
			shader.TargetNative:        &nativeBackend{tools: tools, logger: logger},
			shader.TargetCrossCompiled: &crossBackend{tools: tools},
		},
	}, nil
}

// Backend returns the backend serving target.
func (c *Compiler) Backend(target shader.Target) (Backend, error) {
	if int(target) >= len(c.backends) {
		return nil, shader.Errorf(shader.ErrInvalidPolicy, "invalid bytecode target %d", target)
	}
	return c.backends[target], nil
}

// Compile compiles source under p and returns the encoded shader resource
// named name. Precompiled input skips the toolchain: source is taken as
// bytecode of p.Target.
func (c *Compiler) Compile(name string, p *shader.Policy, source string) (*resource.Resource, error) {
	s, err := c.CompileShader(p, source)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return resource.NewShader(name, s), nil
}

// CompileShader is Compile without the final encoding step.
func (c *Compiler) CompileShader(p *shader.Policy, source string) (*resource.Shader, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	backend, err := c.Backend(p.Target)
	if err != nil {
		return nil, err
	}

	var code *shader.Bytecode
	if p.Content == shader.ContentPrecompiledBinary {
		code = &shader.Bytecode{Code: []byte(source), Target: p.Target}
		if code.Empty() {
			return nil, shader.CompileError("precompiled bytecode is empty", "")
		}
	} else {
		code, err = backend.Compile(p, source)
		if err != nil {
			return nil, err
		}
	}
	backend.Verify(code)

	if c.disassemble {
		c.logDisassembly(backend, p, code)
	}

	var desc *reflection.Descriptor
	if p.UseReflection {
		desc, err = backend.Reflect(p, code)
		if err != nil {
			return nil, fmt.Errorf("reflect %s: %w", p.EntryPoint, err)
		}
	}

	return &resource.Shader{
		Stage:       p.Stage,
		ShaderModel: p.ShaderModel,
		Target:      p.Target,
		EntryPoint:  p.EntryPoint,
		Bytecode:    code.Code,
		Reflection:  desc,
	}, nil
}

func (c *Compiler) logDisassembly(backend Backend, p *shader.Policy, code *shader.Bytecode) {
	text, err := backend.Disassemble(p, code)
	if err != nil {
		c.logger.Warn("disassembly failed", "entry", p.EntryPoint, "error", err)
		return
	}
	c.logger.Debug("disassembly", "entry", p.EntryPoint, "target", p.Target, "text", text)
}

// Decode parses an encoded shader resource.
func Decode(data []byte) (*resource.Shader, error) {
	return resource.Decode(data)
}
