// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"
	"strings"
)

// Stage identifies the pipeline stage a shader is compiled for.
type Stage uint8

// Supported stages.
const (
	StageVertex Stage = iota
	StageFragment
	StageCompute

	stageCount
)

// Stages lists every supported stage.
func Stages() []Stage {
	return []Stage{StageVertex, StageFragment, StageCompute}
}

// Valid reports whether s is a declared stage.
func (s Stage) Valid() bool {
	return s < stageCount
}

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// ParseStage parses a stage name or its profile prefix ("vs", "ps", "fs", "cs").
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(s) {
	case "vertex", "vs", "vert":
		return StageVertex, nil
	case "fragment", "pixel", "ps", "fs", "frag":
		return StageFragment, nil
	case "compute", "cs", "comp":
		return StageCompute, nil
	}
	return 0, Errorf(ErrInvalidPolicy, "unknown stage %q", s)
}

// Content tells whether the input is source text or precompiled bytecode.
type Content uint8

const (
	// ContentSource is shading-language source text.
	ContentSource Content = iota

	// ContentPrecompiledBinary is bytecode that skips compilation.
	ContentPrecompiledBinary
)

// Language is the source language of ContentSource input.
type Language uint8

const (
	// LanguageHLSL is compiled by dxc.
	LanguageHLSL Language = iota

	// LanguageWGSL is compiled in-process by naga.
	LanguageWGSL
)

// String returns the language name.
func (l Language) String() string {
	switch l {
	case LanguageHLSL:
		return "hlsl"
	case LanguageWGSL:
		return "wgsl"
	default:
		return fmt.Sprintf("Language(%d)", uint8(l))
	}
}

// Optimization selects the toolchain optimization level.
type Optimization uint8

const (
	// OptimizationNone disables optimization and emits debug info.
	OptimizationNone Optimization = iota

	// OptimizationSize favors small bytecode.
	OptimizationSize

	// OptimizationPerformance favors fast code.
	OptimizationPerformance

	// OptimizationFull enables every optimization pass.
	OptimizationFull
)

// String returns the optimization level name.
func (o Optimization) String() string {
	switch o {
	case OptimizationNone:
		return "none"
	case OptimizationSize:
		return "size"
	case OptimizationPerformance:
		return "performance"
	case OptimizationFull:
		return "full"
	default:
		return fmt.Sprintf("Optimization(%d)", uint8(o))
	}
}

// ParseOptimization parses a level name or "0".."3".
func ParseOptimization(s string) (Optimization, error) {
	switch strings.ToLower(s) {
	case "none", "debug", "0", "d":
		return OptimizationNone, nil
	case "size", "1", "s":
		return OptimizationSize, nil
	case "performance", "perf", "2":
		return OptimizationPerformance, nil
	case "full", "3":
		return OptimizationFull, nil
	}
	return 0, Errorf(ErrInvalidPolicy, "unknown optimization level %q", s)
}

// Target is the bytecode flavor a compile produces.
type Target uint8

const (
	// TargetNative is a native bytecode container (DXBC/DXIL).
	TargetNative Target = iota

	// TargetCrossCompiled is a SPIR-V module.
	TargetCrossCompiled
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetNative:
		return "native"
	case TargetCrossCompiled:
		return "spirv"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// ParseTarget parses "native", "dxil", "dxbc" or "spirv".
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "native", "dxil", "dxbc":
		return TargetNative, nil
	case "spirv", "spv", "cross":
		return TargetCrossCompiled, nil
	}
	return 0, Errorf(ErrInvalidPolicy, "unknown bytecode target %q", s)
}

// Define is one preprocessor macro.
type Define struct {
	Name  string
	Value string
}

// DefaultEntryPoint is the conventional entry point name.
const DefaultEntryPoint = "main"

// Policy describes one compile request.
type Policy struct {
	// Stage is the pipeline stage.
	Stage Stage

	// ShaderModel selects the target profile version.
	ShaderModel ShaderModel

	// EntryPoint names the function to compile.
	EntryPoint string

	// Content tells whether the input is source or bytecode.
	Content Content

	// Language is the source language when Content is ContentSource.
	Language Language

	// Defines are passed to the preprocessor in order.
	Defines []Define

	// IncludePaths are searched in order for included files.
	IncludePaths []string

	// Optimization selects the optimization level.
	Optimization Optimization

	// UseReflection requests a reflection blob in the output.
	UseReflection bool

	// Target selects the bytecode flavor.
	Target Target
}

// DefaultPolicy returns a policy for stage with conventional defaults:
// default shader model, "main" entry point, HLSL source, full optimization,
// reflection enabled and native bytecode.
func DefaultPolicy(stage Stage) *Policy {
	return &Policy{
		Stage:         stage,
		ShaderModel:   ShaderModelDefault,
		EntryPoint:    DefaultEntryPoint,
		Content:       ContentSource,
		Language:      LanguageHLSL,
		Optimization:  OptimizationFull,
		UseReflection: true,
		Target:        TargetNative,
	}
}

// Validate checks that every field holds an accepted value.
func (p *Policy) Validate() error {
	if p == nil {
		return NewError(ErrInvalidPolicy, "policy is nil")
	}
	if !p.Stage.Valid() {
		return Errorf(ErrInvalidPolicy, "invalid stage %d", p.Stage)
	}
	if !p.ShaderModel.Valid() {
		return Errorf(ErrInvalidPolicy, "invalid shader model %d", p.ShaderModel)
	}
	if p.EntryPoint == "" {
		return NewError(ErrInvalidPolicy, "entry point is empty")
	}
	if p.Content > ContentPrecompiledBinary {
		return Errorf(ErrInvalidPolicy, "invalid content kind %d", p.Content)
	}
	if p.Language > LanguageWGSL {
		return Errorf(ErrInvalidPolicy, "invalid language %d", p.Language)
	}
	if p.Optimization > OptimizationFull {
		return Errorf(ErrInvalidPolicy, "invalid optimization level %d", p.Optimization)
	}
	if p.Target > TargetCrossCompiled {
		return Errorf(ErrInvalidPolicy, "invalid bytecode target %d", p.Target)
	}
	for i, d := range p.Defines {
		if d.Name == "" {
			return Errorf(ErrInvalidPolicy, "define %d has an empty name", i)
		}
	}
	return nil
}

// UniqueIncludePaths returns IncludePaths with empty entries and duplicates
// removed. The first occurrence keeps its position.
func (p *Policy) UniqueIncludePaths() []string {
	seen := make(map[string]bool, len(p.IncludePaths))
	paths := make([]string, 0, len(p.IncludePaths))
	for _, dir := range p.IncludePaths {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		paths = append(paths, dir)
	}
	return paths
}
