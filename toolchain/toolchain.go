// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"strings"

	"github.com/gogpu/shaderpack/shader"
	"github.com/gogpu/shaderpack/spirv"
)

// Toolchain compiles source text for one policy.
//
// Implementations hold only immutable configuration and are safe for
// concurrent use.
type Toolchain interface {
	// Name identifies the toolchain in logs.
	Name() string

	// Compile produces bytecode or an ErrCompileFailed error carrying the
	// toolchain diagnostics. Compile never retries.
	Compile(p *shader.Policy, source string) (*shader.Bytecode, error)

	// Disassemble renders bytecode as text for diagnostics.
	Disassemble(b *shader.Bytecode) (string, error)
}

// disassembleSPIRV renders a SPIR-V module with the built-in disassembler.
func disassembleSPIRV(code []byte) (string, error) {
	var sb strings.Builder
	if err := spirv.Disassemble(code, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
