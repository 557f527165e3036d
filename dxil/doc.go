// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dxil reads the resource metadata of DXIL programs.
//
// A DXIL program is an LLVM 3.7 bitcode module behind a small header. Parse
// decodes the bitstream far enough to recover the type table, module-level
// constants and named metadata; function bodies are skipped. Resources then
// walks the dx.resources and dx.typeAnnotations metadata:
//
//	prog, err := dxil.ParseProgram(part)
//	if err != nil {
//	    return err
//	}
//	m, err := dxil.Parse(prog.Bitcode)
//	if err != nil {
//	    return err
//	}
//	resources, err := m.Resources()
//
// ModuleBuilder writes the same subset of the format for tests.
package dxil
