// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package toolchain drives the shader compilers.
//
// Two toolchains implement Toolchain:
//
//   - DXC runs the external dxc executable on HLSL source and produces
//     DXBC/DXIL containers or SPIR-V modules.
//   - Naga compiles WGSL in-process with github.com/gogpu/naga. SPIR-V is
//     emitted directly; native containers go through naga's HLSL backend
//     and then DXC.
//
// Arguments builds the deterministic dxc command line for a policy, and
// IncludeResolver expands #include directives before source is submitted.
package toolchain
