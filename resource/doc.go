// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package resource serializes compiled shaders.
//
// A shader stream is little-endian throughout. Integers are fixed width,
// booleans take one byte and strings are prefixed with a u32 byte length:
//
//	magic       "SHPK"
//	version     u32 (1)
//	stage       u32
//	shaderModel u32
//	target      u32
//	entryPoint  string
//	bytecode    u32 length + bytes
//	reflection  bool, then nine sections when set
//
// Reflection sections are written in a fixed order: inputs, outputs,
// uniform buffers, sampled images, separate images, samplers, storage
// images, storage buffers, push constants. Each section is a u32 record
// count followed by the records.
package resource
