// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

// Bytecode is compiled shader code together with its target tag.
type Bytecode struct {
	// Code is the raw bytecode. The Bytecode owns it.
	Code []byte

	// Target tells how Code is encoded.
	Target Target

	// Diagnostics holds toolchain warnings from a successful compile.
	Diagnostics string
}

// Len returns the bytecode length in bytes.
func (b *Bytecode) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Code)
}

// Empty reports whether there is no bytecode.
func (b *Bytecode) Empty() bool {
	return b.Len() == 0
}
