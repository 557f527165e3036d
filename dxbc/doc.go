// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dxbc reads DXBC/DXIL shader containers.
//
// A container is a "DXBC" header, a 16-byte digest and a list of parts, each
// tagged with a FourCC. This package parses the parts needed for reflection:
//
//   - ISGN/OSGN, OSG5, ISG1/OSG1: input and output signatures
//   - RDEF: resource definitions (bindings, constant buffers and their types)
//   - PSV0: runtime binding records of DXIL containers
//   - STAT, DXIL: DXIL programs, whose dx.resources metadata is read through
//     package dxil when RDEF is absent
//
// # Usage
//
//	desc, err := dxbc.Reflect(code)
//	if err != nil {
//	    return err
//	}
//
// CheckSigned reports whether the container digest is set. Unsigned
// containers are logged but accepted.
//
// ContainerBuilder assembles synthetic containers; it is used by tests that
// need native bytecode without the dxc toolchain.
package dxbc
