// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"encoding/binary"
	"fmt"
)

// bitcodeMagic opens the bitcode header of a DXIL or STAT part.
const bitcodeMagic = 0x4C495844 // "DXIL"

// programHeaderSize covers the program version, size, magic, DXIL
// version, bitcode offset and bitcode size.
const programHeaderSize = 24

// ShaderKind is the pipeline stage encoded in a program version.
type ShaderKind uint16

// Shader kinds.
const (
	ShaderPixel ShaderKind = iota
	ShaderVertex
	ShaderGeometry
	ShaderHull
	ShaderDomain
	ShaderCompute
)

// Program is the header of a DXIL or STAT part and the bitcode it wraps.
type Program struct {
	Kind         ShaderKind
	Major, Minor uint32
	DXILVersion  uint32
	Bitcode      []byte
}

// ParseProgram reads a program header. Bitcode aliases part.
func ParseProgram(part []byte) (*Program, error) {
	if len(part) < programHeaderSize {
		return nil, fmt.Errorf("dxil: program part too small (%d bytes)", len(part))
	}
	le := binary.LittleEndian
	version := le.Uint32(part[0:])
	if magic := le.Uint32(part[8:]); magic != bitcodeMagic {
		return nil, fmt.Errorf("dxil: invalid bitcode header magic %#x", magic)
	}
	p := &Program{
		Kind:        ShaderKind(version >> 16),
		Major:       version >> 4 & 0xF,
		Minor:       version & 0xF,
		DXILVersion: le.Uint32(part[12:]),
	}
	// The offset counts from the bitcode header, which starts at byte 8.
	offset := uint64(le.Uint32(part[16:])) + 8
	size := uint64(le.Uint32(part[20:]))
	if offset < programHeaderSize || offset+size > uint64(len(part)) {
		return nil, fmt.Errorf("dxil: bitcode range [%d, %d) outside %d-byte part", offset, offset+size, len(part))
	}
	p.Bitcode = part[offset : offset+size]
	return p, nil
}

// EncodeProgram wraps bitcode in a program header.
func EncodeProgram(kind ShaderKind, major, minor uint32, bitcode []byte) []byte {
	le := binary.LittleEndian
	buf := make([]byte, programHeaderSize, programHeaderSize+len(bitcode)+3)
	total := (programHeaderSize + len(bitcode) + 3) / 4
	le.PutUint32(buf[0:], uint32(kind)<<16|major<<4|minor)
	le.PutUint32(buf[4:], uint32(total))
	le.PutUint32(buf[8:], bitcodeMagic)
	le.PutUint32(buf[12:], major<<8|minor)
	le.PutUint32(buf[16:], programHeaderSize-8)
	le.PutUint32(buf[20:], uint32(len(bitcode)))
	buf = append(buf, bitcode...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}
