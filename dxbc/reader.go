// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"encoding/binary"
	"fmt"
)

// chunk is a bounds-checked little-endian view of a part. Offsets inside
// RDEF and signature parts are relative to the start of the part.
type chunk []byte

func (c chunk) u32(offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(len(c)) {
		return 0, fmt.Errorf("read u32 at %d: out of bounds (%d bytes)", offset, len(c))
	}
	return binary.LittleEndian.Uint32(c[offset:]), nil
}

func (c chunk) u16(offset uint32) (uint16, error) {
	if uint64(offset)+2 > uint64(len(c)) {
		return 0, fmt.Errorf("read u16 at %d: out of bounds (%d bytes)", offset, len(c))
	}
	return binary.LittleEndian.Uint16(c[offset:]), nil
}

func (c chunk) u8(offset uint32) (uint8, error) {
	if uint64(offset) >= uint64(len(c)) {
		return 0, fmt.Errorf("read u8 at %d: out of bounds (%d bytes)", offset, len(c))
	}
	return c[offset], nil
}

// str reads a nul-terminated string.
func (c chunk) str(offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(c)) {
		return "", fmt.Errorf("read string at %d: out of bounds (%d bytes)", offset, len(c))
	}
	for i := offset; i < uint32(len(c)); i++ {
		if c[i] == 0 {
			return string(c[offset:i]), nil
		}
	}
	return "", fmt.Errorf("string at %d is not terminated", offset)
}

// fields reads consecutive u32 values starting at offset.
func (c chunk) fields(offset uint32, dst ...*uint32) error {
	for i, p := range dst {
		v, err := c.u32(offset + uint32(i)*4)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

// writer appends little-endian values. Used by the container builder.
type writer struct {
	buf []byte
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// str appends a nul-terminated string and returns its offset.
func (w *writer) str(s string) uint32 {
	offset := uint32(len(w.buf))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
	return offset
}

// align pads to a 4-byte boundary.
func (w *writer) align() {
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *writer) putU32(offset, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[offset:], v)
}

func (w *writer) len() uint32 {
	return uint32(len(w.buf))
}
