// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"bytes"
	"encoding/binary"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/shaderpack/shader"
)

// Limits applied while reading.
const (
	maxRecords   = 1 << 16
	maxStringLen = 1 << 16
)

// Writer appends little-endian values to a buffer.
type Writer struct {
	buf bytes.Buffer
}

// U32 writes a 32-bit value.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Bool writes a one-byte boolean.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// Str writes a length-prefixed string.
func (w *Writer) Str(s string) {
	w.U32(uint32(len(s)))
	w.buf.WriteString(s)
}

// Bytes writes a length-prefixed byte slice.
func (w *Writer) Bytes(b []byte) {
	w.U32(uint32(len(b)))
	w.buf.Write(b)
}

// Raw writes b without a prefix.
func (w *Writer) Raw(b []byte) {
	w.buf.Write(b)
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Data returns the written bytes.
func (w *Writer) Data() []byte {
	return w.buf.Bytes()
}

// Reader consumes little-endian values. The first failure is sticky:
// later reads return zero values and Err reports the failure.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader returns a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first read failure.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = shader.Errorf(shader.ErrInvalidStream, format, args...)
	}
}

func (r *Reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Remaining() {
		r.fail("truncated %s at offset %d", what, r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// U32 reads a 32-bit value.
func (r *Reader) U32() uint32 {
	b := r.take(4, "u32")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Bool reads a one-byte boolean. Values other than 0 and 1 are rejected.
func (r *Reader) Bool() bool {
	b := r.take(1, "bool")
	if b == nil {
		return false
	}
	if b[0] > 1 {
		r.fail("invalid bool %d at offset %d", b[0], r.off-1)
		return false
	}
	return b[0] == 1
}

// Str reads a length-prefixed string.
func (r *Reader) Str() string {
	n := r.U32()
	if n > maxStringLen {
		r.fail("string length %d exceeds %d", n, maxStringLen)
		return ""
	}
	return string(r.take(int(n), "string"))
}

// Bytes reads a length-prefixed byte slice into a new slice.
func (r *Reader) Bytes() []byte {
	n := r.U32()
	if uint64(n) > math.MaxInt32 {
		r.fail("byte length %d too large", n)
		return nil
	}
	b := r.take(int(n), "bytes")
	if b == nil {
		return nil
	}
	return bytes.Clone(b)
}

// Raw reads n bytes without a prefix.
func (r *Reader) Raw(n int) []byte {
	return r.take(n, "raw bytes")
}

// Count reads a record count and checks it against the record limit.
func (r *Reader) Count(what string) int {
	n := r.U32()
	if n > maxRecords {
		r.fail("%s count %d exceeds %d", what, n, maxRecords)
		return 0
	}
	return int(n)
}

// writeEnum writes an enumeration value as a u32.
func writeEnum[T constraints.Unsigned](w *Writer, v T) {
	w.U32(uint32(v))
}

// readEnum reads a u32 enumeration value and checks it with valid.
func readEnum[T constraints.Unsigned](r *Reader, what string, valid func(T) bool) T {
	raw := r.U32()
	if r.err != nil {
		return 0
	}
	v := T(raw)
	if uint64(v) != uint64(raw) || !valid(v) {
		r.fail("invalid %s %d", what, raw)
		return 0
	}
	return v
}

// readSection reads a counted section of records.
func readSection[T any](r *Reader, what string, read func(*Reader) T) []T {
	n := r.Count(what)
	if n == 0 || r.err != nil {
		return nil
	}
	out := make([]T, 0, min(n, r.Remaining()))
	for range n {
		v := read(r)
		if r.err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// writeSection writes a counted section of records.
func writeSection[T any](w *Writer, records []T, write func(*Writer, T)) {
	w.U32(uint32(len(records)))
	for _, rec := range records {
		write(w, rec)
	}
}
