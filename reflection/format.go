// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"fmt"

	"github.com/gogpu/shaderpack/shader"
)

// Format is an engine pixel/vertex format.
type Format uint32

// Formats. Values are part of the serialized wire format; append only.
const (
	FormatUndefined Format = iota

	FormatR8Unorm
	FormatRG8Unorm
	FormatRGBA8Unorm
	FormatR8Snorm
	FormatRG8Snorm
	FormatRGBA8Snorm
	FormatR8Uint
	FormatRG8Uint
	FormatRGBA8Uint
	FormatR8Sint
	FormatRG8Sint
	FormatRGBA8Sint

	FormatR16Unorm
	FormatRG16Unorm
	FormatRGBA16Unorm
	FormatR16Snorm
	FormatRG16Snorm
	FormatRGBA16Snorm
	FormatR16Uint
	FormatRG16Uint
	FormatRGB16Uint
	FormatRGBA16Uint
	FormatR16Sint
	FormatRG16Sint
	FormatRGB16Sint
	FormatRGBA16Sint
	FormatR16Float
	FormatRG16Float
	FormatRGB16Float
	FormatRGBA16Float

	FormatR32Uint
	FormatRG32Uint
	FormatRGB32Uint
	FormatRGBA32Uint
	FormatR32Sint
	FormatRG32Sint
	FormatRGB32Sint
	FormatRGBA32Sint
	FormatR32Float
	FormatRG32Float
	FormatRGB32Float
	FormatRGBA32Float

	FormatR64Float
	FormatRG64Float
	FormatRGB64Float
	FormatRGBA64Float

	FormatRGB10A2Unorm
	FormatRGB10A2Uint
	FormatRG11B10Float

	formatCount
)

var formatNames = [...]string{
	FormatUndefined:    "Undefined",
	FormatR8Unorm:      "R8Unorm",
	FormatRG8Unorm:     "RG8Unorm",
	FormatRGBA8Unorm:   "RGBA8Unorm",
	FormatR8Snorm:      "R8Snorm",
	FormatRG8Snorm:     "RG8Snorm",
	FormatRGBA8Snorm:   "RGBA8Snorm",
	FormatR8Uint:       "R8Uint",
	FormatRG8Uint:      "RG8Uint",
	FormatRGBA8Uint:    "RGBA8Uint",
	FormatR8Sint:       "R8Sint",
	FormatRG8Sint:      "RG8Sint",
	FormatRGBA8Sint:    "RGBA8Sint",
	FormatR16Unorm:     "R16Unorm",
	FormatRG16Unorm:    "RG16Unorm",
	FormatRGBA16Unorm:  "RGBA16Unorm",
	FormatR16Snorm:     "R16Snorm",
	FormatRG16Snorm:    "RG16Snorm",
	FormatRGBA16Snorm:  "RGBA16Snorm",
	FormatR16Uint:      "R16Uint",
	FormatRG16Uint:     "RG16Uint",
	FormatRGB16Uint:    "RGB16Uint",
	FormatRGBA16Uint:   "RGBA16Uint",
	FormatR16Sint:      "R16Sint",
	FormatRG16Sint:     "RG16Sint",
	FormatRGB16Sint:    "RGB16Sint",
	FormatRGBA16Sint:   "RGBA16Sint",
	FormatR16Float:     "R16Float",
	FormatRG16Float:    "RG16Float",
	FormatRGB16Float:   "RGB16Float",
	FormatRGBA16Float:  "RGBA16Float",
	FormatR32Uint:      "R32Uint",
	FormatRG32Uint:     "RG32Uint",
	FormatRGB32Uint:    "RGB32Uint",
	FormatRGBA32Uint:   "RGBA32Uint",
	FormatR32Sint:      "R32Sint",
	FormatRG32Sint:     "RG32Sint",
	FormatRGB32Sint:    "RGB32Sint",
	FormatRGBA32Sint:   "RGBA32Sint",
	FormatR32Float:     "R32Float",
	FormatRG32Float:    "RG32Float",
	FormatRGB32Float:   "RGB32Float",
	FormatRGBA32Float:  "RGBA32Float",
	FormatR64Float:     "R64Float",
	FormatRG64Float:    "RG64Float",
	FormatRGB64Float:   "RGB64Float",
	FormatRGBA64Float:  "RGBA64Float",
	FormatRGB10A2Unorm: "RGB10A2Unorm",
	FormatRGB10A2Uint:  "RGB10A2Uint",
	FormatRG11B10Float: "RG11B10Float",
}

// String returns the format name.
func (f Format) String() string {
	if f < formatCount {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// Valid reports whether f is a declared format.
func (f Format) Valid() bool {
	return f < formatCount
}

// ScalarKind is the numeric interpretation of a format's components.
type ScalarKind uint8

const (
	KindFloat ScalarKind = iota
	KindSint
	KindUint
	KindUnorm
	KindSnorm
)

// String returns the kind name.
func (k ScalarKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindSint:
		return "sint"
	case KindUint:
		return "uint"
	case KindUnorm:
		return "unorm"
	case KindSnorm:
		return "snorm"
	default:
		return fmt.Sprintf("ScalarKind(%d)", uint8(k))
	}
}

type vectorKey struct {
	kind       ScalarKind
	width      uint32
	components uint32
}

// vectorFormats is the (kind × width × component count) lookup table.
var vectorFormats = map[vectorKey]Format{
	{KindUnorm, 8, 1}: FormatR8Unorm,
	{KindUnorm, 8, 2}: FormatRG8Unorm,
	{KindUnorm, 8, 4}: FormatRGBA8Unorm,
	{KindSnorm, 8, 1}: FormatR8Snorm,
	{KindSnorm, 8, 2}: FormatRG8Snorm,
	{KindSnorm, 8, 4}: FormatRGBA8Snorm,
	{KindUint, 8, 1}:  FormatR8Uint,
	{KindUint, 8, 2}:  FormatRG8Uint,
	{KindUint, 8, 4}:  FormatRGBA8Uint,
	{KindSint, 8, 1}:  FormatR8Sint,
	{KindSint, 8, 2}:  FormatRG8Sint,
	{KindSint, 8, 4}:  FormatRGBA8Sint,

	{KindUnorm, 16, 1}: FormatR16Unorm,
	{KindUnorm, 16, 2}: FormatRG16Unorm,
	{KindUnorm, 16, 4}: FormatRGBA16Unorm,
	{KindSnorm, 16, 1}: FormatR16Snorm,
	{KindSnorm, 16, 2}: FormatRG16Snorm,
	{KindSnorm, 16, 4}: FormatRGBA16Snorm,
	{KindUint, 16, 1}:  FormatR16Uint,
	{KindUint, 16, 2}:  FormatRG16Uint,
	{KindUint, 16, 3}:  FormatRGB16Uint,
	{KindUint, 16, 4}:  FormatRGBA16Uint,
	{KindSint, 16, 1}:  FormatR16Sint,
	{KindSint, 16, 2}:  FormatRG16Sint,
	{KindSint, 16, 3}:  FormatRGB16Sint,
	{KindSint, 16, 4}:  FormatRGBA16Sint,
	{KindFloat, 16, 1}: FormatR16Float,
	{KindFloat, 16, 2}: FormatRG16Float,
	{KindFloat, 16, 3}: FormatRGB16Float,
	{KindFloat, 16, 4}: FormatRGBA16Float,

	{KindUint, 32, 1}:  FormatR32Uint,
	{KindUint, 32, 2}:  FormatRG32Uint,
	{KindUint, 32, 3}:  FormatRGB32Uint,
	{KindUint, 32, 4}:  FormatRGBA32Uint,
	{KindSint, 32, 1}:  FormatR32Sint,
	{KindSint, 32, 2}:  FormatRG32Sint,
	{KindSint, 32, 3}:  FormatRGB32Sint,
	{KindSint, 32, 4}:  FormatRGBA32Sint,
	{KindFloat, 32, 1}: FormatR32Float,
	{KindFloat, 32, 2}: FormatRG32Float,
	{KindFloat, 32, 3}: FormatRGB32Float,
	{KindFloat, 32, 4}: FormatRGBA32Float,

	{KindFloat, 64, 1}: FormatR64Float,
	{KindFloat, 64, 2}: FormatRG64Float,
	{KindFloat, 64, 3}: FormatRGB64Float,
	{KindFloat, 64, 4}: FormatRGBA64Float,
}

// VectorFormat looks up the format for a vector of components elements of
// the given kind and bit width. An unmapped combination is an
// ErrUnsupportedFormat error.
func VectorFormat(kind ScalarKind, width, components uint32) (Format, error) {
	f, ok := vectorFormats[vectorKey{kind, width, components}]
	if !ok {
		return FormatUndefined, shader.Errorf(shader.ErrUnsupportedFormat,
			"no format for %d x %s%d", components, kind, width)
	}
	return f, nil
}

// MaskComponents converts an active-component mask (x=1, y=2, z=4, w=8) into
// a component count. Only masks starting at x without gaps are accepted.
func MaskComponents(mask uint8) (uint32, error) {
	switch mask & 0xF {
	case 0x1:
		return 1, nil
	case 0x3:
		return 2, nil
	case 0x7:
		return 3, nil
	case 0xF:
		return 4, nil
	}
	return 0, shader.Errorf(shader.ErrUnsupportedFormat, "unsupported component mask 0x%X", mask)
}
