// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"fmt"

	"github.com/gogpu/shaderpack/shader"
)

// MemberType tags a uniform buffer member. Values are part of the serialized
// wire format; append only.
type MemberType uint32

const (
	MemberInt16 MemberType = iota
	MemberInt32
	MemberInt64
	MemberUint16
	MemberUint32
	MemberUint64
	MemberFloat16
	MemberFloat32
	MemberFloat64
	MemberVec2
	MemberVec3
	MemberVec4
	MemberMat3
	MemberMat4
	MemberStruct

	memberTypeCount
)

var memberTypeNames = [...]string{
	MemberInt16:   "int16",
	MemberInt32:   "int32",
	MemberInt64:   "int64",
	MemberUint16:  "uint16",
	MemberUint32:  "uint32",
	MemberUint64:  "uint64",
	MemberFloat16: "float16",
	MemberFloat32: "float32",
	MemberFloat64: "float64",
	MemberVec2:    "vec2",
	MemberVec3:    "vec3",
	MemberVec4:    "vec4",
	MemberMat3:    "mat3",
	MemberMat4:    "mat4",
	MemberStruct:  "struct",
}

// String returns the type name.
func (t MemberType) String() string {
	if t < memberTypeCount {
		return memberTypeNames[t]
	}
	return fmt.Sprintf("MemberType(%d)", uint32(t))
}

// Valid reports whether t is a declared member type.
func (t MemberType) Valid() bool {
	return t < memberTypeCount
}

// ScalarMemberType returns the tag of a scalar of the given kind and width.
// Only float, sint and uint kinds have member tags.
func ScalarMemberType(kind ScalarKind, width uint32) (MemberType, error) {
	switch {
	case kind == KindSint && width == 16:
		return MemberInt16, nil
	case kind == KindSint && width == 32:
		return MemberInt32, nil
	case kind == KindSint && width == 64:
		return MemberInt64, nil
	case kind == KindUint && width == 16:
		return MemberUint16, nil
	case kind == KindUint && width == 32:
		return MemberUint32, nil
	case kind == KindUint && width == 64:
		return MemberUint64, nil
	case kind == KindFloat && width == 16:
		return MemberFloat16, nil
	case kind == KindFloat && width == 32:
		return MemberFloat32, nil
	case kind == KindFloat && width == 64:
		return MemberFloat64, nil
	}
	return 0, shader.Errorf(shader.ErrUnsupportedType, "no member type for %s%d scalar", kind, width)
}

// VectorMemberType returns the tag of a vector with the given size.
func VectorMemberType(components uint32) (MemberType, error) {
	switch components {
	case 2:
		return MemberVec2, nil
	case 3:
		return MemberVec3, nil
	case 4:
		return MemberVec4, nil
	}
	return 0, shader.Errorf(shader.ErrUnsupportedType, "no member type for %d-component vector", components)
}

// MatrixMemberType returns the tag of a square matrix. Only 3x3 and 4x4
// matrices have tags.
func MatrixMemberType(columns, rows uint32) (MemberType, error) {
	switch {
	case columns == 3 && rows == 3:
		return MemberMat3, nil
	case columns == 4 && rows == 4:
		return MemberMat4, nil
	}
	return 0, shader.Errorf(shader.ErrUnsupportedType, "no member type for %dx%d matrix", columns, rows)
}

// NewMember builds a member from its per-element size. ArrayCount is clamped
// to at least 1 and Size is elementSize × ArrayCount. Offset is left for
// PackMembers.
func NewMember(name string, typ MemberType, elementSize, arrayCount uint32) Member {
	if arrayCount == 0 {
		arrayCount = 1
	}
	return Member{
		Type:       typ,
		ArrayCount: arrayCount,
		Size:       elementSize * arrayCount,
		Name:       name,
	}
}

// PackMembers assigns each member's Offset as the running sum of the sizes
// of the members before it, in declaration order, and returns the total.
//
// Offsets reported by the compiler are deliberately not used. The packed
// layout can therefore differ from the compiler's alignment rules.
func PackMembers(members []Member) uint32 {
	var offset uint32
	for i := range members {
		members[i].Offset = offset
		offset += members[i].Size
	}
	return offset
}

// Dimension is an image dimensionality. Values are part of the serialized
// wire format; append only.
type Dimension uint32

const (
	// DimensionNone is used by sampler records.
	DimensionNone Dimension = iota
	Dimension1D
	Dimension1DArray
	Dimension2D
	Dimension2DArray
	Dimension3D
	DimensionCube

	dimensionCount
)

// String returns the dimension name.
func (d Dimension) String() string {
	switch d {
	case DimensionNone:
		return "none"
	case Dimension1D:
		return "1d"
	case Dimension1DArray:
		return "1d-array"
	case Dimension2D:
		return "2d"
	case Dimension2DArray:
		return "2d-array"
	case Dimension3D:
		return "3d"
	case DimensionCube:
		return "cube"
	default:
		return fmt.Sprintf("Dimension(%d)", uint32(d))
	}
}

// Valid reports whether d is a declared dimension.
func (d Dimension) Valid() bool {
	return d < dimensionCount
}

// BaseDimension is a dimensionality before arrayness is applied.
type BaseDimension uint8

const (
	Base1D BaseDimension = iota
	Base2D
	Base3D
	BaseCube
)

// NewDimension combines a base dimensionality with arrayness. Cube arrays
// and 3D arrays are ErrUnsupportedType.
func NewDimension(base BaseDimension, arrayed bool) (Dimension, error) {
	switch {
	case base == Base1D && !arrayed:
		return Dimension1D, nil
	case base == Base1D:
		return Dimension1DArray, nil
	case base == Base2D && !arrayed:
		return Dimension2D, nil
	case base == Base2D:
		return Dimension2DArray, nil
	case base == Base3D && !arrayed:
		return Dimension3D, nil
	case base == BaseCube && !arrayed:
		return DimensionCube, nil
	case base == BaseCube:
		return 0, shader.NewError(shader.ErrUnsupportedType, "cube array images are not supported")
	}
	return 0, shader.Errorf(shader.ErrUnsupportedType, "unsupported image dimension %d (arrayed=%t)", base, arrayed)
}
