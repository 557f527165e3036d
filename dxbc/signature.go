// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"fmt"
	"strconv"

	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
)

// SystemValue is a D3D_NAME system-value semantic.
type SystemValue uint32

// System values. Only the ones reflection distinguishes are named.
const (
	SystemValueUndefined   SystemValue = 0
	SystemValuePosition    SystemValue = 1
	SystemValueVertexID    SystemValue = 6
	SystemValueInstanceID  SystemValue = 8
	SystemValueIsFrontFace SystemValue = 9
	SystemValueTarget      SystemValue = 64
	SystemValueDepth       SystemValue = 65
)

// ComponentType is a D3D_REGISTER_COMPONENT_TYPE.
type ComponentType uint32

const (
	ComponentUnknown ComponentType = 0
	ComponentUint32  ComponentType = 1
	ComponentSint32  ComponentType = 2
	ComponentFloat32 ComponentType = 3
)

// MinPrecision is a D3D_MIN_PRECISION hint carried by ISG1/OSG1 elements.
type MinPrecision uint32

const (
	MinPrecisionDefault MinPrecision = 0
	MinPrecisionFloat16 MinPrecision = 1
	MinPrecisionSint16  MinPrecision = 4
	MinPrecisionUint16  MinPrecision = 5
)

// SignatureElement is one input or output signature entry.
type SignatureElement struct {
	Stream        uint32
	Name          string
	SemanticIndex uint32
	SystemValue   SystemValue
	ComponentType ComponentType
	Register      uint32
	Mask          uint8
	ReadWriteMask uint8
	MinPrecision  MinPrecision
}

// Semantic returns the semantic name with its index appended when nonzero,
// e.g. "TEXCOORD1".
func (e SignatureElement) Semantic() string {
	if e.SemanticIndex == 0 {
		return e.Name
	}
	return e.Name + strconv.FormatUint(uint64(e.SemanticIndex), 10)
}

// BuiltIn reports whether the element is a system value rather than a user
// semantic.
func (e SignatureElement) BuiltIn() bool {
	return e.SystemValue != SystemValueUndefined
}

// elementSize returns the record size of a signature part.
func elementSize(tag FourCC) (uint32, bool) {
	switch tag {
	case PartISGN, PartOSGN:
		return 24, true
	case PartOSG5:
		return 28, true
	case PartISG1, PartOSG1:
		return 32, true
	}
	return 0, false
}

// maxElements bounds the element count read from untrusted input.
const maxElements = 128

// ParseSignature decodes a signature part.
func ParseSignature(p Part) ([]SignatureElement, error) {
	size, ok := elementSize(p.FourCC)
	if !ok {
		return nil, fmt.Errorf("dxbc: %s is not a signature part", p.FourCC)
	}
	c := chunk(p.Data)
	count, err := c.u32(0)
	if err != nil {
		return nil, fmt.Errorf("dxbc: %s header: %w", p.FourCC, err)
	}
	if count > maxElements {
		return nil, fmt.Errorf("dxbc: %s has too many elements (%d)", p.FourCC, count)
	}
	offset, err := c.u32(4)
	if err != nil {
		return nil, fmt.Errorf("dxbc: %s header: %w", p.FourCC, err)
	}

	hasStream := p.FourCC == PartOSG5 || p.FourCC == PartISG1 || p.FourCC == PartOSG1
	hasPrecision := p.FourCC == PartISG1 || p.FourCC == PartOSG1

	elements := make([]SignatureElement, 0, count)
	for i := uint32(0); i < count; i++ {
		at := offset + i*size
		var e SignatureElement
		if hasStream {
			if e.Stream, err = c.u32(at); err != nil {
				return nil, fmt.Errorf("dxbc: %s element %d: %w", p.FourCC, i, err)
			}
			at += 4
		}
		var nameOffset, sysValue, compType uint32
		if err := c.fields(at, &nameOffset, &e.SemanticIndex, &sysValue, &compType, &e.Register); err != nil {
			return nil, fmt.Errorf("dxbc: %s element %d: %w", p.FourCC, i, err)
		}
		e.SystemValue = SystemValue(sysValue)
		e.ComponentType = ComponentType(compType)
		if e.Mask, err = c.u8(at + 20); err != nil {
			return nil, fmt.Errorf("dxbc: %s element %d: %w", p.FourCC, i, err)
		}
		e.ReadWriteMask, _ = c.u8(at + 21)
		if hasPrecision {
			precision, err := c.u32(at + 24)
			if err != nil {
				return nil, fmt.Errorf("dxbc: %s element %d: %w", p.FourCC, i, err)
			}
			e.MinPrecision = MinPrecision(precision)
		}
		if e.Name, err = c.str(nameOffset); err != nil {
			return nil, fmt.Errorf("dxbc: %s element %d name: %w", p.FourCC, i, err)
		}
		elements = append(elements, e)
	}
	return elements, nil
}

// signatureFormat maps an element's component type, precision and mask to
// a format.
func signatureFormat(e SignatureElement) (reflection.Format, error) {
	var kind reflection.ScalarKind
	switch e.ComponentType {
	case ComponentUint32:
		kind = reflection.KindUint
	case ComponentSint32:
		kind = reflection.KindSint
	case ComponentFloat32:
		kind = reflection.KindFloat
	default:
		return reflection.FormatUndefined, shader.Errorf(shader.ErrUnsupportedFormat,
			"signature element %s has unknown component type %d", e.Semantic(), e.ComponentType)
	}

	width := uint32(32)
	switch e.MinPrecision {
	case MinPrecisionFloat16, MinPrecisionSint16, MinPrecisionUint16:
		width = 16
	}

	components, err := reflection.MaskComponents(e.Mask)
	if err != nil {
		return reflection.FormatUndefined, err
	}
	return reflection.VectorFormat(kind, width, components)
}

// attributes converts signature elements to attributes. System values are
// dropped and every later register shifts down by one per dropped slot.
func attributes(elements []SignatureElement) ([]reflection.Attribute, error) {
	var attrs []reflection.Attribute
	var builtIns uint32
	for _, e := range elements {
		if e.BuiltIn() {
			builtIns++
			continue
		}
		format, err := signatureFormat(e)
		if err != nil {
			return nil, err
		}
		location := e.Register
		if location >= builtIns {
			location -= builtIns
		}
		attrs = append(attrs, reflection.Attribute{
			Location: location,
			Format:   format,
			Name:     e.Semantic(),
		})
	}
	return attrs, nil
}
