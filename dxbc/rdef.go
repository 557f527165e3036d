// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"fmt"
)

// InputType is a D3D_SHADER_INPUT_TYPE.
type InputType uint32

const (
	InputCBuffer InputType = iota
	InputTBuffer
	InputTexture
	InputSampler
	InputUAVRWTyped
	InputStructured
	InputUAVRWStructured
	InputByteAddress
	InputUAVRWByteAddress
	InputUAVAppendStructured
	InputUAVConsumeStructured
	InputUAVRWStructuredWithCounter
	InputRTAccelerationStructure
	InputUAVFeedbackTexture
)

// ReturnType is a D3D_RESOURCE_RETURN_TYPE.
type ReturnType uint32

const (
	ReturnUnorm     ReturnType = 1
	ReturnSnorm     ReturnType = 2
	ReturnSint      ReturnType = 3
	ReturnUint      ReturnType = 4
	ReturnFloat     ReturnType = 5
	ReturnMixed     ReturnType = 6
	ReturnDouble    ReturnType = 7
	ReturnContinued ReturnType = 8
)

// SRVDimension is a D3D_SRV_DIMENSION.
type SRVDimension uint32

const (
	DimUnknown SRVDimension = iota
	DimBuffer
	DimTexture1D
	DimTexture1DArray
	DimTexture2D
	DimTexture2DArray
	DimTexture2DMS
	DimTexture2DMSArray
	DimTexture3D
	DimTextureCube
	DimTextureCubeArray
	DimBufferEx
)

// Binding flags (D3D_SHADER_INPUT_FLAGS).
const (
	FlagUserPacked        = 0x1
	FlagComparisonSampler = 0x2
	FlagTextureComponent0 = 0x4
	FlagTextureComponent1 = 0x8
)

// ResourceBinding is one bound resource.
type ResourceBinding struct {
	Name       string
	InputType  InputType
	ReturnType ReturnType
	Dimension  SRVDimension

	// NumSamples is the sample count of multisampled textures and the
	// stride of structured buffers.
	NumSamples uint32

	BindPoint uint32
	BindCount uint32
	Flags     uint32

	// Space and ID are only present from shader model 5.1.
	Space uint32
	ID    uint32
}

// Components returns the texel component count encoded in Flags.
func (b ResourceBinding) Components() uint32 {
	return ((b.Flags >> 2) & 3) + 1
}

// CBufferType is a D3D_CBUFFER_TYPE.
type CBufferType uint32

const (
	CBufferConstants CBufferType = iota
	CBufferTexture
	CBufferInterfacePointers
	CBufferResourceBindInfo
)

// VariableClass is a D3D_SHADER_VARIABLE_CLASS.
type VariableClass uint16

const (
	ClassScalar VariableClass = iota
	ClassVector
	ClassMatrixRows
	ClassMatrixColumns
	ClassObject
	ClassStruct
)

// VariableType is a D3D_SHADER_VARIABLE_TYPE.
type VariableType uint16

const (
	TypeVoid       VariableType = 0
	TypeBool       VariableType = 1
	TypeInt        VariableType = 2
	TypeFloat      VariableType = 3
	TypeUint       VariableType = 19
	TypeDouble     VariableType = 39
	TypeMin8Float  VariableType = 52
	TypeMin10Float VariableType = 53
	TypeMin16Float VariableType = 54
	TypeMin12Int   VariableType = 55
	TypeMin16Int   VariableType = 56
	TypeMin16Uint  VariableType = 57
	TypeInt16      VariableType = 58
	TypeUint16     VariableType = 59
	TypeFloat16    VariableType = 60
	TypeInt64      VariableType = 61
	TypeUint64     VariableType = 62
)

// Type describes a constant buffer variable type.
type Type struct {
	Class    VariableClass
	Kind     VariableType
	Rows     uint16
	Columns  uint16
	Elements uint16
	Name     string
	Members  []TypeMember
}

// TypeMember is a struct member.
type TypeMember struct {
	Name   string
	Offset uint32
	Type   *Type
}

// Variable is one constant buffer variable.
type Variable struct {
	Name        string
	StartOffset uint32
	Size        uint32
	Flags       uint32
	Type        *Type
}

// ConstantBuffer is a cbuffer, tbuffer or bind-info record.
type ConstantBuffer struct {
	Name      string
	Type      CBufferType
	Size      uint32
	Flags     uint32
	Variables []Variable
}

// RDEF is a decoded resource definition part.
type RDEF struct {
	MajorVersion    uint8
	MinorVersion    uint8
	ProgramType     uint16
	Flags           uint32
	Creator         string
	Bindings        []ResourceBinding
	ConstantBuffers []ConstantBuffer
}

// record sizes of one RDEF version.
type rdefLayout struct {
	binding  uint32
	variable uint32
	typ      uint32
}

const (
	rdefHeaderSize  = 28
	rd11HeaderSize  = 32
	cbufferSize     = 24
	memberSize      = 12
	maxRDEFEntries  = 4096
	maxTypeNesting  = 32

	rd11Magic = "RD11"
)

func layoutFor(major, minor uint8) rdefLayout {
	l := rdefLayout{binding: 32, variable: 24, typ: 16}
	if major >= 5 {
		l.variable, l.typ = 40, 36
	}
	if major > 5 || (major == 5 && minor >= 1) {
		l.binding = 40
	}
	return l
}

// ParseRDEF decodes a resource definition part.
func ParseRDEF(data []byte) (*RDEF, error) {
	p := &rdefParser{c: chunk(data), types: make(map[uint32]*Type)}
	r, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("dxbc: RDEF: %w", err)
	}
	return r, nil
}

type rdefParser struct {
	c      chunk
	layout rdefLayout
	types  map[uint32]*Type
}

func (p *rdefParser) parse() (*RDEF, error) {
	c := p.c
	var cbCount, cbOffset, bindCount, bindOffset, version, flags, creatorOffset uint32
	if err := c.fields(0, &cbCount, &cbOffset, &bindCount, &bindOffset, &version, &flags, &creatorOffset); err != nil {
		return nil, err
	}
	if cbCount > maxRDEFEntries || bindCount > maxRDEFEntries {
		return nil, fmt.Errorf("too many entries (%d cbuffers, %d bindings)", cbCount, bindCount)
	}

	r := &RDEF{
		MinorVersion: uint8(version),
		MajorVersion: uint8(version >> 8),
		ProgramType:  uint16(version >> 16),
		Flags:        flags,
	}
	p.layout = layoutFor(r.MajorVersion, r.MinorVersion)
	if creatorOffset != 0 {
		r.Creator, _ = c.str(creatorOffset)
	}

	r.Bindings = make([]ResourceBinding, 0, bindCount)
	for i := uint32(0); i < bindCount; i++ {
		b, err := p.binding(bindOffset + i*p.layout.binding)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		r.Bindings = append(r.Bindings, b)
	}

	r.ConstantBuffers = make([]ConstantBuffer, 0, cbCount)
	for i := uint32(0); i < cbCount; i++ {
		cb, err := p.cbuffer(cbOffset + i*cbufferSize)
		if err != nil {
			return nil, fmt.Errorf("constant buffer %d: %w", i, err)
		}
		r.ConstantBuffers = append(r.ConstantBuffers, cb)
	}
	return r, nil
}

func (p *rdefParser) binding(at uint32) (ResourceBinding, error) {
	var b ResourceBinding
	var nameOffset, inputType, returnType, dim uint32
	err := p.c.fields(at, &nameOffset, &inputType, &returnType, &dim,
		&b.NumSamples, &b.BindPoint, &b.BindCount, &b.Flags)
	if err != nil {
		return b, err
	}
	if p.layout.binding == 40 {
		if err := p.c.fields(at+32, &b.Space, &b.ID); err != nil {
			return b, err
		}
	}
	b.InputType = InputType(inputType)
	b.ReturnType = ReturnType(returnType)
	b.Dimension = SRVDimension(dim)
	b.Name, err = p.c.str(nameOffset)
	return b, err
}

func (p *rdefParser) cbuffer(at uint32) (ConstantBuffer, error) {
	var cb ConstantBuffer
	var nameOffset, varCount, varOffset, typ uint32
	if err := p.c.fields(at, &nameOffset, &varCount, &varOffset, &cb.Size, &cb.Flags, &typ); err != nil {
		return cb, err
	}
	if varCount > maxRDEFEntries {
		return cb, fmt.Errorf("too many variables (%d)", varCount)
	}
	cb.Type = CBufferType(typ)
	var err error
	if cb.Name, err = p.c.str(nameOffset); err != nil {
		return cb, err
	}

	cb.Variables = make([]Variable, 0, varCount)
	for i := uint32(0); i < varCount; i++ {
		v, err := p.variable(varOffset + i*p.layout.variable)
		if err != nil {
			return cb, fmt.Errorf("variable %d: %w", i, err)
		}
		cb.Variables = append(cb.Variables, v)
	}
	return cb, nil
}

func (p *rdefParser) variable(at uint32) (Variable, error) {
	var v Variable
	var nameOffset, typeOffset, defaultOffset uint32
	if err := p.c.fields(at, &nameOffset, &v.StartOffset, &v.Size, &v.Flags, &typeOffset, &defaultOffset); err != nil {
		return v, err
	}
	var err error
	if v.Name, err = p.c.str(nameOffset); err != nil {
		return v, err
	}
	v.Type, err = p.typ(typeOffset, 0)
	return v, err
}

// typ decodes a type record. Records shared by several variables decode to
// the same *Type.
func (p *rdefParser) typ(at uint32, depth int) (*Type, error) {
	if t, ok := p.types[at]; ok {
		return t, nil
	}
	if depth > maxTypeNesting {
		return nil, fmt.Errorf("type nesting exceeds %d", maxTypeNesting)
	}

	var words [6]uint16
	for i := range words {
		v, err := p.c.u16(at + uint32(i)*2)
		if err != nil {
			return nil, err
		}
		words[i] = v
	}
	memberOffset, err := p.c.u32(at + 12)
	if err != nil {
		return nil, err
	}
	t := &Type{
		Class:    VariableClass(words[0]),
		Kind:     VariableType(words[1]),
		Rows:     words[2],
		Columns:  words[3],
		Elements: words[4],
	}
	if p.layout.typ == 36 {
		nameOffset, err := p.c.u32(at + 32)
		if err != nil {
			return nil, err
		}
		if nameOffset != 0 {
			t.Name, _ = p.c.str(nameOffset)
		}
	}
	p.types[at] = t

	members := uint32(words[5])
	t.Members = make([]TypeMember, 0, members)
	for i := uint32(0); i < members; i++ {
		var nameOffset, typeOffset, offset uint32
		if err := p.c.fields(memberOffset+i*memberSize, &nameOffset, &typeOffset, &offset); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		m := TypeMember{Offset: offset}
		if m.Name, err = p.c.str(nameOffset); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		if m.Type, err = p.typ(typeOffset, depth+1); err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Name, err)
		}
		t.Members = append(t.Members, m)
	}
	return t, nil
}
