// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"errors"
	"fmt"
	"strings"
)

// Class is a resource class. Values index the dx.resources lists.
type Class uint8

// Resource classes.
const (
	ClassSRV Class = iota
	ClassUAV
	ClassCBuffer
	ClassSampler
)

var classNames = [...]string{"SRV", "UAV", "CBuffer", "Sampler"}

// String returns the class name.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", c)
}

// ResourceKind is the shape of an SRV or UAV.
type ResourceKind uint8

// Resource kinds.
const (
	ResourceInvalid ResourceKind = iota
	ResourceTexture1D
	ResourceTexture2D
	ResourceTexture2DMS
	ResourceTexture3D
	ResourceTextureCube
	ResourceTexture1DArray
	ResourceTexture2DArray
	ResourceTexture2DMSArray
	ResourceTextureCubeArray
	ResourceTypedBuffer
	ResourceRawBuffer
	ResourceStructuredBuffer
	ResourceCBuffer
	ResourceSampler
	ResourceTBuffer
	ResourceRTAccelerationStructure
	ResourceFeedbackTexture2D
	ResourceFeedbackTexture2DArray
)

// CompType is a component type of a resource element or constant.
type CompType uint8

// Component types.
const (
	CompInvalid CompType = iota
	CompI1
	CompI16
	CompU16
	CompI32
	CompU32
	CompI64
	CompU64
	CompF16
	CompF32
	CompF64
	CompSNormF16
	CompUNormF16
	CompSNormF32
	CompUNormF32
	CompSNormF64
	CompUNormF64
)

// Resource is one entry of the dx.resources metadata.
type Resource struct {
	Class      Class
	ID         uint32
	Name       string
	Space      uint32
	LowerBound uint32
	// RangeSize is the register count, 0 for an unbounded range.
	RangeSize uint32

	// Kind is set for SRVs and UAVs.
	Kind        ResourceKind
	SampleCount uint32
	// ElementType and Components describe typed buffer and texture
	// elements.
	ElementType CompType
	Components  uint32
	// Stride is the element size of a structured buffer.
	Stride uint32

	GloballyCoherent  bool
	HasCounter        bool
	RasterizerOrdered bool

	// Size and Layout are set for constant buffers.
	Size   uint32
	Layout *StructLayout

	// Comparison marks comparison samplers.
	Comparison bool
}

// StructLayout is an annotated struct.
type StructLayout struct {
	Name   string
	Size   uint32
	Fields []Field
}

// Field is one annotated struct member.
type Field struct {
	Name string
	Type CompType
	// Rows and Columns are 1 for scalars. Vectors have one row.
	Rows, Columns uint32
	Matrix        bool
	// ArrayCount is 0 for a non-array field.
	ArrayCount uint32
	Struct     *StructLayout
	Offset     uint32
}

// maxTypeNesting bounds array and struct nesting in untrusted input.
const maxTypeNesting = 64

// Extended property tags.
const (
	propElementType = 0
	propStride      = 1
)

// Field annotation tags.
const (
	fieldMatrix       = 2
	fieldOffset       = 3
	fieldName         = 6
	fieldCompType     = 7
	annotationsStruct = 0
)

// Resources returns the resources declared in dx.resources, grouped by
// class in SRV, UAV, CBuffer, Sampler order. A module without resources
// returns nil.
func (m *Module) Resources() ([]Resource, error) {
	ops, ok := m.Named("dx.resources")
	if !ok || len(ops) == 0 {
		return nil, nil
	}
	lists, ok := m.tuple(ops[0])
	if !ok {
		return nil, errors.New("dxil: dx.resources is not a tuple")
	}
	annotations, err := m.structAnnotations()
	if err != nil {
		return nil, err
	}

	var out []Resource
	for class, list := range lists {
		if class > int(ClassSampler) {
			break
		}
		if list < 0 {
			continue
		}
		entries, ok := m.tuple(list)
		if !ok {
			return nil, fmt.Errorf("dxil: %s list is not a tuple", Class(class))
		}
		for _, e := range entries {
			r, err := m.resource(Class(class), e, annotations)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// entry reads integer operands of a resource or annotation node.
type entry struct {
	m   *Module
	ops []int64
	who string
}

func (e entry) int(i int) (int64, error) {
	if i >= len(e.ops) {
		return 0, fmt.Errorf("dxil: %s has no operand %d", e.who, i)
	}
	v, ok := e.m.integer(e.ops[i])
	if !ok {
		return 0, fmt.Errorf("dxil: %s operand %d is not an integer", e.who, i)
	}
	return v, nil
}

func (e entry) uint(i int) (uint32, error) {
	v, err := e.int(i)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0xFFFFFFFF {
		return 0, fmt.Errorf("dxil: %s operand %d is out of range (%d)", e.who, i, v)
	}
	return uint32(v), nil
}

func (e entry) flag(i int) (bool, error) {
	v, err := e.int(i)
	return v != 0, err
}

//nolint:gocyclo,cyclop,funlen // one block per resource class
func (m *Module) resource(class Class, id int64, annotations map[uint32]int64) (Resource, error) {
	ops, ok := m.tuple(id)
	if !ok {
		return Resource{}, fmt.Errorf("dxil: %s entry is not a tuple", class)
	}
	e := entry{m: m, ops: ops, who: class.String() + " resource"}
	r := Resource{Class: class}
	var err error
	if r.ID, err = e.uint(0); err != nil {
		return r, err
	}
	if len(ops) > 2 {
		r.Name, _ = m.str(ops[2])
	}
	e.who = fmt.Sprintf("%s %q", class, r.Name)
	if r.Space, err = e.uint(3); err != nil {
		return r, err
	}
	if r.LowerBound, err = e.uint(4); err != nil {
		return r, err
	}
	size, err := e.int(5)
	if err != nil {
		return r, err
	}
	switch {
	case size == -1 || size == 0xFFFFFFFF:
		r.RangeSize = 0
	case size <= 0 || size > 0xFFFFFFFF:
		return r, fmt.Errorf("dxil: %s has range size %d", e.who, size)
	default:
		r.RangeSize = uint32(size)
	}

	var element uint32
	hasElement := false
	if len(ops) > 1 {
		if ty, ok := m.pointee(ops[1]); ok {
			if element, err = m.stripArrays(ty); err != nil {
				return r, fmt.Errorf("dxil: %s: %w", e.who, err)
			}
			hasElement = true
		}
	}

	var props int
	switch class {
	case ClassSRV, ClassUAV:
		kind, err := e.uint(6)
		if err != nil {
			return r, err
		}
		r.Kind = ResourceKind(kind)
		if class == ClassSRV {
			if r.SampleCount, err = e.uint(7); err != nil {
				return r, err
			}
			props = 8
		} else {
			if r.GloballyCoherent, err = e.flag(7); err != nil {
				return r, err
			}
			if r.HasCounter, err = e.flag(8); err != nil {
				return r, err
			}
			if r.RasterizerOrdered, err = e.flag(9); err != nil {
				return r, err
			}
			props = 10
		}
		if hasElement && r.Kind != ResourceRawBuffer && r.Kind != ResourceStructuredBuffer {
			r.ElementType, r.Components = m.elementType(element)
		}
	case ClassCBuffer:
		if r.Size, err = e.uint(6); err != nil {
			return r, err
		}
		props = 7
		if !hasElement {
			return r, fmt.Errorf("dxil: %s has no variable", e.who)
		}
		ann, ok := annotations[element]
		if !ok {
			ann, ok = annotations[m.annotatedByName(element, annotations)]
		}
		if !ok {
			return r, fmt.Errorf("dxil: %s has no layout annotation", e.who)
		}
		if r.Layout, err = m.layout(element, ann, annotations, 0); err != nil {
			return r, fmt.Errorf("dxil: %s: %w", e.who, err)
		}
		r.Layout.Name = r.Name
	case ClassSampler:
		kind, err := e.uint(6)
		if err != nil {
			return r, err
		}
		r.Comparison = kind == 1
		props = 7
	}

	if props < len(ops) && ops[props] >= 0 {
		pairs, ok := m.tuple(ops[props])
		if !ok {
			return r, fmt.Errorf("dxil: %s has malformed extended properties", e.who)
		}
		pe := entry{m: m, ops: pairs, who: e.who + " property"}
		for i := 0; i+1 < len(pairs); i += 2 {
			tag, err := pe.int(i)
			if err != nil {
				return r, err
			}
			switch tag {
			case propElementType:
				v, err := pe.uint(i + 1)
				if err != nil {
					return r, err
				}
				r.ElementType = CompType(v)
			case propStride:
				if r.Stride, err = pe.uint(i + 1); err != nil {
					return r, err
				}
			}
		}
	}
	return r, nil
}

// pointee returns the type a resource variable points to. The variable is
// a global, or an undef pointer once dxc has lowered the globals.
func (m *Module) pointee(id int64) (uint32, bool) {
	v, ok := m.value(id)
	if !ok {
		return 0, false
	}
	if v.Global {
		return v.Type, true
	}
	if t := m.Types[v.Type]; t.Kind == KindPointer {
		return t.Elem, true
	}
	return 0, false
}

// stripArrays returns the element type under any array levels.
func (m *Module) stripArrays(ty uint32) (uint32, error) {
	for range maxTypeNesting {
		if m.Types[ty].Kind != KindArray {
			return ty, nil
		}
		ty = m.Types[ty].Elem
	}
	return 0, fmt.Errorf("arrays nest deeper than %d levels", maxTypeNesting)
}

// elementType derives the component type and count of a typed resource
// from the first member of its handle struct. Extended properties take
// precedence over the derived type.
func (m *Module) elementType(handle uint32) (CompType, uint32) {
	t := m.Types[handle]
	if t.Kind != KindStruct || len(t.Fields) == 0 {
		return CompInvalid, 0
	}
	first := m.Types[t.Fields[0]]
	if first.Kind == KindVector {
		return m.scalar(first.Elem), uint32(first.Count)
	}
	if c := m.scalar(t.Fields[0]); c != CompInvalid {
		return c, 1
	}
	return CompInvalid, 0
}

// scalar maps a scalar IR type. Integers are reported signed; the
// component type annotation carries signedness.
func (m *Module) scalar(ty uint32) CompType {
	t := m.Types[ty]
	switch t.Kind {
	case KindHalf:
		return CompF16
	case KindFloat:
		return CompF32
	case KindDouble:
		return CompF64
	case KindInt:
		switch t.Width {
		case 1:
			return CompI1
		case 16:
			return CompI16
		case 32:
			return CompI32
		case 64:
			return CompI64
		}
	}
	return CompInvalid
}

// structAnnotations maps annotated struct types to their annotation node.
func (m *Module) structAnnotations() (map[uint32]int64, error) {
	out := make(map[uint32]int64)
	ops, _ := m.Named("dx.typeAnnotations")
	for _, id := range ops {
		list, ok := m.tuple(id)
		if !ok {
			return nil, errors.New("dxil: dx.typeAnnotations entry is not a tuple")
		}
		if len(list) == 0 {
			continue
		}
		if tag, ok := m.integer(list[0]); !ok || tag != annotationsStruct {
			continue
		}
		for i := 1; i+1 < len(list); i += 2 {
			v, ok := m.value(list[i])
			if !ok {
				return nil, errors.New("dxil: struct annotation without a type")
			}
			out[v.Type] = list[i+1]
		}
	}
	return out, nil
}

// annotatedByName finds an annotated struct with the same name as ty,
// ignoring the host layout prefix.
func (m *Module) annotatedByName(ty uint32, annotations map[uint32]int64) uint32 {
	name := strings.TrimPrefix(m.Types[ty].Name, "hostlayout.")
	if name == "" {
		return ty
	}
	for t := range annotations {
		if strings.TrimPrefix(m.Types[t].Name, "hostlayout.") == name {
			return t
		}
	}
	return ty
}

func (m *Module) layout(ty uint32, ann int64, annotations map[uint32]int64, depth int) (*StructLayout, error) {
	if depth > maxTypeNesting {
		return nil, fmt.Errorf("structs nest deeper than %d levels", maxTypeNesting)
	}
	st := m.Types[ty]
	if st.Kind != KindStruct {
		return nil, fmt.Errorf("annotated type %d is not a struct", ty)
	}
	ops, ok := m.tuple(ann)
	if !ok {
		return nil, fmt.Errorf("annotation of %q is not a tuple", st.Name)
	}
	a := entry{m: m, ops: ops, who: "annotation of " + st.Name}
	size, err := a.uint(0)
	if err != nil {
		return nil, err
	}
	if len(ops)-1 < len(st.Fields) {
		return nil, fmt.Errorf("annotation of %q has %d fields, want %d", st.Name, len(ops)-1, len(st.Fields))
	}

	l := &StructLayout{Name: strings.TrimPrefix(st.Name, "hostlayout."), Size: size}
	for i, fty := range st.Fields {
		f, err := m.field(fty, ops[i+1], annotations, depth)
		if err != nil {
			return nil, fmt.Errorf("field %d of %q: %w", i, st.Name, err)
		}
		l.Fields = append(l.Fields, f)
	}
	return l, nil
}

//nolint:gocyclo,cyclop // one case per annotation tag
func (m *Module) field(ty uint32, ann int64, annotations map[uint32]int64, depth int) (Field, error) {
	f := Field{Rows: 1, Columns: 1}
	pairs, ok := m.tuple(ann)
	if !ok {
		return f, errors.New("annotation is not a tuple")
	}
	e := entry{m: m, ops: pairs, who: "field annotation"}
	for i := 0; i+1 < len(pairs); i += 2 {
		tag, err := e.int(i)
		if err != nil {
			return f, err
		}
		switch tag {
		case fieldName:
			name, ok := m.str(pairs[i+1])
			if !ok {
				return f, errors.New("field name is not a string")
			}
			f.Name = name
		case fieldOffset:
			if f.Offset, err = e.uint(i + 1); err != nil {
				return f, err
			}
		case fieldCompType:
			v, err := e.uint(i + 1)
			if err != nil {
				return f, err
			}
			f.Type = CompType(v)
		case fieldMatrix:
			mat, ok := m.tuple(pairs[i+1])
			if !ok {
				return f, errors.New("matrix annotation is not a tuple")
			}
			me := entry{m: m, ops: mat, who: "matrix annotation"}
			if f.Rows, err = me.uint(0); err != nil {
				return f, err
			}
			if f.Columns, err = me.uint(1); err != nil {
				return f, err
			}
			if f.Rows == 0 || f.Columns == 0 || f.Rows > 4 || f.Columns > 4 {
				return f, fmt.Errorf("matrix is %dx%d", f.Rows, f.Columns)
			}
			f.Matrix = true
		}
	}

	if f.Matrix {
		// Matrices lower to a struct or array of row vectors, so the array
		// count follows from the scalar count.
		n, err := m.scalars(ty, 0)
		if err != nil {
			return f, err
		}
		per := uint64(f.Rows * f.Columns)
		if n%per != 0 {
			return f, fmt.Errorf("%d scalars do not form %dx%d matrices", n, f.Rows, f.Columns)
		}
		if n > per {
			f.ArrayCount = uint32(n / per)
		}
		return f, nil
	}

	count := uint64(1)
	arrayed := false
	for range maxTypeNesting {
		if m.Types[ty].Kind != KindArray {
			break
		}
		n := m.Types[ty].Count
		if n > 0xFFFFFFFF || count*n > 0xFFFFFFFF {
			return f, errors.New("array count overflows")
		}
		count *= n
		ty, arrayed = m.Types[ty].Elem, true
	}
	if arrayed {
		f.ArrayCount = uint32(count)
	}

	t := m.Types[ty]
	switch t.Kind {
	case KindStruct:
		ann, ok := annotations[ty]
		if !ok {
			ann, ok = annotations[m.annotatedByName(ty, annotations)]
		}
		if !ok {
			return f, fmt.Errorf("struct %q has no layout annotation", t.Name)
		}
		s, err := m.layout(ty, ann, annotations, depth+1)
		if err != nil {
			return f, err
		}
		f.Struct = s
	case KindVector:
		f.Columns = uint32(t.Count)
		if f.Type == CompInvalid {
			f.Type = m.scalar(t.Elem)
		}
	default:
		if f.Type == CompInvalid {
			f.Type = m.scalar(ty)
		}
	}
	if f.Type == CompInvalid && f.Struct == nil {
		return f, fmt.Errorf("field %q has no component type", f.Name)
	}
	return f, nil
}

// scalars counts the scalar components of a type.
func (m *Module) scalars(ty uint32, depth int) (uint64, error) {
	if depth > maxTypeNesting {
		return 0, fmt.Errorf("types nest deeper than %d levels", maxTypeNesting)
	}
	t := m.Types[ty]
	switch t.Kind {
	case KindArray, KindVector:
		n, err := m.scalars(t.Elem, depth+1)
		if err != nil {
			return 0, err
		}
		if t.Count > 0xFFFFFFFF || n*t.Count > 0xFFFFFFFF {
			return 0, errors.New("scalar count overflows")
		}
		return n * t.Count, nil
	case KindStruct:
		var total uint64
		for _, f := range t.Fields {
			n, err := m.scalars(f, depth+1)
			if err != nil {
				return 0, err
			}
			total += n
			if total > 0xFFFFFFFF {
				return 0, errors.New("scalar count overflows")
			}
		}
		return total, nil
	}
	return 1, nil
}
