// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"errors"
	"fmt"
)

// Module record codes.
const (
	moduleGlobalVar = 7
	moduleFunction  = 8
	moduleAliasOld  = 9
	moduleAlias     = 14
)

// Type record codes.
const (
	typeNumEntry    = 1
	typeVoid        = 2
	typeFloat       = 3
	typeDouble      = 4
	typeLabel       = 5
	typeOpaque      = 6
	typeInteger     = 7
	typePointer     = 8
	typeHalf        = 10
	typeArray       = 11
	typeVector      = 12
	typeMetadata    = 16
	typeStructAnon  = 18
	typeStructName  = 19
	typeStructNamed = 20
	typeFunction    = 21
)

// Constant record codes.
const (
	constSetType = 1
	constNull    = 2
	constUndef   = 3
	constInteger = 4
)

// Metadata record codes.
const (
	mdString       = 1
	mdValue        = 2
	mdNode         = 3
	mdName         = 4
	mdDistinctNode = 5
	mdKind         = 6
	mdNamedNode    = 10
	mdAttachment   = 11
	mdStrings      = 35
)

// TypeKind classifies an IR type.
type TypeKind uint8

// Type kinds. Types reflection never inspects are KindOther.
const (
	KindOther TypeKind = iota
	KindVoid
	KindInt
	KindHalf
	KindFloat
	KindDouble
	KindPointer
	KindArray
	KindVector
	KindStruct
	KindFunction
	KindMetadata
)

// Type is one entry of the module type table.
type Type struct {
	Kind TypeKind
	// Width is the bit width of an integer.
	Width uint32
	// Count is the element count of an array or vector.
	Count uint64
	// Elem is the pointee, array or vector element type.
	Elem uint32
	// Fields are the member types of a struct.
	Fields []uint32
	// Name is the name of a named struct.
	Name string
}

// Value is a module-level value. Globals come first, then constants.
type Value struct {
	Type uint32
	// Global marks global variables. Their Type is the pointee type.
	Global bool
	// Int is set for integer constants, with the sign-extended value in I.
	Int bool
	I   int64
}

type nodeKind uint8

const (
	nodeOther nodeKind = iota
	nodeString
	nodeValue
	nodeTuple
)

// node is one metadata entry. Tuple operands are metadata ids, -1 for null.
type node struct {
	kind  nodeKind
	str   string
	value uint32
	ops   []int64
}

// Module is the reflection-relevant part of a DXIL bitcode module: its type
// table, module-level values and module-level metadata. Function bodies are
// not decoded.
type Module struct {
	Types  []Type
	Values []Value

	metadata []node
	named    map[string][]int64
}

// Parse decodes a bitcode module.
func Parse(bitcode []byte) (*Module, error) {
	blocks, err := readBitcode(bitcode)
	if err != nil {
		return nil, err
	}
	var mod *block
	for _, b := range blocks {
		if b.id == blockModule {
			mod = b
			break
		}
	}
	if mod == nil {
		return nil, errors.New("dxil: bitcode has no module block")
	}

	m := &Module{named: make(map[string][]int64)}
	if t := mod.child(blockType); t != nil {
		if err := m.readTypes(t); err != nil {
			return nil, err
		}
	}
	if err := m.readGlobals(mod); err != nil {
		return nil, err
	}
	for _, b := range mod.blocks {
		switch b.id {
		case blockConstants:
			if err := m.readConstants(b); err != nil {
				return nil, err
			}
		case blockMetadata:
			if err := m.readMetadata(b); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Module) typeID(v uint64) (uint32, error) {
	if v >= uint64(len(m.Types)) {
		return 0, fmt.Errorf("dxil: type %d out of range", v)
	}
	return uint32(v), nil
}

func (m *Module) readTypes(b *block) error {
	var pendingName string
	for _, r := range b.records {
		t := Type{}
		op := func(i int) uint64 {
			if i < len(r.ops) {
				return r.ops[i]
			}
			return 0
		}
		switch r.code {
		case typeNumEntry:
			continue
		case typeStructName:
			pendingName = text(r.ops)
			continue
		case typeVoid:
			t.Kind = KindVoid
		case typeHalf:
			t.Kind = KindHalf
		case typeFloat:
			t.Kind = KindFloat
		case typeDouble:
			t.Kind = KindDouble
		case typeMetadata:
			t.Kind = KindMetadata
		case typeInteger:
			t.Kind, t.Width = KindInt, uint32(op(0))
		case typePointer:
			t.Kind, t.Elem = KindPointer, uint32(op(0))
		case typeArray, typeVector:
			t.Kind, t.Count, t.Elem = KindArray, op(0), uint32(op(1))
			if r.code == typeVector {
				t.Kind = KindVector
			}
		case typeStructAnon, typeStructNamed:
			t.Kind = KindStruct
			if len(r.ops) > 0 {
				t.Fields = make([]uint32, len(r.ops)-1)
				for i, f := range r.ops[1:] {
					t.Fields[i] = uint32(f)
				}
			}
			if r.code == typeStructNamed {
				t.Name, pendingName = pendingName, ""
			}
		case typeOpaque:
			t.Name, pendingName = pendingName, ""
		case typeFunction:
			t.Kind = KindFunction
		case typeLabel:
		}
		m.Types = append(m.Types, t)
	}

	// Element references may point forward, so check them once the table is
	// complete.
	for i, t := range m.Types {
		refs := t.Fields
		if t.Kind == KindPointer || t.Kind == KindArray || t.Kind == KindVector {
			refs = []uint32{t.Elem}
		}
		for _, ref := range refs {
			if _, err := m.typeID(uint64(ref)); err != nil {
				return fmt.Errorf("dxil: type %d: %w", i, err)
			}
		}
	}
	return nil
}

func (m *Module) readGlobals(mod *block) error {
	for _, r := range mod.records {
		switch r.code {
		case moduleGlobalVar:
			if len(r.ops) < 2 {
				return errors.New("dxil: short global variable record")
			}
			ty, err := m.typeID(r.ops[0])
			if err != nil {
				return err
			}
			// Without the explicit-type flag the record holds the pointer type.
			if r.ops[1]&2 == 0 {
				if m.Types[ty].Kind != KindPointer {
					return fmt.Errorf("dxil: global of non-pointer type %d", ty)
				}
				ty = m.Types[ty].Elem
			}
			m.Values = append(m.Values, Value{Type: ty, Global: true})
		case moduleFunction, moduleAlias, moduleAliasOld:
			if len(r.ops) < 1 {
				return errors.New("dxil: short function record")
			}
			ty, err := m.typeID(r.ops[0])
			if err != nil {
				return err
			}
			m.Values = append(m.Values, Value{Type: ty})
		}
	}
	return nil
}

func (m *Module) readConstants(b *block) error {
	var cur uint32
	typed := false
	for _, r := range b.records {
		if r.code == constSetType {
			if len(r.ops) < 1 {
				return errors.New("dxil: short SETTYPE record")
			}
			ty, err := m.typeID(r.ops[0])
			if err != nil {
				return err
			}
			cur, typed = ty, true
			continue
		}
		if !typed {
			return errors.New("dxil: constant before SETTYPE")
		}
		v := Value{Type: cur}
		switch r.code {
		case constInteger:
			if len(r.ops) < 1 {
				return errors.New("dxil: short integer constant")
			}
			v.Int, v.I = true, signed(r.ops[0])
		case constNull:
			v.Int = m.Types[cur].Kind == KindInt
		case constUndef:
		}
		m.Values = append(m.Values, v)
	}
	return nil
}

// signed decodes a sign-rotated VBR operand.
func signed(v uint64) int64 {
	if v&1 != 0 {
		return -int64(v >> 1)
	}
	return int64(v >> 1)
}

func (m *Module) readMetadata(b *block) error {
	var pendingName string
	havePending := false
	for _, r := range b.records {
		switch r.code {
		case mdName:
			pendingName, havePending = text(r.ops), true
			continue
		case mdNamedNode:
			if !havePending {
				return errors.New("dxil: named metadata without a name")
			}
			ids := make([]int64, len(r.ops))
			for i, op := range r.ops {
				ids[i] = int64(op)
			}
			m.named[pendingName] = ids
			havePending = false
			continue
		case mdKind, mdAttachment:
			continue
		case mdStrings:
			return errors.New("dxil: bulk metadata strings are not supported")
		}

		n := node{}
		switch r.code {
		case mdString:
			n.kind, n.str = nodeString, text(r.ops)
		case mdValue:
			if len(r.ops) < 2 {
				return errors.New("dxil: short metadata value")
			}
			n.kind, n.value = nodeValue, uint32(r.ops[1])
			if r.ops[1] >= uint64(len(m.Values)) {
				// Function-local values never reach module metadata.
				n.kind = nodeOther
			}
		case mdNode, mdDistinctNode:
			n.kind = nodeTuple
			n.ops = make([]int64, len(r.ops))
			for i, op := range r.ops {
				n.ops[i] = int64(op) - 1
			}
		}
		m.metadata = append(m.metadata, n)
	}
	return nil
}

// Named returns the operands of a named metadata node.
func (m *Module) Named(name string) ([]int64, bool) {
	ids, ok := m.named[name]
	return ids, ok
}

func (m *Module) node(id int64) (*node, bool) {
	if id < 0 || id >= int64(len(m.metadata)) {
		return nil, false
	}
	return &m.metadata[id], true
}

// tuple returns the operands of a tuple node.
func (m *Module) tuple(id int64) ([]int64, bool) {
	n, ok := m.node(id)
	if !ok || n.kind != nodeTuple {
		return nil, false
	}
	return n.ops, true
}

// integer returns the value of an integer constant wrapped in metadata.
func (m *Module) integer(id int64) (int64, bool) {
	n, ok := m.node(id)
	if !ok || n.kind != nodeValue {
		return 0, false
	}
	v := m.Values[n.value]
	return v.I, v.Int
}

func (m *Module) str(id int64) (string, bool) {
	n, ok := m.node(id)
	if !ok || n.kind != nodeString {
		return "", false
	}
	return n.str, true
}

// value returns the value wrapped in a metadata node.
func (m *Module) value(id int64) (Value, bool) {
	n, ok := m.node(id)
	if !ok || n.kind != nodeValue {
		return Value{}, false
	}
	return m.Values[n.value], true
}
