// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// bitWriter appends to an LLVM bitstream, least significant bit first.
type bitWriter struct {
	data []byte
	pos  uint64
}

func (w *bitWriter) write(v uint64, width uint) {
	for i := uint(0); i < width; i++ {
		if w.pos%8 == 0 {
			w.data = append(w.data, 0)
		}
		if v>>i&1 != 0 {
			w.data[w.pos/8] |= 1 << (w.pos % 8)
		}
		w.pos++
	}
}

func (w *bitWriter) vbr(v uint64, width uint) {
	hi := uint64(1) << (width - 1)
	for v >= hi {
		w.write(v&(hi-1)|hi, width)
		v >>= width - 1
	}
	w.write(v, width)
}

func (w *bitWriter) align32() {
	for w.pos%32 != 0 {
		w.write(0, 1)
	}
}

// streamWriter tracks the abbreviation width of the open blocks.
type streamWriter struct {
	bits   bitWriter
	widths []uint
	starts []uint64
}

func (s *streamWriter) width() uint {
	if len(s.widths) == 0 {
		return 2
	}
	return s.widths[len(s.widths)-1]
}

func (s *streamWriter) enter(id uint32, width uint) {
	s.bits.write(abbrevEnterSubblock, s.width())
	s.bits.vbr(uint64(id), 8)
	s.bits.vbr(uint64(width), 4)
	s.bits.align32()
	s.bits.write(0, 32)
	s.widths = append(s.widths, width)
	s.starts = append(s.starts, s.bits.pos)
}

func (s *streamWriter) exit() {
	s.bits.write(abbrevEndBlock, s.width())
	s.bits.align32()
	start := s.starts[len(s.starts)-1]
	words := uint32((s.bits.pos - start) / 32)
	binary.LittleEndian.PutUint32(s.bits.data[start/8-4:], words)
	s.widths = s.widths[:len(s.widths)-1]
	s.starts = s.starts[:len(s.starts)-1]
}

func (s *streamWriter) record(code uint32, ops ...uint64) {
	s.bits.write(abbrevUnabbreviated, s.width())
	s.bits.vbr(uint64(code), 6)
	s.bits.vbr(uint64(len(ops)), 6)
	for _, op := range ops {
		s.bits.vbr(op, 6)
	}
}

// define writes an abbreviation definition.
func (s *streamWriter) define(a abbrev) {
	s.bits.write(abbrevDefine, s.width())
	s.bits.vbr(uint64(len(a)), 5)
	for _, op := range a {
		if op.kind == opLiteral {
			s.bits.write(1, 1)
			s.bits.vbr(op.value, 8)
			continue
		}
		s.bits.write(0, 1)
		switch op.kind {
		case opFixed:
			s.bits.write(1, 3)
			s.bits.vbr(op.value, 5)
		case opVBR:
			s.bits.write(2, 3)
			s.bits.vbr(op.value, 5)
		case opArray:
			s.bits.write(3, 3)
		case opChar6:
			s.bits.write(4, 3)
		case opBlob:
			s.bits.write(5, 3)
		}
	}
}

// abbreviated writes a record through abbreviation id. The code is the
// leading literal of a and is not repeated in vals.
func (s *streamWriter) abbreviated(id uint64, a abbrev, vals []uint64) {
	s.bits.write(id, s.width())
	i := 0
	for j := 1; j < len(a); j++ {
		op := a[j]
		switch op.kind {
		case opArray:
			elem := a[j+1]
			s.bits.vbr(uint64(len(vals)-i), 6)
			for ; i < len(vals); i++ {
				s.scalar(elem, vals[i])
			}
			j++
		default:
			s.scalar(op, vals[i])
			i++
		}
	}
}

func (s *streamWriter) scalar(op abbrevOp, v uint64) {
	switch op.kind {
	case opFixed:
		s.bits.write(v, uint(op.value))
	case opVBR:
		s.bits.vbr(v, uint(op.value))
	case opChar6:
		s.bits.write(uint64(strings.IndexByte(char6, byte(v))), 6)
	}
}

// Abbreviations the builder emits. The metadata string abbreviation is
// registered through BLOCKINFO, the others locally.
var (
	stringAbbrev = abbrev{{kind: opLiteral, value: mdString}, {kind: opArray}, {kind: opFixed, value: 8}}
	nameAbbrev   = abbrev{{kind: opLiteral, value: mdName}, {kind: opArray}, {kind: opFixed, value: 8}}
	structAbbrev = abbrev{{kind: opLiteral, value: typeStructName}, {kind: opArray}, {kind: opChar6}}
	// The address space is a zero-width field.
	pointerAbbrev = abbrev{{kind: opLiteral, value: typePointer}, {kind: opVBR, value: 8}, {kind: opFixed}}
)

func isChar6(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(char6, s[i]) < 0 {
			return false
		}
	}
	return true
}

// TypeID identifies a type added to a ModuleBuilder.
type TypeID uint32

// ValueRef identifies a global or constant added to a ModuleBuilder.
type ValueRef struct {
	global bool
	index  int
}

// MD identifies a metadata node added to a ModuleBuilder.
type MD int64

// NullMD is an absent metadata operand.
const NullMD MD = -1

type typeRecord struct {
	code uint32
	ops  []uint64
	name string
}

type constRecord struct {
	ty    TypeID
	undef bool
	v     int64
}

type mdRecord struct {
	code  uint32
	str   string
	value ValueRef
	ops   []MD
}

type namedRecord struct {
	name string
	ops  []MD
}

// ModuleBuilder assembles a minimal bitcode module with globals, constants
// and metadata. It writes the subset of the format Parse reads.
type ModuleBuilder struct {
	types   []typeRecord
	typeIDs map[string]TypeID
	globals []TypeID
	consts  []constRecord
	ints    map[[2]int64]ValueRef
	md      []mdRecord
	named   []namedRecord
}

// NewModuleBuilder creates an empty module builder.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{typeIDs: make(map[string]TypeID), ints: make(map[[2]int64]ValueRef)}
}

func (b *ModuleBuilder) addType(r typeRecord) TypeID {
	key := fmt.Sprint(r.code, r.ops)
	if r.name == "" && r.code != typeStructAnon {
		if id, ok := b.typeIDs[key]; ok {
			return id
		}
	}
	id := TypeID(len(b.types))
	b.types = append(b.types, r)
	if r.name == "" {
		b.typeIDs[key] = id
	}
	return id
}

// Int adds an integer type of width bits.
func (b *ModuleBuilder) Int(width uint32) TypeID {
	return b.addType(typeRecord{code: typeInteger, ops: []uint64{uint64(width)}})
}

// Half adds the 16-bit float type.
func (b *ModuleBuilder) Half() TypeID { return b.addType(typeRecord{code: typeHalf}) }

// Float adds the 32-bit float type.
func (b *ModuleBuilder) Float() TypeID { return b.addType(typeRecord{code: typeFloat}) }

// Double adds the 64-bit float type.
func (b *ModuleBuilder) Double() TypeID { return b.addType(typeRecord{code: typeDouble}) }

// Vector adds an n-element vector type.
func (b *ModuleBuilder) Vector(n uint32, elem TypeID) TypeID {
	return b.addType(typeRecord{code: typeVector, ops: []uint64{uint64(n), uint64(elem)}})
}

// Array adds an n-element array type.
func (b *ModuleBuilder) Array(n uint64, elem TypeID) TypeID {
	return b.addType(typeRecord{code: typeArray, ops: []uint64{n, uint64(elem)}})
}

// Pointer adds a pointer type in address space 0.
func (b *ModuleBuilder) Pointer(elem TypeID) TypeID {
	return b.addType(typeRecord{code: typePointer, ops: []uint64{uint64(elem)}})
}

// Struct adds a struct type. An empty name adds a literal struct.
func (b *ModuleBuilder) Struct(name string, fields ...TypeID) TypeID {
	ops := []uint64{0}
	for _, f := range fields {
		ops = append(ops, uint64(f))
	}
	code := uint32(typeStructNamed)
	if name == "" {
		code = typeStructAnon
	}
	return b.addType(typeRecord{code: code, ops: ops, name: name})
}

// Global adds a global variable whose value has type ty.
func (b *ModuleBuilder) Global(ty TypeID) ValueRef {
	b.Pointer(ty)
	b.globals = append(b.globals, ty)
	return ValueRef{global: true, index: len(b.globals) - 1}
}

// Const adds an integer constant of type ty. Equal constants share a value.
func (b *ModuleBuilder) Const(ty TypeID, v int64) ValueRef {
	key := [2]int64{int64(ty), v}
	if ref, ok := b.ints[key]; ok {
		return ref
	}
	b.consts = append(b.consts, constRecord{ty: ty, v: v})
	ref := ValueRef{index: len(b.consts) - 1}
	b.ints[key] = ref
	return ref
}

// Undef adds an undefined constant of type ty.
func (b *ModuleBuilder) Undef(ty TypeID) ValueRef {
	b.consts = append(b.consts, constRecord{ty: ty, undef: true})
	return ValueRef{index: len(b.consts) - 1}
}

func (b *ModuleBuilder) addMD(r mdRecord) MD {
	b.md = append(b.md, r)
	return MD(len(b.md) - 1)
}

// String adds a metadata string.
func (b *ModuleBuilder) String(s string) MD {
	return b.addMD(mdRecord{code: mdString, str: s})
}

// Value adds a metadata wrapper around a value.
func (b *ModuleBuilder) Value(v ValueRef) MD {
	return b.addMD(mdRecord{code: mdValue, value: v})
}

// Uint adds a metadata wrapper around an i32 constant.
func (b *ModuleBuilder) Uint(v int64) MD {
	return b.Value(b.Const(b.Int(32), v))
}

// Node adds a metadata tuple.
func (b *ModuleBuilder) Node(ops ...MD) MD {
	return b.addMD(mdRecord{code: mdNode, ops: ops})
}

// Named adds a named metadata node.
func (b *ModuleBuilder) Named(name string, ops ...MD) {
	b.named = append(b.named, namedRecord{name: name, ops: ops})
}

func (b *ModuleBuilder) valueID(v ValueRef) uint64 {
	if v.global {
		return uint64(v.index)
	}
	return uint64(len(b.globals) + v.index)
}

func (b *ModuleBuilder) valueType(v ValueRef) TypeID {
	if v.global {
		return b.typeIDs[fmt.Sprint(uint32(typePointer), []uint64{uint64(b.globals[v.index])})]
	}
	return b.consts[v.index].ty
}

// Bytes encodes the module as bitcode.
func (b *ModuleBuilder) Bytes() []byte {
	s := &streamWriter{}
	s.bits.data = []byte{'B', 'C', 0xC0, 0xDE}
	s.bits.pos = 32

	s.enter(blockModule, 3)
	s.enter(blockInfo, 2)
	s.record(blockInfoSetBID, blockMetadata)
	s.define(stringAbbrev)
	s.exit()

	s.enter(blockType, 4)
	s.define(structAbbrev)
	s.define(pointerAbbrev)
	s.record(typeNumEntry, uint64(len(b.types)))
	for _, t := range b.types {
		switch {
		case t.code == typePointer:
			s.abbreviated(firstApplication+1, pointerAbbrev, []uint64{t.ops[0], 0})
			continue
		case t.name != "" && isChar6(t.name):
			s.abbreviated(firstApplication, structAbbrev, chars(t.name))
		case t.name != "":
			s.record(typeStructName, chars(t.name)...)
		}
		s.record(t.code, t.ops...)
	}
	s.exit()

	for _, g := range b.globals {
		// [type, explicit type | constant, initializer, linkage, alignment, section]
		s.record(moduleGlobalVar, uint64(g), 3, 0, 0, 0, 0)
	}

	if len(b.consts) > 0 {
		s.enter(blockConstants, 4)
		cur := TypeID(^uint32(0))
		for _, c := range b.consts {
			if c.ty != cur {
				s.record(constSetType, uint64(c.ty))
				cur = c.ty
			}
			if c.undef {
				s.record(constUndef)
				continue
			}
			s.record(constInteger, rotate(c.v))
		}
		s.exit()
	}

	s.enter(blockMetadata, 3)
	s.define(nameAbbrev)
	for _, r := range b.md {
		switch r.code {
		case mdString:
			// First BLOCKINFO abbreviation.
			s.abbreviated(firstApplication, stringAbbrev, chars(r.str))
		case mdValue:
			s.record(mdValue, uint64(b.valueType(r.value)), b.valueID(r.value))
		case mdNode:
			ops := make([]uint64, len(r.ops))
			for i, op := range r.ops {
				ops[i] = uint64(op + 1)
			}
			s.record(mdNode, ops...)
		}
	}
	for _, n := range b.named {
		s.abbreviated(firstApplication+1, nameAbbrev, chars(n.name))
		ops := make([]uint64, len(n.ops))
		for i, op := range n.ops {
			ops[i] = uint64(op)
		}
		s.record(mdNamedNode, ops...)
	}
	s.exit()

	s.exit()
	return s.bits.data
}

func chars(s string) []uint64 {
	out := make([]uint64, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = uint64(s[i])
	}
	return out
}

// rotate encodes a signed value for a VBR operand.
func rotate(v int64) uint64 {
	if v < 0 {
		return uint64(-v)<<1 | 1
	}
	return uint64(v) << 1
}

// AddResources declares rs in dx.resources and the layouts of constant
// buffers in dx.typeAnnotations. Each resource variable is an undef pointer
// to its handle type, as in dxc output. Resources are grouped by class in
// the order given.
func (b *ModuleBuilder) AddResources(rs []Resource) {
	var lists [4][]MD
	var annotations []MD
	annotated := make(map[*StructLayout]TypeID)

	for _, r := range rs {
		var handle TypeID
		switch r.Class {
		case ClassCBuffer:
			handle = b.layoutType(r.Layout, annotated, &annotations)
		case ClassSampler:
			handle = b.Struct("struct.SamplerState", b.Int(32))
		default:
			if r.Kind == ResourceStructuredBuffer || r.Kind == ResourceRawBuffer {
				handle = b.Struct(fmt.Sprintf("struct.Buffer%d", r.ID), b.Int(32))
				break
			}
			elem := b.compType(r.ElementType)
			if r.Components > 1 {
				elem = b.Vector(r.Components, elem)
			}
			handle = b.Struct(fmt.Sprintf("class.Resource%d", r.ID), elem)
		}
		variable := handle
		if r.RangeSize != 1 {
			variable = b.Array(uint64(r.RangeSize), handle)
		}

		rangeSize := int64(r.RangeSize)
		if r.RangeSize == 0 {
			rangeSize = -1
		}
		ops := []MD{
			b.Uint(int64(r.ID)), b.Value(b.Undef(b.Pointer(variable))), b.String(r.Name),
			b.Uint(int64(r.Space)), b.Uint(int64(r.LowerBound)), b.Uint(rangeSize),
		}
		var props []MD
		switch r.Class {
		case ClassSRV, ClassUAV:
			ops = append(ops, b.Uint(int64(r.Kind)))
			if r.Class == ClassSRV {
				ops = append(ops, b.Uint(int64(r.SampleCount)))
			} else {
				ops = append(ops, b.flag(r.GloballyCoherent), b.flag(r.HasCounter), b.flag(r.RasterizerOrdered))
			}
			if r.ElementType != CompInvalid {
				props = append(props, b.Uint(propElementType), b.Uint(int64(r.ElementType)))
			}
			if r.Stride != 0 {
				props = append(props, b.Uint(propStride), b.Uint(int64(r.Stride)))
			}
		case ClassCBuffer:
			ops = append(ops, b.Uint(int64(r.Size)))
		case ClassSampler:
			kind := int64(0)
			if r.Comparison {
				kind = 1
			}
			ops = append(ops, b.Uint(kind))
		}
		if len(props) > 0 {
			ops = append(ops, b.Node(props...))
		} else {
			ops = append(ops, NullMD)
		}
		lists[r.Class] = append(lists[r.Class], b.Node(ops...))
	}

	var classes [4]MD
	for i, l := range lists {
		classes[i] = NullMD
		if len(l) > 0 {
			classes[i] = b.Node(l...)
		}
	}
	b.Named("dx.resources", b.Node(classes[:]...))
	if len(annotations) > 0 {
		b.Named("dx.typeAnnotations", b.Node(append([]MD{b.Uint(annotationsStruct)}, annotations...)...))
	}
}

func (b *ModuleBuilder) flag(v bool) MD {
	if v {
		return b.Value(b.Const(b.Int(1), 1))
	}
	return b.Value(b.Const(b.Int(1), 0))
}

// compType adds the IR scalar type that carries c.
func (b *ModuleBuilder) compType(c CompType) TypeID {
	switch c {
	case CompI1:
		return b.Int(1)
	case CompI16, CompU16:
		return b.Int(16)
	case CompI64, CompU64:
		return b.Int(64)
	case CompF16, CompSNormF16, CompUNormF16:
		return b.Half()
	case CompF32, CompSNormF32, CompUNormF32:
		return b.Float()
	case CompF64, CompSNormF64, CompUNormF64:
		return b.Double()
	}
	return b.Int(32)
}

// layoutType adds the struct type of l and its annotation, nested structs
// first.
func (b *ModuleBuilder) layoutType(l *StructLayout, annotated map[*StructLayout]TypeID, annotations *[]MD) TypeID {
	if ty, ok := annotated[l]; ok {
		return ty
	}
	fields := make([]TypeID, len(l.Fields))
	nodes := []MD{b.Uint(int64(l.Size))}
	for i, f := range l.Fields {
		var ty TypeID
		switch {
		case f.Struct != nil:
			ty = b.layoutType(f.Struct, annotated, annotations)
		case f.Matrix:
			row := b.Vector(f.Columns, b.compType(f.Type))
			ty = b.Struct(fmt.Sprintf("class.matrix.%d.%d.%d", f.Type, f.Rows, f.Columns), b.Array(uint64(f.Rows), row))
		case f.Columns > 1:
			ty = b.Vector(f.Columns, b.compType(f.Type))
		default:
			ty = b.compType(f.Type)
		}
		if f.ArrayCount > 0 {
			ty = b.Array(uint64(f.ArrayCount), ty)
		}
		fields[i] = ty

		pairs := []MD{b.Uint(fieldName), b.String(f.Name), b.Uint(fieldOffset), b.Uint(int64(f.Offset))}
		if f.Matrix {
			// Orientation 2 is column major.
			pairs = append(pairs, b.Uint(fieldMatrix), b.Node(b.Uint(int64(f.Rows)), b.Uint(int64(f.Columns)), b.Uint(2)))
		}
		if f.Struct == nil {
			pairs = append(pairs, b.Uint(fieldCompType), b.Uint(int64(f.Type)))
		}
		nodes = append(nodes, b.Node(pairs...))
	}
	ty := b.Struct("hostlayout."+l.Name, fields...)
	annotated[l] = ty
	*annotations = append(*annotations, b.Value(b.Undef(ty)), b.Node(nodes...))
	return ty
}
