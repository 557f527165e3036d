// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"bytes"
	"testing"
)

func TestParseProgram(t *testing.T) {
	bitcode := NewModuleBuilder().Bytes()
	part := EncodeProgram(ShaderCompute, 6, 2, bitcode)

	p, err := ParseProgram(part)
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	if p.Kind != ShaderCompute || p.Major != 6 || p.Minor != 2 {
		t.Errorf("program = cs_%d_%d kind %d, want cs_6_2", p.Major, p.Minor, p.Kind)
	}
	if !bytes.Equal(p.Bitcode, bitcode) {
		t.Error("bitcode differs from the encoded module")
	}

	tests := []struct {
		name string
		part []byte
	}{
		{"too small", part[:programHeaderSize-1]},
		{"wrong magic", append([]byte{0, 0, 0, 0, 0, 0, 0, 0, 'D', 'X', 'B', 'C'}, part[12:]...)},
		{"bitcode past the end", part[:programHeaderSize+4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseProgram(tt.part); err == nil {
				t.Error("ParseProgram succeeded")
			}
		})
	}
}

func TestParse_Values(t *testing.T) {
	b := NewModuleBuilder()
	i32 := b.Int(32)
	f4 := b.Vector(4, b.Float())
	handle := b.Struct("class.Texture2D<vector<float, 4> >", f4)
	g := b.Global(b.Array(3, handle))
	neg := b.Const(i32, -1)
	b.Named("test.values", b.Node(b.Value(g), b.Value(neg), NullMD, b.String("label")))

	m, err := Parse(b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ht := m.Types[handle]
	if ht.Kind != KindStruct || ht.Name != "class.Texture2D<vector<float, 4> >" || len(ht.Fields) != 1 {
		t.Errorf("handle type = %+v", ht)
	}
	if v := m.Types[f4]; v.Kind != KindVector || v.Count != 4 || m.Types[v.Elem].Kind != KindFloat {
		t.Errorf("vector type = %+v", v)
	}

	ops, ok := m.Named("test.values")
	if !ok || len(ops) != 1 {
		t.Fatalf("named node = %v, %t", ops, ok)
	}
	tuple, ok := m.tuple(ops[0])
	if !ok || len(tuple) != 4 {
		t.Fatalf("tuple = %v, %t", tuple, ok)
	}
	gv, ok := m.value(tuple[0])
	if !ok || !gv.Global || m.Types[gv.Type].Kind != KindArray {
		t.Errorf("global = %+v, %t", gv, ok)
	}
	if v, ok := m.integer(tuple[1]); !ok || v != -1 {
		t.Errorf("constant = %d, %t; want -1", v, ok)
	}
	if tuple[2] != -1 {
		t.Errorf("null operand = %d, want -1", tuple[2])
	}
	if s, ok := m.str(tuple[3]); !ok || s != "label" {
		t.Errorf("string = %q, %t", s, ok)
	}
}

func TestParse_PointerTypedGlobal(t *testing.T) {
	code := stream(func(s *streamWriter) {
		s.enter(blockModule, 3)
		s.enter(blockType, 4)
		s.record(typeNumEntry, 2)
		s.record(typeFloat)
		s.record(typePointer, 0, 0)
		s.exit()
		// No explicit-type flag: operand 0 is the pointer type.
		s.record(moduleGlobalVar, 1, 0, 0, 0, 0, 0)
		s.record(moduleFunction, 0)
		s.exit()
	})

	m, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(m.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(m.Values))
	}
	if v := m.Values[0]; !v.Global || v.Type != 0 {
		t.Errorf("global = %+v, want the float pointee", v)
	}
	if m.Values[1].Global {
		t.Error("function parsed as a global")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"no module", stream(func(s *streamWriter) {
			s.enter(blockMetadata, 3)
			s.exit()
		})},
		{"type out of range", func() []byte {
			b := NewModuleBuilder()
			b.Struct("broken", TypeID(99))
			return b.Bytes()
		}()},
		{"global of non-pointer type", stream(func(s *streamWriter) {
			s.enter(blockModule, 3)
			s.enter(blockType, 4)
			s.record(typeFloat)
			s.exit()
			s.record(moduleGlobalVar, 0, 0)
			s.exit()
		})},
		{"constant before SETTYPE", stream(func(s *streamWriter) {
			s.enter(blockModule, 3)
			s.enter(blockConstants, 4)
			s.record(constInteger, 2)
			s.exit()
			s.exit()
		})},
		{"named node without a name", stream(func(s *streamWriter) {
			s.enter(blockModule, 3)
			s.enter(blockMetadata, 3)
			s.record(mdNamedNode, 0)
			s.exit()
			s.exit()
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.code); err == nil {
				t.Error("Parse succeeded")
			}
		})
	}
}
