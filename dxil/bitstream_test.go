// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"bytes"
	"testing"
)

// stream writes a bitcode stream through f.
func stream(f func(s *streamWriter)) []byte {
	s := &streamWriter{}
	s.bits.data = []byte{'B', 'C', 0xC0, 0xDE}
	s.bits.pos = 32
	f(s)
	return s.bits.data
}

func TestBitReader(t *testing.T) {
	var w bitWriter
	w.write(0x5, 3)
	w.vbr(1000, 6)
	w.write(0xABCD, 16)
	w.vbr(7, 4)
	w.align32()
	w.write(0xDEADBEEF, 32)

	r := bitReader{data: w.data}
	checks := []struct {
		name string
		read func() (uint64, error)
		want uint64
	}{
		{"fixed", func() (uint64, error) { return r.read(3) }, 0x5},
		{"vbr6", func() (uint64, error) { return r.vbr(6) }, 1000},
		{"cross byte", func() (uint64, error) { return r.read(16) }, 0xABCD},
		{"vbr4", func() (uint64, error) { return r.vbr(4) }, 7},
		{"aligned word", func() (uint64, error) {
			if err := r.align32(); err != nil {
				return 0, err
			}
			return r.read(32)
		}, 0xDEADBEEF},
	}
	for _, c := range checks {
		got, err := c.read()
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s = %#x, want %#x", c.name, got, c.want)
		}
	}
	if _, err := r.read(1); err == nil {
		t.Error("read past the end succeeded")
	}
}

func TestReadBitcode_Abbreviations(t *testing.T) {
	blob := abbrev{{kind: opLiteral, value: 20}, {kind: opVBR, value: 6}, {kind: opBlob}}
	code := stream(func(s *streamWriter) {
		s.enter(blockModule, 3)
		s.enter(blockInfo, 2)
		s.record(blockInfoSetBID, blockMetadata)
		s.define(stringAbbrev)
		s.exit()

		s.enter(blockMetadata, 3)
		s.define(blob)
		s.abbreviated(firstApplication, stringAbbrev, chars("dx.resources"))
		s.bits.write(firstApplication+1, s.width())
		s.bits.vbr(7, 6)
		s.bits.vbr(3, 6)
		s.bits.align32()
		for _, c := range []byte("abc") {
			s.bits.write(uint64(c), 8)
		}
		s.bits.align32()
		s.exit()

		s.enter(blockType, 4)
		s.define(pointerAbbrev)
		s.abbreviated(firstApplication, pointerAbbrev, []uint64{300, 0})
		s.exit()

		// Function bodies are skipped by length.
		s.enter(blockFunction, 4)
		s.record(1, 1, 2, 3)
		s.exit()
		s.exit()
	})

	blocks, err := readBitcode(code)
	if err != nil {
		t.Fatalf("readBitcode failed: %v", err)
	}
	if len(blocks) != 1 || blocks[0].id != blockModule {
		t.Fatalf("got %d top-level blocks, want the module", len(blocks))
	}
	mod := blocks[0]
	if mod.child(blockFunction) != nil {
		t.Error("function block was decoded")
	}

	md := mod.child(blockMetadata)
	if md == nil || len(md.records) != 2 {
		t.Fatalf("metadata block = %+v", md)
	}
	if r := md.records[0]; r.code != mdString || text(r.ops) != "dx.resources" {
		t.Errorf("string record = %d %q", r.code, text(r.ops))
	}
	if r := md.records[1]; r.code != 20 || len(r.ops) != 1 || r.ops[0] != 7 || !bytes.Equal(r.blob, []byte("abc")) {
		t.Errorf("blob record = %+v", r)
	}

	// The zero-width address space reads as a literal 0.
	ty := mod.child(blockType)
	if ty == nil || len(ty.records) != 1 {
		t.Fatalf("type block = %+v", ty)
	}
	if r := ty.records[0]; r.code != typePointer || len(r.ops) != 2 || r.ops[0] != 300 || r.ops[1] != 0 {
		t.Errorf("pointer record = %+v", r)
	}
}

func TestReadBitcode_Errors(t *testing.T) {
	valid := NewModuleBuilder().Bytes()
	deep := stream(func(s *streamWriter) {
		for range maxBlockDepth + 1 {
			s.enter(blockMetadata, 3)
		}
		for range maxBlockDepth + 1 {
			s.exit()
		}
	})

	tests := []struct {
		name string
		code []byte
	}{
		{"empty", nil},
		{"wrong magic", []byte{'B', 'C', 0, 0, 0, 0, 0, 0}},
		{"truncated", valid[:len(valid)-4]},
		{"undefined abbreviation", stream(func(s *streamWriter) {
			s.enter(blockModule, 3)
			s.bits.write(firstApplication, 3)
			s.exit()
		})},
		{"abbreviation before SETBID", stream(func(s *streamWriter) {
			s.enter(blockInfo, 2)
			s.define(stringAbbrev)
			s.exit()
		})},
		{"blob before the last operand", stream(func(s *streamWriter) {
			s.enter(blockModule, 3)
			s.define(abbrev{{kind: opLiteral, value: 1}, {kind: opBlob}, {kind: opFixed, value: 8}})
			s.exit()
		})},
		{"nested too deeply", deep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readBitcode(tt.code); err == nil {
				t.Error("readBitcode succeeded")
			}
		})
	}
}
