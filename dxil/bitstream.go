// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"errors"
	"fmt"
)

// Fixed abbreviation ids.
const (
	abbrevEndBlock      = 0
	abbrevEnterSubblock = 1
	abbrevDefine        = 2
	abbrevUnabbreviated = 3
	firstApplication    = 4
)

// Block ids of the LLVM 3.7 bitcode the DXIL format is based on.
const (
	blockInfo        = 0
	blockModule      = 8
	blockParamAttr   = 9
	blockConstants   = 11
	blockFunction    = 12
	blockValueSymtab = 14
	blockMetadata    = 15
	blockMDAttach    = 16
	blockType        = 17
	blockUseList     = 18
)

// Record codes of the BLOCKINFO block.
const blockInfoSetBID = 1

// maxBlockDepth bounds block nesting in untrusted input.
const maxBlockDepth = 16

var errTruncated = errors.New("dxil: truncated bitstream")

// bitReader reads an LLVM bitstream, least significant bit first.
type bitReader struct {
	data []byte
	pos  uint64
}

func (r *bitReader) remaining() uint64 {
	return uint64(len(r.data))*8 - r.pos
}

func (r *bitReader) read(width uint) (uint64, error) {
	if width == 0 {
		return 0, nil
	}
	if width > 64 {
		return 0, fmt.Errorf("dxil: field width %d", width)
	}
	if uint64(width) > r.remaining() {
		return 0, errTruncated
	}
	var v uint64
	for got := uint(0); got < width; {
		bit := uint(r.pos % 8)
		take := min(8-bit, width-got)
		b := uint64(r.data[r.pos/8]>>bit) & (1<<take - 1)
		v |= b << got
		got += take
		r.pos += uint64(take)
	}
	return v, nil
}

func (r *bitReader) vbr(width uint) (uint64, error) {
	if width < 2 || width > 32 {
		return 0, fmt.Errorf("dxil: vbr width %d", width)
	}
	hi := uint64(1) << (width - 1)
	var v uint64
	for shift := uint(0); ; shift += width - 1 {
		if shift >= 64 {
			return 0, errors.New("dxil: vbr value overflows 64 bits")
		}
		chunk, err := r.read(width)
		if err != nil {
			return 0, err
		}
		v |= (chunk &^ hi) << shift
		if chunk&hi == 0 {
			return v, nil
		}
	}
}

func (r *bitReader) align32() error {
	next := (r.pos + 31) &^ 31
	if next > uint64(len(r.data))*8 {
		return errTruncated
	}
	r.pos = next
	return nil
}

func (r *bitReader) skip(bits uint64) error {
	if bits > r.remaining() {
		return errTruncated
	}
	r.pos += bits
	return nil
}

type opKind uint8

const (
	opLiteral opKind = iota
	opFixed
	opVBR
	opArray
	opChar6
	opBlob
)

type abbrevOp struct {
	kind  opKind
	value uint64
}

type abbrev []abbrevOp

// record is one decoded record. Abbreviated and unabbreviated records
// decode to the same shape.
type record struct {
	code uint32
	ops  []uint64
	blob []byte
}

// block is a decoded block with its records and sub-blocks in stream order
// within each list.
type block struct {
	id      uint32
	records []record
	blocks  []*block
}

// child returns the first sub-block with id.
func (b *block) child(id uint32) *block {
	for _, c := range b.blocks {
		if c.id == id {
			return c
		}
	}
	return nil
}

// skipped lists blocks reflection never reads.
var skipped = map[uint32]bool{
	blockParamAttr: true,
	blockFunction:  true,
	blockMDAttach:  true,
	blockUseList:   true,
	10:             true, // PARAMATTR_GROUP
}

type streamReader struct {
	bits      bitReader
	blockInfo map[uint32][]abbrev
}

// readBitcode decodes the top-level blocks of a bitcode stream.
func readBitcode(data []byte) ([]*block, error) {
	if len(data) < 4 || data[0] != 'B' || data[1] != 'C' || data[2] != 0xC0 || data[3] != 0xDE {
		return nil, errors.New("dxil: missing bitcode magic")
	}
	s := &streamReader{bits: bitReader{data: data, pos: 32}, blockInfo: make(map[uint32][]abbrev)}

	var top []*block
	for s.bits.remaining() >= 32 {
		id, err := s.bits.read(2)
		if err != nil {
			return nil, err
		}
		if id != abbrevEnterSubblock {
			// Trailing padding.
			if id == 0 {
				break
			}
			return nil, fmt.Errorf("dxil: unexpected abbreviation %d at top level", id)
		}
		b, err := s.enter(0)
		if err != nil {
			return nil, err
		}
		if b != nil {
			top = append(top, b)
		}
	}
	return top, nil
}

// enter reads a sub-block header and body. Skipped blocks return nil.
func (s *streamReader) enter(depth int) (*block, error) {
	if depth >= maxBlockDepth {
		return nil, errors.New("dxil: blocks nested too deeply")
	}
	id, err := s.bits.vbr(8)
	if err != nil {
		return nil, err
	}
	width, err := s.bits.vbr(4)
	if err != nil {
		return nil, err
	}
	if err := s.bits.align32(); err != nil {
		return nil, err
	}
	words, err := s.bits.read(32)
	if err != nil {
		return nil, err
	}
	if skipped[uint32(id)] {
		return nil, s.bits.skip(words * 32)
	}
	if width == 0 || width > 32 {
		return nil, fmt.Errorf("dxil: block %d has abbreviation width %d", id, width)
	}
	return s.block(uint32(id), uint(width), depth)
}

//nolint:gocyclo,cyclop // one case per abbreviation id
func (s *streamReader) block(id uint32, width uint, depth int) (*block, error) {
	b := &block{id: id}
	abbrevs := append([]abbrev(nil), s.blockInfo[id]...)
	var target uint32
	targetSet := false

	for {
		aid, err := s.bits.read(width)
		if err != nil {
			return nil, err
		}
		switch aid {
		case abbrevEndBlock:
			return b, s.bits.align32()

		case abbrevEnterSubblock:
			sub, err := s.enter(depth + 1)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				b.blocks = append(b.blocks, sub)
			}

		case abbrevDefine:
			a, err := s.readAbbrev()
			if err != nil {
				return nil, err
			}
			if id == blockInfo {
				if !targetSet {
					return nil, errors.New("dxil: abbreviation in BLOCKINFO before SETBID")
				}
				s.blockInfo[target] = append(s.blockInfo[target], a)
			} else {
				abbrevs = append(abbrevs, a)
			}

		default:
			var rec record
			if aid == abbrevUnabbreviated {
				rec, err = s.readUnabbreviated()
			} else {
				idx := aid - firstApplication
				if idx >= uint64(len(abbrevs)) {
					return nil, fmt.Errorf("dxil: undefined abbreviation %d in block %d", aid, id)
				}
				rec, err = s.readAbbreviated(abbrevs[idx])
			}
			if err != nil {
				return nil, err
			}
			if id == blockInfo {
				if rec.code == blockInfoSetBID && len(rec.ops) > 0 {
					target, targetSet = uint32(rec.ops[0]), true
				}
				continue
			}
			b.records = append(b.records, rec)
		}
	}
}

func (s *streamReader) readAbbrev() (abbrev, error) {
	n, err := s.bits.vbr(5)
	if err != nil {
		return nil, err
	}
	if n == 0 || n > 64 {
		return nil, fmt.Errorf("dxil: abbreviation with %d operands", n)
	}
	a := make(abbrev, 0, n)
	for i := uint64(0); i < n; i++ {
		literal, err := s.bits.read(1)
		if err != nil {
			return nil, err
		}
		if literal == 1 {
			v, err := s.bits.vbr(8)
			if err != nil {
				return nil, err
			}
			a = append(a, abbrevOp{kind: opLiteral, value: v})
			continue
		}
		enc, err := s.bits.read(3)
		if err != nil {
			return nil, err
		}
		switch enc {
		case 1, 2:
			w, err := s.bits.vbr(5)
			if err != nil {
				return nil, err
			}
			kind, limit := opFixed, uint64(64)
			if enc == 2 {
				kind, limit = opVBR, 32
			}
			switch {
			case w == 0:
				// A zero-width field always reads as 0.
				a = append(a, abbrevOp{kind: opLiteral})
			case w > limit:
				return nil, fmt.Errorf("dxil: abbreviation operand width %d", w)
			default:
				a = append(a, abbrevOp{kind: kind, value: w})
			}
		case 3:
			a = append(a, abbrevOp{kind: opArray})
		case 4:
			a = append(a, abbrevOp{kind: opChar6})
		case 5:
			a = append(a, abbrevOp{kind: opBlob})
		default:
			return nil, fmt.Errorf("dxil: unknown abbreviation encoding %d", enc)
		}
	}
	for i, op := range a {
		switch op.kind {
		case opArray:
			if i != len(a)-2 || a[i+1].kind == opArray || a[i+1].kind == opBlob {
				return nil, errors.New("dxil: array must be followed by one scalar element operand")
			}
		case opBlob:
			if i != len(a)-1 {
				return nil, errors.New("dxil: blob must be the last operand")
			}
		}
	}
	return a, nil
}

func (s *streamReader) readUnabbreviated() (record, error) {
	code, err := s.bits.vbr(6)
	if err != nil {
		return record{}, err
	}
	n, err := s.bits.vbr(6)
	if err != nil {
		return record{}, err
	}
	// Every operand takes at least 6 bits.
	if n > s.bits.remaining()/6 {
		return record{}, errTruncated
	}
	ops := make([]uint64, n)
	for i := range ops {
		if ops[i], err = s.bits.vbr(6); err != nil {
			return record{}, err
		}
	}
	return record{code: uint32(code), ops: ops}, nil
}

func (s *streamReader) scalar(op abbrevOp) (uint64, error) {
	switch op.kind {
	case opLiteral:
		return op.value, nil
	case opFixed:
		return s.bits.read(uint(op.value))
	case opVBR:
		return s.bits.vbr(uint(op.value))
	case opChar6:
		v, err := s.bits.read(6)
		return uint64(char6[v]), err
	}
	return 0, fmt.Errorf("dxil: operand kind %d is not scalar", op.kind)
}

const char6 = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789._"

func (s *streamReader) readAbbreviated(a abbrev) (record, error) {
	var vals []uint64
	var blob []byte
	for i := 0; i < len(a); i++ {
		switch a[i].kind {
		case opArray:
			n, err := s.bits.vbr(6)
			if err != nil {
				return record{}, err
			}
			if n > s.bits.remaining() {
				return record{}, errTruncated
			}
			elem := a[i+1]
			for range n {
				v, err := s.scalar(elem)
				if err != nil {
					return record{}, err
				}
				vals = append(vals, v)
			}
			i++
		case opBlob:
			n, err := s.bits.vbr(6)
			if err != nil {
				return record{}, err
			}
			if err := s.bits.align32(); err != nil {
				return record{}, err
			}
			if n > s.bits.remaining()/8 {
				return record{}, errTruncated
			}
			start := s.bits.pos / 8
			blob = s.bits.data[start : start+n]
			s.bits.pos += n * 8
			if err := s.bits.align32(); err != nil {
				return record{}, err
			}
		default:
			v, err := s.scalar(a[i])
			if err != nil {
				return record{}, err
			}
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return record{}, errors.New("dxil: abbreviated record without a code")
	}
	return record{code: uint32(vals[0]), ops: vals[1:], blob: blob}, nil
}

// text converts character operands to a string.
func text(ops []uint64) string {
	b := make([]byte, len(ops))
	for i, c := range ops {
		b[i] = byte(c)
	}
	return string(b)
}
