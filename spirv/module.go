package spirv

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Instruction is one decoded instruction. Words holds every operand after
// the leading word, result type and result ids included.
type Instruction struct {
	Opcode OpCode
	Words  []uint32
}

// Encode returns the instruction's words, leading word count and opcode
// included.
func (i Instruction) Encode() []uint32 {
	lead := uint32(len(i.Words)+1)<<16 | uint32(i.Opcode)
	return append([]uint32{lead}, i.Words...)
}

// Header is the five-word module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Module is a parsed SPIR-V binary.
type Module struct {
	Header       Header
	Instructions []Instruction
}

// Parse splits a little-endian SPIR-V binary into instructions.
// It checks the magic number and instruction word counts; it does not
// validate semantics.
func Parse(code []byte) (*Module, error) {
	if len(code) < headerWords*4 {
		return nil, fmt.Errorf("spirv: module too small (%d bytes)", len(code))
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("spirv: module size %d is not a multiple of 4", len(code))
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != MagicNumber {
		return nil, fmt.Errorf("spirv: invalid magic 0x%08X", words[0])
	}

	m := &Module{
		Header: Header{
			Version:   wordToVersion(words[1]),
			Generator: words[2],
			Bound:     words[3],
			Schema:    words[4],
		},
	}

	offset := headerWords
	for offset < len(words) {
		word := words[offset]
		opcode := OpCode(word & 0xFFFF)
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount > len(words) {
			return nil, fmt.Errorf("spirv: invalid word count %d at word %d", wordCount, offset)
		}
		m.Instructions = append(m.Instructions, Instruction{
			Opcode: opcode,
			Words:  words[offset+1 : offset+wordCount],
		})
		offset += wordCount
	}
	return m, nil
}

// DecodeString decodes a nul-terminated literal string starting at words[0].
// It returns the string and the number of words it occupies.
func DecodeString(words []uint32) (string, int) {
	var sb strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(b)
		}
	}
	return sb.String(), len(words)
}

func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}

func wordToVersion(w uint32) Version {
	return Version{Major: uint8(w >> 16), Minor: uint8(w >> 8)}
}

// String returns "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// EntryPoints returns the names declared by OpEntryPoint, in order.
func (m *Module) EntryPoints() []string {
	var names []string
	for _, inst := range m.Instructions {
		if inst.Opcode == OpEntryPoint && len(inst.Words) >= 3 {
			name, _ := DecodeString(inst.Words[2:])
			names = append(names, name)
		}
	}
	return names
}
