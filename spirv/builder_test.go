package spirv

import (
	"encoding/binary"
	"testing"
)

func TestModuleBuilder_Header(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	builder.AddTypeFloat(32)

	data := builder.Build()
	if len(data) < 20 {
		t.Fatalf("Module too small: got %d bytes, want at least 20", len(data))
	}

	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != MagicNumber {
		t.Errorf("Invalid magic number: got 0x%08X, want 0x%08X", magic, MagicNumber)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != 1<<16|3<<8 {
		t.Errorf("Invalid version: got 0x%08X", version)
	}
	if bound := binary.LittleEndian.Uint32(data[12:16]); bound != 2 {
		t.Errorf("Bound = %d, want 2", bound)
	}
}

func TestModuleBuilder_ParseRoundTrip(t *testing.T) {
	builder := NewModuleBuilder(Version1_5)
	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	f32 := builder.AddTypeFloat(32)
	vec4 := builder.AddTypeVector(f32, 4)
	builder.AddName(vec4, "color")
	builder.AddEmptyEntryPoint(ExecutionModelFragment, "fs_main", nil)

	m, err := Parse(builder.Build())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Header.Version != Version1_5 {
		t.Errorf("Version = %s, want 1.5", m.Header.Version)
	}

	// Sections come out in logical layout order regardless of call order.
	want := []OpCode{
		OpCapability, OpMemoryModel, OpEntryPoint, OpExecutionMode, OpName,
		OpTypeFloat, OpTypeVector, OpTypeVoid, OpTypeFunction,
		OpFunction, OpLabel, OpReturn, OpFunctionEnd,
	}
	if len(m.Instructions) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(m.Instructions), len(want))
	}
	for i, op := range want {
		if m.Instructions[i].Opcode != op {
			t.Errorf("instruction %d: opcode %d, want %d", i, m.Instructions[i].Opcode, op)
		}
	}

	name, _ := DecodeString(m.Instructions[4].Words[1:])
	if name != "color" {
		t.Errorf("OpName = %q, want %q", name, "color")
	}
	ep, n := DecodeString(m.Instructions[2].Words[2:])
	if ep != "fs_main" || n != 2 {
		t.Errorf("entry point = %q (%d words), want fs_main (2 words)", ep, n)
	}
}

func TestEncodeString(t *testing.T) {
	tests := []struct {
		input string
		words int
	}{
		{"", 1},
		{"abc", 1},
		{"abcd", 2},
		{"main", 2},
		{"vs_main", 2},
		{"position", 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			words := EncodeString(tt.input)
			if len(words) != tt.words {
				t.Errorf("EncodeString(%q) used %d words, want %d", tt.input, len(words), tt.words)
			}
			got, n := DecodeString(words)
			if got != tt.input || n != tt.words {
				t.Errorf("DecodeString = %q, %d; want %q, %d", got, n, tt.input, tt.words)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	valid := NewModuleBuilder(Version1_3).Build()

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 0

	truncated := append([]byte(nil), valid...)
	// One instruction header claiming 4 words with none following.
	truncated = binary.LittleEndian.AppendUint32(truncated, 4<<16|uint32(OpCapability))

	tests := []struct {
		name string
		code []byte
	}{
		{"empty", nil},
		{"short", valid[:12]},
		{"unaligned", append(append([]byte(nil), valid...), 0)},
		{"bad magic", badMagic},
		{"truncated instruction", truncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.code); err == nil {
				t.Error("expected error")
			}
		})
	}
}
