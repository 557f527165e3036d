package spirv

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	b := NewModuleBuilder(Version1_3)
	b.AddCapability(CapabilityShader)
	b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	f32 := b.AddTypeFloat(32)
	vec4 := b.AddTypeVector(f32, 4)
	ptr := b.AddTypePointer(StorageClassOutput, vec4)
	pos := b.AddVariable(ptr, StorageClassOutput)
	b.AddDecorate(pos, DecorationBuiltIn, uint32(BuiltInPosition))
	b.AddName(pos, "pos")
	b.AddEmptyEntryPoint(ExecutionModelVertex, "vs_main", []uint32{pos})

	var sb strings.Builder
	if err := Disassemble(b.Build(), &sb); err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"; Version: 1.3",
		"OpCapability Shader",
		"OpMemoryModel Logical GLSL450",
		`OpEntryPoint Vertex %7 "vs_main" %4`,
		`OpName %4 "pos"`,
		"OpDecorate %4 BuiltIn Position",
		"%1 = OpTypeFloat 32",
		"%2 = OpTypeVector %1 4",
		"%3 = OpTypePointer Output %2",
		"%4 = OpVariable %3 Output",
		"OpFunctionEnd",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestDisassemble_Invalid(t *testing.T) {
	var sb strings.Builder
	if err := Disassemble([]byte{1, 2, 3, 4}, &sb); err == nil {
		t.Error("expected error for invalid module")
	}
}

func TestDisassemble_Instructions(t *testing.T) {
	tests := []struct {
		inst Instruction
		want string
	}{
		{
			inst: Instruction{Opcode: OpCompositeExtract, Words: []uint32{2, 9, 8, 1}},
			want: "%9 = OpCompositeExtract %2 %8 1",
		},
		{
			inst: Instruction{Opcode: OpImageWrite, Words: []uint32{5, 6, 7}},
			want: "OpImageWrite %5 %6 %7",
		},
	}
	for _, tt := range tests {
		var sb strings.Builder
		d := &disassembler{w: &sb}
		d.instruction(tt.inst)
		if d.err != nil {
			t.Fatal(d.err)
		}
		if got := strings.TrimSpace(sb.String()); got != tt.want {
			t.Errorf("instruction(%v) = %q, want %q", tt.inst.Opcode, got, tt.want)
		}
	}
}
