package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/shaderpack/resource"
	"github.com/gogpu/shaderpack/shader"
	"github.com/gogpu/shaderpack/spirv"
)

func testModule() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	b.AddEmptyEntryPoint(spirv.ExecutionModelGLCompute, "cs_main", nil)
	return b.Build()
}

func TestDisassembleFile(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "shader.spv")
	if err := os.WriteFile(raw, testModule(), 0o600); err != nil {
		t.Fatal(err)
	}
	packed := filepath.Join(dir, "shader.shpk")
	s := &resource.Shader{
		Stage:      shader.StageCompute,
		Target:     shader.TargetCrossCompiled,
		EntryPoint: "cs_main",
		Bytecode:   testModule(),
	}
	if err := os.WriteFile(packed, s.Encode(), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{raw, packed} {
		var buf bytes.Buffer
		if err := disassembleFile(&buf, path); err != nil {
			t.Fatalf("disassembleFile(%s): %v", filepath.Base(path), err)
		}
		if !strings.Contains(buf.String(), `"cs_main"`) {
			t.Errorf("%s: entry point missing:\n%s", filepath.Base(path), buf.String())
		}
	}
}

func TestSpirvCode_NativeResource(t *testing.T) {
	s := &resource.Shader{Target: shader.TargetNative, EntryPoint: "main", Bytecode: []byte("DXBC")}
	if _, err := spirvCode(s.Encode()); err == nil {
		t.Error("spirvCode accepted a native resource")
	}
}
