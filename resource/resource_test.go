// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewShader(t *testing.T) {
	r := NewShader("shaders/mesh.vs", testShader())

	if r.Header.Name != "shaders/mesh.vs" || r.Header.Type != TypeShader {
		t.Errorf("Header = %+v", r.Header)
	}
	if r.Header.Size != uint64(len(r.Data)) {
		t.Errorf("Header.Size = %d, want %d", r.Header.Size, len(r.Data))
	}

	s, err := r.Shader()
	if err != nil {
		t.Fatalf("Shader: %v", err)
	}
	if s.EntryPoint != "vs_main" {
		t.Errorf("EntryPoint = %q", s.EntryPoint)
	}
}

func TestResource_ShaderWrongType(t *testing.T) {
	r := &Resource{Data: testShader().Encode()}
	r.Fill("blob", TypeUnknown)
	if _, err := r.Shader(); err == nil {
		t.Error("Shader() on an untyped resource succeeded")
	}
}

func TestShader_Describe(t *testing.T) {
	var buf bytes.Buffer
	if err := testShader().Describe(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"entry point:  vs_main",
		"POSITION",
		"Camera",
		"viewProj",
		"(1,0) shadow",
		"readonly",
		"push     draw +16 8 bytes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output missing %q:\n%s", want, out)
		}
	}
}
