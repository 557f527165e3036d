// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"testing"
)

func testRDEF(major, minor uint8) *RDEF {
	float4 := &Type{Class: ClassVector, Kind: TypeFloat, Rows: 1, Columns: 4, Name: "float4"}
	light := &Type{Class: ClassStruct, Kind: TypeVoid, Rows: 1, Columns: 8, Name: "Light", Members: []TypeMember{
		{Name: "color", Offset: 0, Type: float4},
		{Name: "direction", Offset: 16, Type: float4},
	}}
	return &RDEF{
		MajorVersion: major,
		MinorVersion: minor,
		ProgramType:  0xFFFE,
		Creator:      "shaderpack test",
		Bindings: []ResourceBinding{
			{Name: "linear", InputType: InputSampler, BindPoint: 0, BindCount: 1},
			{Name: "albedo", InputType: InputTexture, ReturnType: ReturnFloat, Dimension: DimTexture2D,
				NumSamples: 0xFFFFFFFF, BindPoint: 1, BindCount: 1, Flags: FlagTextureComponent0 | FlagTextureComponent1, Space: 2, ID: 7},
			{Name: "Globals", InputType: InputCBuffer, BindPoint: 0, BindCount: 1},
		},
		ConstantBuffers: []ConstantBuffer{{
			Name: "Globals",
			Size: 48,
			Variables: []Variable{
				{Name: "tint", StartOffset: 0, Size: 16, Flags: 2, Type: float4},
				{Name: "sun", StartOffset: 16, Size: 32, Flags: 2, Type: light},
			},
		}},
	}
}

func TestParseRDEF(t *testing.T) {
	tests := []struct {
		name         string
		major, minor uint8
		space        bool
	}{
		{"SM4.0", 4, 0, false},
		{"SM5.0", 5, 0, false},
		{"SM5.1", 5, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testRDEF(tt.major, tt.minor)
			r, err := ParseRDEF(EncodeRDEF(in))
			if err != nil {
				t.Fatalf("ParseRDEF failed: %v", err)
			}

			if r.MajorVersion != tt.major || r.MinorVersion != tt.minor || r.ProgramType != 0xFFFE {
				t.Errorf("version = %d.%d type 0x%X", r.MajorVersion, r.MinorVersion, r.ProgramType)
			}
			if r.Creator != "shaderpack test" {
				t.Errorf("Creator = %q", r.Creator)
			}

			if len(r.Bindings) != 3 {
				t.Fatalf("got %d bindings, want 3", len(r.Bindings))
			}
			albedo := r.Bindings[1]
			if albedo.Name != "albedo" || albedo.Dimension != DimTexture2D || albedo.BindPoint != 1 {
				t.Errorf("albedo = %+v", albedo)
			}
			if albedo.Components() != 4 {
				t.Errorf("Components() = %d, want 4", albedo.Components())
			}
			if got := albedo.Space == 2 && albedo.ID == 7; got != tt.space {
				t.Errorf("space/id decoded = %v, want %v", got, tt.space)
			}

			if len(r.ConstantBuffers) != 1 {
				t.Fatalf("got %d constant buffers, want 1", len(r.ConstantBuffers))
			}
			cb := r.ConstantBuffers[0]
			if cb.Name != "Globals" || cb.Size != 48 || len(cb.Variables) != 2 {
				t.Fatalf("constant buffer = %+v", cb)
			}
			sun := cb.Variables[1]
			if sun.Name != "sun" || sun.StartOffset != 16 || sun.Type.Class != ClassStruct {
				t.Errorf("sun = %+v", sun)
			}
			if len(sun.Type.Members) != 2 || sun.Type.Members[1].Name != "direction" || sun.Type.Members[1].Offset != 16 {
				t.Errorf("sun members = %+v", sun.Type.Members)
			}
			// Shared type records decode to one value.
			if cb.Variables[0].Type != sun.Type.Members[0].Type {
				t.Error("float4 type decoded twice")
			}
			if wantName := tt.major >= 5; (sun.Type.Name == "Light") != wantName {
				t.Errorf("type name = %q", sun.Type.Name)
			}
		})
	}
}

func TestParseRDEF_Truncated(t *testing.T) {
	data := EncodeRDEF(testRDEF(5, 0))
	for _, n := range []int{0, 8, 27, 64, len(data) / 2} {
		if _, err := ParseRDEF(data[:n]); err == nil {
			t.Errorf("ParseRDEF(%d of %d bytes) succeeded", n, len(data))
		}
	}
}
