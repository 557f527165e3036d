// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"errors"
	"testing"

	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
)

func texture(name string, register uint32) ResourceBinding {
	return ResourceBinding{
		Name: name, InputType: InputTexture, ReturnType: ReturnFloat, Dimension: DimTexture2D,
		BindPoint: register, BindCount: 1, Flags: FlagTextureComponent0 | FlagTextureComponent1,
	}
}

func container(rdef *RDEF) []byte {
	return NewContainerBuilder().AddRDEF(rdef).AddPart(PartSHEX, []byte{0, 0, 0, 0}).Build()
}

func TestReflect_VertexShader(t *testing.T) {
	code := NewContainerBuilder().
		AddRDEF(&RDEF{MajorVersion: 5, ProgramType: 0xFFFE}).
		AddSignature(PartISGN, []SignatureElement{
			{Name: "POSITION", ComponentType: ComponentFloat32, Register: 0, Mask: 0x7},
		}).
		AddSignature(PartOSGN, []SignatureElement{
			{Name: "SV_Position", SystemValue: SystemValuePosition, ComponentType: ComponentFloat32, Register: 0, Mask: 0xF},
		}).
		AddPart(PartSHEX, []byte{0, 0, 0, 0}).
		Build()

	desc, err := Reflect(code)
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}
	if len(desc.Inputs) != 1 || len(desc.Outputs) != 0 {
		t.Fatalf("got %d inputs, %d outputs; want 1, 0", len(desc.Inputs), len(desc.Outputs))
	}
	want := reflection.Attribute{Location: 0, Format: reflection.FormatRGB32Float, Name: "POSITION"}
	if desc.Inputs[0] != want {
		t.Errorf("input = %+v, want %+v", desc.Inputs[0], want)
	}
	if len(desc.SampledImages) != 0 || len(desc.PushConstants) != 0 {
		t.Error("native reflection reported combined samplers or push constants")
	}
}

func TestReflect_TextureBindings(t *testing.T) {
	type placement struct{ set, binding uint32 }
	tests := []struct {
		name      string
		registers []uint32
		want      []placement
	}{
		{"contiguous", []uint32{0, 1}, []placement{{0, 0}, {0, 1}}},
		{"gap", []uint32{0, 2}, []placement{{0, 0}, {0, 2}}},
		{"decreasing", []uint32{2, 0}, []placement{{0, 2}, {1, 0}}},
		{"repeated", []uint32{3, 3, 3}, []placement{{0, 3}, {1, 3}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdef := &RDEF{MajorVersion: 5, MinorVersion: 1}
			for i, reg := range tt.registers {
				rdef.Bindings = append(rdef.Bindings, texture(string(rune('a'+i)), reg))
			}
			desc, err := Reflect(container(rdef))
			if err != nil {
				t.Fatalf("Reflect failed: %v", err)
			}
			if len(desc.SeparateImages) != len(tt.want) {
				t.Fatalf("got %d images, want %d", len(desc.SeparateImages), len(tt.want))
			}
			for i, w := range tt.want {
				img := desc.SeparateImages[i]
				if img.Set != w.set || img.Binding != w.binding {
					t.Errorf("image %d at (%d, %d), want (%d, %d)", i, img.Set, img.Binding, w.set, w.binding)
				}
			}
		})
	}
}

func TestReflect_CategoriesAreIndependent(t *testing.T) {
	rdef := &RDEF{
		MajorVersion: 5,
		Bindings: []ResourceBinding{
			{Name: "linear", InputType: InputSampler, BindPoint: 0, BindCount: 1},
			{Name: "shadow", InputType: InputSampler, BindPoint: 1, BindCount: 1, Flags: FlagComparisonSampler},
			texture("albedo", 0),
			{Name: "Camera", InputType: InputCBuffer, BindPoint: 1, BindCount: 1},
			{Name: "Object", InputType: InputCBuffer, BindPoint: 0, BindCount: 1},
			{Name: "output", InputType: InputUAVRWTyped, ReturnType: ReturnUint, Dimension: DimTexture2DArray,
				BindPoint: 0, BindCount: 1, Flags: 0},
			{Name: "particles", InputType: InputUAVRWStructured, BindPoint: 1, BindCount: 1, NumSamples: 32},
			{Name: "instances", InputType: InputStructured, BindPoint: 1, BindCount: 1, NumSamples: 64},
			{Name: "lut", InputType: InputTexture, ReturnType: ReturnUnorm, Dimension: DimBuffer,
				BindPoint: 2, BindCount: 1, Flags: FlagTextureComponent0 | FlagTextureComponent1},
			{Name: "msaa", InputType: InputTexture, ReturnType: ReturnFloat, Dimension: DimTexture2DMS,
				NumSamples: 4, BindPoint: 3, BindCount: 2, Flags: FlagTextureComponent0 | FlagTextureComponent1},
		},
		ConstantBuffers: []ConstantBuffer{
			{Name: "Object", Size: 16, Variables: []Variable{
				{Name: "id", Size: 4, Type: &Type{Class: ClassScalar, Kind: TypeUint, Rows: 1, Columns: 1}},
			}},
			{Name: "Camera", Size: 64, Variables: []Variable{
				{Name: "viewProj", Size: 64, Type: &Type{Class: ClassMatrixColumns, Kind: TypeFloat, Rows: 4, Columns: 4}},
			}},
			{Name: "instances", Type: CBufferResourceBindInfo, Size: 64},
		},
	}

	desc, err := Reflect(container(rdef))
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}

	wantSamplers := []reflection.Image{
		{Set: 0, Binding: 0, Dimension: reflection.DimensionNone, ArrayCount: 1, Name: "linear"},
		{Set: 0, Binding: 1, Dimension: reflection.DimensionNone, ArrayCount: 1, Name: "shadow"},
	}
	for i, want := range wantSamplers {
		if i >= len(desc.Samplers) || desc.Samplers[i] != want {
			t.Errorf("samplers = %+v, want %+v", desc.Samplers, wantSamplers)
			break
		}
	}

	// Camera (b1) then Object (b0): Object opens set 1. Ids follow the
	// constant buffer table, not the binding order.
	if len(desc.UniformBuffers) != 2 {
		t.Fatalf("got %d uniform buffers, want 2", len(desc.UniformBuffers))
	}
	camera, object := desc.UniformBuffers[0], desc.UniformBuffers[1]
	if camera.Name != "Camera" || camera.ID != 1 || camera.Set != 0 || camera.Binding != 1 || camera.Size != 64 {
		t.Errorf("camera = %+v", camera)
	}
	if object.Name != "Object" || object.ID != 0 || object.Set != 1 || object.Binding != 0 {
		t.Errorf("object = %+v", object)
	}
	wantMember := reflection.Member{Type: reflection.MemberMat4, ArrayCount: 1, Size: 64, Name: "viewProj"}
	if len(camera.Members) != 1 || camera.Members[0] != wantMember {
		t.Errorf("camera members = %+v, want [%+v]", camera.Members, wantMember)
	}

	// Textures: albedo t0, instances t1, lut t2, msaa t3 share one sequence.
	if len(desc.SeparateImages) != 2 {
		t.Fatalf("got %d separate images, want 2", len(desc.SeparateImages))
	}
	msaa := desc.SeparateImages[1]
	wantMSAA := reflection.Image{Set: 0, Binding: 3, Dimension: reflection.Dimension2D, ArrayCount: 2, Multisampled: true, Name: "msaa"}
	if msaa != wantMSAA {
		t.Errorf("msaa = %+v, want %+v", msaa, wantMSAA)
	}

	if len(desc.StorageImages) != 1 {
		t.Fatalf("got %d storage images, want 1", len(desc.StorageImages))
	}
	out := desc.StorageImages[0]
	if out.Dimension != reflection.Dimension2DArray || out.Format != reflection.FormatR32Uint || out.ReadOnly {
		t.Errorf("storage image = %+v", out)
	}

	wantBuffers := []reflection.StorageBuffer{
		{Set: 0, Binding: 1, ArrayCount: 1, Name: "particles"},
		{Set: 0, Binding: 1, ArrayCount: 1, ReadOnly: true, Name: "instances"},
		{Set: 0, Binding: 2, ArrayCount: 1, Format: reflection.FormatRGBA8Unorm, ReadOnly: true, Name: "lut"},
	}
	if len(desc.StorageBuffers) != len(wantBuffers) {
		t.Fatalf("got %d storage buffers, want %d", len(desc.StorageBuffers), len(wantBuffers))
	}
	for i := range wantBuffers {
		if desc.StorageBuffers[i] != wantBuffers[i] {
			t.Errorf("storage buffer %d = %+v, want %+v", i, desc.StorageBuffers[i], wantBuffers[i])
		}
	}
}

func TestReflect_ConstantBufferMembers(t *testing.T) {
	float3 := &Type{Class: ClassVector, Kind: TypeFloat, Rows: 1, Columns: 3}
	rdef := &RDEF{
		MajorVersion: 5,
		Bindings:     []ResourceBinding{{Name: "Params", InputType: InputCBuffer, BindCount: 1}},
		ConstantBuffers: []ConstantBuffer{{
			Name: "Params",
			Size: 112,
			Variables: []Variable{
				{Name: "scale", StartOffset: 0, Size: 4, Type: &Type{Class: ClassScalar, Kind: TypeFloat, Rows: 1, Columns: 1}},
				// The backend places this at 16; packing uses the running sum.
				{Name: "origin", StartOffset: 16, Size: 12, Type: float3},
				{Name: "weights", StartOffset: 32, Size: 52, Type: &Type{Class: ClassScalar, Kind: TypeFloat16, Rows: 1, Columns: 1, Elements: 4}},
				{Name: "enabled", StartOffset: 84, Size: 4, Type: &Type{Class: ClassScalar, Kind: TypeBool, Rows: 1, Columns: 1}},
				{Name: "counts", StartOffset: 96, Size: 16, Type: &Type{Class: ClassScalar, Kind: TypeInt64, Rows: 1, Columns: 1, Elements: 2}},
			},
		}},
	}

	desc, err := Reflect(container(rdef))
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}
	want := []reflection.Member{
		{Type: reflection.MemberFloat32, ArrayCount: 1, Size: 4, Offset: 0, Name: "scale"},
		{Type: reflection.MemberVec3, ArrayCount: 1, Size: 12, Offset: 4, Name: "origin"},
		{Type: reflection.MemberFloat16, ArrayCount: 4, Size: 8, Offset: 16, Name: "weights"},
		{Type: reflection.MemberUint32, ArrayCount: 1, Size: 4, Offset: 24, Name: "enabled"},
		{Type: reflection.MemberInt64, ArrayCount: 2, Size: 16, Offset: 28, Name: "counts"},
	}
	got := desc.UniformBuffers[0].Members
	if len(got) != len(want) {
		t.Fatalf("got %d members, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReflect_Errors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		kind shader.ErrorKind
	}{
		{
			name: "cube array",
			code: container(&RDEF{MajorVersion: 5, Bindings: []ResourceBinding{{
				Name: "env", InputType: InputTexture, ReturnType: ReturnFloat, Dimension: DimTextureCubeArray, BindCount: 1,
			}}}),
			kind: shader.ErrUnsupportedType,
		},
		{
			name: "mixed return type",
			code: container(&RDEF{MajorVersion: 5, Bindings: []ResourceBinding{{
				Name: "out", InputType: InputUAVRWTyped, ReturnType: ReturnMixed, Dimension: DimTexture2D, BindCount: 1,
			}}}),
			kind: shader.ErrUnsupportedFormat,
		},
		{
			name: "3x4 matrix member",
			code: container(&RDEF{
				MajorVersion: 5,
				Bindings:     []ResourceBinding{{Name: "B", InputType: InputCBuffer, BindCount: 1}},
				ConstantBuffers: []ConstantBuffer{{Name: "B", Size: 48, Variables: []Variable{
					{Name: "m", Size: 48, Type: &Type{Class: ClassMatrixRows, Kind: TypeFloat, Rows: 3, Columns: 4}},
				}}},
			}),
			kind: shader.ErrUnsupportedType,
		},
		{
			name: "undefined constant buffer",
			code: container(&RDEF{MajorVersion: 5, Bindings: []ResourceBinding{{Name: "Missing", InputType: InputCBuffer}}}),
			kind: shader.ErrReflectionFailed,
		},
		{
			name: "truncated DXIL program",
			code: NewContainerBuilder().AddPart(PartDXIL, []byte{0, 0, 0, 0}).Build(),
			kind: shader.ErrReflectionFailed,
		},
		{
			name: "no resource parts",
			code: NewContainerBuilder().AddPart(PartSHEX, []byte{0, 0, 0, 0}).Build(),
			kind: shader.ErrReflectionFailed,
		},
		{
			name: "not a container",
			code: []byte("definitely not a shader container"),
			kind: shader.ErrReflectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reflect(tt.code)
			if !errors.Is(err, tt.kind) {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}
}
