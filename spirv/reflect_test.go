package spirv

import (
	"errors"
	"testing"

	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
)

// testModule wraps a ModuleBuilder with shorthands for declaring globals.
type testModule struct {
	*ModuleBuilder
	f32, u32, vec3, vec4 uint32
}

func newTestModule() *testModule {
	b := NewModuleBuilder(Version1_3)
	b.AddCapability(CapabilityShader)
	b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	m := &testModule{ModuleBuilder: b}
	m.f32 = b.AddTypeFloat(32)
	m.u32 = b.AddTypeInt(32, false)
	m.vec3 = b.AddTypeVector(m.f32, 3)
	m.vec4 = b.AddTypeVector(m.f32, 4)
	return m
}

func (m *testModule) global(typ uint32, storage StorageClass, name string) uint32 {
	v := m.AddVariable(m.AddTypePointer(storage, typ), storage)
	m.AddName(v, name)
	return v
}

func (m *testModule) resource(typ uint32, storage StorageClass, name string, set, binding uint32) uint32 {
	v := m.global(typ, storage, name)
	m.AddDecorate(v, DecorationDescriptorSet, set)
	m.AddDecorate(v, DecorationBinding, binding)
	return v
}

func (m *testModule) array(elem, n uint32) uint32 {
	return m.AddTypeArray(elem, m.AddConstant(m.u32, n))
}

func TestReflect_VertexInputs(t *testing.T) {
	m := newTestModule()
	position := m.global(m.vec3, StorageClassInput, "position")
	m.AddDecorate(position, DecorationLocation, 0)
	clip := m.global(m.vec4, StorageClassOutput, "clip_position")
	m.AddDecorate(clip, DecorationBuiltIn, uint32(BuiltInPosition))
	m.AddEmptyEntryPoint(ExecutionModelVertex, "main", []uint32{position, clip})

	desc, err := Reflect(m.Build())
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}
	if len(desc.Inputs) != 1 || len(desc.Outputs) != 0 {
		t.Fatalf("got %d inputs, %d outputs; want 1, 0", len(desc.Inputs), len(desc.Outputs))
	}
	want := reflection.Attribute{Location: 0, Format: reflection.FormatRGB32Float, Name: "position"}
	if desc.Inputs[0] != want {
		t.Errorf("input = %+v, want %+v", desc.Inputs[0], want)
	}
}

func TestReflect_FragmentOutputs(t *testing.T) {
	m := newTestModule()
	uv := m.global(m.AddTypeVector(m.f32, 2), StorageClassInput, "uv")
	m.AddDecorate(uv, DecorationLocation, 1)
	index := m.global(m.u32, StorageClassInput, "index")
	m.AddDecorate(index, DecorationLocation, 2)
	color := m.global(m.vec4, StorageClassOutput, "color")
	m.AddDecorate(color, DecorationLocation, 0)
	m.AddEmptyEntryPoint(ExecutionModelFragment, "main", []uint32{uv, index, color})

	desc, err := Reflect(m.Build())
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}
	wantIn := []reflection.Attribute{
		{Location: 1, Format: reflection.FormatRG32Float, Name: "uv"},
		{Location: 2, Format: reflection.FormatR32Uint, Name: "index"},
	}
	if len(desc.Inputs) != len(wantIn) {
		t.Fatalf("got %d inputs, want %d", len(desc.Inputs), len(wantIn))
	}
	for i := range wantIn {
		if desc.Inputs[i] != wantIn[i] {
			t.Errorf("input %d = %+v, want %+v", i, desc.Inputs[i], wantIn[i])
		}
	}
	if len(desc.Outputs) != 1 || desc.Outputs[0].Format != reflection.FormatRGBA32Float {
		t.Errorf("outputs = %+v, want one RGBA32Float", desc.Outputs)
	}
}

func TestReflect_EntryPointInterface(t *testing.T) {
	m := newTestModule()
	a := m.global(m.vec4, StorageClassInput, "a")
	m.AddDecorate(a, DecorationLocation, 0)
	b := m.global(m.vec4, StorageClassInput, "b")
	m.AddDecorate(b, DecorationLocation, 0)
	m.AddEmptyEntryPoint(ExecutionModelVertex, "vs_main", []uint32{a})
	m.AddEmptyEntryPoint(ExecutionModelFragment, "fs_main", []uint32{b})
	code := m.Build()

	desc, err := ReflectEntryPoint(code, "fs_main")
	if err != nil {
		t.Fatalf("ReflectEntryPoint failed: %v", err)
	}
	if len(desc.Inputs) != 1 || desc.Inputs[0].Name != "b" {
		t.Errorf("inputs = %+v, want only b", desc.Inputs)
	}

	if _, err := ReflectEntryPoint(code, "missing"); !errors.Is(err, shader.ErrReflectionFailed) {
		t.Errorf("missing entry point: got %v, want ErrReflectionFailed", err)
	}
}

func TestReflect_UniformBuffer(t *testing.T) {
	m := newTestModule()
	mat4 := m.AddTypeMatrix(m.vec4, 4)
	weights := m.array(m.f32, 4)
	m.AddDecorate(weights, DecorationArrayStride, 16)
	block := m.AddTypeStruct(mat4, m.vec4, weights)
	m.AddDecorate(block, DecorationBlock)
	m.AddName(block, "Globals")
	for i, name := range []string{"mvp", "tint", "weights"} {
		m.AddMemberName(block, uint32(i), name)
	}
	m.AddMemberDecorate(block, 0, DecorationOffset, 0)
	m.AddMemberDecorate(block, 0, DecorationColMajor)
	m.AddMemberDecorate(block, 0, DecorationMatrixStride, 16)
	m.AddMemberDecorate(block, 1, DecorationOffset, 64)
	m.AddMemberDecorate(block, 2, DecorationOffset, 80)
	m.resource(block, StorageClassUniform, "globals", 1, 2)

	second := m.AddTypeStruct(m.vec4)
	m.AddDecorate(second, DecorationBlock)
	m.AddName(second, "Light")
	m.AddMemberDecorate(second, 0, DecorationOffset, 0)
	m.resource(second, StorageClassUniform, "", 0, 0)

	desc, err := Reflect(m.Build())
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}
	if len(desc.UniformBuffers) != 2 {
		t.Fatalf("got %d uniform buffers, want 2", len(desc.UniformBuffers))
	}

	ub := desc.UniformBuffers[0]
	if ub.ID != 0 || ub.Set != 1 || ub.Binding != 2 || ub.ArrayCount != 1 || ub.Name != "globals" {
		t.Errorf("buffer = %+v", ub)
	}
	if ub.Size != 144 {
		t.Errorf("Size = %d, want 144", ub.Size)
	}

	want := []reflection.Member{
		{Type: reflection.MemberMat4, ArrayCount: 1, Size: 64, Offset: 0, Name: "mvp"},
		{Type: reflection.MemberVec4, ArrayCount: 1, Size: 16, Offset: 64, Name: "tint"},
		{Type: reflection.MemberFloat32, ArrayCount: 4, Size: 16, Offset: 80, Name: "weights"},
	}
	if len(ub.Members) != len(want) {
		t.Fatalf("got %d members, want %d", len(ub.Members), len(want))
	}
	for i := range want {
		if ub.Members[i] != want[i] {
			t.Errorf("member %d = %+v, want %+v", i, ub.Members[i], want[i])
		}
	}

	// Unnamed variables fall back to the block type name.
	if got := desc.UniformBuffers[1]; got.ID != 1 || got.Name != "Light" {
		t.Errorf("second buffer = %+v, want ID 1 named Light", got)
	}
}

func TestReflect_Images(t *testing.T) {
	m := newTestModule()
	tex2D := m.AddTypeImage(m.f32, ImageType{Dim: Dim2D, Sampled: 1})
	m.resource(m.AddTypeSampledImage(tex2D), StorageClassUniformConstant, "albedo", 0, 0)

	shadow := m.AddTypeImage(m.f32, ImageType{Dim: DimCube, Depth: 1, Sampled: 1})
	m.resource(shadow, StorageClassUniformConstant, "shadow", 0, 1)

	layers := m.AddTypeImage(m.f32, ImageType{Dim: Dim2D, Arrayed: true, Multisampled: true, Sampled: 1})
	m.resource(m.array(layers, 3), StorageClassUniformConstant, "layers", 0, 4)

	m.resource(m.AddTypeSampler(), StorageClassUniformConstant, "linear", 0, 2)

	storage := m.AddTypeImage(m.f32, ImageType{Dim: Dim2D, Sampled: 2, Format: ImageFormatRgba8})
	out := m.resource(storage, StorageClassUniformConstant, "out", 1, 0)
	m.AddDecorate(out, DecorationNonWritable)

	desc, err := Reflect(m.Build())
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}

	if len(desc.SampledImages) != 1 {
		t.Fatalf("got %d sampled images, want 1", len(desc.SampledImages))
	}
	wantSampled := reflection.Image{Binding: 0, Dimension: reflection.Dimension2D, ArrayCount: 1, Name: "albedo"}
	if desc.SampledImages[0] != wantSampled {
		t.Errorf("sampled = %+v, want %+v", desc.SampledImages[0], wantSampled)
	}

	wantSeparate := []reflection.Image{
		{Binding: 1, Dimension: reflection.DimensionCube, ArrayCount: 1, DepthCompare: true, Name: "shadow"},
		{Binding: 4, Dimension: reflection.Dimension2DArray, ArrayCount: 3, Multisampled: true, Name: "layers"},
	}
	if len(desc.SeparateImages) != len(wantSeparate) {
		t.Fatalf("got %d separate images, want %d", len(desc.SeparateImages), len(wantSeparate))
	}
	for i := range wantSeparate {
		if desc.SeparateImages[i] != wantSeparate[i] {
			t.Errorf("separate %d = %+v, want %+v", i, desc.SeparateImages[i], wantSeparate[i])
		}
	}

	wantSampler := reflection.Image{Binding: 2, Dimension: reflection.DimensionNone, ArrayCount: 1, Name: "linear"}
	if len(desc.Samplers) != 1 || desc.Samplers[0] != wantSampler {
		t.Errorf("samplers = %+v, want [%+v]", desc.Samplers, wantSampler)
	}

	if len(desc.StorageImages) != 1 {
		t.Fatalf("got %d storage images, want 1", len(desc.StorageImages))
	}
	si := desc.StorageImages[0]
	if si.Set != 1 || si.Format != reflection.FormatRGBA8Unorm || !si.ReadOnly || si.Dimension != reflection.Dimension2D {
		t.Errorf("storage image = %+v", si)
	}
}

func TestReflect_StorageAndPushConstants(t *testing.T) {
	m := newTestModule()
	data := m.AddTypeRuntimeArray(m.vec4)
	m.AddDecorate(data, DecorationArrayStride, 16)
	particles := m.AddTypeStruct(data)
	m.AddDecorate(particles, DecorationBlock)
	m.AddMemberDecorate(particles, 0, DecorationOffset, 0)
	m.AddMemberDecorate(particles, 0, DecorationNonWritable)
	m.resource(particles, StorageClassStorageBuffer, "particles", 0, 3)

	counters := m.AddTypeStruct(m.u32, m.u32)
	m.AddDecorate(counters, DecorationBufferBlock)
	m.AddMemberDecorate(counters, 0, DecorationOffset, 0)
	m.AddMemberDecorate(counters, 1, DecorationOffset, 4)
	m.resource(counters, StorageClassUniform, "counters", 0, 4)

	texels := m.AddTypeImage(m.u32, ImageType{Dim: DimBuffer, Sampled: 1})
	m.resource(texels, StorageClassUniformConstant, "texels", 0, 5)

	push := m.AddTypeStruct(m.vec4, m.f32)
	m.AddDecorate(push, DecorationBlock)
	m.AddMemberDecorate(push, 0, DecorationOffset, 0)
	m.AddMemberDecorate(push, 1, DecorationOffset, 16)
	m.global(push, StorageClassPushConstant, "params")

	desc, err := Reflect(m.Build())
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}

	want := []reflection.StorageBuffer{
		{Binding: 3, ArrayCount: 1, Size: 0, ReadOnly: true, Name: "particles"},
		{Binding: 4, ArrayCount: 1, Size: 8, ReadOnly: false, Name: "counters"},
		{Binding: 5, ArrayCount: 1, Format: reflection.FormatRGBA32Uint, ReadOnly: true, Name: "texels"},
	}
	if len(desc.StorageBuffers) != len(want) {
		t.Fatalf("got %d storage buffers, want %d", len(desc.StorageBuffers), len(want))
	}
	for i := range want {
		if desc.StorageBuffers[i] != want[i] {
			t.Errorf("storage buffer %d = %+v, want %+v", i, desc.StorageBuffers[i], want[i])
		}
	}

	wantPush := reflection.PushConstant{Offset: 0, Size: 20, Name: "params"}
	if len(desc.PushConstants) != 1 || desc.PushConstants[0] != wantPush {
		t.Errorf("push constants = %+v, want [%+v]", desc.PushConstants, wantPush)
	}
	if len(desc.UniformBuffers) != 0 {
		t.Errorf("BufferBlock struct reported as uniform buffer")
	}
}

// A struct-typed uniform is emitted by naga as a Block holding the struct
// as its only member; members come from the inner struct.
func TestReflect_WrappedUniformBuffer(t *testing.T) {
	m := newTestModule()
	mat4 := m.AddTypeMatrix(m.vec4, 4)
	inner := m.AddTypeStruct(mat4, m.vec4)
	m.AddName(inner, "Uniforms")
	m.AddMemberName(inner, 0, "transform")
	m.AddMemberName(inner, 1, "color")
	m.AddMemberDecorate(inner, 0, DecorationOffset, 0)
	m.AddMemberDecorate(inner, 0, DecorationColMajor)
	m.AddMemberDecorate(inner, 0, DecorationMatrixStride, 16)
	m.AddMemberDecorate(inner, 1, DecorationOffset, 64)

	block := m.AddTypeStruct(inner)
	m.AddDecorate(block, DecorationBlock)
	m.AddMemberDecorate(block, 0, DecorationOffset, 0)
	m.resource(block, StorageClassUniform, "", 0, 0)

	desc, err := Reflect(m.Build())
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}
	if len(desc.UniformBuffers) != 1 {
		t.Fatalf("got %d uniform buffers, want 1", len(desc.UniformBuffers))
	}
	ub := desc.UniformBuffers[0]
	if ub.Size != 80 || ub.Name != "Uniforms" {
		t.Errorf("buffer = %+v, want 80 bytes named Uniforms", ub)
	}
	want := []reflection.Member{
		{Type: reflection.MemberMat4, ArrayCount: 1, Size: 64, Offset: 0, Name: "transform"},
		{Type: reflection.MemberVec4, ArrayCount: 1, Size: 16, Offset: 64, Name: "color"},
	}
	if len(ub.Members) != len(want) {
		t.Fatalf("members = %+v, want %+v", ub.Members, want)
	}
	for i := range want {
		if ub.Members[i] != want[i] {
			t.Errorf("member %d = %+v, want %+v", i, ub.Members[i], want[i])
		}
	}
}

func TestReflect_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *testModule)
		kind  shader.ErrorKind
	}{
		{
			name: "cube array",
			build: func(m *testModule) {
				img := m.AddTypeImage(m.f32, ImageType{Dim: DimCube, Arrayed: true, Sampled: 1})
				m.resource(img, StorageClassUniformConstant, "env", 0, 0)
			},
			kind: shader.ErrUnsupportedType,
		},
		{
			name: "unknown storage format",
			build: func(m *testModule) {
				img := m.AddTypeImage(m.f32, ImageType{Dim: Dim2D, Sampled: 2, Format: ImageFormatUnknown})
				m.resource(img, StorageClassUniformConstant, "out", 0, 0)
			},
			kind: shader.ErrUnsupportedFormat,
		},
		{
			name: "matrix input",
			build: func(m *testModule) {
				v := m.global(m.AddTypeMatrix(m.vec4, 4), StorageClassInput, "xform")
				m.AddDecorate(v, DecorationLocation, 0)
			},
			kind: shader.ErrUnsupportedFormat,
		},
		{
			name: "missing location",
			build: func(m *testModule) {
				m.global(m.vec4, StorageClassInput, "color")
			},
			kind: shader.ErrReflectionFailed,
		},
		{
			name: "array of itself",
			build: func(m *testModule) {
				n := m.AddConstant(m.u32, 2)
				arr := m.AllocID()
				m.emit(sectionType, OpTypeArray, arr, arr, n)
				m.resource(arr, StorageClassUniform, "loop", 0, 0)
			},
			kind: shader.ErrReflectionFailed,
		},
		{
			name: "struct containing itself",
			build: func(m *testModule) {
				st := m.AllocID()
				m.emit(sectionType, OpTypeStruct, st, m.f32, st)
				m.AddDecorate(st, DecorationBlock)
				m.resource(st, StorageClassUniform, "loop", 0, 0)
			},
			kind: shader.ErrReflectionFailed,
		},
		{
			name: "struct cycle through array",
			build: func(m *testModule) {
				n := m.AddConstant(m.u32, 4)
				st, arr := m.AllocID(), m.AllocID()
				m.emit(sectionType, OpTypeStruct, st, arr)
				m.emit(sectionType, OpTypeArray, arr, st, n)
				m.resource(st, StorageClassStorageBuffer, "loop", 0, 0)
			},
			kind: shader.ErrReflectionFailed,
		},
		{
			name: "nesting too deep",
			build: func(m *testModule) {
				typ := m.f32
				for range maxTypeNesting + 1 {
					typ = m.AddTypeStruct(typ)
				}
				m.AddDecorate(typ, DecorationBlock)
				m.resource(typ, StorageClassUniform, "deep", 0, 0)
			},
			kind: shader.ErrReflectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModule()
			tt.build(m)
			_, err := Reflect(m.Build())
			if !errors.Is(err, tt.kind) {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}

	if _, err := Reflect([]byte("not spirv at all....")); !errors.Is(err, shader.ErrReflectionFailed) {
		t.Errorf("garbage input: got %v, want ErrReflectionFailed", err)
	}
}
