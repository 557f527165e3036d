package spirv

import "encoding/binary"

// section is a logical layout section of a module, in emission order.
type section uint8

const (
	sectionCapability section = iota
	sectionMemoryModel
	sectionEntryPoint
	sectionExecutionMode
	sectionDebug
	sectionAnnotation
	sectionType
	sectionVariable
	sectionFunction

	sectionCount
)

// ModuleBuilder assembles a module. Instructions may be added in any order;
// Build emits them in logical layout order. Result ids are allocated
// sequentially from 1.
type ModuleBuilder struct {
	version  Version
	bound    uint32
	sections [sectionCount][]Instruction
}

// NewModuleBuilder returns an empty module for version.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{version: version, bound: 1}
}

// AllocID reserves a result id.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.bound
	b.bound++
	return id
}

func (b *ModuleBuilder) emit(s section, op OpCode, words ...uint32) {
	b.sections[s] = append(b.sections[s], Instruction{Opcode: op, Words: words})
}

// result emits op with a fresh result id as its first operand.
func (b *ModuleBuilder) result(s section, op OpCode, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(s, op, append([]uint32{id}, operands...)...)
	return id
}

// typed emits op with a result type and a fresh result id.
func (b *ModuleBuilder) typed(s section, op OpCode, resultType uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(s, op, append([]uint32{resultType, id}, operands...)...)
	return id
}

// EncodeString packs s as a nul-terminated literal string.
func EncodeString(s string) []uint32 {
	words := make([]uint32, len(s)/4+1)
	for i := 0; i < len(s); i++ {
		words[i/4] |= uint32(s[i]) << (8 * (i % 4))
	}
	return words
}

func (b *ModuleBuilder) AddCapability(capability Capability) {
	b.emit(sectionCapability, OpCapability, uint32(capability))
}

// SetMemoryModel replaces the module's OpMemoryModel.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	b.sections[sectionMemoryModel] = []Instruction{{
		Opcode: OpMemoryModel,
		Words:  []uint32{uint32(addressing), uint32(memory)},
	}}
}

func (b *ModuleBuilder) AddEntryPoint(model ExecutionModel, fn uint32, name string, interfaces []uint32) {
	words := append([]uint32{uint32(model), fn}, EncodeString(name)...)
	b.emit(sectionEntryPoint, OpEntryPoint, append(words, interfaces...)...)
}

func (b *ModuleBuilder) AddExecutionMode(fn uint32, mode ExecutionMode, params ...uint32) {
	b.emit(sectionExecutionMode, OpExecutionMode, append([]uint32{fn, uint32(mode)}, params...)...)
}

func (b *ModuleBuilder) AddName(id uint32, name string) {
	b.emit(sectionDebug, OpName, append([]uint32{id}, EncodeString(name)...)...)
}

func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	b.emit(sectionDebug, OpMemberName, append([]uint32{structID, member}, EncodeString(name)...)...)
}

func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotation, OpDecorate, append([]uint32{id, uint32(decoration)}, params...)...)
}

func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotation, OpMemberDecorate, append([]uint32{structID, member, uint32(decoration)}, params...)...)
}

// Type declarations. Each returns the new type id.

func (b *ModuleBuilder) AddTypeVoid() uint32 { return b.result(sectionType, OpTypeVoid) }

func (b *ModuleBuilder) AddTypeBool() uint32 { return b.result(sectionType, OpTypeBool) }

func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 {
	return b.result(sectionType, OpTypeFloat, width)
}

func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	return b.result(sectionType, OpTypeInt, width, flag(signed))
}

func (b *ModuleBuilder) AddTypeVector(component, count uint32) uint32 {
	return b.result(sectionType, OpTypeVector, component, count)
}

func (b *ModuleBuilder) AddTypeMatrix(column, columns uint32) uint32 {
	return b.result(sectionType, OpTypeMatrix, column, columns)
}

// ImageType holds the OpTypeImage operands that follow the sampled type.
type ImageType struct {
	Dim          Dim
	Depth        uint32 // 0 no depth, 1 depth, 2 unknown
	Arrayed      bool
	Multisampled bool
	Sampled      uint32 // 1 sampled, 2 storage
	Format       ImageFormat
}

func (b *ModuleBuilder) AddTypeImage(sampledType uint32, img ImageType) uint32 {
	return b.result(sectionType, OpTypeImage, sampledType, uint32(img.Dim), img.Depth,
		flag(img.Arrayed), flag(img.Multisampled), img.Sampled, uint32(img.Format))
}

func (b *ModuleBuilder) AddTypeSampler() uint32 { return b.result(sectionType, OpTypeSampler) }

func (b *ModuleBuilder) AddTypeSampledImage(image uint32) uint32 {
	return b.result(sectionType, OpTypeSampledImage, image)
}

// AddTypeArray declares an array whose length is the constant id length.
func (b *ModuleBuilder) AddTypeArray(elem, length uint32) uint32 {
	return b.result(sectionType, OpTypeArray, elem, length)
}

func (b *ModuleBuilder) AddTypeRuntimeArray(elem uint32) uint32 {
	return b.result(sectionType, OpTypeRuntimeArray, elem)
}

func (b *ModuleBuilder) AddTypePointer(storage StorageClass, base uint32) uint32 {
	return b.result(sectionType, OpTypePointer, uint32(storage), base)
}

func (b *ModuleBuilder) AddTypeFunction(ret uint32, params ...uint32) uint32 {
	return b.result(sectionType, OpTypeFunction, append([]uint32{ret}, params...)...)
}

func (b *ModuleBuilder) AddTypeStruct(members ...uint32) uint32 {
	return b.result(sectionType, OpTypeStruct, members...)
}

// AddConstant declares a scalar constant from its literal words.
func (b *ModuleBuilder) AddConstant(typ uint32, values ...uint32) uint32 {
	return b.typed(sectionType, OpConstant, typ, values...)
}

// AddVariable declares a module-scope variable.
func (b *ModuleBuilder) AddVariable(pointer uint32, storage StorageClass) uint32 {
	return b.typed(sectionVariable, OpVariable, pointer, uint32(storage))
}

func (b *ModuleBuilder) AddFunction(fnType, ret uint32, control FunctionControl) uint32 {
	return b.typed(sectionFunction, OpFunction, ret, uint32(control), fnType)
}

func (b *ModuleBuilder) AddLabel() uint32 { return b.result(sectionFunction, OpLabel) }

func (b *ModuleBuilder) AddReturn() { b.emit(sectionFunction, OpReturn) }

func (b *ModuleBuilder) AddFunctionEnd() { b.emit(sectionFunction, OpFunctionEnd) }

// AddEmptyEntryPoint declares a void function with an empty body as an
// entry point and returns the function id. Fragment entry points get
// OriginUpperLeft.
func (b *ModuleBuilder) AddEmptyEntryPoint(model ExecutionModel, name string, interfaces []uint32) uint32 {
	void := b.AddTypeVoid()
	fn := b.AddFunction(b.AddTypeFunction(void), void, FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(model, fn, name, interfaces)
	if model == ExecutionModelFragment {
		b.AddExecutionMode(fn, ExecutionModeOriginUpperLeft)
	}
	return fn
}

// Build encodes the module. The header bound is one past the last
// allocated id.
func (b *ModuleBuilder) Build() []byte {
	words := []uint32{MagicNumber, versionToWord(b.version), GeneratorID, b.bound, 0}
	for _, insts := range b.sections {
		for _, inst := range insts {
			words = append(words, inst.Encode()...)
		}
	}

	code := make([]byte, 0, len(words)*4)
	for _, w := range words {
		code = binary.LittleEndian.AppendUint32(code, w)
	}
	return code
}

func flag(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
