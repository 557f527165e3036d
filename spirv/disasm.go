package spirv

import (
	"fmt"
	"io"
	"strconv"
)

var opcodeNames = map[OpCode]string{
	0: "OpNop", 1: "OpUndef", 3: "OpSource", 4: "OpSourceExtension",
	5: "OpName", 6: "OpMemberName", 7: "OpString", 8: "OpLine",
	10: "OpExtension", 11: "OpExtInstImport", 12: "OpExtInst",
	14: "OpMemoryModel", 15: "OpEntryPoint", 16: "OpExecutionMode",
	17: "OpCapability", 19: "OpTypeVoid", 20: "OpTypeBool",
	21: "OpTypeInt", 22: "OpTypeFloat", 23: "OpTypeVector",
	24: "OpTypeMatrix", 25: "OpTypeImage", 26: "OpTypeSampler",
	27: "OpTypeSampledImage", 28: "OpTypeArray", 29: "OpTypeRuntimeArray",
	30: "OpTypeStruct", 32: "OpTypePointer", 33: "OpTypeFunction",
	41: "OpConstantTrue", 42: "OpConstantFalse", 43: "OpConstant",
	44: "OpConstantComposite", 46: "OpConstantNull", 50: "OpSpecConstant",
	54: "OpFunction", 55: "OpFunctionParameter", 56: "OpFunctionEnd",
	57: "OpFunctionCall", 59: "OpVariable", 60: "OpImageTexelPointer",
	61: "OpLoad", 62: "OpStore", 65: "OpAccessChain", 68: "OpArrayLength",
	71: "OpDecorate", 72: "OpMemberDecorate",
	79: "OpVectorShuffle", 80: "OpCompositeConstruct", 81: "OpCompositeExtract",
	82: "OpCompositeInsert", 84: "OpTranspose", 86: "OpSampledImage",
	87: "OpImageSampleImplicitLod", 88: "OpImageSampleExplicitLod",
	89: "OpImageSampleDrefImplicitLod", 90: "OpImageSampleDrefExplicitLod",
	95: "OpImageFetch", 96: "OpImageGather", 98: "OpImageRead", 99: "OpImageWrite",
	104: "OpImageQuerySize", 109: "OpConvertFToU", 110: "OpConvertFToS",
	111: "OpConvertSToF", 112: "OpConvertUToF", 124: "OpBitcast",
	126: "OpSNegate", 127: "OpFNegate", 128: "OpIAdd", 129: "OpFAdd",
	130: "OpISub", 131: "OpFSub", 132: "OpIMul", 133: "OpFMul",
	134: "OpUDiv", 135: "OpSDiv", 136: "OpFDiv", 137: "OpUMod",
	142: "OpVectorTimesScalar", 143: "OpMatrixTimesScalar",
	144: "OpVectorTimesMatrix", 145: "OpMatrixTimesVector",
	146: "OpMatrixTimesMatrix", 148: "OpDot", 154: "OpAny", 155: "OpAll",
	166: "OpLogicalOr", 167: "OpLogicalAnd", 168: "OpLogicalNot",
	169: "OpSelect", 170: "OpIEqual", 171: "OpINotEqual",
	176: "OpULessThan", 177: "OpSLessThan", 180: "OpFOrdEqual",
	184: "OpFOrdLessThan", 186: "OpFOrdGreaterThan", 194: "OpShiftRightLogical", 196: "OpShiftLeftLogical",
	197: "OpBitwiseOr", 198: "OpBitwiseXor", 199: "OpBitwiseAnd", 200: "OpNot",
	224: "OpControlBarrier", 245: "OpPhi", 246: "OpLoopMerge",
	247: "OpSelectionMerge", 248: "OpLabel", 249: "OpBranch",
	250: "OpBranchConditional", 251: "OpSwitch", 252: "OpKill",
	253: "OpReturn", 254: "OpReturnValue", 255: "OpUnreachable",
}

var capabilityNames = map[uint32]string{
	0: "Matrix", 1: "Shader", 2: "Geometry", 3: "Tessellation",
	9: "Float16", 10: "Float64", 11: "Int64", 22: "Int16", 38: "Int8",
	33: "ImageCubeArray", 35: "ImageRect", 42: "Sampled1D", 43: "Image1D",
	45: "SampledBuffer", 46: "ImageBuffer", 49: "ImageQuery",
	50: "DerivativeControl", 54: "StorageImageReadWithoutFormat",
	55: "StorageImageWriteWithoutFormat", 61: "GroupNonUniform",
	4427: "DrawParameters", 4437: "StorageBuffer16BitAccess",
	4438: "UniformAndStorageBuffer16BitAccess", 4439: "StoragePushConstant16",
	4440: "StorageInputOutput16", 5015: "RuntimeDescriptorArray",
}

var storageClassNames = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 5: "CrossWorkgroup", 6: "Private", 7: "Function",
	8: "Generic", 9: "PushConstant", 10: "AtomicCounter", 11: "Image",
	12: "StorageBuffer",
}

var decorationNames = map[uint32]string{
	0: "RelaxedPrecision", 1: "SpecId", 2: "Block", 3: "BufferBlock",
	4: "RowMajor", 5: "ColMajor", 6: "ArrayStride", 7: "MatrixStride",
	11: "BuiltIn", 13: "NoPerspective", 14: "Flat", 16: "Centroid",
	17: "Sample", 18: "Invariant", 19: "Restrict", 20: "Aliased",
	23: "Coherent", 24: "NonWritable", 25: "NonReadable",
	30: "Location", 31: "Component", 32: "Index",
	33: "Binding", 34: "DescriptorSet", 35: "Offset",
}

var builtInNames = map[uint32]string{
	0: "Position", 1: "PointSize", 3: "ClipDistance", 4: "CullDistance",
	7: "PrimitiveId", 9: "Layer", 10: "ViewportIndex",
	15: "FragCoord", 16: "PointCoord", 17: "FrontFacing",
	18: "SampleId", 20: "SampleMask", 22: "FragDepth",
	24: "NumWorkgroups", 26: "WorkgroupId", 27: "LocalInvocationId",
	28: "GlobalInvocationId", 29: "LocalInvocationIndex",
	42: "VertexIndex", 43: "InstanceIndex",
}

var executionModeNames = map[uint32]string{
	7: "OriginUpperLeft", 8: "OriginLowerLeft", 9: "EarlyFragmentTests",
	12: "DepthReplacing", 14: "DepthGreater", 15: "DepthLess",
	16: "DepthUnchanged", 17: "LocalSize",
}

var executionModelNames = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute", 6: "Kernel",
}

var dimNames = map[uint32]string{
	0: "1D", 1: "2D", 2: "3D", 3: "Cube", 4: "Rect", 5: "Buffer", 6: "SubpassData",
}

var addressingModelNames = map[uint32]string{0: "Logical", 1: "Physical32", 2: "Physical64"}

var memoryModelNames = map[uint32]string{0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan"}

// minOperands is the operand count below which an instruction is printed
// with the generic form.
var minOperands = map[OpCode]int{
	OpName: 2, OpMemberName: 3, OpExtInstImport: 2, OpMemoryModel: 2,
	OpEntryPoint: 3, OpExecutionMode: 2, OpCapability: 1,
	OpDecorate: 2, OpMemberDecorate: 3,
	OpTypeVoid: 1, OpTypeBool: 1, OpTypeInt: 3, OpTypeFloat: 2,
	OpTypeVector: 3, OpTypeMatrix: 3, OpTypeImage: 8, OpTypeSampler: 1,
	OpTypeSampledImage: 2, OpTypeArray: 3, OpTypeRuntimeArray: 2,
	OpTypeStruct: 1, OpTypePointer: 3, OpTypeFunction: 2,
	OpConstant: 3, OpConstantComposite: 2, OpFunction: 4,
	OpFunctionParameter: 2, OpVariable: 3, OpLoad: 3, OpStore: 2,
	OpAccessChain: 3, OpLabel: 1, OpBranch: 1, OpReturnValue: 1,
}

// Disassemble writes a textual listing of a SPIR-V module to w.
func Disassemble(code []byte, w io.Writer) error {
	m, err := Parse(code)
	if err != nil {
		return err
	}
	d := &disassembler{w: w}
	d.printf("; SPIR-V\n")
	d.printf("; Version: %s\n", m.Header.Version)
	d.printf("; Generator: 0x%08X\n", m.Header.Generator)
	d.printf("; Bound: %d\n", m.Header.Bound)
	d.printf("; Schema: %d\n\n", m.Header.Schema)
	for _, inst := range m.Instructions {
		d.instruction(inst)
	}
	return d.err
}

type disassembler struct {
	w   io.Writer
	err error
}

func (d *disassembler) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func id(n uint32) string {
	return "%" + strconv.FormatUint(uint64(n), 10)
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return strconv.FormatUint(uint64(v), 10)
}

func ids(ops []uint32) string {
	var s string
	for _, op := range ops {
		s += " " + id(op)
	}
	return s
}

func literals(ops []uint32) string {
	var s string
	for _, op := range ops {
		s += " " + strconv.FormatUint(uint64(op), 10)
	}
	return s
}

const (
	indent = "               "
	result = "         "
)

//nolint:gocyclo,cyclop,funlen // one case per opcode
func (d *disassembler) instruction(inst Instruction) {
	name, ok := opcodeNames[inst.Opcode]
	if !ok {
		name = fmt.Sprintf("Op%d", inst.Opcode)
	}
	ops := inst.Words
	if len(ops) < minOperands[inst.Opcode] {
		d.printf("%s%s%s\n", result, name, literals(ops))
		return
	}

	switch inst.Opcode {
	case OpCapability:
		d.printf("%s%s %s\n", indent, name, lookup(capabilityNames, ops[0]))

	case OpExtInstImport:
		str, _ := DecodeString(ops[1:])
		d.printf("%s%s = %s %q\n", result, id(ops[0]), name, str)

	case OpMemoryModel:
		d.printf("%s%s %s %s\n", indent, name,
			lookup(addressingModelNames, ops[0]), lookup(memoryModelNames, ops[1]))

	case OpEntryPoint:
		str, n := DecodeString(ops[2:])
		d.printf("%s%s %s %s %q%s\n", indent, name,
			lookup(executionModelNames, ops[0]), id(ops[1]), str, ids(ops[2+n:]))

	case OpExecutionMode:
		d.printf("%s%s %s %s%s\n", indent, name, id(ops[0]),
			lookup(executionModeNames, ops[1]), literals(ops[2:]))

	case OpName:
		str, _ := DecodeString(ops[1:])
		d.printf("%s%s %s %q\n", indent, name, id(ops[0]), str)

	case OpMemberName:
		str, _ := DecodeString(ops[2:])
		d.printf("%s%s %s %d %q\n", indent, name, id(ops[0]), ops[1], str)

	case OpDecorate:
		params := literals(ops[2:])
		if Decoration(ops[1]) == DecorationBuiltIn && len(ops) > 2 {
			params = " " + lookup(builtInNames, ops[2])
		}
		d.printf("%s%s %s %s%s\n", indent, name, id(ops[0]), lookup(decorationNames, ops[1]), params)

	case OpMemberDecorate:
		params := literals(ops[3:])
		if Decoration(ops[2]) == DecorationBuiltIn && len(ops) > 3 {
			params = " " + lookup(builtInNames, ops[3])
		}
		d.printf("%s%s %s %d %s%s\n", indent, name, id(ops[0]), ops[1], lookup(decorationNames, ops[2]), params)

	case OpTypeVoid, OpTypeBool, OpTypeSampler, OpLabel:
		d.printf("%s%s = %s\n", result, id(ops[0]), name)

	case OpTypeInt:
		d.printf("%s%s = %s %d %d\n", result, id(ops[0]), name, ops[1], ops[2])

	case OpTypeFloat:
		d.printf("%s%s = %s %d\n", result, id(ops[0]), name, ops[1])

	case OpTypeVector, OpTypeMatrix:
		d.printf("%s%s = %s %s %d\n", result, id(ops[0]), name, id(ops[1]), ops[2])

	case OpTypeImage:
		// Result, Sampled Type, Dim, Depth, Arrayed, MS, Sampled, Format [, Access]
		d.printf("%s%s = %s %s %s%s\n", result, id(ops[0]), name, id(ops[1]),
			lookup(dimNames, ops[2]), literals(ops[3:]))

	case OpTypeSampledImage, OpTypeRuntimeArray:
		d.printf("%s%s = %s %s\n", result, id(ops[0]), name, id(ops[1]))

	case OpTypeArray:
		d.printf("%s%s = %s %s %s\n", result, id(ops[0]), name, id(ops[1]), id(ops[2]))

	case OpTypeStruct, OpTypeFunction:
		d.printf("%s%s = %s%s\n", result, id(ops[0]), name, ids(ops[1:]))

	case OpTypePointer:
		d.printf("%s%s = %s %s %s\n", result, id(ops[0]), name,
			lookup(storageClassNames, ops[1]), id(ops[2]))

	case OpConstant, OpSpecConstant:
		d.printf("%s%s = %s %s%s\n", result, id(ops[1]), name, id(ops[0]), literals(ops[2:]))

	case OpFunction:
		d.printf("%s%s = %s %s None %s\n", result, id(ops[1]), name, id(ops[0]), id(ops[3]))

	case OpVariable:
		d.printf("%s%s = %s %s %s%s\n", result, id(ops[1]), name, id(ops[0]),
			lookup(storageClassNames, ops[2]), ids(ops[3:]))

	case OpStore, OpBranch, OpReturnValue:
		d.printf("%s%s%s\n", indent, name, ids(ops))

	case OpFunctionEnd, OpReturn:
		d.printf("%s%s\n", indent, name)

	case OpCompositeExtract:
		if len(ops) < 3 {
			d.printf("%s%s%s\n", result, name, literals(ops))
			return
		}
		d.printf("%s%s = %s %s %s%s\n", result, id(ops[1]), name, id(ops[0]), id(ops[2]), literals(ops[3:]))

	default:
		d.generic(name, inst.Opcode, ops)
	}
}

// generic prints "result = op type operands..." for instructions that have
// a result type and id, and the raw operands otherwise.
func (d *disassembler) generic(name string, opcode OpCode, ops []uint32) {
	switch {
	case len(ops) >= 2 && hasResult(opcode):
		d.printf("%s%s = %s %s%s\n", result, id(ops[1]), name, id(ops[0]), ids(ops[2:]))
	default:
		d.printf("%s%s%s\n", indent, name, ids(ops))
	}
}

func hasResult(opcode OpCode) bool {
	switch {
	case opcode == OpFunctionParameter, opcode == OpLoad, opcode == OpAccessChain:
		return true
	case opcode == OpImageWrite:
		return false
	case opcode >= 77 && opcode <= 205:
		return true
	case opcode == 245, opcode == 12, opcode == 57, opcode == 68:
		return true
	}
	return false
}
