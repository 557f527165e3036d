package spirv

import (
	"errors"
	"fmt"

	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
)

// Reflect extracts the resource description of every entry point in a
// SPIR-V module.
//
// Set and binding numbers come straight from the DescriptorSet and Binding
// decorations. Input and Output variables decorated BuiltIn, and blocks with
// BuiltIn members, are skipped.
func Reflect(code []byte) (*reflection.Descriptor, error) {
	return ReflectEntryPoint(code, "")
}

// ReflectEntryPoint is like Reflect, but limits stage inputs and outputs to
// the interface of the named entry point. An empty name selects all.
func ReflectEntryPoint(code []byte, entryPoint string) (*reflection.Descriptor, error) {
	m, err := Parse(code)
	if err != nil {
		return nil, shader.WrapError(shader.ErrReflectionFailed, "parse SPIR-V module", err)
	}
	r := newReflector(m)
	if err := r.checkTypes(); err != nil {
		return nil, shader.WrapError(shader.ErrReflectionFailed, "check SPIR-V types", err)
	}
	desc, err := r.reflect(entryPoint)
	if err != nil {
		var se *shader.Error
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, shader.WrapError(shader.ErrReflectionFailed, "reflect SPIR-V module", err)
	}
	return desc, nil
}

type variable struct {
	id      uint32
	pointer uint32
	storage StorageClass
}

type entryPoint struct {
	model      ExecutionModel
	name       string
	interfaces []uint32
}

// decorations maps a decoration to its literal operands.
type decorations map[Decoration][]uint32

func (d decorations) has(dec Decoration) bool {
	_, ok := d[dec]
	return ok
}

func (d decorations) value(dec Decoration) (uint32, bool) {
	ops, ok := d[dec]
	if !ok || len(ops) == 0 {
		return 0, false
	}
	return ops[0], true
}

// reflector indexes the instructions of one module.
type reflector struct {
	names       map[uint32]string
	memberNames map[uint32]map[uint32]string
	decos       map[uint32]decorations
	memberDecos map[uint32]map[uint32]decorations
	types       map[uint32]Instruction
	constants   map[uint32]uint32
	variables   []variable
	entryPoints []entryPoint
}

func newReflector(m *Module) *reflector {
	r := &reflector{
		names:       make(map[uint32]string),
		memberNames: make(map[uint32]map[uint32]string),
		decos:       make(map[uint32]decorations),
		memberDecos: make(map[uint32]map[uint32]decorations),
		types:       make(map[uint32]Instruction),
		constants:   make(map[uint32]uint32),
	}
	for _, inst := range m.Instructions {
		w := inst.Words
		switch inst.Opcode {
		case OpName:
			if len(w) >= 2 {
				r.names[w[0]], _ = DecodeString(w[1:])
			}
		case OpMemberName:
			if len(w) >= 3 {
				if r.memberNames[w[0]] == nil {
					r.memberNames[w[0]] = make(map[uint32]string)
				}
				r.memberNames[w[0]][w[1]], _ = DecodeString(w[2:])
			}
		case OpEntryPoint:
			if len(w) >= 3 {
				name, n := DecodeString(w[2:])
				r.entryPoints = append(r.entryPoints, entryPoint{
					model:      ExecutionModel(w[0]),
					name:       name,
					interfaces: w[2+n:],
				})
			}
		case OpDecorate:
			if len(w) >= 2 {
				if r.decos[w[0]] == nil {
					r.decos[w[0]] = make(decorations)
				}
				r.decos[w[0]][Decoration(w[1])] = w[2:]
			}
		case OpMemberDecorate:
			if len(w) >= 3 {
				if r.memberDecos[w[0]] == nil {
					r.memberDecos[w[0]] = make(map[uint32]decorations)
				}
				if r.memberDecos[w[0]][w[1]] == nil {
					r.memberDecos[w[0]][w[1]] = make(decorations)
				}
				r.memberDecos[w[0]][w[1]][Decoration(w[2])] = w[3:]
			}
		case OpTypeVoid, OpTypeBool, OpTypeInt, OpTypeFloat, OpTypeVector,
			OpTypeMatrix, OpTypeImage, OpTypeSampler, OpTypeSampledImage,
			OpTypeArray, OpTypeRuntimeArray, OpTypeStruct, OpTypePointer,
			OpTypeFunction:
			if len(w) >= 1+typeOperands[inst.Opcode] {
				r.types[w[0]] = Instruction{Opcode: inst.Opcode, Words: w[1:]}
			}
		case OpConstant, OpSpecConstant:
			if len(w) >= 3 {
				r.constants[w[1]] = w[2]
			}
		case OpVariable:
			if len(w) >= 3 {
				storage := StorageClass(w[2])
				if storage != StorageClassFunction {
					r.variables = append(r.variables, variable{id: w[1], pointer: w[0], storage: storage})
				}
			}
		}
	}
	return r
}

// typeOperands is the minimum operand count, after the result id, of the
// type instructions the reflector reads.
var typeOperands = map[OpCode]int{
	OpTypeInt:          2,
	OpTypeFloat:        1,
	OpTypeVector:       2,
	OpTypeMatrix:       2,
	OpTypeImage:        7,
	OpTypeSampledImage: 1,
	OpTypeArray:        2,
	OpTypeRuntimeArray: 1,
	OpTypePointer:      2,
}

// maxTypeNesting bounds how deep composite types may nest.
const maxTypeNesting = 64

// checkTypes rejects cyclic or overly deep composite types so that the
// recursive walkers below always terminate. Pointer pointees are not
// followed; the walkers never look through a pointer member.
func (r *reflector) checkTypes() error {
	// height holds the nesting height of finished types; -1 marks a type
	// still on the walk.
	height := make(map[uint32]int, len(r.types))
	var visit func(id uint32, depth int) (int, error)
	visit = func(id uint32, depth int) (int, error) {
		if h, ok := height[id]; ok {
			if h < 0 {
				return 0, fmt.Errorf("type %%%d contains itself", id)
			}
			return h, nil
		}
		t, ok := r.types[id]
		if !ok {
			return 0, nil
		}
		if depth > maxTypeNesting {
			return 0, fmt.Errorf("type %%%d nests deeper than %d levels", id, maxTypeNesting)
		}
		height[id] = -1
		h := 0
		for _, child := range composedOf(t) {
			ch, err := visit(child, depth+1)
			if err != nil {
				return 0, err
			}
			h = max(h, ch+1)
		}
		if h > maxTypeNesting {
			return 0, fmt.Errorf("type %%%d nests deeper than %d levels", id, maxTypeNesting)
		}
		height[id] = h
		return h, nil
	}
	for id := range r.types {
		if _, err := visit(id, 0); err != nil {
			return err
		}
	}
	return nil
}

// composedOf returns the type ids a composite type is built from.
func composedOf(t Instruction) []uint32 {
	switch t.Opcode {
	case OpTypeVector, OpTypeMatrix, OpTypeArray, OpTypeRuntimeArray, OpTypeSampledImage:
		return t.Words[:1]
	case OpTypeStruct:
		return t.Words
	}
	return nil
}

func (r *reflector) reflect(entryPoint string) (*reflection.Descriptor, error) {
	var iface map[uint32]bool
	if entryPoint != "" {
		ep, ok := r.entryPoint(entryPoint)
		if !ok {
			return nil, fmt.Errorf("entry point %q not found", entryPoint)
		}
		iface = make(map[uint32]bool, len(ep.interfaces))
		for _, id := range ep.interfaces {
			iface[id] = true
		}
	}

	desc := &reflection.Descriptor{}
	for _, v := range r.variables {
		ptr, ok := r.types[v.pointer]
		if !ok || ptr.Opcode != OpTypePointer || len(ptr.Words) < 2 {
			return nil, fmt.Errorf("variable %%%d: result type %%%d is not a pointer", v.id, v.pointer)
		}
		base := ptr.Words[1]

		var err error
		switch v.storage {
		case StorageClassInput, StorageClassOutput:
			if iface != nil && !iface[v.id] {
				continue
			}
			err = r.attribute(desc, v, base)
		case StorageClassUniform:
			if r.decos[r.elementType(base)].has(DecorationBufferBlock) {
				err = r.storageBuffer(desc, v, base)
			} else {
				err = r.uniformBuffer(desc, v, base)
			}
		case StorageClassStorageBuffer:
			err = r.storageBuffer(desc, v, base)
		case StorageClassUniformConstant:
			err = r.opaque(desc, v, base)
		case StorageClassPushConstant:
			err = r.pushConstant(desc, v, base)
		}
		if err != nil {
			return nil, err
		}
	}
	return desc, nil
}

func (r *reflector) entryPoint(name string) (entryPoint, bool) {
	for _, ep := range r.entryPoints {
		if ep.name == name {
			return ep, true
		}
	}
	return entryPoint{}, false
}

// elementType strips any array wrappers from a type.
func (r *reflector) elementType(id uint32) uint32 {
	for {
		t, ok := r.types[id]
		if !ok || (t.Opcode != OpTypeArray && t.Opcode != OpTypeRuntimeArray) || len(t.Words) == 0 {
			return id
		}
		id = t.Words[0]
	}
}

// arrayCount returns the element type and the total element count of a
// possibly arrayed type. Runtime arrays count as 0 elements.
func (r *reflector) arrayCount(id uint32) (uint32, uint32) {
	count := uint32(1)
	for {
		t, ok := r.types[id]
		if !ok {
			return id, count
		}
		switch t.Opcode {
		case OpTypeArray:
			if len(t.Words) < 2 {
				return id, count
			}
			count *= r.constants[t.Words[1]]
			id = t.Words[0]
		case OpTypeRuntimeArray:
			if len(t.Words) < 1 {
				return id, count
			}
			count = 0
			id = t.Words[0]
		default:
			return id, count
		}
	}
}

func (r *reflector) name(varID, typeID uint32) string {
	if n := r.names[varID]; n != "" {
		return n
	}
	return r.names[typeID]
}

func (r *reflector) binding(id uint32) (set, binding uint32) {
	d := r.decos[id]
	set, _ = d.value(DecorationDescriptorSet)
	binding, _ = d.value(DecorationBinding)
	return set, binding
}

func (r *reflector) isBuiltIn(varID, typeID uint32) bool {
	if r.decos[varID].has(DecorationBuiltIn) {
		return true
	}
	for _, d := range r.memberDecos[r.elementType(typeID)] {
		if d.has(DecorationBuiltIn) {
			return true
		}
	}
	return false
}

func (r *reflector) attribute(desc *reflection.Descriptor, v variable, base uint32) error {
	if r.isBuiltIn(v.id, base) {
		return nil
	}
	location, ok := r.decos[v.id].value(DecorationLocation)
	if !ok {
		return fmt.Errorf("interface variable %%%d has no Location", v.id)
	}
	format, err := r.attributeFormat(r.elementType(base))
	if err != nil {
		return err
	}
	attr := reflection.Attribute{Location: location, Format: format, Name: r.names[v.id]}
	if v.storage == StorageClassInput {
		desc.Inputs = append(desc.Inputs, attr)
	} else {
		desc.Outputs = append(desc.Outputs, attr)
	}
	return nil
}

// scalar returns the kind and bit width of a scalar type.
func (r *reflector) scalar(id uint32) (reflection.ScalarKind, uint32, error) {
	t, ok := r.types[id]
	if !ok {
		return 0, 0, fmt.Errorf("unknown type %%%d", id)
	}
	switch t.Opcode {
	case OpTypeFloat:
		return reflection.KindFloat, t.Words[0], nil
	case OpTypeInt:
		if t.Words[1] != 0 {
			return reflection.KindSint, t.Words[0], nil
		}
		return reflection.KindUint, t.Words[0], nil
	case OpTypeBool:
		return reflection.KindUint, 32, nil
	}
	return 0, 0, shader.Errorf(shader.ErrUnsupportedType, "type %%%d (op %d) is not a scalar", id, t.Opcode)
}

func (r *reflector) attributeFormat(id uint32) (reflection.Format, error) {
	t, ok := r.types[id]
	if !ok {
		return reflection.FormatUndefined, fmt.Errorf("unknown type %%%d", id)
	}
	components := uint32(1)
	if t.Opcode == OpTypeVector {
		id, components = t.Words[0], t.Words[1]
	}
	kind, width, err := r.scalar(id)
	if err != nil {
		return reflection.FormatUndefined, shader.Errorf(shader.ErrUnsupportedFormat,
			"no format for interface type %%%d", id)
	}
	return reflection.VectorFormat(kind, width, components)
}

// size returns the declared byte size of a type, honoring Offset,
// ArrayStride and MatrixStride decorations where present.
func (r *reflector) size(id uint32) uint32 {
	t, ok := r.types[id]
	if !ok {
		return 0
	}
	switch t.Opcode {
	case OpTypeBool:
		return 4
	case OpTypeInt, OpTypeFloat:
		return t.Words[0] / 8
	case OpTypeVector:
		return r.size(t.Words[0]) * t.Words[1]
	case OpTypeMatrix:
		return r.size(t.Words[0]) * t.Words[1]
	case OpTypeArray:
		n := r.constants[t.Words[1]]
		if stride, ok := r.decos[id].value(DecorationArrayStride); ok {
			return stride * n
		}
		return r.size(t.Words[0]) * n
	case OpTypeRuntimeArray:
		return 0
	case OpTypeStruct:
		var end uint32
		var running uint32
		for i, member := range t.Words {
			offset := running
			if o, ok := r.memberDecos[id][uint32(i)].value(DecorationOffset); ok {
				offset = o
			}
			size := r.memberSize(id, uint32(i), member)
			running = offset + size
			if running > end {
				end = running
			}
		}
		return end
	}
	return 0
}

func (r *reflector) memberSize(structID, index, typeID uint32) uint32 {
	t, ok := r.types[typeID]
	if ok && t.Opcode == OpTypeMatrix {
		if stride, ok := r.memberDecos[structID][index].value(DecorationMatrixStride); ok {
			return stride * t.Words[1]
		}
	}
	return r.size(typeID)
}

func (r *reflector) members(structID uint32) ([]reflection.Member, error) {
	t, ok := r.types[structID]
	if !ok || t.Opcode != OpTypeStruct {
		return nil, fmt.Errorf("type %%%d is not a struct", structID)
	}
	members := make([]reflection.Member, 0, len(t.Words))
	for i, typeID := range t.Words {
		elem, count := r.arrayCount(typeID)
		typ, err := r.memberType(elem)
		if err != nil {
			return nil, err
		}
		size := r.memberSize(structID, uint32(i), elem)
		members = append(members, reflection.NewMember(r.memberNames[structID][uint32(i)], typ, size, count))
	}
	reflection.PackMembers(members)
	return members, nil
}

func (r *reflector) memberType(id uint32) (reflection.MemberType, error) {
	t, ok := r.types[id]
	if !ok {
		return 0, fmt.Errorf("unknown type %%%d", id)
	}
	switch t.Opcode {
	case OpTypeVector:
		return reflection.VectorMemberType(t.Words[1])
	case OpTypeMatrix:
		col, ok := r.types[t.Words[0]]
		if !ok || col.Opcode != OpTypeVector {
			return 0, fmt.Errorf("matrix %%%d has no vector column type", id)
		}
		return reflection.MatrixMemberType(t.Words[1], col.Words[1])
	case OpTypeStruct:
		return reflection.MemberStruct, nil
	}
	kind, width, err := r.scalar(id)
	if err != nil {
		return 0, err
	}
	return reflection.ScalarMemberType(kind, width)
}

// wrapped returns the struct a Block holds as its only member at offset 0,
// the way naga wraps every uniform variable whose type is a struct.
func (r *reflector) wrapped(block uint32) (uint32, bool) {
	t, ok := r.types[block]
	if !ok || t.Opcode != OpTypeStruct || len(t.Words) != 1 || !r.decos[block].has(DecorationBlock) {
		return 0, false
	}
	inner, ok := r.types[t.Words[0]]
	if !ok || inner.Opcode != OpTypeStruct {
		return 0, false
	}
	if offset, ok := r.memberDecos[block][0].value(DecorationOffset); ok && offset != 0 {
		return 0, false
	}
	return t.Words[0], true
}

func (r *reflector) uniformBuffer(desc *reflection.Descriptor, v variable, base uint32) error {
	elem, count := r.arrayCount(base)
	layout := elem
	if inner, ok := r.wrapped(elem); ok {
		layout = inner
	}
	members, err := r.members(layout)
	if err != nil {
		return err
	}
	name := r.name(v.id, elem)
	if name == "" {
		name = r.names[layout]
	}
	set, binding := r.binding(v.id)
	desc.UniformBuffers = append(desc.UniformBuffers, reflection.UniformBuffer{
		ID:         uint32(len(desc.UniformBuffers)),
		Set:        set,
		Binding:    binding,
		ArrayCount: count,
		Size:       r.size(elem),
		Name:       name,
		Members:    members,
	})
	return nil
}

func (r *reflector) storageBuffer(desc *reflection.Descriptor, v variable, base uint32) error {
	elem, count := r.arrayCount(base)
	t, ok := r.types[elem]
	if !ok || t.Opcode != OpTypeStruct {
		return fmt.Errorf("storage buffer %%%d is not a struct", v.id)
	}
	readOnly := r.decos[v.id].has(DecorationNonWritable)
	if !readOnly && len(t.Words) > 0 {
		readOnly = true
		for i := range t.Words {
			if !r.memberDecos[elem][uint32(i)].has(DecorationNonWritable) {
				readOnly = false
				break
			}
		}
	}
	set, binding := r.binding(v.id)
	desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
		Set:        set,
		Binding:    binding,
		ArrayCount: count,
		Size:       r.size(elem),
		Format:     reflection.FormatUndefined,
		ReadOnly:   readOnly,
		Name:       r.name(v.id, elem),
	})
	return nil
}

func (r *reflector) pushConstant(desc *reflection.Descriptor, v variable, base uint32) error {
	t, ok := r.types[base]
	if !ok || t.Opcode != OpTypeStruct {
		return fmt.Errorf("push constant %%%d is not a struct", v.id)
	}
	var offset uint32
	found := false
	for i := range t.Words {
		if o, ok := r.memberDecos[base][uint32(i)].value(DecorationOffset); ok && (!found || o < offset) {
			offset, found = o, true
		}
	}
	desc.PushConstants = append(desc.PushConstants, reflection.PushConstant{
		Offset: offset,
		Size:   r.size(base) - offset,
		Name:   r.name(v.id, base),
	})
	return nil
}

// opaque reflects UniformConstant variables: images, samplers and
// combined image samplers.
func (r *reflector) opaque(desc *reflection.Descriptor, v variable, base uint32) error {
	elem, count := r.arrayCount(base)
	t, ok := r.types[elem]
	if !ok {
		return fmt.Errorf("unknown type %%%d", elem)
	}
	set, binding := r.binding(v.id)
	name := r.names[v.id]

	switch t.Opcode {
	case OpTypeSampler:
		desc.Samplers = append(desc.Samplers, reflection.Image{
			Set:        set,
			Binding:    binding,
			Dimension:  reflection.DimensionNone,
			ArrayCount: count,
			Name:       name,
		})
		return nil

	case OpTypeSampledImage:
		img, err := r.image(t.Words[0], set, binding, count, name)
		if err != nil {
			return err
		}
		desc.SampledImages = append(desc.SampledImages, img)
		return nil

	case OpTypeImage:
		operands := t.Words
		if Dim(operands[1]) == DimBuffer {
			return r.texelBuffer(desc, v, operands, set, binding, count, name)
		}
		img, err := r.image(elem, set, binding, count, name)
		if err != nil {
			return err
		}
		if operands[5] != 2 {
			desc.SeparateImages = append(desc.SeparateImages, img)
			return nil
		}
		format, err := imageFormat(ImageFormat(operands[6]))
		if err != nil {
			return err
		}
		desc.StorageImages = append(desc.StorageImages, reflection.StorageImage{
			Image:    img,
			Format:   format,
			ReadOnly: r.decos[v.id].has(DecorationNonWritable),
		})
		return nil
	}
	return shader.Errorf(shader.ErrUnsupportedType, "uniform constant %q has unsupported type (op %d)", name, t.Opcode)
}

func (r *reflector) image(id, set, binding, count uint32, name string) (reflection.Image, error) {
	t, ok := r.types[id]
	if !ok || t.Opcode != OpTypeImage || len(t.Words) < 7 {
		return reflection.Image{}, fmt.Errorf("type %%%d is not an image", id)
	}
	ops := t.Words
	var base reflection.BaseDimension
	switch Dim(ops[1]) {
	case Dim1D:
		base = reflection.Base1D
	case Dim2D:
		base = reflection.Base2D
	case Dim3D:
		base = reflection.Base3D
	case DimCube:
		base = reflection.BaseCube
	default:
		return reflection.Image{}, shader.Errorf(shader.ErrUnsupportedType,
			"image %q has unsupported dimensionality %d", name, ops[1])
	}
	dim, err := reflection.NewDimension(base, ops[3] == 1)
	if err != nil {
		return reflection.Image{}, err
	}
	return reflection.Image{
		Set:          set,
		Binding:      binding,
		Dimension:    dim,
		ArrayCount:   count,
		Multisampled: ops[4] == 1,
		DepthCompare: ops[2] == 1,
		Name:         name,
	}, nil
}

// texelBuffer records a Buffer-dimensioned image as a typed storage buffer.
func (r *reflector) texelBuffer(desc *reflection.Descriptor, v variable, ops []uint32, set, binding, count uint32, name string) error {
	var format reflection.Format
	var err error
	if ImageFormat(ops[6]) != ImageFormatUnknown {
		format, err = imageFormat(ImageFormat(ops[6]))
	} else {
		var kind reflection.ScalarKind
		var width uint32
		kind, width, err = r.scalar(ops[0])
		if err == nil {
			format, err = reflection.VectorFormat(kind, width, 4)
		}
	}
	if err != nil {
		return err
	}
	desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
		Set:        set,
		Binding:    binding,
		ArrayCount: count,
		Format:     format,
		ReadOnly:   ops[5] != 2 || r.decos[v.id].has(DecorationNonWritable),
		Name:       name,
	})
	return nil
}

var imageFormats = map[ImageFormat]reflection.Format{
	ImageFormatRgba32f:      reflection.FormatRGBA32Float,
	ImageFormatRgba16f:      reflection.FormatRGBA16Float,
	ImageFormatR32f:         reflection.FormatR32Float,
	ImageFormatRgba8:        reflection.FormatRGBA8Unorm,
	ImageFormatRgba8Snorm:   reflection.FormatRGBA8Snorm,
	ImageFormatRg32f:        reflection.FormatRG32Float,
	ImageFormatRg16f:        reflection.FormatRG16Float,
	ImageFormatR11fG11fB10f: reflection.FormatRG11B10Float,
	ImageFormatR16f:         reflection.FormatR16Float,
	ImageFormatRgba16:       reflection.FormatRGBA16Unorm,
	ImageFormatRgb10A2:      reflection.FormatRGB10A2Unorm,
	ImageFormatRg16:         reflection.FormatRG16Unorm,
	ImageFormatRg8:          reflection.FormatRG8Unorm,
	ImageFormatR16:          reflection.FormatR16Unorm,
	ImageFormatR8:           reflection.FormatR8Unorm,
	ImageFormatRgba16Snorm:  reflection.FormatRGBA16Snorm,
	ImageFormatRg16Snorm:    reflection.FormatRG16Snorm,
	ImageFormatRg8Snorm:     reflection.FormatRG8Snorm,
	ImageFormatR16Snorm:     reflection.FormatR16Snorm,
	ImageFormatR8Snorm:      reflection.FormatR8Snorm,
	ImageFormatRgba32i:      reflection.FormatRGBA32Sint,
	ImageFormatRgba16i:      reflection.FormatRGBA16Sint,
	ImageFormatRgba8i:       reflection.FormatRGBA8Sint,
	ImageFormatR32i:         reflection.FormatR32Sint,
	ImageFormatRg32i:        reflection.FormatRG32Sint,
	ImageFormatRg16i:        reflection.FormatRG16Sint,
	ImageFormatRg8i:         reflection.FormatRG8Sint,
	ImageFormatR16i:         reflection.FormatR16Sint,
	ImageFormatR8i:          reflection.FormatR8Sint,
	ImageFormatRgba32ui:     reflection.FormatRGBA32Uint,
	ImageFormatRgba16ui:     reflection.FormatRGBA16Uint,
	ImageFormatRgba8ui:      reflection.FormatRGBA8Uint,
	ImageFormatR32ui:        reflection.FormatR32Uint,
	ImageFormatRgb10a2ui:    reflection.FormatRGB10A2Uint,
	ImageFormatRg32ui:       reflection.FormatRG32Uint,
	ImageFormatRg16ui:       reflection.FormatRG16Uint,
	ImageFormatRg8ui:        reflection.FormatRG8Uint,
	ImageFormatR16ui:        reflection.FormatR16Uint,
	ImageFormatR8ui:         reflection.FormatR8Uint,
}

func imageFormat(f ImageFormat) (reflection.Format, error) {
	format, ok := imageFormats[f]
	if !ok {
		return reflection.FormatUndefined, shader.Errorf(shader.ErrUnsupportedFormat,
			"no format for SPIR-V image format %d", f)
	}
	return format, nil
}
