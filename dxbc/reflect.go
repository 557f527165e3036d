// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"errors"

	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
)

// Reflect extracts the resource description of a DXBC/DXIL container.
//
// Bindings are enumerated in RDEF order and mapped to descriptor sets by one
// reflection.BindingAllocator per register class. Containers without RDEF,
// as dxc emits them, are enumerated in PSV0 order with details from the
// DXIL metadata. The container format has
// no combined image samplers or push constants, so those sections are always
// empty.
func Reflect(code []byte) (*reflection.Descriptor, error) {
	c, err := Parse(code)
	if err != nil {
		return nil, shader.WrapError(shader.ErrReflectionFailed, "parse container", err)
	}
	return ReflectContainer(c)
}

// ReflectContainer is Reflect for an already parsed container.
func ReflectContainer(c *Container) (*reflection.Descriptor, error) {
	desc, err := reflectContainer(c)
	if err != nil {
		var se *shader.Error
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, shader.WrapError(shader.ErrReflectionFailed, "reflect container", err)
	}
	return desc, nil
}

func reflectContainer(c *Container) (*reflection.Descriptor, error) {
	desc := &reflection.Descriptor{}

	if p, ok := firstPart(c, PartISG1, PartISGN); ok {
		elements, err := ParseSignature(p)
		if err != nil {
			return nil, err
		}
		if desc.Inputs, err = attributes(elements); err != nil {
			return nil, err
		}
	}
	if p, ok := firstPart(c, PartOSG1, PartOSG5, PartOSGN); ok {
		elements, err := ParseSignature(p)
		if err != nil {
			return nil, err
		}
		if desc.Outputs, err = attributes(elements); err != nil {
			return nil, err
		}
	}

	p, ok := c.Part(PartRDEF)
	if !ok {
		if err := reflectDXIL(desc, c); err != nil {
			return nil, err
		}
		return desc, nil
	}
	rdef, err := ParseRDEF(p.Data)
	if err != nil {
		return nil, err
	}
	if err := reflectBindings(desc, rdef); err != nil {
		return nil, err
	}
	return desc, nil
}

func firstPart(c *Container, tags ...FourCC) (Part, bool) {
	for _, tag := range tags {
		if p, ok := c.Part(tag); ok {
			return p, true
		}
	}
	return Part{}, false
}

//nolint:gocyclo,cyclop,funlen // one case per D3D input type
func reflectBindings(desc *reflection.Descriptor, rdef *RDEF) error {
	// Logical ids of constant buffers, built once.
	ordinals := make(map[string]uint32, len(rdef.ConstantBuffers))
	cbuffers := make(map[string]*ConstantBuffer, len(rdef.ConstantBuffers))
	var next uint32
	for i := range rdef.ConstantBuffers {
		cb := &rdef.ConstantBuffers[i]
		if cb.Type != CBufferConstants {
			continue
		}
		if _, ok := ordinals[cb.Name]; !ok {
			ordinals[cb.Name] = next
			cbuffers[cb.Name] = cb
			next++
		}
	}

	var space reflection.BindingSpace
	for _, b := range rdef.Bindings {
		count := b.BindCount
		if count == 0 {
			count = 1
		}

		switch b.InputType {
		case InputCBuffer:
			cb, ok := cbuffers[b.Name]
			if !ok {
				return shader.Errorf(shader.ErrReflectionFailed, "constant buffer %q has no definition", b.Name)
			}
			members, err := cbufferMembers(cb)
			if err != nil {
				return err
			}
			set, binding := space.Assign(reflection.CategoryBuffer, b.BindPoint)
			desc.UniformBuffers = append(desc.UniformBuffers, reflection.UniformBuffer{
				ID:         ordinals[b.Name],
				Set:        set,
				Binding:    binding,
				ArrayCount: count,
				Size:       cb.Size,
				Name:       b.Name,
				Members:    members,
			})

		case InputTBuffer:
			var size uint32
			for _, cb := range rdef.ConstantBuffers {
				if cb.Name == b.Name {
					size = cb.Size
					break
				}
			}
			set, binding := space.Assign(reflection.CategoryTexture, b.BindPoint)
			desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
				Set: set, Binding: binding, ArrayCount: count, Size: size,
				ReadOnly: true, Name: b.Name,
			})

		case InputTexture:
			if b.Dimension == DimBuffer || b.Dimension == DimBufferEx {
				format, err := texelFormat(b)
				if err != nil {
					return err
				}
				set, binding := space.Assign(reflection.CategoryTexture, b.BindPoint)
				desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
					Set: set, Binding: binding, ArrayCount: count,
					Format: format, ReadOnly: true, Name: b.Name,
				})
				continue
			}
			img, err := image(b, count)
			if err != nil {
				return err
			}
			img.Set, img.Binding = space.Assign(reflection.CategoryTexture, b.BindPoint)
			desc.SeparateImages = append(desc.SeparateImages, img)

		case InputSampler:
			set, binding := space.Assign(reflection.CategorySampler, b.BindPoint)
			desc.Samplers = append(desc.Samplers, reflection.Image{
				Set: set, Binding: binding, Dimension: reflection.DimensionNone,
				ArrayCount: count, Name: b.Name,
			})

		case InputUAVRWTyped:
			format, err := texelFormat(b)
			if err != nil {
				return err
			}
			if b.Dimension == DimBuffer || b.Dimension == DimBufferEx {
				set, binding := space.Assign(reflection.CategoryStorage, b.BindPoint)
				desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
					Set: set, Binding: binding, ArrayCount: count,
					Format: format, Name: b.Name,
				})
				continue
			}
			img, err := image(b, count)
			if err != nil {
				return err
			}
			img.Set, img.Binding = space.Assign(reflection.CategoryStorage, b.BindPoint)
			desc.StorageImages = append(desc.StorageImages, reflection.StorageImage{Image: img, Format: format})

		case InputStructured, InputByteAddress:
			set, binding := space.Assign(reflection.CategoryTexture, b.BindPoint)
			desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
				Set: set, Binding: binding, ArrayCount: count,
				ReadOnly: true, Name: b.Name,
			})

		case InputUAVRWStructured, InputUAVRWByteAddress, InputUAVAppendStructured,
			InputUAVConsumeStructured, InputUAVRWStructuredWithCounter:
			set, binding := space.Assign(reflection.CategoryStorage, b.BindPoint)
			desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
				Set: set, Binding: binding, ArrayCount: count, Name: b.Name,
			})

		default:
			return shader.Errorf(shader.ErrUnsupportedType, "resource %q has unsupported input type %d", b.Name, b.InputType)
		}
	}
	return nil
}

// image maps a texture binding's dimension. Multisampling comes from the
// 2DMS dimensions; depth compare is not recorded by the container.
func image(b ResourceBinding, count uint32) (reflection.Image, error) {
	img := reflection.Image{ArrayCount: count, Name: b.Name}
	var base reflection.BaseDimension
	var arrayed bool
	switch b.Dimension {
	case DimTexture1D:
		base = reflection.Base1D
	case DimTexture1DArray:
		base, arrayed = reflection.Base1D, true
	case DimTexture2D:
		base = reflection.Base2D
	case DimTexture2DArray:
		base, arrayed = reflection.Base2D, true
	case DimTexture2DMS:
		base, img.Multisampled = reflection.Base2D, true
	case DimTexture2DMSArray:
		base, arrayed, img.Multisampled = reflection.Base2D, true, true
	case DimTexture3D:
		base = reflection.Base3D
	case DimTextureCube:
		base = reflection.BaseCube
	case DimTextureCubeArray:
		base, arrayed = reflection.BaseCube, true
	default:
		return img, shader.Errorf(shader.ErrUnsupportedType, "texture %q has unsupported dimension %d", b.Name, b.Dimension)
	}
	dim, err := reflection.NewDimension(base, arrayed)
	if err != nil {
		return img, shader.WrapError(shader.ErrUnsupportedType, "texture "+b.Name, err)
	}
	img.Dimension = dim
	return img, nil
}

// texelFormat maps a binding's return type and component count.
func texelFormat(b ResourceBinding) (reflection.Format, error) {
	var kind reflection.ScalarKind
	width := uint32(32)
	switch b.ReturnType {
	case ReturnUnorm:
		kind, width = reflection.KindUnorm, 8
	case ReturnSnorm:
		kind, width = reflection.KindSnorm, 8
	case ReturnSint:
		kind = reflection.KindSint
	case ReturnUint:
		kind = reflection.KindUint
	case ReturnFloat:
		kind = reflection.KindFloat
	case ReturnDouble:
		kind, width = reflection.KindFloat, 64
	default:
		return reflection.FormatUndefined, shader.Errorf(shader.ErrUnsupportedFormat,
			"resource %q has unsupported return type %d", b.Name, b.ReturnType)
	}
	return reflection.VectorFormat(kind, width, b.Components())
}

func cbufferMembers(cb *ConstantBuffer) ([]reflection.Member, error) {
	members := make([]reflection.Member, 0, len(cb.Variables))
	for _, v := range cb.Variables {
		if v.Type == nil {
			return nil, shader.Errorf(shader.ErrReflectionFailed, "variable %s.%s has no type", cb.Name, v.Name)
		}
		typ, elementSize, err := memberType(v.Type)
		if err != nil {
			return nil, err
		}
		count := uint32(v.Type.Elements)
		if typ == reflection.MemberStruct {
			n := count
			if n == 0 {
				n = 1
			}
			elementSize = v.Size / n
		}
		members = append(members, reflection.NewMember(v.Name, typ, elementSize, count))
	}
	reflection.PackMembers(members)
	return members, nil
}

// memberType returns the member tag and per-element byte size of a type.
// Struct sizes are left to the caller.
func memberType(t *Type) (reflection.MemberType, uint32, error) {
	if t.Class == ClassStruct {
		return reflection.MemberStruct, 0, nil
	}
	kind, width, err := scalarKind(t.Kind)
	if err != nil {
		return 0, 0, err
	}
	scalarSize := width / 8
	switch t.Class {
	case ClassScalar:
		typ, err := reflection.ScalarMemberType(kind, width)
		return typ, scalarSize, err
	case ClassVector:
		typ, err := reflection.VectorMemberType(uint32(t.Columns))
		return typ, scalarSize * uint32(t.Columns), err
	case ClassMatrixRows, ClassMatrixColumns:
		typ, err := reflection.MatrixMemberType(uint32(t.Columns), uint32(t.Rows))
		return typ, scalarSize * uint32(t.Columns) * uint32(t.Rows), err
	}
	return 0, 0, shader.Errorf(shader.ErrUnsupportedType, "unsupported variable class %d", t.Class)
}

func scalarKind(k VariableType) (reflection.ScalarKind, uint32, error) {
	switch k {
	case TypeBool, TypeUint:
		return reflection.KindUint, 32, nil
	case TypeInt:
		return reflection.KindSint, 32, nil
	case TypeFloat:
		return reflection.KindFloat, 32, nil
	case TypeDouble:
		return reflection.KindFloat, 64, nil
	case TypeMin16Float, TypeFloat16:
		return reflection.KindFloat, 16, nil
	case TypeMin16Int, TypeInt16:
		return reflection.KindSint, 16, nil
	case TypeMin16Uint, TypeUint16:
		return reflection.KindUint, 16, nil
	case TypeInt64:
		return reflection.KindSint, 64, nil
	case TypeUint64:
		return reflection.KindUint, 64, nil
	}
	return 0, 0, shader.Errorf(shader.ErrUnsupportedType, "unsupported variable type %d", k)
}
