// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"cmp"
	"slices"

	"github.com/gogpu/shaderpack/dxil"
	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
)

// unboundedRange is the PSV0 upper bound of an unbounded register range.
const unboundedRange = 0xFFFFFFFF

// reflectDXIL reflects the bindings of a container without RDEF, as dxc
// emits for shader model 6. PSV0 gives the bindings in runtime order. The
// dx.resources metadata, read from STAT or else from the DXIL program, adds
// names, shapes, element types and constant buffer layouts.
func reflectDXIL(desc *reflection.Descriptor, c *Container) error {
	var psv []PSVResource
	p, hasPSV := c.Part(PartPSV0)
	if hasPSV {
		var err error
		if psv, err = ParsePSV(p.Data); err != nil {
			return shader.WrapError(shader.ErrReflectionFailed, "parse PSV0", err)
		}
	}
	resources, hasMetadata, err := programResources(c)
	if err != nil {
		return err
	}
	if !hasPSV && !hasMetadata {
		return shader.NewError(shader.ErrReflectionFailed, "container has no RDEF, PSV0 or DXIL program part")
	}

	var bindings []dxil.Resource
	if hasPSV {
		if bindings, err = joinPSV(psv, resources, hasMetadata); err != nil {
			return err
		}
	} else {
		bindings = runtimeOrder(resources)
	}

	var space reflection.BindingSpace
	for _, r := range bindings {
		if err := bindResource(desc, &space, r); err != nil {
			return err
		}
	}
	return nil
}

// programResources reads dx.resources from the STAT part, or from the DXIL
// part when STAT is absent.
func programResources(c *Container) ([]dxil.Resource, bool, error) {
	p, ok := firstPart(c, PartSTAT, PartDXIL)
	if !ok {
		return nil, false, nil
	}
	prog, err := dxil.ParseProgram(p.Data)
	if err != nil {
		return nil, false, shader.WrapError(shader.ErrReflectionFailed, "parse "+p.FourCC.String(), err)
	}
	m, err := dxil.Parse(prog.Bitcode)
	if err != nil {
		return nil, false, shader.WrapError(shader.ErrReflectionFailed, "parse "+p.FourCC.String()+" bitcode", err)
	}
	resources, err := m.Resources()
	if err != nil {
		return nil, false, shader.WrapError(shader.ErrReflectionFailed, "read dx.resources", err)
	}
	return resources, true, nil
}

// runtimeOrder sorts metadata resources the way dxc lays out PSV0:
// constant buffers, samplers, SRVs, then UAVs, each in declaration order.
func runtimeOrder(resources []dxil.Resource) []dxil.Resource {
	rank := map[dxil.Class]int{dxil.ClassCBuffer: 0, dxil.ClassSampler: 1, dxil.ClassSRV: 2, dxil.ClassUAV: 3}
	out := slices.Clone(resources)
	slices.SortStableFunc(out, func(a, b dxil.Resource) int {
		return cmp.Compare(rank[a.Class], rank[b.Class])
	})
	return out
}

// joinPSV pairs each PSV0 record with its metadata entry. Without metadata
// the record alone describes the binding.
func joinPSV(psv []PSVResource, resources []dxil.Resource, hasMetadata bool) ([]dxil.Resource, error) {
	out := make([]dxil.Resource, 0, len(psv))
	for _, p := range psv {
		class, ok := p.Type.Class()
		if !ok {
			return nil, shader.Errorf(shader.ErrUnsupportedType, "PSV0 resource has unsupported type %d", p.Type)
		}
		if hasMetadata {
			i := slices.IndexFunc(resources, func(r dxil.Resource) bool {
				return r.Class == class && r.Space == p.Space && r.LowerBound == p.LowerBound
			})
			if i < 0 {
				return nil, shader.Errorf(shader.ErrReflectionFailed,
					"%s binding at register %d space %d has no dx.resources entry", class, p.LowerBound, p.Space)
			}
			out = append(out, resources[i])
			continue
		}

		r := dxil.Resource{Class: class, Space: p.Space, LowerBound: p.LowerBound, Kind: p.Kind}
		if p.UpperBound != unboundedRange {
			r.RangeSize = p.UpperBound - p.LowerBound + 1
		}
		switch p.Type {
		case PSVSRVRaw, PSVUAVRaw:
			r.Kind = dxil.ResourceRawBuffer
		case PSVSRVStructured, PSVUAVStructured, PSVUAVStructuredWithCounter:
			r.Kind = dxil.ResourceStructuredBuffer
			r.HasCounter = p.Type == PSVUAVStructuredWithCounter
		}
		out = append(out, r)
	}
	return out, nil
}

//nolint:gocyclo,cyclop,funlen // one case per resource class and kind
func bindResource(desc *reflection.Descriptor, space *reflection.BindingSpace, r dxil.Resource) error {
	count := r.RangeSize
	switch r.Class {
	case dxil.ClassCBuffer:
		if r.Layout == nil {
			return shader.Errorf(shader.ErrReflectionFailed,
				"constant buffer at register %d space %d has no layout metadata", r.LowerBound, r.Space)
		}
		members, err := layoutMembers(r.Layout)
		if err != nil {
			return err
		}
		size := r.Size
		if size == 0 {
			size = r.Layout.Size
		}
		set, binding := space.Assign(reflection.CategoryBuffer, r.LowerBound)
		desc.UniformBuffers = append(desc.UniformBuffers, reflection.UniformBuffer{
			ID:         r.ID,
			Set:        set,
			Binding:    binding,
			ArrayCount: count,
			Size:       size,
			Name:       r.Name,
			Members:    members,
		})

	case dxil.ClassSampler:
		set, binding := space.Assign(reflection.CategorySampler, r.LowerBound)
		desc.Samplers = append(desc.Samplers, reflection.Image{
			Set: set, Binding: binding, Dimension: reflection.DimensionNone,
			ArrayCount: count, Name: r.Name,
		})

	case dxil.ClassSRV:
		switch r.Kind {
		case dxil.ResourceTypedBuffer:
			format, err := resourceFormat(r)
			if err != nil {
				return err
			}
			set, binding := space.Assign(reflection.CategoryTexture, r.LowerBound)
			desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
				Set: set, Binding: binding, ArrayCount: count,
				Format: format, ReadOnly: true, Name: r.Name,
			})
		case dxil.ResourceRawBuffer, dxil.ResourceStructuredBuffer, dxil.ResourceTBuffer:
			var size uint32
			if r.Layout != nil {
				size = r.Layout.Size
			}
			set, binding := space.Assign(reflection.CategoryTexture, r.LowerBound)
			desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
				Set: set, Binding: binding, ArrayCount: count, Size: size,
				ReadOnly: true, Name: r.Name,
			})
		default:
			img, err := resourceImage(r, count)
			if err != nil {
				return err
			}
			img.Set, img.Binding = space.Assign(reflection.CategoryTexture, r.LowerBound)
			desc.SeparateImages = append(desc.SeparateImages, img)
		}

	case dxil.ClassUAV:
		switch r.Kind {
		case dxil.ResourceRawBuffer, dxil.ResourceStructuredBuffer:
			set, binding := space.Assign(reflection.CategoryStorage, r.LowerBound)
			desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
				Set: set, Binding: binding, ArrayCount: count, Name: r.Name,
			})
		case dxil.ResourceTypedBuffer:
			format, err := resourceFormat(r)
			if err != nil {
				return err
			}
			set, binding := space.Assign(reflection.CategoryStorage, r.LowerBound)
			desc.StorageBuffers = append(desc.StorageBuffers, reflection.StorageBuffer{
				Set: set, Binding: binding, ArrayCount: count,
				Format: format, Name: r.Name,
			})
		default:
			format, err := resourceFormat(r)
			if err != nil {
				return err
			}
			img, err := resourceImage(r, count)
			if err != nil {
				return err
			}
			img.Set, img.Binding = space.Assign(reflection.CategoryStorage, r.LowerBound)
			desc.StorageImages = append(desc.StorageImages, reflection.StorageImage{Image: img, Format: format})
		}

	default:
		return shader.Errorf(shader.ErrUnsupportedType, "resource %q has unsupported class %d", r.Name, r.Class)
	}
	return nil
}

// resourceImage maps a texture kind the way image maps an RDEF dimension.
func resourceImage(r dxil.Resource, count uint32) (reflection.Image, error) {
	img := reflection.Image{ArrayCount: count, Name: r.Name}
	var base reflection.BaseDimension
	var arrayed bool
	switch r.Kind {
	case dxil.ResourceTexture1D:
		base = reflection.Base1D
	case dxil.ResourceTexture1DArray:
		base, arrayed = reflection.Base1D, true
	case dxil.ResourceTexture2D:
		base = reflection.Base2D
	case dxil.ResourceTexture2DArray:
		base, arrayed = reflection.Base2D, true
	case dxil.ResourceTexture2DMS:
		base, img.Multisampled = reflection.Base2D, true
	case dxil.ResourceTexture2DMSArray:
		base, arrayed, img.Multisampled = reflection.Base2D, true, true
	case dxil.ResourceTexture3D:
		base = reflection.Base3D
	case dxil.ResourceTextureCube:
		base = reflection.BaseCube
	case dxil.ResourceTextureCubeArray:
		base, arrayed = reflection.BaseCube, true
	default:
		return img, shader.Errorf(shader.ErrUnsupportedType, "resource %q has unsupported kind %d", r.Name, r.Kind)
	}
	dim, err := reflection.NewDimension(base, arrayed)
	if err != nil {
		return img, shader.WrapError(shader.ErrUnsupportedType, "texture "+r.Name, err)
	}
	img.Dimension = dim
	return img, nil
}

// resourceFormat maps a typed resource's element type and component count.
func resourceFormat(r dxil.Resource) (reflection.Format, error) {
	var kind reflection.ScalarKind
	var width uint32
	switch r.ElementType {
	case dxil.CompUNormF16, dxil.CompUNormF32, dxil.CompUNormF64:
		kind, width = reflection.KindUnorm, 8
	case dxil.CompSNormF16, dxil.CompSNormF32, dxil.CompSNormF64:
		kind, width = reflection.KindSnorm, 8
	default:
		var err error
		if kind, width, err = compScalar(r.ElementType); err != nil {
			return reflection.FormatUndefined, shader.Errorf(shader.ErrUnsupportedFormat,
				"resource %q at register %d has no element type", r.Name, r.LowerBound)
		}
	}
	return reflection.VectorFormat(kind, width, r.Components)
}

func compScalar(c dxil.CompType) (reflection.ScalarKind, uint32, error) {
	switch c {
	case dxil.CompI1, dxil.CompU32:
		return reflection.KindUint, 32, nil
	case dxil.CompI32:
		return reflection.KindSint, 32, nil
	case dxil.CompI16:
		return reflection.KindSint, 16, nil
	case dxil.CompU16:
		return reflection.KindUint, 16, nil
	case dxil.CompI64:
		return reflection.KindSint, 64, nil
	case dxil.CompU64:
		return reflection.KindUint, 64, nil
	case dxil.CompF16, dxil.CompSNormF16, dxil.CompUNormF16:
		return reflection.KindFloat, 16, nil
	case dxil.CompF32, dxil.CompSNormF32, dxil.CompUNormF32:
		return reflection.KindFloat, 32, nil
	case dxil.CompF64, dxil.CompSNormF64, dxil.CompUNormF64:
		return reflection.KindFloat, 64, nil
	}
	return 0, 0, shader.Errorf(shader.ErrUnsupportedType, "unsupported component type %d", c)
}

// layoutMembers converts an annotated layout like cbufferMembers converts
// RDEF variables.
func layoutMembers(l *dxil.StructLayout) ([]reflection.Member, error) {
	members := make([]reflection.Member, 0, len(l.Fields))
	for _, f := range l.Fields {
		var typ reflection.MemberType
		var elementSize uint32
		if f.Struct != nil {
			typ, elementSize = reflection.MemberStruct, f.Struct.Size
		} else {
			kind, width, err := compScalar(f.Type)
			if err != nil {
				return nil, err
			}
			scalarSize := width / 8
			switch {
			case f.Matrix:
				typ, err = reflection.MatrixMemberType(f.Columns, f.Rows)
				elementSize = scalarSize * f.Columns * f.Rows
			case f.Columns > 1:
				typ, err = reflection.VectorMemberType(f.Columns)
				elementSize = scalarSize * f.Columns
			default:
				typ, err = reflection.ScalarMemberType(kind, width)
				elementSize = scalarSize
			}
			if err != nil {
				return nil, err
			}
		}
		members = append(members, reflection.NewMember(f.Name, typ, elementSize, f.ArrayCount))
	}
	reflection.PackMembers(members)
	return members, nil
}
