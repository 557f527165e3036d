// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

// Attribute is a stage input or output.
type Attribute struct {
	// Location is the attribute slot.
	Location uint32

	// Format is the attribute's pixel/vertex format.
	Format Format

	// Name is the semantic or variable name.
	Name string
}

// Member is one member of a uniform buffer.
type Member struct {
	// Type is the member type tag.
	Type MemberType

	// ArrayCount is the number of elements, at least 1.
	ArrayCount uint32

	// Size is the element size times ArrayCount, in bytes.
	Size uint32

	// Offset is the running sum of the preceding members' sizes.
	Offset uint32

	// Name is the member name.
	Name string
}

// UniformBuffer is a constant/uniform buffer binding.
type UniformBuffer struct {
	// ID is the buffer's logical id.
	ID uint32

	Set        uint32
	Binding    uint32
	ArrayCount uint32

	// Size is the total buffer size in bytes.
	Size uint32

	Name    string
	Members []Member
}

// Image is a sampled, separate or combined image binding. Samplers use the
// same record with DimensionNone.
type Image struct {
	Set          uint32
	Binding      uint32
	Dimension    Dimension
	ArrayCount   uint32
	Multisampled bool
	DepthCompare bool
	Name         string
}

// StorageImage is a read/write image binding.
type StorageImage struct {
	Image

	// Format is the texel format.
	Format Format

	// ReadOnly is set for images that are never written.
	ReadOnly bool
}

// StorageBuffer is a read/write or read-only buffer binding.
type StorageBuffer struct {
	Set        uint32
	Binding    uint32
	ArrayCount uint32

	// Size is the declared size in bytes; 0 when only a runtime array is
	// declared.
	Size uint32

	// Format is the texel format of typed buffers, FormatUndefined otherwise.
	Format Format

	ReadOnly bool
	Name     string
}

// PushConstant is a block of push constant data.
type PushConstant struct {
	Offset uint32
	Size   uint32
	Name   string
}

// Descriptor is the complete reflection of one shader.
type Descriptor struct {
	Inputs         []Attribute
	Outputs        []Attribute
	UniformBuffers []UniformBuffer
	SampledImages  []Image
	SeparateImages []Image
	Samplers       []Image
	StorageImages  []StorageImage
	StorageBuffers []StorageBuffer
	PushConstants  []PushConstant
}

// Counts returns the number of records in each of the nine sections, in
// wire order.
func (d *Descriptor) Counts() [9]int {
	return [9]int{
		len(d.Inputs),
		len(d.Outputs),
		len(d.UniformBuffers),
		len(d.SampledImages),
		len(d.SeparateImages),
		len(d.Samplers),
		len(d.StorageImages),
		len(d.StorageBuffers),
		len(d.PushConstants),
	}
}

// Empty reports whether the shader binds nothing.
func (d *Descriptor) Empty() bool {
	return d.Counts() == [9]int{}
}
