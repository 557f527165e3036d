// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"bytes"

	"github.com/gogpu/shaderpack/reflection"
	"github.com/gogpu/shaderpack/shader"
)

// Magic identifies a shader stream.
var Magic = [4]byte{'S', 'H', 'P', 'K'}

// Version is the stream format version written by Encode.
const Version uint32 = 1

// Shader is a compiled shader with its optional reflection.
type Shader struct {
	Stage       shader.Stage
	ShaderModel shader.ShaderModel
	Target      shader.Target
	EntryPoint  string
	Bytecode    []byte

	// Reflection is nil when the stream carries no reflection.
	Reflection *reflection.Descriptor
}

// Encode serializes s.
func (s *Shader) Encode() []byte {
	var w Writer
	w.Raw(Magic[:])
	w.U32(Version)
	writeEnum(&w, s.Stage)
	writeEnum(&w, s.ShaderModel)
	writeEnum(&w, s.Target)
	w.Str(s.EntryPoint)
	w.Bytes(s.Bytecode)
	w.Bool(s.Reflection != nil)
	if s.Reflection != nil {
		writeDescriptor(&w, s.Reflection)
	}
	return w.Data()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Shader) MarshalBinary() ([]byte, error) {
	return s.Encode(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Shader) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// Decode parses a shader stream. Empty input, a wrong magic or version,
// truncated data, out-of-range enumerations and oversize counts are
// ErrInvalidStream errors; no partial shader is returned.
func Decode(data []byte) (*Shader, error) {
	if len(data) == 0 {
		return nil, shader.NewError(shader.ErrInvalidStream, "empty stream")
	}

	r := NewReader(data)
	if magic := r.Raw(len(Magic)); magic != nil && !bytes.Equal(magic, Magic[:]) {
		return nil, shader.Errorf(shader.ErrInvalidStream, "bad magic %q", magic)
	}
	if v := r.U32(); r.Err() == nil && v != Version {
		return nil, shader.Errorf(shader.ErrInvalidStream, "unsupported version %d", v)
	}

	s := &Shader{
		Stage:       readEnum(r, "stage", shader.Stage.Valid),
		ShaderModel: readEnum(r, "shader model", shader.ShaderModel.Valid),
		Target: readEnum(r, "target", func(t shader.Target) bool {
			return t <= shader.TargetCrossCompiled
		}),
		EntryPoint: r.Str(),
		Bytecode:   r.Bytes(),
	}
	if r.Bool() {
		s.Reflection = readDescriptor(r)
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	if r.Remaining() != 0 {
		return nil, shader.Errorf(shader.ErrInvalidStream, "%d trailing bytes", r.Remaining())
	}
	return s, nil
}

func writeDescriptor(w *Writer, d *reflection.Descriptor) {
	writeSection(w, d.Inputs, writeAttribute)
	writeSection(w, d.Outputs, writeAttribute)
	writeSection(w, d.UniformBuffers, writeUniformBuffer)
	writeSection(w, d.SampledImages, writeImage)
	writeSection(w, d.SeparateImages, writeImage)
	writeSection(w, d.Samplers, writeImage)
	writeSection(w, d.StorageImages, writeStorageImage)
	writeSection(w, d.StorageBuffers, writeStorageBuffer)
	writeSection(w, d.PushConstants, writePushConstant)
}

func readDescriptor(r *Reader) *reflection.Descriptor {
	return &reflection.Descriptor{
		Inputs:         readSection(r, "input", readAttribute),
		Outputs:        readSection(r, "output", readAttribute),
		UniformBuffers: readSection(r, "uniform buffer", readUniformBuffer),
		SampledImages:  readSection(r, "sampled image", readImage),
		SeparateImages: readSection(r, "separate image", readImage),
		Samplers:       readSection(r, "sampler", readImage),
		StorageImages:  readSection(r, "storage image", readStorageImage),
		StorageBuffers: readSection(r, "storage buffer", readStorageBuffer),
		PushConstants:  readSection(r, "push constant", readPushConstant),
	}
}

func writeAttribute(w *Writer, a reflection.Attribute) {
	w.U32(a.Location)
	writeEnum(w, a.Format)
	w.Str(a.Name)
}

func readAttribute(r *Reader) reflection.Attribute {
	return reflection.Attribute{
		Location: r.U32(),
		Format:   readEnum(r, "format", reflection.Format.Valid),
		Name:     r.Str(),
	}
}

func writeUniformBuffer(w *Writer, b reflection.UniformBuffer) {
	w.U32(b.ID)
	w.U32(b.Set)
	w.U32(b.Binding)
	w.U32(b.ArrayCount)
	w.U32(b.Size)
	w.Str(b.Name)
	writeSection(w, b.Members, writeMember)
}

func readUniformBuffer(r *Reader) reflection.UniformBuffer {
	return reflection.UniformBuffer{
		ID:         r.U32(),
		Set:        r.U32(),
		Binding:    r.U32(),
		ArrayCount: r.U32(),
		Size:       r.U32(),
		Name:       r.Str(),
		Members:    readSection(r, "member", readMember),
	}
}

func writeMember(w *Writer, m reflection.Member) {
	writeEnum(w, m.Type)
	w.U32(m.ArrayCount)
	w.U32(m.Size)
	w.U32(m.Offset)
	w.Str(m.Name)
}

func readMember(r *Reader) reflection.Member {
	return reflection.Member{
		Type:       readEnum(r, "member type", reflection.MemberType.Valid),
		ArrayCount: r.U32(),
		Size:       r.U32(),
		Offset:     r.U32(),
		Name:       r.Str(),
	}
}

func writeImage(w *Writer, img reflection.Image) {
	w.U32(img.Set)
	w.U32(img.Binding)
	writeEnum(w, img.Dimension)
	w.U32(img.ArrayCount)
	w.Bool(img.Multisampled)
	w.Bool(img.DepthCompare)
	w.Str(img.Name)
}

func readImage(r *Reader) reflection.Image {
	return reflection.Image{
		Set:          r.U32(),
		Binding:      r.U32(),
		Dimension:    readEnum(r, "dimension", reflection.Dimension.Valid),
		ArrayCount:   r.U32(),
		Multisampled: r.Bool(),
		DepthCompare: r.Bool(),
		Name:         r.Str(),
	}
}

func writeStorageImage(w *Writer, img reflection.StorageImage) {
	writeImage(w, img.Image)
	writeEnum(w, img.Format)
	w.Bool(img.ReadOnly)
}

func readStorageImage(r *Reader) reflection.StorageImage {
	return reflection.StorageImage{
		Image:    readImage(r),
		Format:   readEnum(r, "format", reflection.Format.Valid),
		ReadOnly: r.Bool(),
	}
}

func writeStorageBuffer(w *Writer, b reflection.StorageBuffer) {
	w.U32(b.Set)
	w.U32(b.Binding)
	w.U32(b.ArrayCount)
	w.U32(b.Size)
	writeEnum(w, b.Format)
	w.Bool(b.ReadOnly)
	w.Str(b.Name)
}

func readStorageBuffer(r *Reader) reflection.StorageBuffer {
	return reflection.StorageBuffer{
		Set:        r.U32(),
		Binding:    r.U32(),
		ArrayCount: r.U32(),
		Size:       r.U32(),
		Format:     readEnum(r, "format", reflection.Format.Valid),
		ReadOnly:   r.Bool(),
		Name:       r.Str(),
	}
}

func writePushConstant(w *Writer, p reflection.PushConstant) {
	w.U32(p.Offset)
	w.U32(p.Size)
	w.Str(p.Name)
}

func readPushConstant(r *Reader) reflection.PushConstant {
	return reflection.PushConstant{
		Offset: r.U32(),
		Size:   r.U32(),
		Name:   r.Str(),
	}
}
