// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

// ContainerBuilder assembles a container from parts.
type ContainerBuilder struct {
	digest [16]byte
	parts  []Part
}

// NewContainerBuilder creates an empty, unsigned container builder.
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{}
}

// SetDigest sets the 16-byte digest written after the magic.
func (b *ContainerBuilder) SetDigest(digest [16]byte) *ContainerBuilder {
	b.digest = digest
	return b
}

// AddPart appends a raw part.
func (b *ContainerBuilder) AddPart(tag FourCC, data []byte) *ContainerBuilder {
	b.parts = append(b.parts, Part{FourCC: tag, Data: data})
	return b
}

// AddSignature encodes elements as a signature part of the given kind.
func (b *ContainerBuilder) AddSignature(tag FourCC, elements []SignatureElement) *ContainerBuilder {
	return b.AddPart(tag, EncodeSignature(tag, elements))
}

// AddRDEF encodes r as an RDEF part.
func (b *ContainerBuilder) AddRDEF(r *RDEF) *ContainerBuilder {
	return b.AddPart(PartRDEF, EncodeRDEF(r))
}

// Build returns the container bytes.
func (b *ContainerBuilder) Build() []byte {
	w := &writer{}
	w.buf = append(w.buf, Magic[:]...)
	w.buf = append(w.buf, b.digest[:]...)
	w.u16(1) // major
	w.u16(0) // minor
	sizeAt := w.len()
	w.u32(0)
	w.u32(uint32(len(b.parts)))

	tableAt := w.len()
	for range b.parts {
		w.u32(0)
	}
	for i, p := range b.parts {
		w.putU32(tableAt+uint32(i)*4, w.len())
		w.buf = append(w.buf, p.FourCC[:]...)
		w.u32(uint32(len(p.Data)))
		w.buf = append(w.buf, p.Data...)
		w.align()
	}
	w.putU32(sizeAt, w.len())
	return w.buf
}

// EncodeSignature encodes a signature part. The element layout follows tag.
func EncodeSignature(tag FourCC, elements []SignatureElement) []byte {
	size, ok := elementSize(tag)
	if !ok {
		return nil
	}
	hasStream := tag == PartOSG5 || tag == PartISG1 || tag == PartOSG1
	hasPrecision := tag == PartISG1 || tag == PartOSG1

	w := &writer{}
	w.u32(uint32(len(elements)))
	w.u32(8)

	names := make([]uint32, len(elements))
	for range elements {
		for i := uint32(0); i < size; i += 4 {
			w.u32(0)
		}
	}
	for i, e := range elements {
		names[i] = w.str(e.Name)
	}
	w.align()

	for i, e := range elements {
		at := 8 + uint32(i)*size
		if hasStream {
			w.putU32(at, e.Stream)
			at += 4
		}
		w.putU32(at, names[i])
		w.putU32(at+4, e.SemanticIndex)
		w.putU32(at+8, uint32(e.SystemValue))
		w.putU32(at+12, uint32(e.ComponentType))
		w.putU32(at+16, e.Register)
		w.buf[at+20] = e.Mask
		w.buf[at+21] = e.ReadWriteMask
		if hasPrecision {
			w.putU32(at+24, uint32(e.MinPrecision))
		}
	}
	return w.buf
}

// EncodeRDEF encodes a resource definition part. Record sizes follow the
// version in r.
func EncodeRDEF(r *RDEF) []byte {
	e := &rdefEncoder{
		layout: layoutFor(r.MajorVersion, r.MinorVersion),
		types:  make(map[*Type]uint32),
	}
	return e.encode(r)
}

type rdefEncoder struct {
	w      writer
	layout rdefLayout
	types  map[*Type]uint32
}

func (e *rdefEncoder) encode(r *RDEF) []byte {
	w := &e.w
	header := uint32(rdefHeaderSize)
	if r.MajorVersion >= 5 {
		header += rd11HeaderSize
	}
	bindAt := header
	cbAt := bindAt + uint32(len(r.Bindings))*e.layout.binding
	varAt := cbAt + uint32(len(r.ConstantBuffers))*cbufferSize
	var vars uint32
	for _, cb := range r.ConstantBuffers {
		vars += uint32(len(cb.Variables))
	}
	fixed := varAt + vars*e.layout.variable
	w.buf = make([]byte, fixed)

	w.putU32(0, uint32(len(r.ConstantBuffers)))
	w.putU32(4, cbAt)
	w.putU32(8, uint32(len(r.Bindings)))
	w.putU32(12, bindAt)
	w.putU32(16, uint32(r.MinorVersion)|uint32(r.MajorVersion)<<8|uint32(r.ProgramType)<<16)
	w.putU32(20, r.Flags)
	w.putU32(24, w.str(r.Creator))
	if r.MajorVersion >= 5 {
		copy(w.buf[28:], rd11Magic)
		sizes := []uint32{header, cbufferSize, e.layout.variable, e.layout.typ, memberSize, e.layout.binding, 0}
		for i, s := range sizes {
			w.putU32(32+uint32(i)*4, s)
		}
	}

	for i, b := range r.Bindings {
		at := bindAt + uint32(i)*e.layout.binding
		w.putU32(at, w.str(b.Name))
		for j, v := range []uint32{uint32(b.InputType), uint32(b.ReturnType), uint32(b.Dimension),
			b.NumSamples, b.BindPoint, b.BindCount, b.Flags} {
			w.putU32(at+4+uint32(j)*4, v)
		}
		if e.layout.binding == 40 {
			w.putU32(at+32, b.Space)
			w.putU32(at+36, b.ID)
		}
	}

	next := varAt
	for i, cb := range r.ConstantBuffers {
		at := cbAt + uint32(i)*cbufferSize
		w.putU32(at, w.str(cb.Name))
		w.putU32(at+4, uint32(len(cb.Variables)))
		w.putU32(at+8, next)
		w.putU32(at+12, cb.Size)
		w.putU32(at+16, cb.Flags)
		w.putU32(at+20, uint32(cb.Type))
		for _, v := range cb.Variables {
			w.putU32(next, w.str(v.Name))
			w.putU32(next+4, v.StartOffset)
			w.putU32(next+8, v.Size)
			w.putU32(next+12, v.Flags)
			if v.Type != nil {
				w.putU32(next+16, e.typ(v.Type))
			}
			next += e.layout.variable
		}
	}
	w.align()
	return w.buf
}

// typ appends a type record after its members and returns its offset.
func (e *rdefEncoder) typ(t *Type) uint32 {
	if at, ok := e.types[t]; ok {
		return at
	}
	w := &e.w

	type member struct{ name, typ, offset uint32 }
	members := make([]member, len(t.Members))
	for i, m := range t.Members {
		members[i] = member{name: w.str(m.Name), offset: m.Offset}
		w.align()
		if m.Type != nil {
			members[i].typ = e.typ(m.Type)
		}
	}
	w.align()
	var membersAt uint32
	if len(members) > 0 {
		membersAt = w.len()
		for _, m := range members {
			w.u32(m.name)
			w.u32(m.typ)
			w.u32(m.offset)
		}
	}
	var nameAt uint32
	if t.Name != "" {
		nameAt = w.str(t.Name)
		w.align()
	}

	at := w.len()
	w.u16(uint16(t.Class))
	w.u16(uint16(t.Kind))
	w.u16(t.Rows)
	w.u16(t.Columns)
	w.u16(t.Elements)
	w.u16(uint16(len(t.Members)))
	w.u32(membersAt)
	if e.layout.typ == 36 {
		for range 4 {
			w.u32(0)
		}
		w.u32(nameAt)
	}
	e.types[t] = at
	return at
}
