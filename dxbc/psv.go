// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"errors"
	"fmt"

	"github.com/gogpu/shaderpack/dxil"
)

// PSVResourceType is the binding class of a PSV0 resource record.
type PSVResourceType uint32

// PSV0 resource types.
const (
	PSVInvalid PSVResourceType = iota
	PSVSampler
	PSVCBV
	PSVSRVTyped
	PSVSRVRaw
	PSVSRVStructured
	PSVUAVTyped
	PSVUAVRaw
	PSVUAVStructured
	PSVUAVStructuredWithCounter
)

// Class returns the metadata resource class of t.
func (t PSVResourceType) Class() (dxil.Class, bool) {
	switch t {
	case PSVSampler:
		return dxil.ClassSampler, true
	case PSVCBV:
		return dxil.ClassCBuffer, true
	case PSVSRVTyped, PSVSRVRaw, PSVSRVStructured:
		return dxil.ClassSRV, true
	case PSVUAVTyped, PSVUAVRaw, PSVUAVStructured, PSVUAVStructuredWithCounter:
		return dxil.ClassUAV, true
	}
	return 0, false
}

// PSVResource is one resource binding record of a PSV0 part.
type PSVResource struct {
	Type       PSVResourceType
	Space      uint32
	LowerBound uint32
	// UpperBound is inclusive; 0xFFFFFFFF marks an unbounded range.
	UpperBound uint32
	// Kind and Flags are present from record version 1.
	Kind  dxil.ResourceKind
	Flags uint32
}

const (
	psvBindInfoV0 = 16
	psvBindInfoV1 = 24

	// psvRuntimeInfoV1 is the runtime info size EncodePSV writes.
	psvRuntimeInfoV1 = 36

	// maxPSVResources bounds the record count read from untrusted input.
	maxPSVResources = 1 << 16
)

// ParsePSV reads the resource binding records of a PSV0 part. The runtime
// info and signature tables are skipped.
func ParsePSV(data []byte) ([]PSVResource, error) {
	c := chunk(data)
	infoSize, err := c.u32(0)
	if err != nil {
		return nil, fmt.Errorf("dxbc: PSV0: %w", err)
	}
	at := uint64(4) + uint64(infoSize)
	if at+4 > uint64(len(data)) {
		return nil, fmt.Errorf("dxbc: PSV0 runtime info size %d exceeds part", infoSize)
	}
	count, _ := c.u32(uint32(at))
	if count == 0 {
		return nil, nil
	}
	if count > maxPSVResources {
		return nil, fmt.Errorf("dxbc: PSV0 declares %d resources", count)
	}
	recordSize, err := c.u32(uint32(at + 4))
	if err != nil {
		return nil, fmt.Errorf("dxbc: PSV0: %w", err)
	}
	if recordSize < psvBindInfoV0 || recordSize%4 != 0 {
		return nil, fmt.Errorf("dxbc: PSV0 resource record size %d", recordSize)
	}
	at += 8
	if at+uint64(count)*uint64(recordSize) > uint64(len(data)) {
		return nil, errors.New("dxbc: PSV0 resource table exceeds part")
	}

	out := make([]PSVResource, count)
	for i := range out {
		r := &out[i]
		base := uint32(at) + uint32(i)*recordSize
		var typ, kind uint32
		fields := []*uint32{&typ, &r.Space, &r.LowerBound, &r.UpperBound}
		if recordSize >= psvBindInfoV1 {
			fields = append(fields, &kind, &r.Flags)
		}
		if err := c.fields(base, fields...); err != nil {
			return nil, fmt.Errorf("dxbc: PSV0 resource %d: %w", i, err)
		}
		r.Type, r.Kind = PSVResourceType(typ), dxil.ResourceKind(kind)
		if r.UpperBound < r.LowerBound {
			return nil, fmt.Errorf("dxbc: PSV0 resource %d has range [%d, %d]", i, r.LowerBound, r.UpperBound)
		}
	}
	return out, nil
}

// EncodePSV encodes a PSV0 part with an empty runtime info block and
// version 1 resource records.
func EncodePSV(resources []PSVResource) []byte {
	w := &writer{}
	w.u32(psvRuntimeInfoV1)
	for i := 0; i < psvRuntimeInfoV1; i += 4 {
		w.u32(0)
	}
	w.u32(uint32(len(resources)))
	if len(resources) > 0 {
		w.u32(psvBindInfoV1)
	}
	for _, r := range resources {
		w.u32(uint32(r.Type))
		w.u32(r.Space)
		w.u32(r.LowerBound)
		w.u32(r.UpperBound)
		w.u32(uint32(r.Kind))
		w.u32(r.Flags)
	}
	return w.buf
}

// AddPSV encodes resources as a PSV0 part.
func (b *ContainerBuilder) AddPSV(resources []PSVResource) *ContainerBuilder {
	return b.AddPart(PartPSV0, EncodePSV(resources))
}

// AddProgram wraps bitcode in a program header and adds it as part tag,
// normally PartDXIL or PartSTAT.
func (b *ContainerBuilder) AddProgram(tag FourCC, kind dxil.ShaderKind, bitcode []byte) *ContainerBuilder {
	return b.AddPart(tag, dxil.EncodeProgram(kind, 6, 0, bitcode))
}
