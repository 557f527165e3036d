// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shaderpack/shader"
)

// FourCC is a four-character part or container tag.
type FourCC [4]byte

// String returns the tag as text.
func (f FourCC) String() string {
	return string(f[:])
}

// Container and part tags.
var (
	Magic = FourCC{'D', 'X', 'B', 'C'}

	PartRDEF = FourCC{'R', 'D', 'E', 'F'}
	PartISGN = FourCC{'I', 'S', 'G', 'N'}
	PartOSGN = FourCC{'O', 'S', 'G', 'N'}
	PartOSG5 = FourCC{'O', 'S', 'G', '5'}
	PartISG1 = FourCC{'I', 'S', 'G', '1'}
	PartOSG1 = FourCC{'O', 'S', 'G', '1'}
	PartSHDR = FourCC{'S', 'H', 'D', 'R'}
	PartSHEX = FourCC{'S', 'H', 'E', 'X'}
	PartDXIL = FourCC{'D', 'X', 'I', 'L'}
	PartSTAT = FourCC{'S', 'T', 'A', 'T'}
	PartPSV0 = FourCC{'P', 'S', 'V', '0'}
	PartSFI0 = FourCC{'S', 'F', 'I', '0'}
	PartHASH = FourCC{'H', 'A', 'S', 'H'}
)

const (
	// headerSize covers magic, digest, version, total size and part count.
	headerSize = 32

	// partHeaderSize covers a part's FourCC and data size.
	partHeaderSize = 8

	// maxParts bounds the part count read from untrusted input.
	maxParts = 64
)

// Part is one tagged section of a container.
type Part struct {
	FourCC FourCC
	Data   []byte
}

// Container is a parsed DXBC/DXIL container.
type Container struct {
	Digest       [16]byte
	MajorVersion uint16
	MinorVersion uint16
	TotalSize    uint32
	Parts        []Part
}

// Parse reads the container header and part table. Part data aliases code.
func Parse(code []byte) (*Container, error) {
	c := chunk(code)
	if len(code) < headerSize {
		return nil, fmt.Errorf("dxbc: container too small (%d bytes)", len(code))
	}
	if FourCC(code[0:4]) != Magic {
		return nil, fmt.Errorf("dxbc: invalid magic %q", code[0:4])
	}

	ct := &Container{}
	copy(ct.Digest[:], code[4:20])
	major, _ := c.u16(20)
	minor, _ := c.u16(22)
	ct.MajorVersion, ct.MinorVersion = major, minor
	ct.TotalSize, _ = c.u32(24)
	count, _ := c.u32(28)

	if ct.TotalSize != uint32(len(code)) {
		return nil, fmt.Errorf("dxbc: header size %d does not match %d bytes", ct.TotalSize, len(code))
	}
	if count > maxParts {
		return nil, fmt.Errorf("dxbc: too many parts (%d)", count)
	}

	ct.Parts = make([]Part, 0, count)
	for i := uint32(0); i < count; i++ {
		offset, err := c.u32(headerSize + i*4)
		if err != nil {
			return nil, fmt.Errorf("dxbc: part table: %w", err)
		}
		var tag, size uint32
		if err := c.fields(offset, &tag, &size); err != nil {
			return nil, fmt.Errorf("dxbc: part %d header: %w", i, err)
		}
		start := uint64(offset) + partHeaderSize
		if start+uint64(size) > uint64(len(code)) {
			return nil, fmt.Errorf("dxbc: part %d (%d bytes at %d) exceeds container", i, size, offset)
		}
		ct.Parts = append(ct.Parts, Part{
			FourCC: FourCC(code[offset : offset+4]),
			Data:   code[start : start+uint64(size)],
		})
	}
	return ct, nil
}

// Part returns the first part with the given tag.
func (c *Container) Part(tag FourCC) (Part, bool) {
	for _, p := range c.Parts {
		if p.FourCC == tag {
			return p, true
		}
	}
	return Part{}, false
}

// IsDXIL reports whether the container carries DXIL rather than DXBC
// bytecode.
func (c *Container) IsDXIL() bool {
	_, ok := c.Part(PartDXIL)
	return ok
}

// Signed reports whether any digest byte is set.
func (c *Container) Signed() bool {
	return c.Digest != [16]byte{}
}

// CheckSigned reports whether code looks like a signed container.
//
// A wrong magic is reported as unsigned without logging. A container whose
// four digest words are all zero is logged as a validation warning; the
// result is informational and never blocks compilation.
func CheckSigned(code []byte, logger *slog.Logger) bool {
	if len(code) < 20 || FourCC(code[0:4]) != Magic {
		return false
	}
	var digest [16]byte
	copy(digest[:], code[4:20])
	if digest == ([16]byte{}) {
		if logger != nil {
			logger.Warn("shader bytecode is not signed",
				"kind", shader.ErrValidationWarning.String(),
				"size", len(code))
		}
		return false
	}
	return true
}
