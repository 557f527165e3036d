// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resource

import "fmt"

// Type identifies the kind of data a resource holds.
type Type uint32

const (
	// TypeUnknown is the zero value.
	TypeUnknown Type = iota

	// TypeShader marks an encoded Shader stream.
	TypeShader
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeShader:
		return "shader"
	default:
		return fmt.Sprintf("Type(%d)", uint32(t))
	}
}

// Header is the bookkeeping stamped onto every resource.
type Header struct {
	Name string
	Type Type
	Size uint64
}

// Resource is a named byte stream ready for the loader.
type Resource struct {
	Header Header
	Data   []byte
}

// NewShader encodes s into a resource named name.
func NewShader(name string, s *Shader) *Resource {
	r := &Resource{Data: s.Encode()}
	r.Fill(name, TypeShader)
	return r
}

// Fill stamps name, type and the current data size onto the header.
func (r *Resource) Fill(name string, typ Type) {
	r.Header = Header{Name: name, Type: typ, Size: uint64(len(r.Data))}
}

// Shader decodes the resource data. Resources of another type are
// rejected.
func (r *Resource) Shader() (*Shader, error) {
	if r.Header.Type != TypeShader {
		return nil, fmt.Errorf("resource %q: not a shader (%s)", r.Header.Name, r.Header.Type)
	}
	return Decode(r.Data)
}
