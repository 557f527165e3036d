// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxil

import (
	"reflect"
	"strings"
	"testing"
)

func cameraLayout() *StructLayout {
	light := &StructLayout{Name: "Light", Size: 32, Fields: []Field{
		{Name: "position", Type: CompF32, Rows: 1, Columns: 3, Offset: 0},
		{Name: "intensity", Type: CompF32, Rows: 1, Columns: 1, Offset: 12},
		{Name: "color", Type: CompF32, Rows: 1, Columns: 4, Offset: 16},
	}}
	return &StructLayout{Name: "Camera", Size: 196, Fields: []Field{
		{Name: "viewProj", Type: CompF32, Rows: 4, Columns: 4, Matrix: true, Offset: 0},
		{Name: "weights", Type: CompF16, Rows: 1, Columns: 1, ArrayCount: 4, Offset: 64},
		{Name: "lights", Rows: 1, Columns: 1, ArrayCount: 2, Struct: light, Offset: 128},
		{Name: "frame", Type: CompU32, Rows: 1, Columns: 1, Offset: 192},
	}}
}

func TestResources_RoundTrip(t *testing.T) {
	want := []Resource{
		{Class: ClassSRV, ID: 0, Name: "albedo", RangeSize: 1,
			Kind: ResourceTexture2D, ElementType: CompF32, Components: 4},
		{Class: ClassSRV, ID: 1, Name: "shadows", Space: 1, LowerBound: 2, RangeSize: 0,
			Kind: ResourceTexture2DArray, ElementType: CompUNormF32, Components: 4},
		{Class: ClassUAV, ID: 0, Name: "particles", LowerBound: 1, RangeSize: 1,
			Kind: ResourceStructuredBuffer, Stride: 32, GloballyCoherent: true, HasCounter: true},
		{Class: ClassUAV, ID: 1, Name: "histogram", LowerBound: 2, RangeSize: 4,
			Kind: ResourceTypedBuffer, ElementType: CompU32, Components: 1},
		{Class: ClassCBuffer, ID: 0, Name: "Camera", RangeSize: 1, Size: 208, Layout: cameraLayout()},
		{Class: ClassSampler, ID: 0, Name: "shadowSampler", LowerBound: 1, RangeSize: 1, Comparison: true},
	}

	b := NewModuleBuilder()
	b.AddResources(want)
	m, err := Parse(b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, err := m.Resources()
	if err != nil {
		t.Fatalf("Resources failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d resources, want %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("resource %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestResources_ClassOrder(t *testing.T) {
	b := NewModuleBuilder()
	// Declared out of class order; Resources groups by class.
	b.AddResources([]Resource{
		{Class: ClassSampler, Name: "s", RangeSize: 1},
		{Class: ClassSRV, Name: "t", RangeSize: 1, Kind: ResourceTexture2D, ElementType: CompF32, Components: 4},
	})
	m, err := Parse(b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, err := m.Resources()
	if err != nil {
		t.Fatalf("Resources failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "t" || got[1].Name != "s" {
		t.Errorf("resources = %+v, want t then s", got)
	}
}

func TestResources_NoMetadata(t *testing.T) {
	m, err := Parse(NewModuleBuilder().Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, err := m.Resources()
	if err != nil || got != nil {
		t.Errorf("Resources = %v, %v; want nil, nil", got, err)
	}
}

// cbuffer declares a constant buffer over ty with the given annotations.
func cbuffer(b *ModuleBuilder, ty TypeID, annotations ...MD) {
	entry := b.Node(b.Uint(0), b.Value(b.Global(ty)), b.String("B"),
		b.Uint(0), b.Uint(0), b.Uint(1), b.Uint(16), NullMD)
	b.Named("dx.resources", b.Node(NullMD, NullMD, b.Node(entry), NullMD))
	if len(annotations) > 0 {
		b.Named("dx.typeAnnotations", b.Node(append([]MD{b.Uint(annotationsStruct)}, annotations...)...))
	}
}

func TestResources_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *ModuleBuilder)
		want  string
	}{
		{
			name: "missing annotation",
			build: func(b *ModuleBuilder) {
				cbuffer(b, b.Struct("hostlayout.B", b.Float()))
			},
			want: "no layout annotation",
		},
		{
			name: "struct containing itself",
			build: func(b *ModuleBuilder) {
				self := TypeID(len(b.types))
				loop := b.Struct("hostlayout.Loop", self)
				field := b.Node(b.Uint(fieldName), b.String("next"))
				cbuffer(b, loop, b.Value(b.Undef(loop)), b.Node(b.Uint(16), field))
			},
			want: "nest deeper",
		},
		{
			name: "too few field annotations",
			build: func(b *ModuleBuilder) {
				st := b.Struct("hostlayout.B", b.Float(), b.Float())
				field := b.Node(b.Uint(fieldName), b.String("x"), b.Uint(fieldCompType), b.Uint(int64(CompF32)))
				cbuffer(b, st, b.Value(b.Undef(st)), b.Node(b.Uint(16), field))
			},
			want: "has 1 fields, want 2",
		},
		{
			name: "5x4 matrix",
			build: func(b *ModuleBuilder) {
				st := b.Struct("hostlayout.B", b.Array(20, b.Float()))
				field := b.Node(b.Uint(fieldName), b.String("m"),
					b.Uint(fieldMatrix), b.Node(b.Uint(5), b.Uint(4), b.Uint(2)))
				cbuffer(b, st, b.Value(b.Undef(st)), b.Node(b.Uint(80), field))
			},
			want: "matrix is 5x4",
		},
		{
			name: "zero range",
			build: func(b *ModuleBuilder) {
				entry := b.Node(b.Uint(0), NullMD, b.String("s"), b.Uint(0), b.Uint(0), b.Uint(0), b.Uint(0), NullMD)
				b.Named("dx.resources", b.Node(NullMD, NullMD, NullMD, b.Node(entry)))
			},
			want: "range size 0",
		},
		{
			name: "short entry",
			build: func(b *ModuleBuilder) {
				entry := b.Node(b.Uint(0), NullMD, b.String("t"))
				b.Named("dx.resources", b.Node(b.Node(entry)))
			},
			want: "has no operand 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewModuleBuilder()
			tt.build(b)
			m, err := Parse(b.Bytes())
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			_, err = m.Resources()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want an error containing %q", err, tt.want)
			}
		})
	}
}

func TestResources_AnnotationByName(t *testing.T) {
	b := NewModuleBuilder()
	variable := b.Struct("hostlayout.B", b.Float())
	annotated := b.Struct("B", b.Float())
	field := b.Node(b.Uint(fieldName), b.String("x"), b.Uint(fieldCompType), b.Uint(int64(CompF32)))
	cbuffer(b, variable, b.Value(b.Undef(annotated)), b.Node(b.Uint(16), field))

	m, err := Parse(b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, err := m.Resources()
	if err != nil {
		t.Fatalf("Resources failed: %v", err)
	}
	want := &StructLayout{Name: "B", Size: 16, Fields: []Field{{Name: "x", Type: CompF32, Rows: 1, Columns: 1}}}
	if len(got) != 1 || !reflect.DeepEqual(got[0].Layout, want) {
		t.Errorf("resources = %+v, want layout %+v", got, want)
	}
}
