// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/shaderpack/shader"
)

func TestArguments(t *testing.T) {
	tests := []struct {
		name   string
		policy func(p *shader.Policy)
		flags  Flags
		want   []string
	}{
		{
			name: "defaults",
			want: []string{"-E", "main", "-T", "vs_6_0", "-O3"},
		},
		{
			name: "no optimization adds debug info",
			policy: func(p *shader.Policy) {
				p.Optimization = shader.OptimizationNone
			},
			want: []string{"-E", "main", "-T", "vs_6_0", "-Od", "-Zi"},
		},
		{
			name: "size",
			policy: func(p *shader.Policy) {
				p.Optimization = shader.OptimizationSize
				p.ShaderModel = shader.ShaderModel5_1
			},
			want: []string{"-E", "main", "-T", "vs_5_1", "-O1"},
		},
		{
			name: "everything in order",
			policy: func(p *shader.Policy) {
				p.Stage = shader.StageFragment
				p.ShaderModel = shader.ShaderModel6_2
				p.EntryPoint = "ps_main"
				p.Optimization = shader.OptimizationPerformance
				p.Target = shader.TargetCrossCompiled
				p.Defines = []shader.Define{{Name: "USE_FOG", Value: "1"}, {Name: "HDR"}}
				p.IncludePaths = []string{"inc", "common", "inc"}
			},
			flags: Flags{WarningsAsErrors: true, Extra: []string{"-Qstrip_debug"}},
			want: []string{
				"-E", "ps_main", "-T", "ps_6_2", "-O2", "-WX", "-spirv",
				"-DUSE_FOG=1", "-DHDR", "-Iinc", "-Icommon", "-Qstrip_debug",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := shader.DefaultPolicy(shader.StageVertex)
			if tt.policy != nil {
				tt.policy(p)
			}
			got, err := Arguments(p, tt.flags)
			if err != nil {
				t.Fatalf("Arguments: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Arguments = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArguments_Deterministic(t *testing.T) {
	p := shader.DefaultPolicy(shader.StageCompute)
	p.Defines = []shader.Define{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}
	first, err := Arguments(p, Flags{})
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, _ := Arguments(p, Flags{})
		if !slices.Equal(first, again) {
			t.Fatalf("Arguments changed between calls: %q vs %q", first, again)
		}
	}
}

func TestArguments_InvalidPolicy(t *testing.T) {
	p := shader.DefaultPolicy(shader.StageVertex)
	p.EntryPoint = ""
	if _, err := Arguments(p, Flags{}); !errors.Is(err, shader.ErrInvalidPolicy) {
		t.Errorf("Arguments error = %v, want ErrInvalidPolicy", err)
	}
}
