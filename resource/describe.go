// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/shaderpack/reflection"
)

// Describe writes a human-readable summary of s to w.
func (s *Shader) Describe(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stage:        %s\n", s.Stage)
	fmt.Fprintf(&sb, "shader model: %s\n", s.ShaderModel)
	fmt.Fprintf(&sb, "target:       %s\n", s.Target)
	fmt.Fprintf(&sb, "entry point:  %s\n", s.EntryPoint)
	fmt.Fprintf(&sb, "bytecode:     %d bytes\n", len(s.Bytecode))

	d := s.Reflection
	if d == nil {
		sb.WriteString("reflection:   none\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	for _, a := range d.Inputs {
		fmt.Fprintf(&sb, "input    %2d %-16s %s\n", a.Location, a.Format, a.Name)
	}
	for _, a := range d.Outputs {
		fmt.Fprintf(&sb, "output   %2d %-16s %s\n", a.Location, a.Format, a.Name)
	}
	for _, b := range d.UniformBuffers {
		fmt.Fprintf(&sb, "uniform  %s (id %d, %d bytes)\n", binding(b.Set, b.Binding, b.Name), b.ID, b.Size)
		for _, m := range b.Members {
			fmt.Fprintf(&sb, "    +%-4d %-8s x%d %s\n", m.Offset, m.Type, m.ArrayCount, m.Name)
		}
	}
	describeImages(&sb, "sampled ", d.SampledImages)
	describeImages(&sb, "image   ", d.SeparateImages)
	describeImages(&sb, "sampler ", d.Samplers)
	for _, img := range d.StorageImages {
		fmt.Fprintf(&sb, "storage  %s %s %s%s\n", binding(img.Set, img.Binding, img.Name), img.Dimension, img.Format, readOnly(img.ReadOnly))
	}
	for _, b := range d.StorageBuffers {
		fmt.Fprintf(&sb, "buffer   %s %d bytes %s%s\n", binding(b.Set, b.Binding, b.Name), b.Size, b.Format, readOnly(b.ReadOnly))
	}
	for _, p := range d.PushConstants {
		fmt.Fprintf(&sb, "push     %s +%d %d bytes\n", p.Name, p.Offset, p.Size)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func describeImages(sb *strings.Builder, label string, images []reflection.Image) {
	for _, img := range images {
		fmt.Fprintf(sb, "%s %s %s", label, binding(img.Set, img.Binding, img.Name), img.Dimension)
		if img.Multisampled {
			sb.WriteString(" ms")
		}
		if img.DepthCompare {
			sb.WriteString(" compare")
		}
		sb.WriteString("\n")
	}
}

func binding(set, binding uint32, name string) string {
	return fmt.Sprintf("(%d,%d) %s", set, binding, name)
}

func readOnly(ro bool) string {
	if ro {
		return " readonly"
	}
	return ""
}
