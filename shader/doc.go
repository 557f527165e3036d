// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shader holds the data model shared by every stage of the shader
// build pipeline: the compile policy describing one request, the shader model
// and target profile table, compiled bytecode and the error taxonomy.
//
// A Policy is created once per shader asset and is not modified while a
// compile call is running:
//
//	p := shader.DefaultPolicy(shader.StageFragment)
//	p.ShaderModel = shader.ShaderModel6_2
//	p.Defines = append(p.Defines, shader.Define{Name: "USE_FOG", Value: "1"})
//	if err := p.Validate(); err != nil {
//	    return err
//	}
//
// The target profile handed to the compiler is derived from the stage and
// shader model through a total lookup table:
//
//	profile, err := shader.TargetProfile(shader.StageVertex, shader.ShaderModel6_0)
//	// profile == "vs_6_0"
package shader
