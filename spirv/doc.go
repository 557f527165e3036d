// Package spirv reads SPIR-V modules produced by the cross-compiling
// toolchains and reflects the resources they declare.
//
// The package has three parts:
//
//   - Parse splits a binary module into instructions.
//   - Reflect walks decorations, types and global variables to build a
//     reflection.Descriptor.
//   - Disassemble prints a module in .spvasm-like text for diagnostics.
//
// ModuleBuilder assembles modules instruction by instruction and is used to
// produce test fixtures:
//
//	b := spirv.NewModuleBuilder(spirv.Version1_3)
//	b.AddCapability(spirv.CapabilityShader)
//	f32 := b.AddTypeFloat(32)
//	...
//	code := b.Build()
//	desc, err := spirv.Reflect(code)
package spirv
