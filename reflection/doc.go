// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package reflection defines the backend-independent description of the
// resources a compiled shader binds.
//
// Both the native container extractor (package dxbc) and the SPIR-V extractor
// (package spirv) produce a Descriptor. Its nine sections are always written
// in the same order, so a consumer never needs to know which backend
// produced it:
//
//  1. Inputs
//  2. Outputs
//  3. UniformBuffers (with nested Members)
//  4. SampledImages (combined image+sampler)
//  5. SeparateImages
//  6. Samplers
//  7. StorageImages
//  8. StorageBuffers
//  9. PushConstants
//
// Native resources are addressed by flat register numbers. BindingAllocator
// partitions them into the engine's (descriptor set, binding) model.
package reflection
