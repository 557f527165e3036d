// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import "fmt"

// ShaderModel is a Direct3D shader model. The zero value is an alias that
// resolves to 6.0; concrete models are ordered, so sm >= ShaderModel6_2 holds
// for every resolved model from 6.2 on.
type ShaderModel uint8

const (
	ShaderModelDefault ShaderModel = iota

	// ShaderModel5_1 is the last DXBC model and the first with register
	// spaces.
	ShaderModel5_1

	// ShaderModel6_0 is the first DXIL model.
	ShaderModel6_0
	ShaderModel6_1

	// ShaderModel6_2 adds native 16-bit types.
	ShaderModel6_2
	ShaderModel6_3
	ShaderModel6_4
	ShaderModel6_5
	ShaderModel6_6

	shaderModelCount
)

// modelVersions holds major*10+minor per concrete model.
var modelVersions = [shaderModelCount]uint8{
	ShaderModel5_1: 51,
	ShaderModel6_0: 60,
	ShaderModel6_1: 61,
	ShaderModel6_2: 62,
	ShaderModel6_3: 63,
	ShaderModel6_4: 64,
	ShaderModel6_5: 65,
	ShaderModel6_6: 66,
}

// ShaderModels lists every accepted model, the default alias included.
func ShaderModels() []ShaderModel {
	models := make([]ShaderModel, 0, shaderModelCount)
	for sm := ShaderModelDefault; sm < shaderModelCount; sm++ {
		models = append(models, sm)
	}
	return models
}

// Valid reports whether sm is one of the declared models.
func (sm ShaderModel) Valid() bool {
	return sm < shaderModelCount
}

// Resolve maps the default alias onto a concrete model.
func (sm ShaderModel) Resolve() ShaderModel {
	if sm == ShaderModelDefault {
		return ShaderModel6_0
	}
	return sm
}

// String formats the resolved model as "SM 6.0".
func (sm ShaderModel) String() string {
	if !sm.Valid() {
		return fmt.Sprintf("SM(%d)", uint8(sm))
	}
	major, minor := sm.Version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix is the "major_minor" tail of a target profile.
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.Version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// Version splits the resolved model into major and minor numbers.
// Invalid models report 0.0.
func (sm ShaderModel) Version() (major, minor uint8) {
	sm = sm.Resolve()
	if !sm.Valid() {
		return 0, 0
	}
	v := modelVersions[sm]
	return v / 10, v % 10
}

// SupportsDXIL reports whether dxc emits DXIL rather than DXBC.
func (sm ShaderModel) SupportsDXIL() bool {
	return sm.Resolve() >= ShaderModel6_0
}

// SupportsFloat16 reports native 16-bit type support.
func (sm ShaderModel) SupportsFloat16() bool {
	return sm.Resolve() >= ShaderModel6_2
}

// ParseShaderModel parses "default", "6_0", "6.0" or "sm_6_0".
func ParseShaderModel(s string) (ShaderModel, error) {
	if s == "" || s == "default" {
		return ShaderModelDefault, nil
	}
	for sm := ShaderModel5_1; sm < shaderModelCount; sm++ {
		major, minor := sm.Version()
		for _, form := range []string{
			fmt.Sprintf("%d_%d", major, minor),
			fmt.Sprintf("%d.%d", major, minor),
			fmt.Sprintf("sm_%d_%d", major, minor),
		} {
			if s == form {
				return sm, nil
			}
		}
	}
	return 0, NewError(ErrInvalidPolicy, fmt.Sprintf("unknown shader model %q", s))
}
