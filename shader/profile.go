// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

// profileKey addresses the target profile table.
type profileKey struct {
	stage Stage
	model ShaderModel
}

// profiles maps every accepted (stage, resolved model) pair to its profile.
var profiles = buildProfiles()

func buildProfiles() map[profileKey]string {
	prefixes := map[Stage]string{
		StageVertex:   "vs_",
		StageFragment: "ps_",
		StageCompute:  "cs_",
	}
	table := make(map[profileKey]string, len(prefixes)*int(shaderModelCount))
	for stage, prefix := range prefixes {
		for sm := ShaderModel5_1; sm < shaderModelCount; sm++ {
			table[profileKey{stage, sm}] = prefix + sm.ProfileSuffix()
		}
	}
	return table
}

// TargetProfile returns the compiler-facing profile string, such as "ps_6_2",
// for a stage and shader model. The default model alias is resolved first.
//
// An unmapped pair is a programming error and reported as ErrUnmappedProfile;
// no fallback profile is ever substituted.
func TargetProfile(stage Stage, model ShaderModel) (string, error) {
	profile, ok := profiles[profileKey{stage, model.Resolve()}]
	if !ok {
		return "", Errorf(ErrUnmappedProfile, "no target profile for %s shader with %s", stage, model)
	}
	return profile, nil
}
