package solution

// ConfigurationRuleFollower answers what a project configuration looks like
// for a solution configuration, given rules ordered from most general to most
// specific. For each dimension the last matching rule wins, so callers must
// append general rules before specific ones.
type ConfigurationRuleFollower struct {
	rules []ConfigurationRule
}

// NewConfigurationRuleFollower concatenates rule lists in priority order.
func NewConfigurationRuleFollower(ruleLists ...[]ConfigurationRule) ConfigurationRuleFollower {
	n := 0
	for _, rules := range ruleLists {
		n += len(rules)
	}
	all := make([]ConfigurationRule, 0, n)
	for _, rules := range ruleLists {
		all = append(all, rules...)
	}
	return ConfigurationRuleFollower{rules: all}
}

// Rules returns the layered rule list.
func (f ConfigurationRuleFollower) Rules() []ConfigurationRule {
	return f.rules
}

// GetProjectBuildType returns the project build type for the solution configuration.
func (f ConfigurationRuleFollower) GetProjectBuildType(solutionBuildType, solutionPlatform string) (string, bool) {
	return f.lookup(DimensionBuildType, solutionBuildType, solutionPlatform)
}

// GetProjectPlatform returns the project platform for the solution configuration.
func (f ConfigurationRuleFollower) GetProjectPlatform(solutionBuildType, solutionPlatform string) (string, bool) {
	return f.lookup(DimensionPlatform, solutionBuildType, solutionPlatform)
}

// GetIsBuildable returns the Build flag for the solution configuration.
func (f ConfigurationRuleFollower) GetIsBuildable(solutionBuildType, solutionPlatform string) (bool, bool) {
	return f.lookupBool(DimensionBuild, solutionBuildType, solutionPlatform)
}

// GetIsDeployable returns the Deploy flag for the solution configuration.
func (f ConfigurationRuleFollower) GetIsDeployable(solutionBuildType, solutionPlatform string) (bool, bool) {
	return f.lookupBool(DimensionDeploy, solutionBuildType, solutionPlatform)
}

func (f ConfigurationRuleFollower) lookup(dimension BuildDimension, solutionBuildType, solutionPlatform string) (string, bool) {
	for i := len(f.rules) - 1; i >= 0; i-- {
		rule := f.rules[i]
		if rule.Dimension == dimension && rule.Matches(solutionBuildType, solutionPlatform) {
			return rule.ProjectValue, true
		}
	}
	return "", false
}

// lookupBool skips rules whose value is not a boolean literal.
func (f ConfigurationRuleFollower) lookupBool(dimension BuildDimension, solutionBuildType, solutionPlatform string) (bool, bool) {
	for i := len(f.rules) - 1; i >= 0; i-- {
		rule := f.rules[i]
		if rule.Dimension != dimension || !rule.Matches(solutionBuildType, solutionPlatform) {
			continue
		}
		if b, ok := ParseBoolValue(rule.ProjectValue); ok {
			return b, true
		}
	}
	return false, false
}
