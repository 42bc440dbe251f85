package solution

import (
	"context"
	"fmt"
	"time"

	"github.com/willibrandon/gosln/observability"
)

// Rule scopes, broadest first. Also used as metric labels.
const (
	scopeGlobal    = "global"
	scopePlatform  = "platform"
	scopeBuildType = "buildtype"
	scopeCell      = "cell"
)

// Distill computes a small rule list R such that applying R to expected
// reproduces current in every cell. Rules are emitted broadest scope first:
// whole-matrix rules, then per-platform, then per-build-type, then per-cell
// for whatever difference remains. Each rule is applied to a working copy of
// expected as soon as it is emitted, so later phases only see the residual
// differences.
//
// The result is deterministic (ascending build type, then platform, then
// dimension) but not guaranteed to be globally minimal. A cell that is the
// single exception in an otherwise uniform row or column still expands to
// per-cell rules rather than a majority rule plus an exception.
func Distill(expected, current *SolutionToProjectMappings) []ConfigurationRule {
	return distill(context.Background(), expected, current)
}

func distill(ctx context.Context, expected, current *SolutionToProjectMappings) []ConfigurationRule {
	if expected.Len() != current.Len() {
		panic(fmt.Sprintf("solution: cannot distill matrices of different sizes (%d, %d)", expected.Len(), current.Len()))
	}

	d := &distiller{
		ctx:       ctx,
		configMap: expected.configMap,
		working:   expected.Clone(),
		current:   current,
	}
	d.globalRules()
	d.platformRules()
	d.buildTypeRules()
	d.cellRules()
	return d.rules
}

// DistillContext runs Distill inside a "solution.distill" span for the named
// project and records the distillation time.
func DistillContext(ctx context.Context, projectName string, expected, current *SolutionToProjectMappings) []ConfigurationRule {
	ctx, span := observability.StartDistillSpan(ctx, projectName)
	defer observability.EndSpanWithError(span, nil)
	defer observability.ObserveOperation(observability.OperationDistill, FormatSln, time.Now())

	rules := distill(ctx, expected, current)
	observability.RecordRuleCount(ctx, len(rules))
	return rules
}

type distiller struct {
	ctx       context.Context
	configMap *SolutionConfigurationMap
	working   *SolutionToProjectMappings
	current   *SolutionToProjectMappings
	rules     []ConfigurationRule
}

func (d *distiller) emit(scope string, buildType, platform Scope, rule ConfigurationRule) {
	d.rules = append(d.rules, rule)
	d.working.ApplyRules(ScopedRules{
		BuildType: buildType,
		Platform:  platform,
		Rules:     []ConfigurationRule{rule},
	})
	observability.RulesDistilledTotal.WithLabelValues(scope).Inc()
	observability.RecordDistilledRule(d.ctx, scope, rule.Dimension.String(), rule.SolutionConfiguration(), rule.ProjectValue)
}

// globalRules emits one "*|*" rule per dimension when every difference
// agrees on the replacement, or when every cell holds the same value anyway.
func (d *distiller) globalRules() {
	tracker := newProjectDiffTracker(d.working, d.current)
	for _, dim := range buildDimensions {
		global := &tracker.global[dim]
		if !global.hasDifferences() {
			continue
		}

		var value string
		switch unique := &tracker.unique[dim]; {
		case global.sameDifference():
			value = global.value
		case unique.consistent():
			value = unique.value
		default:
			continue
		}
		d.emit(scopeGlobal, AllScope(), AllScope(), NewConfigurationRule(dim, "", "", value))
	}
}

// platformRules emits "*|platform" rules for columns whose every cell
// differs to the same value.
func (d *distiller) platformRules() {
	tracker := newProjectDiffTracker(d.working, d.current)
	for pl, platform := range d.configMap.platforms {
		for _, dim := range buildDimensions {
			column := &tracker.platforms[pl][dim]
			if !column.sameDifference() {
				continue
			}
			d.emit(scopePlatform, AllScope(), ScopeAt(pl), NewConfigurationRule(dim, "", platform, column.value))
		}
	}
}

// buildTypeRules emits "buildType|*" rules. The trackers are rebuilt first
// because platform rules change the baseline of every row.
func (d *distiller) buildTypeRules() {
	tracker := newProjectDiffTracker(d.working, d.current)
	for bt, buildType := range d.configMap.buildTypes {
		for _, dim := range buildDimensions {
			row := &tracker.buildTypes[bt][dim]
			if !row.sameDifference() {
				continue
			}
			d.emit(scopeBuildType, ScopeAt(bt), AllScope(), NewConfigurationRule(dim, buildType, "", row.value))
		}
	}
}

// cellRules emits exact rules for every remaining difference.
func (d *distiller) cellRules() {
	for bt, buildType := range d.configMap.buildTypes {
		for pl, platform := range d.configMap.platforms {
			index := d.configMap.index(bt, pl)
			for _, dim := range buildDimensions {
				want := d.current.At(index).Value(dim)
				if dimensionValuesEqual(dim, d.working.At(index).Value(dim), want) {
					continue
				}
				d.emit(scopeCell, ScopeAt(bt), ScopeAt(pl), NewConfigurationRule(dim, buildType, platform, want))
			}
		}
	}
}
