package solution

// dimensionDiffTracker accumulates, for one dimension over one scope of
// cells, how the current matrix deviates from the expected one.
type dimensionDiffTracker struct {
	dimension BuildDimension
	cells     int
	diffs     int
	value     string
	conflict  bool
}

// trackDifference records one cell. Only cells whose current value differs
// from the expected one contribute a replacement value.
func (d *dimensionDiffTracker) trackDifference(expected, current string) {
	d.cells++
	if dimensionValuesEqual(d.dimension, expected, current) {
		return
	}
	if d.diffs == 0 {
		d.value = current
	} else if !dimensionValuesEqual(d.dimension, d.value, current) {
		d.conflict = true
	}
	d.diffs++
}

// trackValue records one cell's current value regardless of what was expected.
func (d *dimensionDiffTracker) trackValue(current string) {
	if d.cells == 0 {
		d.value = current
	} else if !dimensionValuesEqual(d.dimension, d.value, current) {
		d.conflict = true
	}
	d.cells++
}

func (d *dimensionDiffTracker) hasDifferences() bool {
	return d.diffs > 0
}

// sameDifference holds when every cell in scope differs and all of them
// differ to the same replacement value.
func (d *dimensionDiffTracker) sameDifference() bool {
	return d.diffs > 0 && d.diffs == d.cells && !d.conflict
}

// consistent holds when every value seen by trackValue agrees.
func (d *dimensionDiffTracker) consistent() bool {
	return d.cells > 0 && !d.conflict
}

// dimensionTrackers holds one tracker per dimension.
type dimensionTrackers [len(buildDimensions)]dimensionDiffTracker

func newDimensionTrackers() dimensionTrackers {
	var trackers dimensionTrackers
	for _, d := range buildDimensions {
		trackers[d].dimension = d
	}
	return trackers
}

// projectDiffTracker compares an expected and a current matrix at every
// scope distillation looks at: the whole matrix, each platform column and
// each build type row.
type projectDiffTracker struct {
	global     dimensionTrackers
	unique     dimensionTrackers
	platforms  []dimensionTrackers
	buildTypes []dimensionTrackers
}

func newProjectDiffTracker(expected, current *SolutionToProjectMappings) *projectDiffTracker {
	cm := expected.configMap
	t := &projectDiffTracker{
		global:     newDimensionTrackers(),
		unique:     newDimensionTrackers(),
		platforms:  make([]dimensionTrackers, cm.PlatformsCount()),
		buildTypes: make([]dimensionTrackers, cm.BuildTypesCount()),
	}
	for pl := range t.platforms {
		t.platforms[pl] = newDimensionTrackers()
	}
	for bt := range t.buildTypes {
		t.buildTypes[bt] = newDimensionTrackers()
	}

	for bt := 0; bt < cm.BuildTypesCount(); bt++ {
		for pl := 0; pl < cm.PlatformsCount(); pl++ {
			index := cm.index(bt, pl)
			want := expected.At(index)
			got := current.At(index)
			for _, d := range buildDimensions {
				e, c := want.Value(d), got.Value(d)
				t.global[d].trackDifference(e, c)
				t.unique[d].trackValue(c)
				t.platforms[pl][d].trackDifference(e, c)
				t.buildTypes[bt][d].trackDifference(e, c)
			}
		}
	}

	return t
}
