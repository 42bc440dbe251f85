package solution

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/willibrandon/gosln/observability"
)

// Reasons a project type definition is rejected while building a table.
const (
	rejectDuplicateDefault   = "duplicate_default"
	rejectDuplicateExtension = "duplicate_extension"
	rejectDuplicateName      = "duplicate_name"
	rejectDuplicateID        = "duplicate_id"
	rejectBasedOnCycle       = "based_on_cycle"
	rejectBasedOnMissing     = "based_on_missing"
)

// ProjectTypeTable is a registry of project types indexed by extension, alias
// name and type id. A solution-scoped table defers to the built-in table for
// anything it cannot resolve itself.
//
// Tables are immutable once constructed.
type ProjectTypeTable struct {
	types       []*ProjectType
	byExtension map[string]*ProjectType
	byName      map[string]*ProjectType
	byID        map[uuid.UUID]*ProjectType
	bases       map[*ProjectType]*ProjectType
	defaultType *ProjectType
	builtIn     bool
	logger      observability.Logger
}

var (
	builtInTable     *ProjectTypeTable
	builtInTableOnce sync.Once
)

// BuiltInProjectTypes returns the process-wide table of well-known project types.
func BuiltInProjectTypes() *ProjectTypeTable {
	builtInTableOnce.Do(func() {
		builtInTable = newProjectTypeTable(builtInTypeDefinitions(), true, observability.NewNullLogger())
	})
	return builtInTable
}

// NewProjectTypeTable builds a solution-scoped table. Invalid definitions
// (duplicates, BasedOn cycles, unresolvable BasedOn) are logged and dropped;
// construction never fails.
func NewProjectTypeTable(types []ProjectType, logger observability.Logger) *ProjectTypeTable {
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	return newProjectTypeTable(types, false, logger)
}

func newProjectTypeTable(types []ProjectType, builtIn bool, logger observability.Logger) *ProjectTypeTable {
	t := &ProjectTypeTable{
		byExtension: make(map[string]*ProjectType),
		byName:      make(map[string]*ProjectType),
		byID:        make(map[uuid.UUID]*ProjectType),
		bases:       make(map[*ProjectType]*ProjectType),
		builtIn:     builtIn,
		logger:      logger,
	}

	for i := range types {
		pt := types[i]
		pt.Extension = NormalizeExtension(pt.Extension)
		t.add(&pt)
	}

	t.removeCycles()
	t.resolveBases()

	return t
}

func (t *ProjectTypeTable) add(pt *ProjectType) {
	if pt.IsDefault() {
		if t.defaultType != nil {
			t.reject(pt, rejectDuplicateDefault, "Duplicate default project type {ProjectType} ignored")
			return
		}
		t.defaultType = pt
		return
	}

	nameKey := strings.ToLower(pt.Name)
	if pt.Extension != "" && t.byExtension[pt.Extension] != nil {
		t.reject(pt, rejectDuplicateExtension, "Project type {ProjectType} dropped: extension {Extension} is already registered", pt.Extension)
		return
	}
	if nameKey != "" && t.byName[nameKey] != nil {
		t.reject(pt, rejectDuplicateName, "Project type {ProjectType} dropped: name is already registered")
		return
	}
	if pt.ProjectTypeID != uuid.Nil && t.byID[pt.ProjectTypeID] != nil {
		t.reject(pt, rejectDuplicateID, "Project type {ProjectType} dropped: type id {TypeId} is already registered", FormatGUID(pt.ProjectTypeID))
		return
	}

	t.types = append(t.types, pt)
	if pt.Extension != "" {
		t.byExtension[pt.Extension] = pt
	}
	if nameKey != "" {
		t.byName[nameKey] = pt
	}
	if pt.ProjectTypeID != uuid.Nil {
		t.byID[pt.ProjectTypeID] = pt
	}
}

func (t *ProjectTypeTable) remove(pt *ProjectType) {
	for i, existing := range t.types {
		if existing == pt {
			t.types = append(t.types[:i], t.types[i+1:]...)
			break
		}
	}
	if pt.Extension != "" && t.byExtension[pt.Extension] == pt {
		delete(t.byExtension, pt.Extension)
	}
	if key := strings.ToLower(pt.Name); key != "" && t.byName[key] == pt {
		delete(t.byName, key)
	}
	if pt.ProjectTypeID != uuid.Nil && t.byID[pt.ProjectTypeID] == pt {
		delete(t.byID, pt.ProjectTypeID)
	}
	delete(t.bases, pt)
}

func (t *ProjectTypeTable) reject(pt *ProjectType, reason, messageTemplate string, args ...any) {
	observability.ProjectTypesRejectedTotal.WithLabelValues(reason).Inc()
	t.logger.ForContext("ProjectType", pt.DisplayName()).Error(messageTemplate, append([]any{pt.DisplayName()}, args...)...)
}

// localBase resolves a BasedOn reference inside this table only. A type that
// names itself (e.g. a local "C#" based on the built-in "C#") is not its own base.
func (t *ProjectTypeTable) localBase(pt *ProjectType) *ProjectType {
	if pt == nil || pt.BasedOn == "" {
		return nil
	}
	base := t.lookupReference(pt.BasedOn)
	if base == pt {
		return nil
	}
	return base
}

func (t *ProjectTypeTable) lookupReference(ref string) *ProjectType {
	if pt := t.byName[strings.ToLower(ref)]; pt != nil {
		return pt
	}
	if id, ok := ParseGUID(ref); ok {
		if pt := t.byID[id]; pt != nil {
			return pt
		}
	}
	if ext := NormalizeExtension(ref); strings.HasPrefix(ref, ".") {
		return t.byExtension[ext]
	}
	return nil
}

// removeCycles drops every type whose BasedOn chain runs into a cycle. Types
// are visited in declaration order, so the first type found on a cycle is the
// one that goes; the rest of the cycle is then left with a missing base.
func (t *ProjectTypeTable) removeCycles() {
	for _, pt := range append([]*ProjectType(nil), t.types...) {
		if t.reachesCycle(pt) {
			t.reject(pt, rejectBasedOnCycle, "Project type {ProjectType} dropped: BasedOn chain through {BasedOn} is circular", pt.BasedOn)
			t.remove(pt)
		}
	}
}

// reachesCycle walks the BasedOn chain with Floyd's tortoise and hare.
func (t *ProjectTypeTable) reachesCycle(start *ProjectType) bool {
	slow, fast := start, start
	for {
		fast = t.localBase(fast)
		if fast == nil {
			return false
		}
		fast = t.localBase(fast)
		if fast == nil {
			return false
		}
		slow = t.localBase(slow)
		if slow == fast {
			return true
		}
	}
}

// resolveBases links every type to its base, dropping types whose base cannot
// be found. Dropping a type can orphan others, so this repeats until stable.
func (t *ProjectTypeTable) resolveBases() {
	for changed := true; changed; {
		changed = false
		for _, pt := range append([]*ProjectType(nil), t.types...) {
			if pt.BasedOn == "" {
				continue
			}
			base := t.localBase(pt)
			if base == nil && !t.builtIn {
				base = BuiltInProjectTypes().lookupReference(pt.BasedOn)
			}
			if base == nil {
				t.reject(pt, rejectBasedOnMissing, "Project type {ProjectType} dropped: BasedOn {BasedOn} not found", pt.BasedOn)
				t.remove(pt)
				changed = true
				continue
			}
			t.bases[pt] = base
		}
	}
}

// IsBuiltIn reports whether this is the process-wide built-in table.
func (t *ProjectTypeTable) IsBuiltIn() bool {
	return t.builtIn
}

// ProjectTypes returns the registered types (excluding the default type) in
// declaration order.
func (t *ProjectTypeTable) ProjectTypes() []*ProjectType {
	return append([]*ProjectType(nil), t.types...)
}

// DefaultType returns the table's default type, if any.
func (t *ProjectTypeTable) DefaultType() (*ProjectType, bool) {
	return t.defaultType, t.defaultType != nil
}

// GetProjectType resolves a type by alias name, then by extension, falling
// back to the built-in table. It returns nil when nothing matches.
func (t *ProjectTypeTable) GetProjectType(alias, extension string) *ProjectType {
	if alias != "" {
		if pt := t.byName[strings.ToLower(alias)]; pt != nil {
			return pt
		}
	}
	if ext := NormalizeExtension(extension); ext != "" {
		if pt := t.byExtension[ext]; pt != nil {
			return pt
		}
	}
	if !t.builtIn {
		return BuiltInProjectTypes().GetProjectType(alias, extension)
	}
	return nil
}

// TryGetProjectType resolves the type of a project from whatever the file
// told us about it. A typeName that parses as a GUID is treated as the type
// id. An extension match is only taken when it does not contradict an
// explicit id or name; impliedFromExtension reports that case, which lets
// writers omit the type attribute.
func (t *ProjectTypeTable) TryGetProjectType(typeID uuid.UUID, typeName, extension string) (pt *ProjectType, impliedFromExtension bool, ok bool) {
	if id, isGUID := ParseGUID(typeName); isGUID {
		typeID = id
		typeName = ""
	}
	extension = NormalizeExtension(extension)

	if pt, implied, found := t.find(typeID, typeName, extension); found {
		return pt, implied, true
	}
	if !t.builtIn {
		return BuiltInProjectTypes().find(typeID, typeName, extension)
	}
	return nil, false, false
}

func (t *ProjectTypeTable) find(typeID uuid.UUID, typeName, extension string) (*ProjectType, bool, bool) {
	if extension != "" {
		if pt := t.byExtension[extension]; pt != nil &&
			(typeID == uuid.Nil || pt.ProjectTypeID == typeID) &&
			(typeName == "" || strings.EqualFold(pt.Name, typeName)) {
			return pt, true, true
		}
	}
	if typeName != "" {
		if pt := t.byName[strings.ToLower(typeName)]; pt != nil {
			return pt, false, true
		}
	}
	if typeID != uuid.Nil {
		if pt := t.byID[typeID]; pt != nil {
			return pt, false, true
		}
	}
	return nil, false, false
}

// ResolveProjectType resolves the type of a solution project.
func (t *ProjectTypeTable) ResolveProjectType(project *Project) (*ProjectType, bool, bool) {
	return t.TryGetProjectType(project.TypeID, project.Type, project.Extension())
}

// GetProjectConfigurationRules layers every rule that applies to the
// project, from most general to most specific: built-in defaults, the
// project type's ancestors, the project type, this table's default type, and
// finally the project's own rules (unless excluded).
func (t *ProjectTypeTable) GetProjectConfigurationRules(project *Project, excludeProjectSpecificRules bool) ConfigurationRuleFollower {
	layers := make([][]ConfigurationRule, 0, 8)
	if !t.builtIn {
		layers = append(layers, BuiltInProjectTypes().defaultRules())
	}
	if pt, _, ok := t.ResolveProjectType(project); ok {
		layers = append(layers, t.typeRuleLayers(pt)...)
	}
	layers = append(layers, t.defaultRules())
	if !excludeProjectSpecificRules {
		layers = append(layers, project.ConfigurationRules)
	}
	return NewConfigurationRuleFollower(layers...)
}

// IsBuildable reports whether projects of the given type take part in
// solution configurations. A type inherits NotBuildable from its ancestors.
func (t *ProjectTypeTable) IsBuildable(pt *ProjectType) bool {
	for _, layer := range t.chain(pt) {
		if layer.NotBuildable {
			return false
		}
	}
	return true
}

func (t *ProjectTypeTable) defaultRules() []ConfigurationRule {
	if t.defaultType == nil {
		return nil
	}
	return t.defaultType.ConfigurationRules
}

// typeRuleLayers returns the rules of pt and its ancestors, base first.
func (t *ProjectTypeTable) typeRuleLayers(pt *ProjectType) [][]ConfigurationRule {
	chain := t.chain(pt)
	layers := make([][]ConfigurationRule, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		layers = append(layers, chain[i].ConfigurationRules)
	}
	return layers
}

// chain returns pt followed by its ancestors.
func (t *ProjectTypeTable) chain(pt *ProjectType) []*ProjectType {
	var chain []*ProjectType
	seen := make(map[*ProjectType]bool)
	for current := pt; current != nil && !seen[current]; current = t.baseOf(current) {
		seen[current] = true
		chain = append(chain, current)
	}
	return chain
}

func (t *ProjectTypeTable) baseOf(pt *ProjectType) *ProjectType {
	if base, ok := t.bases[pt]; ok {
		return base
	}
	if !t.builtIn {
		return BuiltInProjectTypes().bases[pt]
	}
	return nil
}

// LegacyTypeID returns the type id a legacy solution file should record for
// pt: its own id, or the nearest ancestor's when pt has none.
func (t *ProjectTypeTable) LegacyTypeID(pt *ProjectType) (uuid.UUID, bool) {
	for _, layer := range t.chain(pt) {
		if layer.ProjectTypeID != uuid.Nil {
			return layer.ProjectTypeID, true
		}
	}
	return uuid.Nil, false
}
