package flavorbuild

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// DefaultOutputRoot is the root relative directory generated files go to.
const DefaultOutputRoot = "buck-out/gen"

// ErrNoSuchRule is returned (wrapped) when a target has no rule in the resolver.
var ErrNoSuchRule = errors.New("no rule for target")

// RuleType names the kind of a rule (ex. "apple_library").
type RuleType string

// Rule is the executable unit produced for a target.
type Rule interface {
	Target() BuildTarget
	Type() RuleType
	// OutputPath is root relative. Empty if the rule has no single output.
	OutputPath() string
}

// BuildRuleParams carries what the build graph knows about a target being built.
type BuildRuleParams struct {
	Target       BuildTarget
	DeclaredDeps []BuildTarget
	// ProjectRoot is the absolute path of the repository root.
	ProjectRoot string
	// OutputRoot is root relative. DefaultOutputRoot when empty.
	OutputRoot string
}

// WithTarget returns a copy with the target replaced.
func (p BuildRuleParams) WithTarget(t BuildTarget) BuildRuleParams {
	p.Target = t
	return p
}

func (p BuildRuleParams) outputRoot() string {
	if p.OutputRoot == "" {
		return DefaultOutputRoot
	}
	return p.OutputRoot
}

// RelativeOutputDir retrieves the output directory of the target relative to the root.
func (p BuildRuleParams) RelativeOutputDir() string {
	name := p.Target.ShortName()
	if p.Target.IsFlavored() {
		name += "#" + p.Target.Flavors().String()
	}
	return JoinPathes(p.outputRoot(), p.Target.BasePathDir(), name)
}

// OutputDir retrieves the absolute output directory of the target.
func (p BuildRuleParams) OutputDir() string {
	return JoinPathes(p.ProjectRoot, p.RelativeOutputDir())
}

// RuleResolver records rules already built. Safe for concurrent use.
type RuleResolver struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRuleResolver creates an empty resolver.
func NewRuleResolver() *RuleResolver {
	return &RuleResolver{rules: make(map[string]Rule)}
}

// AddRule registers `rule`. Registering a target twice is an error.
func (r *RuleResolver) AddRule(rule Rule) error {
	key := rule.Target().String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[key]; exists {
		return errors.Errorf("rule for \"%s\" already exists", key)
	}
	r.rules[key] = rule
	return nil
}

// GetRule retrieves the rule of `target`.
func (r *RuleResolver) GetRule(target BuildTarget) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[target.String()]
	return rule, ok
}

// RequireRule is GetRule returning ErrNoSuchRule for missing targets.
func (r *RuleResolver) RequireRule(target BuildTarget) (Rule, error) {
	if rule, ok := r.GetRule(target); ok {
		return rule, nil
	}
	return nil, errors.Wrapf(ErrNoSuchRule, "\"%s\"", target)
}

// Rules retrieves every registered rule ordered by target.
func (r *RuleResolver) Rules() []Rule {
	r.mu.RLock()
	result := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		result = append(result, rule)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].Target().String() < result[j].Target().String()
	})
	return result
}

// JoinPathes joins supplied path components and normalizes the result.
func JoinPathes(pathes ...string) string {
	return filepath.ToSlash(filepath.Clean(filepath.Join(pathes...)))
}
