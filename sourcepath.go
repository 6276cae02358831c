package flavorbuild

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// SourcePath refers to file content: a file in the repository or the output of another rule.
type SourcePath interface {
	// String is unique per referenced content and is used as identity.
	String() string
	isSourcePath()
}

// PathSourcePath is a root relative file path.
type PathSourcePath struct {
	path string
}

// NewPathSourcePath creates a PathSourcePath from a root relative path.
func NewPathSourcePath(p string) PathSourcePath {
	return PathSourcePath{path: JoinPathes(p)}
}

// Path retrieves the root relative path.
func (p PathSourcePath) Path() string { return p.path }

func (p PathSourcePath) String() string { return p.path }

func (PathSourcePath) isSourcePath() {}

// BuildTargetSourcePath is the output of the rule for `target`.
type BuildTargetSourcePath struct {
	target   BuildTarget
	resolved string
}

// NewBuildTargetSourcePath refers to the default output of `target`.
func NewBuildTargetSourcePath(target BuildTarget) BuildTargetSourcePath {
	return BuildTargetSourcePath{target: target}
}

// NewBuildTargetSourcePathWithPath refers to a specific root relative file produced by `target`.
func NewBuildTargetSourcePathWithPath(target BuildTarget, resolved string) BuildTargetSourcePath {
	return BuildTargetSourcePath{target: target, resolved: JoinPathes(resolved)}
}

// Target retrieves the producing target.
func (p BuildTargetSourcePath) Target() BuildTarget { return p.target }

func (p BuildTargetSourcePath) String() string {
	if p.resolved != "" {
		return p.target.String() + "[" + p.resolved + "]"
	}
	return p.target.String()
}

func (BuildTargetSourcePath) isSourcePath() {}

// ParseSourcePath coerces `s` declared by `owner`.
// `//pkg:name` and `:name` refer to rules, anything else is a file relative to the owner's directory.
func ParseSourcePath(owner BuildTarget, s string) (SourcePath, error) {
	switch {
	case s == "":
		return nil, errors.Errorf("empty source path in \"%s\"", owner)
	case strings.HasPrefix(s, "//"):
		t, err := ParseBuildTarget(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid source path in \"%s\"", owner)
		}
		return NewBuildTargetSourcePath(t), nil
	case strings.HasPrefix(s, ":"):
		t, err := ParseBuildTarget(owner.BasePath() + s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid source path in \"%s\"", owner)
		}
		return NewBuildTargetSourcePath(t), nil
	case path.IsAbs(s):
		return nil, errors.Errorf("source path \"%s\" in \"%s\" should be relative", s, owner)
	}
	p := JoinPathes(owner.BasePathDir(), s)
	if p == ".." || strings.HasPrefix(p, "../") {
		return nil, errors.Errorf("source path \"%s\" in \"%s\" escapes the repository", s, owner)
	}
	return NewPathSourcePath(p), nil
}

// SourcePathResolver maps SourcePaths to root relative paths.
type SourcePathResolver struct {
	rules *RuleResolver
}

// NewSourcePathResolver creates a resolver looking up rule outputs in `rules`.
func NewSourcePathResolver(rules *RuleResolver) *SourcePathResolver {
	return &SourcePathResolver{rules: rules}
}

// Resolve retrieves the root relative path of `sp`.
func (r *SourcePathResolver) Resolve(sp SourcePath) (string, error) {
	switch v := sp.(type) {
	case PathSourcePath:
		return v.path, nil
	case BuildTargetSourcePath:
		if v.resolved != "" {
			return v.resolved, nil
		}
		if r.rules == nil {
			return "", errors.Wrapf(ErrNoSuchRule, "\"%s\"", v.target)
		}
		rule, err := r.rules.RequireRule(v.target)
		if err != nil {
			return "", err
		}
		if rule.OutputPath() == "" {
			return "", errors.Errorf("rule \"%s\" has no output", v.target)
		}
		return JoinPathes(rule.OutputPath()), nil
	default:
		return "", errors.Errorf("unknown source path %v", sp)
	}
}

// FileName retrieves the leaf name of the resolved `sp`.
func (r *SourcePathResolver) FileName(sp SourcePath) (string, error) {
	p, err := r.Resolve(sp)
	if err != nil {
		return "", err
	}
	return path.Base(p), nil
}

// ResolveAll resolves every path in `sps`.
func (r *SourcePathResolver) ResolveAll(sps []SourcePath) ([]string, error) {
	result := make([]string, 0, len(sps))
	for _, sp := range sps {
		p, err := r.Resolve(sp)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}
