package flavorbuild

import (
	"strings"

	"github.com/pkg/errors"
)

// BuildTarget identifies a buildable unit (ex. `//foo/bar:baz#shared`).
type BuildTarget struct {
	basePath  string
	shortName string
	flavors   FlavorSet
}

// NewBuildTarget constructs a target. `basePath` should start with "//".
func NewBuildTarget(basePath string, shortName string, flavors ...Flavor) BuildTarget {
	return BuildTarget{
		basePath:  strings.TrimRight(basePath, "/"),
		shortName: shortName,
		flavors:   NewFlavorSet(flavors...)}
}

// ParseBuildTarget parses the fully qualified form `//base/path:name#flavor1,flavor2`.
func ParseBuildTarget(s string) (BuildTarget, error) {
	if !strings.HasPrefix(s, "//") {
		return BuildTarget{}, errors.Errorf("build target \"%s\" should start with \"//\"", s)
	}
	body := s
	var flavors FlavorSet
	if idx := strings.Index(s, "#"); 0 <= idx {
		var err error
		body = s[:idx]
		flavors, err = ParseFlavorSet(s[idx+1:])
		if err != nil {
			return BuildTarget{}, errors.Wrapf(err, "invalid build target \"%s\"", s)
		}
	}
	colon := strings.LastIndex(body, ":")
	if colon < 0 {
		return BuildTarget{}, errors.Errorf("build target \"%s\" has no short name", s)
	}
	name := body[colon+1:]
	if name == "" || strings.ContainsAny(name, "/ ") {
		return BuildTarget{}, errors.Errorf("invalid short name \"%s\" in \"%s\"", name, s)
	}
	t := NewBuildTarget(body[:colon], name)
	t.flavors = flavors
	return t, nil
}

// BasePath retrieves the base path (ex. "//foo/bar").
func (t BuildTarget) BasePath() string {
	if t.basePath == "" {
		return "//"
	}
	return t.basePath
}

// BasePathDir retrieves the root relative directory of the target (ex. "foo/bar").
func (t BuildTarget) BasePathDir() string {
	return strings.TrimPrefix(t.basePath, "//")
}

// ShortName retrieves the name after ':'.
func (t BuildTarget) ShortName() string {
	return t.shortName
}

// Flavors retrieves the flavors of the target.
func (t BuildTarget) Flavors() FlavorSet {
	return t.flavors
}

// IsFlavored returns true if the target carries any flavor.
func (t BuildTarget) IsFlavored() bool {
	return !t.flavors.IsEmpty()
}

// WithFlavors returns a copy with `flavors` added.
func (t BuildTarget) WithFlavors(flavors ...Flavor) BuildTarget {
	t.flavors = t.flavors.With(flavors...)
	return t
}

// WithoutFlavors returns a copy with `flavors` removed.
func (t BuildTarget) WithoutFlavors(flavors ...Flavor) BuildTarget {
	t.flavors = t.flavors.Without(flavors...)
	return t
}

// Unflavored returns a copy without any flavor.
func (t BuildTarget) Unflavored() BuildTarget {
	t.flavors = FlavorSet{}
	return t
}

// FullyQualifiedName retrieves `//base/path:name` without flavors.
func (t BuildTarget) FullyQualifiedName() string {
	return t.BasePath() + ":" + t.shortName
}

// String retrieves `//base/path:name#flavors`.
func (t BuildTarget) String() string {
	if t.flavors.IsEmpty() {
		return t.FullyQualifiedName()
	}
	return t.FullyQualifiedName() + "#" + t.flavors.String()
}

// Equals returns true if base path, name and flavors are equal.
func (t BuildTarget) Equals(other BuildTarget) bool {
	return t.basePath == other.basePath && t.shortName == other.shortName && t.flavors.Equals(other.flavors)
}

// MarshalYAML emits the fully qualified form.
func (t BuildTarget) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
