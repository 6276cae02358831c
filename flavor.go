package flavorbuild

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Flavor selects a variant of a build target (ex. "shared", "headers", "iphoneos-arm64").
type Flavor string

// Well known flavors.
const (
	FlavorHeaders                   Flavor = "headers"
	FlavorCompilationDatabase       Flavor = "compilation-database"
	FlavorHeaderSymlinkTree         Flavor = "header-symlink-tree"
	FlavorExportedHeaderSymlinkTree Flavor = "exported-header-symlink-tree"
	FlavorStatic                    Flavor = "static"
	FlavorStaticPIC                 Flavor = "static-pic"
	FlavorShared                    Flavor = "shared"
	FlavorDefault                   Flavor = "default"
)

// String retrieves the string representation of Flavor
func (f Flavor) String() string {
	return string(f)
}

// Validate checks `f` can be used in a fully qualified target name.
func (f Flavor) Validate() error {
	if len(f) == 0 {
		return errors.New("empty flavor")
	}
	if strings.ContainsAny(string(f), "#,:/ \t\r\n") {
		return errors.Errorf("invalid character in flavor \"%s\"", f)
	}
	return nil
}

// FlavorSet is an immutable set of Flavors.
// The zero value is the empty set.
type FlavorSet struct {
	set map[Flavor]struct{}
}

// NewFlavorSet creates a set from `flavors`. Duplicates are collapsed.
func NewFlavorSet(flavors ...Flavor) FlavorSet {
	if len(flavors) == 0 {
		return FlavorSet{}
	}
	set := make(map[Flavor]struct{}, len(flavors))
	for _, f := range flavors {
		set[f] = struct{}{}
	}
	return FlavorSet{set: set}
}

// ParseFlavorSet parses comma separated flavors ("shared,iphoneos-arm64").
func ParseFlavorSet(s string) (FlavorSet, error) {
	if strings.TrimSpace(s) == "" {
		return FlavorSet{}, nil
	}
	var flavors []Flavor
	for _, v := range strings.Split(s, ",") {
		f := Flavor(strings.TrimSpace(v))
		if err := f.Validate(); err != nil {
			return FlavorSet{}, errors.Wrapf(err, "failed to parse flavors \"%s\"", s)
		}
		flavors = append(flavors, f)
	}
	return NewFlavorSet(flavors...), nil
}

// Contains returns true if `f` is in the set.
func (fs FlavorSet) Contains(f Flavor) bool {
	_, ok := fs.set[f]
	return ok
}

// Len returns the number of flavors.
func (fs FlavorSet) Len() int {
	return len(fs.set)
}

// IsEmpty returns true for the empty set.
func (fs FlavorSet) IsEmpty() bool {
	return len(fs.set) == 0
}

// All returns true if `pred` holds for every flavor. True for the empty set.
func (fs FlavorSet) All(pred func(Flavor) bool) bool {
	for f := range fs.set {
		if !pred(f) {
			return false
		}
	}
	return true
}

// With returns a new set containing `flavors` in addition.
func (fs FlavorSet) With(flavors ...Flavor) FlavorSet {
	return NewFlavorSet(append(fs.ToSlice(), flavors...)...)
}

// Without returns a new set with `flavors` removed.
func (fs FlavorSet) Without(flavors ...Flavor) FlavorSet {
	drop := NewFlavorSet(flavors...)
	var kept []Flavor
	for f := range fs.set {
		if !drop.Contains(f) {
			kept = append(kept, f)
		}
	}
	return NewFlavorSet(kept...)
}

// Intersect returns flavors present in both sets.
func (fs FlavorSet) Intersect(other FlavorSet) FlavorSet {
	var common []Flavor
	for f := range fs.set {
		if other.Contains(f) {
			common = append(common, f)
		}
	}
	return NewFlavorSet(common...)
}

// Equals checks the equality of two `FlavorSet`s.
func (fs FlavorSet) Equals(other FlavorSet) bool {
	if len(fs.set) != len(other.set) {
		return false
	}
	for k := range fs.set {
		if _, ok := other.set[k]; !ok {
			return false
		}
	}
	return true
}

// ToSlice converts to a sorted slice.
func (fs FlavorSet) ToSlice() []Flavor {
	result := make([]Flavor, 0, len(fs.set))
	for k := range fs.set {
		result = append(result, k)
	}
	sort.Slice(result, func(i int, j int) bool {
		return result[i] < result[j]
	})
	return result
}

// String joins flavors with ','.
func (fs FlavorSet) String() string {
	flavors := fs.ToSlice()
	ss := make([]string, len(flavors))
	for i, f := range flavors {
		ss[i] = string(f)
	}
	return strings.Join(ss, ",")
}

// MarshalYAML is called while marshaling FlavorSet.
func (fs FlavorSet) MarshalYAML() (interface{}, error) {
	result := make([]string, 0, len(fs.set))
	for _, f := range fs.ToSlice() {
		result = append(result, string(f))
	}
	return result, nil
}

// UnmarshalYAML accepts a scalar (`shared`) or a sequence (`[shared, iphoneos-arm64]`).
func (fs *FlavorSet) UnmarshalYAML(unmarshaler func(interface{}) error) error {
	var raw interface{}

	if err := unmarshaler(&raw); err != nil {
		return errors.Wrapf(err, "failed to unmarshal FlavorSet")
	}
	var flavors []Flavor
	switch v := raw.(type) {
	case string:
		flavors = append(flavors, Flavor(v))
	case []interface{}:
		for _, val := range v {
			s, ok := val.(string)
			if !ok {
				return errors.Errorf("unexpected flavor %v found", val)
			}
			flavors = append(flavors, Flavor(s))
		}
	case nil:
		/* NO-OP */
	default:
		return errors.Errorf("unexpected type %v found", v)
	}
	for _, f := range flavors {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	*fs = NewFlavorSet(flavors...)
	return nil
}
