package flavorbuild

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// HeaderSet holds the headers of a library split into public (exported) and private ones.
type HeaderSet struct {
	public  []SourcePath
	private []SourcePath
}

// NewHeaderSet creates a set. Duplicates inside a partition are dropped, first occurrence wins.
func NewHeaderSet(public []SourcePath, private []SourcePath) HeaderSet {
	return HeaderSet{public: uniqueSourcePaths(public), private: uniqueSourcePaths(private)}
}

// Public retrieves the exported headers.
func (h HeaderSet) Public() []SourcePath { return h.public }

// Private retrieves the internal headers.
func (h HeaderSet) Private() []SourcePath { return h.private }

// All retrieves public headers followed by private headers not listed as public.
func (h HeaderSet) All() []SourcePath {
	return uniqueSourcePaths(append(append([]SourcePath{}, h.public...), h.private...))
}

// Overlap retrieves headers listed both as public and private.
func (h HeaderSet) Overlap() []SourcePath {
	pub := make(map[string]struct{}, len(h.public))
	for _, sp := range h.public {
		pub[sp.String()] = struct{}{}
	}
	var result []SourcePath
	for _, sp := range h.private {
		if _, ok := pub[sp.String()]; ok {
			result = append(result, sp)
		}
	}
	return result
}

func uniqueSourcePaths(sps []SourcePath) []SourcePath {
	seen := make(map[string]struct{}, len(sps))
	result := make([]SourcePath, 0, len(sps))
	for _, sp := range sps {
		if _, ok := seen[sp.String()]; ok {
			continue
		}
		seen[sp.String()] = struct{}{}
		result = append(result, sp)
	}
	return result
}

// HeaderMap maps include names (ex. "Lib/x.h") to header sources, keeping insertion order.
type HeaderMap struct {
	keys    []string
	entries map[string]SourcePath
}

// Get retrieves the source for `name`.
func (m HeaderMap) Get(name string) (SourcePath, bool) {
	sp, ok := m.entries[name]
	return sp, ok
}

// Keys retrieves names in insertion order.
func (m HeaderMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len retrieves the number of entries.
func (m HeaderMap) Len() int { return len(m.keys) }

// MarshalYAML emits `name: source` pairs in insertion order.
func (m HeaderMap) MarshalYAML() (interface{}, error) {
	result := make([]map[string]string, 0, len(m.keys))
	for _, k := range m.keys {
		result = append(result, map[string]string{k: m.entries[k].String()})
	}
	return result, nil
}

// CollisionPolicy decides what happens when two headers produce one include name.
type CollisionPolicy int

const (
	// CollisionReject fails with *HeaderCollisionError.
	CollisionReject CollisionPolicy = iota
	// CollisionOverwrite keeps the later header and warns.
	CollisionOverwrite
)

func (p CollisionPolicy) String() string {
	switch p {
	case CollisionReject:
		return "reject"
	case CollisionOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("CollisionPolicy(%d)", int(p))
	}
}

// ParseCollisionPolicy parses "reject" or "overwrite".
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject", "error":
		return CollisionReject, nil
	case "overwrite":
		return CollisionOverwrite, nil
	}
	return CollisionReject, errors.Errorf("unknown header collision policy \"%s\"", s)
}

// UnmarshalYAML is called while unmarshaling CollisionPolicy.
func (p *CollisionPolicy) UnmarshalYAML(unmarshaler func(interface{}) error) error {
	var s string
	if err := unmarshaler(&s); err != nil {
		return errors.Wrapf(err, "failed to unmarshal header collision policy")
	}
	v, err := ParseCollisionPolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalYAML is called while marshaling CollisionPolicy.
func (p CollisionPolicy) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// HeaderCollisionError reports two different headers mapped to one include name.
type HeaderCollisionError struct {
	Name   string
	First  SourcePath
	Second SourcePath
}

func (e *HeaderCollisionError) Error() string {
	return fmt.Sprintf("header \"%s\" is provided by both \"%s\" and \"%s\"", e.Name, e.First, e.Second)
}

// HeaderMapBuilder flattens header sets into include name mappings.
type HeaderMapBuilder struct {
	resolver *SourcePathResolver
	policy   CollisionPolicy
	reporter *Reporter
}

// NewHeaderMapBuilder creates a builder. `reporter` may be nil.
func NewHeaderMapBuilder(resolver *SourcePathResolver, policy CollisionPolicy, reporter *Reporter) *HeaderMapBuilder {
	return &HeaderMapBuilder{resolver: resolver, policy: policy, reporter: reporter}
}

// FlattenAndPrefix maps each header to `prefix/<file name>`.
// Directories of the headers are discarded, so headers sharing a file name collide.
func (b *HeaderMapBuilder) FlattenAndPrefix(prefix string, headers []SourcePath) (HeaderMap, error) {
	result := HeaderMap{entries: make(map[string]SourcePath, len(headers))}
	for _, h := range headers {
		name, err := b.resolver.FileName(h)
		if err != nil {
			return HeaderMap{}, errors.Wrapf(err, "failed to flatten header \"%s\"", h)
		}
		if err := b.put(&result, path.Join(prefix, name), h); err != nil {
			return HeaderMap{}, err
		}
	}
	return result, nil
}

// Merge returns `base` with the entries of `later` added. Later entries win on collision
// when the policy allows it.
func (b *HeaderMapBuilder) Merge(base HeaderMap, later HeaderMap) (HeaderMap, error) {
	result := HeaderMap{
		keys:    append([]string(nil), base.keys...),
		entries: make(map[string]SourcePath, len(base.keys)+len(later.keys))}
	for k, v := range base.entries {
		result.entries[k] = v
	}
	for _, k := range later.keys {
		if err := b.put(&result, k, later.entries[k]); err != nil {
			return HeaderMap{}, err
		}
	}
	return result, nil
}

func (b *HeaderMapBuilder) put(m *HeaderMap, name string, sp SourcePath) error {
	prev, exists := m.entries[name]
	if !exists {
		m.keys = append(m.keys, name)
		m.entries[name] = sp
		return nil
	}
	if prev.String() == sp.String() {
		return nil
	}
	if b.policy == CollisionReject {
		return &HeaderCollisionError{Name: name, First: prev, Second: sp}
	}
	b.reporter.Warnf("header \"%s\": \"%s\" overwrites \"%s\"", name, sp, prev)
	m.entries[name] = sp
	return nil
}
