package flavorbuild

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// LibraryRuleType is the rule type resolved by LibraryDescription.
const LibraryRuleType RuleType = "apple_library"

// FlavoredRuleFactory produces specialized rules (headers only, compilation database ...).
// It returns false when the request is not one it specializes.
type FlavoredRuleFactory interface {
	TryCreate(params BuildRuleParams, resolver *RuleResolver, args LibraryArgs) (Rule, bool, error)
}

// NativeLibraryBuilder turns platform bound arguments into a rule.
type NativeLibraryBuilder interface {
	FlavorOwner
	GetTypeAndPlatform(target BuildTarget, platforms *PlatformDomain) (TypeAndPlatform, error)
	CreateRule(params BuildRuleParams, resolver *RuleResolver, args ComposedLibraryArgs, tp TypeAndPlatform) (Rule, error)
}

// DescriptionConfig holds the knobs of LibraryDescription.
type DescriptionConfig struct {
	HeaderCollisions CollisionPolicy
}

// DescriptionOption customizes LibraryDescription.
type DescriptionOption func(*LibraryDescription)

// WithFlavoredRuleFactory replaces the factory for specialized rules.
func WithFlavoredRuleFactory(f FlavoredRuleFactory) DescriptionOption {
	return func(d *LibraryDescription) {
		d.flavored = f
	}
}

// WithReporter sets the diagnostics sink.
func WithReporter(r *Reporter) DescriptionOption {
	return func(d *LibraryDescription) {
		d.reporter = r
	}
}

// LibraryDescription resolves apple_library targets.
// It keeps no state between calls and can be shared between goroutines.
type LibraryDescription struct {
	config    DescriptionConfig
	delegate  NativeLibraryBuilder
	platforms *PlatformDomain
	sdks      SdkPathsTable
	matcher   FlavorMatcher
	flavored  FlavoredRuleFactory
	reporter  *Reporter
}

// NewLibraryDescription creates a description delegating unflavored libraries to `delegate`.
func NewLibraryDescription(
	config DescriptionConfig,
	delegate NativeLibraryBuilder,
	platforms *PlatformDomain,
	sdks SdkPathsTable,
	opts ...DescriptionOption) *LibraryDescription {

	d := &LibraryDescription{
		config:    config,
		delegate:  delegate,
		platforms: platforms,
		sdks:      sdks,
		matcher:   NewFlavorMatcher(LibraryFlavors, delegate)}
	for _, opt := range opts {
		opt(d)
	}
	if d.flavored == nil {
		d.flavored = &libraryFlavoredRules{description: d}
	}
	return d
}

// Type retrieves the rule type.
func (d *LibraryDescription) Type() RuleType {
	return LibraryRuleType
}

// HasFlavors returns true if the library or its delegate recognizes `flavors`.
func (d *LibraryDescription) HasFlavors(flavors FlavorSet) bool {
	return d.matcher.HasFlavors(flavors)
}

// CreateBuildRule resolves `params.Target` into a rule.
func (d *LibraryDescription) CreateBuildRule(params BuildRuleParams, resolver *RuleResolver, args LibraryArgs) (Rule, error) {
	rule, ok, err := d.flavored.TryCreate(params, resolver, args)
	if err != nil {
		return nil, err
	}
	if ok {
		d.reporter.Verbosef("\"%s\" resolved to specialized %s rule", params.Target, rule.Type())
		return rule, nil
	}

	composed, tp, err := d.ComposeLibrary(params, resolver, args)
	if err != nil {
		return nil, err
	}
	d.reporter.Verbosef("\"%s\" resolved to %s library for \"%s\" (link whole: %v)",
		params.Target, tp.Kind, tp.Platform.Flavor, composed.LinkWhole)
	return d.delegate.CreateRule(params, resolver, composed, tp)
}

// ComposeLibrary binds `args` to the platform selected by the flavors of `params.Target`.
func (d *LibraryDescription) ComposeLibrary(params BuildRuleParams, resolver *RuleResolver, args LibraryArgs) (ComposedLibraryArgs, TypeAndPlatform, error) {
	target := params.Target
	tp, err := d.delegate.GetTypeAndPlatform(target, d.platforms)
	if err != nil {
		return ComposedLibraryArgs{}, TypeAndPlatform{}, err
	}
	sdk := d.sdks.Lookup(tp.Platform)
	if !sdk.IsPresent() {
		d.reporter.Verbosef("no SDK for platform \"%s\"", tp.Platform.Flavor)
	}

	headerSet := NewHeaderSet(args.ExportedHeaders, args.Headers)
	if overlap := headerSet.Overlap(); 0 < len(overlap) {
		d.reporter.Warnf("\"%s\": %d header(s) listed as both exported and private (ex. \"%s\")", target, len(overlap), overlap[0])
	}
	prefix, err := HeaderPathPrefix(args, target)
	if err != nil {
		return ComposedLibraryArgs{}, TypeAndPlatform{}, err
	}

	builder := NewHeaderMapBuilder(NewSourcePathResolver(resolver), d.config.HeaderCollisions, d.reporter)
	flat, err := builder.FlattenAndPrefix("", headerSet.All())
	if err != nil {
		return ComposedLibraryArgs{}, TypeAndPlatform{}, errors.Wrapf(err, "failed to map headers of \"%s\"", target)
	}
	private, err := builder.FlattenAndPrefix(prefix, headerSet.Private())
	if err != nil {
		return ComposedLibraryArgs{}, TypeAndPlatform{}, errors.Wrapf(err, "failed to map private headers of \"%s\"", target)
	}
	headers, err := builder.Merge(flat, private)
	if err != nil {
		return ComposedLibraryArgs{}, TypeAndPlatform{}, errors.Wrapf(err, "failed to map headers of \"%s\"", target)
	}
	exported, err := builder.FlattenAndPrefix(prefix, headerSet.Public())
	if err != nil {
		return ComposedLibraryArgs{}, TypeAndPlatform{}, errors.Wrapf(err, "failed to map exported headers of \"%s\"", target)
	}

	return ComposeLibraryArgs(target, args, tp, sdk, headers, exported), tp, nil
}

// HeaderPathPrefix retrieves the directory headers are included from (`#include <Prefix/x.h>`).
// Defaults to the short name of the target.
func HeaderPathPrefix(args LibraryArgs, target BuildTarget) (string, error) {
	prefix := args.HeaderPathPrefix.OrElse(target.ShortName())
	if prefix == "" {
		return "", nil
	}
	clean := path.Clean(prefix)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Errorf("invalid header_path_prefix \"%s\" in \"%s\"", prefix, target)
	}
	return clean, nil
}

// IsSharedLibraryTarget returns true if `target` asks for a shared library.
func IsSharedLibraryTarget(target BuildTarget) bool {
	return target.Flavors().Contains(FlavorShared)
}
