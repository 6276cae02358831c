package flavorbuild

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// CxxPlatform describes one compilation platform.
type CxxPlatform struct {
	Flavor Flavor
	// Arch is the target architecture (ex. "arm64").
	Arch string
	// Toolchain is the toolchain family (ex. "darwin", "gnu").
	Toolchain       string
	CC              string
	AR              string
	LD              string
	CompilerFlags   []string
	SharedExtension string
}

// IsDarwin returns true for Apple toolchains.
func (p CxxPlatform) IsDarwin() bool {
	return strings.EqualFold(p.Toolchain, "darwin") || strings.EqualFold(p.Toolchain, "apple")
}

// SharedLibraryExtension retrieves the extension of shared objects without '.'.
func (p CxxPlatform) SharedLibraryExtension() string {
	if p.SharedExtension != "" {
		return strings.TrimPrefix(p.SharedExtension, ".")
	}
	if p.IsDarwin() {
		return "dylib"
	}
	return "so"
}

// UnknownFlavorError reports a flavor no rule family recognizes.
type UnknownFlavorError struct {
	Target  BuildTarget
	Flavors FlavorSet
}

func (e *UnknownFlavorError) Error() string {
	return fmt.Sprintf("unknown flavor(s) \"%s\" in \"%s\"", e.Flavors, e.Target)
}

// PlatformDomain maps platform flavors to platforms.
type PlatformDomain struct {
	name          string
	platforms     map[Flavor]CxxPlatform
	defaultFlavor Flavor
}

// NewPlatformDomain creates a domain. `defaultFlavor` should be one of `platforms`.
func NewPlatformDomain(name string, defaultFlavor Flavor, platforms ...CxxPlatform) (*PlatformDomain, error) {
	d := &PlatformDomain{name: name, platforms: make(map[Flavor]CxxPlatform, len(platforms)), defaultFlavor: defaultFlavor}
	for _, p := range platforms {
		if err := p.Flavor.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid platform in domain \"%s\"", name)
		}
		if LibraryFlavors.Contains(p.Flavor) || p.Flavor == FlavorStaticPIC {
			return nil, errors.Errorf("platform flavor \"%s\" is reserved", p.Flavor)
		}
		if _, exists := d.platforms[p.Flavor]; exists {
			return nil, errors.Errorf("platform \"%s\" is defined twice in domain \"%s\"", p.Flavor, name)
		}
		d.platforms[p.Flavor] = p
	}
	if _, ok := d.platforms[defaultFlavor]; !ok {
		return nil, errors.Errorf("default platform \"%s\" is not in domain \"%s\"", defaultFlavor, name)
	}
	return d, nil
}

// Name retrieves the domain name.
func (d *PlatformDomain) Name() string { return d.name }

// Flavors retrieves every platform flavor.
func (d *PlatformDomain) Flavors() FlavorSet {
	flavors := make([]Flavor, 0, len(d.platforms))
	for f := range d.platforms {
		flavors = append(flavors, f)
	}
	return NewFlavorSet(flavors...)
}

// Contains returns true if `f` is a platform flavor.
func (d *PlatformDomain) Contains(f Flavor) bool {
	_, ok := d.platforms[f]
	return ok
}

// Default retrieves the default platform.
func (d *PlatformDomain) Default() CxxPlatform {
	return d.platforms[d.defaultFlavor]
}

// Lookup finds the platform selected by `flavors`.
// It is not found when no platform flavor is present; more than one is an error.
func (d *PlatformDomain) Lookup(flavors FlavorSet) (CxxPlatform, bool, error) {
	matched := flavors.Intersect(d.Flavors())
	switch matched.Len() {
	case 0:
		return CxxPlatform{}, false, nil
	case 1:
		return d.platforms[matched.ToSlice()[0]], true, nil
	}
	return CxxPlatform{}, false, errors.Errorf("multiple \"%s\" flavors: %s", d.name, matched)
}

// GetValue is Lookup falling back to the default platform.
func (d *PlatformDomain) GetValue(flavors FlavorSet) (CxxPlatform, error) {
	p, ok, err := d.Lookup(flavors)
	if err != nil {
		return CxxPlatform{}, err
	}
	if !ok {
		return d.Default(), nil
	}
	return p, nil
}

// LibraryKind is the variant of a native library selected by type flavors.
type LibraryKind int

const (
	LibraryKindDefault LibraryKind = iota
	LibraryKindStatic
	LibraryKindStaticPIC
	LibraryKindShared
	LibraryKindHeaders
	LibraryKindExportedHeaders
)

var libraryKindFlavors = map[Flavor]LibraryKind{
	FlavorStatic:                    LibraryKindStatic,
	FlavorStaticPIC:                 LibraryKindStaticPIC,
	FlavorShared:                    LibraryKindShared,
	FlavorHeaderSymlinkTree:         LibraryKindHeaders,
	FlavorExportedHeaderSymlinkTree: LibraryKindExportedHeaders,
}

func (k LibraryKind) String() string {
	switch k {
	case LibraryKindDefault:
		return "default"
	case LibraryKindStatic:
		return "static"
	case LibraryKindStaticPIC:
		return "static-pic"
	case LibraryKindShared:
		return "shared"
	case LibraryKindHeaders:
		return "headers"
	case LibraryKindExportedHeaders:
		return "exported-headers"
	}
	return fmt.Sprintf("LibraryKind(%d)", int(k))
}

// IsArchive returns true for kinds producing a static archive.
func (k LibraryKind) IsArchive() bool {
	return k == LibraryKindDefault || k == LibraryKindStatic || k == LibraryKindStaticPIC
}

// TypeAndPlatform is the library kind and platform a target resolves to.
type TypeAndPlatform struct {
	Kind     LibraryKind
	Platform CxxPlatform
}

// SdkPaths are the SDK directories of a platform.
type SdkPaths struct {
	Root         string   `yaml:"root"`
	IncludeRoots []string `yaml:"include,flow"`
	LibRoots     []string `yaml:"lib,flow"`
}

// SdkPathsTable maps platform flavors to their SDK. Platforms without an SDK are absent.
type SdkPathsTable map[Flavor]SdkPaths

// Lookup retrieves the SDK of `platform`.
func (t SdkPathsTable) Lookup(platform CxxPlatform) Optional[SdkPaths] {
	if p, ok := t[platform.Flavor]; ok {
		return Some(p)
	}
	return None[SdkPaths]()
}
