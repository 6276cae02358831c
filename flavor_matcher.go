package flavorbuild

// FlavorOwner is implemented by rule families that recognize flavor sets.
type FlavorOwner interface {
	HasFlavors(flavors FlavorSet) bool
}

// LibraryFlavors are the flavors an apple_library understands by itself.
var LibraryFlavors = NewFlavorSet(
	FlavorCompilationDatabase,
	FlavorHeaders,
	FlavorHeaderSymlinkTree,
	FlavorExportedHeaderSymlinkTree,
	FlavorStatic,
	FlavorShared,
	FlavorDefault)

// FlavorMatcher classifies flavor sets against a fixed supported set.
// Sets it does not know may still be claimed by the delegate.
type FlavorMatcher struct {
	supported FlavorSet
	delegate  FlavorOwner
}

// NewFlavorMatcher creates a matcher. `delegate` may be nil.
func NewFlavorMatcher(supported FlavorSet, delegate FlavorOwner) FlavorMatcher {
	return FlavorMatcher{supported: supported, delegate: delegate}
}

// IsSupported returns true if every flavor in `flavors` is supported. The empty set always is.
func (m FlavorMatcher) IsSupported(flavors FlavorSet) bool {
	return flavors.All(m.supported.Contains)
}

// HasFlavors returns true if the set is supported here or by the delegate.
func (m FlavorMatcher) HasFlavors(flavors FlavorSet) bool {
	if m.IsSupported(flavors) {
		return true
	}
	return m.delegate != nil && m.delegate.HasFlavors(flavors)
}
