// Package flavorbuild resolves flavored library targets into platform bound build rules.
//
// A target such as `//Libraries/Foo:Foo#iphoneos-arm64,shared` is either
// specialized by one of the library flavors (headers, compilation-database)
// or composed into ComposedLibraryArgs and handed to a NativeLibraryBuilder.
// PathRelativizer computes the output directory relative paths used by the
// generated rules so they do not depend on where the repository is mounted.
package flavorbuild
