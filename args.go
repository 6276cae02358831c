package flavorbuild

// SourceType is the language of a source file.
type SourceType string

const (
	SourceTypeC      SourceType = "c"
	SourceTypeCxx    SourceType = "cxx"
	SourceTypeObjC   SourceType = "objc"
	SourceTypeObjCxx SourceType = "objcxx"
)

// FlagList is a list of flags, optionally limited to some platforms.
//
//	compiler_flags:
//	- flags: [-Wall]
//	- platform: [iphoneos-arm64, iphonesimulator-x86_64]
//	  flags: [-fembed-bitcode]
type FlagList struct {
	Platform FlavorSet `yaml:"platform"`
	Flags    []string  `yaml:"flags,flow"`
}

// Match checks the list applies to `platform`. No platform means every platform.
func (l *FlagList) Match(platform Flavor) bool {
	return l.Platform.IsEmpty() || l.Platform.Contains(platform)
}

func collectFlags(lists []FlagList, platform Flavor) []string {
	result := []string{}
	for i := range lists {
		if lists[i].Match(platform) {
			result = append(result, lists[i].Flags...)
		}
	}
	return result
}

// LibraryArgs is the platform independent description of a library target.
type LibraryArgs struct {
	Srcs              []SourcePath
	Headers           []SourcePath
	ExportedHeaders   []SourcePath
	HeaderPathPrefix  Optional[string]
	CompilerFlags     []FlagList
	PreprocessorFlags []FlagList
	LinkerFlags       []FlagList
	Frameworks        []string
	Deps              []BuildTarget
}

// ComposedLibraryArgs is the platform bound description handed to the native library builder.
// Build it with ComposeLibraryArgs; it is never modified afterwards.
type ComposedLibraryArgs struct {
	Srcs []SourcePath
	// Headers are visible to the library itself: every header by file name and
	// private headers under the header path prefix.
	Headers HeaderMap
	// ExportedHeaders are visible to dependents under the header path prefix.
	ExportedHeaders               HeaderMap
	CompilerFlags                 []string
	PreprocessorFlags             []string
	LinkerFlags                   []string
	ExportedPreprocessorFlags     []string
	ExportedLangPreprocessorFlags map[SourceType][]string
	Frameworks                    []string
	Soname                        Optional[string]
	LinkWhole                     bool
	Deps                          []BuildTarget
	SdkPaths                      Optional[SdkPaths]
}

// ComposeLibraryArgs binds `args` to the platform of `tp`.
// Exported flags are left empty and soname unset; link-whole is requested unless the target is shared.
func ComposeLibraryArgs(
	target BuildTarget,
	args LibraryArgs,
	tp TypeAndPlatform,
	sdk Optional[SdkPaths],
	headers HeaderMap,
	exportedHeaders HeaderMap) ComposedLibraryArgs {

	platform := tp.Platform.Flavor
	compilerFlags := collectFlags(args.CompilerFlags, platform)
	linkerFlags := collectFlags(args.LinkerFlags, platform)
	if paths, ok := sdk.Get(); ok {
		if paths.Root != "" {
			compilerFlags = append(compilerFlags, "-isysroot", paths.Root)
		}
		for _, inc := range paths.IncludeRoots {
			compilerFlags = append(compilerFlags, "-isystem", inc)
		}
		for _, lib := range paths.LibRoots {
			linkerFlags = append(linkerFlags, "-L"+lib)
		}
	}
	for _, fw := range args.Frameworks {
		linkerFlags = append(linkerFlags, "-framework", fw)
	}

	return ComposedLibraryArgs{
		Srcs:                          append([]SourcePath(nil), args.Srcs...),
		Headers:                       headers,
		ExportedHeaders:               exportedHeaders,
		CompilerFlags:                 compilerFlags,
		PreprocessorFlags:             collectFlags(args.PreprocessorFlags, platform),
		LinkerFlags:                   linkerFlags,
		ExportedPreprocessorFlags:     []string{},
		ExportedLangPreprocessorFlags: map[SourceType][]string{},
		Frameworks:                    append([]string(nil), args.Frameworks...),
		Soname:                        None[string](),
		LinkWhole:                     !IsSharedLibraryTarget(target),
		Deps:                          append([]BuildTarget(nil), args.Deps...),
		SdkPaths:                      sdk}
}
