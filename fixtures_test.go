package flavorbuild

const testRoot = "/my/repo/root"

const (
	platformIPhone Flavor = "iphoneos-arm64"
	platformLinux  Flavor = "linux-x86_64"
)

func testPlatforms() *PlatformDomain {
	d, err := NewPlatformDomain("test platforms", platformIPhone,
		CxxPlatform{Flavor: platformIPhone, Arch: "arm64", Toolchain: "darwin", CC: "clang", AR: "ar",
			CompilerFlags: []string{"-arch", "arm64"}},
		CxxPlatform{Flavor: platformLinux, Arch: "x86_64", Toolchain: "gnu", CC: "gcc", AR: "gcc-ar"})
	if err != nil {
		panic(err)
	}
	return d
}

func testSdks() SdkPathsTable {
	return SdkPathsTable{
		platformIPhone: SdkPaths{
			Root:         "/sdk/iPhoneOS.sdk",
			IncludeRoots: []string{"/sdk/iPhoneOS.sdk/usr/include"},
			LibRoots:     []string{"/sdk/iPhoneOS.sdk/usr/lib"}}}
}

func testParams(target BuildTarget) BuildRuleParams {
	return BuildRuleParams{Target: target, ProjectRoot: testRoot}
}

// fooArgs describes //Libraries/Foo:Foo.
func fooArgs() LibraryArgs {
	return LibraryArgs{
		Srcs:            []SourcePath{NewPathSourcePath("Libraries/Foo/Foo.m")},
		ExportedHeaders: []SourcePath{NewPathSourcePath("Libraries/Foo/Foo.h")},
		Headers:         []SourcePath{NewPathSourcePath("Libraries/Foo/Private/FooInternal.h")},
		CompilerFlags: []FlagList{
			{Flags: []string{"-Wall"}},
			{Platform: NewFlavorSet(platformLinux), Flags: []string{"-fno-objc-arc"}}},
		PreprocessorFlags: []FlagList{{Flags: []string{"-DFOO=1"}}},
		Frameworks:        []string{"Foundation"}}
}

type fakeRule struct {
	target BuildTarget
	typ    RuleType
	output string
}

func (r *fakeRule) Target() BuildTarget { return r.target }
func (r *fakeRule) Type() RuleType      { return r.typ }
func (r *fakeRule) OutputPath() string  { return r.output }

// recordingBuilder is a CxxLibraryBuilder remembering what CreateRule received.
type recordingBuilder struct {
	*CxxLibraryBuilder
	calls int
	args  ComposedLibraryArgs
	tp    TypeAndPlatform
	err   error
}

func newRecordingBuilder() *recordingBuilder {
	return &recordingBuilder{CxxLibraryBuilder: NewCxxLibraryBuilder(testPlatforms(), "")}
}

func (b *recordingBuilder) CreateRule(params BuildRuleParams, resolver *RuleResolver, args ComposedLibraryArgs, tp TypeAndPlatform) (Rule, error) {
	b.calls++
	b.args = args
	b.tp = tp
	if b.err != nil {
		return nil, b.err
	}
	return &fakeRule{target: params.Target, typ: "fake_library"}, nil
}

type stubFactory struct {
	rule Rule
	err  error
}

func (f stubFactory) TryCreate(BuildRuleParams, *RuleResolver, LibraryArgs) (Rule, bool, error) {
	return f.rule, f.rule != nil, f.err
}
