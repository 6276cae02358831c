package flavorbuild

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v2"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFlagList_UnmarshalYAML(t *testing.T) {
	src := `
- flags: [-Wall]
- platform: iphoneos-arm64
  flags: [-fembed-bitcode]
- platform: [linux-x86_64, iphoneos-arm64]
  flags: [-DUNIX]
`
	Convey("GIVEN: Flag lists in YAML", t, func() {
		var lists []FlagList
		err := yaml.Unmarshal([]byte(src), &lists)
		So(err, ShouldBeNil)
		So(lists, ShouldHaveLength, 3)
		Convey("THEN: Lists without platform match every platform", func() {
			So(lists[0].Match(platformLinux), ShouldBeTrue)
			So(lists[0].Match(platformIPhone), ShouldBeTrue)
		})
		Convey("THEN: Collected flags keep declaration order", func() {
			So(collectFlags(lists, platformIPhone), ShouldResemble, []string{"-Wall", "-fembed-bitcode", "-DUNIX"})
			So(collectFlags(lists, platformLinux), ShouldResemble, []string{"-Wall", "-DUNIX"})
			So(collectFlags(nil, platformLinux), ShouldBeEmpty)
		})
	})
}

func TestComposeLibraryArgs(t *testing.T) {
	Convey("GIVEN: Library arguments", t, func() {
		args := fooArgs()
		args.Deps = []BuildTarget{NewBuildTarget("//Libraries/Bar", "Bar")}
		headers := HeaderMap{}
		tp := TypeAndPlatform{Kind: LibraryKindStatic, Platform: testPlatforms().Default()}
		Convey("WHEN: Compose without SDK", func() {
			composed := ComposeLibraryArgs(NewBuildTarget("//Libraries/Foo", "Foo", FlavorStatic), args, tp, None[SdkPaths](), headers, headers)
			Convey("THEN: Platform flags are selected", func() {
				So(cmp.Diff([]string{"-Wall"}, composed.CompilerFlags), ShouldBeEmpty)
				So(cmp.Diff([]string{"-framework", "Foundation"}, composed.LinkerFlags), ShouldBeEmpty)
				So(composed.Frameworks, ShouldResemble, []string{"Foundation"})
				So(composed.Deps, ShouldHaveLength, 1)
				So(composed.LinkWhole, ShouldBeTrue)
				So(composed.Soname.IsPresent(), ShouldBeFalse)
				So(cmp.Diff([]string(nil), composed.ExportedPreprocessorFlags, cmpopts.EquateEmpty()), ShouldBeEmpty)
			})
			Convey("THEN: The inputs are not shared", func() {
				composed.Srcs[0] = NewPathSourcePath("changed.m")
				So(args.Srcs[0].String(), ShouldEqual, "Libraries/Foo/Foo.m")
			})
		})
		Convey("WHEN: Compose a shared library with SDK", func() {
			sdk := SdkPaths{Root: "/sdk", LibRoots: []string{"/sdk/lib"}}
			composed := ComposeLibraryArgs(NewBuildTarget("//Libraries/Foo", "Foo", FlavorShared), args, tp, Some(sdk), headers, headers)
			Convey("THEN: SDK flags are appended", func() {
				So(cmp.Diff([]string{"-Wall", "-isysroot", "/sdk"}, composed.CompilerFlags), ShouldBeEmpty)
				So(cmp.Diff([]string{"-L/sdk/lib", "-framework", "Foundation"}, composed.LinkerFlags), ShouldBeEmpty)
				So(composed.LinkWhole, ShouldBeFalse)
			})
		})
	})
}

func TestOptional(t *testing.T) {
	Convey("GIVEN: Optionals", t, func() {
		v, ok := Some("x").Get()
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, "x")
		So(None[string]().OrElse("y"), ShouldEqual, "y")
		So(Some("").OrElse("y"), ShouldEqual, "")
		So(None[int]().IsPresent(), ShouldBeFalse)
	})
}
