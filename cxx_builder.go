package flavorbuild

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Rule types produced by CxxLibraryBuilder.
const (
	NativeLibraryRuleType RuleType = "cxx_library"
)

// CompileCommand compiles one source. Paths are root relative.
type CompileCommand struct {
	Source    string
	Output    string
	Arguments []string
}

// CompileCommandSource is implemented by builders able to describe their compilations.
type CompileCommandSource interface {
	CompileCommands(params BuildRuleParams, resolver *RuleResolver, args ComposedLibraryArgs, tp TypeAndPlatform) ([]CompileCommand, error)
}

// CxxLibraryBuilder is the native library builder: it emits compile, archive and link commands.
type CxxLibraryBuilder struct {
	platforms *PlatformDomain
	launcher  string
}

// NewCxxLibraryBuilder creates a builder. `launcher` (ex. "ccache") prefixes compiler invocations when set.
func NewCxxLibraryBuilder(platforms *PlatformDomain, launcher string) *CxxLibraryBuilder {
	return &CxxLibraryBuilder{platforms: platforms, launcher: launcher}
}

// HasFlavors returns true if every flavor is a library kind, `default` or a platform.
func (b *CxxLibraryBuilder) HasFlavors(flavors FlavorSet) bool {
	return flavors.All(func(f Flavor) bool {
		_, isKind := libraryKindFlavors[f]
		return isKind || f == FlavorDefault || b.platforms.Contains(f)
	})
}

// GetTypeAndPlatform extracts the library kind and the platform from the flavors of `target`.
func (b *CxxLibraryBuilder) GetTypeAndPlatform(target BuildTarget, platforms *PlatformDomain) (TypeAndPlatform, error) {
	kind := LibraryKindDefault
	var kinds, unknown []Flavor
	for _, f := range target.Flavors().ToSlice() {
		if k, ok := libraryKindFlavors[f]; ok {
			kind = k
			kinds = append(kinds, f)
			continue
		}
		if f != FlavorDefault && !platforms.Contains(f) {
			unknown = append(unknown, f)
		}
	}
	if 0 < len(unknown) {
		return TypeAndPlatform{}, &UnknownFlavorError{Target: target, Flavors: NewFlavorSet(unknown...)}
	}
	if 1 < len(kinds) {
		return TypeAndPlatform{}, errors.Errorf("conflicting library flavors %s in \"%s\"", NewFlavorSet(kinds...), target)
	}
	platform, err := platforms.GetValue(target.Flavors())
	if err != nil {
		return TypeAndPlatform{}, errors.Wrapf(err, "failed to select platform of \"%s\"", target)
	}
	return TypeAndPlatform{Kind: kind, Platform: platform}, nil
}

// CreateRule creates a header symlink tree or a library rule depending on `tp.Kind`.
func (b *CxxLibraryBuilder) CreateRule(params BuildRuleParams, resolver *RuleResolver, args ComposedLibraryArgs, tp TypeAndPlatform) (Rule, error) {
	switch tp.Kind {
	case LibraryKindHeaders:
		return NewHeaderSymlinkTreeRule(params, resolver, args.Headers)
	case LibraryKindExportedHeaders:
		return NewHeaderSymlinkTreeRule(params, resolver, args.ExportedHeaders)
	}

	commands, err := b.CompileCommands(params, resolver, args, tp)
	if err != nil {
		return nil, err
	}
	objects := make([]string, len(commands))
	for i, c := range commands {
		objects[i] = c.Output
	}

	target := params.Target
	outDir := params.RelativeOutputDir()
	rule := &NativeLibraryRule{
		target:     target,
		kind:       tp.Kind,
		platform:   tp.Platform,
		compile:    commands,
		linkWhole:  args.LinkWhole,
		exportDirs: []string{headerTreeParams(params, FlavorExportedHeaderSymlinkTree).RelativeOutputDir()}}

	if tp.Kind.IsArchive() {
		rule.output = JoinPathes(outDir, fmt.Sprintf("lib%s.a", target.ShortName()))
		ar := tp.Platform.AR
		if ar == "" {
			ar = "ar"
		}
		rule.link = append([]string{ar, "rcs", rule.output}, objects...)
		return rule, nil
	}

	ext := tp.Platform.SharedLibraryExtension()
	soname := args.Soname.OrElse(fmt.Sprintf("lib%s.%s", target.ShortName(), ext))
	rule.soname = soname
	rule.output = JoinPathes(outDir, soname)
	ld := tp.Platform.LD
	if ld == "" {
		ld = compilerOf(tp.Platform)
	}
	if tp.Platform.IsDarwin() {
		rule.link = []string{ld, "-dynamiclib", "-install_name", "@rpath/" + soname, "-o", rule.output}
	} else {
		rule.link = []string{ld, "-shared", "-Wl,-soname," + soname, "-o", rule.output}
	}
	rule.link = append(rule.link, objects...)
	rule.link = append(rule.link, args.LinkerFlags...)
	return rule, nil
}

// CompileCommands describes the compilation of every source of `args`.
func (b *CxxLibraryBuilder) CompileCommands(params BuildRuleParams, resolver *RuleResolver, args ComposedLibraryArgs, tp TypeAndPlatform) ([]CompileCommand, error) {
	spr := NewSourcePathResolver(resolver)
	cl := newCommandLine(tp.Platform)
	cl.AddInclude(headerTreeParams(params, FlavorHeaderSymlinkTree).RelativeOutputDir())
	cl.AddInclude(headerTreeParams(params, FlavorExportedHeaderSymlinkTree).RelativeOutputDir())

	base := []string{}
	if b.launcher != "" {
		base = append(base, b.launcher)
	}
	base = append(base, compilerOf(tp.Platform))
	base = append(base, tp.Platform.CompilerFlags...)
	if tp.Kind == LibraryKindStaticPIC || tp.Kind == LibraryKindShared {
		base = append(base, cl.Option("fPIC"))
	}
	base = append(base, cl.includes...)
	base = append(base, args.PreprocessorFlags...)
	base = append(base, args.CompilerFlags...)

	objDir := JoinPathes(params.RelativeOutputDir(), "objs")
	result := make([]CompileCommand, 0, len(args.Srcs))
	for _, src := range args.Srcs {
		p, err := spr.Resolve(src)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve source of \"%s\"", params.Target)
		}
		obj := JoinPathes(objDir, p+".o")
		arguments := append(append([]string{}, base...), cl.Option("c"), p, cl.Option("o"), obj)
		result = append(result, CompileCommand{Source: p, Output: obj, Arguments: arguments})
	}
	return result, nil
}

func compilerOf(p CxxPlatform) string {
	if p.CC != "" {
		return p.CC
	}
	return "cc"
}

// headerTreeParams retrieves params of the symlink tree `flavor` of the library in `params`.
func headerTreeParams(params BuildRuleParams, flavor Flavor) BuildRuleParams {
	t := params.Target.WithoutFlavors(FlavorStatic, FlavorStaticPIC, FlavorShared, FlavorDefault,
		FlavorHeaderSymlinkTree, FlavorExportedHeaderSymlinkTree)
	return params.WithTarget(t.WithFlavors(flavor))
}

// commandLine builds compiler options with the option prefix of the toolchain.
type commandLine struct {
	prefix   string
	includes []string
}

func newCommandLine(p CxxPlatform) *commandLine {
	if strings.EqualFold(p.Toolchain, "msvc") {
		return &commandLine{prefix: "/"}
	}
	return &commandLine{prefix: "-"}
}

// Option retrieves `name` with the option prefix.
func (c *commandLine) Option(name string) string {
	return c.prefix + name
}

// AddInclude appends include path.
func (c *commandLine) AddInclude(path string) {
	c.includes = append(c.includes, fmt.Sprintf("%sI%s", c.prefix, filepath.ToSlash(filepath.Clean(path))))
}

// NativeLibraryRule builds a static archive or a shared object.
type NativeLibraryRule struct {
	target     BuildTarget
	kind       LibraryKind
	platform   CxxPlatform
	output     string
	soname     string
	compile    []CompileCommand
	link       []string
	linkWhole  bool
	exportDirs []string
}

func (r *NativeLibraryRule) Target() BuildTarget { return r.target }

func (r *NativeLibraryRule) Type() RuleType { return NativeLibraryRuleType }

func (r *NativeLibraryRule) OutputPath() string { return r.output }

// Kind retrieves the library kind.
func (r *NativeLibraryRule) Kind() LibraryKind { return r.kind }

// Platform retrieves the platform the library is built for.
func (r *NativeLibraryRule) Platform() CxxPlatform { return r.platform }

// Soname retrieves the shared object name. Empty for archives.
func (r *NativeLibraryRule) Soname() string { return r.soname }

// LinkWhole returns true if dependents should link every object of the archive.
func (r *NativeLibraryRule) LinkWhole() bool { return r.linkWhole }

// CompileCommands retrieves the compilations of the library.
func (r *NativeLibraryRule) CompileCommands() []CompileCommand { return r.compile }

// LinkCommand retrieves the archive or link command.
func (r *NativeLibraryRule) LinkCommand() []string { return r.link }

// ExportedIncludeDirs retrieves the root relative include directories for dependents.
func (r *NativeLibraryRule) ExportedIncludeDirs() []string { return r.exportDirs }

// LinkerArgs retrieves the arguments dependents pass to their linker to use this library.
func (r *NativeLibraryRule) LinkerArgs() []string {
	if !r.kind.IsArchive() || !r.linkWhole {
		return []string{r.output}
	}
	if r.platform.IsDarwin() {
		return []string{"-Wl,-force_load," + r.output}
	}
	return []string{"-Wl,--whole-archive", r.output, "-Wl,--no-whole-archive"}
}

// MarshalYAML emits a description of the rule.
func (r *NativeLibraryRule) MarshalYAML() (interface{}, error) {
	type compile struct {
		Source    string   `yaml:"source"`
		Output    string   `yaml:"output"`
		Arguments []string `yaml:"arguments,flow"`
	}
	cs := make([]compile, len(r.compile))
	for i, c := range r.compile {
		cs[i] = compile{Source: c.Source, Output: c.Output, Arguments: c.Arguments}
	}
	return struct {
		Target      string    `yaml:"target"`
		Type        RuleType  `yaml:"type"`
		Kind        string    `yaml:"kind"`
		Platform    Flavor    `yaml:"platform"`
		Output      string    `yaml:"output"`
		Soname      string    `yaml:"soname,omitempty"`
		LinkWhole   bool      `yaml:"link_whole"`
		LinkerArgs  []string  `yaml:"linker_args,flow"`
		Compile     []compile `yaml:"compile"`
		Link        []string  `yaml:"link,flow"`
		IncludeDirs []string  `yaml:"exported_include_dirs,flow"`
	}{
		Target:      r.target.String(),
		Type:        r.Type(),
		Kind:        r.kind.String(),
		Platform:    r.platform.Flavor,
		Output:      r.output,
		Soname:      r.soname,
		LinkWhole:   r.linkWhole,
		LinkerArgs:  r.LinkerArgs(),
		Compile:     cs,
		Link:        r.link,
		IncludeDirs: r.exportDirs}, nil
}
