package flavorbuild

import (
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

// Rule types of the specialized library rules.
const (
	HeaderSymlinkTreeRuleType   RuleType = "header_symlink_tree"
	CompilationDatabaseRuleType RuleType = "compilation_database"
)

// CompilationDatabaseFileName is the output of compilation database rules.
const CompilationDatabaseFileName = "compile_commands.json"

// libraryFlavoredRules builds the `headers` and `compilation-database` flavors of a library.
type libraryFlavoredRules struct {
	description *LibraryDescription
}

func (f *libraryFlavoredRules) TryCreate(params BuildRuleParams, resolver *RuleResolver, args LibraryArgs) (Rule, bool, error) {
	flavors := params.Target.Flavors()
	switch {
	case flavors.Contains(FlavorCompilationDatabase):
		rule, err := f.compilationDatabase(params, resolver, args)
		if err != nil {
			return nil, false, err
		}
		return rule, true, nil
	case flavors.Contains(FlavorHeaders):
		base := params.WithTarget(params.Target.WithoutFlavors(FlavorHeaders))
		composed, _, err := f.description.ComposeLibrary(base, resolver, args)
		if err != nil {
			return nil, false, err
		}
		rule, err := NewHeaderSymlinkTreeRule(params, resolver, composed.ExportedHeaders)
		if err != nil {
			return nil, false, err
		}
		return rule, true, nil
	}
	return nil, false, nil
}

func (f *libraryFlavoredRules) compilationDatabase(params BuildRuleParams, resolver *RuleResolver, args LibraryArgs) (*CompilationDatabaseRule, error) {
	source, ok := f.description.delegate.(CompileCommandSource)
	if !ok {
		return nil, errors.Errorf("cannot create compilation database for \"%s\": builder has no compile commands", params.Target)
	}
	base := params.WithTarget(params.Target.WithoutFlavors(FlavorCompilationDatabase))
	composed, tp, err := f.description.ComposeLibrary(base, resolver, args)
	if err != nil {
		return nil, err
	}
	commands, err := source.CompileCommands(base, resolver, composed, tp)
	if err != nil {
		return nil, err
	}
	items := make([]CompileDbItem, len(commands))
	for i, c := range commands {
		items[i] = CompileDbItem{
			Directory: params.ProjectRoot,
			File:      c.Source,
			Output:    c.Output,
			Arguments: c.Arguments}
	}
	return &CompilationDatabaseRule{
		target: params.Target,
		root:   params.ProjectRoot,
		output: JoinPathes(params.RelativeOutputDir(), CompilationDatabaseFileName),
		items:  items}, nil
}

// HeaderSymlink is one entry of a header symlink tree.
type HeaderSymlink struct {
	// Name is the include name, relative to the tree.
	Name   string
	Source SourcePath
	// Link is the symlink content, relative to the directory holding the link.
	Link string
}

// HeaderSymlinkTreeRule lays headers out under their include names.
type HeaderSymlinkTreeRule struct {
	target BuildTarget
	root   string
	dir    string
	links  []HeaderSymlink
}

// NewHeaderSymlinkTreeRule creates a tree in the output directory of `params.Target`.
func NewHeaderSymlinkTreeRule(params BuildRuleParams, resolver *RuleResolver, headers HeaderMap) (*HeaderSymlinkTreeRule, error) {
	spr := NewSourcePathResolver(resolver)
	outDir := params.OutputDir()
	rule := &HeaderSymlinkTreeRule{
		target: params.Target,
		root:   params.ProjectRoot,
		dir:    params.RelativeOutputDir()}
	for _, name := range headers.Keys() {
		sp, _ := headers.Get(name)
		rel := NewPathRelativizer(params.ProjectRoot, JoinPathes(outDir, path.Dir(name)), spr)
		link, err := rel.OutputPathToSourcePath(sp)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create header tree \"%s\"", params.Target)
		}
		rule.links = append(rule.links, HeaderSymlink{Name: name, Source: sp, Link: link})
	}
	return rule, nil
}

func (r *HeaderSymlinkTreeRule) Target() BuildTarget { return r.target }

func (r *HeaderSymlinkTreeRule) Type() RuleType { return HeaderSymlinkTreeRuleType }

// OutputPath retrieves the root relative tree directory (the include path).
func (r *HeaderSymlinkTreeRule) OutputPath() string { return r.dir }

// Links retrieves the symlinks in include name order of insertion.
func (r *HeaderSymlinkTreeRule) Links() []HeaderSymlink { return r.links }

// Materialize creates the symlinks under the project root. Existing entries are replaced.
func (r *HeaderSymlinkTreeRule) Materialize() error {
	base := filepath.Join(r.root, filepath.FromSlash(r.dir))
	for _, l := range r.links {
		dst := filepath.Join(base, filepath.FromSlash(l.Name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.Wrapf(err, "failed to create \"%s\"", filepath.Dir(dst))
		}
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to remove \"%s\"", dst)
		}
		if err := os.Symlink(filepath.FromSlash(l.Link), dst); err != nil {
			return errors.Wrapf(err, "failed to link \"%s\"", dst)
		}
	}
	return nil
}

// MarshalYAML emits a description of the rule.
func (r *HeaderSymlinkTreeRule) MarshalYAML() (interface{}, error) {
	links := make([]map[string]string, len(r.links))
	for i, l := range r.links {
		links[i] = map[string]string{l.Name: l.Link}
	}
	return struct {
		Target string              `yaml:"target"`
		Type   RuleType            `yaml:"type"`
		Dir    string              `yaml:"dir"`
		Links  []map[string]string `yaml:"links"`
	}{r.target.String(), r.Type(), r.dir, links}, nil
}

// CompilationDatabaseRule produces compile_commands.json for a library.
type CompilationDatabaseRule struct {
	target BuildTarget
	root   string
	output string
	items  []CompileDbItem
}

func (r *CompilationDatabaseRule) Target() BuildTarget { return r.target }

func (r *CompilationDatabaseRule) Type() RuleType { return CompilationDatabaseRuleType }

func (r *CompilationDatabaseRule) OutputPath() string { return r.output }

// Items retrieves the database entries.
func (r *CompilationDatabaseRule) Items() []CompileDbItem { return r.items }

// Write writes the database under the project root.
func (r *CompilationDatabaseRule) Write() error {
	out := filepath.Join(r.root, filepath.FromSlash(r.output))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create \"%s\"", filepath.Dir(out))
	}
	return CreateCompileDbFile(out, r.items)
}

// MarshalYAML emits a description of the rule.
func (r *CompilationDatabaseRule) MarshalYAML() (interface{}, error) {
	files := make([]string, len(r.items))
	for i, item := range r.items {
		files[i] = item.File
	}
	return struct {
		Target string   `yaml:"target"`
		Type   RuleType `yaml:"type"`
		Output string   `yaml:"output"`
		Files  []string `yaml:"files,flow"`
	}{r.target.String(), r.Type(), r.output, files}, nil
}
