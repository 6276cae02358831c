package flavorbuild

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainBuilder hides the compile commands of the wrapped builder.
type plainBuilder struct {
	inner *CxxLibraryBuilder
}

func (b plainBuilder) HasFlavors(flavors FlavorSet) bool { return b.inner.HasFlavors(flavors) }

func (b plainBuilder) GetTypeAndPlatform(target BuildTarget, platforms *PlatformDomain) (TypeAndPlatform, error) {
	return b.inner.GetTypeAndPlatform(target, platforms)
}

func (b plainBuilder) CreateRule(params BuildRuleParams, resolver *RuleResolver, args ComposedLibraryArgs, tp TypeAndPlatform) (Rule, error) {
	return b.inner.CreateRule(params, resolver, args, tp)
}

func newFooDescription() *LibraryDescription {
	return NewLibraryDescription(DescriptionConfig{}, NewCxxLibraryBuilder(testPlatforms(), ""), testPlatforms(), testSdks())
}

func TestHeadersFlavor(t *testing.T) {
	target := NewBuildTarget("//Libraries/Foo", "Foo", FlavorHeaders)
	rule, err := newFooDescription().CreateBuildRule(testParams(target), NewRuleResolver(), fooArgs())
	require.NoError(t, err)

	tree, ok := rule.(*HeaderSymlinkTreeRule)
	require.True(t, ok)
	assert.Equal(t, HeaderSymlinkTreeRuleType, tree.Type())
	assert.True(t, tree.Target().Equals(target))
	assert.Equal(t, "buck-out/gen/Libraries/Foo/Foo#headers", tree.OutputPath())
	require.Len(t, tree.Links(), 1)
	assert.Equal(t, "Foo/Foo.h", tree.Links()[0].Name)
	assert.Equal(t, "../../../../../../Libraries/Foo/Foo.h", tree.Links()[0].Link)
}

func TestCompilationDatabaseFlavor(t *testing.T) {
	target := NewBuildTarget("//Libraries/Foo", "Foo", FlavorCompilationDatabase)
	rule, err := newFooDescription().CreateBuildRule(testParams(target), NewRuleResolver(), fooArgs())
	require.NoError(t, err)

	db, ok := rule.(*CompilationDatabaseRule)
	require.True(t, ok)
	assert.Equal(t, CompilationDatabaseRuleType, db.Type())
	assert.Equal(t, "buck-out/gen/Libraries/Foo/Foo#compilation-database/compile_commands.json", db.OutputPath())
	require.Len(t, db.Items(), 1)
	item := db.Items()[0]
	assert.Equal(t, testRoot, item.Directory)
	assert.Equal(t, "Libraries/Foo/Foo.m", item.File)
	assert.Equal(t, "buck-out/gen/Libraries/Foo/Foo/objs/Libraries/Foo/Foo.m.o", item.Output)
	assert.Equal(t, "clang", item.Arguments[0])
	assert.Contains(t, item.Arguments, "-Ibuck-out/gen/Libraries/Foo/Foo#header-symlink-tree")
}

func TestCompilationDatabaseFlavorOnPlatform(t *testing.T) {
	target := NewBuildTarget("//Libraries/Foo", "Foo", FlavorCompilationDatabase, platformLinux)
	rule, err := newFooDescription().CreateBuildRule(testParams(target), NewRuleResolver(), fooArgs())
	require.NoError(t, err)

	db := rule.(*CompilationDatabaseRule)
	assert.Equal(t, "buck-out/gen/Libraries/Foo/Foo#compilation-database,linux-x86_64/compile_commands.json", db.OutputPath())
	assert.Equal(t, "buck-out/gen/Libraries/Foo/Foo#linux-x86_64/objs/Libraries/Foo/Foo.m.o", db.Items()[0].Output)
	assert.Equal(t, "gcc", db.Items()[0].Arguments[0])
}

func TestCompilationDatabaseNeedsCompileCommands(t *testing.T) {
	d := NewLibraryDescription(DescriptionConfig{}, plainBuilder{NewCxxLibraryBuilder(testPlatforms(), "")}, testPlatforms(), testSdks())
	target := NewBuildTarget("//Libraries/Foo", "Foo", FlavorCompilationDatabase)
	_, err := d.CreateBuildRule(testParams(target), NewRuleResolver(), fooArgs())
	assert.Error(t, err)

	rule, err := d.CreateBuildRule(testParams(target.WithoutFlavors(FlavorCompilationDatabase)), NewRuleResolver(), fooArgs())
	require.NoError(t, err)
	assert.Equal(t, NativeLibraryRuleType, rule.Type())
}

func TestHeaderSymlinkTreeMaterialize(t *testing.T) {
	root := t.TempDir()
	header := filepath.Join(root, "Libraries", "Foo", "Foo.h")
	require.NoError(t, os.MkdirAll(filepath.Dir(header), 0o755))
	require.NoError(t, ioutil.WriteFile(header, []byte("#pragma once\n"), 0o644))

	params := BuildRuleParams{Target: NewBuildTarget("//Libraries/Foo", "Foo", FlavorHeaders), ProjectRoot: root}
	rule, err := newFooDescription().CreateBuildRule(params, NewRuleResolver(), fooArgs())
	require.NoError(t, err)
	tree := rule.(*HeaderSymlinkTreeRule)

	for i := 0; i < 2; i++ {
		require.NoError(t, tree.Materialize())
	}
	link := filepath.Join(root, "buck-out", "gen", "Libraries", "Foo", "Foo#headers", "Foo", "Foo.h")
	dest, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("../../../../../../Libraries/Foo/Foo.h"), dest)
	b, err := ioutil.ReadFile(link)
	require.NoError(t, err)
	assert.Equal(t, "#pragma once\n", string(b))
}

func TestCompilationDatabaseWrite(t *testing.T) {
	root := t.TempDir()
	params := BuildRuleParams{Target: NewBuildTarget("//Libraries/Foo", "Foo", FlavorCompilationDatabase), ProjectRoot: root}
	rule, err := newFooDescription().CreateBuildRule(params, NewRuleResolver(), fooArgs())
	require.NoError(t, err)
	db := rule.(*CompilationDatabaseRule)

	require.NoError(t, db.Write())
	b, err := ioutil.ReadFile(filepath.Join(root, filepath.FromSlash(db.OutputPath())))
	require.NoError(t, err)
	var items []CompileDbItem
	require.NoError(t, json.Unmarshal(b, &items))
	assert.Equal(t, db.Items(), items)
	assert.Equal(t, root, items[0].Directory)
}
