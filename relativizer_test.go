package flavorbuild

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PathRelativizerTestSuite struct {
	suite.Suite
	rules       *RuleResolver
	relativizer *PathRelativizer
}

func (suite *PathRelativizerTestSuite) SetupTest() {
	suite.rules = NewRuleResolver()
	suite.relativizer = NewPathRelativizer("/my/repo/root/", "/my/repo/root/output0/output1", NewSourcePathResolver(suite.rules))
}

func (suite *PathRelativizerTestSuite) TestOutputDirToRootRelative() {
	assert.Equal(suite.T(), "../../foo/bar", suite.relativizer.OutputDirToRootRelative("foo/bar"))
}

func (suite *PathRelativizerTestSuite) TestOutputPathToSourcePath() {
	actual, err := suite.relativizer.OutputPathToSourcePath(NewPathSourcePath("source/path/foo.h"))
	if assert.NoError(suite.T(), err) {
		assert.Equal(suite.T(), "../../source/path/foo.h", actual)
	}
}

func (suite *PathRelativizerTestSuite) TestOutputPathToRuleOutput() {
	generator := NewBuildTarget("//Tools", "Gen")
	require.NoError(suite.T(), suite.rules.AddRule(&fakeRule{target: generator, output: "buck-out/gen/Tools/Gen/gen.h"}))
	actual, err := suite.relativizer.OutputPathToSourcePath(NewBuildTargetSourcePath(generator))
	if assert.NoError(suite.T(), err) {
		assert.Equal(suite.T(), "../../buck-out/gen/Tools/Gen/gen.h", actual)
	}
}

func (suite *PathRelativizerTestSuite) TestOutputPathToUnknownRule() {
	_, err := suite.relativizer.OutputPathToSourcePath(NewBuildTargetSourcePath(NewBuildTarget("//Tools", "Missing")))
	assert.Error(suite.T(), err)
}

func (suite *PathRelativizerTestSuite) TestOutputPathToBuildTargetPath() {
	target := NewBuildTarget("//foo/bar", "baz")
	assert.Equal(suite.T(), "../../foo/bar/file", suite.relativizer.OutputPathToBuildTargetPath(target, "file"))
}

func (suite *PathRelativizerTestSuite) TestIdempotent() {
	first := suite.relativizer.OutputDirToRootRelative("foo/bar")
	second := suite.relativizer.OutputDirToRootRelative("foo/bar")
	assert.Equal(suite.T(), first, second)

	generator := NewBuildTarget("//Tools", "Gen")
	require.NoError(suite.T(), suite.rules.AddRule(&fakeRule{target: generator, output: "buck-out/gen/Tools/Gen/gen.h"}))
	for _, sp := range []SourcePath{NewPathSourcePath("source/path/foo.h"), NewBuildTargetSourcePath(generator)} {
		first, err := suite.relativizer.OutputPathToSourcePath(sp)
		require.NoError(suite.T(), err)
		second, err := suite.relativizer.OutputPathToSourcePath(sp)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), first, second)
	}

	target := NewBuildTarget("//foo/bar", "baz", FlavorShared)
	assert.Equal(suite.T(),
		suite.relativizer.OutputPathToBuildTargetPath(target, "file"),
		suite.relativizer.OutputPathToBuildTargetPath(target, "file"))
}

func (suite *PathRelativizerTestSuite) TestOutputDirIsRoot() {
	r := NewPathRelativizer("/my/repo/root", "/my/repo/root/", NewSourcePathResolver(suite.rules))
	assert.Equal(suite.T(), "foo/bar", r.OutputDirToRootRelative("foo/bar"))
}

func (suite *PathRelativizerTestSuite) TestOutputDirOutsideRootPanics() {
	assert.Panics(suite.T(), func() {
		NewPathRelativizer("/my/repo/root", "/my/repo/other", NewSourcePathResolver(suite.rules))
	})
	assert.Panics(suite.T(), func() {
		NewPathRelativizer("/my/repo/root", "/my/repo", NewSourcePathResolver(suite.rules))
	})
}

func TestPathRelativizerSuite(t *testing.T) {
	suite.Run(t, new(PathRelativizerTestSuite))
}

func TestPathRelativizer_DepthProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("one \"..\" per output directory level", prop.ForAll(
		func(segments []string, p string) bool {
			r := NewPathRelativizer(testRoot, JoinPathes(append([]string{testRoot}, segments...)...), NewSourcePathResolver(nil))
			expected := strings.Repeat("../", len(segments)) + p
			fromSource, err := r.OutputPathToSourcePath(NewPathSourcePath(p))
			if err != nil {
				return false
			}
			again, _ := r.OutputPathToSourcePath(NewPathSourcePath(p))
			return r.OutputDirToRootRelative(p) == expected &&
				r.OutputDirToRootRelative(p) == expected &&
				fromSource == expected && again == expected &&
				r.OutputPathToBuildTargetPath(NewBuildTarget("//", "x"), p) == expected
		},
		gen.SliceOf(gen.Identifier()),
		gen.Identifier()))
	properties.TestingRun(t)
}
