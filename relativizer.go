package flavorbuild

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// PathRelativizer computes paths relative to an output directory,
// so generated files keep working wherever the root is mounted.
type PathRelativizer struct {
	root      string
	outputDir string
	// upToRoot is outputDir -> root ("../..", or "." when they are the same)
	upToRoot string
	resolver *SourcePathResolver
}

// NewPathRelativizer creates a relativizer.
// `root` and `outputDir` should be absolute and `outputDir` should be inside `root`;
// anything else is a programming error and panics.
func NewPathRelativizer(root string, outputDir string, resolver *SourcePathResolver) *PathRelativizer {
	root = filepath.Clean(root)
	outputDir = filepath.Clean(outputDir)
	up, err := filepath.Rel(outputDir, root)
	if err != nil {
		panic(errors.Wrapf(err, "output directory \"%s\" is not under \"%s\"", outputDir, root))
	}
	for _, seg := range strings.Split(filepath.ToSlash(up), "/") {
		if seg != ".." && seg != "." {
			panic(errors.Errorf("output directory \"%s\" is not under \"%s\"", outputDir, root))
		}
	}
	return &PathRelativizer{
		root:      root,
		outputDir: outputDir,
		upToRoot:  filepath.ToSlash(up),
		resolver:  resolver}
}

// Root retrieves the repository root.
func (r *PathRelativizer) Root() string { return r.root }

// OutputDir retrieves the directory results are relative to.
func (r *PathRelativizer) OutputDir() string { return r.outputDir }

// OutputDirToRootRelative converts root relative `p` to output directory relative.
func (r *PathRelativizer) OutputDirToRootRelative(p string) string {
	return JoinPathes(r.upToRoot, p)
}

// OutputPathToSourcePath resolves `sp` and converts it to output directory relative.
func (r *PathRelativizer) OutputPathToSourcePath(sp SourcePath) (string, error) {
	p, err := r.resolver.Resolve(sp)
	if err != nil {
		return "", errors.Wrapf(err, "failed to relativize \"%s\"", sp)
	}
	return r.OutputDirToRootRelative(p), nil
}

// OutputPathToBuildTargetPath converts `relativePath` under the directory of `target` to output directory relative.
func (r *PathRelativizer) OutputPathToBuildTargetPath(target BuildTarget, relativePath string) string {
	return r.OutputDirToRootRelative(JoinPathes(target.BasePathDir(), relativePath))
}
