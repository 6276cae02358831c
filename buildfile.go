// Schema definitions for build files declaring libraries.

package flavorbuild

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// BuildFile is the top structure of a build file.
//
//	apple_library:
//	- name: Foo
//	  srcs: [Foo.m]
//	  exported_headers: [Foo.h]
//	  headers: [Private/FooInternal.h]
type BuildFile struct {
	Libraries []LibraryEntry `yaml:"apple_library,flow"`
}

// LibraryEntry is an `apple_library` declaration.
type LibraryEntry struct {
	Name              string     `yaml:"name"`
	Srcs              []string   `yaml:"srcs,flow"`
	Headers           []string   `yaml:"headers,flow"`
	ExportedHeaders   []string   `yaml:"exported_headers,flow"`
	HeaderPathPrefix  *string    `yaml:"header_path_prefix"`
	CompilerFlags     []FlagList `yaml:"compiler_flags,flow"`
	PreprocessorFlags []FlagList `yaml:"preprocessor_flags,flow"`
	LinkerFlags       []FlagList `yaml:"linker_flags,flow"`
	Frameworks        []string   `yaml:"frameworks,flow"`
	Deps              []string   `yaml:"deps,flow"`
}

// LoadBuildFile reads the build file `path`.
func LoadBuildFile(path string) (*BuildFile, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read \"%s\"", path)
	}
	var bf BuildFile
	if err := yaml.UnmarshalStrict(buf, &bf); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal \"%s\"", path)
	}
	return &bf, nil
}

// Find retrieves the library named `name`.
func (bf *BuildFile) Find(name string) (*LibraryEntry, bool) {
	for i := range bf.Libraries {
		if bf.Libraries[i].Name == name {
			return &bf.Libraries[i], true
		}
	}
	return nil, false
}

// Target retrieves the unflavored target of the entry declared under `basePath`.
func (e *LibraryEntry) Target(basePath string) BuildTarget {
	return NewBuildTarget(basePath, e.Name)
}

// Args coerces the entry declared under `basePath` into LibraryArgs.
func (e *LibraryEntry) Args(basePath string) (LibraryArgs, error) {
	owner := e.Target(basePath)
	var args LibraryArgs
	var err error
	if args.Srcs, err = parseSourcePaths(owner, e.Srcs); err != nil {
		return LibraryArgs{}, err
	}
	if args.Headers, err = parseSourcePaths(owner, e.Headers); err != nil {
		return LibraryArgs{}, err
	}
	if args.ExportedHeaders, err = parseSourcePaths(owner, e.ExportedHeaders); err != nil {
		return LibraryArgs{}, err
	}
	if e.HeaderPathPrefix != nil {
		args.HeaderPathPrefix = Some(*e.HeaderPathPrefix)
	}
	for _, d := range e.Deps {
		sp, err := ParseSourcePath(owner, d)
		if err != nil {
			return LibraryArgs{}, err
		}
		dep, ok := sp.(BuildTargetSourcePath)
		if !ok {
			return LibraryArgs{}, errors.Errorf("dependency \"%s\" of \"%s\" is not a build target", d, owner)
		}
		args.Deps = append(args.Deps, dep.Target())
	}
	args.CompilerFlags = e.CompilerFlags
	args.PreprocessorFlags = e.PreprocessorFlags
	args.LinkerFlags = e.LinkerFlags
	args.Frameworks = e.Frameworks
	return args, nil
}

func parseSourcePaths(owner BuildTarget, ss []string) ([]SourcePath, error) {
	result := make([]SourcePath, 0, len(ss))
	for _, s := range ss {
		sp, err := ParseSourcePath(owner, s)
		if err != nil {
			return nil, err
		}
		result = append(result, sp)
	}
	return result, nil
}
