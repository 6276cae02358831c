package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/zsuzuki/flavorbuild"
)

const (
	flavorbuildVersion = "0.3.0"
	buildFileName      = "build.yml"
)

var (
	verboseMode bool
	materialize bool
	configPath  string
	buildFile   string
	projectRoot string
	ProgramName = getExeName()
)

// The entry point.
func main() {
	_ = godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <//path/to:target#flavors>\n", ProgramName)
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.BoolVar(&verboseMode, "v", flavorbuild.ToBoolean(os.Getenv("FLAVORBUILD_VERBOSE")), "verbose mode")
	flag.BoolVar(&materialize, "materialize", false, "create header symlink trees on disk")
	flag.StringVar(&configPath, "config", os.Getenv("FLAVORBUILD_CONFIG"), "platform configuration file")
	flag.StringVar(&buildFile, "f", "", "build file (default: <target directory>/"+buildFileName+")")
	flag.StringVar(&projectRoot, "root", ".", "project root")
	showVersionAndExit := flag.Bool("version", false, "display version")
	flag.Parse()

	if *showVersionAndExit {
		fmt.Fprintf(os.Stdout, "%s: %v (%s/%s)\n", ProgramName, flavorbuildVersion, runtime.Version(), runtime.Compiler)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
	}

	reporter := flavorbuild.NewReporter(ProgramName, verboseMode)
	if err := run(flag.Arg(0), reporter); err != nil {
		fmt.Fprintf(os.Stderr, "%s:error: %v\n", ProgramName, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func run(targetName string, reporter *flavorbuild.Reporter) error {
	target, err := flavorbuild.ParseBuildTarget(targetName)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return errors.Wrapf(err, "invalid project root \"%s\"", projectRoot)
	}

	cfg := flavorbuild.DefaultConfig()
	if configPath != "" {
		if cfg, err = flavorbuild.LoadConfig(configPath); err != nil {
			return err
		}
	}
	platforms, err := cfg.PlatformDomain()
	if err != nil {
		return err
	}
	sdks, err := cfg.SdkPathsTable()
	if err != nil {
		return err
	}

	if buildFile == "" {
		buildFile = filepath.Join(root, filepath.FromSlash(target.BasePathDir()), buildFileName)
	}
	reporter.Verbosef("Reading \"%s\"", buildFile)
	bf, err := flavorbuild.LoadBuildFile(buildFile)
	if err != nil {
		return err
	}
	entry, ok := bf.Find(target.ShortName())
	if !ok {
		return errors.Errorf("no apple_library \"%s\" in \"%s\"", target.ShortName(), buildFile)
	}
	args, err := entry.Args(target.BasePath())
	if err != nil {
		return err
	}

	launcher := flavorbuild.FindCompilerLauncher()
	if launcher != "" {
		reporter.Verbosef("Using compiler launcher \"%s\"", launcher)
	}
	builder := flavorbuild.NewCxxLibraryBuilder(platforms, launcher)
	description := flavorbuild.NewLibraryDescription(
		cfg.DescriptionConfig(), builder, platforms, sdks, flavorbuild.WithReporter(reporter))
	if !description.HasFlavors(target.Flavors().Without(platforms.Flavors().ToSlice()...)) {
		return &flavorbuild.UnknownFlavorError{Target: target, Flavors: target.Flavors()}
	}

	params := flavorbuild.BuildRuleParams{
		Target:       target,
		DeclaredDeps: args.Deps,
		ProjectRoot:  root,
		OutputRoot:   cfg.OutputRoot}
	resolver := flavorbuild.NewRuleResolver()
	rule, err := description.CreateBuildRule(params, resolver, args)
	if err != nil {
		return err
	}
	if err := resolver.AddRule(rule); err != nil {
		return err
	}

	switch r := rule.(type) {
	case *flavorbuild.CompilationDatabaseRule:
		if err := r.Write(); err != nil {
			return err
		}
		reporter.Verbosef("Wrote \"%s\"", r.OutputPath())
	case *flavorbuild.HeaderSymlinkTreeRule:
		if materialize {
			if err := r.Materialize(); err != nil {
				return err
			}
			reporter.Verbosef("Materialized \"%s\"", r.OutputPath())
		}
	}

	b, err := yaml.Marshal(rule)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal rule of \"%s\"", target)
	}
	_, err = os.Stdout.Write(b)
	return err
}

// Obtains executable name if possible.
func getExeName() string {
	var name = "flavorbuild"
	if n, err := os.Executable(); err == nil {
		name = filepath.Base(n)
	}
	return filepath.ToSlash(name)
}
