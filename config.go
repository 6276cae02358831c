package flavorbuild

import (
	"io/ioutil"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultPlatformDomain is the name of the platform domain built from Config.
const DefaultPlatformDomain = "C/C++ platform"

// PlatformConfig is one `platforms:` entry.
type PlatformConfig struct {
	Flavor          Flavor    `yaml:"flavor"`
	Arch            string    `yaml:"arch"`
	Toolchain       string    `yaml:"toolchain"`
	CC              string    `yaml:"cc"`
	AR              string    `yaml:"ar"`
	LD              string    `yaml:"ld"`
	CompilerFlags   []string  `yaml:"compiler_flags,flow"`
	SharedExtension string    `yaml:"shared_extension"`
	Sdk             *SdkPaths `yaml:"sdk"`
}

// Config is the configuration file.
//
//	output_root: buck-out/gen
//	header_collisions: reject
//	default_platform: macosx-arm64
//	variables:
//	  developer_dir: /Applications/Xcode.app/Contents/Developer
//	platforms:
//	- flavor: macosx-arm64
//	  arch: arm64
//	  toolchain: darwin
//	  cc: clang
//	  sdk:
//	    root: ${developer_dir}/Platforms/MacOSX.platform/Developer/SDKs/MacOSX.sdk
type Config struct {
	OutputRoot       string            `yaml:"output_root"`
	HeaderCollisions CollisionPolicy   `yaml:"header_collisions"`
	DefaultPlatform  Flavor            `yaml:"default_platform"`
	Variables        map[string]string `yaml:"variables"`
	Platforms        []PlatformConfig  `yaml:"platforms,flow"`
}

// DefaultConfig is used when no configuration file is given: one platform for the host.
func DefaultConfig() *Config {
	host := Flavor(runtime.GOOS + "-" + runtime.GOARCH)
	toolchain := "gnu"
	if runtime.GOOS == "darwin" {
		toolchain = "darwin"
	}
	return &Config{
		OutputRoot:      DefaultOutputRoot,
		DefaultPlatform: host,
		Platforms: []PlatformConfig{
			{Flavor: host, Arch: runtime.GOARCH, Toolchain: toolchain, CC: "cc", AR: "ar"}}}
}

// LoadConfig reads the configuration file `path`.
func LoadConfig(path string) (*Config, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read \"%s\"", path)
	}
	cfg, err := ParseConfig(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load \"%s\"", path)
	}
	return cfg, nil
}

// ParseConfig parses configuration YAML.
func ParseConfig(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(buf, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal configuration")
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = DefaultOutputRoot
	}
	if len(cfg.Platforms) == 0 {
		return nil, errors.New("no platforms defined")
	}
	if cfg.DefaultPlatform == "" {
		cfg.DefaultPlatform = cfg.Platforms[0].Flavor
	}
	return &cfg, nil
}

// DescriptionConfig retrieves the settings of LibraryDescription.
func (c *Config) DescriptionConfig() DescriptionConfig {
	return DescriptionConfig{HeaderCollisions: c.HeaderCollisions}
}

// PlatformDomain builds the platform domain.
func (c *Config) PlatformDomain() (*PlatformDomain, error) {
	platforms := make([]CxxPlatform, len(c.Platforms))
	for i, p := range c.Platforms {
		platforms[i] = CxxPlatform{
			Flavor:          p.Flavor,
			Arch:            p.Arch,
			Toolchain:       p.Toolchain,
			CC:              p.CC,
			AR:              p.AR,
			LD:              p.LD,
			CompilerFlags:   p.CompilerFlags,
			SharedExtension: p.SharedExtension}
	}
	return NewPlatformDomain(DefaultPlatformDomain, c.DefaultPlatform, platforms...)
}

// SdkPathsTable builds the SDK table, expanding `${name}` with variables and then the environment.
func (c *Config) SdkPathsTable() (SdkPathsTable, error) {
	dict := c.variableDictionary()
	table := SdkPathsTable{}
	for _, p := range c.Platforms {
		if p.Sdk == nil {
			continue
		}
		var sdk SdkPaths
		var err error
		if sdk.Root, err = StrictInterpolate(p.Sdk.Root, dict); err != nil {
			return nil, errors.Wrapf(err, "invalid SDK root of \"%s\"", p.Flavor)
		}
		if sdk.IncludeRoots, err = interpolateAll(p.Sdk.IncludeRoots, dict); err != nil {
			return nil, errors.Wrapf(err, "invalid SDK include of \"%s\"", p.Flavor)
		}
		if sdk.LibRoots, err = interpolateAll(p.Sdk.LibRoots, dict); err != nil {
			return nil, errors.Wrapf(err, "invalid SDK lib of \"%s\"", p.Flavor)
		}
		table[p.Flavor] = sdk
	}
	return table, nil
}

func (c *Config) variableDictionary() map[string]string {
	dict := map[string]string{}
	for _, kv := range os.Environ() {
		if idx := strings.Index(kv, "="); 0 < idx {
			dict[kv[:idx]] = kv[idx+1:]
		}
	}
	for k, v := range c.Variables {
		dict[k] = v
	}
	return dict
}

func interpolateAll(ss []string, dict map[string]string) ([]string, error) {
	result := make([]string, 0, len(ss))
	for _, s := range ss {
		v, err := StrictInterpolate(s, dict)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}
