package flavorbuild

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CompilerLauncherEnv names the environment variable selecting a compiler launcher.
const CompilerLauncherEnv = "FLAVORBUILD_COMPILER_LAUNCHER"

// FindCompilerLauncher probes compiler launcher if exists.
// The launcher named by FLAVORBUILD_COMPILER_LAUNCHER wins, "none" disables probing,
// otherwise ccache is used when found in PATH.
func FindCompilerLauncher() string {
	if v, ok := os.LookupEnv(CompilerLauncherEnv); ok {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "none") {
			return ""
		}
		return filepath.ToSlash(v)
	}
	if p, err := exec.LookPath("ccache"); err == nil {
		return filepath.ToSlash(filepath.Clean(p))
	}
	return ""
}
