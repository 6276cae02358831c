package flavorbuild

import (
	"fmt"
	"io"
	"os"
	"regexp"
)

var (
	rxTruthy = regexp.MustCompile(`^\s*(?i:t(?:rue)?|y(?:es)?|on|1)(?:\s+.*)?$`)
	rxFalsy  = regexp.MustCompile(`^\s*(?i:f(?:alse)?|no?|off|0)(?:\s+.*)?$`)
)

// Reporter emits diagnostics. A nil *Reporter discards everything.
type Reporter struct {
	Program string
	Verbose bool
	Out     io.Writer
}

// NewReporter creates a reporter writing to `os.Stderr`.
func NewReporter(program string, verbose bool) *Reporter {
	return &Reporter{Program: program, Verbose: verbose, Out: os.Stderr}
}

func (r *Reporter) out() io.Writer {
	if r.Out == nil {
		return os.Stderr
	}
	return r.Out
}

// Verbosef writes only in verbose mode.
func (r *Reporter) Verbosef(format string, args ...interface{}) {
	if r == nil || !r.Verbose {
		return
	}
	fmt.Fprintln(r.out(), r.Program+": "+fmt.Sprintf(format, args...))
}

// Warnf writes a warning.
func (r *Reporter) Warnf(format string, args ...interface{}) {
	if r == nil {
		return
	}
	fmt.Fprintln(r.out(), r.Program+":warning: "+fmt.Sprintf(format, args...))
}

// ToBoolean converts passed string to boolean.
// Unknown strings are `false`.
func ToBoolean(s string) bool {
	if rxTruthy.MatchString(s) {
		return true
	}
	return false
}

// IsFalsy returns true for explicit negatives ("no", "off", "0" ...).
func IsFalsy(s string) bool {
	return rxFalsy.MatchString(s)
}
