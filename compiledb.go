package flavorbuild

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// CompileDbItem represents an entry for json compilation database (https://clang.llvm.org/docs/JSONCompilationDatabase.html)
type CompileDbItem struct {
	// The working directory
	Directory string `json:"directory"`
	// The source file
	File string `json:"file"`
	// The output
	Output string `json:"output"`
	// Compilation command
	Arguments []string `json:"arguments"`
}

// CreateCompileDbFile creates compilation-database file atomically.
func CreateCompileDbFile(outPath string, defs []CompileDbItem) error {
	tmp, err := NewTransientOutput(outPath)
	if err != nil {
		return err
	}
	defer tmp.Abort()

	if err = WriteCompileDb(tmp, defs); err != nil {
		return errors.Wrapf(err, "failed to write definitions to \"%s\"", outPath)
	}
	if err = tmp.Commit(); err != nil {
		return errors.Wrapf(err, "failed to rename \"%s\" to \"%s\"", tmp.TempOutput, tmp.Output)
	}
	return nil
}

// WriteCompileDb writes definitions to output.
func WriteCompileDb(output io.Writer, defs []CompileDbItem) error {
	if defs == nil {
		defs = []CompileDbItem{}
	}
	b, err := json.MarshalIndent(defs, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal definitions")
	}
	cnt, err := output.Write(b)
	if err != nil {
		return errors.Wrapf(err, "failed to write marshaled definitions")
	}
	if cnt != len(b) {
		return errors.Errorf("short write of marshaled definitions (%d/%d bytes)", cnt, len(b))
	}
	return nil
}
