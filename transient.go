/*
 * Manages transient output path.
 *
 * Performs:
 *  1. Output to temporal file to the directory of desired output file.
 *  2. Atomically rename it to the final output.
 *
 */

package flavorbuild

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/myesui/uuid.v1"
)

// TransientOutputPath is a temporal file committed to `Output` by renaming.
type TransientOutputPath struct {
	Output     string
	TempOutput string
	file       *os.File
	done       bool
}

// NewTransientOutput creates the temporal file next to `path`.
func NewTransientOutput(path string) (*TransientOutputPath, error) {
	result := new(TransientOutputPath)
	result.Output = filepath.Clean(path)
	d := filepath.Dir(result.Output)
	id := uuid.NewV4()
	result.TempOutput = filepath.Join(d, "fb-"+id.String()+".tmp")
	f, err := os.OpenFile(result.TempOutput, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create temporal output for \"%s\"", path)
	}
	result.file = f
	return result, nil
}

// Write writes to the temporal file.
func (t *TransientOutputPath) Write(b []byte) (int, error) {
	if t.done {
		return 0, errors.Errorf("\"%s\" is already closed", t.TempOutput)
	}
	return t.file.Write(b)
}

// Commit renames the temporal file to the output.
func (t *TransientOutputPath) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.file.Close(); err != nil {
		os.Remove(t.TempOutput)
		return errors.Wrapf(err, "closing \"%s\" failed", t.TempOutput)
	}
	if err := os.Rename(t.TempOutput, t.Output); err != nil {
		os.Remove(t.TempOutput)
		return errors.Wrapf(err, "renaming \"%s\" failed", t.TempOutput)
	}
	return nil
}

// Abort discards the transient output.
func (t *TransientOutputPath) Abort() error {
	if t.done {
		return nil
	}
	t.done = true
	t.file.Close()
	return os.Remove(t.TempOutput)
}

// Done returns true if operation is done (Committed or Aborted).
func (t *TransientOutputPath) Done() bool {
	return t.done
}
