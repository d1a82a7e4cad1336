package memcompiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ErrToolFailed is returned when the memory compiler cannot be found, fails
// to run, or does not produce a usable output.
var ErrToolFailed = errors.New("memory compiler failed")

// ToolName is the name of the memory compiler executable.
const ToolName = "cacti"

// A Runner runs the memory compiler on a configuration file. The
// configuration file is given relative to dir, and the tool is expected to
// write its result into the same directory, as configFile + ".out".
type Runner interface {
	Run(ctx context.Context, tool, dir, configFile string) error
}

// CommandRunner runs the tool as a child process.
type CommandRunner struct{}

// Run executes `<tool> -infile <configFile>` in dir.
func (CommandRunner) Run(
	ctx context.Context,
	tool, dir, configFile string,
) error {
	var output bytes.Buffer

	cmd := exec.CommandContext(ctx, tool, "-infile", configFile)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v: %s",
			ErrToolFailed, tool, err, lastLines(output.String(), 5))
	}

	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.Join(lines, "\n")
}

// The working directory belongs to the whole process.
var workingDirMu sync.Mutex

// withWorkingDir runs fn in dir and always switches back to the previous
// working directory afterward.
func withWorkingDir(dir string, fn func() error) (err error) {
	workingDirMu.Lock()
	defer workingDirMu.Unlock()

	prev, err := os.Getwd()
	if err != nil {
		return err
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrToolFailed, err)
	}

	defer func() {
		restoreErr := os.Chdir(prev)
		if err == nil && restoreErr != nil {
			err = restoreErr
		}
	}()

	return fn()
}

// FindTool locates the memory compiler. A configured path is used as is.
// Otherwise, the search directory is walked, skipping obj_dbg builds, and
// then the PATH is searched.
func FindTool(path, searchDir string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrToolFailed, err)
		}

		if info.IsDir() {
			path = filepath.Join(path, ToolName)
		}

		return filepath.Abs(path)
	}

	if searchDir != "" {
		found, err := searchTool(searchDir)
		if err != nil {
			return "", err
		}

		if found != "" {
			return filepath.Abs(found)
		}
	}

	found, err := exec.LookPath(ToolName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrToolFailed, err)
	}

	return filepath.Abs(found)
}

var errFound = errors.New("found")

func searchTool(root string) (string, error) {
	var found string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if d.Name() == "obj_dbg" {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Name() == ToolName {
			found = p
			return errFound
		}

		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("%w: search %s: %v", ErrToolFailed, root, err)
	}

	return found, nil
}
