package memcompiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultHistoryLimit is the number of configuration files that are kept.
const DefaultHistoryLimit = 50

// history keeps copies of the configuration files sent to the tool.
type history struct {
	dir   string
	limit int
	now   func() time.Time
}

// archive copies a configuration file into the history directory and prunes
// the oldest copies.
func (h *history) archive(src string) (string, error) {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(h.dir, fmt.Sprintf("%s_%s",
		filepath.Base(src), h.now().Format("01_02_15_04_05.000000000")))

	if err := copyFile(src, dst); err != nil {
		return "", err
	}

	return dst, h.prune()
}

func (h *history) prune() error {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return err
	}

	type archived struct {
		name    string
		modTime time.Time
	}

	files := make([]archived, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		files = append(files, archived{name: e.Name(), modTime: info.ModTime()})
	}

	if len(files) <= h.limit {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].name < files[j].name
		}

		return files[i].modTime.Before(files[j].modTime)
	})

	for _, f := range files[:len(files)-h.limit] {
		err := os.Remove(filepath.Join(h.dir, f.name))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
