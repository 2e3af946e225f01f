package gen

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"typereflect/internal/analyze"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files next to their sources. Files whose
// content is unchanged are left alone so their modification times stay put.
// It returns the paths it wrote.
func WriteFiles(files []GeneratedFile) ([]string, error) {
	var written []string

	for _, file := range files {
		path := file.Path()

		if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, file.Content) {
			continue
		}

		if err := os.MkdirAll(file.Dir, dirPerm); err != nil {
			return written, fmt.Errorf("creating directory %s: %w", file.Dir, err)
		}

		if err := os.WriteFile(path, file.Content, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", file.Filename, err)
		}

		written = append(written, path)
	}

	return written, nil
}

// RemoveStale deletes generated files in dirs that keep does not contain.
// Only files ending in suffix that start with the generated header are
// touched. It returns the removed paths.
func RemoveStale(dirs []string, suffix string, keep []GeneratedFile) ([]string, error) {
	kept := make(map[string]bool, len(keep))
	for _, f := range keep {
		kept[filepath.Clean(f.Path())] = true
	}

	var removed []string

	for _, dir := range dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
		if err != nil {
			return removed, fmt.Errorf("listing %s: %w", dir, err)
		}

		for _, path := range matches {
			if kept[filepath.Clean(path)] || !isGenerated(path) {
				continue
			}

			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("removing stale %s: %w", path, err)
			}

			removed = append(removed, path)
		}
	}

	return removed, nil
}

// PackageDirs returns the directories of all scanned packages.
func PackageDirs(graph *analyze.TypeGraph) []string {
	var dirs []string

	for _, pkg := range graph.Packages {
		if pkg.Dir != "" {
			dirs = append(dirs, pkg.Dir)
		}
	}

	return dirs
}

func isGenerated(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(analyze.GeneratedHeader))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}

	return string(head) == analyze.GeneratedHeader
}
