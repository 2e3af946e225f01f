package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// writeDebugUnformatted writes code that failed to format to a sidecar file
// next to the intended output. It never replaces the real output.
func writeDebugUnformatted(dir, filename string, content []byte) error {
	if dir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	// Keep a .go extension for editors. The leading underscore keeps the go
	// tool from compiling it into the package.
	name := "_" + strings.TrimSuffix(filename, ".go") + ".unformatted.go"

	return os.WriteFile(filepath.Join(dir, name), content, filePerm)
}
