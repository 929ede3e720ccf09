// Package scanner lists the JPEG files of a single folder.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var jpegExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// IsJPEGName reports whether name has a .jpg or .jpeg extension, ignoring case
func IsJPEGName(name string) bool {
	return jpegExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListJPEGs returns the full paths of JPEG files directly inside folder,
// sorted by name. Subdirectories, hidden files and the entry named skipDir
// are ignored.
func ListJPEGs(folder, skipDir string) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", folder)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", folder, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == skipDir || strings.HasPrefix(name, ".") {
			continue
		}
		if !e.Type().IsRegular() && e.Type()&os.ModeSymlink == 0 {
			continue
		}
		if IsJPEGName(name) {
			paths = append(paths, filepath.Join(folder, name))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
