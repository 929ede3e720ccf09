package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/anime-shed/blur-culler/internal/errors"
)

// PathValidator resolves user-supplied paths and confines them to a library
// root when one is configured.
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator. An empty root allows any path.
func NewPathValidator(root string) *PathValidator {
	return &PathValidator{root: root}
}

// Root returns the configured library root
func (v *PathValidator) Root() string {
	return v.root
}

// ResolveFolder returns the absolute, symlink-free path of an existing folder
func (v *PathValidator) ResolveFolder(p string) (string, error) {
	resolved, info, err := v.resolve(p)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", apperrors.NewValidationError("path is not a folder", nil).WithDetails(p)
	}
	return resolved, nil
}

// ResolveFile returns the absolute, symlink-free path of an existing file
func (v *PathValidator) ResolveFile(p string) (string, error) {
	resolved, info, err := v.resolve(p)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", apperrors.NewValidationError("path is not a regular file", nil).WithDetails(p)
	}
	return resolved, nil
}

func (v *PathValidator) resolve(p string) (string, os.FileInfo, error) {
	if strings.TrimSpace(p) == "" {
		return "", nil, apperrors.NewValidationError("path cannot be empty", nil)
	}

	if !filepath.IsAbs(p) && v.root != "" {
		p = filepath.Join(v.root, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", nil, apperrors.NewValidationError("invalid path", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, apperrors.NewNotFoundError("path does not exist", err).WithDetails(abs)
		}
		return "", nil, apperrors.NewValidationError("invalid path", err)
	}

	if v.root != "" {
		root, err := filepath.EvalSymlinks(v.root)
		if err != nil {
			return "", nil, apperrors.NewInternalError("library root unavailable", err)
		}
		if !within(root, resolved) {
			return "", nil, apperrors.NewValidationError("path is outside the library root", nil).WithDetails(abs)
		}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, apperrors.NewNotFoundError("path does not exist", err).WithDetails(abs)
	}
	return resolved, info, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
