package api

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// SourceExt is the extension of VM source files.
const SourceExt = ".vm"

// OutputExt is the extension of generated assembly files.
const OutputExt = ".asm"

// Discover returns the .vm files designated by path: the file itself, or
// every .vm file below a directory, sorted by path.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if filepath.Ext(path) != SourceExt {
			return nil, fmt.Errorf("%s is not a %s file", path, SourceExt)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type().IsRegular() && filepath.Ext(p) == SourceExt {
			files = append(files, filepath.Clean(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}

	files = lo.Uniq(files)
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", SourceExt, path)
	}

	return files, nil
}

// OutputPath returns where the assembly for path is written: X.vm becomes
// X.asm, and a directory D becomes D/<base of D>.asm.
func OutputPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		clean := filepath.Clean(path)
		base := filepath.Base(clean)
		if abs, err := filepath.Abs(clean); err == nil {
			base = filepath.Base(abs)
		}
		return filepath.Join(clean, base+OutputExt), nil
	}

	return strings.TrimSuffix(path, filepath.Ext(path)) + OutputExt, nil
}

// UnitName returns the translation unit name of a source file: its base name
// without extension.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
