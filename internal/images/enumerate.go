package images

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Image is a candidate file under the image root
type Image struct {
	// Path is the file path as found on disk (root joined with the relative path)
	Path string
	// ID is the path relative to the root with forward slashes
	ID string
}

// ListOptions controls which files List returns
type ListOptions struct {
	Recursive bool
	// Exclude holds doublestar patterns matched against the image ID
	Exclude []string
}

// ID normalizes a path relative to root into an image identifier.
func ID(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// List returns the regular files under root in a stable order. Flat listings
// sort by file name, recursive listings by identifier. Extensions are not
// checked here.
func List(root string, opts ListOptions) ([]Image, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}

	var (
		found []Image
		err   error
	)
	if opts.Recursive {
		found, err = listRecursive(root)
	} else {
		found, err = listFlat(root)
	}
	if err != nil {
		return nil, err
	}

	if len(opts.Exclude) == 0 {
		return found, nil
	}

	kept := found[:0]
	for _, img := range found {
		if excluded(img.ID, opts.Exclude) {
			slog.Debug("Excluding image", "image", img.ID)
			continue
		}
		kept = append(kept, img)
	}
	return kept, nil
}

func listFlat(root string) ([]Image, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var found []Image
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if !isRegular(path) {
			continue
		}
		found = append(found, Image{Path: path, ID: filepath.ToSlash(entry.Name())})
	}

	sort.Slice(found, func(i, j int) bool {
		return filepath.Base(found[i].Path) < filepath.Base(found[j].Path)
	})
	return found, nil
}

func listRecursive(root string) ([]Image, error) {
	var found []Image
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("Unable to read path, skipping", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isRegular(path) {
			return nil
		}
		id, err := ID(root, path)
		if err != nil {
			return err
		}
		found = append(found, Image{Path: path, ID: id})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk image directory: %w", err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].ID < found[j].ID
	})
	return found, nil
}

// isRegular follows symlinks so a link to a file counts and a link to a
// directory does not.
func isRegular(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func excluded(id string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, id); ok {
			return true
		}
	}
	return false
}
