// Package naming derives fragment, manifest and merged-output file names.
//
// All functions are pure: they never touch the filesystem.
//
//	movie.mkv -> movie_[1].splm, movie_[2].splm, ...   (fragments)
//	movie.mkv -> movie_[manifest].splm                  (manifest)
//	movie.mkv -> movie_[merged].mkv                     (merge output)
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// FragmentExt is the extension carried by every fragment and manifest file.
const FragmentExt = ".splm"

// MergedSuffix is inserted before the extension of a merge output.
const MergedSuffix = "_[merged]"

// ErrInvalidPath is returned for inputs that do not name a file.
var ErrInvalidPath = errors.New("input path does not name a file")

// FragmentPath returns the path of fragment index for input.
// The fragment lives in outputDir when set, else next to input.
func FragmentPath(input, outputDir string, index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("fragment index must be >= 1, got %d", index)
	}
	return sibling(input, outputDir, "_["+strconv.Itoa(index)+"]"+FragmentExt)
}

// ManifestPath returns the path of the manifest written beside the fragments.
func ManifestPath(input, outputDir string) (string, error) {
	return sibling(input, outputDir, "_[manifest]"+FragmentExt)
}

// FragmentName returns the base name of fragment index, without directory.
func FragmentName(input string, index int) (string, error) {
	p, err := FragmentPath(input, "", index)
	if err != nil {
		return "", err
	}
	return filepath.Base(p), nil
}

// ManifestName returns the base name of the manifest, without directory.
func ManifestName(input string) (string, error) {
	p, err := ManifestPath(input, "")
	if err != nil {
		return "", err
	}
	return filepath.Base(p), nil
}

// MergedPath returns the merge output path for input: the same directory
// and extension with MergedSuffix inserted before the extension.
func MergedPath(input string) (string, error) {
	dir, base, err := split(input)
	if err != nil {
		return "", err
	}
	stem, ext := stemExt(base)
	return filepath.Join(dir, stem+MergedSuffix+ext), nil
}

// sibling builds <dir>/<stem><suffix>, where dir is outputDir or input's
// own directory.
func sibling(input, outputDir, suffix string) (string, error) {
	dir, base, err := split(input)
	if err != nil {
		return "", err
	}
	if outputDir != "" {
		dir = outputDir
	}
	stem, _ := stemExt(base)
	return filepath.Join(dir, stem+suffix), nil
}

// split separates input into its directory and base name, rejecting paths
// that name a directory.
func split(input string) (dir, base string, err error) {
	if input == "" {
		return "", "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.HasSuffix(input, string(filepath.Separator)) || strings.HasSuffix(input, "/") {
		return "", "", fmt.Errorf("%w: %q ends in a separator", ErrInvalidPath, input)
	}
	base = filepath.Base(input)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, input)
	}
	return filepath.Dir(input), base, nil
}

// stemExt splits base at its last dot. A leading dot alone (".bashrc") is
// part of the stem, not an extension.
func stemExt(base string) (stem, ext string) {
	ext = filepath.Ext(base)
	if ext == base {
		return base, ""
	}
	return strings.TrimSuffix(base, ext), ext
}
