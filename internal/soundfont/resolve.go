// Package soundfont finds soundfont files by name and watches them for changes.
package soundfont

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Extensions tried, in order, for names given without one.
var Extensions = []string{".sf2", ".sf3"}

// Resolve returns the path of the soundfont called name. A name with an
// extension is looked up literally, otherwise each of Extensions is tried in
// turn. Absolute names are checked as is; relative ones against the working
// directory and then each search directory in order.
func Resolve(name string, searchPaths []string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty soundfont name", contracts.ErrResourceLoad)
	}

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = candidates[:0]
		for _, ext := range Extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		if filepath.IsAbs(c) {
			if isFile(c) {
				return c, nil
			}
			continue
		}
		for _, dir := range append([]string{"."}, searchPaths...) {
			p := filepath.Join(dir, c)
			if isFile(p) {
				if abs, err := filepath.Abs(p); err == nil {
					return abs, nil
				}
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%w: can't find soundfont %s", contracts.ErrResourceLoad, name)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
