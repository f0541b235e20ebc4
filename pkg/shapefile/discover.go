package shapefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Discover finds every geometry file (.shp, any case) in a directory tree.
// Paths are returned in lexical order.
//
// Example:
//
//	paths, err := shapefile.Discover(afero.NewOsFs(), "/data/census")
//	fmt.Printf("Found %d shapefiles\n", len(paths))
func Discover(fs afero.Fs, root string) ([]string, error) {
	var paths []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".shp") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk directory")
	}

	return paths, nil
}
