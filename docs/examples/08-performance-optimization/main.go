package main

import (
	"context"
	"fmt"
	"log"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// Load many files concurrently, one file per worker
func loadAll(fs afero.Fs, root string) ([]*shapefile.ShapeFile, error) {
	paths, err := shapefile.Discover(fs, root)
	if err != nil {
		return nil, err
	}

	opts := shapefile.DefaultLoadOptions()
	opts.Logger = kitlog.NewLogfmtLogger(os.Stderr)
	opts.Progress = func(loaded, total int) {
		fmt.Printf("\rLoading: %d/%d", loaded, total)
	}

	files, errs := shapefile.LoadFiles(context.Background(), paths, shapefile.NewParser(fs), opts)
	fmt.Println()
	for _, err := range errs {
		log.Printf("skipped: %v", err)
	}
	return files, nil
}

// Reuse decoded files across requests with a bounded cache
func cachedLookups(fs afero.Fs, reg prometheus.Registerer) error {
	cache, err := shapefile.NewFileCache(shapefile.NewParser(fs), shapefile.CacheOptions{
		MaxFiles:  32,
		MaxMemory: 256 * 1024 * 1024,
		Metrics:   shapefile.NewMetrics(reg),
	})
	if err != nil {
		return err
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.Get("data/roads.shp"); err != nil {
			return err
		}
	}

	stats := cache.Stats()
	fmt.Printf("Hits: %d, misses: %d, memory: %d bytes\n", stats.Hits, stats.Misses, stats.UsedMemory)
	return nil
}

func main() {
	fs := afero.NewOsFs()

	fmt.Println("=== Parallel loading ===")
	files, err := loadAll(fs, "data")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Files loaded: %d\n", len(files))

	fmt.Println("\n=== Cached lookups ===")
	if err := cachedLookups(fs, prometheus.NewRegistry()); err != nil {
		log.Fatal(err)
	}
}
