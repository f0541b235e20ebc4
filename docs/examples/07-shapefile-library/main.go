package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
	"github.com/spf13/afero"
)

func main() {
	ctx := context.Background()

	// Index every shapefile under data/; only headers are read
	lib, err := shapefile.NewLibrary(ctx, afero.NewOsFs(), "data", shapefile.DefaultLibraryOptions())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Library contains %d files (%d skipped)\n\n", lib.Len(), len(lib.Skipped()))

	for _, entry := range lib.Entries() {
		fmt.Printf("File: %s\n", entry.Path)
		fmt.Printf("  Type: %v\n", entry.ShapeType)
		fmt.Printf("  Records: %d\n", entry.Records)
		fmt.Printf("  Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
			entry.Bounds.MinX, entry.Bounds.MinY,
			entry.Bounds.MaxX, entry.Bounds.MaxY)
	}

	// Files covering a location, most detailed first
	lon, lat := -71.05, 42.35
	here := shapefile.Rectangle{MinX: lon, MinY: lat, MaxX: lon, MaxY: lat}
	matches := lib.Query(here)
	fmt.Printf("\nFiles containing location %.4f, %.4f: %d\n", lon, lat, len(matches))

	// Decoding happens on demand, through the library's cache
	viewport := shapefile.Rectangle{MinX: -71.1, MinY: 42.3, MaxX: -71.0, MaxY: 42.4}
	records, err := lib.RecordsInSector(viewport)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Records in viewport: %d\n", len(records))

	stats := lib.Stats()
	fmt.Printf("Cache: %d files, %d bytes, hit rate %.0f%%\n",
		stats.Cache.Files, stats.Cache.UsedMemory, stats.Cache.HitRate()*100)
}
