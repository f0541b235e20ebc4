package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

func safeOpen(path string) (*shapefile.ShapeFile, error) {
	sf, err := shapefile.Open(path)
	if err != nil {
		// Missing files, including a missing .shp, are ErrSourceUnavailable
		var unavailable *shapefile.ErrSourceUnavailable
		if errors.As(err, &unavailable) {
			return nil, fmt.Errorf("shapefile not found: %s", unavailable.Source)
		}

		// Decoding failures name the stage and, for records, the record number
		var stage *shapefile.StageError
		if errors.As(err, &stage) {
			log.Printf("Failed to decode %s at %s (record %d): %v", path, stage.Stage, stage.RecordNumber, stage.Err)
		}
		return nil, err
	}

	// Records are decoded lazily, so errors can also surface here
	if _, err := sf.Records(); err != nil {
		var corrupt *shapefile.ErrCorruptRecord
		if errors.As(err, &corrupt) {
			log.Printf("Record %d is corrupt: %s", corrupt.RecordNumber, corrupt.Reason)
		}
		sf.Close()
		return nil, err
	}

	// Unmatched attribute rows are warnings, not errors
	for _, w := range sf.Warnings() {
		log.Printf("Warning: %v", w)
	}

	return sf, nil
}

func main() {
	sf, err := safeOpen("roads.shp")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	defer sf.Close()

	fmt.Printf("Successfully loaded %d records\n", sf.Len())

	// Out-of-range accessors never invalidate the file
	if _, err := sf.Record(sf.Len()); err != nil {
		var oor *shapefile.ErrIndexOutOfRange
		if errors.As(err, &oor) {
			fmt.Printf("Expected error: %v\n", oor)
		}
	}

	// Try to open a non-existent file
	_, err = safeOpen("NONEXISTENT.shp")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
