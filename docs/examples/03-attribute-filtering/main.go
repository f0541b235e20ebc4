package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
	"github.com/spf13/afero"
)

// Keep only highways while decoding, so other records are never stored
func parseHighwaysOnly(path string) (*shapefile.ShapeFile, error) {
	parser := shapefile.NewParser(afero.NewOsFs())

	opts := shapefile.DefaultParseOptions()
	opts.AcceptRecord = func(r *shapefile.Record) bool {
		class, _ := r.Attribute("CLASS")
		return class == "highway"
	}

	return parser.ParseWithOptions(path, opts)
}

func main() {
	fmt.Println("=== Filtering while decoding ===")
	highways, err := parseHighwaysOnly("roads.shp")
	if err != nil {
		log.Fatal(err)
	}
	defer highways.Close()
	fmt.Printf("Highways loaded: %d\n", highways.Len())

	fmt.Println("\n=== Filtering decoded records ===")
	sf, err := shapefile.Open("roads.shp")
	if err != nil {
		log.Fatal(err)
	}
	defer sf.Close()

	records, err := sf.Records()
	if err != nil {
		log.Fatal(err)
	}

	// Strings compare case-insensitively, numbers by value
	fmt.Printf("Highways: %d\n", len(shapefile.SelectByAttribute(records, "CLASS", "HIGHWAY", false)))
	fmt.Printf("Four lanes: %d\n", len(shapefile.SelectByAttribute(records, "LANES", 4, false)))

	// Records without the attribute can be kept too
	fmt.Printf("Four lanes or unknown: %d\n", len(shapefile.SelectByAttribute(records, "LANES", 4, true)))
}
