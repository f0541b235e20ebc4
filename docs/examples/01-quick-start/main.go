package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

func main() {
	// Open the geometry file; .shx, .dbf, .prj and .cpg siblings are found automatically
	sf, err := shapefile.Open("roads.shp")
	if err != nil {
		log.Fatal(err)
	}
	defer sf.Close()

	// Header information is available before any record is decoded
	fmt.Printf("Shape type: %v\n", sf.ShapeType())
	fmt.Printf("Fields: %v\n", sf.Schema().Names())

	bounds := sf.BoundingRectangle()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.MinX, bounds.MinY,
		bounds.MaxX, bounds.MaxY)

	// Records are decoded on first use
	records, err := sf.Records()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Records: %d\n", len(records))
}
