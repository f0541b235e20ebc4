package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

func main() {
	sf, err := shapefile.Open("harbor_buoys.shp")
	if err != nil {
		log.Fatal(err)
	}
	defer sf.Close()

	records, err := sf.Records()
	if err != nil {
		log.Fatal(err)
	}

	// Define viewport (Boston Harbor area)
	viewport := shapefile.Rectangle{
		MinX: -71.1, MaxX: -71.0,
		MinY: 42.3, MaxY: 42.4,
	}

	// Points are tested by position, everything else by bounding rectangle
	visible := shapefile.SelectBySector(records, viewport)
	fmt.Printf("Visible records: %d of %d\n", len(visible), len(records))

	if b, ok := shapefile.ComputeBounds(visible); ok {
		fmt.Printf("Visible extent: [%.4f,%.4f] to [%.4f,%.4f]\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	}

	for _, rec := range visible {
		x, y, _ := rec.Point()
		fmt.Printf("  #%d at %.5f, %.5f\n", rec.Number(), x, y)
	}
}
