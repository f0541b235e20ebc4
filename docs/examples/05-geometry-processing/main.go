package main

import (
	"fmt"
	"log"
	"math"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// ringArea returns the signed area of a ring with the shoelace formula.
// Outer rings are clockwise in shapefiles, so their area is negative.
func ringArea(part shapefile.PartView) float64 {
	var (
		sum  float64
		prev shapefile.Point
	)
	for i, p := range part.Points() {
		if i > 0 {
			sum += prev.X*p.Y - p.X*prev.Y
		}
		prev = p
	}
	return sum / 2
}

// pathLength returns the length of an open path
func pathLength(part shapefile.PartView) float64 {
	var (
		length float64
		prev   shapefile.Point
	)
	for i, p := range part.Points() {
		if i > 0 {
			length += math.Hypot(p.X-prev.X, p.Y-prev.Y)
		}
		prev = p
	}
	return length
}

func main() {
	lakes, err := shapefile.Open("lakes.shp")
	if err != nil {
		log.Fatal(err)
	}
	defer lakes.Close()

	records, err := lakes.Records()
	if err != nil {
		log.Fatal(err)
	}

	for _, rec := range records {
		if !rec.IsRing() {
			continue
		}
		var area float64
		for _, ring := range rec.Parts() {
			// Holes are counter-clockwise and subtract from the outer ring
			area -= ringArea(ring)
		}
		fmt.Printf("Lake #%d: %d rings, area %.2f\n", rec.Number(), rec.NumberOfParts(), area)
	}

	rivers, err := shapefile.Open("rivers.shp")
	if err != nil {
		log.Fatal(err)
	}
	defer rivers.Close()

	riverRecords, err := rivers.Records()
	if err != nil {
		log.Fatal(err)
	}

	// A view indexes the parts of many records without copying coordinates
	view := shapefile.ViewFromRecords(riverRecords)
	var total float64
	for _, part := range view.Parts() {
		total += pathLength(part)
	}
	fmt.Printf("\nRivers: %d parts, %d points, total length %.2f\n", view.Len(), view.PointCount(), total)

	// Measured polylines carry one measure per point
	for _, rec := range riverRecords[:min(3, len(riverRecords))] {
		if m, ok := rec.MRange(); ok {
			fmt.Printf("River #%d measures %.1f to %.1f\n", rec.Number(), m[0], m[1])
		}
	}
}
