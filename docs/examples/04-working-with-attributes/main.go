package main

import (
	"fmt"
	"log"
	"time"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

func main() {
	sf, err := shapefile.Open("parcels.shp")
	if err != nil {
		log.Fatal(err)
	}
	defer sf.Close()

	// Inspect the attribute table
	header, ok := sf.TableHeader()
	if !ok {
		log.Fatal("parcels.shp has no attribute table")
	}
	fmt.Printf("Rows: %d, last modified %s\n", header.RecordCount, header.LastModified.Format("2006-01-02"))

	for _, field := range sf.Schema() {
		fmt.Printf("  %-10s %v(%d,%d)\n", field.Name, field.Type, field.Length, field.Decimals)
	}

	records, err := sf.Records()
	if err != nil {
		log.Fatal(err)
	}

	// Values are typed: string, int64, float64, bool or time.Time
	for _, rec := range records[:min(5, len(records))] {
		owner, _ := rec.Attribute("OWNER")
		fmt.Printf("\nParcel #%d owner: %v\n", rec.Number(), owner)

		if acres, ok := rec.Attribute("ACRES"); ok {
			fmt.Printf("  Area: %.2f acres\n", acres.(float64))
		}
		if sold, ok := rec.Attribute("SOLD"); ok {
			fmt.Printf("  Sold: %s\n", sold.(time.Time).Format("Jan 2, 2006"))
		}
	}

	// Geometry records without a matching row are reported, not fatal
	for _, w := range sf.Warnings() {
		fmt.Printf("Warning: %v\n", w)
	}
}
