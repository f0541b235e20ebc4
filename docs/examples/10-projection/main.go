package main

import (
	"bytes"
	"fmt"
	"log"
	"math"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
	"github.com/spf13/afero"
)

const earthRadius = 6378137.0

// webMercator converts EPSG:3857 meters to degrees
func webMercator(x, y float64) (lon, lat float64) {
	lon = x / earthRadius * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

// projector recognizes Web Mercator .prj files; anything else is left as stored
var projector = shapefile.ProjectorFunc(func(params []byte) (shapefile.Projection, bool) {
	if bytes.Contains(params, []byte("Mercator_Auxiliary_Sphere")) || bytes.Contains(params, []byte("Pseudo-Mercator")) {
		return shapefile.ProjectionFunc(webMercator), true
	}
	return nil, false
})

func main() {
	parser := shapefile.NewParser(afero.NewOsFs())

	opts := shapefile.DefaultParseOptions()
	opts.Projector = projector

	sf, err := parser.ParseWithOptions("tiles.shp", opts)
	if err != nil {
		log.Fatal(err)
	}
	defer sf.Close()

	// Bounds and coordinates are in degrees when the projection was recognized
	b := sf.BoundingRectangle()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n", b.MinX, b.MinY, b.MaxX, b.MaxY)

	records, err := sf.Records()
	if err != nil {
		log.Fatal(err)
	}
	for _, rec := range records[:min(3, len(records))] {
		if rb, ok := rec.Bounds(); ok {
			fmt.Printf("#%d: [%.4f,%.4f] to [%.4f,%.4f]\n", rec.Number(), rb.MinX, rb.MinY, rb.MaxX, rb.MaxY)
		}
	}
}
