package main

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// decodeZip decodes a zipped shapefile without extracting it. Zip entries are
// one-shot streams, so every record is decoded before Read returns.
func decodeZip(name string) (*shapefile.ShapeFile, error) {
	archive, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	var (
		src     shapefile.Sources
		closers []io.Closer
	)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, f := range archive.File {
		ext := strings.ToLower(path.Ext(f.Name))
		if ext != ".shp" && ext != ".shx" && ext != ".dbf" && ext != ".prj" && ext != ".cpg" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		closers = append(closers, rc)

		switch ext {
		case ".shp":
			src.Shape = rc
		case ".shx":
			src.Index = rc
		case ".dbf":
			src.Attributes = rc
		case ".prj":
			if src.ProjectionParams, err = io.ReadAll(rc); err != nil {
				return nil, err
			}
		case ".cpg":
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, err
			}
			src.CodePage = strings.TrimSpace(string(data))
		}
	}
	if src.Shape == nil {
		return nil, fmt.Errorf("%s: no .shp entry", name)
	}

	return shapefile.Read(src, shapefile.DefaultParseOptions())
}

func main() {
	sf, err := decodeZip("counties.zip")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Loaded: %v\n", sf.Loaded())
	fmt.Printf("Records: %d\n", sf.Len())
	fmt.Printf("Points stored: %d\n", sf.Store().Len())
	if sf.Normalized() {
		fmt.Println("Longitudes were wrapped across the antimeridian")
	}
}
