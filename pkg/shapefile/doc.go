// Package shapefile decodes ESRI shapefiles: the geometry file (.shp), its
// optional position index (.shx) and optional dBase attribute table (.dbf).
//
// # Basic Usage
//
//	sf, err := shapefile.Open("roads.shp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sf.Close()
//
//	records, err := sf.Records()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d %s records covering %+v\n", len(records), sf.ShapeType(), sf.BoundingRectangle())
//
// Open finds the .shx, .dbf, .prj and .cpg siblings of the geometry file
// itself, matching extensions case-insensitively. Records are decoded on the
// first call to Records; the header, index and attribute schema are read
// immediately.
//
// # Streams
//
// Read decodes one-shot streams eagerly, for example data arriving over the
// network:
//
//	sf, err := shapefile.Read(shapefile.Sources{
//	    Shape:      shpBody,
//	    Attributes: dbfBody,
//	}, shapefile.DefaultParseOptions())
//
// ReadAt takes re-readable sources with known sizes and defers record
// decoding, exactly like Open.
//
// # Geometry
//
// Coordinates of every record live in one shared PointStore. A record's parts
// are PartView handles (offset and count) into that store, so iterating a
// part never copies:
//
//	for _, part := range rec.Parts() {
//	    for _, p := range part.Points() {
//	        draw(p.X, p.Y)
//	    }
//	}
//
// # Filtering
//
//	inView := shapefile.SelectBySector(records, viewport)
//	named := shapefile.SelectByAttribute(inView, "NAME", "main st", false)
//	bounds, ok := shapefile.ComputeBounds(named)
//
// # Many Files
//
// LoadFiles decodes a batch of files concurrently, FileCache keeps decoded
// files in memory under a count and memory budget, and Library indexes a
// directory tree by file bounds for sector queries.
package shapefile
