package parser

// EstimatePointCount sizes the point store before decoding. The estimate
// subtracts the fixed per-record overhead of the shape type from the file
// length and divides by the per-point width. Files without Null records are
// never undershot; when one is, the store grows past the reservation.
//
// recordCount < 0 means the count is unknown (no index); the whole body is
// then treated as 16-byte points.
func EstimatePointCount(t ShapeType, fileLength, recordCount int) int {
	if recordCount < 0 {
		return clampEstimate((fileLength - HeaderLength) / 16)
	}

	n := recordCount
	overhead := HeaderLength + n*12 // record header + shape type

	var estimate int
	switch t {
	case ShapePoint, ShapePointM:
		estimate = (fileLength - overhead) / 16
	case ShapeMultiPoint, ShapeMultiPointM:
		estimate = (fileLength - (overhead + n*36)) / 16 // bounds + count
	case ShapePolyline, ShapePolygon, ShapePolylineM, ShapePolygonM:
		estimate = (fileLength - (overhead + n*40)) / 16 // bounds + part and point counts
	case ShapePointZ:
		estimate = (fileLength - overhead) / 24
	case ShapeMultiPointZ:
		estimate = (fileLength - (overhead + n*52)) / 24 // adds the Z range
	case ShapePolylineZ, ShapePolygonZ:
		estimate = (fileLength - (overhead + n*56)) / 24
	default:
		estimate = 0
	}
	return clampEstimate(estimate)
}

func clampEstimate(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
