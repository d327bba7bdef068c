// Package geo provides the planar geometry operations used by the extract
// normalizer and the report pipeline: CRS conversion, polygon repair,
// intersection predicates and map viewport fitting.
package geo

// EPSG codes understood by the package.
const (
	SRIDNAD83       = 4269
	SRIDWGS84       = 4326
	SRIDWebMercator = 3857
)
