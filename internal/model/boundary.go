package model

import (
	"github.com/twpayne/go-geom"
)

// Boundary is a selectable geography with its polygon geometry.
type Boundary struct {
	Level Level
	Name  string
	GEOID string

	// City is set for city boundaries only.
	City string

	// County and state attributes; empty for other levels.
	State    string
	County   string
	StateFP  string
	CountyFP string
	STUSPS   string

	Geometry *geom.MultiPolygon
	SRID     int
}

// Bounds returns the bounding box of the boundary geometry, or nil when the
// boundary has no geometry.
func (b *Boundary) Bounds() *geom.Bounds {
	if b == nil || b.Geometry == nil || b.Geometry.Empty() {
		return nil
	}
	return b.Geometry.Bounds()
}
