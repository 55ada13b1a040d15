package types

import "github.com/twpayne/go-geom"

// Point is a WGS-84 position. X is longitude, Y is latitude.
type Point struct {
	X float64
	Y float64
}

// BikeLane holds one row of the bikeways dataset together with the parsed
// fields the report needs. Attrs keeps every source column keyed by header.
type BikeLane struct {
	Line  int
	Attrs map[string]string

	Year string
	AAA  string

	Point Point
}

// Neighborhood is a boundary polygon set plus its attribute table values.
type Neighborhood struct {
	Index int
	Name  string
	Attrs map[string]string

	Geom *geom.MultiPolygon

	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// JoinedLane is a bike lane after the spatial join. Neighborhood is empty
// when no boundary contains the lane.
type JoinedLane struct {
	BikeLane
	Neighborhood string
}

// Matched reports whether the lane fell inside a neighborhood.
func (j JoinedLane) Matched() bool {
	return j.Neighborhood != ""
}
