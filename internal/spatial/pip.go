package spatial

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"

	"bikeways/internal/types"
)

// Contains reports whether pt lies strictly inside the neighborhood: in the
// interior of some polygon's shell and not inside or on any of its holes.
// Points on a boundary are not contained.
func Contains(n *types.Neighborhood, pt types.Point) bool {
	if pt.X < n.MinX || pt.X > n.MaxX || pt.Y < n.MinY || pt.Y > n.MaxY {
		return false // quick bbox reject
	}
	c := geom.Coord{pt.X, pt.Y}
	for i := 0; i < n.Geom.NumPolygons(); i++ {
		if polygonContains(n.Geom.Polygon(i), c) {
			return true
		}
	}
	return false
}

func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	shell := p.LinearRing(0)
	if xy.LocatePointInRing(shell.Layout(), c, shell.FlatCoords()) != location.Interior {
		return false
	}
	for j := 1; j < p.NumLinearRings(); j++ {
		hole := p.LinearRing(j)
		if xy.LocatePointInRing(hole.Layout(), c, hole.FlatCoords()) != location.Exterior {
			return false
		}
	}
	return true
}
