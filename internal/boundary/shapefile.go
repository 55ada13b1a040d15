package boundary

import (
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// readShapefile reads the shapefile at the given path and its attribute
// table. Clockwise parts are shells; counter-clockwise parts are holes of the
// shell that contains them.
func readShapefile(path string) ([]feature, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = r.Close() }()

	fields := r.Fields()

	var feats []feature
	var skipped int
	for r.Next() {
		idx, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		var rings [][]float64
		numParts := len(poly.Parts)
		for partIdx := 0; partIdx < numParts; partIdx++ {
			start := poly.Parts[partIdx]
			end := int32(len(poly.Points))
			if partIdx+1 < numParts {
				end = poly.Parts[partIdx+1]
			}
			coords := make([]geom.Coord, 0, end-start)
			for i := start; i < end; i++ {
				coords = append(coords, geom.Coord{poly.Points[i].X, poly.Points[i].Y})
			}
			if ring := flatRing(coords); len(ring) >= 8 {
				rings = append(rings, ring)
			}
		}

		mp := geom.NewMultiPolygon(geom.XY)
		for _, p := range assemblePolygons(rings) {
			if err := mp.Push(p); err != nil {
				zap.L().Debug("boundary: skipping malformed polygon", zap.Int("record", idx), zap.Error(err))
			}
		}
		if mp.NumPolygons() == 0 {
			skipped++
			continue
		}

		attrs := make(map[string]string, len(fields))
		for i, f := range fields {
			name := strings.TrimRight(f.String(), "\x00")
			val := strings.TrimRight(r.ReadAttribute(idx, i), "\x00")
			attrs[name] = strings.TrimSpace(val)
		}
		feats = append(feats, feature{geom: mp, attrs: attrs})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return feats, nil
}

// assemblePolygons groups closed rings into polygons. A counter-clockwise
// ring inside an earlier shell becomes a hole of the most recent such shell;
// anything else starts a new polygon.
func assemblePolygons(rings [][]float64) []*geom.Polygon {
	type shell struct {
		flat []float64
		ends []int
	}
	var shells []*shell
	for _, ring := range rings {
		var owner *shell
		if xy.IsRingCounterClockwise(geom.XY, ring) {
			first := geom.Coord{ring[0], ring[1]}
			for i := len(shells) - 1; i >= 0; i-- {
				outer := shells[i].flat[:shells[i].ends[0]]
				if xy.IsPointInRing(geom.XY, first, outer) {
					owner = shells[i]
					break
				}
			}
		}
		if owner == nil {
			owner = &shell{}
			shells = append(shells, owner)
		}
		owner.flat = append(owner.flat, ring...)
		owner.ends = append(owner.ends, len(owner.flat))
	}

	polys := make([]*geom.Polygon, 0, len(shells))
	for _, s := range shells {
		polys = append(polys, geom.NewPolygonFlat(geom.XY, s.flat, s.ends))
	}
	return polys
}
