package boundary

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// readGeoJSON decodes a FeatureCollection and keeps its Polygon and
// MultiPolygon features.
func readGeoJSON(path string) ([]feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "boundary: decode geojson %s", path)
	}

	var feats []feature
	var skipped int
	for _, f := range fc.Features {
		mp := toMultiPolygon(f.Geometry)
		if mp == nil {
			skipped++
			continue
		}
		attrs := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			attrs[k] = propertyString(v)
		}
		feats = append(feats, feature{geom: mp, attrs: attrs})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped non-polygon features",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return feats, nil
}

// toMultiPolygon flattens polygonal geometries to a 2D MultiPolygon.
// Returns nil for anything else.
func toMultiPolygon(g geom.T) *geom.MultiPolygon {
	var polys []*geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		polys = append(polys, t)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			polys = append(polys, t.Polygon(i))
		}
	default:
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for _, p := range polys {
		var flat []float64
		var ends []int
		for i := 0; i < p.NumLinearRings(); i++ {
			ring := flatRing(p.LinearRing(i).Coords())
			if len(ring) < 8 {
				if i == 0 {
					break // degenerate shell: drop the polygon with its holes
				}
				continue
			}
			flat = append(flat, ring...)
			ends = append(ends, len(flat))
		}
		if len(ends) == 0 {
			continue
		}
		if err := mp.Push(geom.NewPolygonFlat(geom.XY, flat, ends)); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon", zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

func propertyString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
