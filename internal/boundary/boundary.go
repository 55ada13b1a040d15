// Package boundary loads neighborhood polygons from GeoJSON or shapefile
// boundary datasets.
package boundary

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"bikeways/internal/types"
)

// feature is a decoded boundary record before the name field is applied.
type feature struct {
	geom  *geom.MultiPolygon
	attrs map[string]string
}

// Load reads the boundary file at path and returns one Neighborhood per
// polygon feature, named by nameField. It fails when no feature carries
// nameField, listing the fields that do exist.
func Load(path, nameField string) ([]types.Neighborhood, error) {
	feats, err := readFeatures(path)
	if err != nil {
		return nil, err
	}

	if !hasField(feats, nameField) {
		return nil, eris.Errorf("boundary: field %q not found in %s (available: %s)",
			nameField, path, strings.Join(fieldNames(feats), ", "))
	}

	hoods := make([]types.Neighborhood, 0, len(feats))
	var unnamed int
	for _, f := range feats {
		name := strings.TrimSpace(f.attrs[nameField])
		if name == "" {
			unnamed++
		}
		b := f.geom.Bounds()
		hoods = append(hoods, types.Neighborhood{
			Index: len(hoods),
			Name:  name,
			Attrs: f.attrs,
			Geom:  f.geom,
			MinX:  b.Min(0),
			MinY:  b.Min(1),
			MaxX:  b.Max(0),
			MaxY:  b.Max(1),
		})
	}

	log := zap.L().With(zap.String("path", path))
	if unnamed > 0 {
		log.Warn("boundary: features with empty name field", zap.String("field", nameField), zap.Int("count", unnamed))
	}
	log.Debug("boundary: loaded neighborhoods", zap.Int("count", len(hoods)))
	return hoods, nil
}

// Fields returns the sorted attribute names present on any feature in path.
func Fields(path string) ([]string, error) {
	feats, err := readFeatures(path)
	if err != nil {
		return nil, err
	}
	return fieldNames(feats), nil
}

func readFeatures(path string) ([]feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return readGeoJSON(path)
	case ".shp":
		return readShapefile(path)
	default:
		return nil, eris.Errorf("boundary: unsupported file type %q", path)
	}
}

func hasField(feats []feature, name string) bool {
	for _, f := range feats {
		if _, ok := f.attrs[name]; ok {
			return true
		}
	}
	return false
}

func fieldNames(feats []feature) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range feats {
		for k := range f.attrs {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// flatRing copies a ring's coordinates into a flat XY slice, closing it if
// the source left it open.
func flatRing(coords []geom.Coord) []float64 {
	flat := make([]float64, 0, (len(coords)+1)*2)
	for _, c := range coords {
		flat = append(flat, c[0], c[1])
	}
	if n := len(coords); n > 0 && (coords[0][0] != coords[n-1][0] || coords[0][1] != coords[n-1][1]) {
		flat = append(flat, coords[0][0], coords[0][1])
	}
	return flat
}
