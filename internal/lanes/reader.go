// Package lanes reads the delimited bikeways dataset into bike-lane records.
package lanes

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"bikeways/internal/types"
)

// Options names the columns the reader pulls out of each record.
type Options struct {
	Delimiter  rune
	PointField string
	YearField  string
	AAAField   string
}

// Dataset is the parsed bikeways file. Columns keeps the header order.
type Dataset struct {
	Columns []string
	Lanes   []types.BikeLane
}

// ReadFile opens path and reads every bike lane in it.
func ReadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "lanes: open %s", path)
	}
	defer func() { _ = f.Close() }()

	ds, err := Read(f, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "lanes: read %s", path)
	}
	zap.L().Debug("lanes: loaded file", zap.String("path", path), zap.Int("lanes", len(ds.Lanes)))
	return ds, nil
}

// Read parses a delimited stream with a header row. A malformed coordinate
// field aborts the read with the offending line number. Values are kept
// verbatim; only the coordinate and year are trimmed when parsed.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("lanes: file is empty")
		}
		return nil, eris.Wrap(err, "lanes: read header")
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if err := requireColumns(header, opts.PointField, opts.YearField, opts.AAAField); err != nil {
		return nil, err
	}

	ds := &Dataset{Columns: header}
	for {
		cols, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "lanes: read record")
		}
		line, _ := cr.FieldPos(0)

		rec := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(cols) {
				rec[h] = cols[j]
			}
		}

		pt, err := ParsePoint(rec[opts.PointField])
		if err != nil {
			return nil, eris.Wrapf(err, "lanes: line %d", line)
		}

		ds.Lanes = append(ds.Lanes, types.BikeLane{
			Line:  line,
			Attrs: rec,
			Year:  NormalizeYear(rec[opts.YearField]),
			AAA:   rec[opts.AAAField],
			Point: pt,
		})
	}
	return ds, nil
}

// ParsePoint converts a "lat,lon" string into a point. The first token is
// latitude (Y) and the second longitude (X).
func ParsePoint(s string) (types.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return types.Point{}, eris.Errorf("lanes: malformed coordinate %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.Point{}, eris.Wrapf(err, "lanes: parse latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.Point{}, eris.Wrapf(err, "lanes: parse longitude %q", parts[1])
	}
	return types.Point{X: lon, Y: lat}, nil
}

// maxExactYear bounds the values rendered as integers; beyond it float64
// no longer holds every whole number.
const maxExactYear = 1e15

// NormalizeYear renders whole-number years without a fractional part so
// "2010" and "2010.0" land in the same column.
func NormalizeYear(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxExactYear {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func requireColumns(header []string, names ...string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, n := range names {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("lanes: missing columns %q (header: %q)", missing, header)
	}
	return nil
}
