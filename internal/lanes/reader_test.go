package lanes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultOpts = Options{
	Delimiter:  ';',
	PointField: "geo_point_2d",
	YearField:  "Year of Construction",
	AAAField:   "AAA Segment",
}

const sample = `Street Name;Year of Construction;AAA Segment;geo_point_2d
Hornby St;2010;YES;49.2805, -123.1245
Main St;2011.0;NO;49.2633,-123.1006
Union St;;YES;49.2776,-123.0946
`

func TestRead(t *testing.T) {
	ds, err := Read(strings.NewReader(sample), defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Street Name", "Year of Construction", "AAA Segment", "geo_point_2d"}, ds.Columns)
	lanes := ds.Lanes
	require.Len(t, lanes, 3)

	assert.Equal(t, 2, lanes[0].Line)
	assert.Equal(t, "Hornby St", lanes[0].Attrs["Street Name"])
	assert.Equal(t, "2010", lanes[0].Year)
	assert.Equal(t, "YES", lanes[0].AAA)
	assert.InDelta(t, -123.1245, lanes[0].Point.X, 1e-9)
	assert.InDelta(t, 49.2805, lanes[0].Point.Y, 1e-9)

	assert.Equal(t, "2011", lanes[1].Year)
	assert.Equal(t, "NO", lanes[1].AAA)

	assert.Empty(t, lanes[2].Year)
	assert.Equal(t, 4, lanes[2].Line)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bikeways.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	ds, err := ReadFile(path, defaultOpts)
	require.NoError(t, err)
	assert.Len(t, ds.Lanes, 3)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), defaultOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lanes: open")
}

func TestRead_MalformedPoint(t *testing.T) {
	in := "Year of Construction;AAA Segment;geo_point_2d\n2010;YES;49.28\n"
	_, err := Read(strings.NewReader(in), defaultOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "malformed coordinate")
}

func TestRead_MissingColumns(t *testing.T) {
	in := "Year;geo_point_2d\n2010;49.28,-123.1\n"
	_, err := Read(strings.NewReader(in), defaultOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "AAA Segment")
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""), defaultOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestRead_BOMHeader(t *testing.T) {
	in := "\ufeffgeo_point_2d;Year of Construction;AAA Segment\n49.1,-123.2;2015;YES\n"
	ds, err := Read(strings.NewReader(in), defaultOpts)
	require.NoError(t, err)
	require.Len(t, ds.Lanes, 1)
	assert.Equal(t, "2015", ds.Lanes[0].Year)
	assert.Equal(t, "geo_point_2d", ds.Columns[0])
}

func TestRead_KeepsValuesVerbatim(t *testing.T) {
	in := "Street Name;Year of Construction;AAA Segment;geo_point_2d\n" +
		" Hornby St ; 2010 ;YES ; 49.2805, -123.1245 \n" +
		"Main St;2011; YES;49.2633,-123.1006\n"
	ds, err := Read(strings.NewReader(in), defaultOpts)
	require.NoError(t, err)
	require.Len(t, ds.Lanes, 2)

	assert.Equal(t, "YES ", ds.Lanes[0].AAA)
	assert.Equal(t, " YES", ds.Lanes[1].AAA)
	assert.Equal(t, " Hornby St ", ds.Lanes[0].Attrs["Street Name"])
	assert.Equal(t, " 2010 ", ds.Lanes[0].Attrs["Year of Construction"])

	// Parsed fields are still trimmed.
	assert.Equal(t, "2010", ds.Lanes[0].Year)
	assert.InDelta(t, 49.2805, ds.Lanes[0].Point.Y, 1e-9)
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		x, y    float64
		wantErr bool
	}{
		{in: "49.2805,-123.1245", x: -123.1245, y: 49.2805},
		{in: " 49.2805 , -123.1245 ", x: -123.1245, y: 49.2805},
		{in: "0,0", x: 0, y: 0},
		{in: "", wantErr: true},
		{in: "49.2805", wantErr: true},
		{in: "1,2,3", wantErr: true},
		{in: "north,-123.1", wantErr: true},
		{in: "49.2,west", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pt, err := ParsePoint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.x, pt.X, 1e-9)
			assert.InDelta(t, tt.y, pt.Y, 1e-9)
		})
	}
}

func TestNormalizeYear(t *testing.T) {
	assert.Equal(t, "2010", NormalizeYear("2010"))
	assert.Equal(t, "2010", NormalizeYear(" 2010.0 "))
	assert.Equal(t, "", NormalizeYear("  "))
	assert.Equal(t, "unknown", NormalizeYear("unknown"))
	assert.Equal(t, "2010.5", NormalizeYear("2010.5"))
	assert.Equal(t, "NaN", NormalizeYear("NaN"))
	assert.Equal(t, "1e20", NormalizeYear("1e20"))
	assert.Equal(t, "-1e20", NormalizeYear("-1e20"))
	assert.Equal(t, "1000000000000000", NormalizeYear("1e15"))
}
