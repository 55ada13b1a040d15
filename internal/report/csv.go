package report

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"bikeways/internal/types"
)

// Header returns the output columns: the neighborhood key, one column per
// year, then total and aaa_total.
func (r *Report) Header(keyColumn string) []string {
	h := make([]string, 0, len(r.Years)+3)
	h = append(h, keyColumn)
	h = append(h, r.Years...)
	return append(h, "total", "aaa_total")
}

// Write encodes the report as comma-delimited CSV without an index column.
func (r *Report) Write(w io.Writer, keyColumn string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header(keyColumn)); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, row := range r.Rows {
		rec := make([]string, 0, len(r.Years)+3)
		rec = append(rec, row.Neighborhood)
		for _, y := range r.Years {
			rec = append(rec, strconv.Itoa(row.Counts[y]))
		}
		rec = append(rec, strconv.Itoa(row.Total), strconv.Itoa(row.AAATotal))
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "report: write row %s", row.Neighborhood)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush")
}

// WriteFile writes the report CSV to path.
func (r *Report) WriteFile(path, keyColumn string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := r.Write(f, keyColumn); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}

// WriteJoined writes every joined lane with its source columns followed by a
// neighborhood column. Columns fixes the source column order; when it is
// empty the columns found on the lanes are used, ordered by name.
func WriteJoined(w io.Writer, columns []string, lanes []types.JoinedLane) error {
	cols := columns
	if len(cols) == 0 {
		cols = nil
		colSet := make(map[string]bool)
		for _, l := range lanes {
			for k := range l.Attrs {
				colSet[k] = true
			}
		}
		for k := range colSet {
			cols = append(cols, k)
		}
		sort.Strings(cols)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, cols...), "neighborhood")); err != nil {
		return eris.Wrap(err, "report: write joined header")
	}
	for _, l := range lanes {
		rec := make([]string, 0, len(cols)+1)
		for _, c := range cols {
			rec = append(rec, l.Attrs[c])
		}
		rec = append(rec, l.Neighborhood)
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "report: write joined line %d", l.Line)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush joined")
}
