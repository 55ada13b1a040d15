// Package report aggregates joined bike lanes into per-neighborhood counts.
package report

import (
	"sort"
	"strconv"

	"bikeways/internal/types"
)

// Row is one neighborhood of the wide report.
type Row struct {
	Neighborhood string
	Counts       map[string]int
	Total        int
	AAATotal     int
}

// Report is the pivoted neighborhood x year table.
type Report struct {
	Years []string
	Rows  []Row
}

// GroupKey identifies a neighborhood/year bucket.
type GroupKey struct {
	Neighborhood string
	Year         string
}

// Cell is a single long-format count.
type Cell struct {
	Neighborhood string
	Year         string
	Count        int
}

// CountByNeighborhoodYear counts lanes per (neighborhood, year). Lanes
// without a neighborhood or a year are left out.
func CountByNeighborhoodYear(lanes []types.JoinedLane) map[GroupKey]int {
	counts := make(map[GroupKey]int)
	for _, l := range lanes {
		if l.Neighborhood == "" || l.Year == "" {
			continue
		}
		counts[GroupKey{Neighborhood: l.Neighborhood, Year: l.Year}]++
	}
	return counts
}

// CountByNeighborhood counts lanes per neighborhood.
func CountByNeighborhood(lanes []types.JoinedLane) map[string]int {
	counts := make(map[string]int)
	for _, l := range lanes {
		if l.Neighborhood == "" {
			continue
		}
		counts[l.Neighborhood]++
	}
	return counts
}

// CountAAA counts lanes per neighborhood whose AAA flag equals value exactly.
func CountAAA(lanes []types.JoinedLane, value string) map[string]int {
	counts := make(map[string]int)
	for _, l := range lanes {
		if l.Neighborhood == "" || l.AAA != value {
			continue
		}
		counts[l.Neighborhood]++
	}
	return counts
}

// Pivot reshapes grouped counts into a wide table. Every neighborhood gets a
// value for every year; missing combinations are zero.
func Pivot(counts map[GroupKey]int) *Report {
	hoodSet := make(map[string]bool)
	yearSet := make(map[string]bool)
	for k := range counts {
		hoodSet[k.Neighborhood] = true
		yearSet[k.Year] = true
	}

	r := &Report{Years: sortYears(keys(yearSet))}
	hoods := keys(hoodSet)
	sort.Strings(hoods)

	for _, h := range hoods {
		row := Row{Neighborhood: h, Counts: make(map[string]int, len(r.Years))}
		for _, y := range r.Years {
			c := counts[GroupKey{Neighborhood: h, Year: y}]
			row.Counts[y] = c
			row.Total += c
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

// MergeAAA fills AAATotal on every pivot row; neighborhoods missing from aaa
// get zero. Neighborhoods only present in aaa are not added.
func (r *Report) MergeAAA(aaa map[string]int) {
	for i := range r.Rows {
		r.Rows[i].AAATotal = aaa[r.Rows[i].Neighborhood]
	}
}

// Melt turns the wide table back into long-format cells, skipping zeros.
func (r *Report) Melt() []Cell {
	var cells []Cell
	for _, row := range r.Rows {
		for _, y := range r.Years {
			if c := row.Counts[y]; c > 0 {
				cells = append(cells, Cell{Neighborhood: row.Neighborhood, Year: y, Count: c})
			}
		}
	}
	return cells
}

// Build runs the full aggregation: group, pivot, total and AAA merge.
func Build(lanes []types.JoinedLane, aaaValue string) *Report {
	r := Pivot(CountByNeighborhoodYear(lanes))
	r.MergeAAA(CountAAA(lanes, aaaValue))
	return r
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// sortYears orders years numerically when every value is an integer and
// lexically otherwise.
func sortYears(years []string) []string {
	numeric := true
	vals := make(map[string]int64, len(years))
	for _, y := range years {
		v, err := strconv.ParseInt(y, 10, 64)
		if err != nil {
			numeric = false
			break
		}
		vals[y] = v
	}
	if numeric {
		sort.Slice(years, func(i, j int) bool { return vals[years[i]] < vals[years[j]] })
	} else {
		sort.Strings(years)
	}
	return years
}
