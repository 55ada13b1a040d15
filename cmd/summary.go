package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"

	"bikeways/internal/report"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// printSummary renders a short per-neighborhood table. Nothing is printed
// unless w is a terminal; colors are only used there too.
func printSummary(w io.Writer, r *report.Report, laneCounts map[string]int, totalLanes int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	if runtime.GOOS == "windows" {
		enableVT()
	}
	writeSummary(w, r, laneCounts, totalLanes, true)
}

// writeSummary does the actual rendering; laneCounts includes lanes without
// a construction year, which the report itself leaves out.
func writeSummary(w io.Writer, r *report.Report, laneCounts map[string]int, totalLanes int, color bool) {
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + colorReset
	}

	fmt.Fprintln(w, strings.Repeat("-", 64))
	fmt.Fprintf(w, "%-32s %8s %8s %8s\n", "Neighborhood", "Lanes", "Dated", "AAA")
	for _, row := range r.Rows {
		lanes := laneCounts[row.Neighborhood]
		aaa := fmt.Sprintf("%8d", row.AAATotal)
		if row.AAATotal > 0 {
			aaa = paint(colorGreen, aaa)
		}
		fmt.Fprintf(w, "%-32s %8d %8d %s\n", row.Neighborhood, lanes, row.Total, aaa)
	}
	fmt.Fprintln(w, strings.Repeat("-", 64))

	matched := 0
	for _, n := range laneCounts {
		matched += n
	}
	unmatched := totalLanes - matched
	line := fmt.Sprintf("%d lanes, %d outside every neighborhood", totalLanes, unmatched)
	if unmatched > 0 {
		line = paint(colorRed, line)
	}
	fmt.Fprintln(w, line)
}
