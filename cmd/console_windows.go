//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVT enables virtual terminal processing so the summary's ANSI color
// sequences are interpreted by the console.
func enableVT() {
	hOut := windows.Handle(os.Stdout.Fd())
	var outMode uint32
	if windows.GetConsoleMode(hOut, &outMode) == nil {
		_ = windows.SetConsoleMode(hOut, outMode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
	}
}
