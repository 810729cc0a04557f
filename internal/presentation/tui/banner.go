package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stater banner with the build version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct{ text, color string }{
		{"      _        _           ", "#818cf8"},
		{"  ___| |_ __ _| |_ ___ _ _ ", "#a78bfa"},
		{" (_-<  _/ _` |  _/ -_) '_|", "#c084fc"},
		{" /__/\\__\\__,_|\\__\\___|_|  ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String(" "+version).Faint())
	fmt.Fprintln(w)
}
