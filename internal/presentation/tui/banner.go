package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`  ____          _ _       _     _                         _ `, "#818cf8"},
	{` / ___|_      _(_) |_ ___| |__ | |__   ___   __ _ _ __ __| |`, "#a78bfa"},
	{` \___ \ \ /\ / / | __/ __| '_ \| '_ \ / _ \ / _' | '__/ _' |`, "#c084fc"},
	{`  ___) \ V  V /| | || (__| | | | |_) | (_) | (_| | | | (_| |`, "#e879f9"},
	{` |____/ \_/\_/ |_|\__\___|_| |_|_.__/ \___/ \__,_|_|  \__,_|`, "#f472b6"},
}

// PrintBanner writes the gradient banner and a version line to w.
// Colors degrade to plain text when w is not a color terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.EnvColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  intent router "+version).Faint())
	fmt.Fprintln(w)
}
