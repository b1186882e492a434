package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/maxvaer/soft404/internal/config"
	"github.com/maxvaer/soft404/pkg/version"
)

const rule = "  ──────────────────────────────────────"

func printBanner(w io.Writer, opts *config.Options, requests int) {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if opts.NoColor {
			c.DisableColor()
		}
		return c
	}
	cyan, dim, white, yellow := mk(color.FgCyan), mk(color.Faint), mk(color.FgHiWhite), mk(color.FgYellow)
	green, red := mk(color.FgGreen), mk(color.FgRed)

	cyan.Fprintln(w, `
              __ _   _  _    ___  _  _
   ___  ___  / _| |_| || |  / _ \| || |
  (_-< / _ \|  _|  _|__   _| (_) |__   _|
  /__/ \___/|_|  \__|  |_|  \___/   |_|`)
	fmt.Fprintf(w, "  %s %s\n\n", white.Sprint("Soft 404 detection"), dim.Sprintf("v%s", version.Version))

	soft := green.Sprint("ON")
	if !opts.Soft404 {
		soft = red.Sprint("OFF")
	}

	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", dim.Sprintf("%-13s", label+":"), value)
	}
	dim.Fprintln(w, rule)
	row("Target", white.Sprint(opts.URL))
	row("Threads", yellow.Sprint(opts.Threads))
	row("Requests", white.Sprint(requests))
	if len(opts.Extensions) > 0 {
		row("Extensions", white.Sprint(strings.Join(opts.Extensions, ", ")))
	}
	if len(opts.Methods) > 0 {
		row("Methods", white.Sprint(strings.Join(opts.Methods, ", ")))
	}
	row("Soft 404", soft)
	if opts.Soft404 {
		row("Ratio", yellow.Sprintf("%.2f", opts.Ratio))
	}
	dim.Fprintln(w, rule)
	fmt.Fprintln(w)
}
