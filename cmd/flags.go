package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/maxvaer/soft404/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagGroup struct {
	title string
	flags []string
}

// chainPreRun combines two PreRunE functions.
func chainPreRun(first, second func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if first != nil {
			if err := first(cmd, args); err != nil {
				return err
			}
		}
		return second(cmd, args)
	}
}

// parseHeaders turns "Key: Value" flags into a map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
		}
		headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}

// applyConfigFile merges the config file into o. Flags set on the command
// line win over file values.
func applyConfigFile(cmd *cobra.Command, o *config.Options) (string, error) {
	path := config.FindFile(o.ConfigFile)
	if path == "" {
		return "", nil
	}
	f, err := config.LoadFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return "", fmt.Errorf("%w: %s", err, path)
		}
		return "", fmt.Errorf("loading config %s: %w", path, err)
	}
	f.Apply(o, cmd.Flags().Changed)
	return path, nil
}

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
	set    bool
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

// Set parses a comma-separated list. The first Set replaces any default;
// repeated flags append.
func (v *intSliceValue) Set(s string) error {
	if !v.set {
		*v.target = nil
		v.set = true
	}
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

// groupedHelp prints flags by category instead of cobra's flat list.
func groupedHelp(groups []flagGroup) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		w := cmd.ErrOrStderr()
		fmt.Fprint(w, helpBanner(cmd.Root().Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		if cmd.Example != "" {
			fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		}
		if subs := cmd.Commands(); len(subs) > 0 {
			fmt.Fprintf(w, "\nCommands:\n")
			for _, sub := range subs {
				if sub.IsAvailableCommand() {
					fmt.Fprintf(w, "   %-12s%s\n", sub.Name(), sub.Short)
				}
			}
		}
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range groups {
			var lines []string
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					lines = append(lines, formatFlag(f))
				}
			}
			if len(lines) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s:\n%s\n", g.title, strings.Join(lines, "\n"))
		}
		fmt.Fprintln(w)
	}
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
              __ _   _  _    ___  _  _
   ___  ___  / _| |_| || |  / _ \| || |
  (_-< / _ \|  _|  _|__   _| (_) |__   _|
  /__/ \___/|_|  \__|  |_|  \___/   |_|   %s

`, ver)
}
