// Package flagx lets independent flag sets share one command line: each
// component filters os.Args down to the flags it owns before parsing.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps the flags listed in names, with their values, and drops
// everything else. Names are given without dashes; both -name and --name
// match. A value is taken either from "name=value" or from the following
// argument unless it starts with a dash. Flags listed in bools never take
// the following argument as a value.
func FilterArgs(args []string, names []string, bools ...string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = false
	}
	for _, n := range bools {
		owned[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, hasValue, ok := flagName(args[i])
		if !ok {
			continue
		}
		isBool, known := owned[name]
		if !known {
			continue
		}

		out = append(out, args[i])
		if hasValue || isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// flagName splits "-name", "--name" or "--name=value".
func flagName(arg string) (name string, hasValue bool, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false, false
	}
	s := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if s == "" {
		return "", false, false
	}
	name, _, hasValue = strings.Cut(s, "=")
	return name, hasValue, true
}

// ConfigPath returns the JSON config path given with -c or -config, or "".
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"c", "config"}))

	return path
}
