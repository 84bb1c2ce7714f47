// Package flagx lets several config loaders share os.Args: each loader keeps
// only the flags it owns and parses them with its own FlagSet.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the valued flags in
// allowed or to the boolean flags in boolFlags, preserving order.
//
// Accepted forms are "-x value", "-x=value" and, for boolean flags, a bare
// "-x". A valued flag swallows the following argument only when that argument
// does not itself look like a flag.
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	valued := toSet(allowed)
	bools := toSet(boolFlags)

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, known := valued[name]; known {
				out = append(out, arg)
			} else if _, known := bools[name]; known {
				out = append(out, arg)
			}
			continue
		}

		if _, known := bools[arg]; known {
			out = append(out, arg)
			continue
		}

		if _, known := valued[arg]; !known {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath extracts the JSON config path given with -c or -config. Parse
// errors are ignored; an absent flag yields "".
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
