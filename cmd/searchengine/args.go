package main

import (
	"strings"
	"unicode"

	"github.com/spf13/pflag"
)

// normalizeArgs rewrites known flags into the one form pflag parses without
// ambiguity. Single-dash spellings become long flags, a separate value is
// joined with "=", and a bare flag with no default gets an explicit empty
// value so it still counts as set.
func normalizeArgs(args []string, flags *pflag.FlagSet) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if !isFlag(arg) {
			out = append(out, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		f := flags.Lookup(name)
		if f == nil {
			out = append(out, arg)
			continue
		}
		long := "--" + name
		switch {
		case hasValue:
			out = append(out, long+"="+value)
		case f.Value.Type() == "bool":
			out = append(out, long)
		case i+1 < len(args) && !isFlag(args[i+1]):
			out = append(out, long+"="+args[i+1])
			i++
		case f.NoOptDefVal == "":
			out = append(out, long+"=")
		default:
			out = append(out, long)
		}
	}
	return out
}

// isFlag reports whether arg names a flag rather than a value. Negative
// numbers are values.
func isFlag(arg string) bool {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if trimmed == arg || trimmed == "" {
		return false
	}
	return unicode.IsLetter([]rune(trimmed)[0])
}
