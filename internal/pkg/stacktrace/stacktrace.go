// Package stacktrace trims goroutine stack dumps down to frames from this module.
package stacktrace

import "strings"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a raw stack trace produced by runtime/debug.Stack.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)

		_, rest, ok := strings.Cut(line, "/internal/")
		if !ok {
			continue
		}

		file, tail, ok := strings.Cut(rest, ".go:")
		if !ok {
			continue
		}

		lineNo, _, _ := strings.Cut(tail, " ")
		paths = append(paths, "internal/"+file+".go:"+lineNo)
	}
	return paths
}
