// Package cliutil provides the small IOStreams/templates helpers the
// front-end commands use, reimplemented locally in the style of
// tomasbasham/cli-runtime (the teacher's upstream dependency for this),
// since that module has no public release to depend on.
package cliutil

import (
	"io"
	"os"
	"strings"
)

// IOStreams bundles a command's input/output streams so tests can
// substitute buffers instead of the process's real stdio.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Default returns an IOStreams bound to the process's stdio.
func Default() IOStreams {
	return IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

// LongDesc trims leading indentation from a multi-line long description,
// so command definitions can use an indented raw string literal.
func LongDesc(s string) string {
	return normalize(s)
}

// Examples trims and normalizes a multi-line example block.
func Examples(s string) string {
	return normalize(s)
}

func normalize(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, "\t")
	}
	return strings.TrimLeft(strings.Join(lines, "\n"), "\n")
}
