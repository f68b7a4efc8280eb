// Package debug has helpers producing human readable dumps.
package debug

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const defaultIndent = "  "

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	sb     strings.Builder
	indent string
}

// TreeWriterOption configures TreeWriter.
type TreeWriterOption func(*TreeWriter)

// WithIndent sets string used for every level of depth.
func WithIndent(indent string) TreeWriterOption {
	return func(tw *TreeWriter) { tw.indent = indent }
}

func NewTreeWriter(opts ...TreeWriterOption) *TreeWriter {
	tw := &TreeWriter{indent: defaultIndent}
	for _, opt := range opts {
		opt(tw)
	}
	return tw
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

// WriteTo implements io.WriterTo.
func (tw *TreeWriter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, tw.sb.String())
	return int64(n), err
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.sb.WriteString(tw.indent)
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
}

// List writes label followed by space separated values, "-" when there are
// none. Values with whitespace or quotes are quoted.
func (tw *TreeWriter) List(depth int, label string, values []string) {
	tw.pad(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteByte(':')
	if len(values) == 0 {
		tw.sb.WriteString(" -\n")
		return
	}
	for _, v := range values {
		tw.sb.WriteByte(' ')
		tw.sb.WriteString(encodeItem(v))
	}
	tw.sb.WriteByte('\n')
}

func encodeItem(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"") {
		return strconv.Quote(v)
	}
	return v
}
