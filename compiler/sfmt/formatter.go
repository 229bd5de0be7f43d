package sfmt

import (
	"fmt"
	"strings"
)

type formatter struct {
	strings.Builder
	indent int
	tab    int
}

func (f *formatter) write(format string, args ...any) {
	if len(args) == 0 {
		f.WriteString(format)
		return
	}
	fmt.Fprintf(&f.Builder, format, args...)
}

func (f *formatter) maybewrite(s string, ok bool) {
	if ok {
		f.WriteString(s)
	}
}

// open writes its arguments and indents the lines that follow.
func (f *formatter) open(format string, args ...any) {
	f.write(format, args...)
	f.indent += f.tab
}

func (f *formatter) close() {
	f.indent -= f.tab
}

// ret starts a new line at the current indentation.
func (f *formatter) ret() {
	f.WriteByte('\n')
	f.WriteString(strings.Repeat(" ", f.indent))
}
