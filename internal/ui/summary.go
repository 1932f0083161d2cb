package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chriserin/cuke/internal/ast"
)

var summaryOrder = []ast.Status{
	ast.StatusFailed,
	ast.StatusSkipped,
	ast.StatusUndefined,
	ast.StatusPending,
	ast.StatusPassed,
}

// CountLine prints a total such as "3 scenarios (1 failed, 2 passed)".
func CountLine(w io.Writer, noun string, counts map[ast.Status]int) {
	total := 0
	var parts []string
	for _, s := range summaryOrder {
		n := counts[s]
		if n == 0 {
			continue
		}
		total += n
		parts = append(parts, Colorize(s, fmt.Sprintf("%d %s", n, s)))
	}
	if total != 1 {
		noun += "s"
	}
	line := fmt.Sprintf("%d %s", total, noun)
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	fmt.Fprintln(w, line)
}

// Snippets prints suggested definitions for undefined steps.
func Snippets(w io.Writer, snippets []string) {
	if len(snippets) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, undefinedStyle.Render("You can implement step definitions for undefined steps with these snippets:"))
	for _, s := range snippets {
		fmt.Fprintln(w)
		fmt.Fprintln(w, undefinedStyle.Render(s))
	}
}

// Duration prints the elapsed time as minutes and seconds.
func Duration(w io.Writer, d time.Duration) {
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	fmt.Fprintf(w, "%dm%.3fs\n", minutes, seconds)
}
