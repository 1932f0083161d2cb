package ast

import (
	"sort"
	"strings"
)

const (
	ArgumentStart = "<"
	ArgumentEnd   = ">"
)

// MultilineArg is a table or doc string attached to a step.
type MultilineArg interface {
	Sexp() Sexp
	// WithSubstitution returns a new argument with placeholders replaced.
	// The receiver is left untouched.
	WithSubstitution(sub Substitution) MultilineArg
}

// Substitution replaces delimited placeholders (<name>) with the values of
// one Examples row. The zero value replaces nothing.
type Substitution struct {
	replacer *strings.Replacer
}

// NewSubstitution wraps each key of row in the placeholder delimiters.
// Replacement is a single pass, so a value containing another placeholder
// is never substituted again.
func NewSubstitution(row map[string]string) Substitution {
	if len(row) == 0 {
		return Substitution{}
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, ArgumentStart+k+ArgumentEnd, row[k])
	}
	return Substitution{replacer: strings.NewReplacer(pairs...)}
}

func (s Substitution) Apply(text string) string {
	if s.replacer == nil {
		return text
	}
	return s.replacer.Replace(text)
}

// Table is a step data table. Rows are never modified after construction.
type Table struct {
	rows [][]string
}

func NewTable(rows [][]string) *Table {
	return &Table{rows: copyRows(rows)}
}

// Raw returns a copy of every row, header included.
func (t *Table) Raw() [][]string {
	return copyRows(t.rows)
}

func (t *Table) Headers() []string {
	if len(t.rows) == 0 {
		return nil
	}
	return append([]string(nil), t.rows[0]...)
}

// Hashes maps each body row by the header row.
func (t *Table) Hashes() []map[string]string {
	if len(t.rows) < 2 {
		return nil
	}
	header := t.rows[0]
	hashes := make([]map[string]string, 0, len(t.rows)-1)
	for _, row := range t.rows[1:] {
		h := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				h[key] = row[i]
			} else {
				h[key] = ""
			}
		}
		hashes = append(hashes, h)
	}
	return hashes
}

// ColumnWidths is the rune width of the widest cell in each column.
func (t *Table) ColumnWidths() []int {
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func (t *Table) Sexp() Sexp {
	s := Sexp{Symbol("table")}
	for _, row := range t.rows {
		r := Sexp{Symbol("row")}
		for _, cell := range row {
			r = append(r, Sexp{Symbol("cell"), cell})
		}
		s = append(s, r)
	}
	return s
}

func (t *Table) WithSubstitution(sub Substitution) MultilineArg {
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = sub.Apply(cell)
		}
	}
	return &Table{rows: rows}
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// DocString is a free-text block delimited by """ or ```.
type DocString struct {
	contentType string
	content     string
}

func NewDocString(contentType, content string) *DocString {
	return &DocString{contentType: contentType, content: content}
}

func (d *DocString) Content() string     { return d.content }
func (d *DocString) ContentType() string { return d.contentType }

func (d *DocString) Sexp() Sexp {
	return Sexp{Symbol("doc_string"), d.content}
}

func (d *DocString) WithSubstitution(sub Substitution) MultilineArg {
	return &DocString{contentType: d.contentType, content: sub.Apply(d.content)}
}
