package ui

import (
	"fmt"
	"strings"

	"github.com/chriserin/cuke/internal/ast"
)

// Pretty prints features the way they are written, with each step colored
// by its status and located by a trailing comment.
type Pretty struct {
	base
	indent string
	widths []int
}

func (p *Pretty) VisitComment(comment ast.Comment) {
	if comment == "" {
		return
	}
	for _, line := range strings.Split(string(comment), "\n") {
		fmt.Fprintln(p.w, p.indent+commentStyle.Render(line))
	}
}

func (p *Pretty) VisitTags(tags ast.Tags) {
	if len(tags) == 0 {
		return
	}
	fmt.Fprintln(p.w, p.indent+tagStyle.Render(strings.Join(tags, " ")))
}

func (p *Pretty) VisitFeatureName(name string) {
	fmt.Fprintln(p.w, headerStyle.Render("Feature: "+name))
	p.indent = "  "
}

func (p *Pretty) VisitFeatureElement(element ast.FeatureElement) {
	fmt.Fprintln(p.w)
	element.Accept(p)
}

func (p *Pretty) VisitScenarioName(keyword, name, fileLine string, padding int) {
	line := fmt.Sprintf("  %s: %s", keyword, name)
	fmt.Fprintln(p.w, line+locationComment(fileLine, padding+1))
}

func (p *Pretty) VisitStepName(keyword ast.Keyword, name string, status ast.Status, invocation ast.StepInvocation, padding int) {
	var location string
	if l, ok := invocation.(locator); ok {
		location = l.Location()
	}
	text := Colorize(status, fmt.Sprintf("%s %s", keyword, name))
	fmt.Fprintln(p.w, "    "+text+locationComment(location, padding))
}

func (p *Pretty) VisitMultilineArg(arg ast.MultilineArg, status ast.Status) {
	switch a := arg.(type) {
	case *ast.Table:
		p.widths = a.ColumnWidths()
		for _, row := range a.Raw() {
			p.row(row, "      ", status)
		}
	case *ast.DocString:
		fmt.Fprintln(p.w, `      """`+a.ContentType())
		for _, line := range strings.Split(a.Content(), "\n") {
			fmt.Fprintln(p.w, "      "+Colorize(status, line))
		}
		fmt.Fprintln(p.w, `      """`)
	}
}

func (p *Pretty) VisitStepException(failure *ast.Failure) {
	p.failure(failure, "      ")
}

func (p *Pretty) VisitExamples(name string, table *ast.Table) {
	fmt.Fprintln(p.w)
	header := "    Examples:"
	if name != "" {
		header += " " + name
	}
	fmt.Fprintln(p.w, header)
	p.widths = table.ColumnWidths()
	if raw := table.Raw(); len(raw) > 0 {
		p.row(raw[0], "      ", ast.StatusSkipped)
	}
}

func (p *Pretty) VisitOutlineRow(row ast.OutlineRow) {
	p.row(row.Values, "      ", row.Status)
	for _, f := range row.Failures {
		p.failure(f, "      ")
	}
}

func (p *Pretty) Finish() {}

func (p *Pretty) row(cells []string, indent string, status ast.Status) {
	var b strings.Builder
	b.WriteString("|")
	for i, cell := range cells {
		width := 0
		if i < len(p.widths) {
			width = p.widths[i]
		}
		b.WriteString(" " + Colorize(status, cell) + strings.Repeat(" ", max(width-len([]rune(cell)), 0)) + " |")
	}
	fmt.Fprintln(p.w, indent+b.String())
}

func (p *Pretty) failure(f *ast.Failure, indent string) {
	for _, line := range strings.Split(f.Error(), "\n") {
		fmt.Fprintln(p.w, indent+failedStyle.Render(line))
	}
	for _, line := range f.Trace {
		fmt.Fprintln(p.w, indent+failedStyle.Render(line))
	}
}

func locationComment(location string, padding int) string {
	if location == "" {
		return ""
	}
	return strings.Repeat(" ", max(padding, 0)) + " " + commentStyle.Render("# "+location)
}
