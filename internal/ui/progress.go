package ui

import (
	"fmt"

	"github.com/chriserin/cuke/internal/ast"
)

var glyphs = map[ast.Status]string{
	ast.StatusPassed:    ".",
	ast.StatusFailed:    "F",
	ast.StatusSkipped:   "-",
	ast.StatusUndefined: "U",
	ast.StatusPending:   "P",
}

// Progress prints one character per step and the failures at the end.
type Progress struct {
	base
	failures []*ast.Failure
}

func (p *Progress) VisitFeatureElement(element ast.FeatureElement) {
	element.Accept(p)
}

func (p *Progress) VisitStepName(keyword ast.Keyword, name string, status ast.Status, invocation ast.StepInvocation, padding int) {
	// Outline steps are reported unresolved; their rows are printed instead.
	if invocation == nil && status == ast.StatusSkipped {
		return
	}
	fmt.Fprint(p.w, Colorize(status, glyphs[status]))
}

func (p *Progress) VisitStepException(failure *ast.Failure) {
	p.failures = append(p.failures, failure)
}

func (p *Progress) VisitOutlineRow(row ast.OutlineRow) {
	fmt.Fprint(p.w, Colorize(row.Status, glyphs[row.Status]))
	p.failures = append(p.failures, row.Failures...)
}

func (p *Progress) Finish() {
	fmt.Fprintln(p.w)
	for i, f := range p.failures {
		fmt.Fprintf(p.w, "\n%d) %s\n", i+1, failedStyle.Render(f.Error()))
		for _, line := range f.Trace {
			fmt.Fprintln(p.w, "   "+failedStyle.Render(line))
		}
	}
}
