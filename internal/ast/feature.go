package ast

import (
	"fmt"
	"sort"
)

// LineFilter selects feature elements by source line.
type LineFilter map[int]struct{}

func NewLineFilter(lines ...int) LineFilter {
	f := make(LineFilter, len(lines))
	for _, l := range lines {
		f[l] = struct{}{}
	}
	return f
}

func (f LineFilter) Contains(line int) bool {
	_, ok := f[line]
	return ok
}

// Intersects reports whether any filtered line lies in [from, to].
func (f LineFilter) Intersects(from, to int) bool {
	for l := range f {
		if l >= from && l <= to {
			return true
		}
	}
	return false
}

func (f LineFilter) Lines() []int {
	lines := make([]int, 0, len(f))
	for l := range f {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}

// FeatureElement is a scenario-like child of a feature.
type FeatureElement interface {
	// AttachFeature sets the owning feature. Only the first call has an
	// effect.
	AttachFeature(f *Feature)
	Feature() *Feature
	Line() int
	Name() string
	AtAnyLine(lines LineFilter) bool
	Accept(v Visitor)
	Sexp() Sexp
}

// Feature is the root of a parsed feature file.
type Feature struct {
	file     string
	comment  Comment
	tags     Tags
	name     string
	elements []FeatureElement

	lines    LineFilter
	listener StepListener
}

func NewFeature(comment Comment, tags Tags, name string, elements ...FeatureElement) *Feature {
	f := &Feature{
		comment:  comment,
		tags:     tags,
		name:     name,
		elements: append([]FeatureElement(nil), elements...),
	}
	for _, e := range f.elements {
		e.AttachFeature(f)
	}
	return f
}

func (f *Feature) File() string     { return f.file }
func (f *Feature) Name() string     { return f.name }
func (f *Feature) Comment() Comment { return f.comment }
func (f *Feature) Tags() Tags       { return f.tags }

func (f *Feature) SetFile(file string) { f.file = file }

func (f *Feature) Elements() []FeatureElement {
	return append([]FeatureElement(nil), f.elements...)
}

// SetLines restricts Accept to elements spanning one of lines. An empty
// filter clears the restriction.
func (f *Feature) SetLines(lines LineFilter) {
	if len(lines) == 0 {
		f.lines = nil
		return
	}
	f.lines = lines
}

func (f *Feature) Lines() LineFilter { return f.lines }

// SetListener attaches the aggregator that receives every step outcome.
func (f *Feature) SetListener(l StepListener) { f.listener = l }

func (f *Feature) Accept(v Visitor) {
	v.VisitComment(f.comment)
	v.VisitTags(f.tags)
	v.VisitFeatureName(f.name)
	for _, e := range f.elements {
		if f.lines == nil || e.AtAnyLine(f.lines) {
			v.VisitFeatureElement(e)
		}
	}
}

// StepExecuted forwards a step outcome to the listener, if any.
func (f *Feature) StepExecuted(element FeatureElement, status Status) {
	if f.listener != nil {
		f.listener.StepExecuted(element, status)
	}
}

func (f *Feature) stepFinished(element FeatureElement, step *Step) {
	if f.listener == nil {
		return
	}
	f.listener.StepExecuted(element, step.Status())
	if o, ok := f.listener.(StepObserver); ok {
		o.StepFinished(element, step)
	}
}

func (f *Feature) Sexp() Sexp {
	sexp := appendHeader(Sexp{Symbol("feature"), f.name}, f.comment, f.tags)
	for _, e := range f.elements {
		sexp = append(sexp, e.Sexp())
	}
	return sexp
}

func (f *Feature) FileLine(line int) string {
	return fmt.Sprintf("%s:%d", f.file, line)
}

func (f *Feature) BacktraceLine(name string, line int) string {
	return fmt.Sprintf("%s:in `%s'", f.FileLine(line), name)
}
