package ast

import (
	"errors"
	"regexp"
)

// fakeInvocation counts calls and returns err (or panics with panicValue).
type fakeInvocation struct {
	args       []string
	err        error
	panicValue any
	calls      int
	received   [][]any
}

func (f *fakeInvocation) MatchedArgs() []string { return f.args }

func (f *fakeInvocation) Invoke(args ...any) error {
	f.calls++
	f.received = append(f.received, args)
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	return f.err
}

// boundInvocation carries the arguments matched from one step's text.
type boundInvocation struct {
	*fakeInvocation
	args []string
}

func (b *boundInvocation) MatchedArgs() []string { return b.args }

type stepDef struct {
	pattern    *regexp.Regexp
	invocation *fakeInvocation
	pending    bool
}

// recordingVisitor resolves steps against a small table of patterns and
// records every callback it receives.
type recordingVisitor struct {
	defs        []*stepDef
	calls       []string
	stepNames   []string
	statuses    []Status
	paddings    []int
	failures    []*Failure
	rows        []OutlineRow
	elements    []FeatureElement
	resolutions int
	worlds      int
}

func (v *recordingVisitor) define(pattern string, inv *fakeInvocation) *fakeInvocation {
	if inv == nil {
		inv = &fakeInvocation{}
	}
	v.defs = append(v.defs, &stepDef{pattern: regexp.MustCompile(pattern), invocation: inv})
	return inv
}

func (v *recordingVisitor) pending(pattern string) {
	v.defs = append(v.defs, &stepDef{pattern: regexp.MustCompile(pattern), pending: true})
}

func (v *recordingVisitor) VisitComment(c Comment) { v.calls = append(v.calls, "comment:"+string(c)) }

func (v *recordingVisitor) VisitTags(t Tags) { v.calls = append(v.calls, "tags") }

func (v *recordingVisitor) VisitFeatureName(name string) {
	v.calls = append(v.calls, "feature:"+name)
}

func (v *recordingVisitor) VisitFeatureElement(e FeatureElement) {
	v.calls = append(v.calls, "element:"+e.Name())
	v.elements = append(v.elements, e)
	e.Accept(v)
}

func (v *recordingVisitor) VisitScenarioName(keyword, name, fileLine string, padding int) {
	v.calls = append(v.calls, "scenario:"+name)
}

func (v *recordingVisitor) VisitStepName(keyword Keyword, name string, status Status, inv StepInvocation, padding int) {
	v.calls = append(v.calls, "step:"+name)
	v.stepNames = append(v.stepNames, name)
	v.statuses = append(v.statuses, status)
	v.paddings = append(v.paddings, padding)
}

func (v *recordingVisitor) VisitMultilineArg(arg MultilineArg, status Status) {
	v.calls = append(v.calls, "arg:"+status.String())
}

func (v *recordingVisitor) VisitStepException(f *Failure) {
	v.calls = append(v.calls, "exception")
	v.failures = append(v.failures, f)
}

func (v *recordingVisitor) VisitExamples(name string, table *Table) {
	v.calls = append(v.calls, "examples:"+name)
}

func (v *recordingVisitor) VisitOutlineRow(row OutlineRow) {
	v.calls = append(v.calls, "row")
	v.rows = append(v.rows, row)
}

func (v *recordingVisitor) StepInvocation(name string, world World) Resolution {
	v.resolutions++
	for _, d := range v.defs {
		m := d.pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if d.pending {
			return Pending()
		}
		if d.invocation.args != nil {
			return Found(d.invocation)
		}
		return Found(&boundInvocation{fakeInvocation: d.invocation, args: m[1:]})
	}
	return Undefined()
}

func (v *recordingVisitor) NewWorld() World {
	v.worlds++
	return v.worlds
}

// listener records the step outcomes forwarded by a feature.
type listener struct {
	events []Status
}

func (l *listener) StepExecuted(_ FeatureElement, status Status) {
	l.events = append(l.events, status)
}

// observer additionally records the executed steps and the outline row
// being run when each finished.
type observer struct {
	listener
	steps []*Step
	rows  []int
}

func (o *observer) StepFinished(element FeatureElement, step *Step) {
	o.steps = append(o.steps, step)
	if outline, ok := element.(*ScenarioOutline); ok {
		o.rows = append(o.rows, outline.CurrentRow())
	}
}

var errBoom = errors.New("boom")
