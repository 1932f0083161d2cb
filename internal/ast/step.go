package ast

import (
	"sync"
	"unicode/utf8"
)

// SyntheticLine is the line of a step created from an outline row rather
// than read from a file.
const SyntheticLine = -1

// Result is what Execute reports: the final status and the arguments the
// step definition extracted from the step text.
type Result struct {
	Status      Status
	MatchedArgs []string
}

// Step is a single executable instruction. Its status is decided by the
// first call to Execute and never changes afterwards.
type Step struct {
	line    int
	keyword Keyword
	name    string
	args    []MultilineArg

	status      Status
	failure     *Failure
	invocation  StepInvocation
	matchedArgs []string

	container StepContainer
	world     World
	previous  Status

	locate        sync.Once
	backtraceLine string
	fileLine      string
}

func NewStep(line int, keyword Keyword, name string, args ...MultilineArg) *Step {
	return &Step{
		line:    line,
		keyword: keyword,
		name:    name,
		args:    append([]MultilineArg(nil), args...),
	}
}

func (s *Step) Line() int                  { return s.line }
func (s *Step) Keyword() Keyword           { return s.keyword }
func (s *Step) Name() string               { return s.name }
func (s *Step) Status() Status             { return s.status }
func (s *Step) Failure() *Failure          { return s.failure }
func (s *Step) Invocation() StepInvocation { return s.invocation }
func (s *Step) Container() StepContainer   { return s.container }

func (s *Step) MultilineArgs() []MultilineArg {
	return append([]MultilineArg(nil), s.args...)
}

// Attach sets the owning scenario. Only the first call has an effect.
func (s *Step) Attach(c StepContainer) {
	if s.container == nil {
		s.container = c
	}
}

// SetWorld sets the world passed to the next Execute.
func (s *Step) SetWorld(w World) { s.world = w }

// SetPrevious sets the status of the step before this one in its scenario.
// The step is only invoked when previous is StatusPassed.
func (s *Step) SetPrevious(previous Status) { s.previous = previous }

func (s *Step) AtLine(line int) bool { return s.line == line }

// Execute resolves and runs the step once. Later calls return the cached
// result without resolving, invoking or notifying the scenario again.
func (s *Step) Execute(v Visitor) Result {
	if s.status.Terminal() {
		return s.result()
	}
	s.run(v)
	if s.container != nil {
		s.container.StepExecuted(s)
	}
	return s.result()
}

func (s *Step) result() Result {
	return Result{Status: s.status, MatchedArgs: s.matchedArgs}
}

func (s *Step) run(v Visitor) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(recovered(r))
		}
	}()

	resolution := Undefined()
	if v != nil {
		resolution = v.StepInvocation(s.name, s.world)
	}
	switch {
	case resolution.IsPending():
		s.status = StatusPending
		return
	case !resolution.IsFound():
		s.status = StatusUndefined
		return
	}

	s.invocation = resolution.Invocation()
	s.matchedArgs = s.invocation.MatchedArgs()
	if s.previous != StatusPassed {
		s.status = StatusSkipped
		return
	}

	args := make([]any, 0, len(s.matchedArgs)+len(s.args))
	for _, a := range s.matchedArgs {
		args = append(args, a)
	}
	for _, a := range s.args {
		args = append(args, a)
	}
	if err := s.invocation.Invoke(args...); err != nil {
		s.fail(err)
		return
	}
	s.status = StatusPassed
}

func (s *Step) fail(err error) {
	s.status = StatusFailed
	s.failure = newFailure(err, s.BacktraceLine())
}

// Accept executes the step if needed and reports it to v.
func (s *Step) Accept(v Visitor) {
	s.Execute(v)
	v.VisitStepName(s.keyword, s.name, s.status, s.invocation, s.CommentPadding())
	for _, arg := range s.args {
		v.VisitMultilineArg(arg, s.status)
	}
	if s.failure != nil {
		v.VisitStepException(s.failure)
	}
}

// acceptTemplate reports an outline step without running it.
func (s *Step) acceptTemplate(v Visitor) {
	v.VisitStepName(s.keyword, s.name, StatusSkipped, nil, s.CommentPadding())
	for _, arg := range s.args {
		v.VisitMultilineArg(arg, StatusSkipped)
	}
}

// ExecuteWithArguments runs a copy of the step with the placeholders of
// row substituted into its name and multiline arguments. The copy has line
// SyntheticLine and belongs to the same scenario; the receiver is not
// modified.
func (s *Step) ExecuteWithArguments(row map[string]string, world World, previous Status, v Visitor) (*Step, Result) {
	sub := NewSubstitution(row)
	args := make([]MultilineArg, len(s.args))
	for i, arg := range s.args {
		args[i] = arg.WithSubstitution(sub)
	}

	step := NewStep(SyntheticLine, s.keyword, sub.Apply(s.name), args...)
	step.Attach(s.container)
	// Locators of synthetic steps depend on the row being run.
	step.computeLocators()
	step.SetWorld(world)
	step.SetPrevious(previous)
	return step, step.Execute(v)
}

func (s *Step) Sexp() Sexp {
	sexp := Sexp{Symbol("step"), s.line, string(s.keyword), s.name}
	for _, arg := range s.args {
		sexp = append(sexp, arg.Sexp())
	}
	return sexp
}

// TextLength is the rendered width of the step; steps are indented two
// columns deeper than their scenario.
func (s *Step) TextLength() int {
	return utf8.RuneCountInString(string(s.keyword)) + utf8.RuneCountInString(s.name) + 2
}

func (s *Step) CommentPadding() int {
	if s.container == nil {
		return 0
	}
	return s.container.CommentPadding(s.TextLength())
}

// BacktraceLine locates the step in its feature file for failure traces.
// It is empty while the step has no scenario.
func (s *Step) BacktraceLine() string {
	s.computeLocators()
	return s.backtraceLine
}

func (s *Step) FileLine() string {
	s.computeLocators()
	return s.fileLine
}

func (s *Step) computeLocators() {
	if s.container == nil {
		return
	}
	s.locate.Do(func() {
		s.backtraceLine = s.container.BacktraceLine(string(s.keyword)+" "+s.name, s.line)
		s.fileLine = s.container.FileLine(s.line)
	})
}
