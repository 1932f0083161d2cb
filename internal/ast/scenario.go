package ast

import "unicode/utf8"

// element holds what Scenario and ScenarioOutline have in common: the
// header, the steps and the back-reference to the feature.
type element struct {
	self    FeatureElement
	keyword string
	line    int
	endLine int
	comment Comment
	tags    Tags
	name    string
	steps   []*Step
	feature *Feature
}

func (e *element) AttachFeature(f *Feature) {
	if e.feature == nil {
		e.feature = f
	}
}

func (e *element) Feature() *Feature { return e.feature }
func (e *element) Line() int         { return e.line }
func (e *element) Name() string      { return e.name }
func (e *element) Keyword() string   { return e.keyword }
func (e *element) Tags() Tags        { return e.tags }
func (e *element) Steps() []*Step    { return append([]*Step(nil), e.steps...) }

// SetEndLine records the last source line belonging to the element.
func (e *element) SetEndLine(line int) { e.endLine = line }

// EndLine is the last line of the element's span. Without an explicit end
// it is the last step's line.
func (e *element) EndLine() int {
	end := e.line
	if e.endLine > end {
		end = e.endLine
	}
	for _, s := range e.steps {
		if s.Line() > end {
			end = s.Line()
		}
	}
	return end
}

func (e *element) AtAnyLine(lines LineFilter) bool {
	return lines.Intersects(e.line, e.EndLine())
}

func (e *element) textLength() int {
	return utf8.RuneCountInString(e.keyword) + utf8.RuneCountInString(e.name) + 2
}

func (e *element) maxLineLength() int {
	longest := e.textLength()
	for _, s := range e.steps {
		if n := s.TextLength(); n > longest {
			longest = n
		}
	}
	return longest
}

func (e *element) CommentPadding(textLength int) int {
	return e.maxLineLength() - textLength
}

func (e *element) FileLine(line int) string {
	if e.feature == nil {
		return ""
	}
	return e.feature.FileLine(line)
}

func (e *element) BacktraceLine(text string, line int) string {
	if e.feature == nil {
		return ""
	}
	return e.feature.BacktraceLine(text, line)
}

func (e *element) StepExecuted(step *Step) {
	if e.feature != nil {
		e.feature.stepFinished(e.self, step)
	}
}

func (e *element) acceptHeader(v Visitor) {
	v.VisitComment(e.comment)
	v.VisitTags(e.tags)
	v.VisitScenarioName(e.keyword, e.name, e.FileLine(e.line), e.CommentPadding(e.textLength()))
}

func (e *element) sexp(symbol string) Sexp {
	sexp := appendHeader(Sexp{Symbol(symbol), e.line, e.name}, e.comment, e.tags)
	for _, s := range e.steps {
		sexp = append(sexp, s.Sexp())
	}
	return sexp
}

// Scenario is a named sequence of steps run in order with fail-fast
// skipping.
type Scenario struct {
	element
}

func NewScenario(comment Comment, tags Tags, line int, name string, steps ...*Step) *Scenario {
	sc := &Scenario{element: element{
		keyword: "Scenario",
		line:    line,
		comment: comment,
		tags:    tags,
		name:    name,
		steps:   append([]*Step(nil), steps...),
	}}
	sc.self = sc
	for _, s := range sc.steps {
		s.Attach(sc)
	}
	return sc
}

// Accept reports the header and runs every step. The first step sees
// StatusPassed as its predecessor; each later step sees the final status
// of the one before it.
func (sc *Scenario) Accept(v Visitor) {
	sc.acceptHeader(v)
	world := newWorld(v)
	previous := StatusPassed
	for _, step := range sc.steps {
		step.SetWorld(world)
		step.SetPrevious(previous)
		step.Accept(v)
		previous = step.Status()
	}
}

// Status is the most severe status among the scenario's steps.
func (sc *Scenario) Status() Status {
	status := StatusUnstarted
	for _, s := range sc.steps {
		status = Worst(status, s.Status())
	}
	return status
}

func (sc *Scenario) Sexp() Sexp {
	return sc.sexp("scenario")
}
