package ast

// World is the per-scenario context handed to step code. Its contents
// belong to the step definitions.
type World any

// StepInvocation is a resolved step definition bound to one step's text.
type StepInvocation interface {
	// MatchedArgs are the positional arguments extracted from the step text.
	MatchedArgs() []string
	// Invoke runs the step code. Any returned error or panic fails the step.
	Invoke(args ...any) error
}

type resolutionKind int

const (
	resolutionUndefined resolutionKind = iota
	resolutionFound
	resolutionPending
)

// Resolution is the three-way outcome of looking up a step definition.
// The zero value is Undefined.
type Resolution struct {
	kind       resolutionKind
	invocation StepInvocation
}

func Found(inv StepInvocation) Resolution {
	if inv == nil {
		return Undefined()
	}
	return Resolution{kind: resolutionFound, invocation: inv}
}

func Undefined() Resolution { return Resolution{kind: resolutionUndefined} }

func Pending() Resolution { return Resolution{kind: resolutionPending} }

func (r Resolution) IsFound() bool     { return r.kind == resolutionFound }
func (r Resolution) IsUndefined() bool { return r.kind == resolutionUndefined }
func (r Resolution) IsPending() bool   { return r.kind == resolutionPending }

func (r Resolution) Invocation() StepInvocation { return r.invocation }

// OutlineRow is the outcome of running the steps of one Examples row.
type OutlineRow struct {
	Line     int
	Values   []string
	Status   Status
	Failures []*Failure
}

// Visitor is the reporting sink for a feature walk. It also resolves step
// text into invocations.
type Visitor interface {
	VisitComment(comment Comment)
	VisitTags(tags Tags)
	VisitFeatureName(name string)
	VisitFeatureElement(element FeatureElement)
	VisitScenarioName(keyword, name, fileLine string, padding int)
	VisitStepName(keyword Keyword, name string, status Status, invocation StepInvocation, padding int)
	VisitMultilineArg(arg MultilineArg, status Status)
	VisitStepException(failure *Failure)
	VisitExamples(name string, table *Table)
	VisitOutlineRow(row OutlineRow)
	StepInvocation(name string, world World) Resolution
}

// WorldFactory is implemented by visitors that create a fresh world for
// each scenario or outline row.
type WorldFactory interface {
	NewWorld() World
}

func newWorld(v Visitor) World {
	if f, ok := v.(WorldFactory); ok {
		return f.NewWorld()
	}
	return nil
}

// StepContainer is the owning scenario as seen by its steps.
type StepContainer interface {
	CommentPadding(textLength int) int
	BacktraceLine(text string, line int) string
	FileLine(line int) string
	StepExecuted(step *Step)
}

// StepListener receives every step outcome of a feature, typically a
// report aggregator spanning several features. Implementations must be safe
// for concurrent use if features run in parallel.
type StepListener interface {
	StepExecuted(element FeatureElement, status Status)
}

// StepObserver is implemented by listeners that also want the executed step
// itself. StepFinished is called right after StepExecuted.
type StepObserver interface {
	StepFinished(element FeatureElement, step *Step)
}

// NopVisitor ignores every callback and resolves nothing. Embed it to
// implement only the callbacks of interest.
type NopVisitor struct{}

func (NopVisitor) VisitComment(Comment)                                       {}
func (NopVisitor) VisitTags(Tags)                                             {}
func (NopVisitor) VisitFeatureName(string)                                    {}
func (NopVisitor) VisitFeatureElement(FeatureElement)                         {}
func (NopVisitor) VisitScenarioName(string, string, string, int)              {}
func (NopVisitor) VisitStepName(Keyword, string, Status, StepInvocation, int) {}
func (NopVisitor) VisitMultilineArg(MultilineArg, Status)                     {}
func (NopVisitor) VisitStepException(*Failure)                                {}
func (NopVisitor) VisitExamples(string, *Table)                               {}
func (NopVisitor) VisitOutlineRow(OutlineRow)                                 {}
func (NopVisitor) StepInvocation(string, World) Resolution                    { return Undefined() }
