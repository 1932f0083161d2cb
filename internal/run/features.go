// Package run walks a set of features with a formatter and tallies the
// outcome.
package run

import (
	"log/slog"
	"sync"

	"github.com/chriserin/cuke/internal/ast"
	"github.com/chriserin/cuke/internal/db"
	"github.com/chriserin/cuke/internal/stepdef"
)

// Recorder stores every executed step, typically in the history database.
type Recorder interface {
	RecordStep(db.StepResult) error
}

// Summary is the outcome of a run. Outline rows count as scenarios.
type Summary struct {
	Scenarios   map[ast.Status]int
	Steps       map[ast.Status]int
	Snippets    []string
	ParseErrors int
}

// Success reports whether the run passed. In strict mode undefined and
// pending steps fail the run too.
func (s Summary) Success(strict bool) bool {
	if s.ParseErrors > 0 || s.Steps[ast.StatusFailed] > 0 {
		return false
	}
	if strict && s.Steps[ast.StatusUndefined]+s.Steps[ast.StatusPending] > 0 {
		return false
	}
	return true
}

type rowKey struct {
	element ast.FeatureElement
	line    int
}

// Features is the aggregator attached to every feature of a run. It is safe
// for concurrent notification.
type Features struct {
	mu       sync.Mutex
	features []*ast.Feature
	steps    map[ast.Status]int
	elements map[ast.FeatureElement]ast.Status
	rows     map[rowKey]ast.Status
	snippets []string
	seen     map[string]bool
	recorder Recorder

	parseErrors int
}

// NewFeatures returns an empty aggregator. recorder may be nil.
func NewFeatures(recorder Recorder) *Features {
	return &Features{
		steps:    make(map[ast.Status]int),
		elements: make(map[ast.FeatureElement]ast.Status),
		rows:     make(map[rowKey]ast.Status),
		seen:     make(map[string]bool),
		recorder: recorder,
	}
}

// Add attaches the aggregator to f. Scenarios selected by the feature's
// line filter are counted as passed until one of their steps reports, so
// a scenario without steps still appears in the summary.
func (fs *Features) Add(f *ast.Feature) {
	f.SetListener(fs)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.features = append(fs.features, f)
	for _, e := range f.Elements() {
		if _, ok := e.(*ast.ScenarioOutline); ok {
			continue
		}
		if f.Lines() != nil && !e.AtAnyLine(f.Lines()) {
			continue
		}
		if _, ok := fs.elements[e]; !ok {
			fs.elements[e] = ast.StatusPassed
		}
	}
}

func (fs *Features) Features() []*ast.Feature {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]*ast.Feature(nil), fs.features...)
}

func (fs *Features) ParseErrors(n int) {
	fs.mu.Lock()
	fs.parseErrors += n
	fs.mu.Unlock()
}

func (fs *Features) StepExecuted(element ast.FeatureElement, status ast.Status) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.steps[status]++
	if _, ok := element.(*ast.ScenarioOutline); !ok {
		fs.elements[element] = ast.Worst(fs.elements[element], status)
	}
}

func (fs *Features) StepFinished(element ast.FeatureElement, step *ast.Step) {
	line := step.Line()
	if outline, ok := element.(*ast.ScenarioOutline); ok {
		if line == ast.SyntheticLine {
			line = outline.CurrentRow()
		}
		fs.mu.Lock()
		key := rowKey{element: element, line: outline.CurrentRow()}
		fs.rows[key] = ast.Worst(fs.rows[key], step.Status())
		fs.mu.Unlock()
	}

	if step.Status() == ast.StatusUndefined {
		fs.addSnippet(stepdef.Snippet(step.Keyword(), step.Name(), step.MultilineArgs()))
	}

	fs.record(element, step, line)
}

func (fs *Features) addSnippet(snippet string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.seen[snippet] {
		return
	}
	fs.seen[snippet] = true
	fs.snippets = append(fs.snippets, snippet)
}

func (fs *Features) record(element ast.FeatureElement, step *ast.Step, line int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.recorder == nil {
		return
	}
	var file string
	if f := element.Feature(); f != nil {
		file = f.File()
	}
	err := fs.recorder.RecordStep(db.StepResult{
		File:     file,
		Line:     line,
		Scenario: element.Name(),
		Keyword:  string(step.Keyword()),
		Name:     step.Name(),
		Status:   step.Status().String(),
	})
	if err != nil {
		slog.Warn("recording history failed, history disabled for this run", "error", err)
		fs.recorder = nil
	}
}

func (fs *Features) Summary() Summary {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	s := Summary{
		Scenarios:   make(map[ast.Status]int),
		Steps:       make(map[ast.Status]int, len(fs.steps)),
		Snippets:    append([]string(nil), fs.snippets...),
		ParseErrors: fs.parseErrors,
	}
	for status, n := range fs.steps {
		s.Steps[status] = n
	}
	for _, status := range fs.elements {
		s.Scenarios[status]++
	}
	for _, status := range fs.rows {
		s.Scenarios[status]++
	}
	return s
}
