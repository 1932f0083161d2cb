package ast

// Examples is one Examples table of an outline. rowLines holds the source
// line of each body row.
type Examples struct {
	line     int
	name     string
	table    *Table
	rowLines []int
}

func NewExamples(line int, name string, table *Table, rowLines ...int) *Examples {
	return &Examples{line: line, name: name, table: table, rowLines: append([]int(nil), rowLines...)}
}

func (ex *Examples) Line() int     { return ex.line }
func (ex *Examples) Name() string  { return ex.name }
func (ex *Examples) Table() *Table { return ex.table }

func (ex *Examples) rowLine(i int) int {
	if i < len(ex.rowLines) {
		return ex.rowLines[i]
	}
	return SyntheticLine
}

func (ex *Examples) Sexp() Sexp {
	return Sexp{Symbol("examples"), ex.line, ex.name, ex.table.Sexp()}
}

// ScenarioOutline is a templated scenario. Its steps are never executed
// themselves; each Examples row runs substituted copies of them.
type ScenarioOutline struct {
	element
	examples []*Examples

	// currentRow is the line of the row being run, used to locate failures
	// of synthetic steps.
	currentRow int
}

func NewScenarioOutline(comment Comment, tags Tags, line int, name string, steps []*Step, examples ...*Examples) *ScenarioOutline {
	o := &ScenarioOutline{
		element: element{
			keyword: "Scenario Outline",
			line:    line,
			comment: comment,
			tags:    tags,
			name:    name,
			steps:   append([]*Step(nil), steps...),
		},
		examples: append([]*Examples(nil), examples...),
	}
	o.self = o
	for _, s := range o.steps {
		s.Attach(o)
	}
	return o
}

func (o *ScenarioOutline) Examples() []*Examples {
	return append([]*Examples(nil), o.examples...)
}

// CurrentRow is the line of the Examples row being run, or 0 between rows.
func (o *ScenarioOutline) CurrentRow() int { return o.currentRow }

func (o *ScenarioOutline) EndLine() int {
	end := o.element.EndLine()
	for _, ex := range o.examples {
		if ex.line > end {
			end = ex.line
		}
		for _, l := range ex.rowLines {
			if l > end {
				end = l
			}
		}
	}
	return end
}

func (o *ScenarioOutline) AtAnyLine(lines LineFilter) bool {
	return lines.Intersects(o.line, o.EndLine())
}

func (o *ScenarioOutline) FileLine(line int) string {
	if line == SyntheticLine && o.currentRow != 0 {
		line = o.currentRow
	}
	return o.element.FileLine(line)
}

func (o *ScenarioOutline) BacktraceLine(text string, line int) string {
	if line == SyntheticLine && o.currentRow != 0 {
		line = o.currentRow
	}
	return o.element.BacktraceLine(text, line)
}

// Accept reports the template steps without running them, then runs each
// selected Examples row with a fresh world.
func (o *ScenarioOutline) Accept(v Visitor) {
	o.acceptHeader(v)
	for _, step := range o.steps {
		step.acceptTemplate(v)
	}

	selected := o.selectedRows()
	for _, ex := range o.examples {
		v.VisitExamples(ex.name, ex.table)
		for i, row := range ex.table.Hashes() {
			line := ex.rowLine(i)
			if selected != nil && !selected.Contains(line) {
				continue
			}
			v.VisitOutlineRow(o.runRow(v, row, line, ex.table.Raw()[i+1]))
		}
	}
}

// selectedRows returns the feature's line filter when it names at least one
// Examples row of this outline, so only those rows run.
func (o *ScenarioOutline) selectedRows() LineFilter {
	if o.feature == nil || o.feature.Lines() == nil {
		return nil
	}
	lines := o.feature.Lines()
	for _, ex := range o.examples {
		for _, l := range ex.rowLines {
			if lines.Contains(l) {
				return lines
			}
		}
	}
	return nil
}

func (o *ScenarioOutline) runRow(v Visitor, row map[string]string, line int, values []string) OutlineRow {
	o.currentRow = line
	defer func() { o.currentRow = 0 }()

	result := OutlineRow{Line: line, Values: values, Status: StatusUnstarted}
	world := newWorld(v)
	previous := StatusPassed
	for _, step := range o.steps {
		derived, res := step.ExecuteWithArguments(row, world, previous, v)
		previous = res.Status
		result.Status = Worst(result.Status, res.Status)
		if f := derived.Failure(); f != nil {
			result.Failures = append(result.Failures, f)
		}
	}
	return result
}

func (o *ScenarioOutline) Sexp() Sexp {
	sexp := o.sexp("scenario_outline")
	for _, ex := range o.examples {
		sexp = append(sexp, ex.Sexp())
	}
	return sexp
}
