package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bareStep is a feature element that serializes as a single step.
type bareStep struct {
	*Step
	feature *Feature
}

func (b *bareStep) AttachFeature(f *Feature) {
	if b.feature == nil {
		b.feature = f
	}
}

func (b *bareStep) Feature() *Feature               { return b.feature }
func (b *bareStep) AtAnyLine(lines LineFilter) bool { return lines.Contains(b.Line()) }
func (b *bareStep) Accept(v Visitor)                {}

func TestFeature_Sexp(t *testing.T) {
	f := NewFeature("# c", NewTags("@t"), "N", &bareStep{Step: NewStep(3, Given, "x")})

	want := Sexp{Symbol("feature"), "N", "# c", Sexp{"@t"}, Sexp{Symbol("step"), 3, "Given", "x"}}
	if diff := cmp.Diff(want, f.Sexp()); diff != "" {
		t.Errorf("sexp mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, `[:feature, "N", "# c", ["@t"], [:step, 3, "Given", "x"]]`, f.Sexp().String())
}

func TestFeature_SexpOmitsEmptyCommentAndTags(t *testing.T) {
	f := NewFeature("", nil, "N", NewScenario("", nil, 2, "S", NewStep(3, Given, "x")))

	assert.Equal(t, `[:feature, "N", [:scenario, 2, "S", [:step, 3, "Given", "x"]]]`, f.Sexp().String())
}

func TestFeature_SexpIsStableAcrossTraversal(t *testing.T) {
	v := &recordingVisitor{}
	v.define(`^x$`, nil)
	f := NewFeature("# c", NewTags("@t"), "N", NewScenario("", NewTags("@s"), 2, "S", NewStep(3, Given, "x")))

	before := f.Sexp()
	f.Accept(v)

	if diff := cmp.Diff(before, f.Sexp()); diff != "" {
		t.Errorf("sexp changed after Accept (-before +after):\n%s", diff)
	}
}

func TestFeature_AcceptVisitsHeaderThenElements(t *testing.T) {
	v := &recordingVisitor{}
	f := NewFeature("# c", nil, "N",
		NewScenario("", nil, 2, "first"),
		NewScenario("", nil, 5, "second"),
	)

	f.Accept(v)

	assert.Equal(t, []string{
		"comment:# c", "tags", "feature:N",
		"element:first", "comment:", "tags", "scenario:first",
		"element:second", "comment:", "tags", "scenario:second",
	}, v.calls)
}

func TestFeature_LineFilter(t *testing.T) {
	first := NewScenario("", nil, 2, "first", NewStep(3, Given, "a"), NewStep(4, Given, "b"))
	second := NewScenario("", nil, 9, "second", NewStep(10, Given, "c"))
	first.SetEndLine(8)
	f := NewFeature("", nil, "N", first, second)

	f.SetLines(NewLineFilter(10))
	v := &recordingVisitor{}
	f.Accept(v)
	require.Len(t, v.elements, 1)
	assert.Same(t, second, v.elements[0])

	f.SetLines(NewLineFilter(7))
	v = &recordingVisitor{}
	f.Accept(v)
	require.Len(t, v.elements, 1)
	assert.Same(t, first, v.elements[0])

	f.SetLines(nil)
	v = &recordingVisitor{}
	f.Accept(v)
	assert.Equal(t, []FeatureElement{first, second}, v.elements)
}

func TestFeature_LineFilterMatchingNothing(t *testing.T) {
	f := NewFeature("", nil, "N", NewScenario("", nil, 2, "first", NewStep(3, Given, "a")))
	f.SetLines(NewLineFilter(40))
	v := &recordingVisitor{}

	f.Accept(v)

	assert.Empty(t, v.elements)
	assert.Equal(t, []string{"comment:", "tags", "feature:N"}, v.calls)
}

func TestFeature_ElementsKeepFirstFeature(t *testing.T) {
	sc := NewScenario("", nil, 2, "S")
	first := NewFeature("", nil, "one", sc)
	NewFeature("", nil, "two", sc)

	assert.Same(t, first, sc.Feature())
}

func TestFeature_StepExecutedWithoutListenerIsNoop(t *testing.T) {
	sc := NewScenario("", nil, 2, "S")
	f := NewFeature("", nil, "N", sc)

	assert.NotPanics(t, func() { f.StepExecuted(sc, StatusPassed) })
}

func TestScenario_FailFast(t *testing.T) {
	v := &recordingVisitor{}
	first := v.define(`^one$`, nil)
	second := v.define(`^two$`, &fakeInvocation{err: errBoom})
	third := v.define(`^three$`, nil)
	s1, s2, s3 := NewStep(3, Given, "one"), NewStep(4, When, "two"), NewStep(5, Then, "three")
	f, sc := newCukesFeature(s1, s2, s3)
	l := &listener{}
	f.SetListener(l)

	f.Accept(v)

	assert.Equal(t, StatusPassed, s1.Status())
	assert.Equal(t, StatusFailed, s2.Status())
	assert.Equal(t, StatusSkipped, s3.Status())
	require.NotNil(t, s2.Failure())
	assert.Contains(t, s2.Failure().Trace, "features/cukes.feature:4:in `When two'")
	assert.Nil(t, s3.Failure())
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls)
	assert.Equal(t, []Status{StatusPassed, StatusFailed, StatusSkipped}, l.events)
	assert.Equal(t, StatusFailed, sc.Status())
}

func TestScenario_UndefinedStepSkipsTheRest(t *testing.T) {
	v := &recordingVisitor{}
	v.define(`^defined$`, nil)
	s1, s2 := NewStep(3, Given, "missing"), NewStep(4, Then, "defined")
	f, _ := newCukesFeature(s1, s2)

	f.Accept(v)

	assert.Equal(t, StatusUndefined, s1.Status())
	assert.Equal(t, StatusSkipped, s2.Status())
}

func TestScenario_SharesOneWorldAcrossSteps(t *testing.T) {
	var worlds []World
	v := &worldVisitor{seen: &worlds}
	f, _ := newCukesFeature(NewStep(3, Given, "a"), NewStep(4, Given, "b"))

	f.Accept(v)

	require.Len(t, worlds, 2)
	assert.Equal(t, worlds[0], worlds[1])
}

type worldVisitor struct {
	NopVisitor
	seen *[]World
}

func (v *worldVisitor) VisitFeatureElement(e FeatureElement) { e.Accept(v) }

func (v *worldVisitor) NewWorld() World { return &struct{ n int }{} }

func (v *worldVisitor) StepInvocation(name string, world World) Resolution {
	*v.seen = append(*v.seen, world)
	return Found(&fakeInvocation{})
}

func TestScenario_AtAnyLine(t *testing.T) {
	sc := NewScenario("", nil, 2, "S", NewStep(3, Given, "a"), NewStep(4, Given, "b"))

	assert.True(t, sc.AtAnyLine(NewLineFilter(2)))
	assert.True(t, sc.AtAnyLine(NewLineFilter(4)))
	assert.False(t, sc.AtAnyLine(NewLineFilter(5)))
	assert.False(t, sc.AtAnyLine(NewLineFilter(1)))

	sc.SetEndLine(6)
	assert.True(t, sc.AtAnyLine(NewLineFilter(6)))
}
