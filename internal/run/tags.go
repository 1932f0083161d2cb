package run

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/chriserin/cuke/internal/ast"
)

var tagToken = regexp.MustCompile(`@[^\s()@]+`)

// TagFilter selects scenarios by a tag expression such as
// "@wip and not (@slow or @flaky)". A scenario carries its own tags and
// those of its feature.
type TagFilter struct {
	source  string
	program *vm.Program
}

// NewTagFilter compiles expression. An empty expression yields a nil
// filter, which selects everything.
func NewTagFilter(expression string) (*TagFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}
	code := tagToken.ReplaceAllStringFunc(expression, func(tag string) string {
		return "has(" + strconv.Quote(tag) + ")"
	})
	program, err := expr.Compile(code, expr.Env(tagEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid tag expression %q: %w", expression, err)
	}
	return &TagFilter{source: expression, program: program}, nil
}

func tagEnv(tags ast.Tags) map[string]any {
	return map[string]any{
		"has": func(tag string) bool { return tags.Has(tag) },
	}
}

func (tf *TagFilter) String() string { return tf.source }

// Match reports whether tags satisfy the expression.
func (tf *TagFilter) Match(tags ast.Tags) (bool, error) {
	if tf == nil {
		return true, nil
	}
	out, err := expr.Run(tf.program, tagEnv(tags))
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", tf.source, err)
	}
	return out.(bool), nil
}

type tagged interface {
	Tags() ast.Tags
}

// Select narrows lines to the elements of f matching the expression. With
// no lines every element is a candidate. The result is empty when nothing
// matches.
func (tf *TagFilter) Select(f *ast.Feature, lines ast.LineFilter) (ast.LineFilter, error) {
	selected := ast.NewLineFilter()
	for _, e := range f.Elements() {
		if len(lines) > 0 && !e.AtAnyLine(lines) {
			continue
		}
		tags := append(ast.Tags(nil), f.Tags()...)
		if t, ok := e.(tagged); ok {
			tags = append(tags, t.Tags()...)
		}
		ok, err := tf.Match(tags)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if len(lines) == 0 {
			selected[e.Line()] = struct{}{}
			continue
		}
		for l := range lines {
			if e.AtAnyLine(ast.NewLineFilter(l)) {
				selected[l] = struct{}{}
			}
		}
	}
	return selected, nil
}
