package stepdef

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chriserin/cuke/internal/ast"
)

var snippetArg = regexp.MustCompile(`"[^"]*"|\b\d+(?:\.\d+)?\b`)

// Snippet suggests a definition for an undefined step. Quoted strings and
// numbers in the text become capture groups.
func Snippet(keyword ast.Keyword, name string, args []ast.MultilineArg) string {
	var (
		pattern strings.Builder
		params  []string
	)
	last := 0
	for _, loc := range snippetArg.FindAllStringIndex(name, -1) {
		pattern.WriteString(regexp.QuoteMeta(name[last:loc[0]]))
		match := name[loc[0]:loc[1]]
		n := len(params) + 1
		switch {
		case strings.HasPrefix(match, `"`):
			pattern.WriteString(`"([^"]*)"`)
			params = append(params, fmt.Sprintf("arg%d string", n))
		case strings.Contains(match, "."):
			pattern.WriteString(`(\d+\.\d+)`)
			params = append(params, fmt.Sprintf("arg%d float64", n))
		default:
			pattern.WriteString(`(\d+)`)
			params = append(params, fmt.Sprintf("arg%d int", n))
		}
		last = loc[1]
	}
	pattern.WriteString(regexp.QuoteMeta(name[last:]))

	for _, a := range args {
		switch a.(type) {
		case *ast.Table:
			params = append(params, "table *ast.Table")
		case *ast.DocString:
			params = append(params, "doc *ast.DocString")
		}
	}

	method := string(keyword)
	if keyword == ast.And || keyword == ast.But {
		method = "Step"
	}
	return fmt.Sprintf("steps.%s(`^%s$`, func(%s) error {\n\treturn fmt.Errorf(\"not implemented\")\n})",
		method, pattern.String(), strings.Join(params, ", "))
}
