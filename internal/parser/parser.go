package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chriserin/cuke/internal/ast"
)

var tagPattern = regexp.MustCompile(`@[^@\s]+`)

type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// parser walks the lines of one feature file. i is the 0-based index of
// the next unread line.
type parser struct {
	lines  []string
	i      int
	errors []ParseError
}

func (p *parser) errorf(line int, format string, args ...any) {
	p.errors = append(p.errors, ParseError{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) trimmed() string {
	return strings.TrimSpace(p.lines[p.i])
}

// Parse parses a .feature file into a Feature and any parse errors. The
// returned feature has its file set to filename.
func Parse(filename string, content []byte) (*ast.Feature, []ParseError) {
	p := &parser{lines: strings.Split(string(content), "\n")}

	// Leading comments belong to the feature
	var featureComment []string
	for p.i < len(p.lines) {
		trimmed := p.trimmed()
		if trimmed == "" {
			p.i++
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			featureComment = append(featureComment, trimmed)
			p.i++
			continue
		}
		break
	}

	// Collect feature-level tags
	var featureTags []string
	for p.i < len(p.lines) {
		trimmed := p.trimmed()
		if isTagLine(trimmed) {
			featureTags = append(featureTags, parseTags(trimmed)...)
			p.i++
			continue
		}
		break
	}

	name := filenameWithoutExt(filename)
	if p.i < len(p.lines) && strings.HasPrefix(p.trimmed(), "Feature:") {
		name = strings.TrimSpace(strings.TrimPrefix(p.trimmed(), "Feature:"))
		p.i++
		p.skipDescription()
	}

	elements := p.parseBody()
	feature := ast.NewFeature(ast.Comment(strings.Join(featureComment, "\n")), ast.NewTags(featureTags...), name, elements...)
	feature.SetFile(filename)
	return feature, p.errors
}

func (p *parser) skipDescription() {
	for p.i < len(p.lines) {
		trimmed := p.trimmed()
		if isKeyword(trimmed) || isTagLine(trimmed) || strings.HasPrefix(trimmed, "#") {
			return
		}
		p.i++
	}
}

func (p *parser) parseBody() []ast.FeatureElement {
	var (
		elements       []ast.FeatureElement
		pendingTags    []string
		pendingComment []string
		last           spanned
	)
	// blockStart is the index of the first comment or tag line of the
	// block being collected, -1 when none is pending.
	blockStart := -1
	// closeLast ends the previous element on the line before index i.
	closeLast := func(i int) {
		if blockStart >= 0 {
			i = blockStart
		}
		if last != nil {
			last.SetEndLine(i)
		}
		last, blockStart = nil, -1
	}
	for p.i < len(p.lines) {
		trimmed := p.trimmed()

		switch {
		case isDocStringDelimiter(trimmed):
			p.i = skipDocString(p.lines, p.i)
		case trimmed == "":
			p.i++
		case strings.HasPrefix(trimmed, "#"):
			if blockStart < 0 {
				blockStart = p.i
			}
			pendingComment = append(pendingComment, trimmed)
			p.i++
		case isTagLine(trimmed):
			if blockStart < 0 {
				blockStart = p.i
			}
			pendingTags = append(pendingTags, parseTags(trimmed)...)
			p.i++
		case hasAnyPrefix(trimmed, "Scenario Outline:", "Scenario Template:"):
			closeLast(p.i)
			comment, tags := ast.Comment(strings.Join(pendingComment, "\n")), ast.NewTags(pendingTags...)
			pendingComment, pendingTags = nil, nil
			o := p.parseOutline(comment, tags)
			elements, last = append(elements, o), o
		case hasAnyPrefix(trimmed, "Scenario:", "Example:"):
			closeLast(p.i)
			comment, tags := ast.Comment(strings.Join(pendingComment, "\n")), ast.NewTags(pendingTags...)
			pendingComment, pendingTags = nil, nil
			sc := p.parseScenario(comment, tags)
			elements, last = append(elements, sc), sc
		case strings.HasPrefix(trimmed, "Background:"):
			closeLast(p.i)
			pendingComment, pendingTags = nil, nil
			p.errorf(p.i+1, "Background is not supported")
			p.i++
			p.i = consumeBlock(p.lines, p.i)
		case strings.HasPrefix(trimmed, "Rule:"):
			closeLast(p.i)
			pendingComment, pendingTags = nil, nil
			p.errorf(p.i+1, "Rule is not supported")
			p.i++
			p.i = consumeBlock(p.lines, p.i)
		case hasAnyPrefix(trimmed, "Examples:", "Scenarios:"):
			p.errorf(p.i+1, "Examples outside of a Scenario Outline")
			p.i++
			p.i = consumeBlock(p.lines, p.i)
		default:
			p.i++
		}
	}
	// Trailing comments at the end of the file stay with the last element.
	blockStart = -1
	closeLast(p.lineCount())
	return elements
}

// spanned is an element whose span can be closed once the next one starts.
type spanned interface {
	SetEndLine(line int)
}

// lineCount is the number of lines in the file, not counting the empty
// string after a trailing newline.
func (p *parser) lineCount() int {
	n := len(p.lines)
	if n > 0 && p.lines[n-1] == "" {
		n--
	}
	return n
}

// header consumes a "Keyword: name" line and returns its 1-based line
// number and the name.
func (p *parser) header() (int, string) {
	line := p.i + 1
	trimmed := p.trimmed()
	name := ""
	if idx := strings.Index(trimmed, ":"); idx >= 0 {
		name = strings.TrimSpace(trimmed[idx+1:])
	}
	p.i++
	return line, name
}

func (p *parser) parseScenario(comment ast.Comment, tags ast.Tags) *ast.Scenario {
	line, name := p.header()
	steps, end := p.parseSteps(false)
	sc := ast.NewScenario(comment, tags, line, name, steps...)
	sc.SetEndLine(end)
	return sc
}

func (p *parser) parseOutline(comment ast.Comment, tags ast.Tags) *ast.ScenarioOutline {
	line, name := p.header()
	steps, end := p.parseSteps(true)

	var examples []*ast.Examples
	for p.i < len(p.lines) {
		trimmed := p.trimmed()
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			p.i++
			continue
		}
		if isTagLine(trimmed) && tagPrecedes(p.lines, p.i, "Examples:", "Scenarios:") {
			p.i++
			continue
		}
		if !hasAnyPrefix(trimmed, "Examples:", "Scenarios:") {
			break
		}
		ex, exEnd := p.parseExamples()
		examples = append(examples, ex)
		if exEnd > end {
			end = exEnd
		}
	}
	if len(examples) == 0 {
		p.errorf(line, "Scenario Outline %q has no Examples", name)
	}

	o := ast.NewScenarioOutline(comment, tags, line, name, steps, examples...)
	o.SetEndLine(end)
	return o
}

func (p *parser) parseExamples() (*ast.Examples, int) {
	line, name := p.header()
	end := line
	for p.i < len(p.lines) {
		trimmed := p.trimmed()
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			p.i++
			continue
		}
		break
	}
	if p.i >= len(p.lines) || !strings.HasPrefix(p.trimmed(), "|") {
		p.errorf(line, "Examples without a table")
		return ast.NewExamples(line, name, ast.NewTable(nil)), end
	}

	rows, rowLines := p.parseTable()
	if len(rowLines) > 0 {
		end = rowLines[len(rowLines)-1]
	}
	var bodyLines []int
	if len(rowLines) > 1 {
		bodyLines = rowLines[1:]
	}
	return ast.NewExamples(line, name, ast.NewTable(rows), bodyLines...), end
}

// parseSteps reads steps until the next element. It returns the steps and
// the last non-blank line consumed.
func (p *parser) parseSteps(outline bool) ([]*ast.Step, int) {
	var steps []*ast.Step
	end := p.i
	for p.i < len(p.lines) {
		trimmed := p.trimmed()
		if trimmed == "" {
			p.i++
			continue
		}
		if isKeyword(trimmed) {
			break
		}
		if strings.HasPrefix(trimmed, "#") || isTagLine(trimmed) {
			if tagPrecedesKeyword(p.lines, p.i) {
				break
			}
			p.i++
			continue
		}

		keyword, text, ok := ast.ParseKeyword(trimmed)
		if !ok {
			if strings.HasPrefix(trimmed, "|") {
				p.errorf(p.i+1, "table without a step")
				p.parseTable()
				continue
			}
			if outline || len(steps) == 0 {
				// description line
				p.i++
				end = p.i
				continue
			}
			p.errorf(p.i+1, "unexpected line %q", trimmed)
			p.i++
			continue
		}

		stepLine := p.i + 1
		p.i++
		end = p.i
		var args []ast.MultilineArg
		if p.i < len(p.lines) {
			next := p.trimmed()
			switch {
			case strings.HasPrefix(next, "|"):
				rows, rowLines := p.parseTable()
				args = append(args, ast.NewTable(rows))
				end = rowLines[len(rowLines)-1]
			case isDocStringDelimiter(next):
				args = append(args, p.parseDocString())
				end = p.i
			}
		}
		steps = append(steps, ast.NewStep(stepLine, keyword, text, args...))
	}
	return steps, end
}

// parseTable reads consecutive table rows starting at the current line.
func (p *parser) parseTable() ([][]string, []int) {
	var (
		rows     [][]string
		rowLines []int
	)
	for p.i < len(p.lines) {
		trimmed := p.trimmed()
		if strings.HasPrefix(trimmed, "#") {
			p.i++
			continue
		}
		if !strings.HasPrefix(trimmed, "|") {
			break
		}
		row := splitRow(trimmed)
		if len(rows) > 0 && len(row) != len(rows[0]) {
			p.errorf(p.i+1, "inconsistent cell count: expected %d, got %d", len(rows[0]), len(row))
		}
		rows = append(rows, row)
		rowLines = append(rowLines, p.i+1)
		p.i++
	}
	return rows, rowLines
}

func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var (
		cells []string
		cell  strings.Builder
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			switch line[i] {
			case 'n':
				cell.WriteByte('\n')
			default:
				cell.WriteByte(line[i])
			}
		case c == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}
	return append(cells, strings.TrimSpace(cell.String()))
}

// parseDocString reads a doc string starting at its opening delimiter. The
// indentation of the delimiter is removed from every content line.
func (p *parser) parseDocString() *ast.DocString {
	openLine := p.i + 1
	raw := p.lines[p.i]
	opener := strings.TrimSpace(raw)
	indent := len(raw) - len(strings.TrimLeft(raw, " \t"))
	delimiter := `"""`
	if strings.HasPrefix(opener, "```") {
		delimiter = "```"
	}
	contentType := strings.TrimSpace(strings.TrimPrefix(opener, delimiter))
	p.i++

	var content []string
	for p.i < len(p.lines) {
		line := p.lines[p.i]
		if strings.TrimSpace(line) == delimiter {
			p.i++
			return ast.NewDocString(contentType, strings.Join(content, "\n"))
		}
		content = append(content, stripIndent(line, indent))
		p.i++
	}
	p.errorf(openLine, "unterminated doc string")
	return ast.NewDocString(contentType, strings.Join(content, "\n"))
}

func stripIndent(line string, indent int) string {
	n := 0
	for n < indent && n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return line[n:]
}

func parseTags(line string) []string {
	return tagPattern.FindAllString(line, -1)
}

func isTagLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "@")
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

var keywordPrefixes = []string{
	"Feature:",
	"Background:",
	"Scenario:",
	"Example:",
	"Scenario Outline:",
	"Scenario Template:",
	"Rule:",
	"Examples:",
	"Scenarios:",
}

func isKeyword(trimmed string) bool {
	return hasAnyPrefix(trimmed, keywordPrefixes...)
}

func isDocStringDelimiter(trimmed string) bool {
	return strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "```")
}

// skipDocString advances past a doc string block. i points at the opening delimiter.
// Returns the index of the line after the closing delimiter.
func skipDocString(lines []string, i int) int {
	opener := strings.TrimSpace(lines[i])
	delimiter := `"""`
	if strings.HasPrefix(opener, "```") {
		delimiter = "```"
	}
	i++ // move past opening delimiter
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == delimiter {
			return i + 1 // past the closing delimiter
		}
		i++
	}
	return i // EOF without closing delimiter
}

// consumeBlock advances past content lines, skipping over doc strings,
// until the next keyword, tag line, or EOF.
func consumeBlock(lines []string, i int) int {
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if isDocStringDelimiter(t) {
			i = skipDocString(lines, i)
			continue
		}
		if isKeyword(t) || isTagLine(t) {
			break
		}
		i++
	}
	return i
}

// tagPrecedesKeyword checks if the tag or comment line at index i is followed
// by a keyword line.
func tagPrecedesKeyword(lines []string, i int) bool {
	return tagPrecedes(lines, i, keywordPrefixes...)
}

func tagPrecedes(lines []string, i int, keywords ...string) bool {
	for j := i + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		if strings.HasPrefix(t, "@") {
			continue
		}
		return hasAnyPrefix(t, keywords...)
	}
	return false
}

func filenameWithoutExt(filename string) string {
	name := filename
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return name
}
