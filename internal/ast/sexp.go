package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbol is a sexp atom such as :feature or :step.
type Symbol string

// Sexp is the canonical nested-list form of a node. It is used to compare
// trees structurally without going through any textual rendering.
type Sexp []any

func (s Sexp) String() string {
	var b strings.Builder
	writeSexp(&b, s)
	return b.String()
}

func writeSexp(b *strings.Builder, v any) {
	switch x := v.(type) {
	case Sexp:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			writeSexp(b, e)
		}
		b.WriteByte(']')
	case Symbol:
		b.WriteByte(':')
		b.WriteString(string(x))
	case string:
		b.WriteString(strconv.Quote(x))
	case int:
		b.WriteString(strconv.Itoa(x))
	default:
		fmt.Fprint(b, x)
	}
}

// Comment is the text of the comment lines preceding a node. The empty
// comment is absent.
type Comment string

// Tags is an ordered set of labels such as "@wip".
type Tags []string

// NewTags drops duplicates while keeping first-seen order.
func NewTags(names ...string) Tags {
	seen := make(map[string]bool, len(names))
	var tags Tags
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		tags = append(tags, n)
	}
	return tags
}

func (t Tags) Has(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

func (t Tags) Sexp() Sexp {
	s := make(Sexp, 0, len(t))
	for _, n := range t {
		s = append(s, n)
	}
	return s
}

// appendHeader adds the optional comment and tags to a node's sexp.
func appendHeader(s Sexp, comment Comment, tags Tags) Sexp {
	if comment != "" {
		s = append(s, string(comment))
	}
	if len(tags) > 0 {
		s = append(s, tags.Sexp())
	}
	return s
}
