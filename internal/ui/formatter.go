// Package ui renders feature runs to a terminal.
package ui

import (
	"fmt"
	"io"

	"github.com/chriserin/cuke/internal/ast"
)

// Resolver looks up the step definition matching a step's text.
type Resolver interface {
	Resolve(name string, world ast.World) ast.Resolution
}

// Formatter is a visitor that reports a run as it happens. Finish is called
// once every feature has been walked.
type Formatter interface {
	ast.Visitor
	ast.WorldFactory
	Finish()
}

// locator is implemented by invocations that know where their definition
// lives.
type locator interface {
	Location() string
}

// New returns the formatter called format ("pretty" or "progress").
func New(format string, w io.Writer, resolver Resolver, newWorld func() ast.World) (Formatter, error) {
	b := base{w: w, resolver: resolver, newWorld: newWorld}
	switch format {
	case "pretty", "":
		return &Pretty{base: b}, nil
	case "progress":
		return &Progress{base: b}, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// base carries what every formatter shares: the output and the step
// definitions.
type base struct {
	ast.NopVisitor
	w        io.Writer
	resolver Resolver
	newWorld func() ast.World
}

func (b *base) StepInvocation(name string, world ast.World) ast.Resolution {
	if b.resolver == nil {
		return ast.Undefined()
	}
	return b.resolver.Resolve(name, world)
}

func (b *base) NewWorld() ast.World {
	if b.newWorld == nil {
		return nil
	}
	return b.newWorld()
}
