// Package stepdef matches step text against registered regular expressions
// and binds the match to a Go function.
package stepdef

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"sync"

	"github.com/chriserin/cuke/internal/ast"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Definition is one registered step pattern.
type Definition struct {
	pattern *regexp.Regexp
	fn      reflect.Value
	pending bool
	file    string
	line    int
}

func (d *Definition) Pattern() string { return d.pattern.String() }

// Location is the file:line where the definition was registered.
func (d *Definition) Location() string {
	return fmt.Sprintf("%s:%d", d.file, d.line)
}

// Registry holds step definitions in registration order. The first
// definition whose pattern matches wins.
type Registry struct {
	mu   sync.RWMutex
	defs []*Definition
}

func New() *Registry {
	return &Registry{}
}

// Register adds a definition. fn must be a function whose parameters
// accept the pattern's capture groups followed by the step's multiline
// arguments, optionally preceded by the world. It may return an error.
func (r *Registry) Register(pattern string, fn any) error {
	d, err := compile(pattern, fn)
	if err != nil {
		return err
	}
	r.add(d, 2)
	return nil
}

func (r *Registry) mustRegister(pattern string, fn any) {
	d, err := compile(pattern, fn)
	if err != nil {
		panic(err)
	}
	r.add(d, 3)
}

func compile(pattern string, fn any) (*Definition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling step pattern %q: %w", pattern, err)
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("step %q: expected a function, got %T", pattern, fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("step %q: variadic functions are not supported", pattern)
	}
	if t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != errorType) {
		return nil, fmt.Errorf("step %q: function may only return error", pattern)
	}
	return &Definition{pattern: re, fn: v}, nil
}

// add records the definition with the location of the caller skip frames
// up.
func (r *Registry) add(d *Definition, skip int) {
	if _, file, line, ok := runtime.Caller(skip); ok {
		d.file, d.line = filepath.Base(file), line
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = append(r.defs, d)
}

// Given, When, Then and Step register fn for pattern and panic if either is
// invalid. The keyword plays no part in matching.
func (r *Registry) Given(pattern string, fn any) { r.mustRegister(pattern, fn) }
func (r *Registry) When(pattern string, fn any)  { r.mustRegister(pattern, fn) }
func (r *Registry) Then(pattern string, fn any)  { r.mustRegister(pattern, fn) }
func (r *Registry) Step(pattern string, fn any)  { r.mustRegister(pattern, fn) }

// Pending registers a pattern whose steps resolve as pending.
func (r *Registry) Pending(pattern string) {
	r.add(&Definition{pattern: regexp.MustCompile(pattern), pending: true}, 2)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Resolve finds the definition for a step's text.
func (r *Registry) Resolve(name string, world ast.World) ast.Resolution {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Definition
	var args []string
	for _, d := range r.defs {
		m := d.pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if found != nil {
			slog.Debug("ambiguous step", "step", name, "used", found.Location(), "ignored", d.Location())
			break
		}
		found, args = d, m[1:]
	}
	switch {
	case found == nil:
		return ast.Undefined()
	case found.pending:
		return ast.Pending()
	}
	return ast.Found(&Invocation{def: found, args: args, world: world})
}
