package ast

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Failure is the error captured from a failed step, together with a trace
// that ends with the feature file location of the step.
type Failure struct {
	Err   error
	Trace []string
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// PanicError is a panic recovered from step code.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// tracer is implemented by errors that carry their own trace lines.
type tracer interface {
	Trace() []string
}

func newFailure(err error, locator string) *Failure {
	f := &Failure{Err: err}
	switch e := err.(type) {
	case tracer:
		f.Trace = append(f.Trace, e.Trace()...)
	case *PanicError:
		f.Trace = append(f.Trace, stackFrames(e.Stack)...)
	}
	if locator != "" {
		f.Trace = append(f.Trace, locator)
	}
	return f
}

// stackFrames keeps the file:line lines of a goroutine dump.
func stackFrames(stack []byte) []string {
	var frames []string
	for _, line := range strings.Split(string(stack), "\n") {
		if strings.HasPrefix(line, "\t") {
			frames = append(frames, strings.TrimSpace(line))
		}
	}
	return frames
}

func recovered(r any) error {
	return &PanicError{Value: r, Stack: debug.Stack()}
}
