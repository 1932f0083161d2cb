package stepdef

import (
	"fmt"
	"reflect"
	"strconv"
)

// Invocation is a definition bound to the arguments matched from one
// step's text.
type Invocation struct {
	def   *Definition
	args  []string
	world any
}

func (i *Invocation) MatchedArgs() []string { return i.args }

func (i *Invocation) Location() string { return i.def.Location() }

func (i *Invocation) Definition() *Definition { return i.def }

// Invoke calls the step function. When the function takes one parameter
// more than len(args), the world is passed first.
func (i *Invocation) Invoke(args ...any) error {
	fnType := i.def.fn.Type()
	in := make([]reflect.Value, 0, fnType.NumIn())

	offset := 0
	if fnType.NumIn() == len(args)+1 {
		w, err := worldValue(i.world, fnType.In(0))
		if err != nil {
			return err
		}
		in = append(in, w)
		offset = 1
	}
	if fnType.NumIn() != len(args)+offset {
		return fmt.Errorf("step definition %s /%s/ takes %d arguments, step supplies %d",
			i.def.Location(), i.def.Pattern(), fnType.NumIn(), len(args))
	}

	for j, a := range args {
		v, err := convert(a, fnType.In(j+offset))
		if err != nil {
			return fmt.Errorf("argument %d: %w", j+1, err)
		}
		in = append(in, v)
	}

	out := i.def.fn.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func worldValue(world any, t reflect.Type) (reflect.Value, error) {
	if world == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(world)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("world of type %T cannot be passed as %s", world, t)
	}
	return v, nil
}

// convert turns a matched string or multiline argument into a value of
// type t.
func convert(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	s, ok := a.(string)
	if !ok {
		return reflect.Value{}, fmt.Errorf("cannot pass %T as %s", a, t)
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parsing %q as %s: %w", s, t, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parsing %q as %s: %w", s, t, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parsing %q as %s: %w", s, t, err)
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parsing %q as %s: %w", s, t, err)
		}
		out.SetBool(b)
	default:
		return reflect.Value{}, fmt.Errorf("cannot pass %T as %s", a, t)
	}
	return out, nil
}
