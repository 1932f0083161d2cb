package stepdef

// World is the default per-scenario context: a bag of values shared by the
// steps of one scenario.
type World struct {
	values map[string]any
}

func NewWorld() *World {
	return &World{values: make(map[string]any)}
}

func (w *World) Set(key string, value any) {
	w.values[key] = value
}

func (w *World) Get(key string) (any, bool) {
	v, ok := w.values[key]
	return v, ok
}

// Int returns the value stored under key as an int, or 0.
func (w *World) Int(key string) int {
	n, _ := w.values[key].(int)
	return n
}

// String returns the value stored under key as a string, or "".
func (w *World) String(key string) string {
	s, _ := w.values[key].(string)
	return s
}
