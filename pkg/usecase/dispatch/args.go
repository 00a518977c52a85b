package dispatch

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/utils/timespec"
)

// Args is a bound argument set. Accessing a parameter with no value fails with
// ErrMissingArgument; there are no defaults.
type Args struct {
	values map[string]any
	raw    map[string]string
}

func newArgs() *Args {
	return &Args{
		values: make(map[string]any),
		raw:    make(map[string]string),
	}
}

// Has reports whether name was bound
func (x *Args) Has(name string) bool {
	_, ok := x.values[name]
	return ok
}

// Raw returns the token a parameter was converted from, empty for bot-only values
func (x *Args) Raw(name string) string {
	return x.raw[name]
}

// Len returns the number of bound parameters
func (x *Args) Len() int {
	return len(x.values)
}

func get[T any](x *Args, name string) (T, error) {
	var zero T
	v, ok := x.values[name]
	if !ok {
		return zero, goerr.Wrap(ErrMissingArgument, "argument is not bound", goerr.V(ParamKey, name))
	}
	typed, ok := v.(T)
	if !ok {
		return zero, goerr.Wrap(ErrBinding, "argument has another type", goerr.V(ParamKey, name))
	}
	return typed, nil
}

func (x *Args) String(name string) (string, error) {
	return get[string](x, name)
}

func (x *Args) Int(name string) (int, error) {
	return get[int](x, name)
}

func (x *Args) Time(name string) (timespec.Result, error) {
	return get[timespec.Result](x, name)
}

func (x *Args) Actor(name string) (*model.Actor, error) {
	return get[*model.Actor](x, name)
}

func (x *Args) set(name string, raw string, v any) {
	x.values[name] = v
	x.raw[name] = raw
}
