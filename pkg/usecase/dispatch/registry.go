package dispatch

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Registry holds command descriptors. It is filled once at startup and read-only afterwards.
type Registry struct {
	commands []*Descriptor
	index    map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]*Descriptor),
	}
}

// Register validates desc and adds it under its name and aliases
func (x *Registry) Register(desc Descriptor) error {
	if err := validateDescriptor(&desc); err != nil {
		return err
	}

	keys := append([]string{desc.Name}, desc.Aliases...)
	for i := range keys {
		keys[i] = strings.ToLower(keys[i])
		if _, exists := x.index[keys[i]]; exists {
			return goerr.Wrap(ErrInvalidDescriptor, "command name already registered",
				goerr.V(CommandKey, keys[i]))
		}
	}
	for i := range keys[:len(keys)-1] {
		for _, other := range keys[i+1:] {
			if keys[i] == other {
				return goerr.Wrap(ErrInvalidDescriptor, "duplicated alias", goerr.V(CommandKey, other))
			}
		}
	}

	d := &desc
	x.commands = append(x.commands, d)
	for _, key := range keys {
		x.index[key] = d
	}
	return nil
}

// MustRegister is Register for static command tables
func (x *Registry) MustRegister(descs ...Descriptor) {
	for _, desc := range descs {
		if err := x.Register(desc); err != nil {
			panic(err)
		}
	}
}

// Lookup finds a command by name or alias, case-insensitively
func (x *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := x.index[strings.ToLower(name)]
	return d, ok
}

// Commands returns descriptors in registration order
func (x *Registry) Commands() []*Descriptor {
	out := make([]*Descriptor, len(x.commands))
	copy(out, x.commands)
	return out
}

func validateDescriptor(desc *Descriptor) error {
	if desc.Name == "" || strings.ContainsAny(desc.Name, " \t\n") {
		return goerr.Wrap(ErrInvalidDescriptor, "invalid command name", goerr.V(CommandKey, desc.Name))
	}
	if desc.Handler == nil {
		return goerr.Wrap(ErrInvalidDescriptor, "handler is required", goerr.V(CommandKey, desc.Name))
	}

	seen := make(map[string]struct{}, len(desc.Params))
	public := desc.PublicParams()
	for _, p := range desc.Params {
		if p.Name == "" {
			return goerr.Wrap(ErrInvalidDescriptor, "parameter name is required", goerr.V(CommandKey, desc.Name))
		}
		if _, ok := seen[p.Name]; ok {
			return goerr.Wrap(ErrInvalidDescriptor, "duplicated parameter",
				goerr.V(CommandKey, desc.Name), goerr.V(ParamKey, p.Name))
		}
		seen[p.Name] = struct{}{}
	}
	for i, p := range public {
		if p.Type == TypeGreedyString && i != len(public)-1 {
			return goerr.Wrap(ErrInvalidDescriptor, "greedy string must be the last parameter",
				goerr.V(CommandKey, desc.Name), goerr.V(ParamKey, p.Name))
		}
	}
	return nil
}
