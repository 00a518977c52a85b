package dispatch

import (
	"context"
	"strings"

	"github.com/secmon-lab/bonk/pkg/domain/model"
)

// TypeTag names how a raw token is converted into a typed argument
type TypeTag string

const (
	TypeString       TypeTag = "string"
	TypeGreedyString TypeTag = "greedy_string"
	TypeInt          TypeTag = "int"
	TypeTime         TypeTag = "time"
	TypeActor        TypeTag = "actor"
)

// Param is one declared parameter of a command
type Param struct {
	Name string
	Type TypeTag

	// BotOnly parameters are supplied by bot code through Invoke. They never consume
	// tokens and never show up in help.
	BotOnly bool

	// Optional parameters are rendered in brackets in help. Binding is unaffected:
	// a missing token leaves any parameter unbound.
	Optional bool
}

// Handler is a command body
type Handler func(ctx context.Context, cctx *Context, args *Args) error

// Descriptor is the static shape of a command, built once at registration
type Descriptor struct {
	Name    string
	Aliases []string
	Doc     string
	Params  []Param
	Handler Handler
}

// PublicParams returns the parameters fed from user tokens, in declared order
func (d *Descriptor) PublicParams() []Param {
	params := make([]Param, 0, len(d.Params))
	for _, p := range d.Params {
		if !p.BotOnly {
			params = append(params, p)
		}
	}
	return params
}

// Signature renders the usage line, e.g. "!ban <actor> <time> [reason...]"
func (d *Descriptor) Signature(prefix string) string {
	parts := []string{prefix + d.Name}
	for _, p := range d.PublicParams() {
		name := p.Name
		if p.Type == TypeGreedyString {
			name += "..."
		}
		if p.Optional {
			parts = append(parts, "["+name+"]")
		} else {
			parts = append(parts, "<"+name+">")
		}
	}
	return strings.Join(parts, " ")
}

// Context is what a command body knows about the message that invoked it.
// Room and Author are read fresh from the repository right before dispatch.
type Context struct {
	Event  *model.MessageEvent
	Room   *model.Room
	Author *model.Actor
}
