package sysaction

import (
	"errors"
	"fmt"

	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/params"
)

// ErrUnknownAction is returned when no registered handler accepts an action.
var ErrUnknownAction = errors.New("unknown system action")

// Context carries information available to a system-action handler.
type Context struct {
	From        common.Address // verified transaction sender
	Sequence    uint64         // ledger sequence of the enclosing transaction
	StateDB     vm.StateDB
	ChainConfig *params.ChainConfig
}

// Handler is implemented by the system, token and vault programs.
type Handler interface {
	CanHandle(kind ActionKind) bool
	Handle(ctx *Context, sa *SysAction) error
}

// Registry holds registered handlers.
type Registry struct{ handlers []Handler }

// DefaultRegistry is the process-wide handler registry.
var DefaultRegistry = &Registry{}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) { r.handlers = append(r.handlers, h) }

// Lookup returns the handler accepting kind, or nil.
func (r *Registry) Lookup(kind ActionKind) Handler {
	for _, h := range r.handlers {
		if h.CanHandle(kind) {
			return h
		}
	}
	return nil
}

// Execute decodes data as a SysAction and dispatches it to the handler
// registered for its kind. The caller owns snapshot and revert.
func (r *Registry) Execute(ctx *Context, data []byte) (*SysAction, error) {
	sa, err := Decode(data)
	if err != nil {
		return nil, err
	}
	h := r.Lookup(sa.Action)
	if h == nil {
		return sa, fmt.Errorf("%w: %q", ErrUnknownAction, sa.Action)
	}
	return sa, h.Handle(ctx, sa)
}

// Execute dispatches using the DefaultRegistry.
func Execute(ctx *Context, data []byte) (*SysAction, error) {
	return DefaultRegistry.Execute(ctx, data)
}
