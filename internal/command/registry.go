package command

import "github.com/ehrlich-b/pedis/internal/protocol"

// Handler executes one command against a Context and returns the reply
// bytes to enqueue on the Session.
type Handler func(ctx *Context) []byte

// Command is one entry in the declarative table spec.md §4.3 describes:
// "populated at startup by a declarative table; it is immutable
// thereafter."
//
// Arity includes the command token itself, per spec.md §4.3. A negative
// Arity is a minimum-arity sentinel: -N means "at least N" (sinter,
// sinterstore), since those commands are the only ones with unbounded
// argument counts.
type Command struct {
	Name  string
	Arity int
	Kind  protocol.CommandKind
	Fn    Handler
}

func (c Command) arityOK(argc int) bool {
	if c.Arity < 0 {
		return argc >= -c.Arity
	}
	return argc == c.Arity
}

// Registry is the immutable, exact-lowercase-name command table. Lookup
// is case-sensitive by contract (spec.md §4.3: "callers must send
// lowercase").
type Registry struct {
	commands map[string]Command
}

// NewRegistry builds the full table of every command spec.md §4.3 names.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]Command)}
	r.register(stringCommands()...)
	r.register(listCommands()...)
	r.register(setCommands()...)
	r.register(adminCommands()...)
	return r
}

func (r *Registry) register(cmds ...Command) {
	for _, c := range cmds {
		r.commands[c.Name] = c
	}
}

// Lookup resolves name to its Command, reporting ok=false if unregistered.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Kind adapts Lookup to protocol.Lookup, so internal/protocol.Codec can
// decide bulk-tail framing without importing this package.
func (r *Registry) Kind(name string) (protocol.CommandKind, bool) {
	c, ok := r.commands[name]
	if !ok {
		return protocol.KindInline, false
	}
	return c.Kind, true
}

// Dispatch runs argv[0]'s handler against ctx, enforcing the lookup and
// arity checks spec.md §4.2 assigns to the Session's DISPATCH step.
// Callers that want Session-level behavior (unknown command / arity
// replies) use this instead of Lookup+Fn directly.
func (r *Registry) Dispatch(ctx *Context) []byte {
	argv := ctx.Argv
	if len(argv) == 0 {
		return protocol.ErrUnknownCommand
	}
	cmd, ok := r.Lookup(string(argv[0]))
	if !ok {
		return protocol.ErrUnknownCommand
	}
	if !cmd.arityOK(len(argv)) {
		return protocol.ErrWrongArity
	}
	return cmd.Fn(ctx)
}
