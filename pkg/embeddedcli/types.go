package embeddedcli

import (
	"errors"

	"embeddedcli/internal/bindings"
)

// Errors returned by the engine. Capacity and lookup failures never panic.
var (
	ErrInvalidConfig        = errors.New("invalid cli configuration")
	ErrBufferTooSmall       = errors.New("cli buffer is too small")
	ErrInterpreterStackFull = errors.New("sub-interpreter stack is full")
	ErrClosed               = errors.New("cli is closed")

	ErrBindingTableFull   = bindings.ErrTableFull
	ErrDuplicateBinding   = bindings.ErrDuplicate
	ErrBindingNotFound    = bindings.ErrNotFound
	ErrEmptyBindingName   = bindings.ErrEmptyName
	ErrInvalidBindingName = bindings.ErrInvalidName
)

// Command is a submitted line split into its name and argument string. Args
// aliases the engine's command buffer and is only valid during the callback.
type Command struct {
	// Name is the first word of the line ("set" in "set led 1").
	Name string
	// Args is the rest of the line after the separating spaces ("led 1").
	Args []byte
}

// BindingFunc runs a bound command. args is the raw argument string, or a
// tokenized string (see package tokens) when the binding has AutoTokenize.
// Its capacity extends two bytes past its length so it can be tokenized in
// place.
type BindingFunc func(cli *CLI, args []byte, context any)

// CommandFunc receives commands that no binding handles.
type CommandFunc func(cli *CLI, cmd *Command)

// ExitFunc is called when a sub-interpreter is left.
type ExitFunc func(cli *CLI)

// RawHandler receives every input byte while installed and returns the byte
// to echo, or 0 for none.
type RawHandler func(cli *CLI, b byte) byte

// RawBufferHandler receives input in batches while installed. The slice
// aliases the receive queue and is only valid during the call.
type RawBufferHandler func(cli *CLI, buf []byte)

// ExecutionHook is called before (finished=false) and after (finished=true)
// every dispatched command.
type ExecutionHook func(cli *CLI, cmd *Command, finished bool)

// Binding associates a command name with its handler.
type Binding struct {
	// Name is matched exactly against the first word of a submitted line.
	Name string

	// Usage is a one-line synopsis such as "led <on|off>". Optional.
	Usage string

	// Help is shown by "help <name>". It may span several lines. Optional.
	Help string

	// Func handles the command. When nil, the command goes to the default
	// OnCommand callback as if it were unbound.
	Func BindingFunc

	// AutoTokenize tokenizes the arguments before Func is called.
	AutoTokenize bool

	// Context is passed to Func unchanged.
	Context any
}
