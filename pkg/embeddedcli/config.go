package embeddedcli

import (
	"fmt"

	"embeddedcli/internal/arena"
)

// builtinBindingCount is the number of reserved binding slots (help).
const builtinBindingCount = 1

// cmdReserved bytes at the end of the command buffer hold the terminators
// written when arguments are tokenized in place.
const cmdReserved = 2

// DefaultSubInterpreterDepth is used when Config.SubInterpreterDepth is zero.
const DefaultSubInterpreterDepth = 4

// Config describes an engine. Sizes are fixed for the engine's lifetime.
type Config struct {
	// Invitation is printed at the start of every input line.
	Invitation string

	// RxBufferSize is the capacity of the queue between ReceiveChar and Process.
	RxBufferSize int

	// CmdBufferSize bounds the line being edited. Two bytes are reserved, so
	// the longest line is CmdBufferSize-2 bytes.
	CmdBufferSize int

	// HistoryBufferSize is the byte budget for previous commands. Each entry
	// costs its length plus one. Zero disables history.
	HistoryBufferSize int

	// MaxBindingCount is the number of bindings AddBinding accepts. Slots for
	// built-in commands are reserved on top of it.
	MaxBindingCount int

	// Buffer, when non-nil, is used as the backing region and nothing is
	// allocated for internal buffers. It must be at least RequiredSize bytes.
	Buffer []byte

	// AutoComplete enables tab completion and the inline suggestion shown
	// while a command name is typed.
	AutoComplete bool

	// ColorOutput styles the invitation, help and completion output.
	ColorOutput bool

	// SubInterpreterDepth bounds nested sub-interpreters.
	SubInterpreterDepth int
}

// DefaultConfig returns the configuration used by NewDefault.
func DefaultConfig() Config {
	return Config{
		Invitation:          "> ",
		RxBufferSize:        64,
		CmdBufferSize:       64,
		HistoryBufferSize:   128,
		MaxBindingCount:     8,
		AutoComplete:        true,
		ColorOutput:         false,
		SubInterpreterDepth: DefaultSubInterpreterDepth,
	}
}

func (c Config) validate() error {
	switch {
	case c.RxBufferSize < 1:
		return fmt.Errorf("%w: rx buffer size must be positive, got %d", ErrInvalidConfig, c.RxBufferSize)
	case c.CmdBufferSize < cmdReserved+1:
		return fmt.Errorf("%w: cmd buffer size must be at least %d, got %d", ErrInvalidConfig, cmdReserved+1, c.CmdBufferSize)
	case c.HistoryBufferSize < 0:
		return fmt.Errorf("%w: history buffer size cannot be negative", ErrInvalidConfig)
	case c.MaxBindingCount < 0:
		return fmt.Errorf("%w: max binding count cannot be negative", ErrInvalidConfig)
	case c.SubInterpreterDepth < 0:
		return fmt.Errorf("%w: sub-interpreter depth cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// regionLayout lists the areas carved from the backing region, in order.
type regionLayout struct {
	rx           int
	cmd          int
	history      int
	bindingFlags int
}

func layoutFor(c Config) regionLayout {
	return regionLayout{
		rx:           c.RxBufferSize,
		cmd:          c.CmdBufferSize,
		history:      c.HistoryBufferSize,
		bindingFlags: c.MaxBindingCount + builtinBindingCount,
	}
}

// RequiredSize returns the size of the backing region New needs for cfg. It
// is always a multiple of the native word size, so a region sized with it
// keeps every internal area word aligned.
func RequiredSize(cfg Config) int {
	l := layoutFor(cfg)
	return arena.Size(l.rx, l.cmd, l.history, l.bindingFlags)
}
