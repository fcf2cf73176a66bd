package embeddedcli

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"embeddedcli/internal/arena"
	"embeddedcli/internal/bindings"
	"embeddedcli/internal/fifo"
	"embeddedcli/internal/history"
	"embeddedcli/internal/logger"
)

// CLI is one engine instance. Create it with New or NewDefault.
type CLI struct {
	id  string
	log *log.Logger

	out        io.Writer
	invitation string
	onCommand  CommandFunc

	region []byte
	static bool
	// closed is read by producer goroutines in ReceiveChar and ReceiveBuffer.
	closed atomic.Bool

	rx       *fifo.Queue
	cmd      []byte
	cmdLen   int
	cursor   int
	history  *history.Store
	bindings *bindings.Table[Binding]
	frames   []frame

	autoComplete bool
	palette      *palette

	editor      editorState
	initialized bool
	processing  bool
	directPrint bool
	liveLen     int
	current     *Binding

	rawHandler       RawHandler
	rawBufferHandler RawBufferHandler
	onExecution      ExecutionHook
}

// New creates an engine from cfg. When cfg.Buffer is set it becomes the
// backing region; otherwise a region of RequiredSize(cfg) bytes is allocated.
func New(cfg Config) (*CLI, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	size := RequiredSize(cfg)
	region := cfg.Buffer
	static := region != nil
	if static {
		if len(region) < size {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, size, len(region))
		}
	} else {
		region = make([]byte, size)
	}

	l := layoutFor(cfg)
	a := arena.New(region)
	rxBuf, err := a.Alloc(l.rx)
	if err != nil {
		return nil, fmt.Errorf("carving rx buffer: %w", err)
	}
	cmdBuf, err := a.Alloc(l.cmd)
	if err != nil {
		return nil, fmt.Errorf("carving cmd buffer: %w", err)
	}
	historyBuf, err := a.Alloc(l.history)
	if err != nil {
		return nil, fmt.Errorf("carving history buffer: %w", err)
	}
	flags, err := a.Alloc(l.bindingFlags)
	if err != nil {
		return nil, fmt.Errorf("carving binding flags: %w", err)
	}

	depth := cfg.SubInterpreterDepth
	if depth == 0 {
		depth = DefaultSubInterpreterDepth
	}

	c := &CLI{
		id:           uuid.NewString(),
		log:          logger.NewStyledLogger("cli"),
		invitation:   cfg.Invitation,
		onCommand:    onUnknownCommand,
		region:       region,
		static:       static,
		rx:           fifo.New(rxBuf),
		cmd:          cmdBuf,
		history:      history.New(historyBuf),
		bindings:     bindings.New[Binding](cfg.MaxBindingCount, builtinBindingCount, flags),
		frames:       make([]frame, 0, depth),
		autoComplete: cfg.AutoComplete,
	}
	if cfg.ColorOutput {
		c.palette = newPalette()
	}
	if err := c.addBuiltins(); err != nil {
		return nil, err
	}

	c.log.Debug("engine created", "instance", c.id, "region", size, "static", static)
	return c, nil
}

// NewDefault creates an engine with DefaultConfig.
func NewDefault() (*CLI, error) {
	return New(DefaultConfig())
}

// Close releases the engine. A caller-supplied region is left untouched and
// may be reused once Close returns. Every later call is a no-op. Close runs
// on the goroutine that calls Process; producers may still be calling
// ReceiveChar or ReceiveBuffer, which drop their input from then on.
func (c *CLI) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.rx.Reset()
	c.region = nil
	c.log.Debug("engine closed", "instance", c.id, "static", c.static)
}

// ID identifies the engine in log output.
func (c *CLI) ID() string {
	return c.id
}

// SetWriter sets the output sink. A nil writer silences all output.
func (c *CLI) SetWriter(w io.Writer) {
	c.out = w
}

// SetOnCommand sets the callback for commands no binding handles. Passing
// nil restores the default, which reports the command as unknown.
func (c *CLI) SetOnCommand(fn CommandFunc) {
	if fn == nil {
		fn = onUnknownCommand
	}
	c.onCommand = fn
}

// ReceiveChar queues one input byte. When the queue is full the byte is
// dropped. It may be called from a producer goroutine while another
// goroutine runs Process.
func (c *CLI) ReceiveChar(b byte) {
	if c.closed.Load() {
		return
	}
	c.rx.Push(b)
}

// ReceiveBuffer queues p and returns how many bytes were accepted; the rest
// is dropped.
func (c *CLI) ReceiveBuffer(p []byte) int {
	if c.closed.Load() {
		return 0
	}
	return c.rx.Write(p)
}

// Process consumes queued input: it edits the current line, dispatches
// submitted commands and writes the echo. The invitation is printed on the
// first call. Calls made from inside a callback return immediately.
func (c *CLI) Process() {
	if c.closed.Load() || c.processing {
		return
	}
	c.processing = true
	defer func() { c.processing = false }()

	if !c.initialized {
		c.initialized = true
		c.writePrompt()
	}

	for !c.closed.Load() {
		if c.rawBufferHandler != nil {
			c.rx.Drain(func(chunk []byte) {
				if h := c.rawBufferHandler; h != nil {
					h(c, chunk)
					return
				}
				for _, b := range chunk {
					c.onByte(b)
				}
			})
			return
		}

		b, ok := c.rx.Pop()
		if !ok {
			return
		}
		if c.rawHandler != nil {
			if echo := c.rawHandler(c, b); echo != 0 {
				c.writeByte(echo)
			}
			continue
		}
		c.onByte(b)
	}
}

// AddBinding registers a command. It fails with ErrBindingTableFull,
// ErrDuplicateBinding, ErrEmptyBindingName or ErrInvalidBindingName and
// leaves the table unchanged. Names may not contain spaces or NUL bytes.
func (c *CLI) AddBinding(b Binding) error {
	if c.closed.Load() {
		return ErrClosed
	}
	var flags byte
	if b.AutoTokenize {
		flags |= bindings.FlagTokenize
	}
	if err := c.bindings.Add(b.Name, b, flags); err != nil {
		c.log.Debug("binding rejected", "instance", c.id, "binding", b.Name, "error", err)
		return fmt.Errorf("adding %q: %w", b.Name, err)
	}
	c.log.Debug("binding added", "instance", c.id, "binding", b.Name)
	return nil
}

// RemoveBinding unregisters a user command. Built-in commands cannot be
// removed.
func (c *CLI) RemoveBinding(name string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.bindings.Remove(name); err != nil {
		return fmt.Errorf("removing %q: %w", name, err)
	}
	c.log.Debug("binding removed", "instance", c.id, "binding", name)
	return nil
}

// Bindings returns the registered commands in lookup order, built-ins last.
func (c *CLI) Bindings() []Binding {
	out := make([]Binding, 0, c.bindings.Len())
	c.bindings.Each(func(_ string, b Binding, _ byte) bool {
		out = append(out, b)
		return true
	})
	return out
}

// HistoryLen returns the number of stored history entries.
func (c *CLI) HistoryLen() int {
	return c.history.Len()
}

// History returns the stored commands, newest first.
func (c *CLI) History() []string {
	return c.history.Entries()
}

// Line returns the line currently being edited.
func (c *CLI) Line() string {
	return string(c.cmd[:c.cmdLen])
}

// Invitation returns the invitation currently in effect.
func (c *CLI) Invitation() string {
	return c.invitation
}

// SetInvitation replaces the invitation of the active interpreter and
// redraws the input line.
func (c *CLI) SetInvitation(invitation string) {
	c.invitation = invitation
	c.redraw()
}

// SetOnCommandExecution installs a hook run around every dispatched command.
func (c *CLI) SetOnCommandExecution(hook ExecutionHook) {
	c.onExecution = hook
}

// ResetOnCommandExecution removes the execution hook.
func (c *CLI) ResetOnCommandExecution() {
	c.onExecution = nil
}
