package embeddedcli

// frame saves the interpreter state replaced by EnterSubInterpreter.
type frame struct {
	onCommand  CommandFunc
	invitation string
	onExit     ExitFunc
}

// EnterSubInterpreter routes every following line to onCommand and shows
// invitation instead of the current one until ExitSubInterpreter is called
// or the user presses Ctrl-D. Sub-interpreters nest up to the configured
// depth.
func (c *CLI) EnterSubInterpreter(onCommand CommandFunc, onExit ExitFunc, invitation string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if len(c.frames) == cap(c.frames) {
		return ErrInterpreterStackFull
	}
	if onCommand == nil {
		onCommand = onUnknownCommand
	}

	c.frames = append(c.frames, frame{
		onCommand:  c.onCommand,
		invitation: c.invitation,
		onExit:     onExit,
	})
	c.onCommand = onCommand
	c.invitation = invitation
	c.log.Debug("sub-interpreter entered", "instance", c.id, "depth", len(c.frames))
	c.redraw()
	return nil
}

// ExitSubInterpreter restores the interpreter that was active before the
// last EnterSubInterpreter and then calls its onExit. At top level it does
// nothing.
func (c *CLI) ExitSubInterpreter() {
	if len(c.frames) == 0 {
		return
	}
	last := len(c.frames) - 1
	f := c.frames[last]
	c.frames[last] = frame{}
	c.frames = c.frames[:last]

	c.onCommand = f.onCommand
	c.invitation = f.invitation
	c.log.Debug("sub-interpreter exited", "instance", c.id, "depth", len(c.frames))
	if f.onExit != nil {
		f.onExit(c)
	}
	c.redraw()
}

// InSubInterpreter reports whether a sub-interpreter is active.
func (c *CLI) InSubInterpreter() bool {
	return len(c.frames) > 0
}

// SubInterpreterDepth returns the number of active sub-interpreters.
func (c *CLI) SubInterpreterDepth() int {
	return len(c.frames)
}
