package embeddedcli

// SetRawHandler bypasses the line editor: every input byte goes to fn, and
// the byte fn returns is echoed. A raw buffer handler takes precedence.
func (c *CLI) SetRawHandler(fn RawHandler) {
	c.rawHandler = fn
	c.log.Debug("raw mode", "instance", c.id, "enabled", fn != nil)
}

// ResetRawHandler returns input to the line editor and shows the prompt.
func (c *CLI) ResetRawHandler() {
	if c.rawHandler == nil {
		return
	}
	c.rawHandler = nil
	c.log.Debug("raw mode", "instance", c.id, "enabled", false)
	c.resumePrompt()
}

// SetRawBufferHandler bypasses the line editor and hands queued input to fn
// in batches on each Process call.
func (c *CLI) SetRawBufferHandler(fn RawBufferHandler) {
	c.rawBufferHandler = fn
	c.log.Debug("raw buffer mode", "instance", c.id, "enabled", fn != nil)
}

// ResetRawBufferHandler returns input to the line editor and shows the
// prompt.
func (c *CLI) ResetRawBufferHandler() {
	if c.rawBufferHandler == nil {
		return
	}
	c.rawBufferHandler = nil
	c.log.Debug("raw buffer mode", "instance", c.id, "enabled", false)
	c.resumePrompt()
}

// resumePrompt starts a fresh input line after raw output. Inside a command
// callback the prompt is printed once the command returns.
func (c *CLI) resumePrompt() {
	if c.directPrint || !c.initialized || c.closed.Load() {
		return
	}
	if c.rawHandler != nil || c.rawBufferHandler != nil {
		return
	}
	c.write(lineBreak)
	c.liveLen = 0
	c.drawLine()
}
