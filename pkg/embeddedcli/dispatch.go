package embeddedcli

import (
	"embeddedcli/internal/bindings"
	"embeddedcli/pkg/tokens"
)

// dispatch parses the first n bytes of the command buffer and runs the
// matching binding, or the active OnCommand callback.
//
// Inside a sub-interpreter every line goes to the sub-interpreter's callback
// and bindings are not consulted.
func (c *CLI) dispatch(n int) {
	line := c.cmd[:n]
	i := 0
	for i < n && line[i] == ' ' {
		i++
	}
	nameStart := i
	for i < n && line[i] != ' ' {
		i++
	}
	nameEnd := i
	for i < n && line[i] == ' ' {
		i++
	}

	// The reserved tail lets arguments be tokenized in place.
	c.cmd[n] = 0
	c.cmd[n+1] = 0
	cmd := &Command{
		Name: string(line[nameStart:nameEnd]),
		Args: c.cmd[i:n:n+cmdReserved],
	}

	c.directPrint = true
	defer func() { c.directPrint = false }()

	if c.InSubInterpreter() {
		c.log.Debug("dispatching to sub-interpreter", "instance", c.id, "depth", len(c.frames), "command", cmd.Name)
		c.run(cmd, func() { c.onCommand(c, cmd) })
		return
	}

	b, flags, ok := c.bindings.Lookup(cmd.Name)
	if !ok || b.Func == nil {
		c.run(cmd, func() { c.onCommand(c, cmd) })
		return
	}

	if flags&bindings.FlagTokenize != 0 {
		cmd.Args = tokens.Tokenize(cmd.Args)
	}
	c.log.Debug("dispatching binding", "instance", c.id, "binding", b.Name)
	c.current = &b
	c.run(cmd, func() { b.Func(c, cmd.Args, b.Context) })
	c.current = nil
}

// run wraps fn with the execution hook.
func (c *CLI) run(cmd *Command, fn func()) {
	if hook := c.onExecution; hook != nil {
		hook(c, cmd, false)
	}
	fn()
	if hook := c.onExecution; hook != nil && !c.closed.Load() {
		hook(c, cmd, true)
	}
}

func onUnknownCommand(cli *CLI, cmd *Command) {
	cli.printUnknown(cmd.Name)
}

func (c *CLI) printUnknown(name string) {
	c.Print(c.styled(styleError, `Unknown command: "`+name+`". Write "help" for a list of available commands`))
}
