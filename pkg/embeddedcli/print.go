package embeddedcli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
)

const lineBreak = "\r\n"

// Print writes s on its own line. Outside of a command callback the line
// being edited is cleared first and redrawn below s, so asynchronous output
// never mixes with user input.
func (c *CLI) Print(s string) {
	if c.closed.Load() {
		return
	}
	if c.directPrint || !c.initialized {
		c.write(s)
		c.write(lineBreak)
		return
	}
	c.clearLine()
	c.write(s)
	c.write(lineBreak)
	c.drawLine()
}

// Printf formats according to a format specifier and prints the result like
// Print.
func (c *CLI) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

func (c *CLI) write(s string) {
	if c.out == nil || s == "" {
		return
	}
	_, _ = io.WriteString(c.out, s)
}

func (c *CLI) writeBytes(p []byte) {
	if c.out == nil || len(p) == 0 {
		return
	}
	_, _ = c.out.Write(p)
}

func (c *CLI) writeByte(b byte) {
	c.writeBytes([]byte{b})
}

func (c *CLI) writePrompt() {
	c.write(c.styled(styleInvitation, c.invitation))
}

func (c *CLI) moveLeft(n int) {
	if n > 0 {
		c.write(ansi.CursorBackward(n))
	}
}

func (c *CLI) moveRight(n int) {
	if n > 0 {
		c.write(ansi.CursorForward(n))
	}
}

// clearLine erases the whole terminal line, including the invitation and any
// inline suggestion.
func (c *CLI) clearLine() {
	c.write("\r")
	c.write(ansi.EraseLineRight)
	c.liveLen = 0
}

// drawLine writes the invitation and the edited line and puts the terminal
// cursor back at the editing position.
func (c *CLI) drawLine() {
	c.writePrompt()
	c.writeBytes(c.cmd[:c.cmdLen])
	c.moveLeft(c.cmdLen - c.cursor)
	c.showLive()
}

// redraw repaints the input line unless a command is running; the prompt is
// printed after the command returns anyway.
func (c *CLI) redraw() {
	if c.directPrint || !c.initialized || c.closed.Load() {
		return
	}
	c.clearLine()
	c.drawLine()
}
