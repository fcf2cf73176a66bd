package embeddedcli

import (
	"bytes"

	"github.com/charmbracelet/x/ansi"
)

// completion describes the command names matching the edited line.
type completion struct {
	candidates []string
	// length is the length of the longest common prefix of all candidates.
	length int
}

// complete matches the edited line against binding names. Only the command
// name is completed, so a line containing a space has no candidates.
// Bindings without a Func are documentation only and are never offered.
func (c *CLI) complete() completion {
	line := c.cmd[:c.cmdLen]
	if !c.autoComplete || c.InSubInterpreter() || bytes.IndexByte(line, ' ') >= 0 {
		return completion{}
	}

	var names []string
	for _, name := range c.bindings.Names(string(line)) {
		if b, _, _ := c.bindings.Lookup(name); b.Func != nil {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return completion{}
	}
	length := len(names[0])
	for _, name := range names[1:] {
		length = commonPrefixLen(names[0][:length], name)
	}
	return completion{candidates: names, length: length}
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// completeOnTab extends the edited line to the longest common prefix of the
// matching names. A unique match also gets a trailing space. When nothing
// can be added and several names match, they are listed and the line is
// redrawn.
func (c *CLI) completeOnTab() {
	c.clearLive()
	comp := c.complete()
	if len(comp.candidates) == 0 {
		c.showLive()
		return
	}

	c.moveRight(c.cmdLen - c.cursor)
	c.cursor = c.cmdLen
	if len(comp.candidates) == 1 || comp.length > c.cmdLen {
		add := comp.candidates[0][c.cmdLen:comp.length]
		if len(comp.candidates) == 1 {
			add += " "
		}
		if c.cmdLen+len(add) > c.maxLineLen() {
			c.showLive()
			return
		}
		c.cmdLen += copy(c.cmd[c.cmdLen:], add)
		c.cursor = c.cmdLen
		c.write(add)
		c.showLive()
		return
	}

	c.clearLine()
	for _, name := range comp.candidates {
		c.write(c.styled(styleName, name))
		c.write(lineBreak)
	}
	c.drawLine()
}

// showLive prints the part of the best completion not yet typed after the
// cursor, without moving the cursor.
func (c *CLI) showLive() {
	if c.liveLen > 0 || c.cursor != c.cmdLen || c.cmdLen == 0 {
		return
	}
	comp := c.complete()
	if len(comp.candidates) == 0 || comp.length <= c.cmdLen {
		return
	}
	suffix := comp.candidates[0][c.cmdLen:comp.length]
	c.write(c.styled(styleLive, suffix))
	c.moveLeft(len(suffix))
	c.liveLen = len(suffix)
}

// clearLive erases the inline suggestion. The cursor is at the end of the
// line whenever a suggestion is shown.
func (c *CLI) clearLive() {
	if c.liveLen == 0 {
		return
	}
	c.write(ansi.EraseLineRight)
	c.liveLen = 0
}
