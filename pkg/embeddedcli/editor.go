package embeddedcli

import (
	"embeddedcli/internal/history"
)

// Control bytes understood by the editor.
const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x08
	keyTab       = 0x09
	keyLF        = 0x0A
	keyCR        = 0x0D
	keyEscape    = 0x1B
	keyDelete    = 0x7F
)

type escapeState int

const (
	escapeNone escapeState = iota
	escapeStarted
	escapeCSI
)

// maxEscapeParams bounds the parameter bytes kept for one CSI sequence; any
// extra bytes are consumed and ignored.
const maxEscapeParams = 4

type editorState struct {
	escape    escapeState
	params    [maxEscapeParams]byte
	paramsLen int
	// lastEOL is the line terminator that submitted the previous line, or 0.
	// The other terminator arriving right after it completes a CRLF or LFCR
	// pair and is ignored.
	lastEOL byte
}

func (c *CLI) onByte(b byte) {
	switch c.editor.escape {
	case escapeStarted:
		c.onEscapeIntroducer(b)
		return
	case escapeCSI:
		c.onEscapeByte(b)
		return
	}

	if b == keyCR || b == keyLF {
		if c.editor.lastEOL != 0 && c.editor.lastEOL != b {
			c.editor.lastEOL = 0
			return
		}
		c.editor.lastEOL = b
		c.submit()
		return
	}
	c.editor.lastEOL = 0

	switch b {
	case keyEscape:
		c.editor.escape = escapeStarted
	case keyBackspace, keyDelete:
		c.backspace()
	case keyTab:
		c.completeOnTab()
	case keyCtrlC:
		c.cancelLine()
	case keyCtrlD:
		c.leaveOnEOF()
	default:
		if b >= 0x20 {
			c.insert(b)
		}
	}
}

func (c *CLI) onEscapeIntroducer(b byte) {
	if b == '[' || b == 'O' {
		c.editor.escape = escapeCSI
		c.editor.paramsLen = 0
		return
	}
	c.editor.escape = escapeNone
	// Two-byte sequences (Alt+key) are swallowed; control bytes keep their
	// meaning.
	if isControl(b) {
		c.onByte(b)
	}
}

func (c *CLI) onEscapeByte(b byte) {
	switch {
	case b == keyEscape:
		c.editor.escape = escapeStarted
		return
	case isControl(b):
		c.editor.escape = escapeNone
		c.onByte(b)
		return
	case b >= 0x30 && b <= 0x3F:
		if c.editor.paramsLen < maxEscapeParams {
			c.editor.params[c.editor.paramsLen] = b
			c.editor.paramsLen++
		}
		return
	case b >= 0x20 && b <= 0x2F:
		return
	}

	c.editor.escape = escapeNone
	params := string(c.editor.params[:c.editor.paramsLen])
	switch b {
	case 'A':
		c.recall(history.Older)
	case 'B':
		c.recall(history.Newer)
	case 'C':
		c.cursorRight()
	case 'D':
		c.cursorLeft()
	case 'H':
		c.cursorHome()
	case 'F':
		c.cursorEnd()
	case '~':
		switch params {
		case "1", "7":
			c.cursorHome()
		case "4", "8":
			c.cursorEnd()
		case "3":
			c.deleteAtCursor()
		}
	default:
		c.log.Debug("escape sequence ignored", "instance", c.id, "final", string(b), "params", params)
	}
}

func isControl(b byte) bool {
	return b < 0x20 || b == keyDelete
}

func (c *CLI) maxLineLen() int {
	return len(c.cmd) - cmdReserved
}

// insert puts b at the cursor. Bytes that do not fit are ignored.
func (c *CLI) insert(b byte) {
	if c.cmdLen >= c.maxLineLen() {
		return
	}
	c.clearLive()
	copy(c.cmd[c.cursor+1:c.cmdLen+1], c.cmd[c.cursor:c.cmdLen])
	c.cmd[c.cursor] = b
	c.cmdLen++
	c.cursor++

	c.writeBytes(c.cmd[c.cursor-1 : c.cmdLen])
	c.moveLeft(c.cmdLen - c.cursor)
	c.showLive()
}

func (c *CLI) backspace() {
	if c.cursor == 0 {
		return
	}
	c.clearLive()
	copy(c.cmd[c.cursor-1:], c.cmd[c.cursor:c.cmdLen])
	c.cmdLen--
	c.cursor--

	tail := c.cmd[c.cursor:c.cmdLen]
	if len(tail) == 0 {
		c.write("\b \b")
	} else {
		c.writeByte('\b')
		c.writeBytes(tail)
		c.writeByte(' ')
		c.moveLeft(len(tail) + 1)
	}
	c.showLive()
}

func (c *CLI) deleteAtCursor() {
	if c.cursor >= c.cmdLen {
		return
	}
	copy(c.cmd[c.cursor:], c.cmd[c.cursor+1:c.cmdLen])
	c.cmdLen--

	tail := c.cmd[c.cursor:c.cmdLen]
	c.writeBytes(tail)
	c.writeByte(' ')
	c.moveLeft(len(tail) + 1)
	c.showLive()
}

func (c *CLI) cursorLeft() {
	if c.cursor == 0 {
		return
	}
	c.clearLive()
	c.cursor--
	c.moveLeft(1)
}

func (c *CLI) cursorRight() {
	if c.cursor >= c.cmdLen {
		return
	}
	c.cursor++
	c.moveRight(1)
	c.showLive()
}

func (c *CLI) cursorHome() {
	c.clearLive()
	c.moveLeft(c.cursor)
	c.cursor = 0
}

func (c *CLI) cursorEnd() {
	c.moveRight(c.cmdLen - c.cursor)
	c.cursor = c.cmdLen
	c.showLive()
}

// recall replaces the edited line with a history entry.
func (c *CLI) recall(dir history.Direction) {
	line, ok := c.history.Recall(dir)
	if !ok {
		return
	}
	if len(line) > c.maxLineLen() {
		line = line[:c.maxLineLen()]
	}
	c.clearLine()
	c.cmdLen = copy(c.cmd, line)
	c.cursor = c.cmdLen
	c.drawLine()
}

// resetLine forgets the edited line without touching the terminal.
func (c *CLI) resetLine() {
	c.cmdLen = 0
	c.cursor = 0
	c.history.ResetCursor()
}

func (c *CLI) cancelLine() {
	c.clearLive()
	c.moveRight(c.cmdLen - c.cursor)
	c.write("^C")
	c.write(lineBreak)
	c.resetLine()
	c.writePrompt()
}

// leaveOnEOF exits the active sub-interpreter on Ctrl-D. At top level the
// key is ignored.
func (c *CLI) leaveOnEOF() {
	if !c.InSubInterpreter() {
		return
	}
	c.clearLive()
	c.write(lineBreak)
	c.resetLine()

	c.directPrint = true
	c.ExitSubInterpreter()
	c.directPrint = false
	if !c.closed.Load() {
		c.writePrompt()
	}
}

// submit ends the edited line and dispatches it.
func (c *CLI) submit() {
	c.clearLive()
	c.write(lineBreak)

	n := c.cmdLen
	line := c.cmd[:n]
	c.resetLine()
	if isBlank(line) {
		c.writePrompt()
		return
	}

	if !c.history.Record(string(line)) {
		c.log.Debug("line not recorded", "instance", c.id, "len", n)
	}
	c.dispatch(n)
	if !c.closed.Load() && c.rawHandler == nil && c.rawBufferHandler == nil {
		c.writePrompt()
	}
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' {
			return false
		}
	}
	return true
}
