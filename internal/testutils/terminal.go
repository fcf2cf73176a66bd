// Package testutils provides helpers for driving an engine in tests: a fake
// terminal that records output and feeds keystrokes.
package testutils

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Receiver is the input side of an engine.
type Receiver interface {
	ReceiveBuffer(p []byte) int
	Process()
}

// Terminal records everything written to it.
type Terminal struct {
	bytes.Buffer
}

// NewTerminal creates an empty terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// Type feeds input to r and processes it, splitting it when the receive
// queue cannot hold all of it at once.
func Type(r Receiver, input string) {
	rest := []byte(input)
	for len(rest) > 0 {
		n := r.ReceiveBuffer(rest)
		r.Process()
		if n == 0 {
			return
		}
		rest = rest[n:]
	}
	r.Process()
}

// Plain returns the recorded output with escape sequences removed.
func (t *Terminal) Plain() string {
	return ansi.Strip(t.String())
}

// Lines returns the plain output split on CRLF line breaks.
func (t *Terminal) Lines() []string {
	return strings.Split(t.Plain(), "\r\n")
}

// Take returns the raw recorded output and clears it.
func (t *Terminal) Take() string {
	s := t.String()
	t.Reset()
	return s
}
