// Package tokens splits a command argument string into tokens in place and
// answers position-based queries over the result.
//
// A tokenized string is a byte sequence of tokens, each followed by a single
// 0x00 byte, with one extra 0x00 after the last token. The empty token list
// is "\x00\x00". Positions are counted from 1; position 0 means "not found".
package tokens

import (
	"bytes"
	"strings"
)

// Separator terminates every token.
const Separator = 0x00

// Tokens is a view over a tokenized string. It aliases the buffer passed to
// Tokenize; popping tokens moves the view without touching the buffer.
type Tokens []byte

// Tokenize rewrites args in place. The content ends at the first 0x00 byte or
// at len(args). Runs of spaces separate tokens and double quotes group words
// into a single token; a backslash makes the next byte literal.
//
// The two terminators are written into the spare capacity of args when there
// is room, so callers that reserve two bytes past the content never allocate.
//
// Tokenize must be called only once per buffer: on an already tokenized
// buffer the content ends at the first separator and the other tokens are
// lost.
func Tokenize(args []byte) Tokens {
	end := bytes.IndexByte(args, Separator)
	if end < 0 {
		end = len(args)
	}

	out := args[:0]
	start := 0
	inToken, inQuotes, escaped := false, false, false
	open := func() {
		if !inToken {
			inToken = true
			start = len(out)
		}
	}
	// An empty quoted token ("") is dropped: a zero-length token would read
	// as the end of the list.
	closeToken := func() {
		if inToken && len(out) > start {
			out = append(out, Separator)
		}
		inToken = false
	}

	for i := 0; i < end; i++ {
		c := args[i]
		switch {
		case escaped:
			escaped = false
			out = append(out, c)
		case c == '\\':
			open()
			escaped = true
		case c == '"':
			open()
			inQuotes = !inQuotes
		case c == ' ' && !inQuotes:
			closeToken()
		default:
			open()
			out = append(out, c)
		}
	}
	closeToken()
	if len(out) == 0 {
		out = append(out, Separator)
	}
	return Tokens(append(out, Separator))
}

// FromStrings builds a tokenized string from already split tokens.
func FromStrings(tokens ...string) Tokens {
	var out []byte
	for _, tok := range tokens {
		out = append(out, tok...)
		out = append(out, Separator)
	}
	if len(out) == 0 {
		out = append(out, Separator)
	}
	return Tokens(append(out, Separator))
}

// each calls fn for every token in order until fn returns false.
func (t Tokens) each(fn func(pos int, tok []byte) bool) {
	rest := []byte(t)
	for pos := 1; len(rest) > 0 && rest[0] != Separator; pos++ {
		n := bytes.IndexByte(rest, Separator)
		if n < 0 {
			n = len(rest)
		}
		if !fn(pos, rest[:n]) {
			return
		}
		if n == len(rest) {
			return
		}
		rest = rest[n+1:]
	}
}

// Get returns the token at pos.
func (t Tokens) Get(pos int) (string, bool) {
	tok, ok := t.getBytes(pos)
	if !ok {
		return "", false
	}
	return string(tok), true
}

// GetBytes returns the token at pos as a slice aliasing the buffer, so the
// caller may modify it in place.
func (t Tokens) GetBytes(pos int) ([]byte, bool) {
	return t.getBytes(pos)
}

func (t Tokens) getBytes(pos int) ([]byte, bool) {
	if pos < 1 {
		return nil, false
	}
	var found []byte
	ok := false
	t.each(func(p int, tok []byte) bool {
		if p == pos {
			found, ok = tok, true
			return false
		}
		return true
	})
	return found, ok
}

// Pop removes the first token from the view and returns it.
func (t *Tokens) Pop() (string, bool) {
	rest := []byte(*t)
	if len(rest) == 0 || rest[0] == Separator {
		return "", false
	}
	n := bytes.IndexByte(rest, Separator)
	if n < 0 {
		*t = (*t)[len(rest):]
		return string(rest), true
	}
	tok := string(rest[:n])
	*t = (*t)[n+1:]
	return tok, true
}

// Find returns the position of the first token equal to token, or 0.
func (t Tokens) Find(token string) int {
	return t.find(func(tok []byte) bool { return string(tok) == token })
}

// FindPrefix returns the position of the first token starting with prefix, or 0.
func (t Tokens) FindPrefix(prefix string) int {
	return t.find(func(tok []byte) bool { return bytes.HasPrefix(tok, []byte(prefix)) })
}

// FindSuffix returns the position of the first token ending with suffix, or 0.
func (t Tokens) FindSuffix(suffix string) int {
	return t.find(func(tok []byte) bool { return bytes.HasSuffix(tok, []byte(suffix)) })
}

func (t Tokens) find(match func(tok []byte) bool) int {
	found := 0
	t.each(func(pos int, tok []byte) bool {
		if match(tok) {
			found = pos
			return false
		}
		return true
	})
	return found
}

// Check reports whether the token at pos equals token.
func (t Tokens) Check(token string, pos int) bool {
	tok, ok := t.getBytes(pos)
	return ok && string(tok) == token
}

// CheckPrefix reports whether the token at pos starts with prefix.
func (t Tokens) CheckPrefix(prefix string, pos int) bool {
	tok, ok := t.getBytes(pos)
	return ok && strings.HasPrefix(string(tok), prefix)
}

// CheckSuffix reports whether the token at pos ends with suffix.
func (t Tokens) CheckSuffix(suffix string, pos int) bool {
	tok, ok := t.getBytes(pos)
	return ok && strings.HasSuffix(string(tok), suffix)
}

// Count returns the number of tokens.
func (t Tokens) Count() int {
	n := 0
	t.each(func(int, []byte) bool {
		n++
		return true
	})
	return n
}

// Strings copies the tokens out.
func (t Tokens) Strings() []string {
	out := make([]string, 0, t.Count())
	t.each(func(_ int, tok []byte) bool {
		out = append(out, string(tok))
		return true
	})
	return out
}
