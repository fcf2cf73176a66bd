package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withSpare copies s into a buffer with two spare bytes of capacity, the way
// the engine hands out argument strings.
func withSpare(s string) []byte {
	buf := make([]byte, len(s), len(s)+2)
	copy(buf, s)
	return buf
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "led 1 1", "led\x001\x001\x00\x00"},
		{"extra spaces", "  led   1  ", "led\x001\x00\x00"},
		{"empty", "", "\x00\x00"},
		{"only spaces", "    ", "\x00\x00"},
		{"quoted", `say "hello world" now`, "say\x00hello world\x00now\x00\x00"},
		{"escaped quote", `a \"b`, "a\x00\"b\x00\x00"},
		{"escaped space", `a\ b c`, "a b\x00c\x00\x00"},
		{"empty quotes dropped", `a "" b`, "a\x00b\x00\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(withSpare(tt.input))
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestTokenize_InPlace(t *testing.T) {
	buf := withSpare("led 1 1")
	toks := Tokenize(buf)
	require.Len(t, toks, len("led 1 1")+2)
	assert.Same(t, &buf[0], &toks[0])
}

func TestTokenize_StopsAtTerminator(t *testing.T) {
	buf := []byte("set led\x00garbage")
	toks := Tokenize(buf)
	assert.Equal(t, []string{"set", "led"}, toks.Strings())
}

func TestTokenize_SecondCallLosesTokens(t *testing.T) {
	toks := Tokenize(withSpare("a b c"))
	again := Tokenize(toks)
	assert.Equal(t, 1, again.Count())
}

func TestTokens_Queries(t *testing.T) {
	toks := Tokenize(withSpare("led 1 1"))

	assert.Equal(t, 3, toks.Count())
	assert.Equal(t, []string{"led", "1", "1"}, toks.Strings())

	first, ok := toks.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "led", first)

	third, ok := toks.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "1", third)

	_, ok = toks.Get(4)
	assert.False(t, ok)
	_, ok = toks.Get(0)
	assert.False(t, ok)
	_, ok = toks.Get(-1)
	assert.False(t, ok)

	assert.Equal(t, 2, toks.Find("1"))
	assert.Equal(t, 0, toks.Find("2"))
	assert.Equal(t, 1, toks.FindPrefix("le"))
	assert.Equal(t, 1, toks.FindSuffix("ed"))
	assert.Equal(t, 0, toks.FindSuffix("x"))
}

func TestTokens_Check(t *testing.T) {
	toks := FromStrings("gpio", "set", "pin12")

	assert.True(t, toks.Check("set", 2))
	assert.False(t, toks.Check("set", 1))
	assert.False(t, toks.Check("set", 9))
	assert.True(t, toks.CheckPrefix("pin", 3))
	assert.False(t, toks.CheckPrefix("pin", 1))
	assert.True(t, toks.CheckSuffix("12", 3))
	assert.False(t, toks.CheckSuffix("12", 0))
}

func TestTokens_Pop(t *testing.T) {
	buf := withSpare("a bb ccc")
	toks := Tokenize(buf)
	snapshot := string(toks)

	view := toks
	var popped []string
	for {
		tok, ok := view.Pop()
		if !ok {
			break
		}
		popped = append(popped, tok)
	}

	assert.Equal(t, []string{"a", "bb", "ccc"}, popped)
	assert.Equal(t, 0, view.Count())
	assert.Equal(t, snapshot, string(toks), "pop must not modify the buffer")
}

func TestTokens_GetBytesAliases(t *testing.T) {
	toks := Tokenize(withSpare("abc def"))
	tok, ok := toks.GetBytes(2)
	require.True(t, ok)
	tok[0] = 'D'
	got, _ := toks.Get(2)
	assert.Equal(t, "Def", got)
}

func TestFromStrings_Empty(t *testing.T) {
	assert.Equal(t, "\x00\x00", string(FromStrings()))
	assert.Equal(t, 0, FromStrings().Count())
}
