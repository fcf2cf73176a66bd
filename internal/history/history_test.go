package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ImmediateRepeatIsStoredOnce(t *testing.T) {
	s := New(make([]byte, 64))

	assert.True(t, s.Record("set led 1"))
	assert.False(t, s.Record("set led 1"))
	assert.Equal(t, 1, s.Len())
}

func TestStore_NonConsecutiveRepeatIsStored(t *testing.T) {
	s := New(make([]byte, 64))

	s.Record("a")
	s.Record("b")
	s.Record("a")

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b", "a"}, s.Entries())
}

func TestStore_EvictsOldest(t *testing.T) {
	// Room for exactly two one-byte entries with their terminators.
	s := New(make([]byte, 4))

	require.True(t, s.Record("a"))
	require.True(t, s.Record("b"))
	require.True(t, s.Record("c"))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"c", "b"}, s.Entries())

	first, ok := s.Recall(Older)
	require.True(t, ok)
	second, ok := s.Recall(Older)
	require.True(t, ok)
	assert.Equal(t, "c", first)
	assert.Equal(t, "b", second)

	_, ok = s.Recall(Older)
	assert.False(t, ok, "no entry older than the oldest")
}

func TestStore_EvictsSeveralForLongEntry(t *testing.T) {
	s := New(make([]byte, 8))
	s.Record("ab")
	s.Record("cd")
	s.Record("ef") // buffer full: "ef\0cd\0ab\0" would need 9

	assert.Equal(t, []string{"ef", "cd"}, s.Entries())

	s.Record("long123")
	assert.Equal(t, []string{"long123"}, s.Entries())
	assert.Equal(t, 8, s.Used())
}

func TestStore_OversizedEntryDropped(t *testing.T) {
	s := New(make([]byte, 6))
	s.Record("abc")

	assert.False(t, s.Record("too-long"))
	assert.Empty(t, s.Entries(), "entries are evicted before the line is found not to fit")
	assert.Zero(t, s.Used())

	assert.True(t, s.Record("abc"))
}

func TestStore_EmptyLineIgnored(t *testing.T) {
	s := New(make([]byte, 6))
	assert.False(t, s.Record(""))
	assert.Equal(t, 0, s.Len())
}

func TestStore_ZeroSize(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Record("x"))
	_, ok := s.Recall(Older)
	assert.False(t, ok)
}

func TestStore_RecallRoundTrip(t *testing.T) {
	s := New(make([]byte, 64))
	for _, line := range []string{"one", "two", "three"} {
		s.Record(line)
	}

	var got []string
	for {
		line, ok := s.Recall(Older)
		if !ok {
			break
		}
		got = append(got, line)
	}
	assert.Equal(t, []string{"three", "two", "one"}, got)
	assert.Equal(t, 3, s.Cursor())

	line, ok := s.Recall(Newer)
	assert.True(t, ok)
	assert.Equal(t, "two", line)
	line, ok = s.Recall(Newer)
	assert.True(t, ok)
	assert.Equal(t, "three", line)
	line, ok = s.Recall(Newer)
	assert.True(t, ok)
	assert.Equal(t, "", line, "back on the fresh line")
	_, ok = s.Recall(Newer)
	assert.False(t, ok)
}

func TestStore_RecordResetsCursor(t *testing.T) {
	s := New(make([]byte, 64))
	s.Record("x")
	s.Record("y")
	_, _ = s.Recall(Older)
	require.Equal(t, 1, s.Cursor())

	s.Record("z")
	assert.Equal(t, 0, s.Cursor())
	line, _ := s.Recall(Older)
	assert.Equal(t, "z", line)
}
