// Package history keeps previously submitted command lines in a fixed byte
// buffer.
//
// Entries are packed newest first, each followed by a 0x00 byte. When a new
// entry does not fit, entries are evicted from the oldest end. An entry longer
// than the whole buffer is never stored.
package history

// Direction selects which way Recall moves the cursor.
type Direction int

const (
	// Older moves toward the oldest entry (arrow up).
	Older Direction = iota
	// Newer moves back toward the line being edited (arrow down).
	Newer
)

// Store is a bounded history of command lines.
type Store struct {
	buf   []byte
	used  int
	count int
	// cursor is the 1-based index of the recalled entry; 0 is the fresh line.
	cursor int
}

// New returns a store that packs entries into buf.
func New(buf []byte) *Store {
	return &Store{buf: buf}
}

// Record stores line as the newest entry, evicting the oldest entries until
// it fits. It returns false when nothing was stored: line is empty, repeats
// the newest entry, or does not fit even once every entry is evicted.
// Recording resets the recall cursor.
func (s *Store) Record(line string) bool {
	s.cursor = 0
	if line == "" {
		return false
	}
	if newest, ok := s.Get(1); ok && newest == line {
		return false
	}
	need := len(line) + 1
	for s.count > 0 && len(s.buf)-s.used < need {
		s.evictOldest()
	}
	if len(s.buf)-s.used < need {
		return false
	}

	copy(s.buf[need:], s.buf[:s.used])
	copy(s.buf, line)
	s.buf[len(line)] = 0
	s.used += need
	s.count++
	return true
}

func (s *Store) evictOldest() {
	start := s.offset(s.count)
	s.used = start
	s.count--
}

// offset returns where the index-th entry (1 = newest) starts.
func (s *Store) offset(index int) int {
	off := 0
	for i := 1; i < index; i++ {
		for s.buf[off] != 0 {
			off++
		}
		off++
	}
	return off
}

// Get returns the index-th entry, 1 being the newest.
func (s *Store) Get(index int) (string, bool) {
	if index < 1 || index > s.count {
		return "", false
	}
	start := s.offset(index)
	end := start
	for s.buf[end] != 0 {
		end++
	}
	return string(s.buf[start:end]), true
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return s.count
}

// Used returns the number of buffer bytes in use.
func (s *Store) Used() int {
	return s.used
}

// Entries returns all entries, newest first.
func (s *Store) Entries() []string {
	out := make([]string, 0, s.count)
	for i := 1; i <= s.count; i++ {
		e, _ := s.Get(i)
		out = append(out, e)
	}
	return out
}

// Recall moves the cursor and returns the entry under it. Moving Older past
// the oldest entry, or Newer while already on the fresh line, returns false
// and leaves the cursor alone. Moving Newer onto the fresh line returns ""
// and true.
func (s *Store) Recall(dir Direction) (string, bool) {
	switch dir {
	case Older:
		if s.cursor >= s.count {
			return "", false
		}
		s.cursor++
	case Newer:
		if s.cursor == 0 {
			return "", false
		}
		s.cursor--
		if s.cursor == 0 {
			return "", true
		}
	default:
		return "", false
	}
	return s.Get(s.cursor)
}

// Cursor returns the recall position, 0 meaning the fresh line.
func (s *Store) Cursor() int {
	return s.cursor
}

// ResetCursor returns the cursor to the fresh line.
func (s *Store) ResetCursor() {
	s.cursor = 0
}
