// Package bindings provides the bounded command-name table used by the
// engine. Lookup is a linear, case-sensitive scan; capacity is fixed when the
// table is created.
package bindings

import (
	"errors"
	"strings"
)

var (
	// ErrTableFull is returned when every user slot is taken.
	ErrTableFull = errors.New("binding table is full")
	// ErrDuplicate is returned when a user binding with the same name exists.
	ErrDuplicate = errors.New("binding already exists")
	// ErrNotFound is returned when no removable binding has the given name.
	ErrNotFound = errors.New("binding not found")
	// ErrEmptyName is returned for bindings without a name.
	ErrEmptyName = errors.New("binding name cannot be empty")
	// ErrInvalidName is returned for names the tokenizer could never produce.
	ErrInvalidName = errors.New("binding name cannot contain spaces or NUL")
)

// Flag bits stored per slot.
const (
	// FlagTokenize asks the dispatcher to tokenize arguments before the call.
	FlagTokenize byte = 1 << iota
	// FlagBuiltin marks a reserved slot owned by the engine.
	FlagBuiltin
)

type entry[T any] struct {
	name  string
	value T
}

// Table maps names to values. User entries are kept in insertion order ahead
// of built-in entries, so a user binding shadows a built-in of the same name.
type Table[T any] struct {
	entries    []entry[T]
	flags      []byte
	users      int
	userCap    int
	builtins   int
	builtinCap int
}

// New creates a table with userCap user slots and builtinCap reserved slots.
// flags must hold at least userCap+builtinCap bytes; it is typically carved
// from the engine's backing region.
func New[T any](userCap, builtinCap int, flags []byte) *Table[T] {
	total := userCap + builtinCap
	return &Table[T]{
		entries:    make([]entry[T], 0, total),
		flags:      flags[:total:total],
		userCap:    userCap,
		builtinCap: builtinCap,
	}
}

// Add appends a user binding. The table is left untouched on error.
func (t *Table[T]) Add(name string, value T, flags byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if t.users >= t.userCap {
		return ErrTableFull
	}
	if t.indexOf(name, false) >= 0 {
		return ErrDuplicate
	}

	// Keep built-ins at the tail: shift them right by one.
	t.entries = append(t.entries, entry[T]{})
	copy(t.entries[t.users+1:], t.entries[t.users:len(t.entries)-1])
	copy(t.flags[t.users+1:len(t.entries)], t.flags[t.users:len(t.entries)-1])
	t.entries[t.users] = entry[T]{name: name, value: value}
	t.flags[t.users] = flags &^ FlagBuiltin
	t.users++
	return nil
}

// AddBuiltin fills a reserved slot. It fails with ErrTableFull when every
// reserved slot is in use.
func (t *Table[T]) AddBuiltin(name string, value T, flags byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if t.builtins >= t.builtinCap {
		return ErrTableFull
	}
	t.entries = append(t.entries, entry[T]{name: name, value: value})
	t.flags[len(t.entries)-1] = flags | FlagBuiltin
	t.builtins++
	return nil
}

func validName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, " \x00") {
		return ErrInvalidName
	}
	return nil
}

// Remove deletes the user binding called name. Built-ins cannot be removed.
func (t *Table[T]) Remove(name string) error {
	i := t.indexOf(name, false)
	if i < 0 {
		return ErrNotFound
	}
	copy(t.entries[i:], t.entries[i+1:])
	copy(t.flags[i:len(t.entries)], t.flags[i+1:len(t.entries)])
	var zero entry[T]
	t.entries[len(t.entries)-1] = zero
	t.entries = t.entries[:len(t.entries)-1]
	t.flags[len(t.entries)] = 0
	t.users--
	return nil
}

// Lookup returns the first binding called name, user bindings first.
func (t *Table[T]) Lookup(name string) (T, byte, bool) {
	i := t.indexOf(name, true)
	if i < 0 {
		var zero T
		return zero, 0, false
	}
	return t.entries[i].value, t.flags[i], true
}

func (t *Table[T]) indexOf(name string, withBuiltins bool) int {
	limit := t.users
	if withBuiltins {
		limit = len(t.entries)
	}
	for i := 0; i < limit; i++ {
		if t.entries[i].name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of bindings, built-ins included.
func (t *Table[T]) Len() int {
	return len(t.entries)
}

// UserLen returns the number of user bindings.
func (t *Table[T]) UserLen() int {
	return t.users
}

// Cap returns the number of user slots.
func (t *Table[T]) Cap() int {
	return t.userCap
}

// Each visits bindings in lookup order until fn returns false.
func (t *Table[T]) Each(fn func(name string, value T, flags byte) bool) {
	for i, e := range t.entries {
		if !fn(e.name, e.value, t.flags[i]) {
			return
		}
	}
}

// Names returns the names starting with prefix in lookup order. A built-in
// shadowed by a user binding is listed once.
func (t *Table[T]) Names(prefix string) []string {
	var names []string
	for i, e := range t.entries {
		if !strings.HasPrefix(e.name, prefix) {
			continue
		}
		if i >= t.users && t.indexOf(e.name, false) >= 0 {
			continue
		}
		names = append(names, e.name)
	}
	return names
}
