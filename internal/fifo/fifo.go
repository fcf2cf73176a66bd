// Package fifo implements a fixed-capacity single-producer single-consumer
// byte queue over a caller-provided slice.
//
// One goroutine (or interrupt-like context) may push while another pops.
// Concurrent pushes or concurrent pops are not supported and are not guarded.
package fifo

import "sync/atomic"

// Queue is a byte ring buffer. The zero value has no capacity.
type Queue struct {
	buf []byte
	// head and tail run over [0, 2*len(buf)) so that a full queue and an
	// empty queue are distinguishable without sacrificing a slot.
	head atomic.Uint32
	tail atomic.Uint32
}

// New returns a queue that stores up to len(buf) bytes in buf.
func New(buf []byte) *Queue {
	return &Queue{buf: buf}
}

// Cap returns the number of bytes the queue can hold.
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int {
	return q.fill(q.head.Load(), q.tail.Load())
}

// Free returns the number of bytes that can be pushed before the queue is full.
func (q *Queue) Free() int {
	return q.Cap() - q.Len()
}

// Push appends b. It returns false and drops b when the queue is full.
// Producer side only.
func (q *Queue) Push(b byte) bool {
	tail := q.tail.Load()
	if q.fill(q.head.Load(), tail) >= len(q.buf) {
		return false
	}
	q.buf[q.index(tail)] = b
	q.tail.Store(q.advance(tail, 1))
	return true
}

// Write pushes as many bytes of p as fit and returns how many were accepted.
// The rest are dropped. Producer side only.
func (q *Queue) Write(p []byte) int {
	n := 0
	for _, b := range p {
		if !q.Push(b) {
			break
		}
		n++
	}
	return n
}

// Pop removes the oldest byte. Consumer side only.
func (q *Queue) Pop() (byte, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return 0, false
	}
	b := q.buf[q.index(head)]
	q.head.Store(q.advance(head, 1))
	return b, true
}

// Drain hands every currently queued byte to fn in at most two contiguous
// chunks (the ring may wrap) and then releases them. The chunks alias the
// queue storage and are only valid during the call. Consumer side only.
func (q *Queue) Drain(fn func(chunk []byte)) int {
	head := q.head.Load()
	tail := q.tail.Load()
	n := q.fill(head, tail)
	if n == 0 {
		return 0
	}
	start := q.index(head)
	first := min(n, len(q.buf)-start)
	fn(q.buf[start : start+first])
	if first < n {
		fn(q.buf[:n-first])
	}
	q.head.Store(tail)
	return n
}

// Reset discards all queued bytes. Consumer side only.
func (q *Queue) Reset() {
	q.head.Store(q.tail.Load())
}

func (q *Queue) fill(head, tail uint32) int {
	span := 2 * uint32(len(q.buf))
	if span == 0 {
		return 0
	}
	return int((tail + span - head) % span)
}

func (q *Queue) index(counter uint32) int {
	i := int(counter)
	if i >= len(q.buf) {
		i -= len(q.buf)
	}
	return i
}

func (q *Queue) advance(counter uint32, n int) uint32 {
	return (counter + uint32(n)) % (2 * uint32(len(q.buf)))
}
