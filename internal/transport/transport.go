// Package transport moves bytes between a byte stream and an engine: Pump is
// the producer side feeding received bytes in, TxQueue batches output until
// the owner flushes it.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"embeddedcli/internal/fifo"
	"embeddedcli/internal/logger"
)

// Receiver accepts input bytes and reports how many it took.
type Receiver interface {
	ReceiveBuffer(p []byte) int
}

// retryDelay is how long Pump waits for the receiver to drain when it
// refuses bytes.
const retryDelay = time.Millisecond

// Pump copies r into rx until r is exhausted or ctx is cancelled. Bytes the
// receiver cannot take yet are offered again, so nothing read from r is
// dropped. Reaching EOF returns nil.
//
// A Read blocked in r is not interrupted by ctx; cancellation takes effect
// once it returns.
func Pump(ctx context.Context, r io.Reader, rx Receiver, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = 64
	}
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if err := deliver(ctx, rx, buf[:n]); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			logger.Debug("Transport input closed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("transport read failed: %w", err)
		}
	}
}

func deliver(ctx context.Context, rx Receiver, p []byte) error {
	for len(p) > 0 {
		n := rx.ReceiveBuffer(p)
		p = p[n:]
		if len(p) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil
}

// TxQueue buffers output in a fixed ring and writes it to the sink on Flush,
// or earlier when the ring fills up. It is used from the consumer goroutine
// only.
type TxQueue struct {
	q    *fifo.Queue
	sink io.Writer
	err  error
}

// NewTxQueue creates a queue of size bytes in front of sink.
func NewTxQueue(sink io.Writer, size int) *TxQueue {
	return &TxQueue{q: fifo.New(make([]byte, size)), sink: sink}
}

// Write queues p, flushing whenever the ring is full. It only fails when the
// sink did.
func (t *TxQueue) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n := t.q.Write(p[written:])
		written += n
		if written < len(p) {
			if err := t.Flush(); err != nil {
				return written, err
			}
			if t.q.Cap() == 0 {
				if _, err := t.sink.Write(p[written:]); err != nil {
					return written, t.fail(err)
				}
				return len(p), nil
			}
		}
	}
	return written, nil
}

// Flush writes every queued byte to the sink. After a sink error the queue
// discards output and keeps returning that error.
func (t *TxQueue) Flush() error {
	if t.err != nil {
		t.q.Reset()
		return t.err
	}
	t.q.Drain(func(chunk []byte) {
		if t.err != nil {
			return
		}
		if _, err := t.sink.Write(chunk); err != nil {
			t.fail(err)
		}
	})
	return t.err
}

// Len reports the number of queued bytes.
func (t *TxQueue) Len() int {
	return t.q.Len()
}

func (t *TxQueue) fail(err error) error {
	t.err = fmt.Errorf("transport write failed: %w", err)
	logger.Error("Transport write failed", "error", err)
	return t.err
}
