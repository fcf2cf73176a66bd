// Package embeddedcli is an interactive command-line engine for byte-oriented
// terminals: a line editor with history and autocompletion, a bounded table
// of command bindings, nested sub-interpreters and raw passthrough modes.
//
// Input is fed one byte (or one buffer) at a time with ReceiveChar or
// ReceiveBuffer, typically from the goroutine that reads the transport, and
// processed later by Process on the engine's own goroutine. All internal
// buffers are carved from a single region whose size is fixed by Config and
// reported by RequiredSize; the region is either supplied by the caller or
// allocated once by New.
//
// Only ReceiveChar and ReceiveBuffer may be called concurrently with the rest
// of the API, and only from a single producer. Every other method, including
// the callbacks the engine invokes, runs on the consumer side.
package embeddedcli
