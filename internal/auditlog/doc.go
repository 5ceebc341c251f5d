// Package auditlog provides structured event logging for every mutation
// and decision made by the gate engine and synthesis engine.
//
// It implements a newline-delimited JSON event stream written to a
// caller-provided sink, with a bounded in-memory buffer so that a slow or
// stalled sink never blocks validation or synthesis: once the buffer is
// full, the oldest events are discarded and a drop counter is incremented.
package auditlog
