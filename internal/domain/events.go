package domain

import (
	"log/slog"

	m "picobuild.dev/pkg/picobuild/internal/model"
)

// EventSink receives structured diagnostic events while a build runs. The
// pipeline emits into the sink the caller supplies; it never depends on how
// or whether the events are rendered.
type EventSink interface {
	Emit(diag m.Diagnostic)
}

// NopSink discards every event.
type NopSink struct{}

// Emit discards the diagnostic.
func (NopSink) Emit(m.Diagnostic) {}

// ChannelSink forwards events to a buffered channel, typically consumed by a
// UI log panel. Emit never blocks: when the consumer falls behind, events are
// dropped rather than stalling the build.
type ChannelSink struct {
	ch chan m.Diagnostic
}

// NewChannelSink creates a ChannelSink buffering up to size events.
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{ch: make(chan m.Diagnostic, size)}
}

// Emit forwards the diagnostic, dropping it if the buffer is full.
func (s *ChannelSink) Emit(diag m.Diagnostic) {
	select {
	case s.ch <- diag:
	default:
		slog.Debug("event sink full, dropping diagnostic", "code", diag.Code)
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan m.Diagnostic {
	return s.ch
}

// Close closes the event channel. Emit must not be called afterwards.
func (s *ChannelSink) Close() {
	close(s.ch)
}
