// Package progress provides sinks for the human-readable status strings the
// rate pipeline emits while it downloads, splits and scans pricing data.
package progress

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// Sink receives status updates from long-running pricing steps.
type Sink interface {
	Status(msg string)
}

// Statusf formats a status message and sends it to sink.
func Statusf(sink Sink, format string, args ...any) {
	sink.Status(fmt.Sprintf(format, args...))
}

// Discard drops every status message.
var Discard Sink = discard{}

type discard struct{}

func (discard) Status(string) {}

// LogSink writes status messages as info-level log lines.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a sink that logs through logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Status implements Sink.
func (s *LogSink) Status(msg string) {
	s.logger.Info().Str("component", "progress").Msg(msg)
}

// ConsoleSink prints status messages with pterm's info prefix.
type ConsoleSink struct {
	printer pterm.PrefixPrinter
}

// NewConsoleSink returns a sink for interactive terminals.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{printer: pterm.Info}
}

// Status implements Sink.
func (s *ConsoleSink) Status(msg string) {
	s.printer.Println(msg)
}

// Recorder keeps every message it receives. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Status implements Sink.
func (r *Recorder) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the recorded messages in arrival order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}
