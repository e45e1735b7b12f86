package progress

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	var rec Recorder
	rec.Status("Downloading AWS pricing file")
	Statusf(&rec, "Looking up SKU for %s in %s", "t3.micro", "US West (Oregon)")

	msgs := rec.Messages()
	assert.Equal(t, []string{
		"Downloading AWS pricing file",
		"Looking up SKU for t3.micro in US West (Oregon)",
	}, msgs)

	// Returned slice is a copy.
	msgs[0] = "changed"
	assert.Equal(t, "Downloading AWS pricing file", rec.Messages()[0])
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))

	sink.Status("Splitting AWS pricing file")

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, "Splitting AWS pricing file")
	assert.Contains(t, out, `"component":"progress"`)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Status("ignored")
		Statusf(Discard, "ignored %d", 1)
	})
}
