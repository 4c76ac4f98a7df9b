package resources

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	otelog "go.opentelemetry.io/otel/log"
)

func TestOTelWriter_WriteLevel(t *testing.T) {
	t.Parallel()

	w := NewOTelWriter("event-scheduler-test")

	line := []byte(`{"level":"info","time":"2025-01-10T09:00:00Z","message":"event added","id":7}`)
	n, err := w.WriteLevel(zerolog.InfoLevel, line)
	assert.NoError(t, err)
	assert.Equal(t, len(line), n)

	garbage := []byte("not json")
	n, err = w.Write(garbage)
	assert.NoError(t, err)
	assert.Equal(t, len(garbage), n)
}

func TestSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level    zerolog.Level
		want     otelog.Severity
		wantText string
	}{
		{level: zerolog.TraceLevel, want: otelog.SeverityTrace, wantText: "TRACE"},
		{level: zerolog.DebugLevel, want: otelog.SeverityDebug, wantText: "DEBUG"},
		{level: zerolog.InfoLevel, want: otelog.SeverityInfo, wantText: "INFO"},
		{level: zerolog.WarnLevel, want: otelog.SeverityWarn, wantText: "WARN"},
		{level: zerolog.ErrorLevel, want: otelog.SeverityError, wantText: "ERROR"},
		{level: zerolog.FatalLevel, want: otelog.SeverityFatal, wantText: "FATAL"},
		{level: zerolog.NoLevel, want: otelog.SeverityInfo, wantText: "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()

			got, gotText := severity(tt.level)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantText, gotText)
		})
	}
}

func TestAttributes(t *testing.T) {
	t.Parallel()

	kvs := attributes(map[string]any{
		"component": "scheduler",
		"released":  float64(3),
		"ratio":     0.5,
		"ok":        true,
		"tags":      []any{"a"},
	})

	got := make(map[string]otelog.Value, len(kvs))
	for _, kv := range kvs {
		got[kv.Key] = kv.Value
	}

	assert.Equal(t, "scheduler", got["component"].AsString())
	assert.Equal(t, otelog.KindInt64, got["released"].Kind())
	assert.Equal(t, int64(3), got["released"].AsInt64())
	assert.Equal(t, otelog.KindFloat64, got["ratio"].Kind())
	assert.True(t, got["ok"].AsBool())
	assert.Equal(t, "[a]", got["tags"].AsString())
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(timestamp(map[string]any{zerolog.TimestampFieldName: "2025-01-10T09:00:00Z"})))

	before := time.Now()
	assert.False(t, timestamp(map[string]any{}).Before(before))
}
