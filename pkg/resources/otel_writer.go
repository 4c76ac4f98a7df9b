package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	otelog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

var _ zerolog.LevelWriter = (*OTelWriter)(nil)

// OTelWriter forwards every zerolog JSON line to the global OTel logger
// provider. It is combined with the console writer, so lines still reach
// stdout.
type OTelWriter struct {
	logger otelog.Logger
}

func NewOTelWriter(serviceName string) *OTelWriter {
	return &OTelWriter{
		logger: global.GetLoggerProvider().Logger(serviceName),
	}
}

func (w *OTelWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *OTelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var fields map[string]any

	err := json.Unmarshal(p, &fields)
	if err != nil {
		// Not a JSON line; nothing to forward.
		return len(p), nil //nolint:nilerr
	}

	var rec otelog.Record

	sev, sevText := severity(level)

	rec.SetTimestamp(timestamp(fields))
	rec.SetSeverity(sev)
	rec.SetSeverityText(sevText)

	if msg, ok := fields[zerolog.MessageFieldName].(string); ok {
		rec.SetBody(otelog.StringValue(msg))
	}

	delete(fields, zerolog.MessageFieldName)
	delete(fields, zerolog.TimestampFieldName)
	delete(fields, zerolog.LevelFieldName)

	rec.AddAttributes(attributes(fields)...)

	w.logger.Emit(context.Background(), rec)

	return len(p), nil
}

func severity(level zerolog.Level) (otelog.Severity, string) {
	switch level {
	case zerolog.TraceLevel:
		return otelog.SeverityTrace, "TRACE"
	case zerolog.DebugLevel:
		return otelog.SeverityDebug, "DEBUG"
	case zerolog.WarnLevel:
		return otelog.SeverityWarn, "WARN"
	case zerolog.ErrorLevel:
		return otelog.SeverityError, "ERROR"
	case zerolog.FatalLevel:
		return otelog.SeverityFatal, "FATAL"
	case zerolog.PanicLevel:
		return otelog.SeverityFatal4, "FATAL"
	default:
		return otelog.SeverityInfo, "INFO"
	}
}

func attributes(fields map[string]any) []otelog.KeyValue {
	kvs := make([]otelog.KeyValue, 0, len(fields))

	for k, v := range fields {
		switch x := v.(type) {
		case string:
			kvs = append(kvs, otelog.String(k, x))
		case bool:
			kvs = append(kvs, otelog.Bool(k, x))
		case float64:
			if x == float64(int64(x)) {
				kvs = append(kvs, otelog.Int64(k, int64(x)))
			} else {
				kvs = append(kvs, otelog.Float64(k, x))
			}
		default:
			kvs = append(kvs, otelog.String(k, fmt.Sprintf("%v", x)))
		}
	}

	return kvs
}

func timestamp(fields map[string]any) time.Time {
	s, ok := fields[zerolog.TimestampFieldName].(string)
	if !ok {
		return time.Now()
	}

	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Now()
	}

	return ts
}
