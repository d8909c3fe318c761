package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/trace"
)

type recordingLogger struct {
	embedded.Logger
	records []otellog.Record
}

func (l *recordingLogger) Emit(_ context.Context, r otellog.Record) {
	l.records = append(l.records, r)
}

func (l *recordingLogger) Enabled(context.Context, otellog.EnabledParameters) bool { return true }

func TestOTelHook_ForwardsMessageAndSeverity(t *testing.T) {
	rec := &recordingLogger{}
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(NewOTelHook(rec))

	logger.Warn().Str("k", "v").Msg("classifier slow")
	logger.Log().Msg("no level")

	require.Len(t, rec.records, 1)
	assert.Equal(t, "classifier slow", rec.records[0].Body().AsString())
	assert.Equal(t, otellog.SeverityWarn, rec.records[0].Severity())
	assert.Equal(t, "warn", rec.records[0].SeverityText())
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestOtelSeverity(t *testing.T) {
	assert.Equal(t, otellog.SeverityDebug, otelSeverity(zerolog.DebugLevel))
	assert.Equal(t, otellog.SeverityError, otelSeverity(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityUndefined, otelSeverity(zerolog.NoLevel))
}

func TestLoggerFromContext_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	LoggerFromContext(ctx).Info().Msg("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", line["span_id"])
}
