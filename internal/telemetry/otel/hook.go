package otel

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	otellog "go.opentelemetry.io/otel/log"
)

// LogHook is a logrus hook that emits every entry as an OpenTelemetry log record, so
// entries reach the collector with the trace context of entry.Context.
type LogHook struct {
	logger otellog.Logger
	levels []logrus.Level
}

// NewLogHook returns a hook emitting through provider under the given instrumentation scope.
// Entries below minLevel are not mirrored.
func NewLogHook(provider otellog.LoggerProvider, scope string, minLevel logrus.Level) *LogHook {
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= minLevel {
			levels = append(levels, l)
		}
	}
	return &LogHook{logger: provider.Logger(scope), levels: levels}
}

func (h *LogHook) Levels() []logrus.Level { return h.levels }

func (h *LogHook) Fire(entry *logrus.Entry) error {
	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var rec otellog.Record
	rec.SetTimestamp(entry.Time)
	rec.SetObservedTimestamp(entry.Time)
	rec.SetBody(otellog.StringValue(entry.Message))
	rec.SetSeverity(severity(entry.Level))
	rec.SetSeverityText(entry.Level.String())
	attrs := make([]otellog.KeyValue, 0, len(entry.Data))
	for k, v := range entry.Data {
		attrs = append(attrs, attribute(k, v))
	}
	rec.AddAttributes(attrs...)
	h.logger.Emit(ctx, rec)
	return nil
}

func severity(l logrus.Level) otellog.Severity {
	switch l {
	case logrus.TraceLevel:
		return otellog.SeverityTrace
	case logrus.DebugLevel:
		return otellog.SeverityDebug
	case logrus.InfoLevel:
		return otellog.SeverityInfo
	case logrus.WarnLevel:
		return otellog.SeverityWarn
	case logrus.ErrorLevel:
		return otellog.SeverityError
	case logrus.FatalLevel:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityFatal4
	}
}

func attribute(key string, v any) otellog.KeyValue {
	switch val := v.(type) {
	case string:
		return otellog.String(key, val)
	case bool:
		return otellog.Bool(key, val)
	case int:
		return otellog.Int(key, val)
	case int64:
		return otellog.Int64(key, val)
	case float64:
		return otellog.Float64(key, val)
	case error:
		return otellog.String(key, val.Error())
	case fmt.Stringer:
		return otellog.String(key, val.String())
	default:
		return otellog.String(key, fmt.Sprint(val))
	}
}
