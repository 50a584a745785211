package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "boardkit/api"

// listRequestMetrics times the stages of a list request and reports them both
// as a trace span and as a structured log event.
type listRequestMetrics struct {
	logger        *log.Logger
	route         string
	span          trace.Span
	start         time.Time
	authDuration  time.Duration
	fetchDuration time.Duration
	itemsReturned int
	errorStage    string
}

func newListRequestMetrics(ctx context.Context, logger *log.Logger, route string) (*listRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, route)
	return &listRequestMetrics{
		logger: logger,
		route:  route,
		span:   span,
		start:  time.Now(),
	}, spanCtx
}

func (m *listRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *listRequestMetrics) ObserveFetch(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.fetchDuration = duration
}

func (m *listRequestMetrics) SetItemsReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.itemsReturned = count
}

func (m *listRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *listRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	total := time.Since(m.start)

	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("http.route", m.route),
			attribute.Int("http.status_code", status),
			attribute.Float64("boardkit.request.total_ms", durationToMillis(total)),
			attribute.Int("boardkit.request.items_returned", m.itemsReturned),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("boardkit.request.error_stage", m.errorStage))
		}
		if err != nil {
			m.span.SetStatus(codes.Error, err.Error())
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":          m.route,
		"status":         status,
		"total_ms":       durationToMillis(total),
		"items_returned": m.itemsReturned,
	}
	if m.authDuration > 0 {
		fields["auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.fetchDuration > 0 {
		fields["fetch_ms"] = durationToMillis(m.fetchDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("list.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
