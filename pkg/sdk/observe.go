package cymbalsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
)

// Call outcomes used as the "outcome" label and log attribute.
const (
	outcomeOK            = "ok"
	outcomeInvalid       = "invalid"
	outcomeNotFound      = "not_found"
	outcomeTimeout       = "timeout"
	outcomeStorageError  = "storage_error"
	outcomeProviderError = "provider_error"
	outcomeError         = "error"
)

// outcome buckets a call result by the domain error it carries.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrImportTimeout):
		return outcomeTimeout
	case errors.Is(err, domain.ErrOperationNotFound):
		return outcomeNotFound
	case domain.IsClientError(err):
		return outcomeInvalid
	case errors.Is(err, domain.ErrStorage):
		return outcomeStorageError
	case errors.Is(err, domain.ErrSearchProvider), errors.Is(err, domain.ErrImportProvider):
		return outcomeProviderError
	default:
		return outcomeError
	}
}

type sdkMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	imports  *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	calls, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cymbalsearch",
		Subsystem: "sdk",
		Name:      "calls_total",
		Help:      "SDK calls by name and outcome.",
	}, []string{"call", "outcome"}))
	if err != nil {
		return nil, err
	}
	// synchronous imports include the job wait, hence the long tail
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cymbalsearch",
		Subsystem: "sdk",
		Name:      "call_duration_seconds",
		Help:      "SDK call duration in seconds.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"call"}))
	if err != nil {
		return nil, err
	}
	imports, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cymbalsearch",
		Subsystem: "sdk",
		Name:      "import_operations_total",
		Help:      "Import operations returned by SDK calls, by call and operation state.",
	}, []string{"call", "state"}))
	if err != nil {
		return nil, err
	}
	return &sdkMetrics{calls: calls, duration: duration, imports: imports}, nil
}

// register adds c to reg, or returns the collector a previous Client registered under the same name.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	var are prometheus.AlreadyRegisteredError
	switch {
	case err == nil:
		return c, nil
	case errors.As(err, &are):
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return c, fmt.Errorf("cymbalsearch: metric registered with another type: %T", are.ExistingCollector)
		}
		return existing, nil
	default:
		return c, fmt.Errorf("cymbalsearch: register metric: %w", err)
	}
}

// observer logs and counts SDK calls. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one finished call. attrs describe what the call touched.
func (o *observer) observe(call string, start time.Time, err error, attrs ...slog.Attr) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	out := outcome(err)

	if o.metrics != nil {
		o.metrics.calls.WithLabelValues(call, out).Inc()
		o.metrics.duration.WithLabelValues(call).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}

	args := make([]any, 0, len(attrs)+4)
	args = append(args, slog.String("call", call), slog.String("outcome", out), slog.Duration("duration", dur))
	for _, a := range attrs {
		args = append(args, a)
	}
	switch out {
	case outcomeOK:
		o.logger.Debug("call completed", args...)
	case outcomeTimeout:
		o.logger.Warn("import still running after wait", args...)
	case outcomeInvalid, outcomeNotFound:
		o.logger.Info("call rejected", append(args, slog.Any("error", err))...)
	default:
		o.logger.Warn("call failed", append(args, slog.Any("error", err))...)
	}
}

// observeImport is observe for calls that return an import operation.
// The operation state is counted whenever the vendor assigned a name,
// including timed-out waits where the job is still running.
func (o *observer) observeImport(call string, start time.Time, err error, op Operation, record string) {
	if o == nil {
		return
	}
	var attrs []slog.Attr
	if op.Name != "" {
		attrs = append(attrs,
			slog.String("operation", op.Name),
			slog.String("state", string(op.State)),
			slog.String("source", string(op.Source.Kind)),
		)
		if op.Done() {
			attrs = append(attrs, slog.Int64("success_count", op.SuccessCount), slog.Int64("failure_count", op.FailureCount))
		}
		if o.metrics != nil {
			o.metrics.imports.WithLabelValues(call, string(op.State)).Inc()
		}
	}
	if record != "" {
		attrs = append(attrs, slog.String("record", record))
	}
	o.observe(call, start, err, attrs...)
}
