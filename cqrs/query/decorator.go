package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-reflect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/x-research-team/cqrs-framework/cqrs/query"
	instrumentationVersion = "0.1.0"
	metricKeyPrefix        = "cqrs."
)

// noopDecorator представляет собой пустой декоратор.
type noopDecorator struct{}

// Wrap просто возвращает следующий обработчик без изменений.
func (noopDecorator) Wrap(next Invoker) Invoker {
	return next
}

// loggingDecorator реализует Decorator для логирования обработки запросов.
type loggingDecorator struct {
	logger *slog.Logger
}

// NewLoggingDecorator создает новый декоратор для логирования.
func NewLoggingDecorator(logger *slog.Logger) Decorator {
	if logger == nil {
		return noopDecorator{}
	}
	return &loggingDecorator{
		logger: logger,
	}
}

// Wrap оборачивает обработчик для добавления логирования.
func (d *loggingDecorator) Wrap(next Invoker) Invoker {
	return &loggingInvoker{
		next:   next,
		logger: d.logger,
	}
}

// loggingInvoker - это обертка над обработчиком запросов, которая добавляет логирование.
type loggingInvoker struct {
	next   Invoker
	logger *slog.Logger
}

// Invoke логирует начало чтения, ошибку (если она произошла) и всегда -
// событие завершения с длительностью. Nil-запрос отклоняется до того, как
// будет записано хоть одно событие.
func (p *loggingInvoker) Invoke(ctx context.Context, q any) (result any, err error) {
	if q == nil {
		return nil, errors.New("аргумент 'q' обязателен: запрос не может быть nil")
	}

	queryType := getQueryType(q)
	p.logger.Info("обработка запроса начата",
		slog.String("query_type", queryType),
	)

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		if err != nil {
			p.logger.Error("ошибка обработки запроса",
				slog.String("query_type", queryType),
				slog.Any("error", err),
				slog.Duration("duration", duration),
			)
		}
		p.logger.Info("обработка запроса завершена",
			slog.String("query_type", queryType),
			slog.Duration("duration", duration),
		)
	}()

	return p.next.Invoke(ctx, q)
}

// metricsDecorator реализует Decorator для сбора метрик OpenTelemetry.
type metricsDecorator struct {
	meter               metric.Meter
	dispatchCounter     metric.Int64Counter
	processDurationHist metric.Float64Histogram
}

// NewMetricsDecorator создает новый декоратор для сбора метрик.
func NewMetricsDecorator(provider metric.MeterProvider) Decorator {
	if provider == nil {
		return noopDecorator{}
	}

	meter := provider.Meter(instrumentationName)

	dispatchCounter, err := meter.Int64Counter(
		metricKeyPrefix+"query.dispatch.count",
		metric.WithDescription("Количество выполненных запросов"),
		metric.WithUnit("{queries}"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать счетчик query.dispatch.count: %v", err))
	}

	processDurationHist, err := meter.Float64Histogram(
		metricKeyPrefix+"query.process.duration",
		metric.WithDescription("Длительность обработки запроса"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать гистограмму query.process.duration: %v", err))
	}

	return &metricsDecorator{
		meter:               meter,
		dispatchCounter:     dispatchCounter,
		processDurationHist: processDurationHist,
	}
}

// Wrap оборачивает обработчик для добавления сбора метрик.
func (d *metricsDecorator) Wrap(next Invoker) Invoker {
	return &metricsInvoker{
		next:                next,
		dispatchCounter:     d.dispatchCounter,
		processDurationHist: d.processDurationHist,
	}
}

// metricsInvoker - это обертка над обработчиком запросов, которая собирает метрики.
type metricsInvoker struct {
	next                Invoker
	dispatchCounter     metric.Int64Counter
	processDurationHist metric.Float64Histogram
}

// Invoke собирает метрики и выполняет обработчик.
func (p *metricsInvoker) Invoke(ctx context.Context, q any) (result any, err error) {
	startTime := time.Now()
	result, err = p.next.Invoke(ctx, q)
	duration := float64(time.Since(startTime).Milliseconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	queryType := getQueryType(q)

	p.dispatchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("query.type", queryType),
		attribute.String("status", status),
	))

	p.processDurationHist.Record(ctx, duration, metric.WithAttributes(
		attribute.String("query.type", queryType),
		attribute.String("status", status),
	))

	return result, err
}

// tracingDecorator реализует Decorator для трассировки OpenTelemetry.
type tracingDecorator struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTracingDecorator создает новый декоратор для трассировки.
func NewTracingDecorator(tp trace.TracerProvider, p propagation.TextMapPropagator) Decorator {
	if tp == nil {
		return noopDecorator{}
	}

	if p == nil {
		p = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}

	return &tracingDecorator{
		tracer: tp.Tracer(
			instrumentationName,
			trace.WithInstrumentationVersion(instrumentationVersion),
		),
		propagator: p,
	}
}

// Wrap оборачивает обработчик для добавления логики трассировки.
func (d *tracingDecorator) Wrap(next Invoker) Invoker {
	return &tracingInvoker{
		next:       next,
		tracer:     d.tracer,
		propagator: d.propagator,
	}
}

// tracingInvoker - это обертка над обработчиком запросов, которая управляет спанами трассировки.
type tracingInvoker struct {
	next       Invoker
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Invoke создает спан для обработки запроса и извлекает контекст трассировки
// из метаданных запроса, если они есть.
func (p *tracingInvoker) Invoke(ctx context.Context, q any) (result any, err error) {
	if md, ok := q.(Metadatable); ok {
		ctx = p.propagator.Extract(ctx, propagation.MapCarrier(md.Metadata()))
	}

	queryType := getQueryType(q)
	spanName := fmt.Sprintf("%s read", queryType)

	ctx, span := p.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	return p.next.Invoke(ctx, q)
}

// getQueryType извлекает имя типа запроса с помощью рефлексии.
func getQueryType(q any) string {
	val := reflect.ValueOf(q)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if !val.IsValid() {
		return "unknown"
	}

	return val.Type().Name()
}
