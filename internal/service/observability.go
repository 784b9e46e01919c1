package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/micromata/projectforge-sub017/internal/gantt"
	"github.com/micromata/projectforge-sub017/internal/repository"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name     string
	Duration time.Duration
	Err      error
	Fields   map[string]any
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type noopObserver struct{}

func (noopObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver logs use-case events to w as slog text records.
// Rejected requests log at WARN, failures at ERROR.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 6+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Err == nil,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	switch {
	case event.Err == nil:
		o.logger.InfoContext(ctx, "service_use_case", attrs...)
	case isRejection(event.Err):
		o.logger.WarnContext(ctx, "service_use_case", append(attrs, "error", event.Err.Error())...)
	default:
		o.logger.ErrorContext(ctx, "service_use_case", append(attrs, "error", event.Err.Error())...)
	}
}

// isRejection reports errors caused by the request rather than the system.
func isRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidEdit, ErrNodeNotFound, ErrNotAdHoc, ErrPredecessorAbsent,
		repository.ErrNotFound, gantt.ErrMalformedChartXML,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// observe reports one finished use case. Call it deferred with a pointer to
// the named error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, err *error) {
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:     name,
		Duration: time.Since(startedAt),
		Err:      *err,
		Fields:   fields,
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return noopObserver{}
}
