// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// FiberEventKind distinguishes the points in a fiber's lifecycle an
// Observer can be notified about.
type FiberEventKind uint8

const (
	FiberStarted FiberEventKind = iota
	FiberInterrupted
	FiberCompleted
)

func (k FiberEventKind) String() string {
	switch k {
	case FiberStarted:
		return "started"
	case FiberInterrupted:
		return "interrupted"
	case FiberCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// FiberEvent carries one lifecycle notification. Outcome is only
// meaningful for FiberCompleted.
type FiberEvent struct {
	FiberID uuid.UUID
	Kind    FiberEventKind
	Outcome any
}

// Observer receives fiber lifecycle events. A Runtime with no observer
// configured does no logging work at all — the check is a nil
// comparison, not a no-op interface call — so this is purely
// diagnostic scaffolding and never on the hot path of the step loop.
type Observer interface {
	OnFiberEvent(FiberEvent)
}

// slogObserver logs fiber lifecycle events through a structured logger,
// grounded on the pack's own observability.SlogObserver pattern: one
// attribute per event field, dispatched through LogAttrs.
type slogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver returns an Observer that logs every fiber lifecycle
// event through logger at slog.LevelInfo.
func NewSlogObserver(logger *slog.Logger) Observer {
	return &slogObserver{logger: logger}
}

func (o *slogObserver) OnFiberEvent(event FiberEvent) {
	attrs := []slog.Attr{
		slog.String("fiber_id", event.FiberID.String()),
	}
	if event.Kind == FiberCompleted {
		attrs = append(attrs, slog.Any("outcome", event.Outcome))
	}
	o.logger.LogAttrs(context.Background(), slog.LevelInfo, event.Kind.String(), attrs...)
}
