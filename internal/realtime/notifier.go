package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChangeKind string

const (
	KindProjects  ChangeKind = "projects"
	KindAssets    ChangeKind = "assets"
	KindComments  ChangeKind = "comments"
	KindApprovals ChangeKind = "approvals"
)

// ChangeEvent tells observers that something under ProjectID changed and the
// aggregate should be reloaded. It carries no diff.
type ChangeEvent struct {
	Kind      ChangeKind `json:"kind"`
	ProjectID uuid.UUID  `json:"project_id"`
	EntityID  uuid.UUID  `json:"entity_id"`
	At        time.Time  `json:"at"`
}

func NewChangeEvent(kind ChangeKind, projectID, entityID uuid.UUID) ChangeEvent {
	return ChangeEvent{Kind: kind, ProjectID: projectID, EntityID: entityID, At: time.Now().UTC()}
}

// Notifier is the hook every mutation calls after it commits.
// No ordering or delivery guarantee.
type Notifier interface {
	NotifyChanged(ctx context.Context, ev ChangeEvent) error
}

type NotifierFunc func(ctx context.Context, ev ChangeEvent) error

func (f NotifierFunc) NotifyChanged(ctx context.Context, ev ChangeEvent) error { return f(ctx, ev) }

// Nop drops every event.
var Nop Notifier = NotifierFunc(func(context.Context, ChangeEvent) error { return nil })

// Fanout delivers to every sink and joins their errors. A failing sink does
// not stop the others.
type Fanout struct {
	sinks []Notifier
	log   *zap.Logger
}

func NewFanout(log *zap.Logger, sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks, log: log}
}

func (f *Fanout) NotifyChanged(ctx context.Context, ev ChangeEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.NotifyChanged(ctx, ev); err != nil {
			f.log.Sugar().Warnw("change notification failed",
				"kind", ev.Kind, "project_id", ev.ProjectID, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
