package realtime

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "signoff:changes:"

func Channel(projectID uuid.UUID) string {
	return channelPrefix + projectID.String()
}

type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, projectID uuid.UUID) error
}

// RedisNotifier drops the cached projection and publishes the event on the
// project's channel.
type RedisNotifier struct {
	rdb       *redis.Client
	snapshots SnapshotInvalidator
}

func NewRedisNotifier(rdb *redis.Client, snapshots SnapshotInvalidator) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, snapshots: snapshots}
}

func (n *RedisNotifier) NotifyChanged(ctx context.Context, ev ChangeEvent) error {
	if n.snapshots != nil {
		if err := n.snapshots.Invalidate(ctx, ev.ProjectID); err != nil {
			return fmt.Errorf("invalidate snapshot: %w", err)
		}
	}
	raw, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, Channel(ev.ProjectID), raw).Err()
}

// Subscriber streams change events for one project.
type Subscriber interface {
	Subscribe(ctx context.Context, projectID uuid.UUID) (<-chan ChangeEvent, func(), error)
}

type RedisSubscriber struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisSubscriber(rdb *redis.Client, log *zap.Logger) *RedisSubscriber {
	return &RedisSubscriber{rdb: rdb, log: log}
}

// Subscribe returns a channel closed when ctx ends or the returned stop func runs.
func (s *RedisSubscriber) Subscribe(ctx context.Context, projectID uuid.UUID) (<-chan ChangeEvent, func(), error) {
	ps := s.rdb.Subscribe(ctx, Channel(projectID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan ChangeEvent, 16)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ev ChangeEvent
				if err := sonic.UnmarshalString(m.Payload, &ev); err != nil {
					s.log.Sugar().Debugw("drop malformed change event", "err", err)
					continue
				}
				select {
				case out <- ev:
				default:
					// slow reader; a reload is idempotent so a dropped nudge is harmless
				}
			}
		}
	}()
	return out, cancel, nil
}
