package realtime

import "context"

type JSONPublisher interface {
	PublishJSON(ctx context.Context, v interface{}) error
}

// QueueNotifier forwards events to the durable change queue for downstream
// consumers such as email digests.
type QueueNotifier struct {
	pub JSONPublisher
}

func NewQueueNotifier(pub JSONPublisher) *QueueNotifier {
	return &QueueNotifier{pub: pub}
}

func (n *QueueNotifier) NotifyChanged(ctx context.Context, ev ChangeEvent) error {
	return n.pub.PublishJSON(ctx, ev)
}
