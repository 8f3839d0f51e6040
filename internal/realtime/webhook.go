package realtime

import "context"

type WebhookPoster interface {
	Post(ctx context.Context, event string, payload interface{}) error
}

type WebhookNotifier struct {
	client WebhookPoster
}

func NewWebhookNotifier(client WebhookPoster) *WebhookNotifier {
	return &WebhookNotifier{client: client}
}

func (n *WebhookNotifier) NotifyChanged(ctx context.Context, ev ChangeEvent) error {
	return n.client.Post(ctx, string(ev.Kind), ev)
}
