package contract

import (
	"context"

	"github.com/slack-go/slack"
)

type Notifier interface {
	Send(ctx context.Context, msg *slack.WebhookMessage) error
}
