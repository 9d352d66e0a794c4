package notify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/lite-lake/dnswatch/internal/domain"
	"github.com/lite-lake/dnswatch/internal/domain/retry"
	"github.com/lite-lake/dnswatch/internal/infrastructure/logger"
)

// SlackWebhook posts Block Kit messages to a Slack incoming webhook.
type SlackWebhook struct {
	url       string
	client    *http.Client
	retryOpts []retry.Option
}

type Option func(*SlackWebhook)

func WithHTTPClient(c *http.Client) Option {
	return func(w *SlackWebhook) {
		w.client = c
	}
}

func WithRetry(opts ...retry.Option) Option {
	return func(w *SlackWebhook) {
		w.retryOpts = append(w.retryOpts, opts...)
	}
}

func NewSlackWebhook(url string, timeout time.Duration, opts ...Option) *SlackWebhook {
	w := &SlackWebhook{
		url:       url,
		client:    &http.Client{Timeout: timeout},
		retryOpts: []retry.Option{retry.WithIsRetryable(IsRetryableWebhookError)},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *SlackWebhook) Send(ctx context.Context, msg *slack.WebhookMessage) error {
	if w.url == "" {
		return domain.ErrWebhookURLMissing
	}
	if msg == nil {
		return domain.NewOpError("post webhook", domain.ErrNotificationDelivery, errors.New("empty message"))
	}

	err := retry.Do(ctx, func() error {
		return slack.PostWebhookCustomHTTPContext(ctx, w.url, w.client, msg)
	}, w.retryOpts...)
	if err != nil {
		return domain.NewOpError("post webhook", domain.ErrNotificationDelivery, err)
	}

	logger.FromContext(ctx).Info("slack notification sent")
	return nil
}

// IsRetryableWebhookError retries rate limiting, 5xx answers and transport
// failures. Other HTTP statuses mean the payload or URL is wrong.
func IsRetryableWebhookError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return true
	}

	var status slack.StatusCodeError
	if errors.As(err, &status) {
		return status.Code >= http.StatusInternalServerError
	}

	return true
}
