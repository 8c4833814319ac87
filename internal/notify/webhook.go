// Package notify forwards accepted complaints to an external webhook.
// Delivery is best effort: a failure is logged and never affects the
// rider's submission, which is already stored.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	resty "gopkg.in/resty.v1"
	"kavyashar.org/intake/internal/logging"
)

var ErrDeliveryFailed = errors.New("webhook delivery failed")

type Webhook struct {
	http    *resty.Client
	url     string
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewWebhook returns nil when url is empty; a nil *Webhook ignores sends.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(200*time.Millisecond).
			SetHeader("Content-Type", "application/json"),
		url:     url,
		timeout: timeout,
		logger:  slog.Default().With(slog.String("component", "webhook")),
	}
}

// Send posts payload as JSON and waits for the response.
func (w *Webhook) Send(ctx context.Context, payload any) error {
	if w == nil {
		return nil
	}
	resp, err := w.http.R().SetContext(ctx).SetBody(payload).Post(w.url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode())
	}
	return nil
}

// SendAsync delivers payload in the background. reference is only used
// for logging.
func (w *Webhook) SendAsync(reference string, payload any) {
	if w == nil {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 3*w.timeout)
		defer cancel()

		if err := w.Send(ctx, payload); err != nil {
			logging.LogError(w.logger, "complaint not delivered to webhook", err,
				slog.String("reference", reference))
			return
		}
		logging.LogOperation(w.logger, "complaint_delivered", slog.String("reference", reference))
	}()
}

// Wait blocks until background deliveries have finished.
func (w *Webhook) Wait() {
	if w == nil {
		return
	}
	w.wg.Wait()
}
