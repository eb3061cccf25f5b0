package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/metrics"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookNotifier delivers batch summaries as JSON POSTs to a webhook URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// WebhookOption customizes the webhook notifier.
type WebhookOption func(*WebhookNotifier)

// WithWebhookHTTPClient overrides the default HTTP client.
func WithWebhookHTTPClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// NewWebhookNotifier creates a notifier posting to the given URL.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify posts the summary. Delivery is best-effort; the caller decides
// whether a failure matters.
func (n *WebhookNotifier) Notify(ctx context.Context, summary model.BatchSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode batch summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		metrics.RecordNotifyError()
		return fmt.Errorf("post batch summary: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordNotifyError()
		return fmt.Errorf("post batch summary: http %d", resp.StatusCode)
	}
	return nil
}
