// Package recognition talks to the image recognition backend that
// classifies screenshots and extracts positioned text fragments from them.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

const (
	defaultHTTPTimeout = 15 * time.Second
)

// Recognizer performs screenshot classification and fragment extraction.
type Recognizer interface {
	Classify(ctx context.Context, imageRef string) (model.Classification, error)
	Extract(ctx context.Context, imageRef string) ([]model.Fragment, error)
}

// Client is an HTTP Recognizer against a recognition service exposing
// POST /classify and POST /extract endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes the HTTP client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a recognition client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type recognizeRequest struct {
	ImageRef string `json:"image_ref"`
}

type classifyResponse struct {
	Valid      bool    `json:"valid"`
	Confidence float64 `json:"confidence"`
}

type extractResponse struct {
	Fragments []model.Fragment `json:"fragments"`
}

// Classify asks the backend whether the image is a standings screenshot.
func (c *Client) Classify(ctx context.Context, imageRef string) (model.Classification, error) {
	var resp classifyResponse
	if err := c.post(ctx, "/classify", imageRef, &resp); err != nil {
		return model.Classification{}, err
	}
	return model.Classification{Valid: resp.Valid, Confidence: resp.Confidence}, nil
}

// Extract asks the backend for positioned text fragments.
func (c *Client) Extract(ctx context.Context, imageRef string) ([]model.Fragment, error) {
	var resp extractResponse
	if err := c.post(ctx, "/extract", imageRef, &resp); err != nil {
		return nil, err
	}
	return resp.Fragments, nil
}

func (c *Client) post(ctx context.Context, path, imageRef string, out any) error {
	body, err := json.Marshal(recognizeRequest{ImageRef: imageRef})
	if err != nil {
		return fmt.Errorf("recognition request encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("recognition request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return statusError(resp.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("recognition response decode: %w", err)
	}
	return nil
}

// classifyTransportError folds transport failures onto the package
// sentinels so callers can decide retryability with errors.Is.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("recognition request: %w", err)
}

func statusError(code int, snippet string) error {
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: http %d", ErrQuotaExceeded, code)
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: http %d", ErrTimeout, code)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrUnavailable, code, strings.TrimSpace(snippet))
	default:
		return fmt.Errorf("recognition request: http %d: %s", code, strings.TrimSpace(snippet))
	}
}
