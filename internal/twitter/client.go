package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipshare/internal/config"
	"clipshare/internal/logging"
)

// Client wraps the platform REST and media-upload endpoints with their
// authentication requirements. Requests carry zero internal retries; every
// failure surfaces the remote response to the caller.
type Client struct {
	httpClient   *http.Client
	signer       *Signer
	apiBase      string
	uploadBase   string
	chunkSize    int64
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger, opts ...SignerOption) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Twitter.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pollInterval := time.Duration(cfg.Twitter.StatusPollInterval * float64(time.Second))
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		signer:       NewSigner(cfg.Twitter.ConsumerKey, cfg.Twitter.ConsumerSecret, opts...),
		apiBase:      cfg.Twitter.APIBaseURL,
		uploadBase:   cfg.Twitter.UploadBaseURL,
		chunkSize:    cfg.Twitter.ChunkSizeBytes,
		pollInterval: pollInterval,
		logger:       logger.With(logging.String(logging.FieldComponent, "twitter")),
	}
}

// postForm signs and sends a form-encoded POST, returning the raw response
// body. A non-2xx status yields an *APIError carrying the body.
func (c *Client) postForm(ctx context.Context, operation, rawURL string, form url.Values, token *Token, extra map[string]string) ([]byte, error) {
	header, err := c.signer.AuthorizationHeader(http.MethodPost, rawURL, form, token, extra)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, operation)
}

// getForm signs and sends a GET whose parameters ride in the query string.
func (c *Client) getForm(ctx context.Context, operation, rawURL string, params url.Values, token *Token) ([]byte, error) {
	full := rawURL
	if len(params) > 0 {
		full = rawURL + "?" + params.Encode()
	}
	header, err := c.signer.AuthorizationHeader(http.MethodGet, full, nil, token, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, operation)
}

func (c *Client) do(req *http.Request, operation string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func decodeJSON(operation string, body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}
