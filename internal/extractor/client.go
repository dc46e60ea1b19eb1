package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"quill/internal/config"
	"quill/internal/services"
)

const userAgent = "Quill-Go/0.1.0"

// maxCoverBytes bounds cover downloads so a misbehaving source cannot fill
// memory with an unbounded body.
const maxCoverBytes = 16 << 20

// Client talks to a source extractor service that exposes novels as JSON
// documents. The service owns the site-specific scraping; this client only
// handles transport, retries, and payload validation.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts uint
}

// NewClient builds an extractor client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Extractor.BaseURL), "/")
	if base == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "init", "extractor base URL is required", nil)
	}
	timeout := time.Duration(cfg.Extractor.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := uint(cfg.Extractor.RetryAttempts)
	if attempts == 0 {
		attempts = 1
	}
	return &Client{
		baseURL:  base,
		http:     &http.Client{Timeout: timeout},
		attempts: attempts,
	}, nil
}

// Fetch retrieves the novel feed for sourceURL and validates it. Transient
// transport failures and 5xx responses are retried; malformed payloads are
// not, since the same bytes would come back again.
func (c *Client) Fetch(ctx context.Context, sourceURL string) (*NovelPayload, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return nil, services.Wrap(services.ErrValidation, "fetch", "request", "source URL is required", nil)
	}
	endpoint := c.baseURL + "/extract?source=" + url.QueryEscape(sourceURL)

	body, err := c.getWithRetry(ctx, endpoint, "application/json")
	if err != nil {
		return nil, services.Wrap(services.ErrSource, "fetch", "request", fmt.Sprintf("extract %s", sourceURL), err)
	}

	var payload NovelPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrSource, "fetch", "decode", "malformed extractor response", err)
	}
	if err := payload.Validate(); err != nil {
		return nil, services.Wrap(services.ErrSource, "fetch", "validate", "incomplete extractor response", err)
	}
	return &payload, nil
}

// FetchCover downloads the cover image referenced by the extraction payload.
func (c *Client) FetchCover(ctx context.Context, coverURL string) ([]byte, string, error) {
	if strings.TrimSpace(coverURL) == "" {
		return nil, "", services.Wrap(services.ErrValidation, "fetch", "cover", "cover URL is required", nil)
	}
	var contentType string
	body, err := c.getWithRetryFunc(ctx, coverURL, "image/*", func(resp *http.Response) {
		contentType = resp.Header.Get("Content-Type")
	})
	if err != nil {
		return nil, "", services.Wrap(services.ErrSource, "fetch", "cover", fmt.Sprintf("download %s", coverURL), err)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return body, contentType, nil
}

func (c *Client) getWithRetry(ctx context.Context, endpoint, accept string) ([]byte, error) {
	return c.getWithRetryFunc(ctx, endpoint, accept, nil)
}

func (c *Client) getWithRetryFunc(ctx context.Context, endpoint, accept string, observe func(*http.Response)) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", userAgent)
			req.Header.Set("Accept", accept)

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
			case resp.StatusCode >= 500:
				return fmt.Errorf("extractor returned %s", resp.Status)
			default:
				return retry.Unrecoverable(fmt.Errorf("extractor returned %s", resp.Status))
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
			if err != nil {
				return err
			}
			if observe != nil {
				observe(resp)
			}
			body = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func errMissing(field string) error {
	return fmt.Errorf("missing %s", field)
}
