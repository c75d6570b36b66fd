// Package upstream is the typed client for the commerce platform every
// remote call goes through. The platform is authoritative for catalog,
// promo validation, shipping pricing, orders, wallet, and loyalty points;
// this process only caches and reconciles.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shoplane/storefront-backend/pkg/config"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/metrics"
	"github.com/shoplane/storefront-backend/pkg/types"
)

// Client talks to the commerce platform over REST. Every response body is
// schema-validated before a domain value is handed to callers.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiKey     string
	logg       *logger.Logger
	metrics    *metrics.UpstreamMetrics
	validate   *validator.Validate
}

// New builds a platform client with the configured base URL and timeout.
func New(cfg config.UpstreamConfig, logg *logger.Logger, m *metrics.UpstreamMetrics) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("upstream base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", base)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    parsed,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logg:       logg,
		metrics:    m,
		validate:   validator.New(),
	}, nil
}

// do issues one JSON request and decodes + validates the response into out.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(endpoint)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, endpoint+" request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.IncFailure(endpoint)
		return c.errorFromResponse(endpoint, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.IncFailure(endpoint)
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, endpoint+" returned malformed body")
		}
		if err := c.validate.Struct(out); err != nil {
			c.metrics.IncFailure(endpoint)
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, endpoint+" response failed schema validation")
		}
	}

	c.metrics.IncSuccess(endpoint)
	return nil
}

func (c *Client) errorFromResponse(endpoint string, resp *http.Response) error {
	var envelope types.ErrorEnvelope
	message := ""
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		message = envelope.Error.Message
	}
	if message == "" {
		message = fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case resp.StatusCode == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	default:
		return pkgerrors.New(pkgerrors.CodeUpstream, message).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}
}

// Ping verifies the platform is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/v1/ping", nil, nil, nil)
}
