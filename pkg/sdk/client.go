package lawdex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "lawdex-go-sdk"
)

// Client is the lawdex SDK entry point. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		userAgent:  cfg.userAgent,
		httpClient: hc,
	}
}

type askRequest struct {
	Question string `json:"question"`
	Target   string `json:"target"`
}

// Ask answers a question against the target collection. An empty target
// uses the service's default collection. A degraded result (references
// without a summary) is not an error; check AskResult.Degraded.
func (c *Client) Ask(ctx context.Context, question, target string) (AskResult, error) {
	var out AskResult
	err := c.do(ctx, http.MethodPost, "/api/ask", askRequest{Question: question, Target: target}, &out)
	return out, err
}

type searchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	TopK       int    `json:"top_k"`
}

// Search runs a similarity search. topK <= 0 uses the service default.
func (c *Client) Search(ctx context.Context, query, collection string, topK int) ([]Hit, error) {
	var out searchResponse
	err := c.do(ctx, http.MethodPost, "/api/search", searchRequest{
		Query:      query,
		Collection: collection,
		TopK:       topK,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Status reports the load state of every configured collection.
func (c *Client) Status(ctx context.Context) (map[string]CollectionStatus, error) {
	var out map[string]CollectionStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

// StatusOf reports the load state of one collection.
func (c *Client) StatusOf(ctx context.Context, name string) (CollectionStatus, error) {
	var out CollectionStatus
	err := c.do(ctx, http.MethodGet, "/api/status?collection="+url.QueryEscape(name), nil, &out)
	return out, err
}

// Health checks service health. A degraded report arrives with HTTP 503;
// it is returned as data, not an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && out.Status != "" {
			return out, nil
		}
		return HealthStatus{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("lawdex: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("lawdex: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lawdex: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("lawdex: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if unmarshalErr := json.Unmarshal(data, apiErr); unmarshalErr != nil || apiErr.Code == "" {
			apiErr.Code = "http_error"
			apiErr.Message = resp.Status
		}
		// Non-error bodies can ride along with error statuses (health
		// reports on 503); surface them to the caller too.
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("lawdex: decode response: %w", err)
		}
	}
	return nil
}
