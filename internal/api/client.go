package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/circle/internal/apperr"
)

// Client talks to the backend REST API and its row-query endpoint.
type Client struct {
	baseURL   *url.URL
	restURL   *url.URL
	http      *http.Client
	token     string
	apiKey    string
	userAgent string
}

// Options configure a Client.
type Options struct {
	// APIURL is the prefix for action paths, e.g. http://host/api/.
	APIURL string
	// RestURL is the prefix for row queries, e.g. http://host/rest/v1/.
	RestURL string
	// Token is sent as a bearer credential on every request.
	Token string
	// APIKey is sent as the apikey header on row queries when set.
	APIKey string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

const (
	defaultAPIURL    = "http://127.0.0.1:54321/api/"
	defaultUserAgent = "circle/0.1"
	requestTimeout   = 10 * time.Second
	maxBodyBytes     = 4 << 20
)

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.APIURL, defaultAPIURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	var rest *url.URL
	if strings.TrimSpace(opts.RestURL) != "" {
		rest, err = parseBaseURL(opts.RestURL, "")
		if err != nil {
			return nil, fmt.Errorf("parse rest url: %w", err)
		}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		baseURL:   base,
		restURL:   rest,
		http:      httpClient,
		token:     strings.TrimSpace(opts.Token),
		apiKey:    strings.TrimSpace(opts.APIKey),
		userAgent: defaultUserAgent,
	}, nil
}

// post sends body as JSON to path and decodes the reply into dest when non-nil.
func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", apperr.ErrValidation, err)
	}
	rel := &url.URL{Path: strings.TrimPrefix(path, "/")}
	return c.doURL(ctx, http.MethodPost, c.baseURL.ResolveReference(rel), bytes.NewReader(payload), dest)
}

func (c *Client) doURL(ctx context.Context, method string, reqURL *url.URL, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", apperr.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: execute request: %w", apperr.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", apperr.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.NewRejected(resp.StatusCode, errorMessage(raw))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if dest != nil {
			return apperr.Shape("%s returned an empty body", reqURL.Path)
		}
		return nil
	}
	if dest == nil {
		if !json.Valid(raw) {
			return apperr.Shape("%s returned a non-JSON body", reqURL.Path)
		}
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		return apperr.Shape("decode %s response: %v", reqURL.Path, err)
	}
	return nil
}

// errorMessage extracts the message field of an error body, if any.
func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func parseBaseURL(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if trimmed == "" {
		return nil, fmt.Errorf("url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
