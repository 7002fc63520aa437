package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prodscope/prodscope/internal/intel"
)

// tunnelBypassHeader tells an ngrok-style tunnel to skip its browser
// interstitial and pass the request through to the service.
const tunnelBypassHeader = "ngrok-skip-browser-warning"

const maxErrorBody = 512

// Client talks to the remote product intelligence pipeline service.
type Client struct {
	baseURL      string
	skipApify    bool
	tunnelBypass bool
	httpClient   *http.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration, skipApify, tunnelBypass bool) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		skipApify:    skipApify,
		tunnelBypass: tunnelBypass,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// ValidateURL checks that raw is constructible as an absolute URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidInput, raw)
	}
	return nil
}

// StartRun submits a product URL and returns the run identifier the service
// assigned. The URL is validated before any network traffic happens.
func (c *Client) StartRun(ctx context.Context, productURL string) (string, error) {
	if err := ValidateURL(productURL); err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]any{
		"product_url": productURL,
		"skip_apify":  c.skipApify,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling start request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pipeline/start/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating start request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("start request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StartError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}
	if !isJSON(resp.Header.Get("Content-Type")) {
		return "", &StartError{Status: resp.StatusCode, Detail: "non-JSON response from start endpoint"}
	}

	var started struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return "", &StartError{Status: resp.StatusCode, Detail: "undecodable start response"}
	}
	if started.ID == "" {
		return "", &StartError{Status: resp.StatusCode, Detail: "start response carried no run id"}
	}
	return started.ID, nil
}

// RunStatus fetches the current state of a run. A non-2xx status or a
// non-JSON body is a TransportError regardless of status code.
func (c *Client) RunStatus(ctx context.Context, runID string) (*intel.Run, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/pipeline/status/"+url.PathEscape(runID)+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("creating status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: "polling status", Status: resp.StatusCode}
	}
	contentType := resp.Header.Get("Content-Type")
	if !isJSON(contentType) {
		return nil, &TransportError{Op: "polling status", Status: resp.StatusCode, ContentType: contentType}
	}

	var run intel.Run
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, &TransportError{Op: "decoding status", Status: resp.StatusCode, ContentType: contentType}
	}
	return &run, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tunnelBypass {
		req.Header.Set(tunnelBypassHeader, "true")
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
