// Package httpclient provides a reusable HTTP client for upstream JSON APIs.
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/tutor-x/pkg/utils/json"
)

// StatusError is returned when the upstream responds with a non-2xx status.
// The body is preserved so callers can surface the upstream message verbatim.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Client is a thin wrapper around http.Client.
// Requests are executed exactly once; failures surface to the caller
// without automatic retries.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new HTTP client wrapper with the given timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do executes an HTTP request. Context cancellation and the client
// timeout both abort the in-flight request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoJSON executes a request, decodes the JSON response into v, and ensures
// the body is closed. A non-2xx response yields a *StatusError carrying the
// upstream status and body.
func (c *Client) DoJSON(req *http.Request, v interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
