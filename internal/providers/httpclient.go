package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Client is the HTTP helper shared by all adapters: one timeout-bound client
// per provider, JSON in and out, failures classified at this boundary.
type Client struct {
	http    *http.Client
	baseURL string
	name    string
}

func NewClient(name, baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		name:    name,
	}
}

// DoJSON sends a JSON request and decodes the JSON object response. Any
// transport error or non-2xx status comes back as a classified *Error.
func (c *Client) DoJSON(ctx context.Context, method, path string, headers map[string]string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Provider: c.name, Class: FailureClient, Err: fmt.Errorf("failed to encode request: %v", err)}
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Provider: c.name, Class: FailureClient, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classifyTransport(err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: c.name, Class: FailureTransport, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, c.classifyStatus(resp.StatusCode, responseBody)
	}

	result := map[string]any{}
	if len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, &result); err != nil {
			return nil, &Error{Provider: c.name, Class: FailureTransport, Err: fmt.Errorf("invalid response body: %v", err)}
		}
	}
	return result, nil
}

func (c *Client) classifyTransport(err error) *Error {
	class := FailureTransport
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		class = FailureTimeout
	}
	return &Error{Provider: c.name, Class: class, Err: err}
}

func (c *Client) classifyStatus(status int, body []byte) *Error {
	var class FailureClass
	switch {
	case status == http.StatusTooManyRequests:
		class = FailureRateLimited
	case status >= 500:
		class = FailureServer
	default:
		class = FailureClient
	}
	return &Error{
		Provider: c.name,
		Class:    class,
		Status:   status,
		Err:      fmt.Errorf("provider returned status %d: %s", status, truncate(body, 256)),
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
