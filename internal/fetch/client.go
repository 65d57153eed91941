package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusError reports a non-success HTTP status from the asset host.
type StatusError struct {
	URL    string
	Status int
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.Status, e.Reason)
}

// Client wraps HTTP fetches with the configuration the configurator needs.
//
// Example usage:
//
//	client := fetch.NewClient()
//
//	// Catalog text
//	text, err := client.GetString(ctx, settings.CatalogURL)
//
//	// Asset bytes
//	blob, err := client.Get(ctx, assetURL)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a Client with a 60 second timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent: "freedom-configurator",
	}
}

// Get performs a GET request and returns the response body.
//
// Returns a *StatusError when the response status is not 200 OK.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Status: resp.StatusCode, Reason: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the body as a string.
// Convenience wrapper around Get for text content like the catalog source.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
