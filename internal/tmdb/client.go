package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

// requestDelay is the fixed pause after every outbound request so we
// stay under the API rate limit without a token bucket.
const requestDelay = 30 * time.Millisecond

// Client talks to the TMDB v3 API with bearer-token auth and a fixed
// inter-request delay.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
	Delay   time.Duration

	// Sleep overrides time.Sleep; tests inject a fake clock here.
	Sleep func(time.Duration)
}

func NewClient(token string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 20 * time.Second},
		BaseURL: DefaultBaseURL,
		Token:   token,
		Delay:   requestDelay,
	}
}

func (c *Client) pause(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

// get issues one API request and pauses afterwards regardless of outcome.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	defer c.pause(c.Delay)

	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("tmdb: build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tmdb: request %s: %w", path, err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("tmdb: read response %s: %w", path, err)
	}
	return body, resp.StatusCode, nil
}
