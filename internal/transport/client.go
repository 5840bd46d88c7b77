// Package transport provides the HTTP plumbing shared by the server
// client and the remote feed source: base-URL resolution, authentication,
// and JSON request/response handling.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tracksync/bridge/pkg/errors"
)

// DefaultTimeout bounds a single request; passes have no other deadline.
const DefaultTimeout = 2 * time.Minute

// Client is a thin JSON HTTP client rooted at a base URL.
type Client struct {
	base *url.URL
	http *http.Client
	auth Authenticator
}

// NewClient creates a client for a base URL. A nil authenticator means
// unauthenticated requests.
func NewClient(baseURL string, auth Authenticator) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.WrapParse("url", baseURL, err)
	}
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: DefaultTimeout},
		auth: auth,
	}, nil
}

// Get performs a GET against a path relative to the base URL and returns
// the raw response body. Non-2xx statuses are APIErrors.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.resolve(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.auth.Apply(req)

	return c.do(req, path)
}

// Post sends a JSON body to a path relative to the base URL and returns
// the raw response body along with the status code. Callers interpret the
// status themselves because the import endpoints report per-item outcomes
// on both 200 and 409.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, errors.WrapParse("json", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path).String(), bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, errors.WrapAPI(path, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.WrapAPI(path, resp.StatusCode, err)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapAPI(path, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapAPI(path, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewAPIError(path, resp.StatusCode, string(data))
	}
	return data, nil
}

func (c *Client) resolve(path string) *url.URL {
	u := *c.base
	if path == "" {
		return &u
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return &u
}
