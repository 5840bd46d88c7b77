// Package dhis2 is the client for the tracker server's web API: it loads
// mapping configurations from the datastore, looks up previously known
// tracked entity instances in batches, and submits the payloads a
// reconciliation pass computes.
package dhis2

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tracksync/bridge/internal/transport"
	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/logging"
)

// API paths, relative to the server base URL.
const (
	mappingsPath   = "api/dataStore/bridge/mappings"
	entitiesPath   = "api/trackedEntityInstances"
	enrollmentPath = "api/enrollments"
	eventsPath     = "api/events"
	systemPath     = "api/system/info"
)

// Client talks to one tracker server.
type Client struct {
	http   *transport.Client
	logger *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for import summaries and conflicts.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client with basic authentication.
func NewClient(baseURL, username, password string, opts ...Option) (*Client, error) {
	httpClient, err := transport.NewClient(baseURL, &transport.BasicAuth{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		http:   httpClient,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ping probes the server. A pass must not start against an unreachable
// server; the caller skips and retries on the next tick.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.http.Get(ctx, systemPath, nil); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrUnreachable, err)
	}
	return nil
}
