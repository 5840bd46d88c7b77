package sources

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/tracksync/bridge/internal/transport"
	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// APISource fetches records from a remote JSON feed returning an array of
// flat objects. When the mapping names date-filter parameters, the pass
// window is forwarded as query parameters.
type APISource struct {
	client        *transport.Client
	url           string
	dateFilter    string
	dateEndFilter string
}

// NewAPISource creates a source over a feed URL. The filter names may be
// empty, in which case the window is not forwarded.
func NewAPISource(feedURL string, auth transport.Authenticator, dateFilter, dateEndFilter string) (*APISource, error) {
	client, err := transport.NewClient(feedURL, auth)
	if err != nil {
		return nil, err
	}
	return &APISource{
		client:        client,
		url:           feedURL,
		dateFilter:    dateFilter,
		dateEndFilter: dateEndFilter,
	}, nil
}

// Records implements Source.
func (s *APISource) Records(ctx context.Context, w Window) ([]types.Record, error) {
	var query url.Values
	if s.dateFilter != "" && s.dateEndFilter != "" && w.Since != "" {
		query = url.Values{}
		query.Set(s.dateFilter, w.Since)
		query.Set(s.dateEndFilter, w.Until)
	}

	data, err := s.client.Get(ctx, "", query)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.WrapParse("json", s.url, err)
	}

	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(types.Record, len(row))
		for col, v := range row {
			if str, ok := stringify(v); ok {
				rec[col] = str
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
