package dhis2

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// chunkSize is how many unique-attribute values one lookup request may
// carry; the filter parameter has a practical URL length ceiling.
const chunkSize = 50

// entityFields is the nested projection a pass needs: attributes plus
// enrollments with their events and data values.
const entityFields = "trackedEntityInstance,orgUnit,attributes[attribute,value]," +
	"enrollments[enrollment,program,trackedEntityInstance,trackedEntityType," +
	"enrollmentDate,incidentDate,orgUnit,events[program,trackedEntityInstance,event," +
	"eventDate,programStage,orgUnit,dataValues[dataElement,value]]]"

type entitiesResponse struct {
	TrackedEntityInstances []types.TrackedEntityInstance `json:"trackedEntityInstances"`
}

// TrackedEntityInstances looks up previously known entities whose unique
// attribute carries one of the given values. Values are chunked and the
// chunks fetched concurrently; all fetches must succeed before any result
// is returned, so the engine always starts from a complete snapshot.
func (c *Client) TrackedEntityInstances(ctx context.Context, attribute string, ids []string) ([]types.TrackedEntityInstance, error) {
	if attribute == "" || len(ids) == 0 {
		return nil, nil
	}

	chunks := chunk(ids, chunkSize)
	results := make([][]types.TrackedEntityInstance, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range chunks {
		i, part := i, part
		g.Go(func() error {
			query := url.Values{}
			query.Set("paging", "false")
			query.Set("ouMode", "ALL")
			query.Set("filter", attribute+":IN:"+strings.Join(part, ";"))
			query.Set("fields", entityFields)

			data, err := c.http.Get(gctx, entitiesPath, query)
			if err != nil {
				return err
			}
			var resp entitiesResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return errors.WrapParse("json", entitiesPath, err)
			}
			results[i] = resp.TrackedEntityInstances
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entities []types.TrackedEntityInstance
	for _, part := range results {
		entities = append(entities, part...)
	}
	return entities, nil
}

// chunk splits values into groups of at most size.
func chunk(values []string, size int) [][]string {
	var chunks [][]string
	for len(values) > size {
		chunks = append(chunks, values[:size])
		values = values[size:]
	}
	if len(values) > 0 {
		chunks = append(chunks, values)
	}
	return chunks
}
