package dhis2

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// ImportCount is the server's per-reference import accounting.
type ImportCount struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Ignored  int `json:"ignored"`
	Deleted  int `json:"deleted"`
}

// ImportConflict is one rejected object within an import summary.
type ImportConflict struct {
	Object string `json:"object"`
	Value  string `json:"value"`
}

// ImportSummary is the server's outcome for one submitted object.
type ImportSummary struct {
	Reference   string           `json:"reference"`
	Status      string           `json:"status"`
	ImportCount ImportCount      `json:"importCount"`
	Conflicts   []ImportConflict `json:"conflicts"`
}

type importResponse struct {
	HTTPStatusCode int    `json:"httpStatusCode"`
	Message        string `json:"message"`
	Response       struct {
		ImportSummaries []ImportSummary `json:"importSummaries"`
	} `json:"response"`
}

// SubmitTrackedEntityInstances posts new entities and entity updates in
// one payload; the server upserts by identifier.
func (c *Client) SubmitTrackedEntityInstances(ctx context.Context, instances []types.TrackedEntityInstance) error {
	if len(instances) == 0 {
		return nil
	}
	payload := map[string]any{"trackedEntityInstances": instances}
	return c.submit(ctx, entitiesPath, "tracked entity instance", payload)
}

// SubmitEnrollments posts new enrollments.
func (c *Client) SubmitEnrollments(ctx context.Context, enrollments []types.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	payload := map[string]any{"enrollments": enrollments}
	return c.submit(ctx, enrollmentPath, "enrollment", payload)
}

// SubmitEvents posts new events and event updates in one payload.
func (c *Client) SubmitEvents(ctx context.Context, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	payload := map[string]any{"events": events}
	return c.submit(ctx, eventsPath, "event", payload)
}

// submit posts one payload and logs the server's import summaries. A 409
// reports per-object conflicts, not transport failure, so it is logged
// and swallowed; retry policy belongs to whoever schedules passes.
func (c *Client) submit(ctx context.Context, path, kind string, payload any) error {
	data, status, err := c.http.Post(ctx, path, payload)
	if err != nil {
		return err
	}

	var resp importResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return errors.WrapParse("json", path, err)
	}
	if resp.HTTPStatusCode != 0 {
		status = resp.HTTPStatusCode
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		for _, s := range resp.Response.ImportSummaries {
			c.logger.Info().
				Str("kind", kind).
				Str("reference", s.Reference).
				Int("imported", s.ImportCount.Imported).
				Int("updated", s.ImportCount.Updated).
				Int("deleted", s.ImportCount.Deleted).
				Msg("Import summary")
		}
		return nil
	case http.StatusConflict:
		for _, s := range resp.Response.ImportSummaries {
			for _, conflict := range s.Conflicts {
				c.logger.Warn().
					Str("kind", kind).
					Str("object", conflict.Object).
					Str("message", conflict.Value).
					Msg("Import conflict")
			}
		}
		return nil
	default:
		return errors.NewAPIError(path, status, resp.Message)
	}
}
