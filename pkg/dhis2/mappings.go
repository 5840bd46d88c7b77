package dhis2

import (
	"context"
	"encoding/json"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// Mappings fetches all reconciliation mappings from the server datastore.
func (c *Client) Mappings(ctx context.Context) ([]types.Mapping, error) {
	data, err := c.http.Get(ctx, mappingsPath, nil)
	if err != nil {
		return nil, err
	}
	var mappings []types.Mapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, errors.WrapParse("json", mappingsPath, err)
	}
	return mappings, nil
}

// LoadMappingsFile reads mappings from a local YAML (or JSON) file,
// substituting for the datastore when the server holds no configuration.
func LoadMappingsFile(path string) ([]types.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var mappings []types.Mapping
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return mappings, nil
}
