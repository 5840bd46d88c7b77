package reconcile

import (
	"strconv"

	"github.com/tracksync/bridge/pkg/types"
)

// ClientGroup is the unit of reconciliation: all source rows sharing one
// unique-attribute value, together with the previously known entities that
// carry the same value.
type ClientGroup struct {
	Key      string
	Records  []types.Record
	Previous []types.TrackedEntityInstance
}

// group partitions records into client groups. With a unique column
// configured, rows lacking a value there are discarded and the rest are
// grouped by that value in first-seen order; without one, each row is its
// own client with a synthetic 1-based key and no prior identity.
func group(m *types.Mapping, records []types.Record, previous []types.TrackedEntityInstance) []ClientGroup {
	uniqueColumn, ok := m.UniqueColumn()
	if !ok {
		groups := make([]ClientGroup, 0, len(records))
		for i, rec := range records {
			groups = append(groups, ClientGroup{
				Key:     strconv.Itoa(i + 1),
				Records: []types.Record{rec},
			})
		}
		return groups
	}

	prevByKey := groupPrevious(m, previous)

	var order []string
	byKey := make(map[string][]types.Record)
	for _, rec := range records {
		key := rec[uniqueColumn]
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], rec)
	}

	groups := make([]ClientGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, ClientGroup{
			Key:      key,
			Records:  byKey[key],
			Previous: prevByKey[key],
		})
	}
	return groups
}

// groupPrevious indexes previously known entities by their unique
// attribute value. Entities without the attribute are unreachable by any
// client and are dropped.
func groupPrevious(m *types.Mapping, previous []types.TrackedEntityInstance) map[string][]types.TrackedEntityInstance {
	attribute, ok := m.UniqueAttribute()
	if !ok {
		return nil
	}
	byKey := make(map[string][]types.TrackedEntityInstance)
	for _, entity := range previous {
		if val, found := entity.AttributeValue(attribute); found && val != "" {
			byKey[val] = append(byKey[val], entity)
		}
	}
	return byKey
}
