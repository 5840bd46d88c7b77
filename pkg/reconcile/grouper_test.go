package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracksync/bridge/pkg/types"
)

func TestGroupByUniqueColumn(t *testing.T) {
	m := testMapping()
	records := []types.Record{
		{"patient_id": "C1", "weight": "40"},
		{"patient_id": "C2", "weight": "50"},
		{"patient_id": "C1", "weight": "41"},
		{"patient_id": "", "weight": "60"}, // no key, discarded
	}
	previous := []types.TrackedEntityInstance{
		{TrackedEntityInstance: "t2", Attributes: []types.Attribute{{Attribute: "attID", Value: "C2"}}},
		{TrackedEntityInstance: "tX", Attributes: []types.Attribute{{Attribute: "other", Value: "C1"}}},
	}

	groups := group(m, records, previous)

	require.Len(t, groups, 2)
	assert.Equal(t, "C1", groups[0].Key)
	assert.Len(t, groups[0].Records, 2)
	assert.Empty(t, groups[0].Previous)

	assert.Equal(t, "C2", groups[1].Key)
	assert.Len(t, groups[1].Records, 1)
	require.Len(t, groups[1].Previous, 1)
	assert.Equal(t, "t2", groups[1].Previous[0].TrackedEntityInstance)
}

func TestGroupWithoutUniqueColumn(t *testing.T) {
	m := testMapping()
	for i := range m.Attributes {
		m.Attributes[i].Attribute.Unique = false
	}
	records := []types.Record{
		{"weight": "40"},
		{"weight": "50"},
	}

	groups := group(m, records, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "1", groups[0].Key)
	assert.Equal(t, "2", groups[1].Key)
	for _, g := range groups {
		assert.Len(t, g.Records, 1)
		assert.Empty(t, g.Previous)
	}
}
