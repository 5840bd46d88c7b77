package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracksync/bridge/pkg/types"
)

func TestMergeAttributesIdenticalSetsUnchanged(t *testing.T) {
	prev := []types.Attribute{
		{Attribute: "a", Value: "1"},
		{Attribute: "b", Value: "2"},
	}
	next := []types.Attribute{
		{Attribute: "b", Value: "2"},
		{Attribute: "a", Value: "1"},
	}

	merged, changed := mergeAttributes(next, prev)

	assert.False(t, changed)
	assert.Len(t, merged, 2)
}

func TestMergeAttributesNewValueWins(t *testing.T) {
	prev := []types.Attribute{
		{Attribute: "a", Value: "1"},
		{Attribute: "b", Value: "2"},
	}
	next := []types.Attribute{{Attribute: "a", Value: "9"}}

	merged, changed := mergeAttributes(next, prev)

	assert.True(t, changed)
	assert.Equal(t, []types.Attribute{
		{Attribute: "a", Value: "9"},
		{Attribute: "b", Value: "2"},
	}, merged)
}

func TestMergeAttributesSubsetOfPreviousUnchanged(t *testing.T) {
	prev := []types.Attribute{
		{Attribute: "a", Value: "1"},
		{Attribute: "b", Value: "2"},
	}
	next := []types.Attribute{{Attribute: "a", Value: "1"}}

	merged, changed := mergeAttributes(next, prev)

	assert.False(t, changed)
	assert.Len(t, merged, 2)
}

func TestMergeDataValuesAddition(t *testing.T) {
	prev := []types.DataValue{{DataElement: "de1", Value: "40"}}
	next := []types.DataValue{
		{DataElement: "de1", Value: "40"},
		{DataElement: "de2", Value: "yes"},
	}

	merged, changed := mergeDataValues(next, prev)

	assert.True(t, changed)
	assert.Len(t, merged, 2)
}

func TestMergeDataValuesIntoEmptyPrevious(t *testing.T) {
	next := []types.DataValue{{DataElement: "de1", Value: "40"}}

	merged, changed := mergeDataValues(next, nil)

	assert.True(t, changed)
	assert.Equal(t, next, merged)
}
