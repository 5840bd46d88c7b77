package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracksync/bridge/pkg/errors"
)

func validMapping() *Mapping {
	return &Mapping{
		ID:                "progA",
		ProgramType:       WithRegistration,
		TrackedEntityType: &Ref{ID: "tet1"},
		OrgUnitStrategy:   StrategyAuto,
		EventDateColumn:   Column{Value: "visit_date"},
		CreateEntities:    true,
		ProgramStages:     []ProgramStage{{ID: "stage1"}},
		Attributes: []ProgramAttribute{{
			Column:    Column{Value: "patient_id"},
			Attribute: TrackedEntityAttribute{ID: "attID", Unique: true},
		}},
	}
}

func TestMappingValidate(t *testing.T) {
	assert.NoError(t, validMapping().Validate())

	tests := []struct {
		name   string
		mutate func(*Mapping)
	}{
		{"no program id", func(m *Mapping) { m.ID = "" }},
		{"stages without event date column", func(m *Mapping) { m.EventDateColumn = Column{} }},
		{"stage without id", func(m *Mapping) { m.ProgramStages[0].ID = "" }},
		{"entity creation without entity reference", func(m *Mapping) { m.TrackedEntityType = nil }},
		{"unknown org unit strategy", func(m *Mapping) { m.OrgUnitStrategy = "fuzzy" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMapping()
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
		})
	}
}

func TestMappingKind(t *testing.T) {
	m := validMapping()
	kind := m.Kind()
	assert.True(t, kind.Typed())
	assert.Equal(t, "tet1", kind.ID())

	m.TrackedEntityType = nil
	m.TrackedEntity = &Ref{ID: "te9"}
	kind = m.Kind()
	assert.False(t, kind.Typed())
	assert.Equal(t, "te9", kind.ID())

	m.TrackedEntity = nil
	assert.True(t, m.Kind().IsZero())
}

func TestMappingUniqueLookups(t *testing.T) {
	m := validMapping()

	col, ok := m.UniqueColumn()
	require.True(t, ok)
	assert.Equal(t, "patient_id", col)

	attr, ok := m.UniqueAttribute()
	require.True(t, ok)
	assert.Equal(t, "attID", attr)

	m.Attributes[0].Attribute.Unique = false
	_, ok = m.UniqueColumn()
	assert.False(t, ok)
	_, ok = m.UniqueAttribute()
	assert.False(t, ok)
}
