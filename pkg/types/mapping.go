// Package types defines the mapping configuration model and the tracker
// payload model shared by the reconciliation engine, the acquisition
// sources, and the server client.
package types

import (
	"github.com/tracksync/bridge/pkg/errors"
)

// ProgramType distinguishes enrollment-based programs from event-only ones.
type ProgramType string

// Program types.
const (
	WithRegistration    ProgramType = "WITH_REGISTRATION"
	WithoutRegistration ProgramType = "WITHOUT_REGISTRATION"
)

// OrgUnitStrategy selects how raw org-unit tokens are resolved against the
// mapping's org-unit catalog.
type OrgUnitStrategy string

// Org-unit resolution strategies.
const (
	StrategyUID  OrgUnitStrategy = "uid"
	StrategyCode OrgUnitStrategy = "code"
	StrategyName OrgUnitStrategy = "name"
	StrategyAuto OrgUnitStrategy = "auto"
)

// Column binds a mapping field to a source record column.
type Column struct {
	Value string `json:"value" yaml:"value"`
}

// Bound reports whether the column carries a binding.
func (c Column) Bound() bool { return c.Value != "" }

// Ref is a bare identifier reference to a server-side object.
type Ref struct {
	ID string `json:"id" yaml:"id"`
}

// OrgUnit is one entry of the mapping's organisation unit catalog.
type OrgUnit struct {
	ID   string `json:"id" yaml:"id"`
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// DataElement describes the target of one stage column binding.
type DataElement struct {
	ID              string     `json:"id" yaml:"id"`
	ValueType       ValueType  `json:"valueType" yaml:"valueType"`
	OptionSet       *OptionSet `json:"optionSet,omitempty" yaml:"optionSet,omitempty"`
	IdentifiesEvent bool       `json:"identifiesEvent,omitempty" yaml:"identifiesEvent,omitempty"`
}

// StageDataElement binds a source column to a data element within a stage.
type StageDataElement struct {
	Column      Column      `json:"column" yaml:"column"`
	DataElement DataElement `json:"dataElement" yaml:"dataElement"`
}

// ProgramStage configures one stage of the target program.
type ProgramStage struct {
	ID                       string             `json:"id" yaml:"id"`
	Repeatable               bool               `json:"repeatable" yaml:"repeatable"`
	CompleteEvents           bool               `json:"completeEvents" yaml:"completeEvents"`
	EventDateIdentifiesEvent bool               `json:"eventDateIdentifiesEvent" yaml:"eventDateIdentifiesEvent"`
	LatitudeColumn           Column             `json:"latitudeColumn,omitempty" yaml:"latitudeColumn,omitempty"`
	LongitudeColumn          Column             `json:"longitudeColumn,omitempty" yaml:"longitudeColumn,omitempty"`
	DataElements             []StageDataElement `json:"programStageDataElements" yaml:"programStageDataElements"`
}

// BoundElements returns the stage's data element bindings that carry a
// source column.
func (s *ProgramStage) BoundElements() []StageDataElement {
	var bound []StageDataElement
	for _, e := range s.DataElements {
		if e.Column.Bound() {
			bound = append(bound, e)
		}
	}
	return bound
}

// TrackedEntityAttribute describes the target of one attribute binding.
type TrackedEntityAttribute struct {
	ID        string     `json:"id" yaml:"id"`
	ValueType ValueType  `json:"valueType" yaml:"valueType"`
	OptionSet *OptionSet `json:"optionSet,omitempty" yaml:"optionSet,omitempty"`
	Unique    bool       `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// ProgramAttribute binds a source column to a tracked entity attribute.
type ProgramAttribute struct {
	Column    Column                 `json:"column" yaml:"column"`
	Attribute TrackedEntityAttribute `json:"trackedEntityAttribute" yaml:"trackedEntityAttribute"`
}

// Mapping is one reconciliation configuration: the target program, its
// stage and attribute bindings, the org-unit catalog, and the flags that
// gate creates and updates. Mappings are read-only during a pass.
type Mapping struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	ProgramType ProgramType `json:"programType" yaml:"programType"`

	TrackedEntityType *Ref `json:"trackedEntityType,omitempty" yaml:"trackedEntityType,omitempty"`
	TrackedEntity     *Ref `json:"trackedEntity,omitempty" yaml:"trackedEntity,omitempty"`

	OrgUnitStrategy      OrgUnitStrategy `json:"orgUnitStrategy" yaml:"orgUnitStrategy"`
	OrgUnitColumn        Column          `json:"orgUnitColumn,omitempty" yaml:"orgUnitColumn,omitempty"`
	EventDateColumn      Column          `json:"eventDateColumn,omitempty" yaml:"eventDateColumn,omitempty"`
	EnrollmentDateColumn Column          `json:"enrollmentDateColumn,omitempty" yaml:"enrollmentDateColumn,omitempty"`
	IncidentDateColumn   Column          `json:"incidentDateColumn,omitempty" yaml:"incidentDateColumn,omitempty"`

	CreateEntities    bool `json:"createEntities" yaml:"createEntities"`
	CreateEnrollments bool `json:"createNewEnrollments" yaml:"createNewEnrollments"`
	CreateEvents      bool `json:"createNewEvents" yaml:"createNewEvents"`
	UpdateEntities    bool `json:"updateEntities" yaml:"updateEntities"`
	UpdateEvents      bool `json:"updateEvents" yaml:"updateEvents"`

	ProgramStages []ProgramStage     `json:"programStages" yaml:"programStages"`
	Attributes    []ProgramAttribute `json:"programTrackedEntityAttributes" yaml:"programTrackedEntityAttributes"`
	OrgUnits      []OrgUnit          `json:"organisationUnits" yaml:"organisationUnits"`

	// Optional per-mapping remote feed, used when no global source is
	// configured.
	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
	DateFilter    string `json:"dateFilter,omitempty" yaml:"dateFilter,omitempty"`
	DateEndFilter string `json:"dateEndFilter,omitempty" yaml:"dateEndFilter,omitempty"`
}

// Registration reports whether the mapping targets an enrollment-based
// program.
func (m *Mapping) Registration() bool {
	return m.ProgramType == WithRegistration
}

// Kind returns the tagged entity reference for enrollment-based mappings.
func (m *Mapping) Kind() EntityKind {
	switch {
	case m.TrackedEntityType != nil && m.TrackedEntityType.ID != "":
		return TypedEntity(m.TrackedEntityType.ID)
	case m.TrackedEntity != nil && m.TrackedEntity.ID != "":
		return UntypedEntity(m.TrackedEntity.ID)
	default:
		return EntityKind{}
	}
}

// UniqueColumn returns the column bound to the first unique tracked entity
// attribute, if any. Grouping keys come from this column.
func (m *Mapping) UniqueColumn() (string, bool) {
	for _, a := range m.Attributes {
		if a.Attribute.Unique && a.Column.Bound() {
			return a.Column.Value, true
		}
	}
	return "", false
}

// UniqueAttribute returns the identifier of the first unique tracked entity
// attribute, if any. Previous entities are looked up by this attribute.
func (m *Mapping) UniqueAttribute() (string, bool) {
	for _, a := range m.Attributes {
		if a.Attribute.Unique {
			return a.Attribute.ID, true
		}
	}
	return "", false
}

// Validate checks the structural preconditions a mapping must satisfy
// before a pass may start. Anything it reports is a configuration defect,
// not a per-client diagnostic.
func (m *Mapping) Validate() error {
	if m.ID == "" {
		return &errors.ValidationError{Field: "id", Message: "mapping has no program identifier"}
	}
	if len(m.ProgramStages) > 0 && !m.EventDateColumn.Bound() {
		return &errors.ValidationError{Field: "eventDateColumn", Message: "required when program stages are configured"}
	}
	for _, s := range m.ProgramStages {
		if s.ID == "" {
			return &errors.ValidationError{Field: "programStages", Message: "stage without identifier"}
		}
	}
	if m.Registration() && m.CreateEntities && m.Kind().IsZero() {
		return &errors.ValidationError{Field: "trackedEntityType", Message: "entity creation enabled but no tracked entity reference configured"}
	}
	switch m.OrgUnitStrategy {
	case StrategyUID, StrategyCode, StrategyName, StrategyAuto, "":
	default:
		return &errors.ValidationError{Field: "orgUnitStrategy", Value: string(m.OrgUnitStrategy), Message: "unknown strategy"}
	}
	return nil
}
