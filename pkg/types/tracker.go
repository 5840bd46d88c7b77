package types

// Record is one raw source row: a flat column-to-value map. Values always
// arrive as strings; typing happens during candidate building.
type Record map[string]string

// Attribute is one validated tracked entity attribute value.
type Attribute struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// DataValue is one validated event data element value.
type DataValue struct {
	DataElement string `json:"dataElement"`
	Value       string `json:"value"`
}

// Coordinate carries an event location when the stage binds latitude and
// longitude columns.
type Coordinate struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Event is one occurrence of a program stage, either fetched from the
// server or computed by the engine.
type Event struct {
	Event                 string      `json:"event,omitempty"`
	Program               string      `json:"program"`
	ProgramStage          string      `json:"programStage"`
	OrgUnit               string      `json:"orgUnit,omitempty"`
	TrackedEntityInstance string      `json:"trackedEntityInstance,omitempty"`
	EventDate             string      `json:"eventDate"`
	Status                string      `json:"status,omitempty"`
	CompletedDate         string      `json:"completedDate,omitempty"`
	Coordinate            *Coordinate `json:"coordinate,omitempty"`
	DataValues            []DataValue `json:"dataValues"`
}

// DataValueFor returns the event's value for a data element.
func (e *Event) DataValueFor(dataElement string) (string, bool) {
	for _, dv := range e.DataValues {
		if dv.DataElement == dataElement {
			return dv.Value, true
		}
	}
	return "", false
}

// Enrollment associates a tracked entity with a program over a date pair.
type Enrollment struct {
	Enrollment            string  `json:"enrollment,omitempty"`
	Program               string  `json:"program"`
	OrgUnit               string  `json:"orgUnit"`
	TrackedEntityInstance string  `json:"trackedEntityInstance,omitempty"`
	EnrollmentDate        string  `json:"enrollmentDate"`
	IncidentDate          string  `json:"incidentDate"`
	Events                []Event `json:"events,omitempty"`
}

// TrackedEntityInstance is the top-level tracked record, with its nested
// enrollments and events as returned by the batched server lookup.
type TrackedEntityInstance struct {
	TrackedEntityInstance string       `json:"trackedEntityInstance,omitempty"`
	OrgUnit               string       `json:"orgUnit"`
	TrackedEntityType     string       `json:"trackedEntityType,omitempty"`
	TrackedEntity         string       `json:"trackedEntity,omitempty"`
	Attributes            []Attribute  `json:"attributes"`
	Enrollments           []Enrollment `json:"enrollments,omitempty"`
}

// AttributeValue returns the entity's value for a tracked entity attribute.
func (t *TrackedEntityInstance) AttributeValue(attribute string) (string, bool) {
	for _, a := range t.Attributes {
		if a.Attribute == attribute {
			return a.Value, true
		}
	}
	return "", false
}

// EnrollmentFor returns the entity's enrollment in the given program.
func (t *TrackedEntityInstance) EnrollmentFor(program string) (*Enrollment, bool) {
	for i := range t.Enrollments {
		if t.Enrollments[i].Program == program {
			return &t.Enrollments[i], true
		}
	}
	return nil, false
}
