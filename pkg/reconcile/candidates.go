package reconcile

import (
	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
	"github.com/tracksync/bridge/pkg/values"
)

// datePair is one valid enrollment/incident date combination observed on a
// row. Only the first recorded pair per client is used downstream.
type datePair struct {
	enrollmentDate string
	incidentDate   string
}

// candidates holds everything a client group's rows yield before matching:
// per-row attribute sets, candidate events across all stages, enrollment
// date pairs, and the raw org-unit tokens in row order.
type candidates struct {
	attributeSets   [][]types.Attribute
	events          []types.Event
	enrollmentDates []datePair
	orgUnits        []string
}

// attributes returns the client's candidate attribute set: the first row's
// valid attributes. Later rows never overwrite earlier ones; merging
// against previous state happens during matching instead.
func (c *candidates) attributes() []types.Attribute {
	if len(c.attributeSets) == 0 {
		return nil
	}
	return c.attributeSets[0]
}

// build computes the candidates for one client group, validating every
// bound value and recording empty/invalid cells as notes on the result.
func (e *Engine) build(g ClientGroup, res *Result) *candidates {
	m := e.mapping
	c := &candidates{}

	for _, rec := range g.Records {
		for i := range m.ProgramStages {
			e.buildStageEvent(&m.ProgramStages[i], g.Key, rec, c, res)
		}

		if attrs := e.buildAttributes(g.Key, rec, res); len(attrs) > 0 {
			c.attributeSets = append(c.attributeSets, attrs)
		}

		if m.Registration() && m.EnrollmentDateColumn.Bound() && m.IncidentDateColumn.Bound() {
			enrollmentDate, eok := values.Date(rec[m.EnrollmentDateColumn.Value])
			incidentDate, iok := values.Date(rec[m.IncidentDateColumn.Value])
			if eok && iok {
				c.enrollmentDates = append(c.enrollmentDates, datePair{
					enrollmentDate: enrollmentDate,
					incidentDate:   incidentDate,
				})
			}
		}

		if m.OrgUnitColumn.Bound() {
			c.orgUnits = append(c.orgUnits, rec[m.OrgUnitColumn.Value])
		}
	}

	return c
}

// buildStageEvent produces at most one candidate event for a row and
// stage. A row without a parseable event date, or a stage without bound
// data elements, contributes nothing.
func (e *Engine) buildStageEvent(stage *types.ProgramStage, clientKey string, rec types.Record, c *candidates, res *Result) {
	eventDate, ok := values.Date(rec[e.mapping.EventDateColumn.Value])
	bound := stage.BoundElements()
	if !ok || len(bound) == 0 {
		return
	}

	var dataValues []types.DataValue
	for _, el := range bound {
		raw, present := rec[el.Column.Value]
		if !present {
			continue
		}
		value, err := values.Validate(el.DataElement.ValueType, raw, el.DataElement.OptionSet)
		if err != nil {
			e.recordRejection(res, clientKey, el.Column.Value, raw, err)
			continue
		}
		dataValues = append(dataValues, types.DataValue{
			DataElement: el.DataElement.ID,
			Value:       value,
		})
	}

	event := types.Event{
		Program:      e.mapping.ID,
		ProgramStage: stage.ID,
		EventDate:    eventDate,
		DataValues:   dataValues,
	}

	if stage.LatitudeColumn.Bound() && stage.LongitudeColumn.Bound() {
		lat, lon := rec[stage.LatitudeColumn.Value], rec[stage.LongitudeColumn.Value]
		if lat != "" && lon != "" {
			event.Coordinate = &types.Coordinate{Latitude: lat, Longitude: lon}
		}
	}

	if stage.CompleteEvents {
		event.Status = "COMPLETED"
		event.CompletedDate = eventDate
	}

	c.events = append(c.events, event)
}

// buildAttributes validates one row's bound attribute columns.
func (e *Engine) buildAttributes(clientKey string, rec types.Record, res *Result) []types.Attribute {
	var attrs []types.Attribute
	for _, a := range e.mapping.Attributes {
		if !a.Column.Bound() {
			continue
		}
		raw, present := rec[a.Column.Value]
		if !present {
			continue
		}
		value, err := values.Validate(a.Attribute.ValueType, raw, a.Attribute.OptionSet)
		if err != nil {
			e.recordRejection(res, clientKey, a.Column.Value, raw, err)
			continue
		}
		attrs = append(attrs, types.Attribute{
			Attribute: a.Attribute.ID,
			Value:     value,
		})
	}
	return attrs
}

// recordRejection classifies a rejected value as empty or invalid and
// records it with its client and column reference.
func (e *Engine) recordRejection(res *Result, clientKey, column, raw string, err error) {
	if errors.Is(err, errors.ErrEmptyValue) {
		e.logger.Info().
			Str("client", clientKey).
			Str("column", column).
			Msg("Value was empty")
		res.note(EmptyValue, clientKey, column, raw, "value was empty")
		return
	}
	e.logger.Warn().
		Str("client", clientKey).
		Str("column", column).
		Str("value", raw).
		Msg(err.Error())
	res.note(InvalidValue, clientKey, column, raw, err.Error())
}
