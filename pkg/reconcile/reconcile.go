// Package reconcile implements the reconciliation and merge engine: it
// groups raw source records into client identities, builds validated
// candidate attributes and events, matches each client against previously
// known tracked entities, and computes the minimal set of creates and
// updates that brings the remote state in line with the source data.
//
// The engine is pure: it performs no I/O, owns no clock, and consumes an
// injected identifier generator. One Engine serves one mapping; a pass is
// one call to Run with the full source and previously-known snapshots.
package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/tracksync/bridge/pkg/orgunits"
	"github.com/tracksync/bridge/pkg/types"
	"github.com/tracksync/bridge/pkg/uid"
)

// Engine reconciles source records against previously known entities for
// one mapping.
type Engine struct {
	mapping *types.Mapping
	uid     uid.Generator
	logger  *zerolog.Logger
	rules   map[string]identityRule
}

// New creates an engine for a mapping. The mapping must be structurally
// valid; a defective one fails here so a pass never starts against it.
func New(mapping *types.Mapping, opts ...Option) (*Engine, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		mapping: mapping,
		rules:   deriveRules(mapping),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.uid == nil {
		e.uid = uid.New()
	}
	if e.logger == nil {
		nop := zerolog.Nop()
		e.logger = &nop
	}
	return e, nil
}

// Run reconciles one pass. Records arrive in source order; previous holds
// the batched lookup of entities keyed by the unique attribute. Client
// groups are processed sequentially so diagnostic order is deterministic.
func (e *Engine) Run(records []types.Record, previous []types.TrackedEntityInstance) *Result {
	res := NewResult()

	for _, g := range group(e.mapping, records, previous) {
		e.process(g, res)
	}

	e.logger.Info().
		Int("new_entities", len(res.NewEntities)).
		Int("entity_updates", len(res.EntityUpdates)).
		Int("new_enrollments", len(res.NewEnrollments)).
		Int("new_events", len(res.NewEvents)).
		Int("event_updates", len(res.EventUpdates)).
		Int("duplicates", len(res.Duplicates)).
		Msg("Reconciliation pass complete")

	return res
}

// process dispatches one client group on how many previously known
// entities it matched. The three paths contribute disjointly: a group
// recorded as duplicate never produces creates or updates.
func (e *Engine) process(g ClientGroup, res *Result) {
	c := e.build(g, res)

	switch len(g.Previous) {
	case 0:
		e.reconcileNew(g, c, res)
	case 1:
		e.reconcileMatched(g, g.Previous[0], c, res)
	default:
		e.logger.Warn().
			Str("client", g.Key).
			Int("matches", len(g.Previous)).
			Msg("Client matches more than one known entity, skipping")
		res.Duplicates = append(res.Duplicates, Duplicate{ClientKey: g.Key, Entities: g.Previous})
	}
}

// reconcileNew handles a client with no prior identity: resolve its org
// unit, then synthesize the entity, enrollment, and events the mapping's
// flags allow.
func (e *Engine) reconcileNew(g ClientGroup, c *candidates, res *Result) {
	m := e.mapping

	tokens := distinct(c.orgUnits)
	switch {
	case len(tokens) == 0:
		e.logger.Warn().Str("client", g.Key).Msg("Organisation unit missing")
		res.error(MissingOrgUnit, g.Key, "", "organisation unit missing")
		return
	case len(tokens) > 1:
		e.logger.Warn().Str("client", g.Key).Strs("tokens", tokens).Msg("Client belongs to more than one organisation unit")
		res.error(AmbiguousOrgUnit, g.Key, tokens[0], "client belongs to more than one organisation unit")
		return
	}

	unit, err := orgunits.Resolve(tokens[0], m.OrgUnitStrategy, m.OrgUnits)
	if err != nil {
		e.logger.Warn().
			Str("client", g.Key).
			Str("token", tokens[0]).
			Str("strategy", string(m.OrgUnitStrategy)).
			Msg("Organisation unit not found")
		res.error(OrgUnitNotFound, g.Key, tokens[0], "organisation unit not found using strategy "+string(m.OrgUnitStrategy))
		return
	}

	// Event-only programs have no enrollment to merge into; every candidate
	// goes out as its own event, including several per stage.
	if !m.Registration() {
		if m.CreateEvents {
			for _, ev := range c.events {
				ev.OrgUnit = unit.ID
				ev.Event = e.uid.UID()
				res.NewEvents = append(res.NewEvents, ev)
			}
		}
		return
	}

	if !m.CreateEntities || !m.CreateEnrollments {
		e.logger.Debug().Str("client", g.Key).Msg("Entity or enrollment creation disabled, skipping new client")
		return
	}
	if len(c.enrollmentDates) == 0 {
		e.logger.Warn().Str("client", g.Key).Msg("No valid enrollment dates for new client")
		res.note(NoEnrollmentDates, g.Key, "", "", "no valid enrollment and incident dates")
		return
	}

	entityID := e.uid.UID()
	entity := types.TrackedEntityInstance{
		TrackedEntityInstance: entityID,
		OrgUnit:               unit.ID,
		Attributes:            c.attributes(),
	}
	if kind := m.Kind(); kind.Typed() {
		entity.TrackedEntityType = kind.ID()
	} else {
		entity.TrackedEntity = kind.ID()
	}
	res.NewEntities = append(res.NewEntities, entity)

	res.NewEnrollments = append(res.NewEnrollments, types.Enrollment{
		Enrollment:            e.uid.UID(),
		Program:               m.ID,
		OrgUnit:               unit.ID,
		TrackedEntityInstance: entityID,
		EnrollmentDate:        c.enrollmentDates[0].enrollmentDate,
		IncidentDate:          c.enrollmentDates[0].incidentDate,
	})

	if m.CreateEvents {
		e.emitStageEvents(c.events, unit.ID, entityID, res)
	}
}

// reconcileMatched handles a client with exactly one prior identity:
// merge attributes, then merge or create its enrollment and events.
func (e *Engine) reconcileMatched(g ClientGroup, prev types.TrackedEntityInstance, c *candidates, res *Result) {
	m := e.mapping

	if merged, changed := mergeAttributes(c.attributes(), prev.Attributes); changed && m.UpdateEntities {
		res.EntityUpdates = append(res.EntityUpdates, types.TrackedEntityInstance{
			TrackedEntityInstance: prev.TrackedEntityInstance,
			OrgUnit:               prev.OrgUnit,
			TrackedEntityType:     prev.TrackedEntityType,
			TrackedEntity:         prev.TrackedEntity,
			Attributes:            merged,
		})
	}

	// Every candidate event now belongs to the known entity.
	events := make([]types.Event, len(c.events))
	for i, ev := range c.events {
		ev.TrackedEntityInstance = prev.TrackedEntityInstance
		ev.OrgUnit = prev.OrgUnit
		events[i] = ev
	}

	enrollment, found := prev.EnrollmentFor(m.ID)
	if !found {
		if len(c.enrollmentDates) == 0 {
			e.logger.Warn().Str("client", g.Key).Msg("No enrollment for program and no valid enrollment dates")
			res.note(NoEnrollmentDates, g.Key, "", "", "no enrollment for program and no valid enrollment dates")
			return
		}
		if !m.CreateEnrollments {
			e.logger.Debug().Str("client", g.Key).Msg("Enrollment creation disabled, skipping")
			return
		}
		res.NewEnrollments = append(res.NewEnrollments, types.Enrollment{
			Enrollment:            e.uid.UID(),
			Program:               m.ID,
			OrgUnit:               prev.OrgUnit,
			TrackedEntityInstance: prev.TrackedEntityInstance,
			EnrollmentDate:        c.enrollmentDates[0].enrollmentDate,
			IncidentDate:          c.enrollmentDates[0].incidentDate,
		})
		if m.CreateEvents {
			e.emitStageEvents(events, prev.OrgUnit, prev.TrackedEntityInstance, res)
		}
		return
	}

	e.mergeEnrollmentEvents(events, enrollment, res)
}

// emitStageEvents deduplicates candidate events per stage and emits them
// as new events: every survivor for repeatable stages, the max-by-date
// single for non-repeatable ones. Each event gets a fresh identifier.
func (e *Engine) emitStageEvents(events []types.Event, orgUnit, entityID string, res *Result) {
	grouped := groupByStage(events)
	for _, stage := range e.mapping.ProgramStages {
		evs := grouped[stage.ID]
		if len(evs) == 0 {
			continue
		}
		for i := range evs {
			evs[i].OrgUnit = orgUnit
			evs[i].TrackedEntityInstance = entityID
			evs[i].Event = e.uid.UID()
		}
		evs = dedupe(evs, e.rules[stage.ID])
		if stage.Repeatable {
			res.NewEvents = append(res.NewEvents, evs...)
		} else {
			res.NewEvents = append(res.NewEvents, latest(evs))
		}
	}
}

// mergeEnrollmentEvents reconciles candidate events against an existing
// enrollment's events, stage by stage: matched candidates become minimal
// updates, unmatched ones become new events, per the mapping's flags.
func (e *Engine) mergeEnrollmentEvents(events []types.Event, enrollment *types.Enrollment, res *Result) {
	m := e.mapping
	grouped := groupByStage(events)

	for _, stage := range m.ProgramStages {
		evs := grouped[stage.ID]
		if len(evs) == 0 {
			continue
		}
		rule := e.rules[stage.ID]
		evs = dedupe(evs, rule)

		if stage.Repeatable {
			for _, ev := range evs {
				idx := matchEvent(enrollment.Events, stage.ID, rule, ev)
				if idx >= 0 {
					e.mergeEvent(ev, enrollment.Events[idx], res)
				} else if m.CreateEvents {
					ev.Event = e.uid.UID()
					res.NewEvents = append(res.NewEvents, ev)
				}
			}
			continue
		}

		// Non-repeatable: latest candidate wins, and at most one event
		// exists per stage to merge into.
		max := latest(evs)
		if idx := indexOfStage(enrollment.Events, stage.ID); idx >= 0 {
			e.mergeEvent(max, enrollment.Events[idx], res)
		} else if m.CreateEvents {
			max.Event = e.uid.UID()
			res.NewEvents = append(res.NewEvents, max)
		}
	}
}

// mergeEvent computes the data-value union and emits an update only when
// the merged set strictly differs from the previous one.
func (e *Engine) mergeEvent(candidate, prev types.Event, res *Result) {
	merged, changed := mergeDataValues(candidate.DataValues, prev.DataValues)
	if !changed || len(merged) == 0 || !e.mapping.UpdateEvents {
		return
	}
	update := prev
	update.DataValues = merged
	res.EventUpdates = append(res.EventUpdates, update)
}

// groupByStage partitions events by program stage, preserving order.
func groupByStage(events []types.Event) map[string][]types.Event {
	grouped := make(map[string][]types.Event)
	for _, ev := range events {
		grouped[ev.ProgramStage] = append(grouped[ev.ProgramStage], ev)
	}
	return grouped
}

// latest returns the event with the maximum event date, lexicographic on
// the ISO date string. The first maximum wins ties.
func latest(events []types.Event) types.Event {
	max := events[0]
	for _, ev := range events[1:] {
		if ev.EventDate > max.EventDate {
			max = ev
		}
	}
	return max
}

// indexOfStage finds the first existing event for a stage.
func indexOfStage(events []types.Event, stageID string) int {
	for i, ev := range events {
		if ev.ProgramStage == stageID {
			return i
		}
	}
	return -1
}

// distinct de-duplicates tokens preserving first-seen order.
func distinct(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
