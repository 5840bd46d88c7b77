package reconcile

import (
	"github.com/tracksync/bridge/pkg/types"
	"github.com/tracksync/bridge/pkg/values"
)

// identityRule defines what makes two events of one stage "the same"
// occurrence: a set of identifying data elements, the event date, both, or
// neither. With neither, every candidate is distinct.
type identityRule struct {
	elements  []string
	eventDate bool
}

func (r identityRule) empty() bool {
	return len(r.elements) == 0 && !r.eventDate
}

// deriveRules computes the identity rule of every configured stage from
// its bound, event-identifying data elements and the stage's date flag.
func deriveRules(m *types.Mapping) map[string]identityRule {
	rules := make(map[string]identityRule, len(m.ProgramStages))
	for _, stage := range m.ProgramStages {
		var elements []string
		for _, e := range stage.BoundElements() {
			if e.DataElement.IdentifiesEvent {
				elements = append(elements, e.DataElement.ID)
			}
		}
		rules[stage.ID] = identityRule{
			elements:  elements,
			eventDate: stage.EventDateIdentifiesEvent,
		}
	}
	return rules
}

// matchEvent finds the previously known event the candidate corresponds to
// under the stage's identity rule, or -1. An empty rule falls back to
// one-event-per-date: any same-stage event on the same day matches, so a
// rerun against committed state merges instead of duplicating.
func matchEvent(previous []types.Event, stageID string, rule identityRule, candidate types.Event) int {
	for i, p := range previous {
		if p.ProgramStage != stageID {
			continue
		}
		switch {
		case len(rule.elements) > 0 && rule.eventDate:
			if sameDay(p, candidate) && sameElements(p, candidate, rule.elements) {
				return i
			}
		case len(rule.elements) > 0:
			if sameElements(p, candidate, rule.elements) {
				return i
			}
		default:
			if sameDay(p, candidate) {
				return i
			}
		}
	}
	return -1
}

func sameDay(a, b types.Event) bool {
	return values.DateOnly(a.EventDate) == values.DateOnly(b.EventDate)
}

// sameElements reports whether every identifying element is present in
// both events with equal values. An element absent on either side means
// the events are not the same occurrence.
func sameElements(a, b types.Event, elements []string) bool {
	for _, el := range elements {
		av, aok := a.DataValueFor(el)
		bv, bok := b.DataValueFor(el)
		if !aok || !bok || av != bv {
			return false
		}
	}
	return true
}
