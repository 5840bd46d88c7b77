package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/tracksync/bridge/pkg/types"
	"github.com/tracksync/bridge/pkg/values"
)

// dedupe collapses a stage's candidate events to one representative per
// identity key, last seen winning. Output order follows the first
// occurrence of each key. An empty rule performs no deduplication.
func dedupe(events []types.Event, rule identityRule) []types.Event {
	if rule.empty() || len(events) < 2 {
		return events
	}

	var order []string
	byKey := make(map[string]types.Event, len(events))
	for i, ev := range events {
		key := identityKey(ev, i, rule)
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = ev
	}

	out := make([]types.Event, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// identityKey serializes the parts of an event that participate in its
// identity. An event missing any identifying element gets a key of its
// own and is never collapsed with others.
func identityKey(ev types.Event, i int, rule identityRule) string {
	if len(rule.elements) == 0 {
		// Date-only identity collapses same-day events regardless of content.
		return "date:" + values.DateOnly(ev.EventDate)
	}

	parts := make([]string, 0, len(rule.elements))
	for _, el := range rule.elements {
		v, ok := ev.DataValueFor(el)
		if !ok {
			if ev.Event != "" {
				return "event:" + ev.Event
			}
			return fmt.Sprintf("index:%d", i)
		}
		parts = append(parts, v)
	}

	tuple := struct {
		EventDate string   `json:"eventDate,omitempty"`
		Values    []string `json:"values"`
	}{Values: parts}
	if rule.eventDate {
		tuple.EventDate = values.DateOnly(ev.EventDate)
	}

	key, err := json.Marshal(tuple)
	if err != nil {
		// Marshaling strings cannot fail; fall back to a unique key.
		return fmt.Sprintf("index:%d", i)
	}
	return string(key)
}
