package reconcile

import (
	"fmt"

	"github.com/tracksync/bridge/pkg/types"
)

// DiagnosticKind classifies the non-fatal conditions a pass records.
type DiagnosticKind string

// Diagnostic kinds.
const (
	EmptyValue        DiagnosticKind = "empty_value"
	InvalidValue      DiagnosticKind = "invalid_value"
	NoEnrollmentDates DiagnosticKind = "no_enrollment_dates"
	AmbiguousOrgUnit  DiagnosticKind = "ambiguous_org_unit"
	OrgUnitNotFound   DiagnosticKind = "org_unit_not_found"
	MissingOrgUnit    DiagnosticKind = "missing_org_unit"
)

// Diagnostic records one localized condition with enough context to trace
// it back to a client and column. Diagnostics never abort a pass.
type Diagnostic struct {
	Kind      DiagnosticKind
	ClientKey string
	Column    string
	Value     string
	Message   string
}

// Duplicate is a client group that matched more than one previously known
// entity. Ambiguous identity is never resolved automatically; the group is
// recorded here and contributes no output.
type Duplicate struct {
	ClientKey string
	Entities  []types.TrackedEntityInstance
}

// Result is the outcome of one reconciliation pass: the five disjoint
// create/update accumulators plus diagnostics.
type Result struct {
	NewEntities    []types.TrackedEntityInstance
	EntityUpdates  []types.TrackedEntityInstance
	NewEnrollments []types.Enrollment
	NewEvents      []types.Event
	EventUpdates   []types.Event

	Duplicates []Duplicate
	Errors     []Diagnostic

	// Conflicts is reserved for value-conflict reporting (a candidate
	// value disagreeing with a committed one it is not allowed to
	// overwrite). No pass populates it yet.
	Conflicts []Diagnostic

	Notes []Diagnostic
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{}
}

// HasChanges reports whether the pass produced anything to submit.
func (r *Result) HasChanges() bool {
	return len(r.NewEntities)+len(r.EntityUpdates)+len(r.NewEnrollments)+
		len(r.NewEvents)+len(r.EventUpdates) > 0
}

// Summary returns a human-readable one-line account of the result.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d new entities, %d entity updates, %d new enrollments, %d new events, %d event updates (%d duplicates, %d errors)",
		len(r.NewEntities), len(r.EntityUpdates), len(r.NewEnrollments),
		len(r.NewEvents), len(r.EventUpdates), len(r.Duplicates), len(r.Errors))
}

func (r *Result) note(kind DiagnosticKind, clientKey, column, value, message string) {
	r.Notes = append(r.Notes, Diagnostic{Kind: kind, ClientKey: clientKey, Column: column, Value: value, Message: message})
}

func (r *Result) error(kind DiagnosticKind, clientKey, value, message string) {
	r.Errors = append(r.Errors, Diagnostic{Kind: kind, ClientKey: clientKey, Value: value, Message: message})
}
