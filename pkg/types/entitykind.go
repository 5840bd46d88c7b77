package types

// EntityKind identifies the tracked entity definition a mapping targets.
// A mapping either names a tracked entity type or a bare tracked entity
// reference; the two are mutually exclusive on the wire, so the engine
// works with this tagged value instead of two optional fields.
type EntityKind struct {
	id    string
	typed bool
}

// TypedEntity returns an EntityKind backed by a tracked entity type.
func TypedEntity(id string) EntityKind {
	return EntityKind{id: id, typed: true}
}

// UntypedEntity returns an EntityKind backed by a bare tracked entity reference.
func UntypedEntity(id string) EntityKind {
	return EntityKind{id: id}
}

// ID returns the referenced identifier.
func (k EntityKind) ID() string { return k.id }

// Typed reports whether the reference is a tracked entity type.
func (k EntityKind) Typed() bool { return k.typed }

// IsZero reports whether no reference was configured.
func (k EntityKind) IsZero() bool { return k.id == "" }
