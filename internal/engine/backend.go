package engine

import "context"

// Backend is the source of truth the engine reconciles against. It accepts
// writes and returns freshly computed derived properties; the engine merges
// those onto its local copies but never computes them itself.
//
// Interaction writes return the owning relationship's updated properties,
// since a logged contact can shift the last-contact date and urgency.
type Backend interface {
	// Interactions returns every logged interaction, in no particular order;
	// the engine sorts on load.
	Interactions(ctx context.Context) ([]Interaction, error)

	// RelationshipsGrouped returns relationships pre-grouped by urgency
	// status. The engine re-normalizes the grouping on load, so order and
	// completeness of the returned buckets are not load-bearing.
	RelationshipsGrouped(ctx context.Context) ([]UrgencyGroup, error)

	// Relationship fetches a single relationship by identity.
	Relationship(ctx context.Context, id string) (Relationship, error)

	// Interaction fetches a single interaction by identity.
	Interaction(ctx context.Context, relationshipID, id string) (Interaction, error)

	AddRelationship(ctx context.Context, r Relationship) (id string, props DerivedProperties, err error)
	UpdateRelationship(ctx context.Context, r Relationship) (DerivedProperties, error)
	DeleteRelationship(ctx context.Context, id string) error

	AddInteraction(ctx context.Context, i Interaction) (id string, props DerivedProperties, err error)
	UpdateInteraction(ctx context.Context, i Interaction) (DerivedProperties, error)
	DeleteInteraction(ctx context.Context, relationshipID, id string) (DerivedProperties, error)
}

// Confirmer asks the user to approve a destructive operation before the
// backend call is made. Declining is a normal outcome, not an error.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmerFunc adapts a plain function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// HighlightLocation identifies the single item the presentation layer should
// emphasize after a mutation: the containing group (a time-group label or an
// urgency status) and the index within it.
type HighlightLocation struct {
	GroupLabel string
	Index      int
}

// InteractionResult is the outcome of an interaction mutation.
// Cancelled marks a declined confirmation; Found is false when an edit or
// delete target was absent from the canonical collection. Both are normal
// results; only backend failures surface as errors.
type InteractionResult struct {
	Cancelled   bool
	Found       bool
	Interaction Interaction
	Location    HighlightLocation
}

// RelationshipResult is the outcome of a relationship mutation.
type RelationshipResult struct {
	Cancelled    bool
	Found        bool
	Relationship Relationship
	Location     HighlightLocation
}
