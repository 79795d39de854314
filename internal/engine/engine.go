package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tartampluch/go-keepintouch/internal/config"
)

// Engine owns the canonical in-memory collections for the lifetime of a
// session: interactions sorted descending by date and relationships grouped
// by urgency status. It reconciles mutations against the Backend, merging the
// backend's derived properties back into the local copies, and produces
// copy-on-write snapshots for the presentation layer.
//
// The engine is single-threaded by contract: the only suspension points are
// the Backend round-trips, and callers are expected to serialize mutations
// against the same identity (e.g. by disabling the triggering control while
// a write is pending).
type Engine struct {
	Backend   Backend
	Clock     Clock     // Interface for time mocking.
	Labels    LabelSet  // Phrases for relative-time group labels.
	Confirmer Confirmer // Approves deletions; nil means always confirmed.

	interactions []Interaction
	groups       []UrgencyGroup
	groupUnit    TimeUnit
	searchQuery  string
}

// NewEngine wires an engine against a backend with default collaborators.
func NewEngine(backend Backend) *Engine {
	return &Engine{
		Backend:   backend,
		Clock:     RealClock{},
		Labels:    EnglishLabels(),
		groupUnit: ParseTimeUnit(config.DefaultGroupUnit),
	}
}

// Load fetches both collections from the backend and normalizes them:
// interactions are sorted descending by date (stable, so backend order breaks
// ties), relationships are re-classified into the five fixed buckets.
func (e *Engine) Load(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	log.InfoContext(ctx, config.MsgLoadStarted)

	interactions, err := e.Backend.Interactions(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrBackendFetch, err)
	}
	slices.SortStableFunc(interactions, func(a, b Interaction) int {
		return b.Date.Compare(a.Date)
	})

	groups, err := e.Backend.RelationshipsGrouped(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrBackendFetch, err)
	}

	relationships := flattenGroups(groups)
	e.interactions = interactions
	e.groups = Classify(relationships)

	log.InfoContext(ctx, config.MsgLoadFinished,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyCount, len(e.interactions)),
			slog.Int(config.LogKeyTotal, len(relationships)),
		),
	)
	return nil
}

// SetGroupUnit changes the time granularity of the interaction view.
func (e *Engine) SetGroupUnit(unit TimeUnit) {
	e.groupUnit = unit
}

// SetSearchQuery normalizes and stores the search filter. An empty query
// restores the unfiltered canonical views. The canonical collections are
// never mutated by filtering.
func (e *Engine) SetSearchQuery(query string) {
	e.searchQuery = strings.ToLower(strings.TrimSpace(query))
}

// -----------------------------------------------------------------------------
// Read accessors (snapshots)
// -----------------------------------------------------------------------------

// GroupedInteractions returns the current time-bucketed interaction view,
// respecting the search query.
func (e *Engine) GroupedInteractions() []TimeGroup {
	return GroupByTimeUnit(e.visibleInteractions(), e.groupUnit, "", e.Clock.Now(), e.Labels).Groups
}

// GroupedRelationships returns the five urgency buckets in fixed order,
// respecting the search query. Always exactly five groups, empty ones
// included, so empty buckets still render.
func (e *Engine) GroupedRelationships() []UrgencyGroup {
	snapshot := make([]UrgencyGroup, len(e.groups))
	for i, group := range e.groups {
		snapshot[i] = UrgencyGroup{
			Status:        group.Status,
			StatusColor:   group.StatusColor,
			Relationships: e.filterRelationships(group.Relationships),
		}
	}
	return snapshot
}

// RelationshipNames returns the name-suggestion list: full names sorted by
// first name ascending, respecting the search query.
func (e *Engine) RelationshipNames() []string {
	all := flattenGroups(e.groups)
	slices.SortStableFunc(all, func(a, b Relationship) int {
		return strings.Compare(a.FirstName, b.FirstName)
	})

	names := make([]string, 0, len(all))
	for _, relationship := range all {
		if e.matches(relationship.FullName) {
			names = append(names, relationship.FullName)
		}
	}
	return names
}

func (e *Engine) visibleInteractions() []Interaction {
	if e.searchQuery == "" {
		return e.interactions
	}
	filtered := make([]Interaction, 0, len(e.interactions))
	for _, interaction := range e.interactions {
		if e.matches(interaction.RelationshipName) {
			filtered = append(filtered, interaction)
		}
	}
	return filtered
}

func (e *Engine) filterRelationships(relationships []Relationship) []Relationship {
	filtered := make([]Relationship, 0, len(relationships))
	for _, relationship := range relationships {
		if e.matches(relationship.FullName) {
			filtered = append(filtered, relationship)
		}
	}
	return filtered
}

func (e *Engine) matches(name string) bool {
	if e.searchQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), e.searchQuery)
}

// -----------------------------------------------------------------------------
// Interaction mutations
// -----------------------------------------------------------------------------

// AddInteraction submits a candidate (no identity yet) to the backend and, on
// success, merges the assigned identity in, inserts the interaction in date
// order and refreshes the owning relationship's derived properties. The
// result carries the new highlight location. On failure the candidate is
// discarded and no state is retained.
func (e *Engine) AddInteraction(ctx context.Context, candidate Interaction) (InteractionResult, error) {
	id, props, err := e.Backend.AddInteraction(ctx, candidate)
	if err != nil {
		return InteractionResult{}, fmt.Errorf("%s: %w", config.ErrBackendAdd, err)
	}

	candidate.ID = id
	e.interactions = InsertSorted(e.interactions, candidate, interactionDateKey, Descending)
	e.applyRelationshipProps(candidate.RelationshipID, props)

	e.logMutation("add_interaction", id)
	return InteractionResult{
		Found:       true,
		Interaction: candidate,
		Location:    e.locateInteraction(id),
	}, nil
}

// EditInteraction sends the full updated payload to the backend, merges the
// returned derived properties onto the owning relationship and re-sorts the
// interaction only when its date actually changed; otherwise the item is
// updated in place to avoid needless list churn. An absent target is a
// normal no-op reported through Found.
func (e *Engine) EditInteraction(ctx context.Context, updated Interaction) (InteractionResult, error) {
	idx := slices.IndexFunc(e.interactions, byInteractionID(updated.ID))
	if idx < 0 {
		return InteractionResult{}, nil
	}
	existing := e.interactions[idx]

	props, err := e.Backend.UpdateInteraction(ctx, updated)
	if err != nil {
		return InteractionResult{}, fmt.Errorf("%s: %w", config.ErrBackendUpdate, err)
	}

	// Preserve local-only denormalized fields the backend does not echo.
	if updated.RelationshipID == "" {
		updated.RelationshipID = existing.RelationshipID
	}
	if updated.RelationshipName == "" {
		updated.RelationshipName = existing.RelationshipName
	}

	if existing.Date.Equal(updated.Date) {
		items := slices.Clone(e.interactions)
		items[idx] = updated
		e.interactions = items
	} else {
		items, _ := Remove(e.interactions, byInteractionID(updated.ID))
		e.interactions = InsertSorted(items, updated, interactionDateKey, Descending)
	}
	e.applyRelationshipProps(updated.RelationshipID, props)

	e.logMutation("edit_interaction", updated.ID)
	return InteractionResult{
		Found:       true,
		Interaction: updated,
		Location:    e.locateInteraction(updated.ID),
	}, nil
}

// DeleteInteraction asks for confirmation before the backend call. A declined
// confirmation leaves the collection untouched and reports Cancelled; a
// backend failure is returned as an error with the collection untouched.
func (e *Engine) DeleteInteraction(ctx context.Context, target Interaction) (InteractionResult, error) {
	idx := slices.IndexFunc(e.interactions, byInteractionID(target.ID))
	if idx < 0 {
		return InteractionResult{}, nil
	}
	target = e.interactions[idx]

	subject := fmt.Sprintf(config.FormatInteractionSubject, target.RelationshipName)
	if !e.confirmed(ctx, fmt.Sprintf(config.FormatConfirmDelete, subject)) {
		slog.Debug(config.MsgDeleteCancel,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyID, target.ID,
		)
		return InteractionResult{Cancelled: true, Found: true}, nil
	}

	props, err := e.Backend.DeleteInteraction(ctx, target.RelationshipID, target.ID)
	if err != nil {
		return InteractionResult{}, fmt.Errorf("%s: %w", config.ErrBackendDelete, err)
	}

	e.interactions, _ = Remove(e.interactions, byInteractionID(target.ID))
	e.applyRelationshipProps(target.RelationshipID, props)

	e.logMutation("delete_interaction", target.ID)
	return InteractionResult{Found: true, Interaction: target}, nil
}

// -----------------------------------------------------------------------------
// Relationship mutations
// -----------------------------------------------------------------------------

// AddRelationship submits a candidate to the backend, merges the assigned
// identity and derived properties, and inserts the relationship into its
// urgency bucket. The result carries the new highlight location.
func (e *Engine) AddRelationship(ctx context.Context, candidate Relationship) (RelationshipResult, error) {
	candidate.FullName = candidate.DisplayName()

	id, props, err := e.Backend.AddRelationship(ctx, candidate)
	if err != nil {
		return RelationshipResult{}, fmt.Errorf("%s: %w", config.ErrBackendAdd, err)
	}

	candidate.ID = id
	candidate.DerivedProperties = props
	e.insertRelationship(candidate)

	e.logMutation("add_relationship", id)
	return RelationshipResult{
		Found:        true,
		Relationship: candidate,
		Location:     e.locateRelationship(id),
	}, nil
}

// EditRelationship sends the full payload to the backend and merges the
// returned derived properties onto the local copy, preserving local-only
// fields. The relationship is re-bucketed only when its status or countdown
// changed; otherwise it is replaced in place.
func (e *Engine) EditRelationship(ctx context.Context, updated Relationship) (RelationshipResult, error) {
	existing, gi, ri := e.findRelationship(updated.ID)
	if gi < 0 {
		return RelationshipResult{}, nil
	}

	props, err := e.Backend.UpdateRelationship(ctx, updated)
	if err != nil {
		return RelationshipResult{}, fmt.Errorf("%s: %w", config.ErrBackendUpdate, err)
	}

	merged := updated
	merged.FullName = merged.DisplayName()
	merged.DerivedProperties = props
	if merged.Interactions == nil {
		merged.Interactions = existing.Interactions
	}

	if existing.Status == merged.Status && equalCountdown(existing.DaysUntilAttention, merged.DaysUntilAttention) {
		groups := slices.Clone(e.groups)
		members := slices.Clone(groups[gi].Relationships)
		members[ri] = merged
		groups[gi].Relationships = members
		e.groups = groups
	} else {
		e.removeRelationship(updated.ID)
		e.insertRelationship(merged)
	}

	e.logMutation("edit_relationship", updated.ID)
	return RelationshipResult{
		Found:        true,
		Relationship: merged,
		Location:     e.locateRelationship(updated.ID),
	}, nil
}

// DeleteRelationship asks for confirmation before the backend call. On
// confirmed success the relationship and its logged interactions are removed
// from the canonical collections.
func (e *Engine) DeleteRelationship(ctx context.Context, target Relationship) (RelationshipResult, error) {
	existing, gi, _ := e.findRelationship(target.ID)
	if gi < 0 {
		return RelationshipResult{}, nil
	}

	if !e.confirmed(ctx, fmt.Sprintf(config.FormatConfirmDelete, existing.FirstName)) {
		slog.Debug(config.MsgDeleteCancel,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyID, target.ID,
		)
		return RelationshipResult{Cancelled: true, Found: true}, nil
	}

	if err := e.Backend.DeleteRelationship(ctx, target.ID); err != nil {
		return RelationshipResult{}, fmt.Errorf("%s: %w", config.ErrBackendDelete, err)
	}

	e.removeRelationship(target.ID)

	// The backend cascades the relationship's interactions; mirror that in
	// the canonical interaction collection.
	remaining := make([]Interaction, 0, len(e.interactions))
	for _, interaction := range e.interactions {
		if interaction.RelationshipID != target.ID {
			remaining = append(remaining, interaction)
		}
	}
	e.interactions = remaining

	e.logMutation("delete_relationship", target.ID)
	return RelationshipResult{Found: true, Relationship: existing}, nil
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (e *Engine) confirmed(ctx context.Context, prompt string) bool {
	if e.Confirmer == nil {
		return true
	}
	return e.Confirmer.Confirm(ctx, prompt)
}

func (e *Engine) locateInteraction(id string) HighlightLocation {
	result := GroupByTimeUnit(e.interactions, e.groupUnit, id, e.Clock.Now(), e.Labels)
	return HighlightLocation{GroupLabel: result.Label, Index: result.IndexInGroup}
}

func (e *Engine) locateRelationship(id string) HighlightLocation {
	status, index := Locate(flattenGroups(e.groups), id)
	return HighlightLocation{GroupLabel: string(status), Index: index}
}

// applyRelationshipProps merges backend-refreshed derived properties onto the
// relationship owning a mutated interaction, moving it between buckets when
// its status or countdown changed.
func (e *Engine) applyRelationshipProps(relationshipID string, props DerivedProperties) {
	existing, gi, ri := e.findRelationship(relationshipID)
	if gi < 0 {
		return
	}

	merged := existing
	merged.DerivedProperties = props

	if existing.Status == merged.Status && equalCountdown(existing.DaysUntilAttention, merged.DaysUntilAttention) {
		groups := slices.Clone(e.groups)
		members := slices.Clone(groups[gi].Relationships)
		members[ri] = merged
		groups[gi].Relationships = members
		e.groups = groups
		return
	}

	e.removeRelationship(relationshipID)
	e.insertRelationship(merged)
}

func (e *Engine) findRelationship(id string) (Relationship, int, int) {
	for gi, group := range e.groups {
		for ri, relationship := range group.Relationships {
			if relationship.ID == id {
				return relationship, gi, ri
			}
		}
	}
	return Relationship{}, -1, -1
}

func (e *Engine) insertRelationship(r Relationship) {
	gi := groupIndex(r.Status)
	groups := slices.Clone(e.groups)
	if len(groups) == 0 {
		groups = Classify(nil)
	}
	groups[gi].Relationships = InsertSorted(groups[gi].Relationships, r, attentionKey, Ascending)
	e.groups = groups
}

func (e *Engine) removeRelationship(id string) {
	groups := slices.Clone(e.groups)
	for gi := range groups {
		members, idx := Remove(groups[gi].Relationships, func(r Relationship) bool { return r.ID == id })
		if idx >= 0 {
			groups[gi].Relationships = members
			e.groups = groups
			return
		}
	}
}

func (e *Engine) logMutation(op, id string) {
	slog.Debug(config.MsgMutationOK,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyOp, op,
		config.LogKeyID, id,
	)
}

func groupIndex(status Status) int {
	for i, s := range StatusOrder {
		if s == status {
			return i
		}
	}
	return len(StatusOrder) - 1
}

func byInteractionID(id string) func(Interaction) bool {
	return func(i Interaction) bool { return i.ID == id }
}

func equalCountdown(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
