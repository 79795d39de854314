package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tartampluch/go-keepintouch/internal/config"
	"github.com/tartampluch/go-keepintouch/internal/engine"
)

// Store is the local implementation of engine.Backend.
type Store struct {
	db    *sql.DB
	Clock engine.Clock
}

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, Clock: engine.RealClock{}}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Interactions returns every interaction, newest first, with the owning
// relationship's display name denormalized onto each row.
func (s *Store) Interactions(ctx context.Context) ([]engine.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.relationship_id, i.type, i.date, r.first_name, r.last_name
		FROM interactions i
		JOIN relationships r ON r.id = i.relationship_id
		ORDER BY i.date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []engine.Interaction
	for rows.Next() {
		var i engine.Interaction
		var first, last string
		if err := rows.Scan(&i.ID, &i.RelationshipID, &i.Type, &i.Date, &first, &last); err != nil {
			return nil, err
		}
		i.RelationshipName = engine.Relationship{FirstName: first, LastName: last}.DisplayName()
		interactions = append(interactions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachTopics(ctx, interactions); err != nil {
		return nil, err
	}
	return interactions, nil
}

// RelationshipsGrouped loads every relationship with freshly computed derived
// properties, pre-grouped into the five urgency buckets.
func (s *Store) RelationshipsGrouped(ctx context.Context) ([]engine.UrgencyGroup, error) {
	relationships, err := s.loadRelationships(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Classify(relationships), nil
}

// Relationship fetches one relationship with its interactions and derived
// properties.
func (s *Store) Relationship(ctx context.Context, id string) (engine.Relationship, error) {
	var r engine.Relationship
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, notes, rate_goal FROM relationships WHERE id = ?`, id).
		Scan(&r.ID, &r.FirstName, &r.LastName, &r.Notes, &r.RateGoal)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Relationship{}, fmt.Errorf("%s: %s", config.ErrRelationshipMiss, id)
	}
	if err != nil {
		return engine.Relationship{}, err
	}

	interactions, err := s.relationshipInteractions(ctx, id)
	if err != nil {
		return engine.Relationship{}, err
	}

	r.FullName = r.DisplayName()
	r.Interactions = interactions
	r.DerivedProperties = s.derive(r.RateGoal, lastDate(interactions))
	return r, nil
}

// Interaction fetches one interaction by identity.
func (s *Store) Interaction(ctx context.Context, relationshipID, id string) (engine.Interaction, error) {
	var i engine.Interaction
	var first, last string
	err := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.relationship_id, i.type, i.date, r.first_name, r.last_name
		FROM interactions i
		JOIN relationships r ON r.id = i.relationship_id
		WHERE i.id = ? AND i.relationship_id = ?`, id, relationshipID).
		Scan(&i.ID, &i.RelationshipID, &i.Type, &i.Date, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Interaction{}, fmt.Errorf("%s: %s", config.ErrInteractionMiss, id)
	}
	if err != nil {
		return engine.Interaction{}, err
	}

	i.RelationshipName = engine.Relationship{FirstName: first, LastName: last}.DisplayName()
	single := []engine.Interaction{i}
	if err := s.attachTopics(ctx, single); err != nil {
		return engine.Interaction{}, err
	}
	return single[0], nil
}

// AddRelationship persists a new relationship under a fresh identity.
func (s *Store) AddRelationship(ctx context.Context, r engine.Relationship) (string, engine.DerivedProperties, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relationships (id, first_name, last_name, notes, rate_goal) VALUES (?, ?, ?, ?, ?)`,
		id, r.FirstName, r.LastName, r.Notes, r.RateGoal)
	if err != nil {
		return "", engine.DerivedProperties{}, err
	}
	return id, s.derive(r.RateGoal, nil), nil
}

// UpdateRelationship replaces the stored fields and recomputes derived
// properties, since a rate-goal change can shift the urgency.
func (s *Store) UpdateRelationship(ctx context.Context, r engine.Relationship) (engine.DerivedProperties, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE relationships SET first_name = ?, last_name = ?, notes = ?, rate_goal = ? WHERE id = ?`,
		r.FirstName, r.LastName, r.Notes, r.RateGoal, r.ID)
	if err != nil {
		return engine.DerivedProperties{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return engine.DerivedProperties{}, fmt.Errorf("%s: %s", config.ErrRelationshipMiss, r.ID)
	}
	return s.relationshipProps(ctx, r.ID)
}

// DeleteRelationship removes a relationship; the schema cascades the delete
// to its interactions and topics.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %s", config.ErrRelationshipMiss, id)
	}
	return nil
}

// AddInteraction persists a new interaction and returns the owning
// relationship's refreshed derived properties.
func (s *Store) AddInteraction(ctx context.Context, i engine.Interaction) (string, engine.DerivedProperties, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", engine.DerivedProperties{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO interactions (id, relationship_id, type, date) VALUES (?, ?, ?, ?)`,
		id, i.RelationshipID, i.Type, i.Date); err != nil {
		return "", engine.DerivedProperties{}, err
	}
	if err := insertTopics(ctx, tx, id, i.Topics); err != nil {
		return "", engine.DerivedProperties{}, err
	}
	if err := tx.Commit(); err != nil {
		return "", engine.DerivedProperties{}, err
	}

	props, err := s.relationshipProps(ctx, i.RelationshipID)
	return id, props, err
}

// UpdateInteraction replaces the stored fields and topics.
func (s *Store) UpdateInteraction(ctx context.Context, i engine.Interaction) (engine.DerivedProperties, error) {
	relationshipID := i.RelationshipID
	if relationshipID == "" {
		err := s.db.QueryRowContext(ctx,
			`SELECT relationship_id FROM interactions WHERE id = ?`, i.ID).Scan(&relationshipID)
		if errors.Is(err, sql.ErrNoRows) {
			return engine.DerivedProperties{}, fmt.Errorf("%s: %s", config.ErrInteractionMiss, i.ID)
		}
		if err != nil {
			return engine.DerivedProperties{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.DerivedProperties{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE interactions SET type = ?, date = ? WHERE id = ?`, i.Type, i.Date, i.ID)
	if err != nil {
		return engine.DerivedProperties{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return engine.DerivedProperties{}, fmt.Errorf("%s: %s", config.ErrInteractionMiss, i.ID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE interaction_id = ?`, i.ID); err != nil {
		return engine.DerivedProperties{}, err
	}
	if err := insertTopics(ctx, tx, i.ID, i.Topics); err != nil {
		return engine.DerivedProperties{}, err
	}
	if err := tx.Commit(); err != nil {
		return engine.DerivedProperties{}, err
	}

	return s.relationshipProps(ctx, relationshipID)
}

// DeleteInteraction removes an interaction and returns the owning
// relationship's refreshed derived properties.
func (s *Store) DeleteInteraction(ctx context.Context, relationshipID, id string) (engine.DerivedProperties, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM interactions WHERE id = ? AND relationship_id = ?`, id, relationshipID)
	if err != nil {
		return engine.DerivedProperties{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return engine.DerivedProperties{}, fmt.Errorf("%s: %s", config.ErrInteractionMiss, id)
	}
	return s.relationshipProps(ctx, relationshipID)
}

// -----------------------------------------------------------------------------
// Derived properties
// -----------------------------------------------------------------------------

// derive computes the urgency state of a relationship from its rate goal and
// most recent interaction date. Without a goal or any interaction, no due
// date exists and the relationship is Not Available.
func (s *Store) derive(rate engine.InteractionRate, last *time.Time) engine.DerivedProperties {
	now := s.Clock.Now()

	var props engine.DerivedProperties
	if last != nil {
		when := *last
		props.LastInteractionDate = &when
		props.LastInteractionRelative = engine.TimeAgoLabel(when, engine.UnitDay, now, engine.EnglishLabels())
	}

	goalDays := rate.Days()
	if goalDays == 0 || last == nil {
		props.Status = engine.StatusNotAvailable
		props.StatusColor = props.Status.Color()
		props.AttentionText = config.AttentionTextNotAvailable
		return props
	}

	countdown := goalDays - daysSince(now, *last)
	props.DaysUntilAttention = &countdown

	switch {
	case countdown < 0:
		props.Status = engine.StatusOverdue
		props.AttentionText = overdueText(-countdown)
	case countdown == 0:
		props.Status = engine.StatusToday
		props.AttentionText = config.AttentionTextToday
	case countdown <= config.SoonThresholdDays:
		props.Status = engine.StatusSoon
		props.AttentionText = dueInText(countdown)
	default:
		props.Status = engine.StatusGood
		props.AttentionText = dueInText(countdown)
	}
	props.StatusColor = props.Status.Color()
	return props
}

func overdueText(days int) string {
	if days == 1 {
		return config.AttentionTextOverdueOne
	}
	return fmt.Sprintf(config.AttentionTextOverdueMany, days)
}

func dueInText(days int) string {
	if days == 1 {
		return config.AttentionTextDueInOne
	}
	return fmt.Sprintf(config.AttentionTextDueInMany, days)
}

// daysSince counts whole calendar days from then to now. Rounding absorbs DST
// transitions.
func daysSince(now, then time.Time) int {
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	b := time.Date(then.Year(), then.Month(), then.Day(), 0, 0, 0, 0, then.Location())
	return int(math.Round(a.Sub(b).Hours() / 24))
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (s *Store) loadRelationships(ctx context.Context) ([]engine.Relationship, error) {
	interactions, err := s.Interactions(ctx)
	if err != nil {
		return nil, err
	}
	byRelationship := make(map[string][]engine.Interaction)
	for _, i := range interactions {
		byRelationship[i.RelationshipID] = append(byRelationship[i.RelationshipID], i)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, notes, rate_goal FROM relationships`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relationships []engine.Relationship
	for rows.Next() {
		var r engine.Relationship
		if err := rows.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Notes, &r.RateGoal); err != nil {
			return nil, err
		}
		r.FullName = r.DisplayName()
		r.Interactions = byRelationship[r.ID]
		r.DerivedProperties = s.derive(r.RateGoal, lastDate(r.Interactions))
		relationships = append(relationships, r)
	}
	return relationships, rows.Err()
}

func (s *Store) relationshipInteractions(ctx context.Context, relationshipID string) ([]engine.Interaction, error) {
	interactions, err := s.Interactions(ctx)
	if err != nil {
		return nil, err
	}
	var own []engine.Interaction
	for _, i := range interactions {
		if i.RelationshipID == relationshipID {
			own = append(own, i)
		}
	}
	return own, nil
}

// relationshipProps recomputes derived properties after a write touching the
// relationship's interaction history.
func (s *Store) relationshipProps(ctx context.Context, relationshipID string) (engine.DerivedProperties, error) {
	var rate engine.InteractionRate
	err := s.db.QueryRowContext(ctx,
		`SELECT rate_goal FROM relationships WHERE id = ?`, relationshipID).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.DerivedProperties{}, fmt.Errorf("%s: %s", config.ErrRelationshipMiss, relationshipID)
	}
	if err != nil {
		return engine.DerivedProperties{}, err
	}

	var last time.Time
	err = s.db.QueryRowContext(ctx,
		`SELECT date FROM interactions WHERE relationship_id = ? ORDER BY date DESC LIMIT 1`,
		relationshipID).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return s.derive(rate, nil), nil
	}
	if err != nil {
		return engine.DerivedProperties{}, err
	}
	return s.derive(rate, &last), nil
}

func (s *Store) attachTopics(ctx context.Context, interactions []engine.Interaction) error {
	if len(interactions) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT interaction_id, name, notes FROM topics ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	topics := make(map[string][]engine.Topic)
	for rows.Next() {
		var interactionID string
		var topic engine.Topic
		if err := rows.Scan(&interactionID, &topic.Name, &topic.Notes); err != nil {
			return err
		}
		topics[interactionID] = append(topics[interactionID], topic)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range interactions {
		interactions[i].Topics = topics[interactions[i].ID]
	}
	return nil
}

func insertTopics(ctx context.Context, tx *sql.Tx, interactionID string, topics []engine.Topic) error {
	for _, topic := range topics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO topics (interaction_id, name, notes) VALUES (?, ?, ?)`,
			interactionID, topic.Name, topic.Notes); err != nil {
			return err
		}
	}
	return nil
}

func lastDate(sortedDesc []engine.Interaction) *time.Time {
	if len(sortedDesc) == 0 {
		return nil
	}
	when := sortedDesc[0].Date
	return &when
}
