package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-keepintouch/internal/engine"
	"github.com/tartampluch/go-keepintouch/internal/store"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	require.NoError(t, err)
	s := store.NewStore(db)
	s.Clock = fixedClock{now: testNow}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func addRelationship(t *testing.T, s *store.Store, first, last string, rate engine.InteractionRate) string {
	t.Helper()
	id, _, err := s.AddRelationship(context.Background(), engine.Relationship{
		FirstName: first,
		LastName:  last,
		RateGoal:  rate,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func addInteraction(t *testing.T, s *store.Store, relationshipID string, date time.Time) (string, engine.DerivedProperties) {
	t.Helper()
	id, props, err := s.AddInteraction(context.Background(), engine.Interaction{
		RelationshipID: relationshipID,
		Type:           engine.TypePhoneCall,
		Date:           date,
	})
	require.NoError(t, err)
	return id, props
}

func TestOpenDBRequiresPath(t *testing.T) {
	_, err := store.OpenDB("")
	assert.Error(t, err)
}

func TestAddRelationshipWithoutInteractions(t *testing.T) {
	s := newTestStore(t)

	id, props, err := s.AddRelationship(context.Background(), engine.Relationship{
		FirstName: "Ada",
		LastName:  "Lovelace",
		RateGoal:  engine.RateMonthly,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, engine.StatusNotAvailable, props.Status)
	assert.Equal(t, "N/A", props.AttentionText)
	assert.Nil(t, props.DaysUntilAttention)
	assert.Nil(t, props.LastInteractionDate)
}

func TestDerivedPropertiesByCountdown(t *testing.T) {
	cases := []struct {
		name       string
		rate       engine.InteractionRate
		daysAgo    int
		wantStatus engine.Status
		wantText   string
	}{
		{"well within goal", engine.RateMonthly, 0, engine.StatusGood, "Due in 30 days"},
		{"approaching goal", engine.RateMonthly, 28, engine.StatusSoon, "Due in 2 days"},
		{"one day left", engine.RateWeekly, 6, engine.StatusSoon, "Due in 1 day"},
		{"due today", engine.RateMonthly, 30, engine.StatusToday, "Due today"},
		{"one day overdue", engine.RateWeekly, 8, engine.StatusOverdue, "1 day overdue"},
		{"long overdue", engine.RateMonthly, 35, engine.StatusOverdue, "5 days overdue"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			relID := addRelationship(t, s, "Ada", "Lovelace", tc.rate)

			_, props := addInteraction(t, s, relID, testNow.AddDate(0, 0, -tc.daysAgo))

			assert.Equal(t, tc.wantStatus, props.Status)
			assert.Equal(t, tc.wantStatus.Color(), props.StatusColor)
			assert.Equal(t, tc.wantText, props.AttentionText)
			require.NotNil(t, props.DaysUntilAttention)
			assert.Equal(t, tc.rate.Days()-tc.daysAgo, *props.DaysUntilAttention)
		})
	}
}

func TestDerivedPropertiesWithoutRateGoal(t *testing.T) {
	s := newTestStore(t)
	relID := addRelationship(t, s, "Ada", "Lovelace", "")

	_, props := addInteraction(t, s, relID, testNow.AddDate(0, 0, -2))

	assert.Equal(t, engine.StatusNotAvailable, props.Status)
	assert.Nil(t, props.DaysUntilAttention)
	require.NotNil(t, props.LastInteractionDate)
	assert.Equal(t, "2 Days Ago", props.LastInteractionRelative)
}

func TestInteractionsNewestFirstWithNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	relID := addRelationship(t, s, "Ada", "Lovelace", engine.RateMonthly)

	oldID, _ := addInteraction(t, s, relID, testNow.AddDate(0, 0, -10))
	newID, _ := addInteraction(t, s, relID, testNow.AddDate(0, 0, -1))

	interactions, err := s.Interactions(ctx)
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	assert.Equal(t, newID, interactions[0].ID)
	assert.Equal(t, oldID, interactions[1].ID)
	assert.Equal(t, "Ada Lovelace", interactions[0].RelationshipName)
	assert.Equal(t, relID, interactions[0].RelationshipID)
}

func TestTopicsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	relID := addRelationship(t, s, "Ada", "Lovelace", engine.RateMonthly)

	id, _, err := s.AddInteraction(ctx, engine.Interaction{
		RelationshipID: relID,
		Type:           engine.TypeInPerson,
		Date:           testNow,
		Topics: []engine.Topic{
			{Name: "analytical engines", Notes: "follow up with diagrams"},
			{Name: "travel plans"},
		},
	})
	require.NoError(t, err)

	interaction, err := s.Interaction(ctx, relID, id)
	require.NoError(t, err)
	require.Len(t, interaction.Topics, 2)
	assert.Equal(t, "analytical engines", interaction.Topics[0].Name)
	assert.Equal(t, "follow up with diagrams", interaction.Topics[0].Notes)
	assert.Equal(t, "travel plans", interaction.Topics[1].Name)
}

func TestUpdateInteractionReplacesTopics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	relID := addRelationship(t, s, "Ada", "Lovelace", engine.RateMonthly)

	id, _, err := s.AddInteraction(ctx, engine.Interaction{
		RelationshipID: relID,
		Type:           engine.TypeEmail,
		Date:           testNow.AddDate(0, 0, -2),
		Topics:         []engine.Topic{{Name: "old topic"}},
	})
	require.NoError(t, err)

	_, err = s.UpdateInteraction(ctx, engine.Interaction{
		ID:     id,
		Type:   engine.TypeVideoCall,
		Date:   testNow.AddDate(0, 0, -1),
		Topics: []engine.Topic{{Name: "new topic"}},
	})
	require.NoError(t, err)

	interaction, err := s.Interaction(ctx, relID, id)
	require.NoError(t, err)
	assert.Equal(t, engine.TypeVideoCall, interaction.Type)
	require.Len(t, interaction.Topics, 1)
	assert.Equal(t, "new topic", interaction.Topics[0].Name)
}

func TestRelationshipsGrouped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	overdueID := addRelationship(t, s, "Ada", "Lovelace", engine.RateWeekly)
	addInteraction(t, s, overdueID, testNow.AddDate(0, 0, -20))
	freshID := addRelationship(t, s, "Grace", "Hopper", engine.RateMonthly)
	addInteraction(t, s, freshID, testNow)
	addRelationship(t, s, "Blaise", "Pascal", "")

	groups, err := s.RelationshipsGrouped(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 5)

	assert.Equal(t, engine.StatusOverdue, groups[1].Status)
	require.Len(t, groups[1].Relationships, 1)
	assert.Equal(t, overdueID, groups[1].Relationships[0].ID)

	assert.Equal(t, engine.StatusGood, groups[3].Status)
	require.Len(t, groups[3].Relationships, 1)
	assert.Equal(t, freshID, groups[3].Relationships[0].ID)

	assert.Equal(t, engine.StatusNotAvailable, groups[4].Status)
	assert.Len(t, groups[4].Relationships, 1)
}

func TestUpdateRelationshipRateChangesUrgency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	relID := addRelationship(t, s, "Ada", "Lovelace", engine.RateMonthly)
	addInteraction(t, s, relID, testNow.AddDate(0, 0, -10))

	props, err := s.UpdateRelationship(ctx, engine.Relationship{
		ID:        relID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		RateGoal:  engine.RateWeekly,
	})

	require.NoError(t, err)
	assert.Equal(t, engine.StatusOverdue, props.Status)
	require.NotNil(t, props.DaysUntilAttention)
	assert.Equal(t, -3, *props.DaysUntilAttention)
}

func TestDeleteInteractionRefreshesProps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	relID := addRelationship(t, s, "Ada", "Lovelace", engine.RateMonthly)
	id, _ := addInteraction(t, s, relID, testNow)

	props, err := s.DeleteInteraction(ctx, relID, id)

	require.NoError(t, err)
	assert.Equal(t, engine.StatusNotAvailable, props.Status)
	assert.Nil(t, props.LastInteractionDate)
}

func TestDeleteRelationshipCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	relID := addRelationship(t, s, "Ada", "Lovelace", engine.RateMonthly)
	addInteraction(t, s, relID, testNow)

	require.NoError(t, s.DeleteRelationship(ctx, relID))

	interactions, err := s.Interactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, interactions)
}

func TestMissingIdentities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Relationship(ctx, "nope")
	assert.Error(t, err)

	_, err = s.UpdateRelationship(ctx, engine.Relationship{ID: "nope"})
	assert.Error(t, err)

	assert.Error(t, s.DeleteRelationship(ctx, "nope"))

	_, err = s.DeleteInteraction(ctx, "nope", "nope")
	assert.Error(t, err)

	_, err = s.UpdateInteraction(ctx, engine.Interaction{ID: "nope"})
	assert.Error(t, err)
}
