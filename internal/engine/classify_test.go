package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-keepintouch/internal/config"
)

func intPtr(n int) *int {
	return &n
}

func classifyFixture() []Relationship {
	return []Relationship{
		{ID: "r1", FirstName: "Ada", DerivedProperties: DerivedProperties{Status: StatusOverdue, DaysUntilAttention: intPtr(-4)}},
		{ID: "r2", FirstName: "Blaise", DerivedProperties: DerivedProperties{Status: StatusGood, DaysUntilAttention: intPtr(12)}},
		{ID: "r3", FirstName: "Carl", DerivedProperties: DerivedProperties{Status: StatusToday, DaysUntilAttention: intPtr(0)}},
		{ID: "r4", FirstName: "Dot", DerivedProperties: DerivedProperties{Status: StatusGood, DaysUntilAttention: intPtr(5)}},
		{ID: "r5", FirstName: "Eve", DerivedProperties: DerivedProperties{Status: StatusNotAvailable}},
	}
}

func TestClassifyFixedOrderAndColors(t *testing.T) {
	groups := Classify(classifyFixture())

	require.Len(t, groups, 5)
	for i, group := range groups {
		assert.Equal(t, StatusOrder[i], group.Status)
		assert.Equal(t, StatusOrder[i].Color(), group.StatusColor)
	}
	assert.Equal(t, config.ColorOverdue, groups[1].StatusColor)
}

func TestClassifyEmptyInputKeepsAllBuckets(t *testing.T) {
	groups := Classify(nil)

	require.Len(t, groups, 5)
	for _, group := range groups {
		assert.Empty(t, group.Relationships)
	}
}

func TestClassifySortsByCountdownAscending(t *testing.T) {
	groups := Classify(classifyFixture())

	good := groups[3]
	require.Equal(t, StatusGood, good.Status)
	require.Len(t, good.Relationships, 2)
	assert.Equal(t, "r4", good.Relationships[0].ID)
	assert.Equal(t, "r2", good.Relationships[1].ID)
}

func TestClassifyUnknownStatusFallsBack(t *testing.T) {
	groups := Classify([]Relationship{
		{ID: "odd", DerivedProperties: DerivedProperties{Status: Status("Something Else")}},
		{ID: "blank"},
	})

	notAvailable := groups[4]
	require.Equal(t, StatusNotAvailable, notAvailable.Status)
	assert.Len(t, notAvailable.Relationships, 2)
}

func TestClassifyUndefinedCountdownSortsLast(t *testing.T) {
	groups := Classify([]Relationship{
		{ID: "undated", DerivedProperties: DerivedProperties{Status: StatusGood}},
		{ID: "dated", DerivedProperties: DerivedProperties{Status: StatusGood, DaysUntilAttention: intPtr(9)}},
	})

	good := groups[3]
	require.Len(t, good.Relationships, 2)
	assert.Equal(t, "dated", good.Relationships[0].ID)
	assert.Equal(t, "undated", good.Relationships[1].ID)
}

func TestLocate(t *testing.T) {
	relationships := classifyFixture()

	status, index := Locate(relationships, "r2")
	assert.Equal(t, StatusGood, status)
	assert.Equal(t, 1, index)

	status, index = Locate(relationships, "r3")
	assert.Equal(t, StatusToday, status)
	assert.Equal(t, 0, index)
}

func TestLocateMissing(t *testing.T) {
	status, index := Locate(classifyFixture(), "absent")

	assert.Equal(t, Status(""), status)
	assert.Equal(t, -1, index)
}
