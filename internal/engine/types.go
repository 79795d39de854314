package engine

import (
	"strings"
	"time"

	"github.com/tartampluch/go-keepintouch/internal/config"
)

// InteractionType enumerates the contact methods a logged interaction can use.
type InteractionType string

const (
	TypeEmail        InteractionType = "E-mail"
	TypeInPerson     InteractionType = "In person"
	TypeOnlineGaming InteractionType = "Online gaming"
	TypePhoneCall    InteractionType = "Phone call"
	TypeSocialMedia  InteractionType = "Social media"
	TypeSnailMail    InteractionType = "Snail mail"
	TypeTexting      InteractionType = "Text messaging"
	TypeVideoCall    InteractionType = "Video call"
	TypeVoiceMail    InteractionType = "Voice mail"
	TypeOther        InteractionType = "Other"
)

// Topic is a subject discussed during an interaction, with optional notes.
type Topic struct {
	Name  string `json:"topic"`
	Notes string `json:"notes"`
}

// Interaction is a logged contact event tied to a relationship.
// ID is empty until the backend has persisted the interaction.
type Interaction struct {
	ID               string          `json:"_id,omitempty"`
	Type             InteractionType `json:"type"`
	Date             time.Time       `json:"date"`
	RelationshipID   string          `json:"idOfRelationship,omitempty"`
	RelationshipName string          `json:"nameOfPerson,omitempty"`
	Topics           []Topic         `json:"topicsDiscussed"`
}

// InteractionRate is the desired contact frequency for a relationship.
type InteractionRate string

const (
	RateWeekly     InteractionRate = "Weekly"
	RateBiweekly   InteractionRate = "Biweekly"
	RateMonthly    InteractionRate = "Monthly"
	RateQuarterly  InteractionRate = "Quarterly"
	RateBiannually InteractionRate = "Biannually"
	RateAnnually   InteractionRate = "Annually"
)

// Days returns the rate's goal interval in days, or 0 when the rate is unset
// or unknown (in which case no due date can be derived).
func (r InteractionRate) Days() int {
	switch r {
	case RateWeekly:
		return 7
	case RateBiweekly:
		return 14
	case RateMonthly:
		return 30
	case RateQuarterly:
		return 91
	case RateBiannually:
		return 182
	case RateAnnually:
		return 365
	default:
		return 0
	}
}

// Status is the backend-computed urgency classification of a relationship.
// The engine never derives a status itself; it only groups by it.
type Status string

const (
	StatusToday        Status = "Due Today"
	StatusOverdue      Status = "Overdue"
	StatusSoon         Status = "Due Soon"
	StatusGood         Status = "No Attention Needed"
	StatusNotAvailable Status = "Due Date N/A"
)

// StatusOrder is the fixed display order of urgency groups. All five statuses
// are always present when groups are assembled, even when empty.
var StatusOrder = [5]Status{
	StatusToday,
	StatusOverdue,
	StatusSoon,
	StatusGood,
	StatusNotAvailable,
}

// Color returns the fixed display color tied to the status.
func (s Status) Color() string {
	switch s {
	case StatusToday:
		return config.ColorToday
	case StatusOverdue:
		return config.ColorOverdue
	case StatusSoon:
		return config.ColorSoon
	case StatusGood:
		return config.ColorGood
	default:
		return config.ColorNotAvailable
	}
}

// DerivedProperties are computed exclusively by the backend: the engine merges
// them onto local copies after every confirmed write but never invents them.
type DerivedProperties struct {
	LastInteractionDate     *time.Time `json:"lastInteractionDate"`
	LastInteractionRelative string     `json:"lastInteractionRelativeTime,omitempty"`
	DaysUntilAttention      *int       `json:"daysUntilAttentionNeeded,omitempty"`
	AttentionText           string     `json:"attentionNeededText,omitempty"`
	Status                  Status     `json:"attentionNeededStatus,omitempty"`
	StatusColor             string     `json:"attentionStatusColor,omitempty"`
}

// Relationship is a tracked person. ID is empty until persisted.
// DerivedProperties is embedded so the JSON shape stays flat, matching the
// hosted API's payloads.
type Relationship struct {
	ID           string          `json:"_id,omitempty"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName,omitempty"`
	FullName     string          `json:"fullName,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	RateGoal     InteractionRate `json:"interactionRateGoal,omitempty"`
	Interactions []Interaction   `json:"interactions,omitempty"`

	DerivedProperties
}

// DisplayName derives the full name from first and last name, trimmed.
func (r Relationship) DisplayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// TimeUnit selects the calendar granularity for interaction grouping.
type TimeUnit string

const (
	UnitDay   TimeUnit = "day"
	UnitWeek  TimeUnit = "week"
	UnitMonth TimeUnit = "month"
	UnitYear  TimeUnit = "year"
)

// ParseTimeUnit maps a configuration string onto a TimeUnit, defaulting to
// weeks for anything unrecognized.
func ParseTimeUnit(value string) TimeUnit {
	switch TimeUnit(strings.ToLower(strings.TrimSpace(value))) {
	case UnitDay:
		return UnitDay
	case UnitMonth:
		return UnitMonth
	case UnitYear:
		return UnitYear
	default:
		return UnitWeek
	}
}

// TimeGroup is a contiguous run of interactions sharing a relative-time label.
type TimeGroup struct {
	Unit         TimeUnit      `json:"groupedBy"`
	UnitsAgo     int           `json:"timeUnitsAgo"`
	Label        string        `json:"timeAgoText"`
	Interactions []Interaction `json:"interactions"`
}

// UrgencyGroup is one of the five fixed urgency buckets.
type UrgencyGroup struct {
	Status        Status         `json:"status"`
	StatusColor   string         `json:"statusColor"`
	Relationships []Relationship `json:"relationships"`
}
