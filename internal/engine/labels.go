package engine

import "fmt"

// LabelSet supplies the calendar-relative phrases used by time grouping.
// The engine ships an English default; the i18n layer can inject a localized
// implementation without the grouping logic knowing about translation at all.
type LabelSet interface {
	// ThisUnit is the phrase for the current unit ("Today", "This Week", ...).
	ThisUnit(unit TimeUnit) string

	// LastUnit is the phrase for one unit ago ("Yesterday", "Last Week", ...).
	LastUnit(unit TimeUnit) string

	// UnitsAgo is the phrase for n >= 2 units ago ("2 Months Ago").
	UnitsAgo(n int, unit TimeUnit) string

	// WeekOf renders the "Week of <date>" label around a formatted week start.
	WeekOf(weekStart string) string
}

// EnglishLabels returns the built-in fallback LabelSet.
func EnglishLabels() LabelSet {
	return englishLabels{}
}

type englishLabels struct{}

func (englishLabels) ThisUnit(unit TimeUnit) string {
	switch unit {
	case UnitDay:
		return "Today"
	case UnitWeek:
		return "This Week"
	case UnitMonth:
		return "This Month"
	default:
		return "This Year"
	}
}

func (englishLabels) LastUnit(unit TimeUnit) string {
	switch unit {
	case UnitDay:
		return "Yesterday"
	case UnitWeek:
		return "Last Week"
	case UnitMonth:
		return "Last Month"
	default:
		return "Last Year"
	}
}

func (englishLabels) UnitsAgo(n int, unit TimeUnit) string {
	switch unit {
	case UnitDay:
		return fmt.Sprintf("%d Days Ago", n)
	case UnitWeek:
		return fmt.Sprintf("%d Weeks Ago", n)
	case UnitMonth:
		return fmt.Sprintf("%d Months Ago", n)
	default:
		return fmt.Sprintf("%d Years Ago", n)
	}
}

func (englishLabels) WeekOf(weekStart string) string {
	return "Week of " + weekStart
}
