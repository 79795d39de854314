package engine

import (
	"math"
	"time"
)

// Date layouts for the specific (non-relative) group labels.
const (
	layoutYear        = "2006"
	layoutMonth       = "January"
	layoutMonthYear   = "January 2006"
	layoutWeekday     = "Monday"
	layoutWeekdayDate = "Monday, January 2"
	layoutFullDate    = "January 2, 2006"
	layoutWeekStart   = "Jan 2"
	layoutWeekStartYr = "Jan 2, 2006"
)

// GroupingResult carries the time groups plus the location of the designated
// item of interest. Label is empty and IndexInGroup is -1 when the item is
// absent from the input.
type GroupingResult struct {
	Groups       []TimeGroup
	Label        string
	IndexInGroup int
}

// GroupByTimeUnit buckets a date-descending interaction slice into contiguous
// time groups in a single linear pass. Because the input is sorted and labels
// are monotonic in time, each interaction only has to be checked against the
// most recently opened group; a group is never split once opened.
//
// All comparisons use the one captured now, never a live clock.
func GroupByTimeUnit(sorted []Interaction, unit TimeUnit, highlightID string, now time.Time, labels LabelSet) GroupingResult {
	result := GroupingResult{IndexInGroup: -1}

	for _, interaction := range sorted {
		unitsAgo := unitsBetween(now, interaction.Date, unit)
		label := TimeAgoLabel(interaction.Date, unit, now, labels)

		if n := len(result.Groups); n == 0 || result.Groups[n-1].Label != label {
			result.Groups = append(result.Groups, TimeGroup{
				Unit:         unit,
				UnitsAgo:     unitsAgo,
				Label:        label,
				Interactions: []Interaction{interaction},
			})
		} else {
			last := &result.Groups[n-1]
			last.Interactions = append(last.Interactions, interaction)
		}

		if highlightID != "" && interaction.ID == highlightID {
			last := result.Groups[len(result.Groups)-1]
			result.Label = label
			result.IndexInGroup = len(last.Interactions) - 1
		}
	}

	return result
}

// TimeAgoLabel renders the relative-time label for a past date in the given
// unit: "Today", "Last Week", "2 Months Ago", "March 2020", "2021", etc.
//
// Specific (non-relative) labels take precedence once a date falls far enough
// back: years use the literal year number for anything before the current
// year, months use the month name from two months ago onward, and days/weeks
// use weekday or week-start labels from three units ago onward. The boundary
// is calendar-relative (unit starts), matching the elapsed-unit count used
// for grouping.
func TimeAgoLabel(date time.Time, unit TimeUnit, now time.Time, labels LabelSet) string {
	unitsAgo := unitsBetween(now, date, unit)
	if unitsAgo < 0 {
		unitsAgo = 0
	}

	overAWeekAgo := !date.AddDate(0, 0, 7).After(now)
	overAYearAgo := !date.AddDate(1, 0, 0).After(now)

	switch unit {
	case UnitYear:
		if unitsAgo >= 1 {
			return date.Format(layoutYear)
		}

	case UnitMonth:
		if unitsAgo >= 2 {
			if overAYearAgo {
				return date.Format(layoutMonthYear)
			}
			return date.Format(layoutMonth)
		}

	case UnitDay:
		if unitsAgo >= 3 {
			if overAYearAgo {
				return date.Format(layoutFullDate)
			}
			if overAWeekAgo {
				return date.Format(layoutWeekdayDate)
			}
			return date.Format(layoutWeekday)
		}

	case UnitWeek:
		if unitsAgo >= 3 {
			weekStart := startOfWeek(date)
			if overAYearAgo {
				return labels.WeekOf(weekStart.Format(layoutWeekStartYr))
			}
			return labels.WeekOf(weekStart.Format(layoutWeekStart))
		}
	}

	switch unitsAgo {
	case 0:
		return labels.ThisUnit(unit)
	case 1:
		return labels.LastUnit(unit)
	default:
		return labels.UnitsAgo(unitsAgo, unit)
	}
}

// unitsBetween counts whole calendar units between now and a past date,
// anchored at each unit's calendar start (midnight, week start, first of
// month, January 1st) rather than rolling windows. Future dates yield
// negative counts.
func unitsBetween(now, date time.Time, unit TimeUnit) int {
	switch unit {
	case UnitDay:
		return daysBetween(startOfDay(now), startOfDay(date))
	case UnitWeek:
		return daysBetween(startOfWeek(now), startOfWeek(date)) / 7
	case UnitMonth:
		return (now.Year()-date.Year())*12 + int(now.Month()) - int(date.Month())
	default:
		return now.Year() - date.Year()
	}
}

// daysBetween counts calendar days from b to a, both already truncated to
// their day start. Rounding absorbs DST transitions, where a "day" is 23 or
// 25 hours long.
func daysBetween(a, b time.Time) int {
	return int(math.Round(a.Sub(b).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek truncates to the most recent Sunday. Weeks are anchored on
// Sunday regardless of locale; see DESIGN.md for the rationale.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
