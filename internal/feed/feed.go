// Package feed renders the attention-needed reminders as an iCalendar feed,
// one all-day event per relationship with a known due date.
package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/go-keepintouch/internal/config"
	"github.com/tartampluch/go-keepintouch/internal/engine"
)

// Generator converts urgency groups into ICS data.
type Generator struct {
	Clock engine.Clock // Interface for time mocking.

	// FormatSummary allows a localized event summary to be injected without
	// the feed layer knowing about translation.
	FormatSummary func(name string) string
}

// Generate builds the feed from the current urgency groups. Relationships
// without a computed due date are omitted. Overdue relationships surface as
// events on the current day, so stale reminders never disappear into the
// past. Returns the encoded calendar and the number of events landing today.
func (g *Generator) Generate(groups []engine.UrgencyGroup, reminderTrigger string) ([]byte, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := g.Clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	dueToday := 0
	total := 0

	for _, group := range groups {
		for _, relationship := range group.Relationships {
			if relationship.DaysUntilAttention == nil {
				continue
			}
			total++

			countdown := *relationship.DaysUntilAttention
			due := today
			if countdown > 0 {
				due = today.AddDate(0, 0, countdown)
			}
			if countdown <= 0 {
				dueToday++
			}

			event := g.createEvent(relationship, due, reminderTrigger)
			event.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, event.Component)
		}
	}

	log := slog.With(config.LogKeyComponent, config.CompFeed)

	if len(cal.Children) == 0 {
		log.Info(config.MsgFeedGenerated,
			slog.Int(config.LogKeyCount, 0),
			slog.Int(config.LogKeyDueToday, 0),
		)
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	log.Info(config.MsgFeedGenerated,
		slog.Int(config.LogKeyCount, total),
		slog.Int(config.LogKeyDueToday, dueToday),
	)
	return buf.Bytes(), dueToday, nil
}

func (g *Generator) createEvent(relationship engine.Relationship, due time.Time, reminderTrigger string) *ical.Event {
	name := relationship.FullName
	if name == "" {
		name = config.FallbackName
	}

	// Deterministic UID so refreshes never duplicate events in subscribers.
	input := fmt.Sprintf(config.FormatHashInput, relationship.ID, name, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	uid := fmt.Sprintf("%x", hash[:config.UIDHashLength])

	summary := fmt.Sprintf(config.FallbackSummary, name)
	if g.FormatSummary != nil {
		summary = g.FormatSummary(name)
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uid, config.ICalDomain))
	event.Props.SetText(config.PropSummary, summary)
	if relationship.AttentionText != "" {
		event.Props.SetText(config.PropDescription, relationship.AttentionText)
	}

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(due)
	event.Props.Set(dtStartProp)

	if reminderTrigger != "" {
		addAlarm(event, reminderTrigger, summary)
	}
	return event
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
