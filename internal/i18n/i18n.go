// Package i18n wraps the go-i18n bundle behind a small Translator and adapts
// it to the engine's LabelSet, so grouping labels and feed summaries localize
// without the engine knowing about translation.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-keepintouch/internal/config"
	"github.com/tartampluch/go-keepintouch/internal/engine"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator localizes message keys, falling back to the key itself when a
// translation is missing so the caller always gets a displayable string.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer

	// SupportedLanguages lists the language codes detected in the embedded
	// locale files, in directory order.
	SupportedLanguages []string
}

// New initializes the translation bundle from the embedded locale files and
// selects the given language, falling back to English.
func New(lang string) *Translator {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		t.SetLanguage(lang)
		return t
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		t.SupportedLanguages = append(t.SupportedLanguages, langCode)

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
		} else {
			slog.Debug(config.MsgLocaleLoaded,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyLang, langCode,
				config.LogKeyFile, name,
			)
		}
	}

	t.SetLanguage(lang)
	return t
}

// SetLanguage refreshes the localizer for the given language preference.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.localizer = goi18n.NewLocalizer(t.bundle, lang)
}

// Msg translates a key without template data.
func (t *Translator) Msg(key string) string {
	return t.MsgData(key, nil)
}

// MsgData translates a key with template data, returning the key itself when
// no translation exists.
func (t *Translator) MsgData(key string, data map[string]any) string {
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// FeedSummary renders the reminder-event summary for a relationship name.
func (t *Translator) FeedSummary(name string) string {
	return t.MsgData(config.TKeyFeedSummary, map[string]any{"Name": name})
}

// Labels exposes the translator as the engine's LabelSet.
func (t *Translator) Labels() engine.LabelSet {
	return labelSet{t}
}

type labelSet struct {
	t *Translator
}

func (l labelSet) ThisUnit(unit engine.TimeUnit) string {
	switch unit {
	case engine.UnitDay:
		return l.t.Msg(config.TKeyGroupToday)
	case engine.UnitWeek:
		return l.t.Msg(config.TKeyGroupThisWeek)
	case engine.UnitMonth:
		return l.t.Msg(config.TKeyGroupThisMonth)
	default:
		return l.t.Msg(config.TKeyGroupThisYear)
	}
}

func (l labelSet) LastUnit(unit engine.TimeUnit) string {
	switch unit {
	case engine.UnitDay:
		return l.t.Msg(config.TKeyGroupYesterday)
	case engine.UnitWeek:
		return l.t.Msg(config.TKeyGroupLastWeek)
	case engine.UnitMonth:
		return l.t.Msg(config.TKeyGroupLastMonth)
	default:
		return l.t.Msg(config.TKeyGroupLastYear)
	}
}

func (l labelSet) UnitsAgo(n int, unit engine.TimeUnit) string {
	data := map[string]any{"Count": n}
	switch unit {
	case engine.UnitDay:
		return l.t.MsgData(config.TKeyGroupDaysAgo, data)
	case engine.UnitWeek:
		return l.t.MsgData(config.TKeyGroupWeeksAgo, data)
	case engine.UnitMonth:
		return l.t.MsgData(config.TKeyGroupMonthsAgo, data)
	default:
		return l.t.MsgData(config.TKeyGroupYearsAgo, data)
	}
}

func (l labelSet) WeekOf(weekStart string) string {
	return l.t.MsgData(config.TKeyGroupWeekOf, map[string]any{"Date": weekStart})
}
