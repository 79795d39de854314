package i18n_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-keepintouch/internal/config"
	"github.com/tartampluch/go-keepintouch/internal/engine"
	"github.com/tartampluch/go-keepintouch/internal/i18n"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// actually exists in every locale JSON file.
func TestI18nIntegrity(t *testing.T) {
	keysToCheck := []string{
		config.TKeyGroupToday,
		config.TKeyGroupYesterday,
		config.TKeyGroupThisWeek,
		config.TKeyGroupThisMonth,
		config.TKeyGroupThisYear,
		config.TKeyGroupLastWeek,
		config.TKeyGroupLastMonth,
		config.TKeyGroupLastYear,
		config.TKeyGroupDaysAgo,
		config.TKeyGroupWeeksAgo,
		config.TKeyGroupMonthsAgo,
		config.TKeyGroupYearsAgo,
		config.TKeyGroupWeekOf,
		config.TKeyFeedSummary,
	}

	for _, lang := range config.SupportedLanguages {
		path := "locales/active." + lang + ".json"
		content, err := os.ReadFile(path)
		require.NoErrorf(t, err, "Must load %s", path)

		var jsonMap map[string]interface{}
		err = json.Unmarshal(content, &jsonMap)
		require.NoErrorf(t, err, "%s must be valid JSON", path)

		for _, key := range keysToCheck {
			_, exists := jsonMap[key]
			assert.Truef(t, exists, "Key '%s' defined in config.go is missing in %s", key, path)
		}

		for jsonKey := range jsonMap {
			found := false
			for _, key := range keysToCheck {
				if key == jsonKey {
					found = true
					break
				}
			}
			if !found {
				t.Logf("Warning: Key '%s' exists in %s but is not checked in the test suite (might be unused)", jsonKey, path)
			}
		}
	}
}

func TestTranslatorEnglish(t *testing.T) {
	tr := i18n.New("en")

	assert.Equal(t, "Today", tr.Msg(config.TKeyGroupToday))
	assert.Equal(t, "3 Weeks Ago", tr.MsgData(config.TKeyGroupWeeksAgo, map[string]any{"Count": 3}))
	assert.Equal(t, "Time to catch up with Ada", tr.FeedSummary("Ada"))
	assert.Contains(t, tr.SupportedLanguages, "en")
	assert.Contains(t, tr.SupportedLanguages, "fr")
}

func TestTranslatorFrench(t *testing.T) {
	tr := i18n.New("fr")

	assert.Equal(t, "Aujourd'hui", tr.Msg(config.TKeyGroupToday))
	assert.Equal(t, "Semaine du 5 mai", tr.MsgData(config.TKeyGroupWeekOf, map[string]any{"Date": "5 mai"}))
}

func TestTranslatorFallsBackToKey(t *testing.T) {
	tr := i18n.New("en")

	assert.Equal(t, "no_such_key", tr.Msg("no_such_key"))
}

func TestLabelsMatchBuiltinEnglish(t *testing.T) {
	localized := i18n.New("en").Labels()
	builtin := engine.EnglishLabels()

	units := []engine.TimeUnit{engine.UnitDay, engine.UnitWeek, engine.UnitMonth, engine.UnitYear}
	for _, unit := range units {
		assert.Equal(t, builtin.ThisUnit(unit), localized.ThisUnit(unit))
		assert.Equal(t, builtin.LastUnit(unit), localized.LastUnit(unit))
		assert.Equal(t, builtin.UnitsAgo(4, unit), localized.UnitsAgo(4, unit))
	}
	assert.Equal(t, builtin.WeekOf("May 5"), localized.WeekOf("May 5"))
}

func TestSetLanguageSwitches(t *testing.T) {
	tr := i18n.New("en")
	require.Equal(t, "Yesterday", tr.Msg(config.TKeyGroupYesterday))

	tr.SetLanguage("fr")
	assert.Equal(t, "Hier", tr.Msg(config.TKeyGroupYesterday))
}
