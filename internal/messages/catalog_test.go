package messages

import (
	"strings"
	"testing"

	"github.com/talentscout/hiring-assistant/internal/candidate"

	"github.com/stretchr/testify/require"
)

func TestLoadAllLanguages(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	require.Equal(t, []string{"de", "en", "fr", "hi", "kn"}, catalog.Languages())
}

func TestEveryLanguageCoversEveryKey(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	ids := []string{
		IDGreeting, IDTechIntro, IDQuestionFormat, IDThankYouAnswer,
		IDFarewell, IDFarewellAbandoned, IDTimeoutNotice, IDSessionClosed,
		IDUpdateConfirmed, IDErrorProcessing,
	}
	for _, f := range candidate.Required {
		ids = append(ids, NextFieldID(f))
	}

	for _, lang := range catalog.Languages() {
		for _, id := range ids {
			text := catalog.Resolve(id, lang)
			require.NotEqual(t, id, text, "missing %s in %s", id, lang)
		}
	}
}

func TestResolveFallsBackToEnglish(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	require.Equal(t, catalog.Resolve(IDGreeting, "en"), catalog.Resolve(IDGreeting, "pt"))
	require.Equal(t, "no_such_key", catalog.Resolve("no_such_key", "en"))
}

func TestFormat(t *testing.T) {
	got := Format("Question {current} of {total}: {question}", map[string]string{
		"current":  "1",
		"total":    "3",
		"question": "What is a goroutine?",
	})
	require.Equal(t, "Question 1 of 3: What is a goroutine?", got)
}

func TestQuestionFormatPlaceholders(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	for _, lang := range catalog.Languages() {
		text := catalog.Resolve(IDQuestionFormat, lang)
		for _, ph := range []string{"{current}", "{total}", "{question}"} {
			require.True(t, strings.Contains(text, ph), "%s missing %s", lang, ph)
		}
	}
}
