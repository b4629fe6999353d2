// Package messages provides the text-resource lookup used for every
// user-facing string. The core never embeds literal phrasing, only message
// ids resolved against a language catalog.
package messages

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/candidate"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Message ids known to the catalogs.
const (
	IDGreeting          = "greeting"
	IDTechIntro         = "tech_intro"
	IDQuestionFormat    = "question_format"
	IDThankYouAnswer    = "thank_you_answer"
	IDFarewell          = "farewell"
	IDFarewellAbandoned = "farewell_abandoned"
	IDTimeoutNotice     = "timeout_notice"
	IDSessionClosed     = "session_closed"
	IDUpdateConfirmed   = "update_confirmed"
	IDErrorProcessing   = "error_processing"
)

// DefaultLanguage is the fallback for unknown languages and missing keys.
const DefaultLanguage = "en"

// Resolver turns a message id and a language code into user-facing text.
type Resolver interface {
	Resolve(id, lang string) string
}

// Catalog is a Resolver backed by the embedded per-language YAML files.
type Catalog struct {
	locales map[string]map[string]string
}

// Load parses all embedded locale files.
func Load() (*Catalog, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	locales := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), ".yaml")

		data, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}

		texts := make(map[string]string)
		if err := yaml.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang, err)
		}
		locales[lang] = texts
	}

	if _, ok := locales[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %q is missing", DefaultLanguage)
	}

	return &Catalog{locales: locales}, nil
}

// Resolve returns the text for the id in the requested language, falling
// back to the default language, then to the id itself so a missing key is
// visible rather than silent.
func (c *Catalog) Resolve(id, lang string) string {
	if texts, ok := c.locales[lang]; ok {
		if text, ok := texts[id]; ok {
			return text
		}
	}
	if text, ok := c.locales[DefaultLanguage][id]; ok {
		return text
	}
	return id
}

// Languages returns the supported language codes, sorted.
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.locales))
	for lang := range c.locales {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Supports reports whether the language has its own catalog.
func (c *Catalog) Supports(lang string) bool {
	_, ok := c.locales[lang]
	return ok
}

// NextFieldID returns the id of the canned question asking for the field.
func NextFieldID(f candidate.Field) string {
	return "next_" + string(f)
}

// Format substitutes {key} placeholders in the resolved text.
func Format(text string, args map[string]string) string {
	for key, value := range args {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}
