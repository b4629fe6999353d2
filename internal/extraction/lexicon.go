package extraction

import (
	"regexp"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/candidate"
)

// Lexicon is the closed set of job-title keywords used to tell a desired
// position apart from a candidate name. It is injected from configuration so
// ambiguous phrases can be tuned without code changes.
type Lexicon struct {
	entries  map[string]bool
	suffixes []string
}

var defaultRoleKeywords = []string{
	"tester", "developer", "engineer", "analyst", "manager", "designer",
	"architect", "consultant", "specialist", "lead", "programmer",
	"administrator", "devops", "qa", "scientist", "intern", "associate",
}

var defaultRoleSuffixes = []string{"-dev", "-qa"}

// NewLexicon builds a lexicon from the provided role keywords. Entries are
// matched case-insensitively against the whole phrase; suffix entries match
// the tail of a single token (e.g. "backend-dev").
func NewLexicon(entries []string) *Lexicon {
	lex := &Lexicon{entries: make(map[string]bool, len(entries))}
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if strings.HasPrefix(e, "-") {
			lex.suffixes = append(lex.suffixes, e)
			continue
		}
		lex.entries[e] = true
	}
	return lex
}

// DefaultLexicon returns the built-in role keyword set.
func DefaultLexicon() *Lexicon {
	return NewLexicon(append(append([]string{}, defaultRoleKeywords...), defaultRoleSuffixes...))
}

// MatchesPhrase reports whether the whole phrase is a known role keyword.
func (l *Lexicon) MatchesPhrase(phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return false
	}
	if l.entries[phrase] {
		return true
	}
	if !strings.ContainsAny(phrase, " \t") {
		for _, suffix := range l.suffixes {
			if strings.HasSuffix(phrase, suffix) {
				return true
			}
		}
	}
	return false
}

// ContainsRoleWord reports whether any single token of the message is a role
// keyword. Used for position extraction from longer sentences.
func (l *Lexicon) ContainsRoleWord(message string) bool {
	for _, token := range strings.Fields(strings.ToLower(message)) {
		token = strings.Trim(token, ".,!?;:")
		if l.entries[token] {
			return true
		}
		for _, suffix := range l.suffixes {
			if strings.HasSuffix(token, suffix) {
				return true
			}
		}
	}
	return false
}

const maxNameTokens = 3

var nameTokenRe = regexp.MustCompile(`^[A-Za-z][A-Za-z'\-]*$`)

// NameShaped reports whether the message is 1-3 whitespace-separated tokens
// of letters, hyphens and apostrophes.
func NameShaped(message string) bool {
	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 || len(tokens) > maxNameTokens {
		return false
	}
	for _, token := range tokens {
		if !nameTokenRe.MatchString(token) {
			return false
		}
	}
	return true
}

// Disambiguate classifies a short free-standing phrase as a candidate name
// or a desired position. An exact lexicon match wins; otherwise a
// name-shaped phrase is a name, because job titles are a closed set while
// names are open-ended. Once the name is known, a name-shaped phrase is no
// longer claimed as one.
func Disambiguate(message string, lex *Lexicon, nameKnown bool) (candidate.Field, string, bool) {
	phrase := strings.TrimSpace(message)
	if !NameShaped(phrase) {
		return "", "", false
	}
	if lex.MatchesPhrase(phrase) {
		return candidate.FieldDesiredPositions, phrase, true
	}
	if nameKnown {
		return "", "", false
	}
	return candidate.FieldFullName, phrase, true
}
