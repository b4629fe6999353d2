package extraction

import (
	"regexp"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/candidate"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`[+]?[(]?[0-9]{1,4}[)]?[-\s.]?[(]?[0-9]{1,4}[)]?[-\s.]?[0-9]{1,5}[-\s.]?[0-9]{1,5}`)
	yearsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)`)

	locationShapeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z\s\-,.']*$`)
)

// patternPass runs the deterministic detectors over the raw message and
// fills the result with validated matches. Structured formats (email, phone)
// have higher precision here than in the model pass, so these win the merge.
func patternPass(res *Result, message string, lex *Lexicon, nameKnown bool) {
	if m := emailPattern.FindString(message); m != "" {
		if email, err := candidate.ValidateEmail(m); err == nil {
			res.Patch.Email = email
			res.Origins[candidate.FieldEmail] = OriginPattern
		} else {
			res.drop(candidate.FieldEmail, err.Error())
		}
	}

	if m := phonePattern.FindString(message); m != "" {
		if phone, err := candidate.ValidatePhone(m); err == nil {
			res.Patch.Phone = phone
			res.Origins[candidate.FieldPhone] = OriginPattern
		} else {
			res.drop(candidate.FieldPhone, err.Error())
		}
	}

	if m := yearsPattern.FindStringSubmatch(message); m != nil {
		if years, err := candidate.ValidateYears(m[1]); err == nil {
			res.Patch.YearsExperience = &years
			res.Origins[candidate.FieldYearsExperience] = OriginPattern
		} else {
			res.drop(candidate.FieldYearsExperience, err.Error())
		}
	}

	if field, value, ok := Disambiguate(message, lex, nameKnown); ok {
		switch field {
		case candidate.FieldFullName:
			res.Patch.FullName = value
			res.Origins[candidate.FieldFullName] = OriginPattern
		case candidate.FieldDesiredPositions:
			res.Patch.DesiredPositions = append(res.Patch.DesiredPositions, value)
			res.Origins[candidate.FieldDesiredPositions] = OriginPattern
		}
	}
}

var techItemRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+#./\- ]*$`)

// splitTechList parses a bare comma-separated technology list. Items longer
// than a few words mean the message is prose, not a list, and nothing is
// claimed.
func splitTechList(message string) []string {
	var items []string
	for _, item := range strings.Split(message, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if len(strings.Fields(item)) > maxNameTokens || !techItemRe.MatchString(item) {
			return nil
		}
		items = append(items, item)
	}
	return items
}

// shortLocationShaped reports whether the message looks like a bare place
// name: at most three words of letters and common location punctuation.
func shortLocationShaped(message string) bool {
	message = strings.TrimSpace(message)
	if message == "" || len(strings.Fields(message)) > maxNameTokens {
		return false
	}
	return locationShapeRe.MatchString(message)
}
