package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/candidate"

	"go.uber.org/zap"
)

type stubCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string, _ ai.Options) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestEngine(stub *stubCompleter) *Engine {
	return NewEngine(stub, DefaultLexicon(), ai.Options{}, zap.NewNop())
}

func TestExtractPatternAndModelMerge(t *testing.T) {
	stub := &stubCompleter{response: `{"current_location": "New York", "tech_stack": ["Python", "Docker"]}`}
	engine := newTestEngine(stub)

	profile := &candidate.Profile{}
	res := engine.Extract(context.Background(), "I'm in New York, reach me at sarah@techcorp.com. I use Python and Docker.", profile, "", "en")

	if res.Patch.Email != "sarah@techcorp.com" {
		t.Fatalf("unexpected email: %q", res.Patch.Email)
	}
	if res.Origins[candidate.FieldEmail] != OriginPattern {
		t.Fatalf("email should come from the pattern pass")
	}
	if res.Patch.CurrentLocation != "New York" {
		t.Fatalf("unexpected location: %q", res.Patch.CurrentLocation)
	}
	if res.Origins[candidate.FieldCurrentLocation] != OriginModel {
		t.Fatalf("location should come from the model pass")
	}
	if len(res.Patch.TechStack) != 2 {
		t.Fatalf("unexpected tech stack: %v", res.Patch.TechStack)
	}
	if res.ModelFailed {
		t.Fatalf("model pass should have succeeded")
	}
}

func TestExtractModelFailureFallsBackToPatterns(t *testing.T) {
	stub := &stubCompleter{err: errors.New("deadline exceeded")}
	engine := newTestEngine(stub)

	profile := &candidate.Profile{}
	res := engine.Extract(context.Background(), "My number is +1-555-123-4567 and I have 5 years of experience", profile, "", "en")

	if !res.ModelFailed {
		t.Fatalf("expected ModelFailed to be set")
	}
	if res.Patch.Phone != "+1-555-123-4567" {
		t.Fatalf("unexpected phone: %q", res.Patch.Phone)
	}
	if res.Patch.YearsExperience == nil || *res.Patch.YearsExperience != 5 {
		t.Fatalf("unexpected years: %v", res.Patch.YearsExperience)
	}
}

func TestExtractRejectsUnknownModelKeys(t *testing.T) {
	stub := &stubCompleter{response: `{"full_name": "Sarah Johnson", "salary_expectation": "100k"}`}
	engine := newTestEngine(stub)

	res := engine.Extract(context.Background(), "here are my details, as requested!", &candidate.Profile{}, "", "en")

	if !res.ModelFailed {
		t.Fatalf("unknown keys must fail the model pass")
	}
	if res.Patch.FullName != "" {
		t.Fatalf("rejected payload must not contribute fields: %q", res.Patch.FullName)
	}
}

func TestExtractDecodesWeaklyTypedModelOutput(t *testing.T) {
	stub := &stubCompleter{response: "```json\n{\"years_experience\": \"5\", \"tech_stack\": \"Python, Docker\"}\n```"}
	engine := newTestEngine(stub)

	res := engine.Extract(context.Background(), "I listed everything above, thanks!", &candidate.Profile{}, "", "en")

	if res.ModelFailed {
		t.Fatalf("model pass failed unexpectedly")
	}
	if res.Patch.YearsExperience == nil || *res.Patch.YearsExperience != 5 {
		t.Fatalf("unexpected years: %v", res.Patch.YearsExperience)
	}
	if len(res.Patch.TechStack) != 2 || res.Patch.TechStack[0] != "Python" {
		t.Fatalf("comma string should split into a list: %v", res.Patch.TechStack)
	}
}

func TestExtractLexiconGuardsModelFullName(t *testing.T) {
	stub := &stubCompleter{response: `{"full_name": "tester"}`}
	engine := newTestEngine(stub)

	res := engine.Extract(context.Background(), "some longer message without a bare phrase in it, 42!", &candidate.Profile{}, "", "en")

	if res.Patch.FullName != "" {
		t.Fatalf("role keyword accepted as a name: %q", res.Patch.FullName)
	}
	if len(res.Patch.DesiredPositions) != 1 || res.Patch.DesiredPositions[0] != "tester" {
		t.Fatalf("role keyword should land in positions: %v", res.Patch.DesiredPositions)
	}
}

func TestExtractDropsInvalidModelValues(t *testing.T) {
	stub := &stubCompleter{response: `{"email": "not-an-email", "years_experience": 99}`}
	engine := newTestEngine(stub)

	res := engine.Extract(context.Background(), "some longer message without a bare phrase in it, 42!", &candidate.Profile{}, "", "en")

	if res.Patch.Email != "" || res.Patch.YearsExperience != nil {
		t.Fatalf("invalid values entered the patch: %+v", res.Patch)
	}
	if _, ok := res.Dropped[candidate.FieldEmail]; !ok {
		t.Fatalf("expected email drop to be recorded")
	}
	if _, ok := res.Dropped[candidate.FieldYearsExperience]; !ok {
		t.Fatalf("expected years drop to be recorded")
	}
}

func TestExtractContextualFallback(t *testing.T) {
	stub := &stubCompleter{response: `{}`}
	engine := newTestEngine(stub)

	res := engine.Extract(context.Background(), "New York", &candidate.Profile{FullName: "Sarah Johnson"}, candidate.FieldCurrentLocation, "en")
	if res.Patch.CurrentLocation != "New York" {
		t.Fatalf("pending location should claim a short reply: %+v", res.Patch)
	}

	res = engine.Extract(context.Background(), "backend developer", &candidate.Profile{FullName: "Sarah Johnson"}, candidate.FieldDesiredPositions, "en")
	if len(res.Patch.DesiredPositions) != 1 {
		t.Fatalf("pending positions should claim the reply: %+v", res.Patch)
	}

	res = engine.Extract(context.Background(), "Python, Docker, C++", &candidate.Profile{FullName: "Sarah Johnson"}, candidate.FieldTechStack, "en")
	if len(res.Patch.TechStack) != 3 {
		t.Fatalf("pending tech stack should claim the list: %+v", res.Patch)
	}

	res = engine.Extract(context.Background(), "5", &candidate.Profile{FullName: "Sarah Johnson"}, candidate.FieldYearsExperience, "en")
	if res.Patch.YearsExperience == nil || *res.Patch.YearsExperience != 5 {
		t.Fatalf("pending years should claim a bare number: %+v", res.Patch)
	}

	res = engine.Extract(context.Background(), "I would rather not say anything", &candidate.Profile{FullName: "Sarah Johnson"}, candidate.FieldTechStack, "en")
	if len(res.Patch.TechStack) != 0 {
		t.Fatalf("prose must not be claimed as a tech list: %+v", res.Patch)
	}
}

func TestExtractPromptCarriesContext(t *testing.T) {
	stub := &stubCompleter{response: `{}`}
	engine := newTestEngine(stub)

	engine.Extract(context.Background(), "Berlin", &candidate.Profile{}, candidate.FieldCurrentLocation, "de")

	if !strings.Contains(stub.lastPrompt, "current location") {
		t.Fatalf("expected pending field note in prompt")
	}
	if !strings.Contains(stub.lastPrompt, `"de"`) {
		t.Fatalf("expected language note in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Berlin") {
		t.Fatalf("expected user message in prompt")
	}
}
