// Package interview holds the conversation state machine: one Session per
// candidate, advanced turn by turn by the Orchestrator.
package interview

import (
	"time"

	"github.com/talentscout/hiring-assistant/internal/candidate"
	"github.com/talentscout/hiring-assistant/internal/questions"

	"github.com/google/uuid"
)

// Phase is the conversation state.
type Phase string

const (
	PhaseGreeting           Phase = "greeting"
	PhaseInfoGathering      Phase = "info_gathering"
	PhaseTechnicalQuestions Phase = "technical_questions"
	PhaseCompleted          Phase = "completed"
)

// Outcome classifies how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAbandoned Outcome = "abandoned"
	OutcomeTimedOut  Outcome = "timed_out"
)

// Session is the per-candidate conversation state. It is mutated only by the
// Orchestrator and owns its Profile exclusively.
type Session struct {
	ID        string
	Phase     Phase
	TurnCount int
	Profile   candidate.Profile

	// PendingField names the field the last assistant question asked for.
	// Empty outside info_gathering.
	PendingField candidate.Field

	// Questions is set once, on entering the technical phase.
	Questions     []string
	QuestionIndex int
	Level         questions.Level

	Language string
	Outcome  Outcome

	StartedAt time.Time
}

// NewSession creates a fresh session in the greeting phase.
func NewSession(language string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Phase:     PhaseGreeting,
		Language:  language,
		StartedAt: time.Now(),
	}
}

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool {
	return s.Phase == PhaseCompleted
}
