package interview

import (
	"context"
	"strconv"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/candidate"
	"github.com/talentscout/hiring-assistant/internal/extraction"
	"github.com/talentscout/hiring-assistant/internal/messages"
	"github.com/talentscout/hiring-assistant/internal/questions"

	"go.uber.org/zap"
)

// Extractor produces a profile patch from one user message.
type Extractor interface {
	Extract(ctx context.Context, message string, profile *candidate.Profile, pending candidate.Field, lang string) *extraction.Result
}

// QuestionGenerator produces the technical question set for a completed
// profile. It must not fail; the generator falls back to templates itself.
type QuestionGenerator interface {
	Generate(ctx context.Context, techStack []string, years int) ([]string, questions.Level)
}

// Recorder persists session state turn by turn. Recorder errors are logged
// and never interrupt the conversation.
type Recorder interface {
	SaveProfile(ctx context.Context, sessionID string, p *candidate.Profile, lang string) error
	SaveQuestions(ctx context.Context, sessionID string, level string, qs []string) error
	SaveAnswer(ctx context.Context, sessionID string, index int, question, answer string) error
	LogTurn(ctx context.Context, sessionID, role, content string) error
	Finalize(ctx context.Context, sessionID string, outcome string) error
}

// Roles recorded in the turn transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config tunes the orchestrator.
type Config struct {
	// MaxTurns is the user-turn budget before the session times out.
	MaxTurns int

	// EndKeywords end the session when a message consists of one of them.
	EndKeywords []string
}

// DefaultEndKeywords ends the session on any of these, case-insensitively.
var DefaultEndKeywords = []string{"exit", "quit", "stop", "bye", "goodbye", "cancel"}

const defaultMaxTurns = 50

func (c Config) withDefaults() Config {
	if c.MaxTurns <= 0 {
		c.MaxTurns = defaultMaxTurns
	}
	if len(c.EndKeywords) == 0 {
		c.EndKeywords = DefaultEndKeywords
	}
	return c
}

// Directive is the orchestrator's decision for one turn: the reply to show
// and whether the session just ended.
type Directive struct {
	Reply   string
	Outcome Outcome
	Final   bool
}

// Orchestrator drives a session through greeting, info gathering, technical
// questions and completion.
type Orchestrator struct {
	extractor Extractor
	generator QuestionGenerator
	recorder  Recorder
	resolver  messages.Resolver
	cfg       Config
	logger    *zap.Logger
}

func NewOrchestrator(extractor Extractor, generator QuestionGenerator, recorder Recorder, resolver messages.Resolver, cfg Config, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		generator: generator,
		recorder:  recorder,
		resolver:  resolver,
		cfg:       cfg.withDefaults(),
		logger:    log,
	}
}

// Greeting opens the session: it emits the greeting text, which already asks
// for the full name, and moves the session into info gathering.
func (o *Orchestrator) Greeting(ctx context.Context, s *Session) string {
	reply := o.resolver.Resolve(messages.IDGreeting, s.Language)
	s.Phase = PhaseInfoGathering
	s.PendingField = candidate.FieldFullName
	o.logTurn(ctx, s, RoleAssistant, reply)
	return reply
}

// ProcessTurn handles one user message and returns the reply directive.
// The returned error covers orchestration failures only; extraction and
// generation failures are absorbed by their fallbacks.
func (o *Orchestrator) ProcessTurn(ctx context.Context, s *Session, message string) (*Directive, error) {
	if s.Phase == PhaseCompleted {
		return &Directive{
			Reply:   o.resolver.Resolve(messages.IDSessionClosed, s.Language),
			Outcome: s.Outcome,
			Final:   true,
		}, nil
	}

	s.TurnCount++
	o.logTurn(ctx, s, RoleUser, message)

	if o.isEndKeyword(message) {
		return o.finish(ctx, s, OutcomeAbandoned, messages.IDFarewellAbandoned), nil
	}
	if s.TurnCount > o.cfg.MaxTurns {
		return o.finish(ctx, s, OutcomeTimedOut, messages.IDTimeoutNotice), nil
	}

	if s.Phase == PhaseGreeting {
		// The caller skipped Greeting; treat the first message as info.
		s.Phase = PhaseInfoGathering
		s.PendingField = candidate.FieldFullName
	}

	var d *Directive
	switch s.Phase {
	case PhaseInfoGathering:
		d = o.infoTurn(ctx, s, message)
	case PhaseTechnicalQuestions:
		d = o.answerTurn(ctx, s, message)
	default:
		d = &Directive{Reply: o.resolver.Resolve(messages.IDErrorProcessing, s.Language)}
	}

	o.logTurn(ctx, s, RoleAssistant, d.Reply)
	return d, nil
}

// infoTurn extracts profile fields from the message. A field whose new value
// came from the pattern pass while the profile already holds one is treated
// as an explicit correction and may overwrite.
func (o *Orchestrator) infoTurn(ctx context.Context, s *Session, message string) *Directive {
	res := o.extractor.Extract(ctx, message, &s.Profile, s.PendingField, s.Language)

	var overwrite []candidate.Field
	for f, origin := range res.Origins {
		if origin == extraction.OriginPattern && s.Profile.IsSet(f) {
			overwrite = append(overwrite, f)
		}
	}

	changed := s.Profile.Apply(&res.Patch, overwrite...)

	if len(changed) > 0 {
		if err := o.recorder.SaveProfile(ctx, s.ID, &s.Profile, s.Language); err != nil {
			o.logger.Warn("profile save failed", zap.String("session", s.ID), zap.Error(err))
		}
	}

	var parts []string
	if corrected := intersect(changed, overwrite); len(corrected) > 0 {
		text := o.resolver.Resolve(messages.IDUpdateConfirmed, s.Language)
		for _, f := range corrected {
			parts = append(parts, messages.Format(text, map[string]string{
				"field": strings.ReplaceAll(string(f), "_", " "),
			}))
		}
	}
	if len(changed) == 0 && len(res.Dropped) > 0 {
		parts = append(parts, o.resolver.Resolve(messages.IDErrorProcessing, s.Language))
	}

	if s.Profile.Complete() {
		return o.enterTechnicalPhase(ctx, s, parts)
	}

	next := s.Profile.Missing()[0]
	s.PendingField = next
	parts = append(parts, o.resolver.Resolve(messages.NextFieldID(next), s.Language))

	return &Directive{Reply: strings.Join(parts, "\n\n")}
}

// enterTechnicalPhase generates and stores the question set, then asks the
// first question.
func (o *Orchestrator) enterTechnicalPhase(ctx context.Context, s *Session, parts []string) *Directive {
	qs, level := o.generator.Generate(ctx, s.Profile.TechStack, *s.Profile.YearsExperience)

	s.Questions = qs
	s.QuestionIndex = 0
	s.Level = level
	s.Phase = PhaseTechnicalQuestions
	s.PendingField = ""

	if err := o.recorder.SaveQuestions(ctx, s.ID, string(level), qs); err != nil {
		o.logger.Warn("question save failed", zap.String("session", s.ID), zap.Error(err))
	}
	o.logger.Info("entering technical phase",
		zap.String("session", s.ID),
		zap.String("level", string(level)),
		zap.Int("questions", len(qs)),
	)

	intro := messages.Format(o.resolver.Resolve(messages.IDTechIntro, s.Language), map[string]string{
		"name":       s.Profile.FullName,
		"tech_stack": strings.Join(s.Profile.TechStack, ", "),
	})
	parts = append(parts, intro, o.questionText(s))

	return &Directive{Reply: strings.Join(parts, "\n\n")}
}

// answerTurn records the answer to the current question and either asks the
// next one or closes the session.
func (o *Orchestrator) answerTurn(ctx context.Context, s *Session, message string) *Directive {
	question := s.Questions[s.QuestionIndex]
	if err := o.recorder.SaveAnswer(ctx, s.ID, s.QuestionIndex, question, message); err != nil {
		o.logger.Warn("answer save failed", zap.String("session", s.ID), zap.Error(err))
	}
	s.QuestionIndex++

	if s.QuestionIndex >= len(s.Questions) {
		farewell := messages.Format(o.resolver.Resolve(messages.IDFarewell, s.Language), map[string]string{
			"name": s.Profile.FullName,
		})
		d := o.finish(ctx, s, OutcomeCompleted, "")
		d.Reply = farewell
		return d
	}

	thanks := o.resolver.Resolve(messages.IDThankYouAnswer, s.Language)
	return &Directive{Reply: thanks + "\n\n" + o.questionText(s)}
}

func (o *Orchestrator) questionText(s *Session) string {
	return messages.Format(o.resolver.Resolve(messages.IDQuestionFormat, s.Language), map[string]string{
		"current":  strconv.Itoa(s.QuestionIndex + 1),
		"total":    strconv.Itoa(len(s.Questions)),
		"question": s.Questions[s.QuestionIndex],
	})
}

// finish moves the session to completed with the given outcome. When id is
// non-empty the reply is resolved from it; callers may fill Reply themselves.
func (o *Orchestrator) finish(ctx context.Context, s *Session, outcome Outcome, id string) *Directive {
	s.Phase = PhaseCompleted
	s.Outcome = outcome
	s.PendingField = ""

	if err := o.recorder.SaveProfile(ctx, s.ID, &s.Profile, s.Language); err != nil {
		o.logger.Warn("profile save failed", zap.String("session", s.ID), zap.Error(err))
	}
	if err := o.recorder.Finalize(ctx, s.ID, string(outcome)); err != nil {
		o.logger.Warn("finalize failed", zap.String("session", s.ID), zap.Error(err))
	}
	o.logger.Info("session finished",
		zap.String("session", s.ID),
		zap.String("outcome", string(outcome)),
		zap.Int("turns", s.TurnCount),
	)

	d := &Directive{Outcome: outcome, Final: true}
	if id != "" {
		d.Reply = o.resolver.Resolve(id, s.Language)
	}
	return d
}

func (o *Orchestrator) isEndKeyword(message string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(message))
	trimmed = strings.TrimRight(trimmed, ".!")
	for _, kw := range o.cfg.EndKeywords {
		if trimmed == strings.ToLower(kw) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) logTurn(ctx context.Context, s *Session, role, content string) {
	if err := o.recorder.LogTurn(ctx, s.ID, role, content); err != nil {
		o.logger.Warn("turn log failed", zap.String("session", s.ID), zap.Error(err))
	}
}

func intersect(a, b []candidate.Field) []candidate.Field {
	inB := make(map[candidate.Field]bool, len(b))
	for _, f := range b {
		inB[f] = true
	}
	var out []candidate.Field
	for _, f := range a {
		if inB[f] {
			out = append(out, f)
		}
	}
	return out
}
