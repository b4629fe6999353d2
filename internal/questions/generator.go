package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/logger"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

// Level is the difficulty band derived from years of experience.
type Level string

const (
	LevelJunior Level = "junior"
	LevelMid    Level = "mid"
	LevelSenior Level = "senior"
)

var levelGuidance = map[Level]string{
	LevelJunior: "Focus on fundamentals, language syntax and simple problem-solving.",
	LevelMid:    "Focus on implementation detail, best practices and debugging.",
	LevelSenior: "Focus on architecture, optimization, complex systems and technical leadership.",
}

// Thresholds split experience years into difficulty bands: years up to
// JuniorMax are junior, up to MidMax are mid, everything above is senior.
type Thresholds struct {
	JuniorMax int
	MidMax    int
}

// DefaultThresholds match the 0-2 / 3-5 / 6+ split.
var DefaultThresholds = Thresholds{JuniorMax: 2, MidMax: 5}

// ErrMalformed marks generator output that could not be parsed into the
// requested number of questions.
var ErrMalformed = errors.New("malformed question set")

const (
	defaultMinCount = 3
	defaultMaxCount = 5

	logPreviewLimit = 200
)

// Generator produces a calibrated technical question set for a tech stack.
// A malformed model response is retried once with a stricter instruction,
// then falls back to fixed per-technology templates so the conversation
// never stalls.
type Generator struct {
	completer  ai.Completer
	opts       ai.Options
	minCount   int
	maxCount   int
	thresholds Thresholds
	logger     *zap.Logger
}

func NewGenerator(completer ai.Completer, opts ai.Options, minCount, maxCount int, thresholds Thresholds, log *zap.Logger) *Generator {
	if minCount <= 0 {
		minCount = defaultMinCount
	}
	if maxCount < minCount {
		maxCount = defaultMaxCount
	}
	if thresholds.JuniorMax <= 0 || thresholds.MidMax <= thresholds.JuniorMax {
		thresholds = DefaultThresholds
	}
	return &Generator{
		completer:  completer,
		opts:       opts,
		minCount:   minCount,
		maxCount:   maxCount,
		thresholds: thresholds,
		logger:     log,
	}
}

// LevelFor maps years of experience onto a difficulty band.
func (g *Generator) LevelFor(years int) Level {
	switch {
	case years <= g.thresholds.JuniorMax:
		return LevelJunior
	case years <= g.thresholds.MidMax:
		return LevelMid
	default:
		return LevelSenior
	}
}

// Generate returns 3-5 (configurable) questions for the stack and level.
// It never fails: after one strict retry the fixed templates take over.
func (g *Generator) Generate(ctx context.Context, techStack []string, years int) ([]string, Level) {
	level := g.LevelFor(years)

	qs, err := g.generateOnce(ctx, techStack, years, level, false)
	if err == nil {
		return qs, level
	}

	g.logger.Warn("question generation failed, retrying with strict instruction", zap.Error(err))

	qs, err = g.generateOnce(ctx, techStack, years, level, true)
	if err == nil {
		return qs, level
	}

	g.logger.Warn("question generation failed twice, using template questions", zap.Error(err))

	return g.templateQuestions(techStack, level), level
}

func (g *Generator) generateOnce(ctx context.Context, techStack []string, years int, level Level, strict bool) ([]string, error) {
	raw, err := g.completer.Complete(ctx, g.buildPrompt(techStack, years, level, strict), g.opts)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("question generation response",
		zap.String("response_preview", logger.TruncateForLog(raw, logPreviewLimit)),
	)

	qs, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}

	if len(qs) < g.minCount {
		return nil, fmt.Errorf("%w: got %d questions, want at least %d", ErrMalformed, len(qs), g.minCount)
	}
	if len(qs) > g.maxCount {
		qs = qs[:g.maxCount]
	}

	return qs, nil
}

func (g *Generator) buildPrompt(techStack []string, years int, level Level, strict bool) string {
	strictNote := ""
	if strict {
		strictNote = fmt.Sprintf(
			"IMPORTANT: the previous response was not usable. Respond with ONLY a raw JSON array of %d to %d strings. No prose, no markdown, no object wrapper.",
			g.minCount, g.maxCount,
		)
	}

	replacements := [][2]string{
		{"{{MIN}}", strconv.Itoa(g.minCount)},
		{"{{MAX}}", strconv.Itoa(g.maxCount)},
		{"{{TECH_STACK}}", strings.Join(techStack, ", ")},
		{"{{YEARS}}", strconv.Itoa(years)},
		{"{{LEVEL}}", string(level)},
		{"{{LEVEL_GUIDANCE}}", levelGuidance[level]},
		{"{{STRICT_NOTE}}", strictNote},
	}

	prompt := promptTemplate
	for _, r := range replacements {
		prompt = strings.ReplaceAll(prompt, r[0], r[1])
	}
	return prompt
}

// parseQuestions accepts either a bare JSON array or an object with a
// "questions" key, with or without a surrounding code fence.
func parseQuestions(raw string) ([]string, error) {
	cleaned := stripFences(raw)

	var list []string
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		return trimNonEmpty(list), nil
	}

	var wrapped struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && len(wrapped.Questions) > 0 {
		return trimNonEmpty(wrapped.Questions), nil
	}

	return nil, fmt.Errorf("%w: response is neither an array nor a questions object", ErrMalformed)
}

func trimNonEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, q := range list {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

var templatesByLevel = map[Level][]string{
	LevelJunior: {
		"Can you describe a small project or exercise where you used %s?",
		"What are the basic building blocks of %s you use most often?",
	},
	LevelMid: {
		"Can you walk through how you would debug a failing %s component in production?",
		"What best practices do you follow when building with %s, and why?",
	},
	LevelSenior: {
		"How would you design a large-scale system around %s, and what trade-offs would you watch for?",
		"Describe a time you had to optimize or re-architect a %s-based solution.",
	},
}

// templateQuestions builds the fallback set: one question per declared
// technology up to the maximum, padded with generic prompts to the minimum.
func (g *Generator) templateQuestions(techStack []string, level Level) []string {
	templates := templatesByLevel[level]

	var qs []string
	for i, tech := range techStack {
		if len(qs) >= g.maxCount {
			break
		}
		qs = append(qs, fmt.Sprintf(templates[i%len(templates)], tech))
	}

	generic := []string{
		"What's the most challenging technical problem you've solved recently?",
		"How do you stay updated with new technologies in your field?",
		"How do you approach testing the code you write?",
	}
	for _, q := range generic {
		if len(qs) >= g.minCount {
			break
		}
		qs = append(qs, q)
	}

	return qs
}
