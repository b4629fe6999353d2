package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/candidate"
	"github.com/talentscout/hiring-assistant/internal/logger"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const logPreviewLimit = 200

// Engine turns one free-text turn into a validated profile patch. The
// deterministic pattern pass runs first, the model pass second, and the
// merge prefers pattern results. A failing model call degrades to
// pattern-only extraction and never blocks the conversation.
type Engine struct {
	completer ai.Completer
	lexicon   *Lexicon
	opts      ai.Options
	logger    *zap.Logger
}

func NewEngine(completer ai.Completer, lexicon *Lexicon, opts ai.Options, log *zap.Logger) *Engine {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Engine{
		completer: completer,
		lexicon:   lexicon,
		opts:      opts,
		logger:    log,
	}
}

// Extract runs the full pipeline over the message. pending names the field
// the orchestrator is currently waiting on and resolves bare short replies;
// it may be empty.
func (e *Engine) Extract(ctx context.Context, message string, profile *candidate.Profile, pending candidate.Field, lang string) *Result {
	res := newResult()
	nameKnown := profile.IsSet(candidate.FieldFullName)

	patternPass(res, message, e.lexicon, nameKnown)

	e.modelPass(ctx, res, message, pending, lang)

	e.contextualFallback(res, message, pending)

	if len(res.Dropped) > 0 {
		e.logger.Debug("extraction dropped fields", zap.Any("dropped", res.Dropped))
	}

	return res
}

// modelPass asks the model for a structured patch and merges it under the
// pattern-pass results. Each field is validated before it may enter the
// patch; rejected values are recorded for diagnostics.
func (e *Engine) modelPass(ctx context.Context, res *Result, message string, pending candidate.Field, lang string) {
	prompt := buildPrompt(message, pending, lang)

	raw, err := e.completer.Complete(ctx, prompt, e.opts)
	if err != nil {
		e.logger.Warn("model extraction failed, using pattern results only", zap.Error(err))
		res.ModelFailed = true
		return
	}

	e.logger.Debug("model extraction response",
		zap.String("response_preview", logger.TruncateForLog(raw, logPreviewLimit)),
	)

	patch, err := decodePatch(raw)
	if err != nil {
		e.logger.Warn("model extraction unparsable, using pattern results only", zap.Error(err))
		res.ModelFailed = true
		return
	}

	e.mergeModelPatch(res, patch)
}

// modelPatch is the strict schema for the model's JSON object. Unknown keys
// are rejected rather than silently accepted.
type modelPatch struct {
	FullName         string   `mapstructure:"full_name"`
	Email            string   `mapstructure:"email"`
	Phone            string   `mapstructure:"phone"`
	YearsExperience  *int     `mapstructure:"years_experience"`
	DesiredPositions []string `mapstructure:"desired_positions"`
	CurrentLocation  string   `mapstructure:"current_location"`
	TechStack        []string `mapstructure:"tech_stack"`
}

func decodePatch(raw string) (*modelPatch, error) {
	cleaned := stripFences(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	var patch modelPatch
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &patch,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	return &patch, nil
}

func (e *Engine) mergeModelPatch(res *Result, patch *modelPatch) {
	if name := strings.TrimSpace(patch.FullName); name != "" && res.Patch.FullName == "" {
		// The lexicon stays authoritative: a role keyword is a position
		// even when the model files it under full_name.
		if e.lexicon.MatchesPhrase(name) {
			res.Patch.DesiredPositions = append(res.Patch.DesiredPositions, name)
			res.Origins[candidate.FieldDesiredPositions] = OriginModel
		} else {
			res.Patch.FullName = name
			res.Origins[candidate.FieldFullName] = OriginModel
		}
	}

	if patch.Email != "" && res.Patch.Email == "" {
		if email, err := candidate.ValidateEmail(patch.Email); err == nil {
			res.Patch.Email = email
			res.Origins[candidate.FieldEmail] = OriginModel
		} else {
			res.drop(candidate.FieldEmail, err.Error())
		}
	}

	if patch.Phone != "" && res.Patch.Phone == "" {
		if phone, err := candidate.ValidatePhone(patch.Phone); err == nil {
			res.Patch.Phone = phone
			res.Origins[candidate.FieldPhone] = OriginModel
		} else {
			res.drop(candidate.FieldPhone, err.Error())
		}
	}

	if patch.YearsExperience != nil && res.Patch.YearsExperience == nil {
		if years, err := candidate.ValidateYearsValue(*patch.YearsExperience); err == nil {
			res.Patch.YearsExperience = &years
			res.Origins[candidate.FieldYearsExperience] = OriginModel
		} else {
			res.drop(candidate.FieldYearsExperience, err.Error())
		}
	}

	if loc := strings.TrimSpace(patch.CurrentLocation); loc != "" && res.Patch.CurrentLocation == "" {
		res.Patch.CurrentLocation = loc
		res.Origins[candidate.FieldCurrentLocation] = OriginModel
	}

	for _, pos := range patch.DesiredPositions {
		if pos = strings.TrimSpace(pos); pos != "" {
			res.Patch.DesiredPositions = append(res.Patch.DesiredPositions, pos)
			if _, ok := res.Origins[candidate.FieldDesiredPositions]; !ok {
				res.Origins[candidate.FieldDesiredPositions] = OriginModel
			}
		}
	}

	for _, tech := range patch.TechStack {
		if tech = strings.TrimSpace(tech); tech != "" {
			res.Patch.TechStack = append(res.Patch.TechStack, tech)
			if _, ok := res.Origins[candidate.FieldTechStack]; !ok {
				res.Origins[candidate.FieldTechStack] = OriginModel
			}
		}
	}
}

// contextualFallback attributes a bare short reply to the field currently
// being asked about when neither pass claimed the message.
func (e *Engine) contextualFallback(res *Result, message string, pending candidate.Field) {
	if !res.Patch.IsEmpty() {
		return
	}

	message = strings.TrimSpace(message)

	switch pending {
	case candidate.FieldCurrentLocation:
		if shortLocationShaped(message) {
			res.Patch.CurrentLocation = message
			res.Origins[candidate.FieldCurrentLocation] = OriginPattern
		}
	case candidate.FieldDesiredPositions:
		if NameShaped(message) || e.lexicon.ContainsRoleWord(message) {
			res.Patch.DesiredPositions = append(res.Patch.DesiredPositions, message)
			res.Origins[candidate.FieldDesiredPositions] = OriginPattern
		}
	case candidate.FieldTechStack:
		if items := splitTechList(message); len(items) > 0 {
			res.Patch.TechStack = items
			res.Origins[candidate.FieldTechStack] = OriginPattern
		}
	case candidate.FieldYearsExperience:
		if years, err := candidate.ValidateYears(message); err == nil {
			res.Patch.YearsExperience = &years
			res.Origins[candidate.FieldYearsExperience] = OriginPattern
		}
	}
}

func buildPrompt(message string, pending candidate.Field, lang string) string {
	note := ""
	if pending != "" {
		note = fmt.Sprintf("\nContext: the assistant just asked the candidate about their %s.\n",
			strings.ReplaceAll(string(pending), "_", " "))
	}
	if lang != "" && lang != "en" {
		note += fmt.Sprintf("The user message may be written in language %q; extracted values stay in the original script.\n", lang)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{PENDING_NOTE}}", note)
	return strings.ReplaceAll(prompt, "{{MESSAGE}}", message)
}

// stripFences removes a markdown code fence around a JSON payload.
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
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
