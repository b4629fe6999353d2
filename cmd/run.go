package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/ai/gemini"
	"github.com/talentscout/hiring-assistant/internal/extraction"
	"github.com/talentscout/hiring-assistant/internal/interview"
	"github.com/talentscout/hiring-assistant/internal/logger"
	"github.com/talentscout/hiring-assistant/internal/messages"
	"github.com/talentscout/hiring-assistant/internal/questions"
	"github.com/talentscout/hiring-assistant/internal/secrets"
	"github.com/talentscout/hiring-assistant/internal/store"
	"github.com/talentscout/hiring-assistant/internal/voice"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive screening session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("language", "l", "", "conversation language code (en, de, fr, hi, kn)")
	runCmd.Flags().StringP("store", "s", "", "path to the sqlite database")

	viper.BindPFlag("language", runCmd.Flags().Lookup("language"))
	viper.BindPFlag("store", runCmd.Flags().Lookup("store"))
}

// run drives one candidate session on the terminal.
func run(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting talentscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		config = &Config{}
	}

	catalog, err := messages.Load()
	if err != nil {
		logger.Fatal("loading message catalogs", zap.Error(err))
	}

	language := config.Language
	if !catalog.Supports(language) {
		logger.Fatal("unsupported language",
			zap.String("language", language),
			zap.Strings("supported", catalog.Languages()),
		)
	}

	// Credentials are checked before any turn is processed so a bad setup
	// never strands a candidate mid-conversation.
	apiKey, err := resolveAPIKey(config)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or the gemini section in the configuration file"),
		)
	}

	db, err := store.Open(viper.GetString("store"))
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	gemCfg := config.Gemini
	if gemCfg == nil {
		gemCfg = &GeminiConfig{}
	}

	client, err := gemini.New(ctx, apiKey, gemCfg.Model, gemCfg.MaxRetries, logger.With(
		zap.String("provider", "gemini"),
	))
	if err != nil {
		logger.Fatal("creating the gemini client", zap.Error(err))
	}

	orchestrator := buildOrchestrator(config, client, db, catalog, logger)

	speech := buildSpeech(config, logger)
	if speech != nil {
		defer speech.Close()
	}

	session := interview.NewSession(language)
	logger.Info("session started", zap.String("session", session.ID), zap.String("language", language))

	say := func(text string) {
		fmt.Println(text)
		fmt.Println()
		if speech != nil {
			speech.Enqueue(text)
		}
	}

	say(orchestrator.Greeting(ctx, session))

	prompt := promptui.Prompt{Label: "You"}
	for {
		input, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting", zap.String("reason", "input closed"))
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		directive, err := orchestrator.ProcessTurn(ctx, session, input)
		if err != nil {
			logger.Fatal("processing turn", zap.Error(err))
		}

		say(directive.Reply)

		if directive.Final {
			logger.Info("session ended",
				zap.String("session", session.ID),
				zap.String("outcome", string(directive.Outcome)),
			)
			return
		}
	}
}

func buildOrchestrator(config *Config, client ai.Completer, db *store.Store, catalog *messages.Catalog, logger *zap.Logger) *interview.Orchestrator {
	timeout := viper.GetDuration("model.timeout")

	extractOpts := ai.Options{
		Temperature: float32(viper.GetFloat64("model.temperatures.extraction")),
		Timeout:     timeout,
	}
	questionOpts := ai.Options{
		Temperature: float32(viper.GetFloat64("model.temperatures.questions")),
		Timeout:     timeout,
	}

	lexicon := extraction.DefaultLexicon()
	if len(config.Lexicon) > 0 {
		lexicon = extraction.NewLexicon(config.Lexicon)
	}

	engine := extraction.NewEngine(client, lexicon, extractOpts, logger)

	thresholds := questions.DefaultThresholds
	if config.Difficulty != nil {
		thresholds = questions.Thresholds{
			JuniorMax: config.Difficulty.JuniorMax,
			MidMax:    config.Difficulty.MidMax,
		}
	}
	var minCount, maxCount int
	if config.Questions != nil {
		minCount, maxCount = config.Questions.Min, config.Questions.Max
	}
	generator := questions.NewGenerator(client, questionOpts, minCount, maxCount, thresholds, logger)

	return interview.NewOrchestrator(engine, generator, db, catalog, interview.Config{
		MaxTurns:    viper.GetInt("max-turns"),
		EndKeywords: config.EndKeywords,
	}, logger)
}

func buildSpeech(config *Config, logger *zap.Logger) *voice.Pipeline {
	if config.Voice == nil || !config.Voice.Enabled {
		return nil
	}

	speaker, err := voice.NewCommandSpeaker(config.Voice.Command)
	if err != nil {
		logger.Warn("voice disabled", zap.Error(err))
		return nil
	}

	return voice.NewPipeline(speaker, logger.With(zap.String("component", "voice")))
}

func resolveAPIKey(config *Config) (string, error) {
	src := secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
	}
	if config.Gemini != nil {
		src.Value = config.Gemini.APIKey
		src.File = config.Gemini.APIKeyFile
	}
	if src.File == "" {
		src.File = strings.TrimSpace(viper.GetString("gemini.api-key-file"))
	}
	if src.Value == "" {
		src.Value = strings.TrimSpace(viper.GetString("gemini.api-key"))
	}

	return secrets.Load(src)
}
