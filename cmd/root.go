package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "talentscout"
)

type Config struct {
	Language    string   `mapstructure:"language"`
	MaxTurns    int      `mapstructure:"max-turns"`
	EndKeywords []string `mapstructure:"end-keywords"`
	// Lexicon overrides the built-in role keyword list used to tell names
	// from positions.
	Lexicon    []string          `mapstructure:"lexicon"`
	Store      string            `mapstructure:"store"`
	Questions  *QuestionsConfig  `mapstructure:"questions"`
	Difficulty *DifficultyConfig `mapstructure:"difficulty"`
	Model      *ModelConfig      `mapstructure:"model"`
	Gemini     *GeminiConfig     `mapstructure:"gemini"`
	Voice      *VoiceConfig      `mapstructure:"voice"`
}

type QuestionsConfig struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

type DifficultyConfig struct {
	JuniorMax int `mapstructure:"junior-max"`
	MidMax    int `mapstructure:"mid-max"`
}

type ModelConfig struct {
	Timeout      time.Duration       `mapstructure:"timeout"`
	Temperatures *TemperaturesConfig `mapstructure:"temperatures"`
}

type TemperaturesConfig struct {
	Extraction float32 `mapstructure:"extraction"`
	Questions  float32 `mapstructure:"questions"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type VoiceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Command string `mapstructure:"command"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentscout is an interview assistant that screens candidates and asks tailored technical questions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("language", "en")
	viper.SetDefault("max-turns", 50)
	viper.SetDefault("store", app+".db")
	viper.SetDefault("model.timeout", 30*time.Second)
	viper.SetDefault("model.temperatures.extraction", 0.3)
	viper.SetDefault("model.temperatures.questions", 0.5)
}

func initConfig() {
	// The config file is optional; defaults plus environment variables are
	// enough for a basic session.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app + ".yaml")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
