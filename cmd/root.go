package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interview-prep/internal/ai"
)

const (
	app = "interview-prep"
)

type Config struct {
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Server   ServerConfig   `mapstructure:"server"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxQuotaWait time.Duration `mapstructure:"max-quota-wait"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type AnalysisConfig struct {
	Strategy  string      `mapstructure:"strategy"`
	Scoring   ai.Sampling `mapstructure:"scoring"`
	Questions ai.Sampling `mapstructure:"questions"`
}

type FeedbackConfig struct {
	// File is a JSON lines file. Empty disables the file sink.
	File string `mapstructure:"file"`
	// SQLite is a database path. Empty disables the sqlite sink.
	SQLite string `mapstructure:"sqlite"`
}

type ServerConfig struct {
	Listen     string        `mapstructure:"listen"`
	SessionTTL time.Duration `mapstructure:"session-ttl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-prep scores how well your experience fits a job posting and drafts interview questions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional
	_ = godotenv.Load()

	if err := viper.BindEnv("gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-prep.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()

	// The config file is optional unless it was asked for explicitly.
	var notFound viper.ConfigFileNotFoundError
	if err != nil && (cfgFile != "" || !errors.As(err, &notFound)) {
		log.Fatal(err)
	}
}

func defaultConfig() Config {
	return Config{
		Gemini: GeminiConfig{
			Model:        "gemini-2.5-flash",
			MaxRetries:   3,
			MaxQuotaWait: 30 * time.Second,
			MaxLogLength: 200,
		},
		Analysis: AnalysisConfig{
			Strategy:  "two-stage",
			Scoring:   ai.ScoringSampling(),
			Questions: ai.QuestionsSampling(),
		},
		Server: ServerConfig{
			Listen:     ":8080",
			SessionTTL: 2 * time.Hour,
		},
	}
}

func getConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
