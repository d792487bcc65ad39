package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-prep/internal/ai/gemini"
	"github.com/spigell/interview-prep/internal/analysis"
	"github.com/spigell/interview-prep/internal/feedback"
	applogger "github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/secrets"
)

// runtime is everything a command needs to analyze and record feedback.
type runtime struct {
	config   *Config
	logger   *zap.Logger
	session  *analysis.Session
	recorder *feedback.Recorder
}

func (r *runtime) Close() {
	if err := r.recorder.Close(); err != nil {
		r.logger.Warn("closing feedback sinks", zap.Error(err))
	}
	_ = r.logger.Sync()
}

func newLogger() (*zap.Logger, error) {
	return applogger.New(applogger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
}

func newRuntime(ctx context.Context, logger *zap.Logger) (*runtime, error) {
	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(*config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  config.Gemini.APIKeyFile,
		Value: config.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, GEMINI_API_KEY_FILE or gemini.api-key-file)", err)
	}

	strategy, err := analysis.ParseStrategy(config.Analysis.Strategy)
	if err != nil {
		return nil, err
	}

	genLogger := applogger.WithModel(logger, "gemini", config.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:        config.Gemini.Model,
		MaxRetries:   config.Gemini.MaxRetries,
		MaxQuotaWait: config.Gemini.MaxQuotaWait,
		MaxLogLength: config.Gemini.MaxLogLength,
	}, genLogger)
	if err != nil {
		return nil, err
	}

	recorder, err := newRecorder(config.Feedback, logger)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.NewAnalyzer(generator, analysis.Config{
		Strategy:     strategy,
		Scoring:      config.Analysis.Scoring,
		Questions:    config.Analysis.Questions,
		MaxLogLength: config.Gemini.MaxLogLength,
	}, genLogger)

	return &runtime{
		config:   config,
		logger:   logger,
		session:  analysis.NewSession(analyzer, recorder, logger),
		recorder: recorder,
	}, nil
}

func newRecorder(config FeedbackConfig, logger *zap.Logger) (*feedback.Recorder, error) {
	sinks := []feedback.Sink{feedback.NewLogSink(logger)}

	if config.File != "" {
		sink, err := feedback.NewFileSink(config.File)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if config.SQLite != "" {
		sink, err := feedback.NewSQLiteSink(config.SQLite)
		if err != nil {
			return nil, fmt.Errorf("feedback sqlite sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	return feedback.NewRecorder(logger, sinks...), nil
}

func redacted(config Config) Config {
	if config.Gemini.APIKey != "" {
		config.Gemini.APIKey = "***"
	}
	return config
}
