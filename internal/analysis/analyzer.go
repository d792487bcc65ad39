package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/utils"
)

// Strategy selects between one combined model call and a score-then-questions split.
type Strategy string

const (
	StrategySingle   Strategy = "single"
	StrategyTwoStage Strategy = "two-stage"
)

const defaultMaxLogLength = 200

// ParseStrategy converts configuration input into a Strategy. Empty means two-stage.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyTwoStage:
		return StrategyTwoStage, nil
	case StrategySingle:
		return StrategySingle, nil
	default:
		return "", fmt.Errorf("unknown analysis strategy %q", s)
	}
}

// Config holds the sampling profiles used per stage. The single strategy
// uses Scoring so that the score stays reproducible.
type Config struct {
	Strategy     Strategy
	Scoring      ai.Sampling
	Questions    ai.Sampling
	MaxLogLength int
}

// DefaultConfig returns the two-stage setup with deterministic scoring.
func DefaultConfig() Config {
	return Config{
		Strategy:     StrategyTwoStage,
		Scoring:      ai.ScoringSampling(),
		Questions:    ai.QuestionsSampling(),
		MaxLogLength: defaultMaxLogLength,
	}
}

// Analyzer turns a request into a validated result: prompt, generate, parse.
type Analyzer struct {
	generator ai.Generator
	config    Config
	logger    *zap.Logger
}

func NewAnalyzer(generator ai.Generator, config Config, logger *zap.Logger) *Analyzer {
	if config.Strategy == "" {
		config.Strategy = StrategyTwoStage
	}
	if config.MaxLogLength <= 0 {
		config.MaxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// WithLogger returns a copy of the analyzer that logs through logger.
func (a *Analyzer) WithLogger(logger *zap.Logger) *Analyzer {
	clone := *a
	if logger != nil {
		clone.logger = logger
	}
	return &clone
}

// Analyze validates the request and runs the configured strategy.
// The generator is never called for an invalid request.
func (a *Analyzer) Analyze(ctx context.Context, req ai.Request) (*ai.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a.logger.Info("analysis requested",
		zap.String("interview_mode", string(req.Mode)),
		zap.String("strategy", string(a.config.Strategy)),
		zap.Int("job_description_length", utf8.RuneCountInString(req.JobDescription)),
		zap.Int("candidate_profile_length", utf8.RuneCountInString(req.CandidateProfile)),
	)

	var (
		result *ai.Result
		err    error
	)

	switch a.config.Strategy {
	case StrategySingle:
		result, err = a.analyzeSingle(ctx, req)
	default:
		result, err = a.analyzeTwoStage(ctx, req)
	}

	if err != nil {
		a.logFailure(err)
		return nil, err
	}

	a.logger.Info("analysis completed",
		zap.Int("score", result.Score),
		zap.String("job_category", result.JobCategory),
		zap.Int("questions", len(result.Questions)),
	)

	return result, nil
}

func (a *Analyzer) analyzeSingle(ctx context.Context, req ai.Request) (*ai.Result, error) {
	sampling := a.config.Scoring

	raw, err := a.generate(ctx, ai.StageCombined, ai.BuildPrompt(ai.StageCombined, req, ""), sampling)
	if err != nil {
		return nil, err
	}

	return ai.ParseResult(raw, sampling.StructuredOutput)
}

func (a *Analyzer) analyzeTwoStage(ctx context.Context, req ai.Request) (*ai.Result, error) {
	scoreRaw, err := a.generate(ctx, ai.StageScore, ai.BuildPrompt(ai.StageScore, req, ""), a.config.Scoring)
	if err != nil {
		return nil, err
	}

	doc, err := ai.ParseDocument(scoreRaw, a.config.Scoring.StructuredOutput)
	if err != nil {
		return nil, err
	}

	category := doc.Category()
	a.logger.Debug("scoring stage parsed", zap.String("job_category", category))

	questionsRaw, err := a.generate(ctx, ai.StageQuestions, ai.BuildPrompt(ai.StageQuestions, req, category), a.config.Questions)
	if err != nil {
		return nil, err
	}

	questions, err := ai.ParseDocument(questionsRaw, a.config.Questions.StructuredOutput)
	if err != nil {
		return nil, err
	}

	doc.Merge(questions)

	return doc.Result(scoreRaw + "\n" + questionsRaw)
}

func (a *Analyzer) generate(ctx context.Context, stage ai.Stage, prompt string, sampling ai.Sampling) (string, error) {
	if a.generator == nil {
		return "", &ai.ProviderError{Kind: ai.ProviderUnknown, Err: errors.New("generator is not configured")}
	}

	raw, err := a.generator.Generate(ctx, prompt, sampling)
	if err != nil {
		var providerErr *ai.ProviderError
		if errors.As(err, &providerErr) {
			return "", fmt.Errorf("%s stage: %w", stage, err)
		}
		return "", fmt.Errorf("%s stage: %w", stage, &ai.ProviderError{Kind: ai.ProviderUnknown, Err: err})
	}

	return raw, nil
}

func (a *Analyzer) logFailure(err error) {
	if raw, ok := ai.RawPayload(err); ok {
		a.logger.Warn("invalid model response",
			zap.Error(err),
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("raw_payload", utils.TruncateForLog(raw, a.config.MaxLogLength)),
		)
		return
	}

	var providerErr *ai.ProviderError
	if errors.As(err, &providerErr) {
		a.logger.Error("generation failed",
			zap.String("kind", string(providerErr.Kind)),
			zap.Bool("retryable", providerErr.Retryable),
			zap.Error(err),
		)
		return
	}

	a.logger.Error("analysis failed", zap.Error(err))
}
