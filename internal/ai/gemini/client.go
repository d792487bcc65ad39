package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/utils"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultMaxRetries   = 3
	defaultMaxQuotaWait = 30 * time.Second
	defaultBaseDelay    = 2 * time.Second
	defaultMaxLogLength = 200

	jsonMIMEType = "application/json"
)

var (
	// swapped in tests
	sleep = utils.WaitFor

	retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*(?:s|sec|secs|second|seconds)\b`)
)

// modelsAPI is the part of genai.Models used by the generator.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options tune the generator. Zero values select defaults.
type Options struct {
	Model        string
	MaxRetries   int
	MaxQuotaWait time.Duration
	MaxLogLength int
}

// Generator wraps the Google GenAI client and implements ai.Generator.
type Generator struct {
	models       modelsAPI
	model        string
	maxRetries   int
	maxQuotaWait time.Duration
	baseDelay    time.Duration
	maxLogLen    int
	logger       *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, opts Options, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, opts, logger), nil
}

func newGenerator(models modelsAPI, opts Options, logger *zap.Logger) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	maxQuotaWait := opts.MaxQuotaWait
	if maxQuotaWait <= 0 {
		maxQuotaWait = defaultMaxQuotaWait
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:       models,
		model:        model,
		maxRetries:   maxRetries,
		maxQuotaWait: maxQuotaWait,
		baseDelay:    defaultBaseDelay,
		maxLogLen:    maxLogLen,
		logger:       logger,
	}
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Generate sends the prompt with the given sampling configuration and returns
// the concatenated text of the response. Transient failures are retried up to
// maxRetries attempts in total. Every failure is returned as *ai.ProviderError.
func (g *Generator) Generate(ctx context.Context, prompt string, sampling ai.Sampling) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := generateConfig(sampling)

	var lastErr *ai.ProviderError
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		g.logger.Debug("gemini generate content request",
			zap.Int("attempt", attempt),
			zap.Float32("temperature", sampling.Temperature),
			zap.Bool("structured_output", sampling.StructuredOutput),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
		)

		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		if err == nil {
			text, respErr := responseText(resp)
			if respErr == nil {
				g.logger.Debug("gemini generate content response",
					zap.Int("attempt", attempt),
					zap.Int("response_length", utf8.RuneCountInString(text)),
					zap.String("response_preview", utils.TruncateForLog(text, g.maxLogLen)),
				)
				return text, nil
			}
			lastErr = respErr
		} else {
			lastErr = classify(err)
		}

		if !lastErr.Retryable || attempt == g.maxRetries {
			break
		}

		delay := g.backoff(attempt)
		if lastErr.Kind == ai.ProviderQuota {
			hint, ok := retryDelay(lastErr.Err)
			if ok && hint > g.maxQuotaWait {
				g.logger.Warn("quota retry delay is too long, giving up",
					zap.Duration("retry_delay", hint),
					zap.Duration("max_quota_wait", g.maxQuotaWait),
				)
				break
			}
			if ok {
				delay = hint
			}
		}

		g.logger.Warn("retrying gemini request after transient error",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", g.maxRetries),
			zap.Duration("delay", delay),
			zap.String("kind", string(lastErr.Kind)),
			zap.Error(lastErr.Err),
		)

		if err := sleep(ctx, delay); err != nil {
			return "", &ai.ProviderError{Kind: ai.ProviderNetwork, Err: err}
		}
	}

	return "", lastErr
}

func (g *Generator) backoff(attempt int) time.Duration {
	delay := g.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

func generateConfig(sampling ai.Sampling) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(sampling.Temperature),
		CandidateCount: 1,
	}

	if sampling.TopP > 0 {
		config.TopP = genai.Ptr(sampling.TopP)
	}
	if sampling.TopK > 0 {
		config.TopK = genai.Ptr(sampling.TopK)
	}
	if sampling.MaxOutputTokens > 0 {
		config.MaxOutputTokens = sampling.MaxOutputTokens
	}
	if sampling.StructuredOutput {
		config.ResponseMIMEType = jsonMIMEType
	}

	return config
}

func responseText(resp *genai.GenerateContentResponse) (string, *ai.ProviderError) {
	if resp == nil {
		return "", &ai.ProviderError{Kind: ai.ProviderEmpty, Retryable: true, Err: errors.New("gemini api returned nil response")}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &ai.ProviderError{
			Kind: ai.ProviderSafety,
			Err:  fmt.Errorf("prompt blocked: %s %s", resp.PromptFeedback.BlockReason, resp.PromptFeedback.BlockReasonMessage),
		}
	}

	var builder strings.Builder
	var finishReason genai.FinishReason
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if finishReason == "" {
			finishReason = candidate.FinishReason
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output != "" {
		return output, nil
	}

	switch finishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return "", &ai.ProviderError{Kind: ai.ProviderSafety, Err: fmt.Errorf("response blocked: %s", finishReason)}
	}

	return "", &ai.ProviderError{Kind: ai.ProviderEmpty, Retryable: true, Err: errors.New("gemini api returned empty response")}
}

// classify maps a transport or API failure onto a provider error kind.
func classify(err error) *ai.ProviderError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ai.ProviderError{Kind: ai.ProviderNetwork, Err: err}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr, err)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(*apiErrPtr, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ai.ProviderError{Kind: ai.ProviderNetwork, Retryable: true, Err: err}
	}

	return &ai.ProviderError{Kind: ai.ProviderUnknown, Err: err}
}

func classifyAPIError(apiErr genai.APIError, err error) *ai.ProviderError {
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return &ai.ProviderError{Kind: ai.ProviderAuth, Err: err}
	case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
		return &ai.ProviderError{Kind: ai.ProviderAuth, Err: err}
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return &ai.ProviderError{Kind: ai.ProviderQuota, Retryable: true, Err: err}
	case apiErr.Code >= http.StatusInternalServerError:
		return &ai.ProviderError{Kind: ai.ProviderServer, Retryable: true, Err: err}
	default:
		return &ai.ProviderError{Kind: ai.ProviderUnknown, Err: err}
	}
}

// retryDelay extracts the provider's retry hint from RetryInfo details or the message text.
func retryDelay(err error) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return 0, false
		}
		apiErr = *apiErrPtr
	}

	for _, detail := range apiErr.Details {
		kind, _ := detail["@type"].(string)
		if !strings.HasSuffix(kind, "RetryInfo") {
			continue
		}
		if raw, ok := detail["retryDelay"].(string); ok {
			if d, err := time.ParseDuration(raw); err == nil {
				return d, true
			}
		}
	}

	if match := retryAfterPattern.FindStringSubmatch(apiErr.Message); len(match) == 2 {
		seconds, err := strconv.ParseFloat(match[1], 64)
		if err == nil {
			return time.Duration(seconds * float64(time.Second)), true
		}
	}

	return 0, false
}
