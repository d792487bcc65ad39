package ai

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects the interviewer persona used for question generation.
// It never affects the fit score.
type Mode string

const (
	ModeSoft     Mode = "soft"
	ModeStandard Mode = "standard"
	ModePressure Mode = "pressure"
)

// Modes lists the supported interview modes in display order.
func Modes() []Mode {
	return []Mode{ModeSoft, ModeStandard, ModePressure}
}

// ParseMode converts user input into a Mode. Empty input means ModeStandard.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ModeStandard, nil
	case ModeSoft:
		return ModeSoft, nil
	case ModeStandard:
		return ModeStandard, nil
	case ModePressure:
		return ModePressure, nil
	default:
		return "", fmt.Errorf("unknown interview mode %q", s)
	}
}

// Request is a single analysis submission.
type Request struct {
	JobDescription   string `json:"job_description"`
	CandidateProfile string `json:"candidate_profile"`
	Mode             Mode   `json:"interview_mode"`
}

// Validate checks that both text fields are filled and the mode is known.
// The mode is normalized in place.
func (r *Request) Validate() error {
	var fields []string

	if strings.TrimSpace(r.JobDescription) == "" {
		fields = append(fields, "job_description")
	}
	if strings.TrimSpace(r.CandidateProfile) == "" {
		fields = append(fields, "candidate_profile")
	}

	mode, err := ParseMode(string(r.Mode))
	if err != nil {
		fields = append(fields, "interview_mode")
	} else {
		r.Mode = mode
	}

	if len(fields) > 0 {
		return &InputValidationError{Fields: fields}
	}

	return nil
}

// Question is one generated interview question.
type Question struct {
	Prompt string `json:"q" mapstructure:"q"`
	Intent string `json:"intent" mapstructure:"intent"`
	Tip    string `json:"tip" mapstructure:"tip"`
}

// Result is a validated analysis in the canonical schema.
type Result struct {
	Score       int        `json:"score"`
	Summary     string     `json:"summary"`
	Feedback    string     `json:"feedback"`
	JobCategory string     `json:"job_category,omitempty"`
	Questions   []Question `json:"questions"`
}

// Sampling controls the output diversity of a single generation call.
type Sampling struct {
	Temperature     float32 `mapstructure:"temperature" json:"temperature"`
	TopP            float32 `mapstructure:"top-p" json:"top_p"`
	TopK            float32 `mapstructure:"top-k" json:"top_k"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens" json:"max_output_tokens"`
	// StructuredOutput asks the provider to enforce a JSON response.
	StructuredOutput bool `mapstructure:"structured-output" json:"structured_output"`
}

// ScoringSampling pins the sampler so identical inputs tend to produce the same score.
func ScoringSampling() Sampling {
	return Sampling{
		Temperature:      0,
		TopP:             0.1,
		TopK:             1,
		MaxOutputTokens:  1024,
		StructuredOutput: true,
	}
}

// QuestionsSampling lets repeated runs on the same input produce fresh questions.
func QuestionsSampling() Sampling {
	return Sampling{
		Temperature:     0.9,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

// Generator sends a prompt to a hosted model and returns its raw text.
type Generator interface {
	Generate(ctx context.Context, prompt string, sampling Sampling) (string, error)
}
