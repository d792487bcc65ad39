package ai

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildPromptEmbedsInputs(t *testing.T) {
	req := Request{
		JobDescription:   "  Backend engineer, must know SQL  ",
		CandidateProfile: "5 years building REST APIs",
		Mode:             ModePressure,
	}

	prompt := BuildPrompt(StageCombined, req, "")

	for _, want := range []string{
		"Backend engineer, must know SQL\n",
		"5 years building REST APIs",
		"pressure",
		"a sharp, demanding interviewer",
		`"score": <integer 0-100>`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q:\n%s", want, prompt)
		}
	}

	if strings.Contains(prompt, "{{") {
		t.Fatalf("unreplaced placeholder in prompt:\n%s", prompt)
	}

	if again := BuildPrompt(StageCombined, req, ""); again != prompt {
		t.Fatalf("expected deterministic prompt")
	}
}

func TestBuildPromptQuestionsStageUsesCategory(t *testing.T) {
	req := Request{JobDescription: "jd", CandidateProfile: "cv", Mode: ModeSoft}

	prompt := BuildPrompt(StageQuestions, req, "data")
	if !strings.Contains(prompt, "for a data role") {
		t.Fatalf("expected job category in questions prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "a friendly senior colleague") {
		t.Fatalf("expected soft persona in questions prompt:\n%s", prompt)
	}

	fallback := BuildPrompt(StageQuestions, req, "  ")
	if !strings.Contains(fallback, "for a general role") {
		t.Fatalf("expected fallback category:\n%s", fallback)
	}
}

func TestBuildPromptScoreStageIgnoresPersona(t *testing.T) {
	soft := BuildPrompt(StageScore, Request{JobDescription: "jd", CandidateProfile: "cv", Mode: ModeSoft}, "")
	pressure := BuildPrompt(StageScore, Request{JobDescription: "jd", CandidateProfile: "cv", Mode: ModePressure}, "")

	if strings.Contains(pressure, "demanding") {
		t.Fatalf("score prompt must not carry the interviewer persona")
	}

	if strings.Replace(soft, "soft", "pressure", 1) != pressure {
		t.Fatalf("score prompts should only differ by the mode name")
	}
}

func TestBuildPromptDoesNotExpandPlaceholdersInUserText(t *testing.T) {
	req := Request{JobDescription: "{{CANDIDATE_PROFILE}}", CandidateProfile: "cv", Mode: ModeStandard}

	prompt := BuildPrompt(StageCombined, req, "")
	if !strings.Contains(prompt, "Job posting:\n{{CANDIDATE_PROFILE}}") {
		t.Fatalf("user text should be embedded verbatim:\n%s", prompt)
	}
}

func TestRequestValidate(t *testing.T) {
	cases := []struct {
		name   string
		req    Request
		fields []string
		mode   Mode
	}{
		{name: "valid", req: Request{JobDescription: "jd", CandidateProfile: "cv", Mode: "Pressure"}, mode: ModePressure},
		{name: "default mode", req: Request{JobDescription: "jd", CandidateProfile: "cv"}, mode: ModeStandard},
		{name: "both empty", req: Request{JobDescription: " ", CandidateProfile: "\n"}, fields: []string{"job_description", "candidate_profile"}},
		{name: "unknown mode", req: Request{JobDescription: "jd", CandidateProfile: "cv", Mode: "brutal"}, fields: []string{"interview_mode"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			err := req.Validate()

			if len(tc.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if req.Mode != tc.mode {
					t.Fatalf("expected mode %q, got %q", tc.mode, req.Mode)
				}
				return
			}

			var validationErr *InputValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected InputValidationError, got %v", err)
			}
			if strings.Join(validationErr.Fields, ",") != strings.Join(tc.fields, ",") {
				t.Fatalf("unexpected fields: %v", validationErr.Fields)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput")
			}
		})
	}
}
