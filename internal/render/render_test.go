package render

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/spigell/interview-prep/internal/ai"
)

func sampleResult() *ai.Result {
	return &ai.Result{
		Score:       72,
		Summary:     "Reasonable overlap",
		Feedback:    "Strengthen distributed systems depth",
		JobCategory: "engineering",
		Questions: []ai.Question{
			{Prompt: "Q1", Intent: "I1", Tip: "T1"},
			{Prompt: "Q2", Intent: "I2", Tip: "T2"},
			{Prompt: "Q3", Intent: "I3", Tip: "T3"},
		},
	}
}

func TestFromResult(t *testing.T) {
	result := sampleResult()
	before := *result
	before.Questions = append([]ai.Question(nil), result.Questions...)

	view := FromResult(result, ai.ModePressure)

	if view.ScoreLabel != "72/100" {
		t.Fatalf("unexpected score label: %q", view.ScoreLabel)
	}

	if len(view.Questions) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(view.Questions))
	}

	if view.Questions[1].Title != "Question 2: Q2" || view.Questions[1].Intent != "I2" || view.Questions[1].Tip != "T2" {
		t.Fatalf("unexpected block: %+v", view.Questions[1])
	}

	if !reflect.DeepEqual(*result, before) {
		t.Fatalf("renderer mutated the result")
	}
}

func TestFromResultHandlesAnyQuestionCount(t *testing.T) {
	result := sampleResult()
	result.Questions = result.Questions[:1]

	if got := len(FromResult(result, ai.ModeSoft).Questions); got != 1 {
		t.Fatalf("expected 1 block, got %d", got)
	}

	empty := FromResult(nil, ai.ModeSoft)
	if empty.Questions == nil || len(empty.Questions) != 0 {
		t.Fatalf("expected empty, non-nil question list")
	}
}

func TestTerminal(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	var buf bytes.Buffer
	if err := Terminal(&buf, FromResult(sampleResult(), ai.ModePressure)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"72/100", "Reasonable overlap", "pressure mode", "Question 1: Q1", "Question 3: Q3", "Tip: T2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}

	if strings.Count(out, "Intent: ") != 3 {
		t.Fatalf("expected three question blocks:\n%s", out)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: &ai.InputValidationError{Fields: []string{"job_description"}}, want: "Please fill in: job description."},
		{err: &ai.ProviderError{Kind: ai.ProviderQuota}, want: "quota is exhausted"},
		{err: &ai.ProviderError{Kind: ai.ProviderAuth}, want: "API key"},
		{err: &ai.ParseError{Raw: "nope"}, want: "unexpected format"},
		{err: &ai.SchemaError{Problems: []string{"score is required"}}, want: "unexpected format"},
	}

	for _, tt := range tests {
		if got := ErrorMessage(tt.err); !strings.Contains(got, tt.want) {
			t.Fatalf("%v: expected %q in %q", tt.err, tt.want, got)
		}
	}

	if ErrorMessage(nil) != "" {
		t.Fatal("expected empty message for nil error")
	}
}
