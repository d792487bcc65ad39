package console

import (
	"errors"
	"testing"

	"github.com/manifoldco/promptui"

	"github.com/spigell/interview-prep/internal/ai"
)

func TestRatingFromChoice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		choice string
		rating int
		ok     bool
	}{
		{choice: "5 - Very helpful", rating: 5, ok: true},
		{choice: "1 - Not helpful", rating: 1, ok: true},
		{choice: ratingThumbUp, rating: 5, ok: true},
		{choice: ratingThumbDown, rating: 1, ok: true},
		{choice: ratingSkip},
		{choice: ""},
		{choice: "9 - Off the scale"},
	}

	for _, tt := range tests {
		rating, ok := ratingFromChoice(tt.choice)
		if rating != tt.rating || ok != tt.ok {
			t.Fatalf("%q: expected (%d, %v), got (%d, %v)", tt.choice, tt.rating, tt.ok, rating, ok)
		}
	}

	for _, item := range ratingItems {
		if item == ratingSkip {
			continue
		}
		if _, ok := ratingFromChoice(item); !ok {
			t.Fatalf("rating item %q does not parse", item)
		}
	}
}

func TestModeOptionsCoverAllModes(t *testing.T) {
	options := modeOptions()
	if len(options) != len(ai.Modes()) {
		t.Fatalf("expected %d options, got %d", len(ai.Modes()), len(options))
	}

	for i, mode := range ai.Modes() {
		if options[i].Value != string(mode) {
			t.Fatalf("option %d: expected %q, got %q", i, mode, options[i].Value)
		}
	}
}

func TestRequireText(t *testing.T) {
	validate := requireText("job posting")
	if err := validate("  \n"); err == nil {
		t.Fatal("expected error for blank text")
	}
	if err := validate("Go developer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPromptError(t *testing.T) {
	if !errors.Is(promptError(promptui.ErrInterrupt), ErrAborted) {
		t.Fatal("expected interrupt to map to ErrAborted")
	}

	other := errors.New("tty missing")
	if !errors.Is(promptError(other), other) {
		t.Fatal("expected unrelated errors to pass through")
	}
}
