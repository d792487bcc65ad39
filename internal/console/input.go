package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/spigell/interview-prep/internal/ai"
)

// ErrAborted is returned when the user leaves a form or prompt.
var ErrAborted = errors.New("aborted by user")

var modeLabels = map[ai.Mode]string{
	ai.ModeSoft:     "Soft: friendly senior colleague",
	ai.ModeStandard: "Standard: professional interviewer",
	ai.ModePressure: "Pressure: sharp, demanding interviewer",
}

func modeOptions() []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(ai.Modes()))
	for _, mode := range ai.Modes() {
		options = append(options, huh.NewOption(modeLabels[mode], string(mode)))
	}
	return options
}

func requireText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s must not be empty", field)
		}
		return nil
	}
}

// CollectRequest shows the input form, pre-filled with prev.
func CollectRequest(prev ai.Request) (ai.Request, error) {
	req := prev
	mode := string(prev.Mode)
	if mode == "" {
		mode = string(ai.ModeStandard)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Interview mode").
				Options(modeOptions()...).
				Value(&mode),
			huh.NewText().
				Title("Job posting").
				Description("Main duties, requirements and nice-to-haves.").
				CharLimit(0).
				Lines(8).
				Value(&req.JobDescription).
				Validate(requireText("job posting")),
			huh.NewText().
				Title("Your experience").
				Description("Key projects, results and skills from your resume.").
				CharLimit(0).
				Lines(8).
				Value(&req.CandidateProfile).
				Validate(requireText("experience summary")),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return prev, ErrAborted
		}
		return prev, fmt.Errorf("input form: %w", err)
	}

	req.Mode = ai.Mode(mode)
	return req, nil
}
