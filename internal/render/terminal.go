package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// Terminal writes the view to w using pterm styling.
func Terminal(w io.Writer, view View) error {
	var b strings.Builder

	b.WriteString(pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite, pterm.Bold)).
		Sprint("Interview preparation"))
	b.WriteString("\n")

	score := []string{
		pterm.Bold.Sprint("Fit score: ") + scoreStyle(view.Score).Sprint(view.ScoreLabel),
	}
	if view.Summary != "" {
		score = append(score, view.Summary)
	}
	if view.JobCategory != "" {
		score = append(score, pterm.Gray("Job category: "+view.JobCategory))
	}
	b.WriteString(pterm.DefaultBox.WithTitle("Match").Sprint(strings.Join(score, "\n")))
	b.WriteString("\n\n")

	if view.Feedback != "" {
		b.WriteString(pterm.Info.Sprint(view.Feedback))
		b.WriteString("\n")
	}

	b.WriteString(pterm.DefaultSection.Sprintf("Questions (%s mode)", view.Mode))

	if len(view.Questions) == 0 {
		b.WriteString(pterm.Warning.Sprint("The model returned no questions."))
		b.WriteString("\n")
	}

	for _, q := range view.Questions {
		b.WriteString(pterm.Bold.Sprint(q.Title))
		b.WriteString("\n")
		b.WriteString("  " + pterm.FgCyan.Sprint("Intent: ") + q.Intent + "\n")
		b.WriteString("  " + pterm.FgGreen.Sprint("Tip: ") + q.Tip + "\n\n")
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}

func scoreStyle(score int) pterm.Color {
	switch {
	case score >= 75:
		return pterm.FgGreen
	case score >= 50:
		return pterm.FgYellow
	default:
		return pterm.FgRed
	}
}
