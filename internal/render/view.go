package render

import (
	"fmt"

	"github.com/spigell/interview-prep/internal/ai"
)

// QuestionBlock is one expandable question with its intent and answer tip.
type QuestionBlock struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Question string `json:"question"`
	Intent   string `json:"intent"`
	Tip      string `json:"tip"`
}

// View is the display model of a result.
type View struct {
	Score       int             `json:"score"`
	ScoreLabel  string          `json:"score_label"`
	Summary     string          `json:"summary"`
	Feedback    string          `json:"feedback,omitempty"`
	JobCategory string          `json:"job_category,omitempty"`
	Mode        string          `json:"interview_mode"`
	Questions   []QuestionBlock `json:"questions"`
}

// FromResult maps a result onto a View. It reads the result only and
// produces one block per question actually present.
func FromResult(result *ai.Result, mode ai.Mode) View {
	if result == nil {
		return View{Mode: string(mode), Questions: []QuestionBlock{}}
	}

	blocks := make([]QuestionBlock, 0, len(result.Questions))
	for i, q := range result.Questions {
		blocks = append(blocks, QuestionBlock{
			Index:    i + 1,
			Title:    fmt.Sprintf("Question %d: %s", i+1, q.Prompt),
			Question: q.Prompt,
			Intent:   q.Intent,
			Tip:      q.Tip,
		})
	}

	return View{
		Score:       result.Score,
		ScoreLabel:  fmt.Sprintf("%d/100", result.Score),
		Summary:     result.Summary,
		Feedback:    result.Feedback,
		JobCategory: result.JobCategory,
		Mode:        string(mode),
		Questions:   blocks,
	}
}
