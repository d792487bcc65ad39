package ai

import (
	"embed"
	"fmt"
	"strings"
)

// Stage names one of the prompt templates.
type Stage string

const (
	// StageCombined asks for score and questions in one call.
	StageCombined Stage = "combined"
	// StageScore asks for category, score, summary and feedback.
	StageScore Stage = "score"
	// StageQuestions asks for questions informed by the scoring stage's category.
	StageQuestions Stage = "questions"
)

const defaultJobCategory = "general"

//go:embed prompts/*.md
var promptFS embed.FS

var promptTemplates = map[Stage]string{
	StageCombined:  mustTemplate("prompts/combined.md"),
	StageScore:     mustTemplate("prompts/score.md"),
	StageQuestions: mustTemplate("prompts/questions.md"),
}

type persona struct {
	description string
	guidance    string
}

var personas = map[Mode]persona{
	ModeSoft: {
		description: "a friendly senior colleague",
		guidance:    "Keep the tone warm and encouraging; questions should invite the candidate to tell their story.",
	},
	ModeStandard: {
		description: "a professional interviewer",
		guidance:    "Keep the tone neutral and focused on verifying the key requirements.",
	},
	ModePressure: {
		description: "a sharp, demanding interviewer who applies pressure",
		guidance:    "Be pointed: probe weak spots and gaps between the posting and the profile, and ask for specifics and numbers.",
	},
}

// BuildPrompt renders the template for stage. jobCategory is only used by
// StageQuestions; an empty value falls back to a generic role.
func BuildPrompt(stage Stage, req Request, jobCategory string) string {
	template, ok := promptTemplates[stage]
	if !ok {
		template = promptTemplates[StageCombined]
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeStandard
	}
	p, ok := personas[mode]
	if !ok {
		p = personas[ModeStandard]
	}

	jobCategory = strings.TrimSpace(jobCategory)
	if jobCategory == "" {
		jobCategory = defaultJobCategory
	}

	replacer := strings.NewReplacer(
		"{{PERSONA}}", p.description,
		"{{MODE_GUIDANCE}}", p.guidance,
		"{{MODE}}", string(mode),
		"{{JOB_CATEGORY}}", jobCategory,
		"{{JOB_DESCRIPTION}}", strings.TrimSpace(req.JobDescription),
		"{{CANDIDATE_PROFILE}}", strings.TrimSpace(req.CandidateProfile),
	)

	return strings.TrimSpace(replacer.Replace(template))
}

func mustTemplate(name string) string {
	data, err := promptFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read prompt template %s: %v", name, err))
	}
	return string(data)
}
