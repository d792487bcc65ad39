package feedback

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes one structured log record per event.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(_ context.Context, event Event) error {
	s.logger.Info("feedback recorded",
		zap.String("event", "feedback"),
		zap.String("run_id", event.RunID),
		zap.Int("rating", event.Rating),
		zap.String("comment", event.Comment),
		zap.String("interview_mode", event.Mode),
		zap.Int("job_description_length", event.JobDescriptionLength),
		zap.Int("candidate_profile_length", event.CandidateProfileLength),
		zap.Int("score", event.Score),
		zap.String("job_category", event.JobCategory),
		zap.Float64("elapsed_seconds", event.ElapsedSeconds),
		zap.Time("timestamp", event.Timestamp),
	)
	return nil
}
