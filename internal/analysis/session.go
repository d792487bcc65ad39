package analysis

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/feedback"
	"github.com/spigell/interview-prep/internal/logger"
)

var (
	// ErrNoResult is returned when feedback is given before any successful analysis.
	ErrNoResult = errors.New("no analysis result to rate")
	// ErrFeedbackAlreadyRecorded guards against rating the same result twice.
	ErrFeedbackAlreadyRecorded = errors.New("feedback already recorded for this result")
)

// State is owned by the caller and passed into every Session call.
// It holds the latest submission and is reset on each new one.
type State struct {
	RunID            string
	Request          ai.Request
	Result           *ai.Result
	StartedAt        time.Time
	FeedbackRecorded bool
}

// NewState starts a session clock used for the elapsed-time metric.
func NewState() *State {
	return &State{StartedAt: time.Now()}
}

func (s *State) reset(runID string, req ai.Request) {
	s.RunID = runID
	s.Request = req
	s.Result = nil
	s.FeedbackRecorded = false
}

// Recorder persists feedback events.
type Recorder interface {
	Record(ctx context.Context, event feedback.Event) error
}

// Session runs submissions and feedback against caller-owned State values.
type Session struct {
	analyzer *Analyzer
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
	newRunID func() string
}

func NewSession(analyzer *Analyzer, recorder Recorder, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		analyzer: analyzer,
		recorder: recorder,
		logger:   log,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// Submit validates req and, if it is acceptable, resets state and runs the
// analysis. A rejected request leaves state untouched. A failed analysis
// leaves state without a result.
func (s *Session) Submit(ctx context.Context, state *State, req ai.Request) (*ai.Result, error) {
	if err := req.Validate(); err != nil {
		s.logger.Warn("submission rejected", zap.Error(err))
		return nil, err
	}

	state.reset(s.newRunID(), req)

	runLogger := logger.WithFields(s.logger, logger.RunFields(state.RunID, string(req.Mode))...)
	if !state.StartedAt.IsZero() {
		runLogger = runLogger.With(zap.Duration("elapsed", s.now().Sub(state.StartedAt)))
	}

	result, err := s.analyzer.WithLogger(runLogger).Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	state.Result = result
	return result, nil
}

// RecordFeedback stores a rating for the current result. A second rating for
// the same result is rejected unless force is set.
func (s *Session) RecordFeedback(ctx context.Context, state *State, rating int, comment string, force bool) error {
	if state == nil || state.Result == nil {
		return ErrNoResult
	}

	if state.FeedbackRecorded && !force {
		return ErrFeedbackAlreadyRecorded
	}

	event := feedback.Event{
		RunID:                  state.RunID,
		Rating:                 rating,
		Comment:                strings.TrimSpace(comment),
		Mode:                   string(state.Request.Mode),
		JobDescriptionLength:   utf8.RuneCountInString(state.Request.JobDescription),
		CandidateProfileLength: utf8.RuneCountInString(state.Request.CandidateProfile),
		Score:                  state.Result.Score,
		JobCategory:            state.Result.JobCategory,
		Timestamp:              s.now().UTC(),
	}

	if !state.StartedAt.IsZero() {
		event.ElapsedSeconds = s.now().Sub(state.StartedAt).Seconds()
	}

	if err := event.Validate(); err != nil {
		return err
	}

	if s.recorder == nil {
		return errors.New("feedback recorder is not configured")
	}

	// A rating stored by at least one sink counts as recorded, so a retry
	// cannot duplicate it in the sinks that did accept it.
	if err := s.recorder.Record(ctx, event); err != nil {
		var partial *feedback.PartialWriteError
		if !errors.As(err, &partial) {
			return err
		}
		s.logger.Warn("feedback partially stored", zap.Strings("sinks", partial.Written), zap.Error(err))
	}

	state.FeedbackRecorded = true
	return nil
}
