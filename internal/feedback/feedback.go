package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ErrInvalidRating is returned for ratings outside [MinRating, MaxRating].
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Event is one satisfaction rating together with the run it refers to.
type Event struct {
	RunID                  string    `json:"run_id"`
	Rating                 int       `json:"rating"`
	Comment                string    `json:"comment,omitempty"`
	Mode                   string    `json:"interview_mode"`
	JobDescriptionLength   int       `json:"job_description_length"`
	CandidateProfileLength int       `json:"candidate_profile_length"`
	Score                  int       `json:"score"`
	JobCategory            string    `json:"job_category,omitempty"`
	ElapsedSeconds         float64   `json:"elapsed_seconds,omitempty"`
	Timestamp              time.Time `json:"timestamp"`
}

// Validate checks the rating range.
func (e Event) Validate() error {
	if e.Rating < MinRating || e.Rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, e.Rating)
	}
	return nil
}

// Sink is a write-only destination for feedback events.
type Sink interface {
	Name() string
	Write(ctx context.Context, event Event) error
}

// Recorder fans a feedback event out to every configured sink.
type Recorder struct {
	sinks  []Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder. A nil logger disables sink failure logging.
func NewRecorder(logger *zap.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Recorder{
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// PartialWriteError means the event reached some sinks but not all of them.
type PartialWriteError struct {
	Written []string
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("feedback stored in %v only: %v", e.Written, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// Record validates the event, stamps it when needed and writes it to all sinks.
// Every sink is attempted. When only some sinks fail the result is a
// *PartialWriteError; when all fail it is their joined errors.
func (r *Recorder) Record(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}

	var (
		errs    []error
		written []string
	)
	for _, sink := range r.sinks {
		err := sink.Write(ctx, event)
		if err == nil {
			written = append(written, sink.Name())
			continue
		}

		r.logger.Warn("writing feedback failed",
			zap.String("sink", sink.Name()),
			zap.String("run_id", event.RunID),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
	}

	if len(errs) > 0 && len(written) > 0 {
		return &PartialWriteError{Written: written, Err: errors.Join(errs...)}
	}

	return errors.Join(errs...)
}

// Close releases sinks that hold resources.
func (r *Recorder) Close() error {
	var errs []error
	for _, sink := range r.sinks {
		if closer, ok := sink.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
