package feedback

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingSink struct{ calls int }

func (s *failingSink) Name() string { return "failing" }

func (s *failingSink) Write(context.Context, Event) error {
	s.calls++
	return errors.New("disk full")
}

func sampleEvent() Event {
	return Event{
		RunID:                  "run-1",
		Rating:                 4,
		Comment:                "useful",
		Mode:                   "pressure",
		JobDescriptionLength:   55,
		CandidateProfileLength: 63,
		Score:                  72,
		JobCategory:            "engineering",
	}
}

func TestRecorderRejectsInvalidRating(t *testing.T) {
	sink := &failingSink{}
	recorder := NewRecorder(zap.NewNop(), sink)

	for _, rating := range []int{0, 6, -1} {
		event := sampleEvent()
		event.Rating = rating

		if err := recorder.Record(context.Background(), event); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}

	if sink.calls != 0 {
		t.Fatalf("sinks must not be called for invalid events")
	}
}

func TestRecorderWritesLogRecord(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	recorder := NewRecorder(zap.NewNop(), NewLogSink(zap.New(core)))
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	recorder.now = func() time.Time { return fixed }

	if err := recorder.Record(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("feedback recorded").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["rating"] != int64(4) || ctx["run_id"] != "run-1" || ctx["score"] != int64(72) {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if ctx["timestamp"] != fixed {
		t.Fatalf("expected stamped timestamp, got %v", ctx["timestamp"])
	}
}

func TestRecorderTriesEverySink(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	failing := &failingSink{}
	recorder := NewRecorder(zap.New(core), failing, NewLogSink(zap.New(core)))

	err := recorder.Record(context.Background(), sampleEvent())
	if err == nil {
		t.Fatal("expected sink error")
	}

	if observed.FilterMessage("feedback recorded").Len() != 1 {
		t.Fatalf("expected the log sink to run after a failing sink")
	}
	if observed.FilterMessage("writing feedback failed").Len() != 1 {
		t.Fatalf("expected a warning for the failing sink")
	}

	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteError, got %T", err)
	}
	if len(partial.Written) != 1 || partial.Written[0] != "log" {
		t.Fatalf("unexpected written sinks: %v", partial.Written)
	}
}

func TestRecorderAllSinksFailing(t *testing.T) {
	recorder := NewRecorder(zap.NewNop(), &failingSink{}, &failingSink{})

	err := recorder.Record(context.Background(), sampleEvent())
	if err == nil {
		t.Fatal("expected sink error")
	}

	var partial *PartialWriteError
	if errors.As(err, &partial) {
		t.Fatal("nothing was stored, error must not be partial")
	}
}

func TestFileSinkAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "feedback.jsonl")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recorder := NewRecorder(zap.NewNop(), sink)
	for i := 0; i < 2; i++ {
		if err := recorder.Record(context.Background(), sampleEvent()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if event.RunID != "run-1" || event.Timestamp.IsZero() {
			t.Fatalf("unexpected event: %+v", event)
		}
		lines++
	}

	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestNewFileSinkRequiresPath(t *testing.T) {
	if _, err := NewFileSink("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSQLiteSinkInsertsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.db")

	sink, err := NewSQLiteSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recorder := NewRecorder(zap.NewNop(), sink)
	if err := recorder.Record(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := recorder.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var rating, score int
	var mode string
	if err := db.QueryRow("SELECT rating, score, interview_mode FROM feedback_events WHERE run_id = ?", "run-1").Scan(&rating, &score, &mode); err != nil {
		t.Fatalf("query: %v", err)
	}

	if rating != 4 || score != 72 || mode != "pressure" {
		t.Fatalf("unexpected row: rating=%d score=%d mode=%s", rating, score, mode)
	}
}
