package models

import "time"

// RunStatus describes the outcome of a pipeline run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// RunSummary aggregates statistics for a single pipeline run. It is built by
// the aggregator and consumed by the scheduler (run history) and the notifier
// (summary message).
type RunSummary struct {
	RunID           string
	StartTime       time.Time
	Duration        time.Duration
	Status          RunStatus
	CandidatesFound int
	UniqueCourses   int
	ValidatedFree   int
	NewConfirmed    int
	SkippedHistory  int
	PerSource       map[CourseSource]int
	HistorySize     int
	Notes           []string
}

// NewRunSummary creates a RunSummary for the given run identifier with the
// start time set to now.
func NewRunSummary(runID string) RunSummary {
	return RunSummary{
		RunID:     runID,
		StartTime: time.Now(),
		Status:    RunStatusCompleted,
		PerSource: make(map[CourseSource]int),
	}
}

// AddNote records a non-fatal observation (e.g. a source fetch failure).
func (s *RunSummary) AddNote(note string) {
	s.Notes = append(s.Notes, note)
}
