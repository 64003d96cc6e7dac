package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couponwatch/couponwatch/internal/history"
	"github.com/couponwatch/couponwatch/internal/models"
	"github.com/couponwatch/couponwatch/internal/sources"
	"github.com/couponwatch/couponwatch/internal/urlhandler"

	"github.com/rs/zerolog"
)

// FreeChecker decides whether a coupon still renders a course fully free.
type FreeChecker interface {
	IsFree(ctx context.Context, nurl urlhandler.NormalizedURL) bool
}

// RunResult is the outcome of one full pipeline run.
type RunResult struct {
	Confirmed []models.ConfirmedCourse
	Summary   models.RunSummary
}

// Aggregator drives one discovery cycle: fetch all sources concurrently,
// normalize and deduplicate the candidates, validate the survivors, filter
// against history and commit the newly confirmed URLs.
type Aggregator struct {
	adapters []sources.Adapter
	checker  FreeChecker
	history  *history.Store
	logger   zerolog.Logger
}

// NewAggregator creates an aggregator over the given adapters. The adapter
// slice order is the source priority order and decides which title survives
// when several origins discover the same course.
func NewAggregator(adapters []sources.Adapter, checker FreeChecker, store *history.Store, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		adapters: adapters,
		checker:  checker,
		history:  store,
		logger:   logger.With().Str("module", "Aggregator").Logger(),
	}
}

// Run executes one pipeline cycle. A source failure is downgraded to a note
// in the summary; the run only fails when the history commit fails. An empty
// confirmed slice is a valid outcome.
func (a *Aggregator) Run(ctx context.Context, runID string) (RunResult, error) {
	summary := models.NewRunSummary(runID)
	a.logger.Info().Str("run_id", runID).Int("sources", len(a.adapters)).Msg("Starting discovery run")

	candidates := a.fetchAll(ctx, &summary)
	summary.CandidatesFound = len(candidates)

	unique := a.dedupe(candidates)
	summary.UniqueCourses = len(unique)

	confirmed := a.validate(ctx, unique, &summary)
	summary.ValidatedFree = len(confirmed)

	fresh := a.filterHistory(confirmed, &summary)
	summary.NewConfirmed = len(fresh)

	if len(fresh) > 0 {
		urls := make([]string, 0, len(fresh))
		for _, course := range fresh {
			urls = append(urls, course.URL)
		}
		if err := a.history.Commit(urls); err != nil {
			summary.Status = models.RunStatusFailed
			summary.Duration = time.Since(summary.StartTime)
			summary.AddNote(fmt.Sprintf("history commit failed: %v", err))
			return RunResult{Summary: summary}, fmt.Errorf("failed to commit run history: %w", err)
		}
	}

	summary.HistorySize = a.history.Len()
	summary.Duration = time.Since(summary.StartTime)

	a.logger.Info().
		Str("run_id", runID).
		Int("candidates", summary.CandidatesFound).
		Int("unique", summary.UniqueCourses).
		Int("validated_free", summary.ValidatedFree).
		Int("new_confirmed", summary.NewConfirmed).
		Int("skipped_history", summary.SkippedHistory).
		Dur("duration", summary.Duration).
		Msg("Discovery run finished")

	return RunResult{Confirmed: fresh, Summary: summary}, nil
}

// fetchAll queries every adapter concurrently and merges the results in
// adapter priority order. A failing adapter contributes whatever partial
// results it collected and leaves a note on the summary.
func (a *Aggregator) fetchAll(ctx context.Context, summary *models.RunSummary) []models.CourseCandidate {
	type fetchOutcome struct {
		candidates []models.CourseCandidate
		err        error
	}

	outcomes := make([]fetchOutcome, len(a.adapters))
	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(idx int, ad sources.Adapter) {
			defer wg.Done()
			candidates, err := ad.Fetch(ctx)
			outcomes[idx] = fetchOutcome{candidates: candidates, err: err}
		}(i, adapter)
	}
	wg.Wait()

	var merged []models.CourseCandidate
	for i, adapter := range a.adapters {
		outcome := outcomes[i]
		summary.PerSource[adapter.Name()] = len(outcome.candidates)
		if outcome.err != nil {
			a.logger.Warn().Err(outcome.err).Str("source", string(adapter.Name())).Msg("Source fetch failed")
			summary.AddNote(fmt.Sprintf("%s: %v", adapter.Name(), outcome.err))
		}
		merged = append(merged, outcome.candidates...)
	}
	return merged
}

// dedupe normalizes every candidate and keeps the first occurrence of each
// canonical URL. Candidates that fail normalization are dropped silently
// apart from a debug log line.
func (a *Aggregator) dedupe(candidates []models.CourseCandidate) []normalizedCandidate {
	seen := make(map[string]struct{}, len(candidates))
	var unique []normalizedCandidate
	for _, candidate := range candidates {
		nurl, err := urlhandler.NormalizeCourseURL(candidate.RawURL)
		if err != nil {
			a.logger.Debug().
				Str("source", string(candidate.Source)).
				Str("url", candidate.RawURL).
				Err(err).
				Msg("Dropping candidate with unusable URL")
			continue
		}
		canonical := nurl.String()
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		unique = append(unique, normalizedCandidate{
			title:     candidate.Title,
			source:    candidate.Source,
			canonical: canonical,
			nurl:      nurl,
		})
	}
	return unique
}

// validate keeps only the candidates the checker confirms as fully free.
func (a *Aggregator) validate(ctx context.Context, unique []normalizedCandidate, summary *models.RunSummary) []models.ConfirmedCourse {
	var confirmed []models.ConfirmedCourse
	for _, candidate := range unique {
		if ctx.Err() != nil {
			summary.AddNote("validation interrupted: " + ctx.Err().Error())
			break
		}
		if !a.checker.IsFree(ctx, candidate.nurl) {
			continue
		}
		confirmed = append(confirmed, models.ConfirmedCourse{
			Title:  candidate.title,
			URL:    candidate.canonical,
			Source: candidate.source,
		})
	}
	return confirmed
}

// filterHistory drops courses whose canonical URL was already emitted in a
// previous run.
func (a *Aggregator) filterHistory(confirmed []models.ConfirmedCourse, summary *models.RunSummary) []models.ConfirmedCourse {
	var fresh []models.ConfirmedCourse
	for _, course := range confirmed {
		if a.history.Contains(course.URL) {
			summary.SkippedHistory++
			continue
		}
		fresh = append(fresh, course)
	}
	return fresh
}

type normalizedCandidate struct {
	title     string
	source    models.CourseSource
	canonical string
	nurl      urlhandler.NormalizedURL
}
