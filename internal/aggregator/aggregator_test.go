package aggregator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/couponwatch/couponwatch/internal/history"
	"github.com/couponwatch/couponwatch/internal/models"
	"github.com/couponwatch/couponwatch/internal/sources"
	"github.com/couponwatch/couponwatch/internal/urlhandler"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name       models.CourseSource
	candidates []models.CourseCandidate
	err        error
}

func (s *stubAdapter) Name() models.CourseSource { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context) ([]models.CourseCandidate, error) {
	return s.candidates, s.err
}

// stubChecker confirms every course except the slugs listed in notFree.
type stubChecker struct {
	notFree map[string]bool
	calls   int
}

func (c *stubChecker) IsFree(ctx context.Context, nurl urlhandler.NormalizedURL) bool {
	c.calls++
	return !c.notFree[nurl.Slug()]
}

func candidate(source models.CourseSource, slug, code string) models.CourseCandidate {
	return models.CourseCandidate{
		Title:  "Course " + slug,
		RawURL: fmt.Sprintf("https://www.udemy.com/course/%s/?couponCode=%s", slug, code),
		Source: source,
	}
}

func newTestAggregator(adapters []sources.Adapter, checker FreeChecker) (*Aggregator, *history.Store) {
	store := history.NewStore(2000, zerolog.Nop())
	return NewAggregator(adapters, checker, store, zerolog.Nop()), store
}

func TestAggregator_FullCycleThenQuietSecondRun(t *testing.T) {
	// Four sources contribute 3+9+2+3 candidates. Among them: three
	// duplicates of courses seen on a higher-priority source, two URLs that
	// fail normalization, and four coupons the checker rejects. That leaves
	// eight confirmed courses on the first run and none on the second.
	adapters := []sources.Adapter{
		&stubAdapter{name: models.SourceRealDiscount, candidates: []models.CourseCandidate{
			candidate(models.SourceRealDiscount, "go-basics", "AAA"),
			candidate(models.SourceRealDiscount, "python-pro", "BBB"),
			candidate(models.SourceRealDiscount, "expired-one", "CCC"),
		}},
		&stubAdapter{name: models.SourceDiscudemy, candidates: []models.CourseCandidate{
			candidate(models.SourceDiscudemy, "go-basics", "AAA"), // dup of priority source
			candidate(models.SourceDiscudemy, "rust-intro", "DDD"),
			candidate(models.SourceDiscudemy, "docker-deep", "EEE"),
			candidate(models.SourceDiscudemy, "expired-two", "FFF"),
			candidate(models.SourceDiscudemy, "k8s-ops", "GGG"),
			candidate(models.SourceDiscudemy, "sql-mastery", "HHH"),
			{Title: "Broken", RawURL: "https://example.com/course/nope/?couponCode=X", Source: models.SourceDiscudemy},
			{Title: "No coupon", RawURL: "https://www.udemy.com/course/nope/", Source: models.SourceDiscudemy},
			candidate(models.SourceDiscudemy, "expired-three", "III"),
		}},
		&stubAdapter{name: models.SourceCourseVania, candidates: []models.CourseCandidate{
			candidate(models.SourceCourseVania, "python-pro", "BBB"), // dup
			candidate(models.SourceCourseVania, "linux-cli", "JJJ"),
		}},
		&stubAdapter{name: models.SourceUdemyFreebies, candidates: []models.CourseCandidate{
			candidate(models.SourceUdemyFreebies, "rust-intro", "DDD"), // dup
			candidate(models.SourceUdemyFreebies, "git-flow", "KKK"),
			candidate(models.SourceUdemyFreebies, "expired-four", "LLL"),
		}},
	}
	checker := &stubChecker{notFree: map[string]bool{
		"expired-one":   true,
		"expired-two":   true,
		"expired-three": true,
		"expired-four":  true,
	}}
	agg, store := newTestAggregator(adapters, checker)

	result, err := agg.Run(context.Background(), "run-1")
	require.NoError(t, err)

	require.Len(t, result.Confirmed, 8)
	assert.Equal(t, 17, result.Summary.CandidatesFound)
	assert.Equal(t, 12, result.Summary.UniqueCourses)
	assert.Equal(t, 8, result.Summary.ValidatedFree)
	assert.Equal(t, 8, result.Summary.NewConfirmed)
	assert.Equal(t, 0, result.Summary.SkippedHistory)
	assert.Equal(t, 8, result.Summary.HistorySize)
	assert.Equal(t, models.RunStatusCompleted, result.Summary.Status)

	// Confirmed courses come out in source priority order with the
	// first-seen title and source attribution.
	assert.Equal(t, "go-basics", slugOf(t, result.Confirmed[0].URL))
	assert.Equal(t, models.SourceRealDiscount, result.Confirmed[0].Source)
	assert.Equal(t, "git-flow", slugOf(t, result.Confirmed[7].URL))
	assert.Equal(t, models.SourceUdemyFreebies, result.Confirmed[7].Source)
	assert.Equal(t, 8, store.Len())

	// The same inputs on a second run must yield nothing new.
	second, err := agg.Run(context.Background(), "run-2")
	require.NoError(t, err)
	assert.Empty(t, second.Confirmed)
	assert.Equal(t, 8, second.Summary.SkippedHistory)
	assert.Equal(t, 0, second.Summary.NewConfirmed)
	assert.Equal(t, 8, second.Summary.HistorySize)
}

func TestAggregator_DedupKeepsFirstOccurrence(t *testing.T) {
	adapters := []sources.Adapter{
		&stubAdapter{name: models.SourceRealDiscount, candidates: []models.CourseCandidate{
			{Title: "Title A", RawURL: "https://www.udemy.com/course/same/?couponCode=X", Source: models.SourceRealDiscount},
			candidate(models.SourceRealDiscount, "other", "Y"),
			{Title: "Title B", RawURL: "https://udemy.com/course/same?couponCode=X", Source: models.SourceRealDiscount},
		}},
	}
	checker := &stubChecker{}
	agg, _ := newTestAggregator(adapters, checker)

	result, err := agg.Run(context.Background(), "run-dedup")
	require.NoError(t, err)

	require.Len(t, result.Confirmed, 2)
	assert.Equal(t, "Title A", result.Confirmed[0].Title)
	// The checker is only consulted once per canonical URL.
	assert.Equal(t, 2, checker.calls)
}

func TestAggregator_SourceFailureKeepsPartialResults(t *testing.T) {
	adapters := []sources.Adapter{
		&stubAdapter{
			name:       models.SourceRealDiscount,
			candidates: []models.CourseCandidate{candidate(models.SourceRealDiscount, "partial", "X")},
			err:        errors.New("connection reset"),
		},
		&stubAdapter{name: models.SourceDiscudemy, candidates: []models.CourseCandidate{
			candidate(models.SourceDiscudemy, "healthy", "Y"),
		}},
	}
	agg, _ := newTestAggregator(adapters, &stubChecker{})

	result, err := agg.Run(context.Background(), "run-partial")
	require.NoError(t, err)

	assert.Len(t, result.Confirmed, 2)
	assert.Equal(t, models.RunStatusCompleted, result.Summary.Status)
	require.Len(t, result.Summary.Notes, 1)
	assert.Contains(t, result.Summary.Notes[0], "connection reset")
}

func TestAggregator_NotFreeCoursesAreExcluded(t *testing.T) {
	adapters := []sources.Adapter{
		&stubAdapter{name: models.SourceRealDiscount, candidates: []models.CourseCandidate{
			candidate(models.SourceRealDiscount, "free-one", "X"),
			candidate(models.SourceRealDiscount, "paid-one", "Y"),
		}},
	}
	agg, store := newTestAggregator(adapters, &stubChecker{notFree: map[string]bool{"paid-one": true}})

	result, err := agg.Run(context.Background(), "run-paid")
	require.NoError(t, err)

	require.Len(t, result.Confirmed, 1)
	assert.Equal(t, "free-one", slugOf(t, result.Confirmed[0].URL))
	// Rejected coupons are not recorded in history, so a later run may
	// retry them.
	assert.Equal(t, 1, store.Len())
}

func TestAggregator_EmptyRunIsValid(t *testing.T) {
	agg, store := newTestAggregator([]sources.Adapter{
		&stubAdapter{name: models.SourceRealDiscount},
	}, &stubChecker{})

	result, err := agg.Run(context.Background(), "run-empty")
	require.NoError(t, err)
	assert.Empty(t, result.Confirmed)
	assert.Equal(t, models.RunStatusCompleted, result.Summary.Status)
	assert.Equal(t, 0, store.Len())
}

func slugOf(t *testing.T, canonical string) string {
	t.Helper()
	nurl, err := urlhandler.NormalizeCourseURL(canonical)
	require.NoError(t, err)
	return nurl.Slug()
}
