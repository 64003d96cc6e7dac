package sources

import (
	"bytes"
	"context"
	"strings"

	"github.com/couponwatch/couponwatch/internal/common"
	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	// maxTitleLength bounds anchor-text titles; beyond it they are truncated.
	maxTitleLength = 100
	// placeholderTitle is used when an anchor carries no usable text.
	placeholderTitle = "Udemy Course"
)

// UdemyFreebiesAdapter scans a single listing page for all course-platform
// links. It is the simplest of the adapters: one fetch, one parse.
type UdemyFreebiesAdapter struct {
	cfg    config.UdemyFreebiesConfig
	client *httpclient.Client
	logger zerolog.Logger
}

// NewUdemyFreebiesAdapter creates the single-page HTML adapter.
func NewUdemyFreebiesAdapter(cfg config.UdemyFreebiesConfig, client *httpclient.Client, logger zerolog.Logger) *UdemyFreebiesAdapter {
	return &UdemyFreebiesAdapter{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("module", "UdemyFreebiesAdapter").Logger(),
	}
}

// Name implements Adapter.
func (a *UdemyFreebiesAdapter) Name() models.CourseSource {
	return models.SourceUdemyFreebies
}

// Fetch scans the listing page for platform anchors, up to the configured cap.
func (a *UdemyFreebiesAdapter) Fetch(ctx context.Context) ([]models.CourseCandidate, error) {
	resp, err := a.client.Get(ctx, a.cfg.BaseURL+"/free-udemy-courses", nil)
	if err != nil {
		return nil, common.WrapError(err, "listing page fetch failed")
	}
	if !resp.IsSuccess() {
		return nil, common.NewError("listing page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse listing HTML")
	}

	var candidates []models.CourseCandidate
	doc.Find(`a[href*="udemy.com"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(candidates) >= a.cfg.MaxLinks {
			return false
		}

		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}

		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title = placeholderTitle
		}
		if len(title) > maxTitleLength {
			title = title[:maxTitleLength]
		}

		candidates = append(candidates, models.CourseCandidate{
			Title:  title,
			RawURL: href,
			Source: models.SourceUdemyFreebies,
		})
		return true
	})

	a.logger.Info().Int("candidates", len(candidates)).Msg("UdemyFreebies fetch completed")
	return candidates, nil
}
