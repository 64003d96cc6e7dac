package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couponwatch/couponwatch/internal/common"
	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// DiscudemyAdapter scrapes Discudemy with a two-step flow: listing pages
// enumerate course stubs, and each stub's "/go/<slug>" detail page resolves
// to the actual course URL. Detail fetches are paced to keep the request rate
// gentle, with a longer pause between listing pages.
type DiscudemyAdapter struct {
	cfg    config.DiscudemyConfig
	client *httpclient.Client
	logger zerolog.Logger
}

// NewDiscudemyAdapter creates the two-step list-to-detail adapter.
func NewDiscudemyAdapter(cfg config.DiscudemyConfig, client *httpclient.Client, logger zerolog.Logger) *DiscudemyAdapter {
	return &DiscudemyAdapter{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("module", "DiscudemyAdapter").Logger(),
	}
}

// Name implements Adapter.
func (a *DiscudemyAdapter) Name() models.CourseSource {
	return models.SourceDiscudemy
}

// Fetch walks the configured listing pages and resolves every stub found on
// them. A failing listing page is skipped; a failing detail page only drops
// that one stub.
func (a *DiscudemyAdapter) Fetch(ctx context.Context) ([]models.CourseCandidate, error) {
	var candidates []models.CourseCandidate

	headers := map[string]string{
		"Accept":  "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Referer": a.cfg.BaseURL,
	}

	for page := 1; page <= a.cfg.ListingPages; page++ {
		if page > 1 {
			if err := pace(ctx, time.Duration(a.cfg.PageDelayMs)*time.Millisecond); err != nil {
				return candidates, err
			}
		}

		stubs, err := a.fetchListingPage(ctx, page, headers)
		if err != nil {
			a.logger.Warn().Err(err).Int("page", page).Msg("Skipping listing page")
			continue
		}

		for _, stub := range stubs {
			candidate, err := a.resolveStub(ctx, stub, headers)
			if err != nil {
				if ctx.Err() != nil {
					return candidates, ctx.Err()
				}
				a.logger.Debug().Err(err).Str("slug", stub.slug).Msg("Skipping stub")
				continue
			}
			candidates = append(candidates, candidate)

			if err := pace(ctx, time.Duration(a.cfg.DetailDelayMs)*time.Millisecond); err != nil {
				return candidates, err
			}
		}
	}

	a.logger.Info().Int("candidates", len(candidates)).Msg("Discudemy fetch completed")
	return candidates, nil
}

// courseStub is one entry on a listing page before detail resolution.
type courseStub struct {
	title string
	slug  string
}

// fetchListingPage returns the course stubs advertised on one listing page.
func (a *DiscudemyAdapter) fetchListingPage(ctx context.Context, page int, headers map[string]string) ([]courseStub, error) {
	pageURL := fmt.Sprintf("%s/all/%d", a.cfg.BaseURL, page)
	resp, err := a.client.Get(ctx, pageURL, headers)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, common.NewError("listing page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse listing HTML")
	}

	var stubs []courseStub
	doc.Find("a.card-header").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		parts := strings.Split(strings.TrimRight(href, "/"), "/")
		slug := parts[len(parts)-1]
		if slug == "" {
			return
		}
		stubs = append(stubs, courseStub{
			title: strings.TrimSpace(sel.Text()),
			slug:  slug,
		})
	})
	return stubs, nil
}

// resolveStub follows the stub's detail page to the actual course URL.
// Stubs without a title fall back to a placeholder derived from the slug.
func (a *DiscudemyAdapter) resolveStub(ctx context.Context, stub courseStub, headers map[string]string) (models.CourseCandidate, error) {
	detailURL := fmt.Sprintf("%s/go/%s", a.cfg.BaseURL, stub.slug)
	resp, err := a.client.Get(ctx, detailURL, headers)
	if err != nil {
		return models.CourseCandidate{}, err
	}
	if !resp.IsSuccess() {
		return models.CourseCandidate{}, common.NewError("detail page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return models.CourseCandidate{}, common.WrapError(err, "failed to parse detail HTML")
	}

	link, ok := doc.Find("div.ui.segment a").First().Attr("href")
	if !ok || link == "" {
		return models.CourseCandidate{}, common.NewError("detail page has no course link")
	}

	title := stub.title
	if title == "" {
		title = strings.ReplaceAll(stub.slug, "-", " ")
	}

	return models.CourseCandidate{
		Title:  title,
		RawURL: link,
		Source: models.SourceDiscudemy,
	}, nil
}
