package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/couponwatch/couponwatch/internal/common"
	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/rs/zerolog"
)

// sponsoredStore marks promoted entries in the listing API; they are paid
// placements, not coupon listings, and are always skipped.
const sponsoredStore = "Sponsored"

// RealDiscountAdapter fetches course listings from the Real.discount JSON
// API. The API returns course data directly, so no HTML parsing is needed.
type RealDiscountAdapter struct {
	cfg    config.RealDiscountConfig
	client *httpclient.Client
	logger zerolog.Logger
}

// NewRealDiscountAdapter creates the JSON API adapter.
func NewRealDiscountAdapter(cfg config.RealDiscountConfig, client *httpclient.Client, logger zerolog.Logger) *RealDiscountAdapter {
	return &RealDiscountAdapter{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("module", "RealDiscountAdapter").Logger(),
	}
}

// Name implements Adapter.
func (a *RealDiscountAdapter) Name() models.CourseSource {
	return models.SourceRealDiscount
}

// listingResponse mirrors the slice of the API payload the adapter consumes.
type listingResponse struct {
	Items []struct {
		Name  string `json:"name"`
		URL   string `json:"url"`
		Store string `json:"store"`
	} `json:"items"`
}

// Fetch retrieves the configured number of listing pages and returns every
// non-sponsored entry as a candidate.
func (a *RealDiscountAdapter) Fetch(ctx context.Context) ([]models.CourseCandidate, error) {
	var candidates []models.CourseCandidate

	headers := map[string]string{
		"Accept":     "application/json",
		"Connection": "Keep-Alive",
	}
	if a.cfg.Referer != "" {
		headers["Referer"] = a.cfg.Referer
	}

	for page := 1; page <= a.cfg.Pages; page++ {
		pageURL := fmt.Sprintf(
			"%s/api/courses?page=%d&limit=%d&sortBy=sale_start&store=Udemy&freeOnly=true",
			a.cfg.BaseURL, page, a.cfg.PageSize,
		)

		resp, err := a.client.Get(ctx, pageURL, headers)
		if err != nil {
			return candidates, common.WrapErrorf(err, "listing page %d fetch failed", page)
		}
		if !resp.IsSuccess() {
			return candidates, common.NewError("listing page %d returned HTTP %d", page, resp.StatusCode)
		}

		var listing listingResponse
		if err := json.Unmarshal(resp.Body, &listing); err != nil {
			return candidates, common.WrapErrorf(err, "listing page %d has malformed JSON", page)
		}

		for _, item := range listing.Items {
			if item.Store == sponsoredStore {
				continue
			}
			if _, err := url.Parse(item.URL); err != nil || item.URL == "" {
				continue
			}
			candidates = append(candidates, models.CourseCandidate{
				Title:  item.Name,
				RawURL: item.URL,
				Source: models.SourceRealDiscount,
			})
		}
	}

	a.logger.Info().Int("candidates", len(candidates)).Msg("Real.discount fetch completed")
	return candidates, nil
}
