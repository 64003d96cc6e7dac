package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/couponwatch/couponwatch/internal/common"
	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// nonceRegex extracts the per-session AJAX security token embedded in the
// courses page markup.
var nonceRegex = regexp.MustCompile(`load_content\\?":\\?"(.*?)\\?"`)

// CourseVaniaAdapter scrapes CourseVania, a WordPress site that loads its
// course grid over admin-ajax. The flow is: fetch the courses page to
// extract the nonce, request the grid with that nonce, then resolve each
// grid entry's detail page to the platform course link.
type CourseVaniaAdapter struct {
	cfg    config.CourseVaniaConfig
	client *httpclient.Client
	logger zerolog.Logger
}

// NewCourseVaniaAdapter creates the AJAX token adapter.
func NewCourseVaniaAdapter(cfg config.CourseVaniaConfig, client *httpclient.Client, logger zerolog.Logger) *CourseVaniaAdapter {
	return &CourseVaniaAdapter{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("module", "CourseVaniaAdapter").Logger(),
	}
}

// Name implements Adapter.
func (a *CourseVaniaAdapter) Name() models.CourseSource {
	return models.SourceCourseVania
}

// gridResponse is the admin-ajax payload; Content carries the rendered grid HTML.
type gridResponse struct {
	Content string `json:"content"`
}

// Fetch performs the token handshake and resolves the course grid.
func (a *CourseVaniaAdapter) Fetch(ctx context.Context) ([]models.CourseCandidate, error) {
	nonce, err := a.fetchNonce(ctx)
	if err != nil {
		return nil, err
	}

	gridHTML, err := a.fetchGrid(ctx, nonce)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(gridHTML))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse grid HTML")
	}

	var candidates []models.CourseCandidate
	entries := doc.Find("div.stm_lms_courses__single--title")
	entries.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= a.cfg.MaxCourses {
			return false
		}
		if ctx.Err() != nil {
			return false
		}

		title := strings.TrimSpace(sel.Find("h5").First().Text())
		detailURL, ok := sel.Find("a").First().Attr("href")
		if title == "" || !ok || detailURL == "" {
			return true
		}

		candidate, err := a.resolveDetailPage(ctx, title, detailURL)
		if err != nil {
			a.logger.Debug().Err(err).Str("detail_url", detailURL).Msg("Skipping grid entry")
			return true
		}
		candidates = append(candidates, candidate)

		return pace(ctx, time.Duration(a.cfg.DetailDelayMs)*time.Millisecond) == nil
	})

	if ctx.Err() != nil {
		return candidates, ctx.Err()
	}

	a.logger.Info().Int("candidates", len(candidates)).Msg("CourseVania fetch completed")
	return candidates, nil
}

// fetchNonce extracts the AJAX security token from the courses page.
func (a *CourseVaniaAdapter) fetchNonce(ctx context.Context) (string, error) {
	resp, err := a.client.Get(ctx, a.cfg.BaseURL+"/courses/", nil)
	if err != nil {
		return "", common.WrapError(err, "courses page fetch failed")
	}
	if !resp.IsSuccess() {
		return "", common.NewError("courses page returned HTTP %d", resp.StatusCode)
	}

	match := nonceRegex.FindSubmatch(resp.Body)
	if match == nil {
		return "", common.NewError("security token not found in courses page")
	}
	return string(match[1]), nil
}

// fetchGrid requests the rendered course grid using the extracted token.
func (a *CourseVaniaAdapter) fetchGrid(ctx context.Context, nonce string) (string, error) {
	gridURL := fmt.Sprintf(
		"%s/wp-admin/admin-ajax.php?&template=courses/grid&args={%%22posts_per_page%%22:%%22100%%22}&action=stm_lms_load_content&sort=date_high&nonce=%s",
		a.cfg.BaseURL, nonce,
	)

	resp, err := a.client.Get(ctx, gridURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return "", common.WrapError(err, "grid request failed")
	}
	if !resp.IsSuccess() {
		return "", common.NewError("grid request returned HTTP %d", resp.StatusCode)
	}

	var grid gridResponse
	if err := json.Unmarshal(resp.Body, &grid); err != nil {
		return "", common.WrapError(err, "grid response has malformed JSON")
	}
	return grid.Content, nil
}

// resolveDetailPage scans a course detail page for the first platform link.
func (a *CourseVaniaAdapter) resolveDetailPage(ctx context.Context, title, detailURL string) (models.CourseCandidate, error) {
	resp, err := a.client.Get(ctx, detailURL, nil)
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

	var courseURL string
	doc.Find(`a[href*="udemy.com"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if href, ok := sel.Attr("href"); ok && href != "" {
			courseURL = href
			return false
		}
		return true
	})
	if courseURL == "" {
		return models.CourseCandidate{}, common.NewError("detail page has no course link")
	}

	return models.CourseCandidate{
		Title:  title,
		RawURL: courseURL,
		Source: models.SourceCourseVania,
	}, nil
}
