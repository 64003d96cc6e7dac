package notifier

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// Discord formatting constants
const (
	DiscordUsername   = "CouponWatch"
	SuccessEmbedColor = 0x5CB85C // Bootstrap success green
	ErrorEmbedColor   = 0xD9534F // Bootstrap danger red
	InfoEmbedColor    = 0x5BC0DE // Bootstrap info blue
)

// NotificationHelper formats and delivers course announcements and run
// summaries over the configured Discord webhook.
type NotificationHelper struct {
	cfg      config.NotificationConfig
	notifier *DiscordNotifier
	logger   zerolog.Logger
}

// NewNotificationHelper creates a NotificationHelper.
func NewNotificationHelper(cfg config.NotificationConfig, notifier *DiscordNotifier, logger zerolog.Logger) *NotificationHelper {
	return &NotificationHelper{
		cfg:      cfg,
		notifier: notifier,
		logger:   logger.With().Str("module", "NotificationHelper").Logger(),
	}
}

// DeliverCourses sends one message per confirmed course, pacing consecutive
// messages so Discord's preview fetcher is not rate limited. Delivery stops
// early when the context is cancelled; a single failed message is logged and
// skipped so the remaining courses still go out.
func (nh *NotificationHelper) DeliverCourses(ctx context.Context, courses []models.ConfirmedCourse) {
	delay := time.Duration(nh.cfg.MessageDelayMs) * time.Millisecond
	for i, course := range courses {
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				nh.logger.Warn().Int("delivered", i).Int("total", len(courses)).Msg("Course delivery interrupted")
				return
			}
		}

		payload := models.DiscordMessagePayload{
			Username: DiscordUsername,
			Content:  fmt.Sprintf("**%s**\n%s", course.Title, course.URL),
		}
		if err := nh.notifier.SendNotification(ctx, nh.cfg.DiscordWebhookURL, payload); err != nil {
			nh.logger.Error().Err(err).Str("url", course.URL).Msg("Failed to deliver course announcement")
		}
	}
}

// SendRunSummary posts an embed summarizing one completed run. Empty runs are
// skipped unless NotifyOnEmptyRun is set.
func (nh *NotificationHelper) SendRunSummary(ctx context.Context, summary models.RunSummary) {
	if summary.NewConfirmed == 0 && !nh.cfg.NotifyOnEmptyRun {
		nh.logger.Debug().Str("run_id", summary.RunID).Msg("Empty run, skipping summary notification")
		return
	}

	color := SuccessEmbedColor
	if summary.Status == models.RunStatusFailed {
		color = ErrorEmbedColor
	} else if summary.NewConfirmed == 0 {
		color = InfoEmbedColor
	}

	embed := models.DiscordEmbed{
		Title:     fmt.Sprintf("Discovery Run %s - %s", summary.RunID, summary.Status),
		Color:     color,
		Timestamp: summary.StartTime.UTC().Format(time.RFC3339),
		Fields: []models.DiscordEmbedField{
			{Name: "Candidates", Value: fmt.Sprintf("%d", summary.CandidatesFound), Inline: true},
			{Name: "Unique", Value: fmt.Sprintf("%d", summary.UniqueCourses), Inline: true},
			{Name: "Validated Free", Value: fmt.Sprintf("%d", summary.ValidatedFree), Inline: true},
			{Name: "New", Value: fmt.Sprintf("%d", summary.NewConfirmed), Inline: true},
			{Name: "Skipped (History)", Value: fmt.Sprintf("%d", summary.SkippedHistory), Inline: true},
			{Name: "History Size", Value: fmt.Sprintf("%d", summary.HistorySize), Inline: true},
			{Name: "Duration", Value: summary.Duration.Round(time.Millisecond).String(), Inline: true},
		},
		Footer: &models.DiscordEmbedFooter{Text: processFooter()},
	}
	if perSource := formatPerSource(summary.PerSource); perSource != "" {
		embed.Fields = append(embed.Fields, models.DiscordEmbedField{Name: "Per Source", Value: perSource})
	}
	if len(summary.Notes) > 0 {
		embed.Fields = append(embed.Fields, models.DiscordEmbedField{Name: "Notes", Value: strings.Join(summary.Notes, "\n")})
	}

	payload := models.DiscordMessagePayload{
		Username: DiscordUsername,
		Embeds:   []models.DiscordEmbed{embed},
	}
	if err := nh.notifier.SendNotification(ctx, nh.cfg.DiscordWebhookURL, payload); err != nil {
		nh.logger.Error().Err(err).Str("run_id", summary.RunID).Msg("Failed to send run summary")
	}
}

// formatPerSource renders per-source candidate counts in the fixed source
// priority order.
func formatPerSource(counts map[models.CourseSource]int) string {
	order := []models.CourseSource{
		models.SourceRealDiscount,
		models.SourceDiscudemy,
		models.SourceCourseVania,
		models.SourceUdemyFreebies,
	}
	var parts []string
	for _, source := range order {
		if count, ok := counts[source]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d", source, count))
		}
	}
	return strings.Join(parts, " | ")
}

// processFooter reports the current process memory footprint.
func processFooter() string {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return "couponwatch"
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil || memInfo == nil {
		return "couponwatch"
	}
	return fmt.Sprintf("couponwatch | RSS %.1f MB", float64(memInfo.RSS)/(1024*1024))
}
