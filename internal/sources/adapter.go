package sources

import (
	"context"
	"time"

	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/rs/zerolog"
)

// Adapter is the contract every origin implements. Fetch returns the raw
// candidates discovered on the origin; a partial slice together with a
// non-nil error means the origin failed midway and the caller should keep
// whatever was collected. Individual malformed items are skipped inside the
// adapter and never surface as errors.
type Adapter interface {
	Name() models.CourseSource
	Fetch(ctx context.Context) ([]models.CourseCandidate, error)
}

// BuildAdapters constructs the enabled adapters in their fixed priority
// order. The order decides which source wins the title when the same course
// is discovered on several origins.
func BuildAdapters(cfg config.SourcesConfig, client *httpclient.Client, logger zerolog.Logger) []Adapter {
	var adapters []Adapter
	if cfg.RealDiscount.Enabled {
		adapters = append(adapters, NewRealDiscountAdapter(cfg.RealDiscount, client, logger))
	}
	if cfg.Discudemy.Enabled {
		adapters = append(adapters, NewDiscudemyAdapter(cfg.Discudemy, client, logger))
	}
	if cfg.CourseVania.Enabled {
		adapters = append(adapters, NewCourseVaniaAdapter(cfg.CourseVania, client, logger))
	}
	if cfg.UdemyFreebies.Enabled {
		adapters = append(adapters, NewUdemyFreebiesAdapter(cfg.UdemyFreebies, client, logger))
	}
	return adapters
}

// pace sleeps for the given delay while staying responsive to context
// cancellation. Adapters use it to enforce the minimum interval between
// consecutive requests to the same origin.
func pace(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
