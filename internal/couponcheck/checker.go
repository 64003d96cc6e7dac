package couponcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/urlhandler"

	"github.com/rs/zerolog"
)

// Checker validates coupons against the course platform's pricing API and
// memoizes every definitive verdict. Uncertainty is resolved as not-free: a
// wrongly dropped good coupon is cheaper than an expired coupon delivered to
// users.
type Checker struct {
	cfg    config.CouponCheckConfig
	client *httpclient.Client
	cache  *verdictCache
	logger zerolog.Logger
}

// NewChecker creates a coupon checker backed by the given HTTP client.
func NewChecker(cfg config.CouponCheckConfig, client *httpclient.Client, logger zerolog.Logger) *Checker {
	return &Checker{
		cfg:    cfg,
		client: client,
		cache:  newVerdictCache(),
		logger: logger.With().Str("module", "CouponChecker").Logger(),
	}
}

// priceResponse mirrors the pricing API fields the checker consumes. Price
// is kept raw because the API serves it either as a display string or as a
// structured object depending on the course.
type priceResponse struct {
	Price    json.RawMessage `json:"price"`
	Discount struct {
		DiscountPercent float64 `json:"discount_percent"`
		Price           struct {
			Amount *float64 `json:"amount"`
		} `json:"price"`
	} `json:"discount"`
}

// IsFree reports whether the coupon on the normalized URL reduces the course
// price to zero. Any request failure, timeout or unrecognizable response is
// treated as not free and left uncached so a later attempt can re-validate.
func (c *Checker) IsFree(ctx context.Context, nurl urlhandler.NormalizedURL) bool {
	key := nurl.String()
	if verdict, ok := c.cache.Get(key); ok {
		c.logger.Debug().Str("url", key).Bool("is_free", verdict).Msg("Verdict cache hit")
		return verdict
	}

	verdict, definitive := c.queryPricingAPI(ctx, nurl)
	if definitive {
		c.cache.Set(key, verdict)
	}
	return verdict
}

// CacheSize returns the number of memoized verdicts.
func (c *Checker) CacheSize() int {
	return c.cache.Len()
}

// queryPricingAPI performs one pricing lookup. The second return value is
// false when the outcome is indeterminate and must not be cached.
func (c *Checker) queryPricingAPI(ctx context.Context, nurl urlhandler.NormalizedURL) (isFree bool, definitive bool) {
	apiURL := fmt.Sprintf(
		"%s/api-2.0/courses/%s/?fields[course]=is_paid,price,discounted_price,discount,has_discount&couponCode=%s",
		c.cfg.BaseURL, nurl.Slug(), url.QueryEscape(nurl.CouponValue),
	)

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSecs)*time.Second)
	defer cancel()

	resp, err := c.client.Get(reqCtx, apiURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		c.logger.Debug().Err(err).Str("slug", nurl.Slug()).Msg("Pricing API request failed, treating as not free")
		return false, false
	}
	if !resp.IsSuccess() {
		c.logger.Debug().Int("status", resp.StatusCode).Str("slug", nurl.Slug()).Msg("Pricing API returned non-2xx, treating as not free")
		return false, false
	}

	var price priceResponse
	if err := json.Unmarshal(resp.Body, &price); err != nil {
		c.logger.Debug().Err(err).Str("slug", nurl.Slug()).Msg("Pricing API response malformed, treating as not free")
		return false, false
	}

	priceString, hasPriceString := decodePriceString(price.Price)
	if !hasPriceString && price.Price == nil && price.Discount.Price.Amount == nil && price.Discount.DiscountPercent == 0 {
		// Nothing recognizable in the response; indeterminate.
		c.logger.Debug().Str("slug", nurl.Slug()).Msg("Pricing API response lacks price fields, treating as not free")
		return false, false
	}

	// Free if ANY criterion holds: full percentage discount, a zero
	// discounted amount, or a display price of "Free".
	switch {
	case price.Discount.DiscountPercent == 100:
		return true, true
	case price.Discount.Price.Amount != nil && *price.Discount.Price.Amount == 0:
		return true, true
	case hasPriceString && strings.HasPrefix(priceString, "Free"):
		return true, true
	}

	c.logger.Debug().
		Str("slug", nurl.Slug()).
		Float64("discount_percent", price.Discount.DiscountPercent).
		Msg("Coupon is not free")
	return false, true
}

// decodePriceString extracts the display price when the API serves it as a
// plain string.
func decodePriceString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
