package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// CourseHost is the canonical host every normalized course URL is rebuilt on.
const CourseHost = "www.udemy.com"

// couponParamNames lists the recognized coupon query parameter names in
// priority order. Matching is case-insensitive because some origins publish a
// lowercase variant.
var couponParamNames = []string{"couponcode", "coupon_code", "coupon"}

// Rejection reasons returned by NormalizeCourseURL. Callers treat any error as
// "drop the candidate", not as a failure.
var (
	ErrEmptyURL       = errors.New("URL is empty or only whitespace")
	ErrHostMismatch   = errors.New("URL host is not the course platform")
	ErrNotCoursePath  = errors.New("URL does not contain a course path")
	ErrNoCouponParam  = errors.New("URL carries no recognized coupon parameter")
	ErrEmptyCouponVal = errors.New("coupon parameter has an empty value")
)

// NormalizedURL is a course URL reduced to its canonical form: the course
// path plus exactly one coupon parameter. All tracking and referral
// parameters are discarded during normalization.
type NormalizedURL struct {
	Path        string // "/course/<slug>", no trailing slash
	CouponParam string // parameter name as published by the origin
	CouponValue string
}

// String reconstructs the canonical course URL.
func (n NormalizedURL) String() string {
	return fmt.Sprintf("https://%s%s?%s=%s", CourseHost, n.Path, n.CouponParam, url.QueryEscape(n.CouponValue))
}

// Slug returns the course slug, i.e. the path segment after "/course/".
func (n NormalizedURL) Slug() string {
	_, slug, found := strings.Cut(n.Path, "/course/")
	if !found {
		return ""
	}
	return strings.Trim(slug, "/")
}

// NormalizeCourseURL canonicalizes a raw course URL. It rejects anything that
// is not a well-formed course URL on the target platform: empty input, a
// foreign host, a bare homepage, or a URL without a coupon parameter. The
// function is pure and never mutates shared state.
func NormalizeCourseURL(rawURL string) (NormalizedURL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return NormalizedURL{}, ErrEmptyURL
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return NormalizedURL{}, fmt.Errorf("could not parse URL '%s': %w", trimmed, err)
	}

	host := strings.ToLower(parsed.Hostname())
	if host != "udemy.com" && !strings.HasSuffix(host, ".udemy.com") {
		return NormalizedURL{}, ErrHostMismatch
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.Contains(path, "/course/") || strings.Trim(strings.TrimPrefix(path, "/course/"), "/") == "" {
		return NormalizedURL{}, ErrNotCoursePath
	}

	param, value, err := selectCouponParam(parsed.Query())
	if err != nil {
		return NormalizedURL{}, err
	}

	return NormalizedURL{
		Path:        path,
		CouponParam: param,
		CouponValue: value,
	}, nil
}

// selectCouponParam scans query parameters for the first recognized coupon
// parameter in priority order and returns its published name and value.
func selectCouponParam(query url.Values) (string, string, error) {
	for _, wanted := range couponParamNames {
		for key, values := range query {
			if strings.ToLower(key) != wanted {
				continue
			}
			if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
				return "", "", ErrEmptyCouponVal
			}
			return key, values[0], nil
		}
	}
	return "", "", ErrNoCouponParam
}
