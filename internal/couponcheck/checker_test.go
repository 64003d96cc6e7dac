package couponcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/urlhandler"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(t *testing.T, raw string) urlhandler.NormalizedURL {
	t.Helper()
	nurl, err := urlhandler.NormalizeCourseURL(raw)
	require.NoError(t, err)
	return nurl
}

func newChecker(t *testing.T, baseURL string, timeoutSecs int) *Checker {
	t.Helper()
	client, err := httpclient.NewClientBuilder(zerolog.Nop()).WithHTTP2(false).Build()
	require.NoError(t, err)
	cfg := config.CouponCheckConfig{BaseURL: baseURL, TimeoutSecs: timeoutSecs}
	return NewChecker(cfg, client, zerolog.Nop())
}

func TestChecker_Classification(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{
			name:     "full percentage discount",
			body:     `{"price":"$19.99","discount":{"discount_percent":100,"price":{"amount":19.99}}}`,
			expected: true,
		},
		{
			name:     "zero discounted amount",
			body:     `{"price":"$19.99","discount":{"discount_percent":50,"price":{"amount":0}}}`,
			expected: true,
		},
		{
			name:     "display price says Free",
			body:     `{"price":"Free"}`,
			expected: true,
		},
		{
			name:     "partial discount is not free",
			body:     `{"price":"$19.99","discount":{"discount_percent":50,"price":{"amount":9.99}}}`,
			expected: false,
		},
		{
			name:     "no discount at all",
			body:     `{"price":"$19.99"}`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			checker := newChecker(t, server.URL, 5)
			result := checker.IsFree(context.Background(), normalized(t, "https://www.udemy.com/course/x/?couponCode=C"))
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestChecker_RequestShape(t *testing.T) {
	var gotPath, gotCoupon string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCoupon = r.URL.Query().Get("couponCode")
		fmt.Fprint(w, `{"price":"Free"}`)
	}))
	defer server.Close()

	checker := newChecker(t, server.URL, 5)
	checker.IsFree(context.Background(), normalized(t, "https://www.udemy.com/course/learn-go/?couponCode=GOFREE"))

	assert.Equal(t, "/api-2.0/courses/learn-go/", gotPath)
	assert.Equal(t, "GOFREE", gotCoupon)
}

func TestChecker_FailClosed(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			fmt.Fprint(w, `{"price":"Free"}`)
		}))
		defer server.Close()

		checker := newChecker(t, server.URL, 5)
		checker.cfg.TimeoutSecs = 1
		// Shrink further via context to keep the test fast.
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.False(t, checker.IsFree(ctx, normalized(t, "https://www.udemy.com/course/x/?couponCode=C")))
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "oops", http.StatusBadGateway)
		}))
		defer server.Close()

		checker := newChecker(t, server.URL, 5)
		assert.False(t, checker.IsFree(context.Background(), normalized(t, "https://www.udemy.com/course/x/?couponCode=C")))
	})

	t.Run("unrecognizable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"unexpected":true}`)
		}))
		defer server.Close()

		checker := newChecker(t, server.URL, 5)
		assert.False(t, checker.IsFree(context.Background(), normalized(t, "https://www.udemy.com/course/x/?couponCode=C")))
	})
}

func TestChecker_CachesDefinitiveVerdicts(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"price":"Free"}`)
	}))
	defer server.Close()

	checker := newChecker(t, server.URL, 5)
	nurl := normalized(t, "https://www.udemy.com/course/x/?couponCode=C")

	assert.True(t, checker.IsFree(context.Background(), nurl))
	assert.True(t, checker.IsFree(context.Background(), nurl))
	assert.Equal(t, 1, hits, "second validation must be served from cache")
	assert.Equal(t, 1, checker.CacheSize())
}

func TestChecker_DoesNotCacheIndeterminate(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"discount":{"discount_percent":100}}`)
	}))
	defer server.Close()

	checker := newChecker(t, server.URL, 5)
	nurl := normalized(t, "https://www.udemy.com/course/x/?couponCode=C")

	assert.False(t, checker.IsFree(context.Background(), nurl), "transient failure is fail-closed")
	assert.Equal(t, 0, checker.CacheSize(), "indeterminate verdict must not be cached")
	assert.True(t, checker.IsFree(context.Background(), nurl), "retry after transient failure succeeds")
	assert.Equal(t, 2, hits)
}
