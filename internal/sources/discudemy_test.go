package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscudemyAdapter_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/all/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a class="card-header" href="/python/learn-python">Learn Python</a>
			<a class="card-header" href="/go/learn-go"></a>
			<a class="card-header" href="">broken</a>
		</body></html>`)
	})
	mux.HandleFunc("/go/learn-python", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="ui segment">
			<a href="https://www.udemy.com/course/learn-python/?couponCode=PY100">Take course</a>
		</div></body></html>`)
	})
	mux.HandleFunc("/go/learn-go", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="ui segment">
			<a href="https://www.udemy.com/course/learn-go/?couponCode=GO100">Take course</a>
		</div></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.DiscudemyConfig{
		Enabled:      true,
		BaseURL:      server.URL,
		ListingPages: 1,
	}
	adapter := NewDiscudemyAdapter(cfg, newTestClient(t), zerolog.Nop())

	candidates, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Learn Python", candidates[0].Title)
	assert.Equal(t, "https://www.udemy.com/course/learn-python/?couponCode=PY100", candidates[0].RawURL)
	assert.Equal(t, models.SourceDiscudemy, candidates[0].Source)

	// Stub without anchor text gets a slug-derived placeholder title.
	assert.Equal(t, "learn go", candidates[1].Title)
}

func TestDiscudemyAdapter_DetailFailureSkipsStub(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/all/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a class="card-header" href="/x/broken-course">Broken</a>
			<a class="card-header" href="/x/good-course">Good</a>
		</body></html>`)
	})
	mux.HandleFunc("/go/broken-course", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/go/good-course", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="ui segment"><a href="https://www.udemy.com/course/good/?coupon=OK">go</a></div>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.DiscudemyConfig{Enabled: true, BaseURL: server.URL, ListingPages: 1}
	adapter := NewDiscudemyAdapter(cfg, newTestClient(t), zerolog.Nop())

	candidates, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Good", candidates[0].Title)
}

func TestDiscudemyAdapter_ListingFailureReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := config.DiscudemyConfig{Enabled: true, BaseURL: server.URL, ListingPages: 2}
	adapter := NewDiscudemyAdapter(cfg, newTestClient(t), zerolog.Nop())

	candidates, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
