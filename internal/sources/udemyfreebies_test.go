package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUdemyFreebiesAdapter_Fetch(t *testing.T) {
	longTitle := strings.Repeat("Very Long Title ", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/free-udemy-courses", r.URL.Path)
		fmt.Fprintf(w, `<html><body>
			<a href="https://www.udemy.com/course/short/?couponCode=A">Short Title</a>
			<a href="https://www.udemy.com/course/long/?couponCode=B">%s</a>
			<a href="https://www.udemy.com/course/untitled/?couponCode=C"></a>
			<a href="https://other.example.com/not-a-course">elsewhere</a>
		</body></html>`, longTitle)
	}))
	defer server.Close()

	cfg := config.UdemyFreebiesConfig{Enabled: true, BaseURL: server.URL, MaxLinks: 30}
	adapter := NewUdemyFreebiesAdapter(cfg, newTestClient(t), zerolog.Nop())

	candidates, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "Short Title", candidates[0].Title)
	assert.Equal(t, models.SourceUdemyFreebies, candidates[0].Source)

	assert.Len(t, candidates[1].Title, maxTitleLength)

	assert.Equal(t, placeholderTitle, candidates[2].Title)
}

func TestUdemyFreebiesAdapter_MaxLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := 0; i < 10; i++ {
			fmt.Fprintf(&sb, `<a href="https://www.udemy.com/course/c%d/?couponCode=X%d">Course %d</a>`, i, i, i)
		}
		sb.WriteString("</body></html>")
		fmt.Fprint(w, sb.String())
	}))
	defer server.Close()

	cfg := config.UdemyFreebiesConfig{Enabled: true, BaseURL: server.URL, MaxLinks: 4}
	adapter := NewUdemyFreebiesAdapter(cfg, newTestClient(t), zerolog.Nop())

	candidates, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 4)
}

func TestUdemyFreebiesAdapter_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close() // connection refused from here on

	cfg := config.UdemyFreebiesConfig{Enabled: true, BaseURL: serverURL, MaxLinks: 30}
	adapter := NewUdemyFreebiesAdapter(cfg, newTestClient(t), zerolog.Nop())

	candidates, err := adapter.Fetch(context.Background())
	assert.Error(t, err)
	assert.Empty(t, candidates)
}
