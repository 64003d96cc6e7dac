package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couponwatch/couponwatch/internal/common"
	"github.com/rs/zerolog"
)

func TestClient_Get_SetsHeaders(t *testing.T) {
	var gotUA, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, err := NewClientBuilder(zerolog.Nop()).
		WithUserAgent("couponwatch-test/1.0").
		WithHTTP2(false).
		Build()
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL, map[string]string{"Referer": "https://example.org/"})
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}

	if !resp.IsSuccess() {
		t.Errorf("expected success status, got %d", resp.StatusCode)
	}
	if gotUA != "couponwatch-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "couponwatch-test/1.0")
	}
	if gotReferer != "https://example.org/" {
		t.Errorf("Referer = %q, want %q", gotReferer, "https://example.org/")
	}
	if string(resp.Body) != "ok" {
		t.Errorf("Body = %q, want %q", resp.Body, "ok")
	}
}

func TestClient_Get_MaxContentSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	client, err := NewClientBuilder(zerolog.Nop()).
		WithMaxContentSize(16).
		WithHTTP2(false).
		Build()
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if len(resp.Body) != 16 {
		t.Errorf("body length = %d, want 16 (capped)", len(resp.Body))
	}
}

func TestClient_Get_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer server.Close()

	client, err := NewClientBuilder(zerolog.Nop()).
		WithTimeout(20 * time.Millisecond).
		WithHTTP2(false).
		Build()
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	_, err = client.Get(context.Background(), server.URL, nil)
	if err == nil {
		t.Fatal("Get() succeeded, expected timeout error")
	}
	if !errors.Is(err, common.ErrTimeout) {
		t.Errorf("Get() error = %v, want common.ErrTimeout", err)
	}
}

func TestClient_Get_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClientBuilder(zerolog.Nop()).
		WithHTTP2(false).
		Build()
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	_, err = client.Get(context.Background(), server.URL, nil)
	if !errors.Is(err, common.ErrNetworkFailure) {
		t.Errorf("Get() error = %v, want common.ErrNetworkFailure", err)
	}
}
