package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMetadata(t *testing.T) {
	t.Run("prefers title tag over og:title", func(t *testing.T) {
		html := `<html><head>
			<title>Page Title</title>
			<meta property="og:title" content="OG Title">
		</head><body></body></html>`

		meta := ExtractMetadata(html)
		assert.Equal(t, "Page Title", meta.Title)
	})

	t.Run("falls back to og:title when title is missing", func(t *testing.T) {
		html := `<html><head>
			<meta property="og:title" content="OG Title">
		</head><body></body></html>`

		meta := ExtractMetadata(html)
		assert.Equal(t, "OG Title", meta.Title)
	})

	t.Run("prefers meta description over og:description", func(t *testing.T) {
		html := `<html><head>
			<meta name="description" content="Meta description">
			<meta property="og:description" content="OG description">
		</head><body></body></html>`

		meta := ExtractMetadata(html)
		assert.Equal(t, "Meta description", meta.Description)
	})

	t.Run("falls back to og:description", func(t *testing.T) {
		html := `<html><head>
			<meta property="og:description" content="OG description">
		</head><body></body></html>`

		meta := ExtractMetadata(html)
		assert.Equal(t, "OG description", meta.Description)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		html := `<html><head><title>
			Padded Title
		</title></head><body></body></html>`

		meta := ExtractMetadata(html)
		assert.Equal(t, "Padded Title", meta.Title)
	})

	t.Run("returns empty metadata for empty document", func(t *testing.T) {
		meta := ExtractMetadata("")
		assert.Empty(t, meta.Title)
		assert.Empty(t, meta.Description)
	})

	t.Run("tolerates malformed html", func(t *testing.T) {
		meta := ExtractMetadata("<html><head><title>Broken")
		assert.Equal(t, "Broken", meta.Title)
	})
}

func TestClientFetch(t *testing.T) {
	t.Run("returns body and sends browser user agent", func(t *testing.T) {
		var gotUserAgent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserAgent = r.Header.Get("User-Agent")
			w.Write([]byte("<html><head><title>ok</title></head></html>"))
		}))
		defer srv.Close()

		client := NewClient()
		body, err := client.Fetch(context.Background(), srv.URL)
		assert.NoError(t, err)
		assert.Contains(t, body, "<title>ok</title>")
		assert.Equal(t, userAgent, gotUserAgent)
	})

	t.Run("non-success status yields FetchError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient()
		_, err := client.Fetch(context.Background(), srv.URL)
		assert.Error(t, err)

		var fetchErr *FetchError
		assert.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, srv.URL, fetchErr.URL)
	})

	t.Run("unreachable host yields FetchError", func(t *testing.T) {
		client := NewClient()
		_, err := client.Fetch(context.Background(), "http://127.0.0.1:1")
		assert.Error(t, err)

		var fetchErr *FetchError
		assert.True(t, errors.As(err, &fetchErr))
	})
}
