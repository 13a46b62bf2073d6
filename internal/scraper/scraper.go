package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Many sites reject obvious bot agents, so the fetcher presents itself as a
// desktop Chrome.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// FetchTimeout bounds a single page fetch. It must stay below the server's
// request write timeout so a hanging fetch can never stall bookmark creation
// past the request deadline.
const FetchTimeout = 5 * time.Second

// FetchError wraps any failure to retrieve a page: network errors, timeouts
// and non-2xx statuses. Callers treat it as terminal for the attempt; there is
// no retry.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Metadata is the transient scrape result. Absent data is represented by
// empty strings, never by an error.
type Metadata struct {
	Title       string
	Description string
}

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: FetchTimeout},
	}
}

// Fetch performs a single best-effort GET and returns the raw HTML body.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to build scrape request")
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to scrape page")
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("Scrape returned non-success status")
		return "", &FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to read scraped page body")
		return "", &FetchError{URL: url, Err: err}
	}

	return string(body), nil
}

// ExtractMetadata pulls title and description out of an HTML document using an
// ordered fallback chain: <title> then og:title, and meta description then
// og:description. Malformed or partial HTML simply yields empty fields.
func ExtractMetadata(html string) Metadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// goquery tolerates almost anything; a reader error means there is
		// nothing usable here.
		return Metadata{}
	}

	title := doc.Find("head > title").First().Text()
	if title == "" {
		if ogTitle, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists {
			title = ogTitle
		}
	}

	description, exists := doc.Find(`meta[name="description"]`).Attr("content")
	if !exists || description == "" {
		if ogDescription, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			description = ogDescription
		}
	}

	return Metadata{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
}
