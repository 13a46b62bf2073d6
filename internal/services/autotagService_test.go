package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeFetcher struct {
	html    string
	err     error
	fetches int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.fetches++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

type fakeExtractor struct {
	keywords []string
	err      error
	panics   bool
}

func (f *fakeExtractor) Extract(text string) ([]string, error) {
	if f.panics {
		panic("extractor exploded")
	}
	return f.keywords, f.err
}

func TestExtractKeywords(t *testing.T) {
	t.Run("empty input yields uncategorized", func(t *testing.T) {
		svc := NewAutotagService(&fakeFetcher{}, &fakeExtractor{})
		assert.Equal(t, []string{TagUncategorized}, svc.ExtractKeywords("", ""))
		assert.Equal(t, []string{TagUncategorized}, svc.ExtractKeywords("   ", "  "))
	})

	t.Run("short words are filtered out", func(t *testing.T) {
		svc := NewAutotagService(&fakeFetcher{}, &fakeExtractor{
			keywords: []string{"api", "cli", "kubernetes", "dns"},
		})
		assert.Equal(t, []string{"kubernetes"}, svc.ExtractKeywords("some title", ""))
	})

	t.Run("caps at five tags preserving order", func(t *testing.T) {
		svc := NewAutotagService(&fakeFetcher{}, &fakeExtractor{
			keywords: []string{"alpha", "bravo", "charlie", "delta", "echo2", "foxtrot", "golf7"},
		})
		tags := svc.ExtractKeywords("some title", "some description")
		assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta", "echo2"}, tags)
	})

	t.Run("nothing survives filtering yields general", func(t *testing.T) {
		svc := NewAutotagService(&fakeFetcher{}, &fakeExtractor{
			keywords: []string{"a", "of", "the"},
		})
		assert.Equal(t, []string{TagGeneral}, svc.ExtractKeywords("a of the", ""))
	})

	t.Run("extractor error yields manual-review", func(t *testing.T) {
		svc := NewAutotagService(&fakeFetcher{}, &fakeExtractor{err: errors.New("boom")})
		assert.Equal(t, []string{TagManualReview}, svc.ExtractKeywords("some title", ""))
	})

	t.Run("extractor panic yields manual-review", func(t *testing.T) {
		svc := NewAutotagService(&fakeFetcher{}, &fakeExtractor{panics: true})
		assert.Equal(t, []string{TagManualReview}, svc.ExtractKeywords("some title", ""))
	})
}

func TestStopwordExtractor(t *testing.T) {
	extractor := NewKeywordExtractor()

	t.Run("dedupes while preserving order", func(t *testing.T) {
		keywords, err := extractor.Extract("kubernetes kubernetes docker kubernetes")
		assert.NoError(t, err)
		assert.Equal(t, []string{"kubernetes", "docker"}, keywords)
	})

	t.Run("strips digits and lowercases", func(t *testing.T) {
		keywords, err := extractor.Extract("Kubernetes 2024 Docker")
		assert.NoError(t, err)
		assert.Equal(t, []string{"kubernetes", "docker"}, keywords)
	})

	t.Run("removes english stopwords", func(t *testing.T) {
		keywords, err := extractor.Extract("the kubernetes and the docker")
		assert.NoError(t, err)
		assert.NotContains(t, keywords, "the")
		assert.NotContains(t, keywords, "and")
		assert.Contains(t, keywords, "kubernetes")
		assert.Contains(t, keywords, "docker")
	})
}

func TestGenerateTags(t *testing.T) {
	t.Run("fetch failure degrades to uncategorized", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("connection refused")}
		svc := NewAutotagService(fetcher, &fakeExtractor{keywords: []string{"ignored"}})

		suggestion, err := svc.GenerateTags(context.Background(), "https://unreachable.example.com")
		assert.NoError(t, err)
		assert.Empty(t, suggestion.Title)
		assert.Equal(t, []string{TagUncategorized}, suggestion.Tags)
	})

	t.Run("extracts title and keywords from page metadata", func(t *testing.T) {
		fetcher := &fakeFetcher{html: `<html><head>
			<title>Example Domain</title>
			<meta name="description" content="Illustrative examples in documents">
		</head><body></body></html>`}
		svc := NewAutotagService(fetcher, NewKeywordExtractor())

		suggestion, err := svc.GenerateTags(context.Background(), "https://example.com")
		assert.NoError(t, err)
		assert.Equal(t, "Example Domain", suggestion.Title)
		assert.NotEmpty(t, suggestion.Tags)
		assert.NotContains(t, suggestion.Tags, TagUncategorized)
		assert.LessOrEqual(t, len(suggestion.Tags), 5)
	})
}
