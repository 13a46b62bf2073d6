package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
	"github.com/rs/zerolog/log"

	"pindrop/internal/models"
	"pindrop/internal/scraper"
)

// Sentinel tags signal to operators which stage of the pipeline failed to
// produce real keywords: nothing to extract from, extraction found nothing
// usable, or the extractor itself blew up.
const (
	TagUncategorized = "uncategorized"
	TagGeneral       = "general"
	TagManualReview  = "manual-review"
)

const maxAutoTags = 5

// minTagLength filters out short noise tokens; only words longer than this
// survive.
const minTagLength = 3

var digitsPattern = regexp.MustCompile(`[0-9]+`)

// PageFetcher retrieves raw HTML for a URL. The concrete implementation is
// scraper.Client; tests substitute their own.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// KeywordExtractor turns free text into a ranked keyword sequence. The default
// implementation strips English stopwords and keeps the input ordering.
type KeywordExtractor interface {
	Extract(text string) ([]string, error)
}

type stopwordExtractor struct{}

func NewKeywordExtractor() KeywordExtractor {
	return stopwordExtractor{}
}

func (stopwordExtractor) Extract(text string) ([]string, error) {
	text = digitsPattern.ReplaceAllString(strings.ToLower(text), " ")
	cleaned := stopwords.CleanString(text, "en", false)

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords, nil
}

type AutotagService interface {
	GenerateTags(ctx context.Context, url string) (models.TagSuggestion, error)
	ExtractKeywords(title, description string) []string
}

type autotagServiceImpl struct {
	fetcher   PageFetcher
	extractor KeywordExtractor
}

func NewAutotagService(fetcher PageFetcher, extractor KeywordExtractor) AutotagService {
	return &autotagServiceImpl{fetcher: fetcher, extractor: extractor}
}

// GenerateTags runs the full fetch → extract → keywords pipeline for a URL.
// A failed fetch degrades to empty metadata, which the keyword stage turns
// into the uncategorized sentinel; the bookmark flow keeps going either way.
func (s *autotagServiceImpl) GenerateTags(ctx context.Context, url string) (models.TagSuggestion, error) {
	log.Debug().Str("url", url).Msg("Auto-tagging triggered")

	var meta scraper.Metadata
	html, err := s.fetcher.Fetch(ctx, url)
	if err == nil {
		meta = scraper.ExtractMetadata(html)
	}

	tags := s.ExtractKeywords(meta.Title, meta.Description)
	log.Debug().Str("url", url).Str("title", meta.Title).Strs("tags", tags).Msg("Auto-tagging finished")

	return models.TagSuggestion{Title: meta.Title, Tags: tags}, nil
}

// ExtractKeywords derives at most five tags from the combined title and
// description, falling back to a sentinel tag when there is nothing to work
// with, nothing survives filtering, or the extractor fails outright.
func (s *autotagServiceImpl) ExtractKeywords(title, description string) (tags []string) {
	combined := strings.TrimSpace(title + " " + description)
	if combined == "" {
		return []string{TagUncategorized}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Err(fmt.Errorf("%v", r)).Msg("Keyword extraction panicked")
			tags = []string{TagManualReview}
		}
	}()

	keywords, err := s.extractor.Extract(combined)
	if err != nil {
		log.Error().Err(err).Msg("Keyword extraction failed")
		return []string{TagManualReview}
	}

	var filtered []string
	for _, word := range keywords {
		if len(word) <= minTagLength {
			continue
		}
		filtered = append(filtered, word)
		if len(filtered) == maxAutoTags {
			break
		}
	}

	if len(filtered) == 0 {
		return []string{TagGeneral}
	}
	return filtered
}
