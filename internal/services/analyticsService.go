package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pindrop/internal/models"
	"pindrop/internal/repositories"
)

type AnalyticsService interface {
	GetOverview(ctx context.Context, userID primitive.ObjectID) (*models.AnalyticsOverview, error)
}

type analyticsServiceImpl struct {
	bookmarkRepo repositories.BookmarkRepository
	tagRepo      repositories.TagRepository
}

func NewAnalyticsService(bookmarkRepo repositories.BookmarkRepository, tagRepo repositories.TagRepository) AnalyticsService {
	return &analyticsServiceImpl{bookmarkRepo: bookmarkRepo, tagRepo: tagRepo}
}

const topTagsLimit = 5

// GetOverview aggregates per-user bookmark and tag counts plus the most
// used tags, ordered by how many bookmarks reference each.
func (s *analyticsServiceImpl) GetOverview(ctx context.Context, userID primitive.ObjectID) (*models.AnalyticsOverview, error) {
	log.Debug().Str("userID", userID.Hex()).Msg("Attempting to build analytics overview")

	totalBookmarks, err := s.bookmarkRepo.CountByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Failed to count bookmarks for overview")
		return nil, err
	}

	totalTags, err := s.tagRepo.CountByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Failed to count tags for overview")
		return nil, err
	}

	counts, topIDs, err := s.bookmarkRepo.TopTagIDs(ctx, userID, topTagsLimit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Failed to aggregate top tags for overview")
		return nil, err
	}

	tags, err := s.tagRepo.FindByIDs(ctx, userID, topIDs)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Failed to load top tag names for overview")
		return nil, err
	}
	tagByID := make(map[primitive.ObjectID]models.Tag, len(tags))
	for _, tag := range tags {
		tagByID[tag.ID] = tag
	}

	topTags := make([]models.TagUsage, 0, len(topIDs))
	for _, id := range topIDs {
		tag, ok := tagByID[id]
		if !ok {
			// Tag row deleted after the aggregation ran; skip the orphan.
			continue
		}
		topTags = append(topTags, models.TagUsage{Tag: tag, Count: counts[id]})
	}

	overview := &models.AnalyticsOverview{
		TotalBookmarks: totalBookmarks,
		TotalTags:      totalTags,
		TopTags:        topTags,
	}
	log.Debug().Str("userID", userID.Hex()).Int64("bookmarks", totalBookmarks).Int64("tags", totalTags).Msg("Analytics overview built")
	return overview, nil
}
