package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pindrop/internal/metrics"
	"pindrop/internal/models"
	"pindrop/internal/repositories"
)

type AgentService interface {
	SummarizeBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID) (*models.Bookmark, error)
}

type agentServiceImpl struct {
	bookmarkRepo repositories.BookmarkRepository
	summarizer   LLMSummarizer
}

func NewAgentService(bookmarkRepo repositories.BookmarkRepository, summarizer LLMSummarizer) AgentService {
	return &agentServiceImpl{bookmarkRepo: bookmarkRepo, summarizer: summarizer}
}

// SummarizeBookmark generates an AI summary for the bookmark and stores it
// as the bookmark's description.
func (s *agentServiceImpl) SummarizeBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Attempting to summarize bookmark")
	filter := bson.M{"_id": bookmarkID, "user_id": userID}

	bm, err := s.bookmarkRepo.FindOne(ctx, filter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Warn().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark not found for summary")
			return nil, fmt.Errorf("%w: bookmark", ErrNotFound)
		}
		log.Error().Err(err).Str("bookmarkID", bookmarkID.Hex()).Msg("Failed to retrieve bookmark for summary")
		return nil, err
	}

	summary, err := s.summarizer.Summarize(ctx, bm.URL, bm.Title)
	if err != nil {
		log.Error().Err(err).Str("bookmarkID", bookmarkID.Hex()).Msg("Failed to generate bookmark summary")
		return nil, err
	}

	update := bson.M{"$set": bson.M{"description": summary}}
	if _, err := s.bookmarkRepo.UpdateOne(ctx, filter, update); err != nil {
		log.Error().Err(err).Str("bookmarkID", bookmarkID.Hex()).Msg("Failed to store bookmark summary")
		return nil, err
	}

	bm.Description = summary
	metrics.SummaryGeneratedTotal.Inc()
	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark summarized successfully")
	return bm, nil
}
