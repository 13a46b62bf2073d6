package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pindrop/internal/metrics"
	"pindrop/internal/models"
	"pindrop/internal/repositories"
	"pindrop/internal/utils"
)

type BookmarkService interface {
	GetBookmarks(ctx context.Context, userID primitive.ObjectID, query url.Values) ([]models.Bookmark, error)
	AddBookmark(ctx context.Context, userID primitive.ObjectID, reqBody models.AddBookmarkRequestBody) (*models.Bookmark, error)
	GetBookmarkByID(ctx context.Context, userID, bookmarkID primitive.ObjectID) (*models.Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID) (bool, error)
	UpdateBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID, updatePayload models.UpdateBookmarkRequestBody) (*models.Bookmark, error)
}

type bookmarkServiceImpl struct {
	bookmarkRepo repositories.BookmarkRepository
	tagService   TagService
	autotag      AutotagService
}

func NewBookmarkService(bookmarkRepo repositories.BookmarkRepository, tagService TagService, autotag AutotagService) BookmarkService {
	return &bookmarkServiceImpl{bookmarkRepo: bookmarkRepo, tagService: tagService, autotag: autotag}
}

func validateBookmarkURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: url is required", ErrValidation)
	}
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: malformed url", ErrValidation)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", ErrValidation)
	}
	return nil
}

// AddBookmark is the creation orchestrator. It enforces per-user URL
// uniqueness, auto-tags only when the caller supplied no tags, and treats
// any auto-tagging failure as a non-event: the bookmark is created anyway.
// Only the uniqueness conflict and real storage failures reach the caller.
func (s *bookmarkServiceImpl) AddBookmark(ctx context.Context, userID primitive.ObjectID, reqBody models.AddBookmarkRequestBody) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("url", reqBody.URL).Msg("Attempting to add bookmark")

	if err := validateBookmarkURL(reqBody.URL); err != nil {
		log.Warn().Err(err).Str("userID", userID.Hex()).Msg("Rejected bookmark with invalid URL")
		return nil, err
	}

	existing, err := s.bookmarkRepo.FindOne(ctx, bson.M{"user_id": userID, "url": reqBody.URL})
	if err != nil && err != mongo.ErrNoDocuments {
		log.Error().Err(err).Str("userID", userID.Hex()).Str("url", reqBody.URL).Msg("Error checking for existing bookmark")
		return nil, err
	}
	if existing != nil {
		log.Warn().Str("userID", userID.Hex()).Str("url", reqBody.URL).Msg("URL already bookmarked by this user")
		return nil, ErrDuplicateURL
	}

	finalTitle := reqBody.Title
	finalTags := reqBody.Tags

	if len(finalTags) == 0 {
		log.Info().Str("userID", userID.Hex()).Str("url", reqBody.URL).Msg("No tags supplied, auto-tagging bookmark")
		suggestion, err := s.autotag.GenerateTags(ctx, reqBody.URL)
		if err != nil {
			// Auto-tagging is best effort; a failure here must never block
			// the bookmark itself.
			log.Warn().Err(err).Str("userID", userID.Hex()).Str("url", reqBody.URL).Msg("Auto-tagging failed")
		} else {
			finalTags = suggestion.Tags
			if finalTitle == "" {
				finalTitle = suggestion.Title
			}
			metrics.AutotagOutcomesTotal.WithLabelValues(autotagOutcome(suggestion.Tags)).Inc()
		}
	}

	resolvedTags, err := s.tagService.ResolveTags(ctx, userID, finalTags)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error resolving tags for bookmark")
		return nil, err
	}

	tagIDs := make([]primitive.ObjectID, 0, len(resolvedTags))
	for _, tag := range resolvedTags {
		tagIDs = append(tagIDs, tag.ID)
	}

	bm := models.Bookmark{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		URL:         reqBody.URL,
		Title:       finalTitle,
		Description: reqBody.Description,
		TagsID:      tagIDs,
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}

	createdBookmark, err := s.bookmarkRepo.Create(ctx, &bm)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent request won the (owner, url) race after our
			// pre-check.
			log.Warn().Str("userID", userID.Hex()).Str("url", reqBody.URL).Msg("Concurrent request bookmarked this URL first")
			return nil, ErrDuplicateURL
		}
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error inserting bookmark")
		return nil, err
	}

	createdBookmark.Tags = resolvedTags
	metrics.BookmarkCreatedTotal.Inc()
	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", createdBookmark.ID.Hex()).Strs("tags", finalTags).Msg("Bookmark added successfully")
	return createdBookmark, nil
}

// autotagOutcome labels a suggestion for the pipeline metrics: either real
// keywords or one of the sentinel tags.
func autotagOutcome(tags []string) string {
	if len(tags) == 1 {
		switch tags[0] {
		case TagUncategorized, TagGeneral, TagManualReview:
			return tags[0]
		}
	}
	return "keywords"
}

func (s *bookmarkServiceImpl) buildBookmarkFilter(query url.Values, userID primitive.ObjectID) (bson.M, error) {
	filter := bson.M{"user_id": userID}

	tagsParam := query.Get("tags")
	if tagsParam != "" {
		tagIDs, err := utils.ParseObjectIDs(tagsParam)
		if err != nil {
			log.Warn().Err(err).Str("tagsParam", tagsParam).Msg("Invalid tags ID format")
			return nil, fmt.Errorf("%w: tags must be comma-separated hexadecimal ObjectIDs", ErrValidation)
		}
		filter["tags_id"] = bson.M{"$in": tagIDs}
	}

	return filter, nil
}

func (s *bookmarkServiceImpl) GetBookmarks(ctx context.Context, userID primitive.ObjectID, query url.Values) ([]models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Msg("Attempting to retrieve bookmarks")
	filter, err := s.buildBookmarkFilter(query, userID)
	if err != nil {
		return nil, err
	}

	var limit int64 = 20
	var page int64 = 1
	if pageParam := query.Get("page"); pageParam != "" {
		parsed, err := utils.ParsePositiveInt(pageParam)
		if err != nil {
			log.Warn().Err(err).Str("pageParam", pageParam).Msg("Invalid page query")
			return nil, fmt.Errorf("%w: page must be a positive integer", ErrValidation)
		}
		page = parsed
	}

	bookmarks, err := s.bookmarkRepo.Find(ctx, filter, limit, page)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error finding bookmarks")
		return nil, err
	}

	log.Debug().Str("userID", userID.Hex()).Int("count", len(bookmarks)).Msg("Successfully retrieved bookmarks")
	return bookmarks, nil
}

func (s *bookmarkServiceImpl) GetBookmarkByID(ctx context.Context, userID, bookmarkID primitive.ObjectID) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Attempting to retrieve bookmark by ID")
	filter := bson.M{"_id": bookmarkID, "user_id": userID}

	bm, err := s.bookmarkRepo.FindOne(ctx, filter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Warn().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark not found")
			return nil, fmt.Errorf("%w: bookmark", ErrNotFound)
		}
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error finding bookmark by ID")
		return nil, fmt.Errorf("failed to retrieve bookmark")
	}

	tags, err := s.tagService.GetTagsByID(ctx, userID, bm.TagsID)
	if err != nil {
		log.Error().Err(err).Str("bookmarkID", bookmarkID.Hex()).Msg("Error populating bookmark tags")
		return nil, err
	}
	bm.Tags = tags

	return bm, nil
}

func (s *bookmarkServiceImpl) DeleteBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID) (bool, error) {
	log.Debug().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Attempting to delete bookmark")
	filter := bson.M{"_id": bookmarkID, "user_id": userID}

	deleteResult, err := s.bookmarkRepo.DeleteOne(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error deleting bookmark")
		return false, err
	}

	if deleteResult.DeletedCount == 0 {
		log.Warn().Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Bookmark not found or not authorized to delete")
		return false, fmt.Errorf("%w: bookmark", ErrNotFound)
	}
	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark deleted successfully")
	return true, nil
}

func (s *bookmarkServiceImpl) buildUpdateFields(ctx context.Context, userID primitive.ObjectID, updatePayload models.UpdateBookmarkRequestBody) (bson.M, []models.Tag, error) {
	updateFields := bson.M{}
	var resolvedTags []models.Tag

	if updatePayload.URL != nil {
		if err := validateBookmarkURL(*updatePayload.URL); err != nil {
			return nil, nil, err
		}
		updateFields["url"] = *updatePayload.URL
	}
	if updatePayload.Title != nil {
		updateFields["title"] = *updatePayload.Title
	}
	if updatePayload.Description != nil {
		updateFields["description"] = *updatePayload.Description
	}

	if updatePayload.Tags != nil {
		tags, err := s.tagService.ResolveTags(ctx, userID, *updatePayload.Tags)
		if err != nil {
			return nil, nil, err
		}
		tagIDs := make([]primitive.ObjectID, 0, len(tags))
		for _, tag := range tags {
			tagIDs = append(tagIDs, tag.ID)
		}
		updateFields["tags_id"] = tagIDs
		resolvedTags = tags
	}

	return updateFields, resolvedTags, nil
}

func (s *bookmarkServiceImpl) UpdateBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID, updatePayload models.UpdateBookmarkRequestBody) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Attempting to update bookmark")
	updateFields, resolvedTags, err := s.buildUpdateFields(ctx, userID, updatePayload)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Failed to build update fields for bookmark")
		return nil, err
	}

	if len(updateFields) == 0 {
		log.Warn().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("No valid fields provided for bookmark update")
		return nil, fmt.Errorf("%w: no valid fields provided for update", ErrValidation)
	}

	filter := bson.M{"_id": bookmarkID, "user_id": userID}
	update := bson.M{"$set": updateFields}

	result, err := s.bookmarkRepo.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Updated URL already bookmarked by this user")
			return nil, ErrDuplicateURL
		}
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error updating bookmark")
		return nil, err
	}

	if result.MatchedCount == 0 {
		log.Warn().Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Bookmark not found or not authorized to update")
		return nil, fmt.Errorf("%w: bookmark", ErrNotFound)
	}

	updatedBookmark, err := s.bookmarkRepo.FindOne(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error fetching updated bookmark")
		return nil, fmt.Errorf("failed to retrieve updated bookmark")
	}

	if resolvedTags != nil {
		updatedBookmark.Tags = resolvedTags
	}
	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark updated successfully")
	return updatedBookmark, nil
}
