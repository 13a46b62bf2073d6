package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pindrop/internal/metrics"
	"pindrop/internal/models"
	"pindrop/internal/repositories"
)

type TagService interface {
	AddTag(ctx context.Context, userID primitive.ObjectID, tag models.Tag) (*models.Tag, error)
	ResolveTags(ctx context.Context, userID primitive.ObjectID, names []string) ([]models.Tag, error)
	GetTagsByID(ctx context.Context, userID primitive.ObjectID, tagIDs []primitive.ObjectID) ([]models.Tag, error)
	GetUserTags(ctx context.Context, userID primitive.ObjectID) ([]models.Tag, error)
	DeleteTag(ctx context.Context, userID, tagID primitive.ObjectID) (bool, error)
	UpdateTag(ctx context.Context, userID, tagID primitive.ObjectID, updatePayload models.TagUpdate) (*models.Tag, error)
}

type tagServiceImpl struct {
	tagRepo      repositories.TagRepository
	bookmarkRepo repositories.BookmarkRepository
}

func NewTagService(tagRepo repositories.TagRepository, bookmarkRepo repositories.BookmarkRepository) TagService {
	return &tagServiceImpl{tagRepo: tagRepo, bookmarkRepo: bookmarkRepo}
}

// NormalizeTagName is the canonical tag-name form: trimmed and lowercased.
// Every creation and lookup path goes through it so "React", " react " and
// "REACT" land on the same row.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *tagServiceImpl) AddTag(ctx context.Context, userID primitive.ObjectID, tag models.Tag) (*models.Tag, error) {
	log.Debug().Str("userID", userID.Hex()).Str("name", tag.Name).Msg("Attempting to add tag")
	name := NormalizeTagName(tag.Name)
	if name == "" {
		log.Warn().Str("userID", userID.Hex()).Msg("Tag name is required")
		return nil, fmt.Errorf("%w: tag name is required", ErrValidation)
	}

	newTag := models.Tag{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}

	created, err := s.tagRepo.Create(ctx, &newTag)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn().Str("userID", userID.Hex()).Str("name", name).Msg("Tag already exists for this user")
			return nil, fmt.Errorf("tag already exists for this user")
		}
		log.Error().Err(err).Str("userID", userID.Hex()).Str("name", name).Msg("Error inserting tag")
		return nil, err
	}

	metrics.TagCreatedTotal.Inc()
	log.Info().Str("userID", userID.Hex()).Str("tagID", created.ID.Hex()).Msg("Tag added successfully")
	return created, nil
}

// ResolveTags maps tag names to persisted tags scoped to the user, creating
// any that are missing. Input order is preserved and duplicate names (after
// normalization) resolve to the same tag without extra rows. A lost creation
// race against a concurrent request is settled by re-reading the row the
// winner inserted.
func (s *tagServiceImpl) ResolveTags(ctx context.Context, userID primitive.ObjectID, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	resolved := make([]models.Tag, 0, len(names))
	byName := make(map[string]models.Tag)

	for _, rawName := range names {
		name := NormalizeTagName(rawName)
		if name == "" {
			continue
		}

		if tag, ok := byName[name]; ok {
			resolved = append(resolved, tag)
			continue
		}

		tag, err := s.findOrCreateTag(ctx, userID, name)
		if err != nil {
			return nil, err
		}

		byName[name] = *tag
		resolved = append(resolved, *tag)
	}

	return resolved, nil
}

func (s *tagServiceImpl) findOrCreateTag(ctx context.Context, userID primitive.ObjectID, name string) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByName(ctx, userID, name)
	if err == nil {
		return tag, nil
	}
	if err != mongo.ErrNoDocuments {
		log.Error().Err(err).Str("userID", userID.Hex()).Str("name", name).Msg("Error looking up tag by name")
		return nil, err
	}

	newTag := models.Tag{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	created, err := s.tagRepo.Create(ctx, &newTag)
	if err == nil {
		metrics.TagCreatedTotal.Inc()
		return created, nil
	}

	if mongo.IsDuplicateKeyError(err) {
		// Another request created the same tag between our lookup and
		// insert; the unique index guarantees the re-read finds it.
		log.Debug().Str("userID", userID.Hex()).Str("name", name).Msg("Lost tag creation race, re-reading existing tag")
		return s.tagRepo.FindByName(ctx, userID, name)
	}

	log.Error().Err(err).Str("userID", userID.Hex()).Str("name", name).Msg("Error creating tag")
	return nil, err
}

func (s *tagServiceImpl) GetTagsByID(ctx context.Context, userID primitive.ObjectID, tagIDs []primitive.ObjectID) ([]models.Tag, error) {
	log.Debug().Str("userID", userID.Hex()).Int("count", len(tagIDs)).Msg("Attempting to retrieve tags by IDs")
	if len(tagIDs) == 0 {
		return []models.Tag{}, nil
	}
	tags, err := s.tagRepo.FindByIDs(ctx, userID, tagIDs)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error finding tags by IDs")
		return nil, err
	}
	return tags, nil
}

func (s *tagServiceImpl) GetUserTags(ctx context.Context, userID primitive.ObjectID) ([]models.Tag, error) {
	log.Debug().Str("userID", userID.Hex()).Msg("Attempting to retrieve user tags")
	tags, err := s.tagRepo.FindByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error finding tags for user")
		return nil, err
	}
	log.Debug().Str("userID", userID.Hex()).Int("count", len(tags)).Msg("Successfully retrieved user tags")
	return tags, nil
}

// DeleteTag removes the tag row and detaches it from every bookmark that
// references it. The bookmarks themselves survive.
func (s *tagServiceImpl) DeleteTag(ctx context.Context, userID, tagID primitive.ObjectID) (bool, error) {
	log.Debug().Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("Attempting to delete tag")
	result, err := s.tagRepo.Delete(ctx, userID, tagID)
	if err != nil {
		log.Error().Err(err).Str("tag_id", tagID.Hex()).Str("user_id", userID.Hex()).Msg("Failed to delete tag")
		return false, err
	}

	if result.DeletedCount == 0 {
		log.Warn().Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("Tag not found or unauthorized to delete")
		return false, fmt.Errorf("%w: tag", ErrNotFound)
	}

	if err := s.bookmarkRepo.DetachTag(ctx, userID, tagID); err != nil {
		log.Error().Err(err).Str("tag_id", tagID.Hex()).Str("user_id", userID.Hex()).Msg("Failed to detach deleted tag from bookmarks")
		return false, err
	}

	log.Info().Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("Tag deleted successfully")
	return true, nil
}

func (s *tagServiceImpl) UpdateTag(ctx context.Context, userID, tagID primitive.ObjectID, updatePayload models.TagUpdate) (*models.Tag, error) {
	log.Debug().Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("Attempting to update tag")
	if updatePayload.Name == nil {
		log.Warn().Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("No fields to update for tag")
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	name := NormalizeTagName(*updatePayload.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrValidation)
	}

	updateFields := bson.M{"name": name}
	result, err := s.tagRepo.Update(ctx, userID, tagID, updateFields)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn().Err(err).Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("Tag name already exists for this user during update")
			return nil, fmt.Errorf("tag name already exists for this user")
		}
		log.Error().Err(err).Str("tag_id", tagID.Hex()).Str("user_id", userID.Hex()).Msg("Failed to update tag")
		return nil, fmt.Errorf("failed to update tag")
	}

	if result.MatchedCount == 0 {
		log.Warn().Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("Tag not found or unauthorized to update")
		return nil, fmt.Errorf("%w: tag", ErrNotFound)
	}

	updatedTag, err := s.tagRepo.FindByID(ctx, userID, tagID)
	if err != nil {
		log.Error().Err(err).Str("tag_id", tagID.Hex()).Str("user_id", userID.Hex()).Msg("Failed to find updated tag")
		return nil, fmt.Errorf("failed to retrieve the updated tag")
	}
	log.Info().Str("userID", userID.Hex()).Str("tagID", tagID.Hex()).Msg("Tag updated successfully")
	return updatedTag, nil
}
