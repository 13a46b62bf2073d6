package repositories

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pindrop/internal/database"
	"pindrop/internal/models"
)

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	FindByID(ctx context.Context, userID, tagID primitive.ObjectID) (*models.Tag, error)
	FindByIDs(ctx context.Context, userID primitive.ObjectID, tagIDs []primitive.ObjectID) ([]models.Tag, error)
	FindByName(ctx context.Context, userID primitive.ObjectID, name string) (*models.Tag, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Tag, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, userID, tagID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, userID, tagID primitive.ObjectID) (*mongo.DeleteResult, error)
}

type tagRepository struct {
	db database.Service
}

func NewTagRepository(db database.Service) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) collection() *mongo.Collection {
	return r.db.Client().Database(database.Name).Collection("tags")
}

// Create inserts a tag. The unique (user_id, name) index makes the insert
// fail with a duplicate-key error when two requests race on the same name;
// callers are expected to re-read the winning row in that case.
func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	_, err := r.collection().InsertOne(ctx, tag)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		log.Error().Err(err).Str("tag_name", tag.Name).Str("user_id", tag.UserID.Hex()).Msg("Failed to insert tag")
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}
	return tag, nil
}

func (r *tagRepository) FindByID(ctx context.Context, userID, tagID primitive.ObjectID) (*models.Tag, error) {
	var tag models.Tag
	filter := bson.M{"_id": tagID, "user_id": userID}
	err := r.collection().FindOne(ctx, filter).Decode(&tag)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByIDs(ctx context.Context, userID primitive.ObjectID, tagIDs []primitive.ObjectID) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return []models.Tag{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": tagIDs}, "user_id": userID}
	cursor, err := r.collection().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tags: %w", err)
	}
	defer cursor.Close(ctx)

	var tags []models.Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("error decoding tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepository) FindByName(ctx context.Context, userID primitive.ObjectID, name string) (*models.Tag, error) {
	var tag models.Tag
	filter := bson.M{"user_id": userID, "name": name}
	err := r.collection().FindOne(ctx, filter).Decode(&tag)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Tag, error) {
	var tags []models.Tag
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tags: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("error decoding tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return count, nil
}

func (r *tagRepository) Update(ctx context.Context, userID, tagID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error) {
	filter := bson.M{"_id": tagID, "user_id": userID}
	update := bson.M{"$set": updateFields}
	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return result, nil
}

func (r *tagRepository) Delete(ctx context.Context, userID, tagID primitive.ObjectID) (*mongo.DeleteResult, error) {
	filter := bson.M{"_id": tagID, "user_id": userID}
	result, err := r.collection().DeleteOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to delete tag: %w", err)
	}
	return result, nil
}
