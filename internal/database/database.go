package database

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Name = "pindrop"

type Service interface {
	Health() map[string]string
	Client() *mongo.Client
}

type service struct {
	db *mongo.Client
}

func New() Service {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal().Msg("MONGO_URI environment variable not set")
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	s := &service{db: client}
	if err := s.ensureIndexes(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to create unique indexes")
	}
	return s
}

// ensureIndexes sets up the uniqueness constraints the services rely on:
// one account per email, one bookmark per (owner, url) and one tag per
// (owner, name). The tag index is what turns the concurrent find-or-create
// race into a catchable duplicate-key error.
func (s *service) ensureIndexes(ctx context.Context) error {
	db := s.db.Database(Name)

	indexes := []struct {
		collection string
		keys       bson.D
	}{
		{"users", bson.D{{Key: "email", Value: 1}}},
		{"bookmarks", bson.D{{Key: "user_id", Value: 1}, {Key: "url", Value: 1}}},
		{"tags", bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}}},
	}

	for _, idx := range indexes {
		model := mongo.IndexModel{
			Keys:    idx.keys,
			Options: options.Index().SetUnique(true),
		}
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := s.db.Ping(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Database health check failed")
		return map[string]string{
			"message": "db down",
			"error":   err.Error(),
		}
	}

	return map[string]string{
		"message": "It's healthy",
	}
}

func (s *service) Client() *mongo.Client {
	return s.db
}
