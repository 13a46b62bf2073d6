package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pindrop/internal/models"
	"pindrop/internal/repositories"
)

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

// fakeTagRepo keeps tags in memory keyed by normalized name. Setting
// raceOnName simulates a concurrent insert winning between the lookup and
// the create.
type fakeTagRepo struct {
	repositories.TagRepository
	tags       map[string]models.Tag
	raceOnName string
	creates    int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]models.Tag)}
}

func (r *fakeTagRepo) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	r.creates++
	if tag.Name == r.raceOnName {
		// The "winner" row appears as if another request inserted it.
		r.tags[tag.Name] = models.Tag{ID: primitive.NewObjectID(), UserID: tag.UserID, Name: tag.Name}
		r.raceOnName = ""
		return nil, duplicateKeyError()
	}
	if _, exists := r.tags[tag.Name]; exists {
		return nil, duplicateKeyError()
	}
	r.tags[tag.Name] = *tag
	return tag, nil
}

func (r *fakeTagRepo) FindByName(ctx context.Context, userID primitive.ObjectID, name string) (*models.Tag, error) {
	tag, ok := r.tags[name]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &tag, nil
}

type fakeBookmarkRepoForTags struct {
	repositories.BookmarkRepository
	detached []primitive.ObjectID
}

func (r *fakeBookmarkRepoForTags) DetachTag(ctx context.Context, userID, tagID primitive.ObjectID) error {
	r.detached = append(r.detached, tagID)
	return nil
}

func TestResolveTags(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("normalizes and collapses duplicate names to one tag", func(t *testing.T) {
		repo := newFakeTagRepo()
		svc := NewTagService(repo, &fakeBookmarkRepoForTags{})

		tags, err := svc.ResolveTags(context.Background(), userID, []string{"React", " react ", "REACT"})
		assert.NoError(t, err)
		assert.Len(t, tags, 3)
		assert.Equal(t, "react", tags[0].Name)
		assert.Equal(t, tags[0].ID, tags[1].ID)
		assert.Equal(t, tags[0].ID, tags[2].ID)
		assert.Equal(t, 1, repo.creates)
	})

	t.Run("skips empty names", func(t *testing.T) {
		repo := newFakeTagRepo()
		svc := NewTagService(repo, &fakeBookmarkRepoForTags{})

		tags, err := svc.ResolveTags(context.Background(), userID, []string{"", "  ", "golang"})
		assert.NoError(t, err)
		assert.Len(t, tags, 1)
		assert.Equal(t, "golang", tags[0].Name)
	})

	t.Run("reuses existing tags", func(t *testing.T) {
		repo := newFakeTagRepo()
		existing := models.Tag{ID: primitive.NewObjectID(), UserID: userID, Name: "golang"}
		repo.tags["golang"] = existing
		svc := NewTagService(repo, &fakeBookmarkRepoForTags{})

		tags, err := svc.ResolveTags(context.Background(), userID, []string{"GoLang"})
		assert.NoError(t, err)
		assert.Len(t, tags, 1)
		assert.Equal(t, existing.ID, tags[0].ID)
		assert.Equal(t, 0, repo.creates)
	})

	t.Run("lost creation race resolves to the winning row", func(t *testing.T) {
		repo := newFakeTagRepo()
		repo.raceOnName = "golang"
		svc := NewTagService(repo, &fakeBookmarkRepoForTags{})

		tags, err := svc.ResolveTags(context.Background(), userID, []string{"golang"})
		assert.NoError(t, err)
		assert.Len(t, tags, 1)
		assert.Equal(t, "golang", tags[0].Name)
		assert.Equal(t, repo.tags["golang"].ID, tags[0].ID)
	})

	t.Run("empty input resolves to no tags", func(t *testing.T) {
		repo := newFakeTagRepo()
		svc := NewTagService(repo, &fakeBookmarkRepoForTags{})

		tags, err := svc.ResolveTags(context.Background(), userID, nil)
		assert.NoError(t, err)
		assert.Empty(t, tags)
	})
}

type fakeTagRepoWithDelete struct {
	*fakeTagRepo
	deleted int64
}

func (r *fakeTagRepoWithDelete) Delete(ctx context.Context, userID, tagID primitive.ObjectID) (*mongo.DeleteResult, error) {
	return &mongo.DeleteResult{DeletedCount: r.deleted}, nil
}

func TestDeleteTagDetachesFromBookmarks(t *testing.T) {
	userID := primitive.NewObjectID()
	tagID := primitive.NewObjectID()

	bookmarkRepo := &fakeBookmarkRepoForTags{}
	svc := NewTagService(&fakeTagRepoWithDelete{fakeTagRepo: newFakeTagRepo(), deleted: 1}, bookmarkRepo)

	deleted, err := svc.DeleteTag(context.Background(), userID, tagID)
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []primitive.ObjectID{tagID}, bookmarkRepo.detached)
}

func TestDeleteTagNotFound(t *testing.T) {
	userID := primitive.NewObjectID()

	bookmarkRepo := &fakeBookmarkRepoForTags{}
	svc := NewTagService(&fakeTagRepoWithDelete{fakeTagRepo: newFakeTagRepo(), deleted: 0}, bookmarkRepo)

	deleted, err := svc.DeleteTag(context.Background(), userID, primitive.NewObjectID())
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, deleted)
	assert.Empty(t, bookmarkRepo.detached)
}

func TestAddTagNormalizesName(t *testing.T) {
	userID := primitive.NewObjectID()
	repo := newFakeTagRepo()
	svc := NewTagService(repo, &fakeBookmarkRepoForTags{})

	created, err := svc.AddTag(context.Background(), userID, models.Tag{Name: "  DevOps "})
	assert.NoError(t, err)
	assert.Equal(t, "devops", created.Name)

	_, err = svc.AddTag(context.Background(), userID, models.Tag{Name: "devops"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddTagRequiresName(t *testing.T) {
	svc := NewTagService(newFakeTagRepo(), &fakeBookmarkRepoForTags{})

	_, err := svc.AddTag(context.Background(), primitive.NewObjectID(), models.Tag{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}
