package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pindrop/internal/models"
	"pindrop/internal/repositories"
)

type fakeBookmarkRepoForAnalytics struct {
	repositories.BookmarkRepository
	total  int64
	counts map[primitive.ObjectID]int64
	order  []primitive.ObjectID
}

func (r *fakeBookmarkRepoForAnalytics) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.total, nil
}

func (r *fakeBookmarkRepoForAnalytics) TopTagIDs(ctx context.Context, userID primitive.ObjectID, limit int64) (map[primitive.ObjectID]int64, []primitive.ObjectID, error) {
	return r.counts, r.order, nil
}

type fakeTagRepoForAnalytics struct {
	repositories.TagRepository
	total int64
	tags  []models.Tag
}

func (r *fakeTagRepoForAnalytics) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.total, nil
}

func (r *fakeTagRepoForAnalytics) FindByIDs(ctx context.Context, userID primitive.ObjectID, tagIDs []primitive.ObjectID) ([]models.Tag, error) {
	return r.tags, nil
}

func TestGetOverview(t *testing.T) {
	userID := primitive.NewObjectID()
	golangTag := models.Tag{ID: primitive.NewObjectID(), UserID: userID, Name: "golang"}
	dockerTag := models.Tag{ID: primitive.NewObjectID(), UserID: userID, Name: "docker"}

	bookmarkRepo := &fakeBookmarkRepoForAnalytics{
		total: 12,
		counts: map[primitive.ObjectID]int64{
			golangTag.ID: 7,
			dockerTag.ID: 3,
		},
		order: []primitive.ObjectID{golangTag.ID, dockerTag.ID},
	}
	tagRepo := &fakeTagRepoForAnalytics{total: 4, tags: []models.Tag{dockerTag, golangTag}}

	svc := NewAnalyticsService(bookmarkRepo, tagRepo)
	overview, err := svc.GetOverview(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), overview.TotalBookmarks)
	assert.Equal(t, int64(4), overview.TotalTags)
	assert.Len(t, overview.TopTags, 2)
	assert.Equal(t, "golang", overview.TopTags[0].Tag.Name)
	assert.Equal(t, int64(7), overview.TopTags[0].Count)
	assert.Equal(t, "docker", overview.TopTags[1].Tag.Name)
	assert.Equal(t, int64(3), overview.TopTags[1].Count)
}

func TestGetOverviewSkipsOrphanedTagIDs(t *testing.T) {
	userID := primitive.NewObjectID()
	keptTag := models.Tag{ID: primitive.NewObjectID(), UserID: userID, Name: "golang"}
	deletedID := primitive.NewObjectID()

	bookmarkRepo := &fakeBookmarkRepoForAnalytics{
		counts: map[primitive.ObjectID]int64{keptTag.ID: 2, deletedID: 5},
		order:  []primitive.ObjectID{deletedID, keptTag.ID},
	}
	tagRepo := &fakeTagRepoForAnalytics{tags: []models.Tag{keptTag}}

	svc := NewAnalyticsService(bookmarkRepo, tagRepo)
	overview, err := svc.GetOverview(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, overview.TopTags, 1)
	assert.Equal(t, "golang", overview.TopTags[0].Tag.Name)
}
