package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pindrop/internal/models"
	"pindrop/internal/repositories"
)

type fakeBookmarkRepo struct {
	repositories.BookmarkRepository
	existing    map[string]*models.Bookmark
	dupOnCreate bool
	created     []*models.Bookmark
}

func newFakeBookmarkRepo() *fakeBookmarkRepo {
	return &fakeBookmarkRepo{existing: make(map[string]*models.Bookmark)}
}

func (r *fakeBookmarkRepo) FindOne(ctx context.Context, filter bson.M) (*models.Bookmark, error) {
	url, _ := filter["url"].(string)
	if bm, ok := r.existing[url]; ok {
		return bm, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeBookmarkRepo) Create(ctx context.Context, bm *models.Bookmark) (*models.Bookmark, error) {
	if r.dupOnCreate {
		return nil, duplicateKeyError()
	}
	r.created = append(r.created, bm)
	r.existing[bm.URL] = bm
	return bm, nil
}

type stubTagService struct {
	TagService
	resolvedNames []string
}

func (s *stubTagService) ResolveTags(ctx context.Context, userID primitive.ObjectID, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		normalized := NormalizeTagName(name)
		if normalized == "" {
			continue
		}
		s.resolvedNames = append(s.resolvedNames, normalized)
		tags = append(tags, models.Tag{ID: primitive.NewObjectID(), UserID: userID, Name: normalized})
	}
	return tags, nil
}

type stubAutotag struct {
	suggestion models.TagSuggestion
	calls      int
}

func (s *stubAutotag) GenerateTags(ctx context.Context, url string) (models.TagSuggestion, error) {
	s.calls++
	return s.suggestion, nil
}

func (s *stubAutotag) ExtractKeywords(title, description string) []string {
	return s.suggestion.Tags
}

func TestAddBookmark(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("rejects missing or malformed URLs", func(t *testing.T) {
		svc := NewBookmarkService(newFakeBookmarkRepo(), &stubTagService{}, &stubAutotag{})

		for _, url := range []string{"", "not a url", "ftp://example.com/file"} {
			_, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{URL: url})
			assert.ErrorIs(t, err, ErrValidation, "url %q", url)
		}
	})

	t.Run("rejects URLs already bookmarked by the user", func(t *testing.T) {
		repo := newFakeBookmarkRepo()
		repo.existing["https://example.com"] = &models.Bookmark{ID: primitive.NewObjectID(), UserID: userID, URL: "https://example.com"}
		autotag := &stubAutotag{}
		svc := NewBookmarkService(repo, &stubTagService{}, autotag)

		_, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{URL: "https://example.com"})
		assert.ErrorIs(t, err, ErrDuplicateURL)
		assert.Equal(t, 0, autotag.calls)
	})

	t.Run("skips auto-tagging when caller supplies tags", func(t *testing.T) {
		repo := newFakeBookmarkRepo()
		tagSvc := &stubTagService{}
		autotag := &stubAutotag{suggestion: models.TagSuggestion{Tags: []string{"should-not-appear"}}}
		svc := NewBookmarkService(repo, tagSvc, autotag)

		bm, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{
			URL:   "https://example.com",
			Title: "My Title",
			Tags:  []string{"golang", "testing"},
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, autotag.calls)
		assert.Equal(t, []string{"golang", "testing"}, tagSvc.resolvedNames)
		assert.Equal(t, "My Title", bm.Title)
		assert.Len(t, bm.Tags, 2)
	})

	t.Run("auto-tags and adopts scraped title when caller omits both", func(t *testing.T) {
		repo := newFakeBookmarkRepo()
		tagSvc := &stubTagService{}
		autotag := &stubAutotag{suggestion: models.TagSuggestion{
			Title: "Scraped Title",
			Tags:  []string{"kubernetes", "docker"},
		}}
		svc := NewBookmarkService(repo, tagSvc, autotag)

		bm, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{URL: "https://example.com"})
		assert.NoError(t, err)
		assert.Equal(t, 1, autotag.calls)
		assert.Equal(t, "Scraped Title", bm.Title)
		assert.Equal(t, []string{"kubernetes", "docker"}, tagSvc.resolvedNames)
	})

	t.Run("caller title wins over scraped title", func(t *testing.T) {
		repo := newFakeBookmarkRepo()
		autotag := &stubAutotag{suggestion: models.TagSuggestion{Title: "Scraped Title", Tags: []string{"golang"}}}
		svc := NewBookmarkService(repo, &stubTagService{}, autotag)

		bm, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{
			URL:   "https://example.com",
			Title: "Caller Title",
		})
		assert.NoError(t, err)
		assert.Equal(t, "Caller Title", bm.Title)
	})

	t.Run("sentinel tags from the pipeline are persisted like any tag", func(t *testing.T) {
		repo := newFakeBookmarkRepo()
		tagSvc := &stubTagService{}
		autotag := &stubAutotag{suggestion: models.TagSuggestion{Tags: []string{TagUncategorized}}}
		svc := NewBookmarkService(repo, tagSvc, autotag)

		bm, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{URL: "https://example.com"})
		assert.NoError(t, err)
		assert.Equal(t, []string{TagUncategorized}, tagSvc.resolvedNames)
		assert.Len(t, bm.TagsID, 1)
	})

	t.Run("insert race maps duplicate key to conflict", func(t *testing.T) {
		repo := newFakeBookmarkRepo()
		repo.dupOnCreate = true
		svc := NewBookmarkService(repo, &stubTagService{}, &stubAutotag{suggestion: models.TagSuggestion{Tags: []string{"golang"}}})

		_, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{URL: "https://example.com"})
		assert.ErrorIs(t, err, ErrDuplicateURL)
	})
}

func TestGetBookmarksFilterValidation(t *testing.T) {
	svc := NewBookmarkService(newFakeBookmarkRepo(), &stubTagService{}, &stubAutotag{})

	t.Run("rejects malformed tag ids", func(t *testing.T) {
		query := map[string][]string{"tags": {"not-a-hex-id"}}
		_, err := svc.GetBookmarks(context.Background(), primitive.NewObjectID(), query)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects non-positive page", func(t *testing.T) {
		query := map[string][]string{"page": {"0"}}
		_, err := svc.GetBookmarks(context.Background(), primitive.NewObjectID(), query)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
