package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Bookmark struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      primitive.ObjectID   `json:"user_id" bson:"user_id"`
	URL         string               `json:"url" bson:"url"`
	Title       string               `json:"title,omitempty" bson:"title,omitempty"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	TagsID      []primitive.ObjectID `json:"tags_id" bson:"tags_id"`
	CreatedAt   primitive.DateTime   `json:"created_at" bson:"created_at"`

	// Tags is populated from TagsID when a bookmark is returned to the client.
	Tags []Tag `json:"tags,omitempty" bson:"-"`
}

type AddBookmarkRequestBody struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type UpdateBookmarkRequestBody struct {
	URL         *string   `json:"url,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// TagSuggestion is the transient result of the auto-tagging pipeline. It is
// never persisted; it only lives for the duration of one bookmark creation.
type TagSuggestion struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}
