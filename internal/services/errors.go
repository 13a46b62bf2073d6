package services

import "errors"

// Sentinel errors the handlers translate into HTTP statuses. Scrape and
// keyword-extraction failures never surface here; they are absorbed inside
// the auto-tagging pipeline.
var (
	// ErrDuplicateURL means the user has already bookmarked this URL.
	ErrDuplicateURL = errors.New("you have already bookmarked this URL")

	// ErrValidation covers malformed input caught before any storage access.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers lookups scoped to a user that matched nothing.
	ErrNotFound = errors.New("not found")
)
