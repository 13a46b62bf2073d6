package models

// TagUsage pairs a tag with the number of bookmarks referencing it.
type TagUsage struct {
	Tag   Tag   `json:"tag"`
	Count int64 `json:"count"`
}

type AnalyticsOverview struct {
	TotalBookmarks int64      `json:"total_bookmarks"`
	TotalTags      int64      `json:"total_tags"`
	TopTags        []TagUsage `json:"top_tags"`
}
