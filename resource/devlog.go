package resource

import (
	"time"

	"github.com/stevemurr/whiskers-api/store"
)

// DevlogPost is a development log entry about progress or updates.
type DevlogPost struct {
	Title       string
	Summary     *string
	Content     string
	CoverImage  *string
	Tags        []string
	PublishedAt *time.Time
}

var devlogSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":        map[string]any{"type": "string", "description": "Post title"},
		"summary":      nullableString("Short summary for previews"),
		"content":      map[string]any{"type": "string", "description": "Full markdown or text content"},
		"cover_image":  nullableString("Image URL"),
		"tags":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Topic tags"},
		"published_at": nullableDateTime("Publish date"),
	},
	"required": []any{"title", "content"},
}

func parseDevlogPost(raw map[string]any) DevlogPost {
	return DevlogPost{
		Title:       str(raw, "title"),
		Summary:     optString(raw, "summary"),
		Content:     str(raw, "content"),
		CoverImage:  optString(raw, "cover_image"),
		Tags:        strList(raw, "tags"),
		PublishedAt: optTime(raw, "published_at"),
	}
}

// Document is the stored form of the post.
func (p DevlogPost) Document() store.Document {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return store.Document{
		"title":        p.Title,
		"summary":      orNil(p.Summary),
		"content":      p.Content,
		"cover_image":  orNil(p.CoverImage),
		"tags":         tags,
		"published_at": orNil(p.PublishedAt),
	}
}

// DevlogPostView is a devlog post as returned to API callers.
type DevlogPostView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     *string  `json:"summary"`
	Content     string   `json:"content"`
	CoverImage  *string  `json:"cover_image"`
	Tags        []string `json:"tags"`
	PublishedAt *string  `json:"published_at"`
}

func NewDevlogPostView(doc store.Document) DevlogPostView {
	return DevlogPostView{
		ID:          docID(doc),
		Title:       docString(doc, "title"),
		Summary:     docOptString(doc, "summary"),
		Content:     docString(doc, "content"),
		CoverImage:  docOptString(doc, "cover_image"),
		Tags:        docStrings(doc, "tags"),
		PublishedAt: docTime(doc, "published_at"),
	}
}
