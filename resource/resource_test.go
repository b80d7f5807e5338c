package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/whiskers-api/schema"
	"github.com/stevemurr/whiskers-api/store"
)

func TestDevlogValidate(t *testing.T) {
	doc, err := Devlog.Validate(map[string]any{
		"title":        "First post",
		"content":      "Hello",
		"tags":         []any{"a", "b"},
		"published_at": "2024-01-15T10:00:00Z",
		"unknown":      "dropped",
	})
	require.NoError(t, err)

	assert.Equal(t, "First post", doc["title"])
	assert.Equal(t, []string{"a", "b"}, doc["tags"])
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), doc["published_at"])
	assert.Nil(t, doc["summary"])
	assert.Contains(t, doc, "cover_image")
	assert.NotContains(t, doc, "unknown")
}

func TestDevlogValidateDefaults(t *testing.T) {
	doc, err := Devlog.Validate(map[string]any{"title": "t", "content": "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, doc["tags"])
	assert.Nil(t, doc["published_at"])
}

func TestDevlogValidateMissingFields(t *testing.T) {
	_, err := Devlog.Validate(map[string]any{"summary": float64(3)})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title", "content", "summary"}, verr.Fields())
}

func TestValidateRejectsNonObject(t *testing.T) {
	for _, body := range []any{nil, "text", []any{}, float64(1)} {
		_, err := Feedbacks.Validate(body)
		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr, "body %v", body)
	}
}

func TestMilestoneStatus(t *testing.T) {
	doc, err := Milestones.Validate(map[string]any{"title": "Alpha release"})
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, doc["status"])

	doc, err = Milestones.Validate(map[string]any{"title": "Alpha release", "status": "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, doc["status"])

	_, err = Milestones.Validate(map[string]any{"title": "Alpha release", "status": "someday"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "enum", verr.Errors[0].Type)
}

func TestMilestoneBadDate(t *testing.T) {
	_, err := Milestones.Validate(map[string]any{"title": "x", "target_date": "soon"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"target_date"}, verr.Errors[0].Loc)
}

func TestFeedbackValidate(t *testing.T) {
	doc, err := Feedbacks.Validate(map[string]any{"message": "great game", "email": "not-an-email", "topic": nil})
	require.NoError(t, err)
	assert.Equal(t, store.Document{
		"name":    nil,
		"email":   "not-an-email",
		"message": "great game",
		"topic":   nil,
	}, doc)

	_, err = Feedbacks.Validate(map[string]any{"name": "anon"})
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	k, ok := Lookup("milestone")
	require.True(t, ok)
	assert.Equal(t, Milestones.Collection, k.Collection)

	_, ok = Lookup("users")
	assert.False(t, ok)
	assert.Len(t, Kinds(), 3)
}

func TestDevlogPostView(t *testing.T) {
	when := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		doc  store.Document
	}{
		{"native values", store.Document{
			"_id": "65a4f0c2e1d3b4a5c6d7e8f9", "title": "t", "content": "c",
			"tags": []string{"a", "b"}, "published_at": when, "created_at": when,
		}},
		{"json round-tripped values", store.Document{
			"_id": "65a4f0c2e1d3b4a5c6d7e8f9", "title": "t", "content": "c",
			"tags": []any{"a", "b"}, "published_at": "2024-01-15T10:00:00Z", "summary": nil,
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewDevlogPostView(tc.doc)
			assert.Equal(t, "65a4f0c2e1d3b4a5c6d7e8f9", v.ID)
			assert.Equal(t, []string{"a", "b"}, v.Tags)
			require.NotNil(t, v.PublishedAt)
			assert.Equal(t, "2024-01-15T10:00:00Z", *v.PublishedAt)
			assert.Nil(t, v.Summary)
			assert.Nil(t, v.CoverImage)
		})
	}
}

func TestDevlogPostViewEmptyTags(t *testing.T) {
	v := NewDevlogPostView(store.Document{"_id": "x", "title": "t", "content": "c"})
	assert.NotNil(t, v.Tags)
	assert.Empty(t, v.Tags)
	assert.Nil(t, v.PublishedAt)
}

func TestMilestoneView(t *testing.T) {
	v := NewMilestoneView(store.Document{
		"_id": "65a4f0c2e1d3b4a5c6d7e8f9", "title": "Alpha release",
		"description": nil, "status": "in_progress", "target_date": nil,
	})
	assert.Equal(t, MilestoneView{
		ID:     "65a4f0c2e1d3b4a5c6d7e8f9",
		Title:  "Alpha release",
		Status: "in_progress",
	}, v)
}
