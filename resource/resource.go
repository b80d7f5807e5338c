// Package resource defines the devlog, milestone and feedback resources:
// their JSON schemas, typed records and output views.
package resource

import (
	"time"

	"github.com/stevemurr/whiskers-api/schema"
	"github.com/stevemurr/whiskers-api/store"
)

// Kind describes one resource type: the collection it lives in, the JSON
// schema request bodies must satisfy, and how a valid body becomes a
// stored document.
type Kind struct {
	Collection string
	Schema     map[string]any
	normalize  func(raw map[string]any) store.Document
}

// Validate checks body against the kind's schema and returns the document
// to persist. Unknown fields are dropped and defaults applied. A failure is
// always a *schema.ValidationError.
func (k Kind) Validate(body any) (store.Document, error) {
	if err := schema.ValidateValue(k.Schema, body); err != nil {
		return nil, err
	}
	return k.normalize(body.(map[string]any)), nil
}

var (
	Devlog = Kind{
		Collection: "devlogpost",
		Schema:     devlogSchema,
		normalize:  func(raw map[string]any) store.Document { return parseDevlogPost(raw).Document() },
	}
	Milestones = Kind{
		Collection: "milestone",
		Schema:     milestoneSchema,
		normalize:  func(raw map[string]any) store.Document { return parseMilestone(raw).Document() },
	}
	Feedbacks = Kind{
		Collection: "feedback",
		Schema:     feedbackSchema,
		normalize:  func(raw map[string]any) store.Document { return parseFeedback(raw).Document() },
	}
)

// Kinds lists every resource kind in a stable order.
func Kinds() []Kind {
	return []Kind{Devlog, Milestones, Feedbacks}
}

// Lookup finds a kind by collection name.
func Lookup(collection string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.Collection == collection {
			return k, true
		}
	}
	return Kind{}, false
}

// nullableString is the schema for an optional string field.
func nullableString(description string) map[string]any {
	return map[string]any{"type": []any{"string", "null"}, "description": description}
}

func nullableDateTime(description string) map[string]any {
	return map[string]any{"type": []any{"string", "null"}, "format": "date-time", "description": description}
}

// ---------- raw body accessors ----------
//
// These run after schema validation, so type assertions cannot fail on a
// present value.

func str(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func optString(raw map[string]any, key string) *string {
	s, ok := raw[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func strList(raw map[string]any, key string) []string {
	out := []string{}
	items, _ := raw[key].([]any)
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func optTime(raw map[string]any, key string) *time.Time {
	s, ok := raw[key].(string)
	if !ok {
		return nil
	}
	t, err := schema.ParseTime(s)
	if err != nil {
		return nil
	}
	return &t
}

// orNil stores absent optionals as an untyped nil so every backend
// persists a plain null.
func orNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
