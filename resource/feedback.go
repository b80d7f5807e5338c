package resource

import "github.com/stevemurr/whiskers-api/store"

// Feedback is a visitor note or playtest report. Email is stored as given.
type Feedback struct {
	Name    *string
	Email   *string
	Message string
	Topic   *string
}

var feedbackSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":    nullableString("Visitor name"),
		"email":   nullableString("Contact email"),
		"message": map[string]any{"type": "string", "description": "Feedback message"},
		"topic":   nullableString("e.g. bug, idea, question"),
	},
	"required": []any{"message"},
}

func parseFeedback(raw map[string]any) Feedback {
	return Feedback{
		Name:    optString(raw, "name"),
		Email:   optString(raw, "email"),
		Message: str(raw, "message"),
		Topic:   optString(raw, "topic"),
	}
}

// Document is the stored form of the feedback.
func (f Feedback) Document() store.Document {
	return store.Document{
		"name":    orNil(f.Name),
		"email":   orNil(f.Email),
		"message": f.Message,
		"topic":   orNil(f.Topic),
	}
}
