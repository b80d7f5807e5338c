package resource

import (
	"time"

	"github.com/stevemurr/whiskers-api/store"
)

// Milestone statuses. Bodies carrying any other value are rejected.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Milestone is a roadmap milestone.
type Milestone struct {
	Title       string
	Description *string
	Status      string
	TargetDate  *time.Time
}

var milestoneSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string", "description": "Milestone title"},
		"description": nullableString("What this milestone includes"),
		"status": map[string]any{
			"type":        "string",
			"enum":        []any{StatusPlanned, StatusInProgress, StatusDone},
			"default":     StatusPlanned,
			"description": "planned | in_progress | done",
		},
		"target_date": nullableDateTime("Target completion date"),
	},
	"required": []any{"title"},
}

func parseMilestone(raw map[string]any) Milestone {
	status := str(raw, "status")
	if status == "" {
		status = StatusPlanned
	}
	return Milestone{
		Title:       str(raw, "title"),
		Description: optString(raw, "description"),
		Status:      status,
		TargetDate:  optTime(raw, "target_date"),
	}
}

// Document is the stored form of the milestone.
func (m Milestone) Document() store.Document {
	return store.Document{
		"title":       m.Title,
		"description": orNil(m.Description),
		"status":      m.Status,
		"target_date": orNil(m.TargetDate),
	}
}

// MilestoneView is a milestone as returned to API callers.
type MilestoneView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	TargetDate  *string `json:"target_date"`
}

func NewMilestoneView(doc store.Document) MilestoneView {
	return MilestoneView{
		ID:          docID(doc),
		Title:       docString(doc, "title"),
		Description: docOptString(doc, "description"),
		Status:      docString(doc, "status"),
		TargetDate:  docTime(doc, "target_date"),
	}
}
