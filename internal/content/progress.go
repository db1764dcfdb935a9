package content

import (
	"encoding/json"
	"time"

	"folio/internal/tags"
)

// Progress statuses and priorities use the wire constants of the stored data.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Todo is one sub-task on a progress card.
type Todo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// ProgressItem is one work-in-progress card.
type ProgressItem struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Tags             []string   `json:"tags"`
	DescriptionShort string     `json:"descriptionShort"`
	DescriptionFull  string     `json:"descriptionFull"`
	ImageFinalURL    string     `json:"imageFinalUrl"`
	ImageCurrentURL  string     `json:"imageCurrentUrl"`
	Todos            []Todo     `json:"todos"`
	Percent          int        `json:"percent"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	DueDate          *time.Time `json:"dueDate"`
	Order            int        `json:"order"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// DefaultProgressItem returns the item a fresh "add" starts from.
func DefaultProgressItem() ProgressItem {
	return ProgressItem{
		Title:    "New progress item",
		Tags:     []string{},
		Todos:    []Todo{},
		Percent:  0,
		Status:   StatusTodo,
		Priority: PriorityMedium,
	}
}

func (p ProgressItem) RecordID() string { return p.ID }

func (p ProgressItem) WithID(id string) ProgressItem { p.ID = id; return p }

func (p ProgressItem) WithOrder(n int) ProgressItem { p.Order = n; return p }

func (p ProgressItem) Ordinal() int { return p.Order }

func (p ProgressItem) WithStamps(created, updated time.Time) ProgressItem {
	if !created.IsZero() {
		p.CreatedAt = created
	}
	if !updated.IsZero() {
		p.UpdatedAt = updated
	}
	return p
}

func (p ProgressItem) Created() time.Time { return p.CreatedAt }

// Normalize canonicalizes tags, clamps the completion percentage to 0-100,
// and backfills enum fields left empty by partial payloads.
func (p ProgressItem) Normalize() ProgressItem {
	p.Tags = tags.NormalizeAll(p.Tags)
	p.Percent = ClampPercent(p.Percent)
	if p.Status == "" {
		p.Status = StatusTodo
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.Todos == nil {
		p.Todos = []Todo{}
	}
	return p
}

// ClampPercent bounds a completion percentage to 0-100.
func ClampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// ProgressPatch is a typed partial update. Nil fields are left unchanged.
// DueDate distinguishes "not in the patch" (nil) from "clear the due date"
// (pointer to nil).
type ProgressPatch struct {
	Title            *string     `json:"title"`
	Tags             *[]string   `json:"tags"`
	DescriptionShort *string     `json:"descriptionShort"`
	DescriptionFull  *string     `json:"descriptionFull"`
	ImageFinalURL    *string     `json:"imageFinalUrl"`
	ImageCurrentURL  *string     `json:"imageCurrentUrl"`
	Todos            *[]Todo     `json:"todos"`
	Percent          *int        `json:"percent"`
	Status           *string     `json:"status"`
	Priority         *string     `json:"priority"`
	DueDate          **time.Time `json:"dueDate"`
}

func (patch ProgressPatch) Apply(p ProgressItem) ProgressItem {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.DescriptionShort != nil {
		p.DescriptionShort = *patch.DescriptionShort
	}
	if patch.DescriptionFull != nil {
		p.DescriptionFull = *patch.DescriptionFull
	}
	if patch.ImageFinalURL != nil {
		p.ImageFinalURL = *patch.ImageFinalURL
	}
	if patch.ImageCurrentURL != nil {
		p.ImageCurrentURL = *patch.ImageCurrentURL
	}
	if patch.Todos != nil {
		p.Todos = *patch.Todos
	}
	if patch.Percent != nil {
		p.Percent = *patch.Percent
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Priority != nil {
		p.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		p.DueDate = *patch.DueDate
	}
	return p
}

// DecodeProgressItems parses a JSON array of progress items, backfilling the
// documented defaults for missing keys and normalizing tags. Anything that is
// not an array decodes to nil.
func DecodeProgressItems(raw []byte) []ProgressItem {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}
	out := make([]ProgressItem, 0, len(rows))
	for _, row := range rows {
		item := ProgressItem{
			Tags:     []string{},
			Todos:    []Todo{},
			Status:   StatusTodo,
			Priority: PriorityMedium,
		}
		if err := json.Unmarshal(row, &item); err != nil {
			continue
		}
		out = append(out, item.Normalize())
	}
	return out
}

// SampleProgress is the documented default state used when the durable slot
// is absent or unreadable.
func SampleProgress(now time.Time) []ProgressItem {
	return []ProgressItem{
		{
			ID:               "sample-progress-1",
			Title:            "Progress item 1",
			Tags:             tags.NormalizeAll([]string{"Modeling"}),
			DescriptionShort: "A quick note on where this stands",
			Todos:            []Todo{},
			Percent:          30,
			Status:           StatusInProgress,
			Priority:         PriorityMedium,
			Order:            0,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:               "sample-progress-2",
			Title:            "Progress item 2",
			Tags:             tags.NormalizeAll([]string{"Scripting"}),
			DescriptionShort: "Another item in flight",
			Todos:            []Todo{},
			Percent:          70,
			Status:           StatusInProgress,
			Priority:         PriorityHigh,
			Order:            1,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}
}
