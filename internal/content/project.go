// Package content defines the editable domain entities, their typed partial
// updates, default values, and tolerant JSON decoding. All update helpers are
// immutable: they return a modified copy and never touch shared slices in
// place.
package content

import (
	"encoding/json"
	"time"

	"folio/internal/tags"
)

// Attachment is a file carried by a project card. DataURL holds the embedded
// representation; URL is a remote reference that the offline bundler resolves.
type Attachment struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Mime    string `json:"mime"`
	Size    int64  `json:"size"`
	DataURL string `json:"dataUrl"`
	URL     string `json:"url"`
}

// Project is one portfolio entry.
type Project struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Tags             []string     `json:"tags"`
	DescriptionShort string       `json:"descriptionShort"`
	DescriptionFull  string       `json:"descriptionFull"`
	ThumbnailURL     string       `json:"thumbnailUrl"`
	MediaURL         string       `json:"mediaUrl"`
	Attachments      []Attachment `json:"attachments"`
	Order            int          `json:"order"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// DefaultProject returns the item a fresh "add" starts from.
func DefaultProject() Project {
	return Project{
		Title:       "New project",
		Tags:        []string{},
		Attachments: []Attachment{},
	}
}

func (p Project) RecordID() string { return p.ID }

func (p Project) WithID(id string) Project { p.ID = id; return p }

func (p Project) WithOrder(n int) Project { p.Order = n; return p }

func (p Project) Ordinal() int { return p.Order }

func (p Project) WithStamps(created, updated time.Time) Project {
	if !created.IsZero() {
		p.CreatedAt = created
	}
	if !updated.IsZero() {
		p.UpdatedAt = updated
	}
	return p
}

func (p Project) Created() time.Time { return p.CreatedAt }

// Normalize returns the project with its tags in canonical form. It is safe
// to call repeatedly.
func (p Project) Normalize() Project {
	p.Tags = tags.NormalizeAll(p.Tags)
	if p.Attachments == nil {
		p.Attachments = []Attachment{}
	}
	return p
}

// ProjectPatch is a typed partial update. Nil fields are left unchanged.
type ProjectPatch struct {
	Title            *string       `json:"title"`
	Tags             *[]string     `json:"tags"`
	DescriptionShort *string       `json:"descriptionShort"`
	DescriptionFull  *string       `json:"descriptionFull"`
	ThumbnailURL     *string       `json:"thumbnailUrl"`
	MediaURL         *string       `json:"mediaUrl"`
	Attachments      *[]Attachment `json:"attachments"`
}

// Apply merges the patch into p. Tag normalization happens in the store via
// Normalize, so the patch carries tags verbatim.
func (patch ProjectPatch) Apply(p Project) Project {
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
	if patch.ThumbnailURL != nil {
		p.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.MediaURL != nil {
		p.MediaURL = *patch.MediaURL
	}
	if patch.Attachments != nil {
		p.Attachments = *patch.Attachments
	}
	return p
}

// DecodeProjects parses a JSON array of projects, unmarshalling each record
// over the default shape so missing keys are backfilled, and normalizing
// tags. Anything that is not an array decodes to nil.
func DecodeProjects(raw []byte) []Project {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}
	out := make([]Project, 0, len(rows))
	for _, row := range rows {
		item := Project{Tags: []string{}, Attachments: []Attachment{}}
		if err := json.Unmarshal(row, &item); err != nil {
			continue
		}
		out = append(out, item.Normalize())
	}
	return out
}

// SampleProjects is the documented default state used when the durable slot
// is absent or unreadable.
func SampleProjects(now time.Time) []Project {
	return []Project{
		{
			ID:               "sample-project-1",
			Title:            "Sample project 1",
			Tags:             tags.NormalizeAll([]string{"UI", "Motion"}),
			DescriptionShort: "A short description example",
			DescriptionFull:  "A longer description. Notes about the footage or imagery.",
			Attachments:      []Attachment{},
			Order:            0,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:               "sample-project-2",
			Title:            "Sample project 2",
			Tags:             tags.NormalizeAll([]string{"Branding"}),
			DescriptionShort: "Another short description",
			Attachments:      []Attachment{},
			Order:            1,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}
}
