// Package viewer renders a snapshot into a single self-contained read-only
// HTML document. Rendering is pure: no network, no filesystem, no clock
// beyond the data already in the snapshot.
package viewer

import (
	"html/template"
	"regexp"
	"strings"

	"folio/internal/content"
)

// Variant selects how media is referenced in the document.
type Variant string

const (
	// VariantOnline keeps remote references and turns known video URLs
	// into player embeds.
	VariantOnline Variant = "online"
	// VariantOffline assumes every asset is already a data URL and
	// disables external embeds entirely.
	VariantOffline Variant = "offline"
)

var (
	youtubeRe = regexp.MustCompile(`(?:youtu\.be/|v=)([A-Za-z0-9_-]{6,})`)
	vimeoRe   = regexp.MustCompile(`vimeo\.com/(\d+)`)
)

// EmbedURL maps a known video page URL to its player embed URL. Unknown
// hosts map to "".
func EmbedURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if m := youtubeRe.FindStringSubmatch(rawURL); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := vimeoRe.FindStringSubmatch(rawURL); m != nil {
		return "https://player.vimeo.com/video/" + m[1]
	}
	return ""
}

// safeURL admits only schemes the document may reference: regular web URLs
// and the data URLs produced by the bundler. Everything else renders empty.
func safeURL(raw string) template.URL {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return template.URL(raw)
	}
	return ""
}

type attachmentData struct {
	Name string
	Href template.URL
}

type projectData struct {
	Title            string
	Tags             []string
	DescriptionShort string
	DescriptionFull  string
	HasFull          bool
	FullID           string
	ThumbnailURL     template.URL
	EmbedURL         template.URL
	Attachments      []attachmentData
}

type progressData struct {
	Title            string
	Tags             []string
	StatusLabel      string
	DueLabel         string
	DescriptionShort string
	DescriptionFull  string
	HasFull          bool
	FullID           string
	ImageURL         template.URL
	Percent          int
}

type socialData struct {
	Label string
}

type profileData struct {
	DisplayName string
	Bio         string
	AvatarURL   template.URL
	Socials     []socialData
}

type documentData struct {
	Title    string
	Offline  bool
	Profile  profileData
	Projects []projectData
	Progress []progressData
}

func statusLabel(status string) string {
	switch status {
	case content.StatusDone:
		return "Done"
	case content.StatusInProgress:
		return "In progress"
	default:
		return "Not started"
	}
}

// RenderDocument turns a snapshot into the final HTML document.
func RenderDocument(snap content.Snapshot, variant Variant) (string, error) {
	offline := variant == VariantOffline

	data := documentData{
		Title:   snap.Profile.DisplayName,
		Offline: offline,
	}
	if data.Title == "" {
		data.Title = "Portfolio Viewer"
	}

	data.Profile = profileData{
		DisplayName: snap.Profile.DisplayName,
		Bio:         snap.Profile.Bio,
		AvatarURL:   safeURL(snap.Profile.AvatarURL),
	}
	if data.Profile.DisplayName == "" {
		data.Profile.DisplayName = "(unnamed)"
	}
	for _, s := range snap.Profile.Socials {
		label := s.Label
		if label == "" {
			label = s.Type
		}
		if label == "" {
			label = "Link"
		}
		data.Profile.Socials = append(data.Profile.Socials, socialData{Label: label})
	}

	for _, p := range snap.Projects {
		pd := projectData{
			Title:            p.Title,
			Tags:             p.Tags,
			DescriptionShort: p.DescriptionShort,
			DescriptionFull:  p.DescriptionFull,
			HasFull:          strings.TrimSpace(p.DescriptionFull) != "",
			FullID:           "full-" + p.ID,
			ThumbnailURL:     safeURL(p.ThumbnailURL),
		}
		if pd.Title == "" {
			pd.Title = "Untitled"
		}
		if !offline {
			pd.EmbedURL = safeURL(EmbedURL(p.MediaURL))
		}
		for _, a := range p.Attachments {
			if a.DataURL == "" {
				continue
			}
			name := a.Name
			if name == "" {
				name = "attachment"
			}
			pd.Attachments = append(pd.Attachments, attachmentData{Name: name, Href: safeURL(a.DataURL)})
		}
		data.Projects = append(data.Projects, pd)
	}

	for _, item := range snap.Progress {
		due := "No due date"
		if item.DueDate != nil {
			due = item.DueDate.Format("2006-01-02")
		}
		image := item.ImageCurrentURL
		if image == "" {
			image = item.ImageFinalURL
		}
		pd := progressData{
			Title:            item.Title,
			Tags:             item.Tags,
			StatusLabel:      statusLabel(item.Status),
			DueLabel:         due,
			DescriptionShort: item.DescriptionShort,
			DescriptionFull:  item.DescriptionFull,
			HasFull:          strings.TrimSpace(item.DescriptionFull) != "",
			FullID:           "pfull-" + item.ID,
			ImageURL:         safeURL(image),
			Percent:          content.ClampPercent(item.Percent),
		}
		if pd.Title == "" {
			pd.Title = "Untitled"
		}
		data.Progress = append(data.Progress, pd)
	}

	return renderTemplate(data)
}
