package viewer

import (
	"strings"
	"testing"
	"time"

	"folio/internal/content"
)

func TestEmbedURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"https://vimeo.com/123456", "https://player.vimeo.com/video/123456"},
		{"https://example.com/video.mp4", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := EmbedURL(tc.in); got != tc.want {
			t.Errorf("EmbedURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderDocumentEscapesContent(t *testing.T) {
	snap := content.Snapshot{
		Profile: content.Profile{DisplayName: `<script>alert("x")</script>`, Bio: `"quoted" & <b>bold</b>`},
		Projects: []content.Project{{
			ID:               "p1",
			Title:            "<img src=x onerror=alert(1)>",
			Tags:             []string{"UI."},
			DescriptionShort: "fine",
		}},
	}
	html, err := RenderDocument(snap, VariantOnline)
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if strings.Contains(html, `<script>alert`) {
		t.Errorf("display name not escaped")
	}
	if strings.Contains(html, "<img src=x onerror") {
		t.Errorf("project title not escaped")
	}
	if !strings.Contains(html, "#UI.") {
		t.Errorf("tag missing from output")
	}
}

func TestRenderDocumentOnlineEmbeds(t *testing.T) {
	snap := content.Snapshot{
		Projects: []content.Project{{
			ID:       "p1",
			Title:    "Video piece",
			MediaURL: "https://youtu.be/dQw4w9WgXcQ",
		}},
	}
	html, err := RenderDocument(snap, VariantOnline)
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !strings.Contains(html, "https://www.youtube.com/embed/dQw4w9WgXcQ") {
		t.Errorf("online variant missing video embed")
	}
}

func TestRenderDocumentOfflineHasNoExternalRefs(t *testing.T) {
	snap := content.Snapshot{
		Profile: content.Profile{DisplayName: "Ren", AvatarURL: "data:image/png;base64,aGk="},
		Projects: []content.Project{{
			ID:           "p1",
			Title:        "Piece",
			ThumbnailURL: "data:image/png;base64,aGk=",
			MediaURL:     "https://youtu.be/dQw4w9WgXcQ",
			Attachments:  []content.Attachment{{Name: "notes.pdf", DataURL: "data:application/pdf;base64,aGk="}},
		}},
		Progress: []content.ProgressItem{{
			ID:              "w1",
			Title:           "WIP",
			ImageCurrentURL: "data:image/png;base64,aGk=",
			Percent:         45,
		}},
	}
	html, err := RenderDocument(snap, VariantOffline)
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	for _, marker := range []string{`src="http`, `href="http`, "youtube.com/embed"} {
		if strings.Contains(html, marker) {
			t.Errorf("offline document references the network: %s", marker)
		}
	}
	if !strings.Contains(html, `src="data:image/png;base64,aGk="`) {
		t.Errorf("inlined image missing")
	}
	if !strings.Contains(html, `href="data:application/pdf;base64,aGk="`) {
		t.Errorf("inlined attachment missing")
	}
	if !strings.Contains(html, "45%") {
		t.Errorf("percent missing")
	}
}

func TestRenderDocumentCollapsedDescriptions(t *testing.T) {
	snap := content.Snapshot{
		Projects: []content.Project{
			{ID: "p1", Title: "With full", DescriptionFull: "The long story."},
			{ID: "p2", Title: "Without full"},
		},
	}
	html, err := RenderDocument(snap, VariantOnline)
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !strings.Contains(html, `id="full-p1"`) || !strings.Contains(html, `class="full collapsed"`) {
		t.Errorf("full description not rendered collapsed")
	}
	if strings.Contains(html, `id="full-p2"`) {
		t.Errorf("empty full description rendered a block")
	}
	if !strings.Contains(html, "Show more") {
		t.Errorf("toggle button missing")
	}
}

func TestRenderDocumentDefaults(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	snap := content.Snapshot{
		Progress: []content.ProgressItem{
			{ID: "w1", Status: content.StatusDone, DueDate: &due},
			{ID: "w2"},
		},
	}
	html, err := RenderDocument(snap, VariantOnline)
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !strings.Contains(html, "Portfolio Viewer") {
		t.Errorf("missing default title")
	}
	if !strings.Contains(html, "Done") || !strings.Contains(html, "2026-04-01") {
		t.Errorf("status or due date missing")
	}
	if !strings.Contains(html, "Not started") || !strings.Contains(html, "No due date") {
		t.Errorf("defaults for empty progress item missing")
	}
	if !strings.Contains(html, "Untitled") {
		t.Errorf("untitled fallback missing")
	}
}
