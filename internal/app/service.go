// Package app assembles the domain stores, persistence bridge, publisher,
// bundler, renderer and session gate into the editor service, and exposes
// them over HTTP.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/bundle"
	"folio/internal/config"
	"folio/internal/content"
	"folio/internal/persist"
	"folio/internal/publish"
	"folio/internal/session"
	"folio/internal/store"
	"folio/internal/util"
	"folio/internal/viewer"
)

// Service owns the live state of one editor instance.
type Service struct {
	cfg  config.Config
	log  zerolog.Logger
	gate *session.Gate

	projects *store.Collection[content.Project]
	progress *store.Collection[content.ProgressItem]
	profile  *store.Singleton[content.Profile]
	site     *store.Singleton[content.SiteContent]

	slots   *persist.Store
	bridge  *persist.Bridge
	encoder *publish.Encoder
	bundler *bundle.Bundler

	now func() time.Time
}

// New seeds the stores with the documented sample state and wires them to
// the persistence bridge. Pass a nil slot store to run purely in memory.
func New(cfg config.Config, slots *persist.Store, gate *session.Gate, log zerolog.Logger) *Service {
	now := time.Now
	seed := now()

	s := &Service{
		cfg:      cfg,
		log:      log,
		gate:     gate,
		projects: store.NewCollection("projects", content.DefaultProject),
		progress: store.NewCollection("progress", content.DefaultProgressItem),
		profile:  store.NewSingleton(content.SampleProfile(seed)),
		site:     store.NewSingleton(content.SampleSiteContent(seed)),
		slots:    slots,
		encoder:  publish.NewEncoder(),
		bundler:  bundle.New(nil, log),
		now:      now,
	}
	s.projects.ImportBulk(content.SampleProjects(seed), store.ImportReplace)
	s.progress.ImportBulk(content.SampleProgress(seed), store.ImportReplace)

	if slots != nil {
		s.bridge = persist.NewBridge(slots, log)
		persist.Wire(s.bridge, s.projects, s.progress, s.profile, s.site, s.now)
	}
	return s
}

// Bootstrap hydrates state from the durable slots and starts the cross
// instance listener.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.bridge == nil {
		return nil
	}
	if err := s.bridge.HydrateAll(ctx); err != nil {
		return fmt.Errorf("hydrate slots: %w", err)
	}
	s.bridge.Listen(ctx)
	return nil
}

// Ping reports whether the durable store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if s.slots == nil {
		return nil
	}
	return s.slots.Ping(ctx)
}

// Unlock trades the editor passphrase for a session token.
func (s *Service) Unlock(passphrase string) (string, error) {
	token, err := s.gate.Unlock(passphrase)
	if err == session.ErrLocked {
		return "", domainError(http.StatusTooManyRequests, "LOCKED", "Too many failed attempts", nil)
	}
	if err != nil {
		return "", domainError(http.StatusUnauthorized, "BAD_PASSPHRASE", "Wrong passphrase", nil)
	}
	return token, nil
}

// VerifyToken checks an editor session token.
func (s *Service) VerifyToken(token string) error {
	return s.gate.Verify(token)
}

// Snapshot assembles the publishable view of everything.
func (s *Service) Snapshot() content.Snapshot {
	return content.Snapshot{
		Projects: s.projects.Items(),
		Profile:  s.profile.Get(),
		Progress: s.progress.Items(),
	}
}

// Project operations.

func (s *Service) Projects() []content.Project { return s.projects.Items() }

func (s *Service) AddProject() content.Project {
	id := s.projects.Add()
	p, _ := s.projects.Get(id)
	return p
}

func (s *Service) UpdateProject(id string, patch content.ProjectPatch) (content.Project, error) {
	if !s.projects.Update(id, patch.Apply) {
		return content.Project{}, domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
	}
	p, _ := s.projects.Get(id)
	return p, nil
}

func (s *Service) RemoveProject(id string) error {
	if !s.projects.Remove(id) {
		return domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
	}
	return nil
}

func (s *Service) ReorderProjects(ids []string) { s.projects.Reorder(ids) }

func (s *Service) SelectProject(id string) { s.projects.Select(id) }

func (s *Service) SelectedProjectID() string { return s.projects.SelectedID() }

// Progress operations.

func (s *Service) ProgressItems() []content.ProgressItem { return s.progress.Items() }

func (s *Service) AddProgressItem() content.ProgressItem {
	id := s.progress.Add()
	item, _ := s.progress.Get(id)
	return item
}

func (s *Service) UpdateProgressItem(id string, patch content.ProgressPatch) (content.ProgressItem, error) {
	if !s.progress.Update(id, patch.Apply) {
		return content.ProgressItem{}, domainError(http.StatusNotFound, "NOT_FOUND", "Progress item not found", nil)
	}
	item, _ := s.progress.Get(id)
	return item, nil
}

func (s *Service) RemoveProgressItem(id string) error {
	if !s.progress.Remove(id) {
		return domainError(http.StatusNotFound, "NOT_FOUND", "Progress item not found", nil)
	}
	return nil
}

func (s *Service) ReorderProgress(ids []string) { s.progress.Reorder(ids) }

func (s *Service) SelectProgressItem(id string) { s.progress.Select(id) }

// Profile operations.

func (s *Service) Profile() content.Profile { return s.profile.Get() }

func (s *Service) UpdateProfile(patch content.ProfilePatch) content.Profile {
	now := s.now()
	s.profile.Update(func(p content.Profile) content.Profile {
		return patch.Apply(p).Touched(now)
	})
	return s.profile.Get()
}

// MutateProfile applies an arbitrary profile transform, bumping the stamp.
func (s *Service) MutateProfile(apply func(content.Profile) content.Profile) content.Profile {
	now := s.now()
	s.profile.Update(func(p content.Profile) content.Profile {
		return apply(p).Touched(now)
	})
	return s.profile.Get()
}

// Site operations. Every mutation lands one entry in the operation log.

func (s *Service) Site() content.SiteContent { return s.site.Get() }

func (s *Service) UpdateSite(action string, meta map[string]string, apply func(content.SiteContent) content.SiteContent) content.SiteContent {
	entry := content.LogEntry{
		ID:     util.NewID("log"),
		Action: action,
		Meta:   meta,
		At:     s.now(),
	}
	s.site.Update(func(site content.SiteContent) content.SiteContent {
		return apply(site).AppendLog(entry)
	})
	return s.site.Get()
}

// Import and export.

// ImportFull replaces the entire editable state from an exported payload. A
// malformed payload changes nothing.
func (s *Service) ImportFull(raw []byte) error {
	snap, err := content.DecodeSnapshot(raw, s.now())
	if err != nil {
		return domainError(http.StatusBadRequest, "INVALID_IMPORT", "Import payload is not a usable export", err.Error())
	}
	s.projects.ReplaceAll(snap.Projects)
	s.progress.ReplaceAll(snap.Progress)
	s.profile.Set(snap.Profile)
	return nil
}

// ImportProjects merges an exported projects envelope.
func (s *Service) ImportProjects(raw []byte, mode store.ImportMode) error {
	var env store.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil || env.Items == nil {
		return domainError(http.StatusBadRequest, "INVALID_IMPORT", "Payload is not an export envelope", nil)
	}
	if env.Type != "projects" {
		return domainError(http.StatusBadRequest, "WRONG_KIND", fmt.Sprintf("Envelope holds %q, not projects", env.Type), nil)
	}
	itemsJSON, _ := json.Marshal(env.Items)
	items := content.DecodeProjects(itemsJSON)
	if items == nil {
		return domainError(http.StatusBadRequest, "INVALID_IMPORT", "Envelope items are not projects", nil)
	}
	s.projects.ImportBulk(items, mode)
	return nil
}

// ImportProgress merges an exported progress envelope.
func (s *Service) ImportProgress(raw []byte, mode store.ImportMode) error {
	var env store.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil || env.Items == nil {
		return domainError(http.StatusBadRequest, "INVALID_IMPORT", "Payload is not an export envelope", nil)
	}
	if env.Type != "progress" {
		return domainError(http.StatusBadRequest, "WRONG_KIND", fmt.Sprintf("Envelope holds %q, not progress", env.Type), nil)
	}
	itemsJSON, _ := json.Marshal(env.Items)
	items := content.DecodeProgressItems(itemsJSON)
	if items == nil {
		return domainError(http.StatusBadRequest, "INVALID_IMPORT", "Envelope items are not progress items", nil)
	}
	s.progress.ImportBulk(items, mode)
	return nil
}

// ExportProjects wraps the projects in a versioned envelope.
func (s *Service) ExportProjects() store.Envelope[content.Project] { return s.projects.Export() }

// ExportProgress wraps the progress items in a versioned envelope.
func (s *Service) ExportProgress() store.Envelope[content.ProgressItem] { return s.progress.Export() }

// ShareLink builds a self-contained viewer link for the current snapshot.
func (s *Service) ShareLink() (string, error) {
	link, err := s.encoder.BuildLink(s.cfg.ViewerBaseURL, s.Snapshot())
	if err != nil {
		return "", domainError(http.StatusInternalServerError, "PUBLISH_FAILED", "Could not build share link", nil)
	}
	return link, nil
}

// ExportViewer renders the read-only document. The offline variant first
// inlines every remote asset. Rendering is isolated so a template panic
// surfaces as an error instead of killing the process.
func (s *Service) ExportViewer(ctx context.Context, variant viewer.Variant) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("viewer render panicked")
			err = domainError(http.StatusInternalServerError, "RENDER_FAILED", "Document rendering failed", nil)
		}
	}()

	snap := s.Snapshot()
	if variant == viewer.VariantOffline {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.BundleTimeout)
		defer cancel()
		snap = s.bundler.PrepareOffline(ctx, snap)
	}
	html, renderErr := viewer.RenderDocument(snap, variant)
	if renderErr != nil {
		return "", domainError(http.StatusInternalServerError, "RENDER_FAILED", "Document rendering failed", nil)
	}
	return html, nil
}

// RenderShared renders a document straight from a share-link payload.
func (s *Service) RenderShared(encoded string) (string, error) {
	payload, err := publish.DecodePayload([]byte(encoded))
	if err != nil {
		return "", domainError(http.StatusBadRequest, "INVALID_LINK", "Share link payload is unreadable", nil)
	}
	snap := content.Snapshot{Projects: payload.Projects, Profile: payload.Profile, Progress: payload.Progress}
	html, err := viewer.RenderDocument(snap, viewer.VariantOnline)
	if err != nil {
		return "", domainError(http.StatusInternalServerError, "RENDER_FAILED", "Document rendering failed", nil)
	}
	return html, nil
}
