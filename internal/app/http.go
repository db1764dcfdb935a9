package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/content"
	"folio/internal/session"
	"folio/internal/store"
	"folio/internal/util"
	"folio/internal/viewer"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	log        zerolog.Logger
}

func NewHTTPServer(service *Service, corsOrigin string, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, log: log}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"storage": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(r.Context()); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["storage"] = map[string]any{"status": "error", "error": err.Error()}
		}
		writeJSON(w, statusCode, map[string]any{"ok": status == "ready", "status": status, "checks": checks})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/unlock" {
		var body struct {
			Passphrase string `json:"passphrase"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		token, err := s.service.Unlock(body.Passphrase)
		if err != nil {
			s.writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token})
		return
	}

	// Public read-only document rendered straight from a share link.
	if r.Method == http.MethodGet && r.URL.Path == "/view" {
		encoded := r.URL.Query().Get("d")
		if encoded == "" {
			writeError(w, http.StatusBadRequest, "INVALID_LINK", "Missing d parameter", nil)
			return
		}
		html, err := s.service.RenderShared(encoded)
		if err != nil {
			s.writeMapped(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	// Everything below edits or reads editor state.
	if err := s.service.VerifyToken(bearerToken(r)); err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	switch parts[1] {
	case "snapshot":
		if r.Method == http.MethodGet && len(parts) == 2 {
			writeJSON(w, http.StatusOK, s.service.Snapshot())
			return
		}
	case "projects":
		s.handleProjects(w, r, parts[2:])
		return
	case "progress":
		s.handleProgress(w, r, parts[2:])
		return
	case "profile":
		s.handleProfile(w, r, parts[2:])
		return
	case "site":
		s.handleSite(w, r, parts[2:])
		return
	case "import":
		s.handleImport(w, r, parts[2:])
		return
	case "export":
		s.handleExport(w, r, parts[2:])
		return
	case "share-link":
		if r.Method == http.MethodGet && len(parts) == 2 {
			link, err := s.service.ShareLink()
			if err != nil {
				s.writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"url": link})
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleProjects(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case r.Method == http.MethodGet && len(rest) == 0:
		writeJSON(w, http.StatusOK, map[string]any{
			"items":    s.service.Projects(),
			"selected": s.service.SelectedProjectID(),
		})
	case r.Method == http.MethodPost && len(rest) == 0:
		writeJSON(w, http.StatusCreated, s.service.AddProject())
	case r.Method == http.MethodPost && len(rest) == 1 && rest[0] == "reorder":
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.service.ReorderProjects(body.IDs)
		writeJSON(w, http.StatusOK, map[string]any{"items": s.service.Projects()})
	case r.Method == http.MethodPost && len(rest) == 1 && rest[0] == "select":
		var body struct {
			ID string `json:"id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.service.SelectProject(body.ID)
		writeJSON(w, http.StatusOK, map[string]any{"selected": s.service.SelectedProjectID()})
	case r.Method == http.MethodPatch && len(rest) == 1:
		var patch content.ProjectPatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		p, err := s.service.UpdateProject(rest[0], patch)
		if err != nil {
			s.writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case r.Method == http.MethodDelete && len(rest) == 1:
		if err := s.service.RemoveProject(rest[0]); err != nil {
			s.writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items":    s.service.Projects(),
			"selected": s.service.SelectedProjectID(),
		})
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleProgress(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case r.Method == http.MethodGet && len(rest) == 0:
		writeJSON(w, http.StatusOK, map[string]any{"items": s.service.ProgressItems()})
	case r.Method == http.MethodPost && len(rest) == 0:
		writeJSON(w, http.StatusCreated, s.service.AddProgressItem())
	case r.Method == http.MethodPost && len(rest) == 1 && rest[0] == "reorder":
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.service.ReorderProgress(body.IDs)
		writeJSON(w, http.StatusOK, map[string]any{"items": s.service.ProgressItems()})
	case r.Method == http.MethodPost && len(rest) == 1 && rest[0] == "select":
		var body struct {
			ID string `json:"id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.service.SelectProgressItem(body.ID)
		writeJSON(w, http.StatusOK, map[string]any{"items": s.service.ProgressItems()})
	case r.Method == http.MethodPatch && len(rest) == 1:
		var patch content.ProgressPatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.UpdateProgressItem(rest[0], patch)
		if err != nil {
			s.writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case r.Method == http.MethodDelete && len(rest) == 1:
		if err := s.service.RemoveProgressItem(rest[0]); err != nil {
			s.writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": s.service.ProgressItems()})
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleProfile(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case r.Method == http.MethodGet && len(rest) == 0:
		writeJSON(w, http.StatusOK, s.service.Profile())
	case r.Method == http.MethodPatch && len(rest) == 0:
		var patch content.ProfilePatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.UpdateProfile(patch))
	case len(rest) >= 1 && rest[0] == "socials":
		s.handleProfileList(w, r, rest[1:],
			func(p content.Profile) content.Profile { return p.AddSocial() },
			func(r *http.Request, index int) (func(content.Profile) content.Profile, error) {
				var link content.SocialLink
				if err := decodeBody(r, &link); err != nil {
					return nil, err
				}
				return func(p content.Profile) content.Profile { return p.UpdateSocial(index, link) }, nil
			},
			func(p content.Profile, index int) content.Profile { return p.RemoveSocial(index) },
		)
	case len(rest) >= 1 && rest[0] == "skills":
		s.handleProfileList(w, r, rest[1:],
			func(p content.Profile) content.Profile { return p.AddSkill() },
			func(r *http.Request, index int) (func(content.Profile) content.Profile, error) {
				var skill content.Skill
				if err := decodeBody(r, &skill); err != nil {
					return nil, err
				}
				return func(p content.Profile) content.Profile { return p.UpdateSkill(index, skill) }, nil
			},
			func(p content.Profile, index int) content.Profile { return p.RemoveSkill(index) },
		)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleProfileList(w http.ResponseWriter, r *http.Request, rest []string,
	add func(content.Profile) content.Profile,
	update func(*http.Request, int) (func(content.Profile) content.Profile, error),
	remove func(content.Profile, int) content.Profile,
) {
	switch {
	case r.Method == http.MethodPost && len(rest) == 0:
		writeJSON(w, http.StatusOK, s.service.MutateProfile(add))
	case r.Method == http.MethodPatch && len(rest) == 1:
		index, ok := parseIndex(rest[0])
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_INDEX", "Index must be a number", nil)
			return
		}
		apply, err := update(r, index)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.MutateProfile(apply))
	case r.Method == http.MethodDelete && len(rest) == 1:
		index, ok := parseIndex(rest[0])
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_INDEX", "Index must be a number", nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.MutateProfile(func(p content.Profile) content.Profile {
			return remove(p, index)
		}))
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleImport(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	mode := store.ImportMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = store.ImportReplace
	}
	if mode != store.ImportAppend && mode != store.ImportReplace {
		writeError(w, http.StatusBadRequest, "INVALID_MODE", "Mode must be append or replace", nil)
		return
	}

	switch {
	case len(rest) == 0:
		err = s.service.ImportFull(raw)
	case len(rest) == 1 && rest[0] == "projects":
		err = s.service.ImportProjects(raw, mode)
	case len(rest) == 1 && rest[0] == "progress":
		err = s.service.ImportProgress(raw, mode)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodGet || len(rest) != 1 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	switch rest[0] {
	case "data":
		writeJSON(w, http.StatusOK, s.service.Snapshot())
	case "projects":
		writeJSON(w, http.StatusOK, s.service.ExportProjects())
	case "progress":
		writeJSON(w, http.StatusOK, s.service.ExportProgress())
	case "viewer":
		variant := viewer.Variant(r.URL.Query().Get("variant"))
		if variant == "" {
			variant = viewer.VariantOnline
		}
		if variant != viewer.VariantOnline && variant != viewer.VariantOffline {
			writeError(w, http.StatusBadRequest, "INVALID_VARIANT", "Variant must be online or offline", nil)
			return
		}
		html, err := s.service.ExportViewer(r.Context(), variant)
		if err != nil {
			s.writeMapped(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=viewer-%s.html", variant))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = util.NewID("req")
		}

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", writer.status).
			Dur("duration", time.Since(started)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
}

func (s *HTTPServer) writeMapped(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, session.ErrInvalidToken) || errors.Is(err, session.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("empty body")
	}
	defer r.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body")
	}
	return raw, nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseIndex(raw string) (int, bool) {
	index := 0
	if _, err := fmt.Sscanf(raw, "%d", &index); err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
