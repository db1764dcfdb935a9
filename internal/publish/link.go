// Package publish builds and parses self-contained share links. The whole
// snapshot travels inside the link itself; no server ever stores a copy.
package publish

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"folio/internal/content"
	"folio/internal/util"
)

const nonceLength = 6

// Meta identifies one publish action.
type Meta struct {
	PublishID int64  `json:"publishId"`
	Nonce     string `json:"nonce"`
}

// Payload is the snapshot plus its publish identity, exactly as carried in
// the link.
type Payload struct {
	Projects []content.Project      `json:"projects"`
	Profile  content.Profile        `json:"profile"`
	Progress []content.ProgressItem `json:"progress"`
	Meta     Meta                   `json:"meta"`
}

// Encoder builds share links. The clock and nonce source are injectable for
// tests.
type Encoder struct {
	Now   func() time.Time
	Nonce func() string
}

// NewEncoder returns an encoder using the real clock and a random nonce.
func NewEncoder() *Encoder {
	return &Encoder{
		Now:   time.Now,
		Nonce: func() string { return util.Nonce(nonceLength) },
	}
}

// BuildLink serializes the snapshot with fresh publish metadata into a
// viewer URL of the form <base>/?d=<encoded>. Nil collections encode as
// empty arrays so the viewer never sees null.
func (e *Encoder) BuildLink(baseURL string, snap content.Snapshot) (string, error) {
	payload := Payload{
		Projects: snap.Projects,
		Profile:  snap.Profile,
		Progress: snap.Progress,
		Meta: Meta{
			PublishID: e.Now().UnixMilli(),
			Nonce:     e.Nonce(),
		},
	}
	if payload.Projects == nil {
		payload.Projects = []content.Project{}
	}
	if payload.Progress == nil {
		payload.Progress = []content.ProgressItem{}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode share payload: %w", err)
	}
	sep := "/"
	if strings.HasSuffix(baseURL, "/") {
		sep = ""
	}
	return baseURL + sep + "?d=" + url.QueryEscape(string(raw)), nil
}

// ParseLink extracts the payload from a share link. It accepts either a full
// URL or just the query string.
func ParseLink(link string) (Payload, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return Payload{}, fmt.Errorf("parse share link: %w", err)
	}
	encoded := parsed.Query().Get("d")
	if encoded == "" {
		return Payload{}, fmt.Errorf("parse share link: missing d parameter")
	}
	return DecodePayload([]byte(encoded))
}

// DecodePayload parses the decoded JSON carried in the d parameter,
// tolerating missing collections the same way the slot decoders do.
func DecodePayload(raw []byte) (Payload, error) {
	snap, err := content.DecodeSnapshot(raw, time.Now())
	if err != nil {
		return Payload{}, err
	}
	var meta struct {
		Meta Meta `json:"meta"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Payload{}, fmt.Errorf("parse share payload meta: %w", err)
	}
	return Payload{
		Projects: snap.Projects,
		Profile:  snap.Profile,
		Progress: snap.Progress,
		Meta:     meta.Meta,
	}, nil
}
