// Package bundle inlines remote media into a snapshot so the rendered
// document works with no network at all. Every fetchable URL becomes a data
// URL; anything that cannot be fetched is dropped rather than left as a
// dead reference.
package bundle

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/content"
)

// maxAssetSize caps a single inlined asset. Larger responses are treated as
// fetch failures.
const maxAssetSize = 25 << 20

// Bundler fetches and inlines remote assets.
type Bundler struct {
	client *http.Client
	log    zerolog.Logger
}

// New builds a bundler. A nil client gets a default with a sane timeout.
func New(client *http.Client, log zerolog.Logger) *Bundler {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Bundler{client: client, log: log}
}

// IsDataURL reports whether the URL already carries its own bytes.
func IsDataURL(u string) bool {
	return len(u) >= 5 && strings.EqualFold(u[:5], "data:")
}

// fetchDataURL downloads one asset and re-encodes it as a data URL. Data
// URLs pass through unchanged; empty input and any failure come back empty.
func (b *Bundler) fetchDataURL(ctx context.Context, rawURL string) string {
	if rawURL == "" || IsDataURL(rawURL) {
		return rawURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		b.log.Debug().Str("url", rawURL).Err(err).Msg("asset skipped")
		return ""
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.log.Debug().Str("url", rawURL).Err(err).Msg("asset skipped")
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b.log.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Msg("asset skipped")
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil || len(body) > maxAssetSize {
		b.log.Debug().Str("url", rawURL).Msg("asset skipped")
		return ""
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(body)
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(body))
}

// PrepareOffline returns a copy of the snapshot with every remote asset
// inlined. External media embeds are disabled because an offline document
// cannot load them. Fetches run concurrently; one failed asset never fails
// the bundle.
func (b *Bundler) PrepareOffline(ctx context.Context, snap content.Snapshot) content.Snapshot {
	out := content.Snapshot{
		Projects: make([]content.Project, len(snap.Projects)),
		Profile:  snap.Profile,
		Progress: make([]content.ProgressItem, len(snap.Progress)),
	}
	copy(out.Projects, snap.Projects)
	copy(out.Progress, snap.Progress)

	var wg sync.WaitGroup
	inline := func(target *string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*target = b.fetchDataURL(ctx, *target)
		}()
	}

	inline(&out.Profile.AvatarURL)

	for i := range out.Projects {
		p := &out.Projects[i]
		inline(&p.ThumbnailURL)
		p.MediaURL = ""
		attachments := make([]content.Attachment, len(p.Attachments))
		copy(attachments, p.Attachments)
		p.Attachments = attachments
		for j := range p.Attachments {
			a := &p.Attachments[j]
			if a.Name == "" {
				a.Name = "attachment"
			}
			if a.DataURL == "" && a.URL != "" {
				url := a.URL
				wg.Add(1)
				go func(dst *content.Attachment, url string) {
					defer wg.Done()
					dst.DataURL = b.fetchDataURL(ctx, url)
				}(a, url)
			}
			a.URL = ""
		}
	}

	for i := range out.Progress {
		item := &out.Progress[i]
		inline(&item.ImageFinalURL)
		inline(&item.ImageCurrentURL)
	}

	wg.Wait()
	return out
}
