package persist

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"folio/internal/content"
	"folio/internal/store"
)

func setupTestBridge(t *testing.T) (*miniredis.Miniredis, *Bridge, *store.Collection[content.Project], *Binding) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	bridge := NewBridge(NewStoreWithClient(client), zerolog.Nop())
	col := store.NewCollection("projects", content.DefaultProject)
	binding := BindCollection(bridge, KeyProjects, col, content.DecodeProjects)
	return mr, bridge, col, binding
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within deadline")
}

func TestLocalChangePersistsToSlot(t *testing.T) {
	mr, _, col, _ := setupTestBridge(t)

	id := col.Add()

	raw, err := mr.Get(KeyProjects)
	if err != nil {
		t.Fatalf("slot not written: %v", err)
	}
	items := content.DecodeProjects([]byte(raw))
	if len(items) != 1 || items[0].ID != id {
		t.Errorf("slot payload = %s", raw)
	}
}

func TestApplyExternalDoesNotWriteBack(t *testing.T) {
	mr, _, col, binding := setupTestBridge(t)

	payload, _ := json.Marshal([]content.Project{{ID: "remote-1", Title: "From elsewhere"}})
	binding.ApplyExternal(payload)

	if _, ok := col.Get("remote-1"); !ok {
		t.Fatalf("remote payload not applied")
	}
	// The apply itself must not have produced a slot write.
	if mr.Exists(KeyProjects) {
		t.Errorf("remote apply echoed a write back to the slot")
	}
}

func TestApplyExternalDiscardsUnusablePayload(t *testing.T) {
	_, _, col, binding := setupTestBridge(t)
	col.Add()
	before := col.Len()

	binding.ApplyExternal([]byte(`{"not":"an array"}`))

	if col.Len() != before {
		t.Errorf("unusable payload changed the collection")
	}
}

func TestUnchangedStateIsNotRewritten(t *testing.T) {
	mr, _, col, _ := setupTestBridge(t)
	id := col.Add()

	// Replace the slot with a sentinel; a no-op change must not overwrite it.
	mr.Set(KeyProjects, "sentinel")
	col.Select(id) // already selected, items serialize identically

	raw, _ := mr.Get(KeyProjects)
	if raw != "sentinel" {
		t.Errorf("no-op change rewrote the slot: %s", raw)
	}
}

func TestHydrate(t *testing.T) {
	mr, _, col, binding := setupTestBridge(t)

	ctx := context.Background()
	found, err := binding.Hydrate(ctx)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if found {
		t.Errorf("hydrate reported data for an empty slot")
	}

	stored, _ := json.Marshal([]content.Project{{ID: "p1", Title: "Stored", Order: 0}})
	mr.Set(KeyProjects, string(stored))

	found, err = binding.Hydrate(ctx)
	if err != nil || !found {
		t.Fatalf("hydrate: found=%v err=%v", found, err)
	}
	if _, ok := col.Get("p1"); !ok {
		t.Errorf("hydrated record missing")
	}
}

func TestDispatchSkipsOwnOrigin(t *testing.T) {
	_, bridge, col, _ := setupTestBridge(t)
	col.Add()
	before := col.Items()

	payload, _ := json.Marshal(envelope{
		Origin: bridge.slots.Origin(),
		Data:   json.RawMessage(`[]`),
	})
	bridge.dispatch(channelPrefix+KeyProjects, payload)

	if col.Len() != len(before) {
		t.Errorf("own-origin notification was applied")
	}
}

func TestDispatchAppliesForeignOrigin(t *testing.T) {
	_, bridge, col, _ := setupTestBridge(t)
	col.Add()

	data, _ := json.Marshal([]content.Project{{ID: "foreign-1", Title: "Other tab"}})
	payload, _ := json.Marshal(envelope{Origin: "origin_other", Data: data})
	bridge.dispatch(channelPrefix+KeyProjects, payload)

	if _, ok := col.Get("foreign-1"); !ok {
		t.Errorf("foreign notification not applied")
	}
	if col.Len() != 1 {
		t.Errorf("foreign apply should replace, got %d items", col.Len())
	}
}

func TestCrossInstanceSync(t *testing.T) {
	mr := miniredis.RunT(t)

	newInstance := func() (*Bridge, *store.Collection[content.Project]) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		bridge := NewBridge(NewStoreWithClient(client), zerolog.Nop())
		col := store.NewCollection("projects", content.DefaultProject)
		BindCollection(bridge, KeyProjects, col, content.DecodeProjects)
		return bridge, col
	}

	_, colA := newInstance()
	bridgeB, colB := newInstance()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bridgeB.Listen(ctx)
	time.Sleep(50 * time.Millisecond) // let the subscription settle

	id := colA.Add()

	waitFor(t, func() bool {
		_, ok := colB.Get(id)
		return ok
	})

	// B applied A's change without writing it back out; the slot still
	// holds exactly one record.
	raw, err := mr.Get(KeyProjects)
	if err != nil {
		t.Fatalf("slot missing: %v", err)
	}
	if items := content.DecodeProjects([]byte(raw)); len(items) != 1 {
		t.Errorf("slot amplified to %d records", len(items))
	}
}

func TestWireHydratesAllSlots(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	profileJSON, _ := json.Marshal(content.Profile{DisplayName: "Stored name"})
	mr.Set(KeyProfile, string(profileJSON))

	bridge := NewBridge(NewStoreWithClient(client), zerolog.Nop())
	projects := store.NewCollection("projects", content.DefaultProject)
	progress := store.NewCollection("progress", content.DefaultProgressItem)
	profile := store.NewSingleton(content.SampleProfile(now))
	site := store.NewSingleton(content.SampleSiteContent(now))
	Wire(bridge, projects, progress, profile, site, func() time.Time { return now })

	if err := bridge.HydrateAll(context.Background()); err != nil {
		t.Fatalf("hydrate all: %v", err)
	}
	if got := profile.Get().DisplayName; got != "Stored name" {
		t.Errorf("profile not hydrated: %q", got)
	}
	// Slots that were empty keep their seeded defaults.
	if projects.Len() != 0 {
		t.Errorf("empty slot should leave the collection as seeded")
	}
	if site.Get().Corporate.Company.Name == "" {
		t.Errorf("site defaults lost on empty slot")
	}
}
