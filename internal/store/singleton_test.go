package store

import (
	"testing"
	"time"

	"folio/internal/content"
)

func TestSingletonUpdate(t *testing.T) {
	now := time.Now()
	s := NewSingleton(content.SampleProfile(now))

	fired := 0
	s.Subscribe(func() { fired++ })

	name := "Ren"
	s.Update(content.ProfilePatch{DisplayName: &name}.Apply)
	if got := s.Get().DisplayName; got != "Ren" {
		t.Errorf("displayName = %q", got)
	}
	s.Set(content.Profile{DisplayName: "Replaced"})
	if got := s.Get().DisplayName; got != "Replaced" {
		t.Errorf("displayName after Set = %q", got)
	}
	if fired != 2 {
		t.Errorf("notifications = %d, want 2", fired)
	}
}
