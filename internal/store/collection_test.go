package store

import (
	"fmt"
	"testing"
	"time"

	"folio/internal/content"
)

func setupTestProjects(t *testing.T) *Collection[content.Project] {
	t.Helper()
	c := NewCollection("projects", content.DefaultProject)
	seq := 0
	c.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	c.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func ids[T Record[T]](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.RecordID()
	}
	return out
}

func TestCollectionAddSelectsAndOrders(t *testing.T) {
	c := setupTestProjects(t)
	first := c.Add()
	second := c.Add()
	if got := c.SelectedID(); got != second {
		t.Errorf("selection = %q, want the newest id %q", got, second)
	}
	items := c.Items()
	if items[0].RecordID() != first || items[1].RecordID() != second {
		t.Errorf("order = %v", ids(items))
	}
	for i, item := range items {
		if item.Ordinal() != i {
			t.Errorf("item %d has order %d", i, item.Ordinal())
		}
		if item.Created().IsZero() || item.UpdatedAt.IsZero() {
			t.Errorf("item %d missing stamps", i)
		}
	}
}

func TestCollectionUpdateNormalizesTags(t *testing.T) {
	c := setupTestProjects(t)
	id := c.Add()
	tags := []string{"#UI。", " ", "motion"}
	ok := c.Update(id, content.ProjectPatch{Tags: &tags}.Apply)
	if !ok {
		t.Fatalf("update reported missing id")
	}
	item, _ := c.Get(id)
	want := []string{"UI.", "motion."}
	if len(item.Tags) != len(want) {
		t.Fatalf("tags = %v, want %v", item.Tags, want)
	}
	for i := range want {
		if item.Tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, item.Tags[i], want[i])
		}
	}
}

func TestCollectionUpdateUnknownID(t *testing.T) {
	c := setupTestProjects(t)
	if c.Update("nope", func(p content.Project) content.Project { return p }) {
		t.Errorf("update of unknown id reported success")
	}
}

func TestCollectionRemoveRenumbersAndReselects(t *testing.T) {
	c := setupTestProjects(t)
	a := c.Add()
	b := c.Add()
	d := c.Add()
	c.Select(b)

	if !c.Remove(b) {
		t.Fatalf("remove failed")
	}
	items := c.Items()
	if len(items) != 2 || items[0].RecordID() != a || items[1].RecordID() != d {
		t.Fatalf("items after remove = %v", ids(items))
	}
	for i, item := range items {
		if item.Ordinal() != i {
			t.Errorf("orders not dense after remove: %v", item.Ordinal())
		}
	}
	if got := c.SelectedID(); got != a {
		t.Errorf("selection = %q, want new first item %q", got, a)
	}

	c.Remove(a)
	if got := c.SelectedID(); got != d {
		t.Errorf("selection = %q, want %q", got, d)
	}
	c.Remove(d)
	if got := c.SelectedID(); got != "" {
		t.Errorf("selection = %q, want empty", got)
	}
}

func TestCollectionReorderCanonical(t *testing.T) {
	c := setupTestProjects(t)
	a := c.Add()
	b := c.Add()
	d := c.Add()
	e := c.Add()

	// Listed ids take the listed positions; unlisted keep relative order.
	c.Reorder([]string{d, a, "ghost", d})
	got := ids(c.Items())
	want := []string{d, a, b, e}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	for i, item := range c.Items() {
		if item.Ordinal() != i {
			t.Errorf("orders not dense after reorder")
		}
	}
}

func TestCollectionSwapTwoCards(t *testing.T) {
	c := setupTestProjects(t)
	a := c.Add()
	b := c.Add()
	c.Reorder([]string{b, a})
	got := ids(c.Items())
	if got[0] != b || got[1] != a {
		t.Errorf("swap produced %v", got)
	}
}

func TestCollectionReplaceAllSortsAndClearsStaleSelection(t *testing.T) {
	c := setupTestProjects(t)
	kept := c.Add()
	gone := c.Add()
	c.Select(gone)

	incoming := []content.Project{
		{ID: "x2", Title: "Second", Order: 7},
		{ID: kept, Title: "First", Order: 2},
	}
	c.ReplaceAll(incoming)
	got := ids(c.Items())
	if got[0] != kept || got[1] != "x2" {
		t.Fatalf("replace order = %v", got)
	}
	if c.SelectedID() != "" {
		t.Errorf("stale selection survived replace: %q", c.SelectedID())
	}
}

func TestCollectionImportBulkAppendUpserts(t *testing.T) {
	c := setupTestProjects(t)
	existing := c.Add()
	before, _ := c.Get(existing)

	incoming := []content.Project{
		{ID: existing, Title: "Patched"},
		{ID: "fresh", Title: "Fresh"},
		{Title: "Nameless"},
	}
	c.ImportBulk(incoming, ImportAppend)
	items := c.Items()
	if len(items) != 3 {
		t.Fatalf("append import: %d items: %v", len(items), ids(items))
	}

	patched, _ := c.Get(existing)
	if patched.Title != "Patched" {
		t.Errorf("existing id not patched: %q", patched.Title)
	}
	if patched.Ordinal() != before.Ordinal() || !patched.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("upsert moved the record or reset its creation stamp")
	}
	if items[1].RecordID() != "fresh" {
		t.Errorf("new id not appended: %v", ids(items))
	}
	if items[2].RecordID() == "" {
		t.Errorf("empty id not generated")
	}

	c.ImportBulk([]content.Project{{ID: "only", Title: "Only"}}, ImportReplace)
	if c.Len() != 1 {
		t.Errorf("replace import: %d items", c.Len())
	}
}

func TestCollectionExportEnvelope(t *testing.T) {
	c := setupTestProjects(t)
	c.Add()
	env := c.Export()
	if env.Type != "projects" || env.Version != 1 {
		t.Errorf("envelope header = %q v%d", env.Type, env.Version)
	}
	if env.ExportedAt.IsZero() {
		t.Errorf("missing export stamp")
	}
	if len(env.Items) != 1 {
		t.Errorf("items = %d", len(env.Items))
	}
}

func TestCollectionNotifiesAfterCommit(t *testing.T) {
	c := setupTestProjects(t)
	var seen []int
	c.Subscribe(func() { seen = append(seen, c.Len()) })
	c.Add()
	c.Add()
	if len(seen) != 2 {
		t.Fatalf("notifications = %d, want 2", len(seen))
	}
	// The callback observed the committed state, proving it ran after the
	// lock was released.
	if seen[0] != 1 || seen[1] != 2 {
		t.Errorf("observed lengths %v", seen)
	}
}
