package content

import (
	"testing"
	"time"
)

func TestClampPercent(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0}, {0, 0}, {55, 55}, {100, 100}, {140, 100},
	}
	for _, tc := range cases {
		if got := ClampPercent(tc.in); got != tc.want {
			t.Errorf("ClampPercent(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestProgressNormalizeBackfillsEnums(t *testing.T) {
	item := ProgressItem{Percent: 250}.Normalize()
	if item.Status != StatusTodo {
		t.Errorf("status = %q, want %q", item.Status, StatusTodo)
	}
	if item.Priority != PriorityMedium {
		t.Errorf("priority = %q, want %q", item.Priority, PriorityMedium)
	}
	if item.Percent != 100 {
		t.Errorf("percent = %d, want 100", item.Percent)
	}
	if item.Todos == nil {
		t.Errorf("todos should decode to an empty slice")
	}
}

func TestProgressPatchDueDate(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	base := ProgressItem{DueDate: &due}

	// Patch without the field leaves the due date alone.
	title := "Renamed"
	kept := ProgressPatch{Title: &title}.Apply(base)
	if kept.DueDate == nil || !kept.DueDate.Equal(due) {
		t.Errorf("patch without dueDate changed it: %v", kept.DueDate)
	}

	// A pointer to nil clears it.
	var cleared *time.Time
	gone := ProgressPatch{DueDate: &cleared}.Apply(base)
	if gone.DueDate != nil {
		t.Errorf("dueDate not cleared: %v", gone.DueDate)
	}

	// A pointer to a value sets it.
	later := due.AddDate(0, 1, 0)
	ptr := &later
	set := ProgressPatch{DueDate: &ptr}.Apply(base)
	if set.DueDate == nil || !set.DueDate.Equal(later) {
		t.Errorf("dueDate not set: %v", set.DueDate)
	}
}

func TestDecodeProgressItemsDefaults(t *testing.T) {
	raw := []byte(`[{"id":"w1","title":"One","percent":130},{"id":"w2","title":"Two","status":"done"}]`)
	items := DecodeProgressItems(raw)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Status != StatusTodo || items[0].Priority != PriorityMedium {
		t.Errorf("missing enums should backfill, got status=%q priority=%q", items[0].Status, items[0].Priority)
	}
	if items[0].Percent != 100 {
		t.Errorf("percent should clamp on decode, got %d", items[0].Percent)
	}
	if items[1].Status != StatusDone {
		t.Errorf("present status overwritten: %q", items[1].Status)
	}
}
