package content

import (
	"testing"
	"time"
)

func TestSiteContentNestedOps(t *testing.T) {
	now := time.Now()
	site := SampleSiteContent(now)

	site2 := site.AddStation("line1", Station{ID: "s3", Name: "West", Code: "W02"})
	route := site2.Routes[0]
	if len(route.Stations) != 3 {
		t.Fatalf("AddStation: %d stations", len(route.Stations))
	}
	if len(site.Routes[0].Stations) != 2 {
		t.Errorf("AddStation mutated the original")
	}

	site3 := site2.UpdateStation("line1", "s3", func(st Station) Station {
		st.Name = "West Gate"
		return st
	})
	if site3.Routes[0].Stations[2].Name != "West Gate" {
		t.Errorf("UpdateStation did not apply")
	}

	site4 := site3.RemoveStation("line1", "s1")
	if len(site4.Routes[0].Stations) != 2 {
		t.Errorf("RemoveStation: %d stations", len(site4.Routes[0].Stations))
	}

	if got := site4.AddStation("missing", Station{ID: "x"}); len(got.Routes[0].Stations) != 2 {
		t.Errorf("unknown route id should be a no-op")
	}
}

func TestSiteContentMoreBlocks(t *testing.T) {
	now := time.Now()
	site := SampleSiteContent(now)

	site2 := site.SetMoreEnabled(SectionTourism, true).SetMoreLabel(SectionTourism, "See more")
	if !site2.More[SectionTourism].Enabled || site2.More[SectionTourism].Label != "See more" {
		t.Fatalf("more block not updated: %+v", site2.More[SectionTourism])
	}
	if site.More[SectionTourism].Enabled {
		t.Errorf("SetMoreEnabled mutated the original map")
	}

	site3 := site2.AddMoreMedia(SectionTourism, []MoreMedia{
		{ID: "m1", Kind: "image"},
		{ID: "m2", Kind: "video"},
		{ID: "m3", Kind: "image"},
	})
	site4 := site3.ReorderMoreMedia(SectionTourism, 2, 0)
	media := site4.More[SectionTourism].Media
	if media[0].ID != "m3" || media[1].ID != "m1" || media[2].ID != "m2" {
		t.Errorf("reorder result: %v, %v, %v", media[0].ID, media[1].ID, media[2].ID)
	}

	if got := site4.SetMoreLabel("nonexistent", "x"); len(got.More) != len(site4.More) {
		t.Errorf("unknown section should be a no-op")
	}
}

func TestSiteContentLogPrepends(t *testing.T) {
	now := time.Now()
	site := SampleSiteContent(now)
	site = site.AppendLog(LogEntry{ID: "l1", Action: "news.add", At: now})
	site = site.AppendLog(LogEntry{ID: "l2", Action: "news.remove", At: now.Add(time.Second)})
	if len(site.Logs) != 2 {
		t.Fatalf("logs = %d", len(site.Logs))
	}
	if site.Logs[0].ID != "l2" {
		t.Errorf("newest entry should be first, got %q", site.Logs[0].ID)
	}
}

func TestDecodeSiteContentBackfills(t *testing.T) {
	now := time.Now()
	site, ok := DecodeSiteContent([]byte(`{"customCSS":"body{}"}`), now)
	if !ok {
		t.Fatalf("decode failed")
	}
	if site.CustomCSS != "body{}" {
		t.Errorf("customCSS = %q", site.CustomCSS)
	}
	for _, section := range SiteSections {
		if _, present := site.More[section]; !present {
			t.Errorf("more block missing for %q", section)
		}
	}
	if site.Logs == nil {
		t.Errorf("logs should decode to an empty slice")
	}
	if _, ok := DecodeSiteContent([]byte(`[]`), now); ok {
		t.Errorf("array payload should not decode as site content")
	}
}
