package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the combined view of everything a published document needs. It
// is what the share-link encoder serializes and what a full import replaces.
type Snapshot struct {
	Projects []Project      `json:"projects"`
	Profile  Profile        `json:"profile"`
	Progress []ProgressItem `json:"progress"`
}

// DecodeSnapshot parses a full-export payload. Unlike the per-slot decoders
// it is strict: a payload that is not an object with the three expected
// collections is an error, because an import must not silently wipe data.
func DecodeSnapshot(raw []byte, now time.Time) (Snapshot, error) {
	var probe struct {
		Projects json.RawMessage `json:"projects"`
		Profile  json.RawMessage `json:"profile"`
		Progress json.RawMessage `json:"progress"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if probe.Projects == nil && probe.Profile == nil && probe.Progress == nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: no recognized collections")
	}

	snap := Snapshot{Projects: []Project{}, Profile: SampleProfile(now), Progress: []ProgressItem{}}
	if probe.Projects != nil {
		if items := DecodeProjects(probe.Projects); items != nil {
			snap.Projects = items
		} else {
			return Snapshot{}, fmt.Errorf("parse snapshot: projects is not an array")
		}
	}
	if probe.Profile != nil {
		profile, ok := DecodeProfile(probe.Profile, now)
		if !ok {
			return Snapshot{}, fmt.Errorf("parse snapshot: profile is not an object")
		}
		snap.Profile = profile
	}
	if probe.Progress != nil {
		if items := DecodeProgressItems(probe.Progress); items != nil {
			snap.Progress = items
		} else {
			return Snapshot{}, fmt.Errorf("parse snapshot: progress is not an array")
		}
	}
	return snap, nil
}
