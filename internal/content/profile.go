package content

import (
	"encoding/json"
	"time"
)

// SocialLink is one entry in the profile's link list.
type SocialLink struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Skill is one entry in the profile's skill list.
type Skill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
}

// Profile is the singleton author profile. It is never created or destroyed,
// only patched.
type Profile struct {
	DisplayName string       `json:"displayName"`
	Bio         string       `json:"bio"`
	AvatarURL   string       `json:"avatarUrl"`
	Socials     []SocialLink `json:"socials"`
	Skills      []Skill      `json:"skills"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ProfilePatch is a typed partial update. Nil fields are left unchanged.
type ProfilePatch struct {
	DisplayName *string       `json:"displayName"`
	Bio         *string       `json:"bio"`
	AvatarURL   *string       `json:"avatarUrl"`
	Socials     *[]SocialLink `json:"socials"`
	Skills      *[]Skill      `json:"skills"`
}

func (patch ProfilePatch) Apply(p Profile) Profile {
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	if patch.Socials != nil {
		p.Socials = *patch.Socials
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
	return p
}

// AddSocial appends a placeholder link.
func (p Profile) AddSocial() Profile {
	p.Socials = append(copyList(p.Socials), SocialLink{Type: "link", Label: "Link"})
	return p
}

// UpdateSocial patches the link at index; out-of-range indices are ignored.
func (p Profile) UpdateSocial(index int, link SocialLink) Profile {
	if index < 0 || index >= len(p.Socials) {
		return p
	}
	socials := copyList(p.Socials)
	socials[index] = link
	p.Socials = socials
	return p
}

// RemoveSocial drops the link at index; out-of-range indices are ignored.
func (p Profile) RemoveSocial(index int) Profile {
	if index < 0 || index >= len(p.Socials) {
		return p
	}
	p.Socials = append(copyList(p.Socials[:index]), p.Socials[index+1:]...)
	return p
}

// AddSkill appends a placeholder skill.
func (p Profile) AddSkill() Profile {
	p.Skills = append(copyList(p.Skills), Skill{Category: "design", Level: 3})
	return p
}

// UpdateSkill patches the skill at index; out-of-range indices are ignored.
func (p Profile) UpdateSkill(index int, skill Skill) Profile {
	if index < 0 || index >= len(p.Skills) {
		return p
	}
	skills := copyList(p.Skills)
	skills[index] = skill
	p.Skills = skills
	return p
}

// RemoveSkill drops the skill at index; out-of-range indices are ignored.
func (p Profile) RemoveSkill(index int) Profile {
	if index < 0 || index >= len(p.Skills) {
		return p
	}
	p.Skills = append(copyList(p.Skills[:index]), p.Skills[index+1:]...)
	return p
}

// Touched returns the profile with a refreshed update timestamp.
func (p Profile) Touched(now time.Time) Profile {
	p.UpdatedAt = now
	return p
}

// DecodeProfile parses a profile object over the sample defaults so a partial
// or old shape is backfilled. The boolean reports whether the payload was a
// usable object.
func DecodeProfile(raw []byte, now time.Time) (Profile, bool) {
	profile := SampleProfile(now)
	if err := json.Unmarshal(raw, &profile); err != nil {
		return Profile{}, false
	}
	if profile.Socials == nil {
		profile.Socials = []SocialLink{}
	}
	if profile.Skills == nil {
		profile.Skills = []Skill{}
	}
	return profile, true
}

// SampleProfile is the documented default profile used when the durable slot
// is absent or unreadable.
func SampleProfile(now time.Time) Profile {
	return Profile{
		DisplayName: "Your name",
		Bio:         "A short introduction. Title, specialties, and so on.",
		Socials: []SocialLink{
			{Type: "x", Label: "X", URL: "https://x.com/your_id"},
			{Type: "roblox", Label: "Roblox", URL: "https://www.roblox.com/users/your_id/profile"},
		},
		Skills:    []Skill{},
		UpdatedAt: now,
	}
}

func copyList[T any](list []T) []T {
	out := make([]T, len(list))
	copy(out, list)
	return out
}
