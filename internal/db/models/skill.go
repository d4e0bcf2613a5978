// skill.go defines the Skill, SkillVersion, and SkillFile models representing
// versioned skill documents in the catalog and their attached files.
package models

import "time"

// Skill visibility classes
const (
	VisibilityPublic  = "public"
	VisibilityTeam    = "team"
	VisibilityPrivate = "private"
)

// Skill represents a skill document in the catalog, identified by a globally
// unique kebab-case name. The is_published flag flips to true the first time
// any version is created and never flips back.
type Skill struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"` // kebab-case, unique
	DisplayName string    `json:"display_name"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Visibility  string    `json:"visibility"` // public / team / private
	AuthorID    string    `json:"author_id"`
	TeamID      *string   `json:"team_id,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Joined fields (not stored in skills table)
	LatestVersion *string `json:"latest_version,omitempty"`
}

// HasTag reports whether the skill carries the given tag
func (s *Skill) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SkillVersion represents one immutable published version of a skill.
// (skill_id, version) is unique; rows are never updated after creation.
type SkillVersion struct {
	ID          string         `json:"id"`
	SkillID     string         `json:"skill_id"`
	Version     string         `json:"version"` // semver
	Content     string         `json:"content"` // full SKILL.md text
	Changelog   *string        `json:"changelog,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SkillFile is an attachment belonging to one skill version, keyed by a
// normalized relative path. Paths are validated at write time; readers
// trust them.
type SkillFile struct {
	ID             string    `json:"id"`
	SkillVersionID string    `json:"skill_version_id"`
	Path           string    `json:"path"`
	Content        string    `json:"content"`
	FileType       *string   `json:"file_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
