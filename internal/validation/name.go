// name.go validates skill names and team slugs. Both use the same kebab-case
// shape: lowercase alphanumeric segments joined by single hyphens.
package validation

import (
	"fmt"
	"regexp"
)

var kebabCaseRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// MaxNameLength bounds skill names and team slugs
const MaxNameLength = 100

// ValidateSkillName validates that a skill name is kebab-case and within length limits
func ValidateSkillName(name string) error {
	if name == "" {
		return fmt.Errorf("skill name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("skill name exceeds %d characters", MaxNameLength)
	}
	if !kebabCaseRe.MatchString(name) {
		return fmt.Errorf("skill name must be kebab-case (lowercase letters, digits, hyphens)")
	}
	return nil
}

// ValidateTeamSlug validates a team slug using the same kebab-case rule
func ValidateTeamSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("team slug is required")
	}
	if len(slug) > MaxNameLength {
		return fmt.Errorf("team slug exceeds %d characters", MaxNameLength)
	}
	if !kebabCaseRe.MatchString(slug) {
		return fmt.Errorf("team slug must be kebab-case (lowercase letters, digits, hyphens)")
	}
	return nil
}
