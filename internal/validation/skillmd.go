// skillmd.go parses SKILL.md documents: a YAML front matter block delimited by
// "---" lines, followed by the markdown body.
package validation

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillFrontMatter is the YAML front matter structure of a SKILL.md file
type SkillFrontMatter struct {
	Name        string         `yaml:"name"`
	DisplayName string         `yaml:"display_name"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Tags        []string       `yaml:"tags"`
	Category    string         `yaml:"category"`
	Version     string         `yaml:"version"`
	Extra       map[string]any `yaml:",inline"`
}

// ParsedSkill is the result of parsing a SKILL.md document
type ParsedSkill struct {
	Name        string
	DisplayName string
	Description string
	Tags        []string
	Category    string
	Version     string
	Metadata    map[string]any
	Body        string
}

const frontMatterDelim = "---"

// ParseSkillMD splits a SKILL.md document into front matter metadata and body.
// A document without a front matter block parses successfully with empty
// metadata and the full text as body. Malformed YAML inside a present block
// is an error.
func ParseSkillMD(content string) (*ParsedSkill, error) {
	fmBlock, body, ok := splitFrontMatter(content)
	if !ok {
		return &ParsedSkill{Body: content, Metadata: map[string]any{}}, nil
	}

	var fm SkillFrontMatter
	if err := yaml.Unmarshal([]byte(fmBlock), &fm); err != nil {
		return nil, fmt.Errorf("invalid SKILL.md front matter: %w", err)
	}

	displayName := fm.DisplayName
	if displayName == "" {
		displayName = fm.Title
	}

	metadata := map[string]any{}
	for k, v := range fm.Extra {
		metadata[k] = v
	}
	if fm.Version != "" {
		metadata["version"] = fm.Version
	}

	return &ParsedSkill{
		Name:        fm.Name,
		DisplayName: displayName,
		Description: fm.Description,
		Tags:        fm.Tags,
		Category:    fm.Category,
		Version:     fm.Version,
		Metadata:    metadata,
		Body:        body,
	}, nil
}

// splitFrontMatter returns the YAML block and the remaining body when the
// document opens with a "---" delimited block.
func splitFrontMatter(content string) (fm, body string, ok bool) {
	trimmed := strings.TrimPrefix(content, "\ufeff") // tolerate a BOM
	if !strings.HasPrefix(trimmed, frontMatterDelim) {
		return "", "", false
	}
	rest := trimmed[len(frontMatterDelim):]
	if !strings.HasPrefix(rest, "\n") && !strings.HasPrefix(rest, "\r\n") {
		return "", "", false
	}

	lines := strings.SplitAfter(rest, "\n")
	var fmLines []string
	for i, line := range lines {
		if strings.TrimRight(line, "\r\n") == frontMatterDelim {
			body := strings.Join(lines[i+1:], "")
			return strings.Join(fmLines, ""), strings.TrimPrefix(body, "\n"), true
		}
		fmLines = append(fmLines, line)
	}
	// Opening delimiter without a closing one: not front matter.
	return "", "", false
}
