package validation

import "testing"

func TestNormalizeFilePath_Valid(t *testing.T) {
	cases := map[string]string{
		"reference.md":          "reference.md",
		"docs/usage.md":         "docs/usage.md",
		"./docs/usage.md":       "docs/usage.md",
		"docs//usage.md":        "docs/usage.md",
		"docs/./nested/file.py": "docs/nested/file.py",
		"a/b/../c.txt":          "a/c.txt",
	}
	for in, want := range cases {
		got, err := NormalizeFilePath(in)
		if err != nil {
			t.Errorf("NormalizeFilePath(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeFilePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeFilePath_Rejected(t *testing.T) {
	cases := []string{
		"",
		"/etc/passwd",
		"../outside.md",
		"..",
		"a/../../outside.md",
		".",
		"./",
		`windows\style\path.md`,
		"has\x00nul",
	}
	for _, in := range cases {
		if _, err := NormalizeFilePath(in); err == nil {
			t.Errorf("NormalizeFilePath(%q) = nil error, want rejection", in)
		}
	}
}

func TestFileType(t *testing.T) {
	if got := FileType("docs/usage.md"); got != "md" {
		t.Errorf("FileType = %q, want md", got)
	}
	if got := FileType("Makefile"); got != "" {
		t.Errorf("FileType = %q, want empty", got)
	}
}
