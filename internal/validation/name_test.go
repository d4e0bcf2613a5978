package validation

import "testing"

func TestValidateSkillName(t *testing.T) {
	valid := []string{
		"a",
		"code-reviewer",
		"go-test-runner-2",
		"k8s",
	}
	for _, name := range valid {
		if err := ValidateSkillName(name); err != nil {
			t.Errorf("ValidateSkillName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"Code-Reviewer",
		"code_reviewer",
		"-leading",
		"trailing-",
		"double--hyphen",
		"has space",
		"has.dot",
	}
	for _, name := range invalid {
		if err := ValidateSkillName(name); err == nil {
			t.Errorf("ValidateSkillName(%q) = nil, want error", name)
		}
	}
}

func TestValidateSkillName_TooLong(t *testing.T) {
	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateSkillName(string(long)); err == nil {
		t.Error("expected error for over-length name")
	}
}

func TestValidateTeamSlug(t *testing.T) {
	if err := ValidateTeamSlug("platform-eng"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTeamSlug("Platform Eng"); err == nil {
		t.Error("expected error for non-kebab slug")
	}
	if err := ValidateTeamSlug(""); err == nil {
		t.Error("expected error for empty slug")
	}
}
