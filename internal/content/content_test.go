package content

import (
	"strings"
	"testing"
)

func TestGetProfileFlattensCopy(t *testing.T) {
	p := GetProfile()
	if strings.Contains(p.About, "\n") || strings.Contains(p.About, "\t") || strings.Contains(p.About, "  ") {
		t.Errorf("about text should be single-spaced: %q", p.About)
	}
	for _, b := range p.Projects {
		if b.ID == "" || strings.Contains(b.Summary, "\n") {
			t.Errorf("bad project blurb %+v", b)
		}
	}
	if len(p.Skills) == 0 {
		t.Error("expected skills")
	}
}

func TestExperienceAndEducation(t *testing.T) {
	for _, j := range GetExperience() {
		if j.Company == "" || len(j.BulletPoints) == 0 {
			t.Errorf("incomplete job %+v", j)
		}
	}
	if len(GetEducation()) != 2 {
		t.Errorf("expected 2 education entries, got %d", len(GetEducation()))
	}
}
