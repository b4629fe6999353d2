package candidate

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestApplyNeverOverwritesScalars(t *testing.T) {
	profile := &Profile{}

	changed := profile.Apply(&Patch{FullName: "Sarah Johnson", Email: "sarah@techcorp.com"})
	if len(changed) != 2 {
		t.Fatalf("expected two changed fields, got %v", changed)
	}

	changed = profile.Apply(&Patch{FullName: "Someone Else", Email: "other@example.com"})
	if len(changed) != 0 {
		t.Fatalf("expected no changes without overwrite authorization, got %v", changed)
	}
	if profile.FullName != "Sarah Johnson" {
		t.Fatalf("full name was silently overwritten: %q", profile.FullName)
	}
	if profile.Email != "sarah@techcorp.com" {
		t.Fatalf("email was silently overwritten: %q", profile.Email)
	}
}

func TestApplyOverwriteAuthorization(t *testing.T) {
	profile := &Profile{Email: "old@example.com"}

	changed := profile.Apply(&Patch{Email: "new@example.com"}, FieldEmail)
	if !reflect.DeepEqual(changed, []Field{FieldEmail}) {
		t.Fatalf("unexpected changed fields: %v", changed)
	}
	if profile.Email != "new@example.com" {
		t.Fatalf("authorized overwrite did not apply: %q", profile.Email)
	}
}

func TestApplyGrowsListsWithoutDuplicates(t *testing.T) {
	profile := &Profile{TechStack: []string{"Python"}}

	changed := profile.Apply(&Patch{TechStack: []string{"python", "Docker", " Docker ", ""}})
	if !reflect.DeepEqual(changed, []Field{FieldTechStack}) {
		t.Fatalf("unexpected changed fields: %v", changed)
	}
	if !reflect.DeepEqual(profile.TechStack, []string{"Python", "Docker"}) {
		t.Fatalf("unexpected tech stack: %v", profile.TechStack)
	}
}

func TestApplyEmptyPatchIsNoop(t *testing.T) {
	profile := &Profile{FullName: "Sarah Johnson", YearsExperience: intPtr(5)}
	before := *profile

	if changed := profile.Apply(&Patch{}); len(changed) != 0 {
		t.Fatalf("empty patch reported changes: %v", changed)
	}
	if profile.FullName != before.FullName || *profile.YearsExperience != *before.YearsExperience {
		t.Fatalf("empty patch mutated the profile")
	}
	if changed := profile.Apply(nil); len(changed) != 0 {
		t.Fatalf("nil patch reported changes: %v", changed)
	}
}

func TestMissingFollowsAskingOrder(t *testing.T) {
	profile := &Profile{FullName: "Sarah Johnson", Phone: "+1-555-123-4567"}

	missing := profile.Missing()
	want := []Field{FieldEmail, FieldYearsExperience, FieldDesiredPositions, FieldCurrentLocation, FieldTechStack}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("unexpected missing order: %v", missing)
	}
	if profile.Complete() {
		t.Fatalf("incomplete profile reported complete")
	}

	profile.Email = "sarah@techcorp.com"
	profile.YearsExperience = intPtr(5)
	profile.DesiredPositions = []string{"backend developer"}
	profile.CurrentLocation = "New York"
	profile.TechStack = []string{"Python"}
	if !profile.Complete() {
		t.Fatalf("complete profile reported incomplete: %v", profile.Missing())
	}
}
