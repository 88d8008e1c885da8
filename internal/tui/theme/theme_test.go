package theme

import "testing"

func TestByName(t *testing.T) {
	if got := ByName(" Catppuccin-Mocha "); got.Name != "catppuccin-mocha" {
		t.Fatalf("ByName = %q", got.Name)
	}
	if got := ByName("solarized"); got.Name != FlexokiDark.Name {
		t.Fatalf("unknown theme = %q, want fallback", got.Name)
	}
}

func TestSetActive(t *testing.T) {
	defer SetActive(FlexokiDark.Name)

	SetActive("terminal")
	if Active.Name != "terminal" {
		t.Fatalf("Active = %q", Active.Name)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(All) || names[0] != "flexoki-dark" {
		t.Fatalf("Names = %v", names)
	}
}
