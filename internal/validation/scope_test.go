package validation

import "testing"

func TestValidScopeName(t *testing.T) {
	valid := []string{"deploy", "basic_profile", "mcp_access", "a", "read:tenant", "a.b-c", "x9"}
	for _, s := range valid {
		if !ValidScopeName(s) {
			t.Errorf("ValidScopeName(%q) = false", s)
		}
	}
	invalid := []string{"", "Deploy", "con espacio", "a;b", "-deploy", "deploy-", ":deploy",
		"áccento", string(make([]byte, 70))}
	for _, s := range invalid {
		if ValidScopeName(s) {
			t.Errorf("ValidScopeName(%q) = true", s)
		}
	}
}

func TestValidClientID(t *testing.T) {
	valid := []string{"mcp-zaxon", "abc", "A1b2.c3", "client_01"}
	for _, s := range valid {
		if !ValidClientID(s) {
			t.Errorf("ValidClientID(%q) = false", s)
		}
	}
	invalid := []string{"", "ab", "-abc", "abc-", "con espacio"}
	for _, s := range invalid {
		if ValidClientID(s) {
			t.Errorf("ValidClientID(%q) = true", s)
		}
	}
}
