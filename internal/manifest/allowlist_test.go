package manifest

import (
	"testing"

	"github.com/agentx-labs/exthost/internal/registration"
)

func TestBuildAllowlists(t *testing.T) {
	m := &Manifest{
		ID: "acme",
		Backend: &Backend{Contributions: Contributions{
			MCPTools:   []ContributionRef{{ID: "query"}, {ID: "report"}},
			MCPPrompts: []ContributionRef{{ID: "summarize"}},
			RestAPIs:   []ContributionRef{{ID: "reports"}},
		}},
	}
	a := BuildAllowlists(m)

	tests := []struct {
		kind registration.Kind
		id   string
		want bool
	}{
		{registration.KindTool, "query", true},
		{registration.KindTool, "report", true},
		{registration.KindTool, "Query", false},
		{registration.KindTool, "summarize", false},
		{registration.KindPrompt, "summarize", true},
		{registration.KindRestAPI, "reports", true},
		{registration.KindRestAPI, "report*", false},
		{registration.Kind(42), "query", false},
	}
	for _, tt := range tests {
		if got := a.Allows(tt.kind, tt.id); got != tt.want {
			t.Errorf("Allows(%s, %q) = %v, want %v", tt.kind, tt.id, got, tt.want)
		}
	}

	if len(a.For(registration.KindTool)) != 2 {
		t.Errorf("len(For(tool)) = %d, want 2", len(a.For(registration.KindTool)))
	}
}

func TestBuildAllowlists_NoBackend(t *testing.T) {
	for _, m := range []*Manifest{nil, {ID: "bare"}} {
		a := BuildAllowlists(m)
		for _, k := range registration.Kinds {
			set := a.For(k)
			if set == nil || len(set) != 0 {
				t.Errorf("For(%s) = %v, want empty set", k, set)
			}
		}
	}
}

func TestBuildAllowlists_FromFile(t *testing.T) {
	m, err := ParseFile(testPath("valid-acme.json"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	a := BuildAllowlists(m)
	for _, id := range []string{"query", "report"} {
		if !a.Allows(registration.KindTool, id) {
			t.Errorf("tool %q not allowed", id)
		}
	}
	if !a.Allows(registration.KindPrompt, "summarize") || !a.Allows(registration.KindRestAPI, "reports") {
		t.Errorf("allowlists = %+v", a)
	}
}
