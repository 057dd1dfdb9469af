package methodology_test

import (
	"strings"
	"testing"

	"govline/internal/methodology"
)

func TestPresetsParseAndValidate(t *testing.T) {
	for _, name := range []string{"default", "scrum"} {
		m, err := methodology.Preset(name)
		if err != nil {
			t.Fatalf("preset %s: %v", name, err)
		}
		if m.Name != name {
			t.Fatalf("preset %s has name %s", name, m.Name)
		}
		if err := m.Validate(); err != nil {
			t.Fatalf("preset %s invalid: %v", name, err)
		}
	}
	if _, err := methodology.Preset("kanban-extreme"); err == nil {
		t.Fatalf("unknown preset should error")
	}
}

func TestValidateRejectsBadModels(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			"bad version",
			`{"version":"one","name":"x","state_transitions":{"review":{"from":["draft"],"requires":{}}}}`,
			"semver",
		},
		{
			"missing name",
			`{"version":"1.0.0","state_transitions":{"review":{"from":["draft"],"requires":{}}}}`,
			"name",
		},
		{
			"no transitions",
			`{"version":"1.0.0","name":"x"}`,
			"no state transitions",
		},
		{
			"empty from set",
			`{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":[],"requires":{}}}}`,
			"empty from",
		},
		{
			"bad state name",
			`{"version":"1.0.0","name":"x","state_transitions":{"Review!":{"from":["draft"],"requires":{}}}}`,
			"invalid destination",
		},
		{
			"bad origin name",
			`{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":["Draft Item"],"requires":{}}}}`,
			"invalid origin",
		},
		{
			"zero quorum",
			`{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":["draft"],"requires":{"signatures":{"g":{"role":"approver","capability_roles":["a"],"min_approvals":0}}}}}}`,
			"min_approvals",
		},
		{
			"no capabilities",
			`{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":["draft"],"requires":{"signatures":{"g":{"role":"approver","capability_roles":[],"min_approvals":1}}}}}}`,
			"capability roles",
		},
		{
			"bad actor type",
			`{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":["draft"],"requires":{"signatures":{"g":{"role":"approver","capability_roles":["a"],"min_approvals":1,"actor_type":"robot"}}}}}}`,
			"actor type",
		},
		{
			"expression on builtin kind",
			`{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":["draft"],"requires":{}}},"custom_rules":{"r":{"description":"d","validation":"sprint_capacity","expression":"x > 1"}}}`,
			"only allowed for validation=custom",
		},
		{
			"unknown validation kind",
			`{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":["draft"],"requires":{}}},"custom_rules":{"r":{"description":"d","validation":"magic"}}}`,
			"unknown validation kind",
		},
	}
	for _, tc := range cases {
		_, err := methodology.FromJSON([]byte(tc.doc))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestUnknownRuleReferenceIsNotAParseError(t *testing.T) {
	// Rule references are resolved at evaluation time, so a methodology may
	// reference rules it does not define.
	doc := `{"version":"1.0.0","name":"x","state_transitions":{"review":{"from":["draft"],"requires":{"custom_rules":["later"]}}}}`
	if _, err := methodology.FromJSON([]byte(doc)); err != nil {
		t.Fatalf("forward rule reference should parse: %v", err)
	}
}

func TestStates(t *testing.T) {
	m := methodology.Default()
	states := map[string]bool{}
	for _, s := range m.States() {
		states[s] = true
	}
	for _, want := range []string{"draft", "review", "ready", "active", "paused", "done", "archived", "discarded"} {
		if !states[want] {
			t.Fatalf("default methodology missing state %s", want)
		}
	}
}
