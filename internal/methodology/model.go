// Package methodology holds the declarative workflow configuration that
// governs record lifecycles: which transitions exist, what each one
// requires, and how boards project states into columns.
package methodology

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Validation kinds a custom rule may declare.
const (
	ValidationAssignmentRequired = "assignment_required"
	ValidationSprintCapacity     = "sprint_capacity"
	ValidationEpicComplexity     = "epic_complexity"
	ValidationCustom             = "custom"
)

var stateNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Model is the parsed, validated methodology. It is immutable after
// construction; evaluation never mutates it.
type Model struct {
	Version          string                    `json:"version"`
	Name             string                    `json:"name"`
	Description      string                    `json:"description,omitempty"`
	StateTransitions map[string]TransitionRule `json:"state_transitions"`
	CustomRules      map[string]CustomRuleDef  `json:"custom_rules,omitempty"`
	ViewConfigs      map[string]ViewConfig     `json:"view_configs,omitempty"`
	AgentIntegration *AgentIntegration         `json:"agent_integration,omitempty"`
}

// TransitionRule describes a single destination state: the origin states it
// is reachable from and what the transition requires. The map key of
// StateTransitions is the destination, not the origin.
type TransitionRule struct {
	From     []string              `json:"from"`
	Requires TransitionRequirement `json:"requires"`
}

// TransitionRequirement gates one transition. A requirement with no fields
// set is vacuously satisfied. Command and event may both be set.
type TransitionRequirement struct {
	Command     string                          `json:"command,omitempty"`
	Event       string                          `json:"event,omitempty"`
	CustomRules []string                        `json:"custom_rules,omitempty"`
	Signatures  map[string]SignatureRequirement `json:"signatures,omitempty"`
}

// SignatureRequirement is one named authorization group. The map key in
// Requires.Signatures is an organizational label only; eligibility matches
// against Role.
type SignatureRequirement struct {
	Role            string   `json:"role"`
	CapabilityRoles []string `json:"capability_roles"`
	MinApprovals    int      `json:"min_approvals"`
	ActorType       string   `json:"actor_type,omitempty" enum:"human,agent"`
	SpecificActors  []string `json:"specific_actors,omitempty"`
}

// CustomRuleDef declares a named business rule. Expression and ModulePath
// are registry lookup keys, never executable code.
type CustomRuleDef struct {
	Description string         `json:"description"`
	Validation  string         `json:"validation" enum:"assignment_required,sprint_capacity,epic_complexity,custom"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Expression  string         `json:"expression,omitempty"`
	ModulePath  string         `json:"module_path,omitempty"`
}

// ViewConfig maps board column labels to the states they display.
type ViewConfig struct {
	Columns map[string][]string `json:"columns"`
	Theme   string              `json:"theme,omitempty"`
	Layout  string              `json:"layout,omitempty"`
}

// AgentIntegration carries hints for automated actors.
type AgentIntegration struct {
	Enabled       bool     `json:"enabled"`
	AllowedEvents []string `json:"allowed_events,omitempty"`
}

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Validate checks structural invariants. Custom rule names referenced by
// transitions are deliberately not cross-checked here: an unknown rule name
// is a runtime evaluation failure, not a parse failure, so that a
// methodology can ship rule references ahead of their definitions.
func (m *Model) Validate() error {
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("methodology version %q is not a semver string", m.Version)
	}
	if m.Name == "" {
		return fmt.Errorf("methodology name is required")
	}
	if len(m.StateTransitions) == 0 {
		return fmt.Errorf("methodology %s declares no state transitions", m.Name)
	}
	for to, rule := range m.StateTransitions {
		if !stateNamePattern.MatchString(to) {
			return fmt.Errorf("invalid destination state name %q", to)
		}
		if len(rule.From) == 0 {
			return fmt.Errorf("transition to %s has an empty from set", to)
		}
		for _, from := range rule.From {
			if !stateNamePattern.MatchString(from) {
				return fmt.Errorf("transition to %s has invalid origin state %q", to, from)
			}
		}
		for label, group := range rule.Requires.Signatures {
			if group.Role == "" {
				return fmt.Errorf("transition to %s: signature group %s missing role", to, label)
			}
			if len(group.CapabilityRoles) == 0 {
				return fmt.Errorf("transition to %s: signature group %s has no capability roles", to, label)
			}
			if group.MinApprovals < 1 {
				return fmt.Errorf("transition to %s: signature group %s min_approvals must be >= 1", to, label)
			}
			if group.ActorType != "" && group.ActorType != "human" && group.ActorType != "agent" {
				return fmt.Errorf("transition to %s: signature group %s has unknown actor type %q", to, label, group.ActorType)
			}
		}
		for _, name := range rule.Requires.CustomRules {
			if name == "" {
				return fmt.Errorf("transition to %s references an empty custom rule name", to)
			}
		}
	}
	for name, rule := range m.CustomRules {
		if name == "" {
			return fmt.Errorf("custom rules contain an empty name")
		}
		switch rule.Validation {
		case ValidationAssignmentRequired, ValidationSprintCapacity, ValidationEpicComplexity:
			if rule.Expression != "" || rule.ModulePath != "" {
				return fmt.Errorf("rule %s: expression/module_path only allowed for validation=custom", name)
			}
		case ValidationCustom:
		default:
			return fmt.Errorf("rule %s has unknown validation kind %q", name, rule.Validation)
		}
	}
	for name, view := range m.ViewConfigs {
		if len(view.Columns) == 0 {
			return fmt.Errorf("view %s declares no columns", name)
		}
		for label, states := range view.Columns {
			for _, s := range states {
				if !stateNamePattern.MatchString(s) {
					return fmt.Errorf("view %s column %s lists invalid state %q", name, label, s)
				}
			}
		}
	}
	return nil
}

// States returns every state known to the transition graph: all destination
// keys plus all origin states.
func (m *Model) States() []string {
	seen := map[string]bool{}
	var states []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			states = append(states, s)
		}
	}
	for to, rule := range m.StateTransitions {
		add(to)
		for _, from := range rule.From {
			add(from)
		}
	}
	return states
}

// FromJSON parses and validates a methodology document.
func FromJSON(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid methodology json: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FromFile reads a methodology document from disk.
func FromFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}
