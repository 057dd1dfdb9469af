package engine

import "fmt"

// TransitionError indicates the methodology declares no edge for the
// attempted move.
type TransitionError struct {
	From string
	To   string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("no transition from %s to %s", e.From, e.To)
}

// IneligibleError indicates a signature was rejected by the authorization
// engine.
type IneligibleError struct {
	ActorID string
	Role    string
}

func (e IneligibleError) Error() string {
	return fmt.Sprintf("signature by %s is not eligible for role %s", e.ActorID, e.Role)
}

// QuorumError indicates a signature group has not reached min_approvals.
type QuorumError struct {
	Group string
	Role  string
	Have  int
	Need  int
}

func (e QuorumError) Error() string {
	return fmt.Sprintf("signature group %s requires %d approval(s) from role %s, have %d", e.Group, e.Need, e.Role, e.Have)
}

// RuleError indicates a custom business rule blocked the transition.
type RuleError struct {
	Rules []string
}

func (e RuleError) Error() string {
	return fmt.Sprintf("custom rules not satisfied: %v", e.Rules)
}
