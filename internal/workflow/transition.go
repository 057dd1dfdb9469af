package workflow

import "govline/internal/methodology"

// ResolveTransition returns the requirement gating from -> to, or nil when
// the graph declares no such edge. The transition graph is directional and
// explicit: no reflexive or transitive closure is implied.
//
// ctx is an extension point for future attribute-based resolution; the
// current lookup is a pure static graph read with no side effects, so two
// calls with the same (from, to) on the same model always agree.
func (a *Adapter) ResolveTransition(from, to string, ctx ValidationContext) *methodology.TransitionRequirement {
	rule, ok := a.Model().StateTransitions[to]
	if !ok {
		return nil
	}
	for _, origin := range rule.From {
		if origin == from {
			req := rule.Requires
			return &req
		}
	}
	return nil
}
