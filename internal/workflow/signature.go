package workflow

import (
	"sort"

	"govline/internal/domain"
	"govline/internal/methodology"
)

// IsSignatureEligible decides whether one signature could count toward
// authorizing ctx.Task.Status -> ctx.TransitionTo. It assumes the signature
// bytes were already verified upstream and it never counts quorum; eligible
// signatures accumulate toward min_approvals entirely in the caller.
//
// The split matters: signature.Role names which group the signer claims
// (intent), while the actor's capability roles decide whether the signer may
// actually fill that group (authorization). A signature with the right role
// from an actor lacking the capability is rejected.
func (a *Adapter) IsSignatureEligible(sig domain.Signature, ctx ValidationContext) bool {
	if ctx.Task == nil {
		return false
	}
	req := a.ResolveTransition(ctx.Task.Status, ctx.TransitionTo, ctx)
	if req == nil || len(req.Signatures) == 0 {
		return false
	}

	// Group keys are organizational labels; matching is by the role value.
	// Several groups may share a role, so every role-matching group gets a
	// chance to accept the signer. Labels are walked in sorted order to keep
	// repeated evaluations identical.
	for _, label := range sortedLabels(req.Signatures) {
		group := req.Signatures[label]
		if group.Role == sig.Role && groupAccepts(group, ctx.Actor) {
			return true
		}
	}
	return false
}

// IsSignatureEligibleForGroup is the per-group form of IsSignatureEligible.
// Quorum callers count a signature only toward the groups it actually
// satisfies, so a signer valid for one of two same-role groups never
// inflates the other's count.
func (a *Adapter) IsSignatureEligibleForGroup(sig domain.Signature, label string, ctx ValidationContext) bool {
	if ctx.Task == nil {
		return false
	}
	req := a.ResolveTransition(ctx.Task.Status, ctx.TransitionTo, ctx)
	if req == nil {
		return false
	}
	group, ok := req.Signatures[label]
	if !ok || group.Role != sig.Role {
		return false
	}
	return groupAccepts(group, ctx.Actor)
}

// groupAccepts applies one group's actor constraints: type, allow-list,
// then capability intersection. An unidentified signer can never be
// eligible.
func groupAccepts(group methodology.SignatureRequirement, actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	if group.ActorType != "" && actor.Type != group.ActorType {
		return false
	}
	if len(group.SpecificActors) > 0 && !contains(group.SpecificActors, actor.ID) {
		return false
	}
	for _, capability := range group.CapabilityRoles {
		if actor.HasRole(capability) {
			return true
		}
	}
	return false
}

func sortedLabels(groups map[string]methodology.SignatureRequirement) []string {
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
