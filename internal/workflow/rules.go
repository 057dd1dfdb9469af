package workflow

import "govline/internal/methodology"

// RuleValidator is a pure predicate over the validation context and the
// rule's declared parameters. Returning false is the ordinary "not
// satisfied" outcome; validators do not raise for business negatives.
type RuleValidator func(ctx ValidationContext, params map[string]any) bool

// RegisterValidator installs a named validator for rules declared with
// validation=custom. The rule's module_path (or, failing that, expression)
// is the lookup key; configuration supplies the key and parameters, never
// code. Must be called before concurrent use.
func (a *Adapter) RegisterValidator(name string, v RuleValidator) {
	if a.validators == nil {
		a.validators = map[string]RuleValidator{}
	}
	a.validators[name] = v
}

// AreCustomRulesSatisfied evaluates the named rules conjunctively. An empty
// list is vacuously satisfied. A name with no definition in the methodology
// is a misconfiguration: it is logged and fails the whole call rather than
// being skipped.
func (a *Adapter) AreCustomRulesSatisfied(ruleNames []string, ctx ValidationContext) bool {
	model := a.Model()
	for _, name := range ruleNames {
		rule, ok := model.CustomRules[name]
		if !ok {
			a.log().Printf("custom rule %s referenced but not defined in methodology %s", name, model.Name)
			return false
		}
		if !a.evaluateRule(name, rule, ctx) {
			return false
		}
	}
	return true
}

func (a *Adapter) evaluateRule(name string, rule methodology.CustomRuleDef, ctx ValidationContext) bool {
	switch rule.Validation {
	case methodology.ValidationAssignmentRequired:
		return assignmentRequired(ctx, rule.Parameters)
	case methodology.ValidationSprintCapacity:
		return sprintCapacity(ctx, rule.Parameters)
	case methodology.ValidationEpicComplexity:
		return epicComplexity(ctx, rule.Parameters)
	case methodology.ValidationCustom:
		key := rule.ModulePath
		if key == "" {
			key = rule.Expression
		}
		validator, ok := a.validators[key]
		if !ok {
			a.log().Printf("custom rule %s names validator %q but none is registered", name, key)
			return false
		}
		return validator(ctx, rule.Parameters)
	default:
		a.log().Printf("custom rule %s has unknown validation kind %q", name, rule.Validation)
		return false
	}
}

// assignmentRequired passes when the task has an explicit, resolved
// assignment feedback. A resolved assignment record stands in for "the task
// has a valid assignee".
func assignmentRequired(ctx ValidationContext, _ map[string]any) bool {
	if ctx.Task == nil {
		return false
	}
	for _, fb := range ctx.Feedbacks {
		if fb.EntityType == "task" && fb.EntityID == ctx.Task.ID &&
			fb.Type == "assignment" && fb.Status == "resolved" {
			return true
		}
	}
	return false
}

// sprintCapacity passes when the task belongs to at least one in-flight
// planning cycle.
func sprintCapacity(ctx ValidationContext, _ map[string]any) bool {
	if ctx.Task == nil {
		return false
	}
	active := map[string]bool{}
	for _, c := range ctx.Cycles {
		if c.Status == "active" {
			active[c.ID] = true
		}
	}
	for _, id := range ctx.Task.CycleIDs {
		if active[id] {
			return true
		}
	}
	return false
}

// epicComplexity gates promotion of tasks that have sprawled across too many
// cycles; such tasks should be split instead.
func epicComplexity(ctx ValidationContext, params map[string]any) bool {
	if ctx.Task == nil {
		return false
	}
	max := 2
	if v, ok := params["max_cycles"]; ok {
		switch n := v.(type) {
		case float64:
			max = int(n)
		case int:
			max = n
		}
	}
	return len(ctx.Task.CycleIDs) <= max
}
