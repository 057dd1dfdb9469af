package workflow

import (
	"sort"
	"strings"

	"govline/internal/methodology"
)

// Column label synonyms for states whose canonical board name differs from
// the state identifier.
var defaultColumnLabels = map[string]string{
	"paused":    "Blocked",
	"discarded": "Cancelled",
}

// ProjectView returns the named view merged onto a complete
// column-per-state template covering every state in the transition graph.
// States the view does not explicitly assign still appear under their
// canonical default label. Unknown view names return nil; no default view is
// invented.
func (a *Adapter) ProjectView(name string) *methodology.ViewConfig {
	model := a.Model()
	view, ok := model.ViewConfigs[name]
	if !ok {
		return nil
	}

	assigned := map[string]bool{}
	columns := make(map[string][]string, len(view.Columns))
	for label, states := range view.Columns {
		columns[label] = append([]string(nil), states...)
		for _, s := range states {
			assigned[s] = true
		}
	}

	var missing []string
	for _, state := range model.States() {
		if !assigned[state] {
			missing = append(missing, state)
		}
	}
	sort.Strings(missing)
	for _, state := range missing {
		label := defaultColumnLabel(state)
		columns[label] = append(columns[label], state)
	}

	return &methodology.ViewConfig{
		Columns: columns,
		Theme:   view.Theme,
		Layout:  view.Layout,
	}
}

func defaultColumnLabel(state string) string {
	if label, ok := defaultColumnLabels[state]; ok {
		return label
	}
	return strings.ToUpper(state[:1]) + state[1:]
}
