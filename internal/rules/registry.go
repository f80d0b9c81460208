package rules

import (
	"fmt"
	"sort"
)

// Registry holds the rule catalog keyed by rule id.
type Registry struct {
	rules map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule. Re-registration of an id is an error, as is a
// rule missing its check or processor.
func (r *Registry) Register(rule Rule) error {
	switch {
	case rule.ID == "":
		return fmt.Errorf("rules: empty rule id")
	case rule.Check == nil:
		return fmt.Errorf("rules: rule %q has no check", rule.ID)
	case rule.Processor == nil:
		return fmt.Errorf("rules: rule %q has no processor", rule.ID)
	}
	if _, exists := r.rules[rule.ID]; exists {
		return fmt.Errorf("rules: rule %q already registered", rule.ID)
	}
	r.rules[rule.ID] = rule
	return nil
}

// Get returns the rule for id.
func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.rules[id]
	return rule, ok
}

// Names returns all registered ids in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for id := range r.rules {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// Resolve maps the requested ids to rules. An unknown id is a
// configuration error, reported before any analysis runs. An empty
// request selects the whole catalog.
func (r *Registry) Resolve(ids []string) ([]Rule, error) {
	if len(ids) == 0 {
		ids = r.Names()
	}
	out := make([]Rule, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		rule, ok := r.rules[id]
		if !ok {
			return nil, fmt.Errorf("rules: unknown rule id %q", id)
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
