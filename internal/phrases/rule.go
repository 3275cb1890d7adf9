// Package phrases finds and replaces literal tokens in HTML text while
// leaving tags, attribute values and configured ignore zones untouched.
package phrases

// Rule maps one literal token to its replacement markup.
//
// The replacement is kept in three parts so the icon key stays addressable
// after rendering: Prefix + IconKey + Suffix.
type Rule struct {
	Pattern string `json:"pattern"`
	Prefix  string `json:"prefix"`
	IconKey string `json:"icon_key"`
	Suffix  string `json:"suffix"`
}

// Replacement returns the full markup that replaces Pattern.
func (r Rule) Replacement() string {
	return r.Prefix + r.IconKey + r.Suffix
}

// RuleTable is an ordered set of rules with unique patterns.
// The first rule registered for a pattern wins.
type RuleTable struct {
	rules []Rule
	index map[string]int
}

// NewRuleTable builds a table from rules, dropping later duplicates.
func NewRuleTable(rules ...Rule) *RuleTable {
	t := &RuleTable{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}

	for _, r := range rules {
		t.Add(r)
	}

	return t
}

// Add appends r unless its pattern is empty or already registered.
// It reports whether the rule was added.
func (t *RuleTable) Add(r Rule) bool {
	if r.Pattern == "" {
		return false
	}

	if _, ok := t.index[r.Pattern]; ok {
		return false
	}

	t.index[r.Pattern] = len(t.rules)
	t.rules = append(t.rules, r)

	return true
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}

	return len(t.rules)
}

// Rules returns a copy of the rules in registration order.
func (t *RuleTable) Rules() []Rule {
	if t == nil {
		return nil
	}

	out := make([]Rule, len(t.rules))
	copy(out, t.rules)

	return out
}

// Lookup returns the rule registered for pattern.
func (t *RuleTable) Lookup(pattern string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}

	i, ok := t.index[pattern]
	if !ok {
		return Rule{}, false
	}

	return t.rules[i], true
}
