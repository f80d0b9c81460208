package engine

import "sort"

// RuleStats tallies one rule's outcomes across all passes of a repair.
type RuleStats struct {
	RuleID   string `json:"rule_id"`
	Found    int    `json:"violations_found"`
	Applied  int    `json:"repairs_applied"`
	Declined int    `json:"repairs_declined"`
	Crashed  int    `json:"crashes"`
}

// CrashRecord captures one processor crash with enough context for
// triage. It is a first-class output, not a log line.
type CrashRecord struct {
	RuleID  string `json:"rule_id"`
	Path    string `json:"path"`
	Line    uint32 `json:"line"`
	Col     uint32 `json:"col"`
	Failure string `json:"failure"`
}

// Statistics is the structured report of one file's repair.
type Statistics struct {
	perRule map[string]*RuleStats

	Passes          int
	RenderFallbacks int
	Crashes         []CrashRecord
	PassFailures    []string
}

// NewStatistics creates an empty report, also used as the aggregation
// root in project mode.
func NewStatistics() *Statistics {
	return &Statistics{perRule: make(map[string]*RuleStats)}
}

func (s *Statistics) rule(id string) *RuleStats {
	rs, ok := s.perRule[id]
	if !ok {
		rs = &RuleStats{RuleID: id}
		s.perRule[id] = rs
	}
	return rs
}

// Rule returns the tallies for one rule id, zero-valued when the rule
// never fired.
func (s *Statistics) Rule(id string) RuleStats {
	if rs, ok := s.perRule[id]; ok {
		return *rs
	}
	return RuleStats{RuleID: id}
}

// PerRule returns all tallies sorted by rule id.
func (s *Statistics) PerRule() []RuleStats {
	out := make([]RuleStats, 0, len(s.perRule))
	for _, rs := range s.perRule {
		out = append(out, *rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out
}

// TotalApplied sums applied repairs over all rules.
func (s *Statistics) TotalApplied() int {
	total := 0
	for _, rs := range s.perRule {
		total += rs.Applied
	}
	return total
}

// TotalFound sums candidate violations over all rules.
func (s *Statistics) TotalFound() int {
	total := 0
	for _, rs := range s.perRule {
		total += rs.Found
	}
	return total
}

// Merge folds another file's statistics into this one (project mode).
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	for id, rs := range other.perRule {
		agg := s.rule(id)
		agg.Found += rs.Found
		agg.Applied += rs.Applied
		agg.Declined += rs.Declined
		agg.Crashed += rs.Crashed
	}
	s.Passes += other.Passes
	s.RenderFallbacks += other.RenderFallbacks
	s.Crashes = append(s.Crashes, other.Crashes...)
	s.PassFailures = append(s.PassFailures, other.PassFailures...)
}
