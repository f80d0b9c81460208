// Package rules defines the rule catalog contract: a rule pairs a check
// that locates violations in a tree with a processor that describes the
// minimal edit eliminating one violation. Checks and processors are
// black boxes to the engine; the registry is populated once at startup
// and read-only afterwards.
package rules

import (
	"mend/internal/source"
	"mend/internal/tree"
)

// Severity of a reported violation.
type Severity uint8

const (
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Violation is one reported instance of a rule being broken. It is
// immutable once produced and valid for a single analysis pass: the
// node handle dies with the next tree mutation.
type Violation struct {
	RuleID   string
	Node     tree.NodeID
	Span     source.Span
	Message  string
	Severity Severity
}

// Check locates every violation of one rule in a tree. Checks must be
// deterministic for an unchanged tree and must report node handles
// resolvable against the tree they were given.
type Check interface {
	Check(t *tree.Tree) []Violation
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc func(t *tree.Tree) []Violation

func (f CheckFunc) Check(t *tree.Tree) []Violation { return f(t) }

// Status is the tagged outcome of a processor invocation. Crashes are
// not a status: a processor signals a crash by panicking, and the
// engine records it.
type Status uint8

const (
	StatusApplied Status = iota
	StatusDeclined
)

// Result describes what a processor decided for one violation.
type Result struct {
	Status Status
	Edits  tree.EditSet
	Reason string // decline reason
}

// Applied wraps an edit set into a successful result.
func Applied(edits tree.EditSet) Result {
	return Result{Status: StatusApplied, Edits: edits}
}

// Declined reports that the processor's precondition no longer holds or
// the pattern is unsupported. Not an error: the engine records a no-op.
func Declined(reason string) Result {
	return Result{Status: StatusDeclined, Reason: reason}
}

// Processor produces the repair for one flagged node. Implementations
// are pure functions of the current tree state: they must not mutate
// the tree and must not retain handles across invocations.
type Processor interface {
	Repair(t *tree.Tree, node tree.NodeID) Result
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(t *tree.Tree, node tree.NodeID) Result

func (f ProcessorFunc) Repair(t *tree.Tree, node tree.NodeID) Result { return f(t, node) }

// Rule bundles a check with its processor under a stable identifier.
type Rule struct {
	ID          string
	Description string
	Severity    Severity
	Check       Check
	Processor   Processor

	// BrokenWithTargeted marks rules whose edits the targeted renderer
	// cannot attribute to original spans; files repaired by such a rule
	// fall back to full rendering.
	BrokenWithTargeted bool
}
