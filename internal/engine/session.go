package engine

import (
	"mend/internal/rules"
	"mend/internal/tree"
)

// session is the per-file, per-pass repair state. It is created at the
// start of a pass and discarded once the pass's edits are applied and
// the file re-rendered; violation handles inside it die with the pass.
type session struct {
	violations []rules.Violation
	accepted   []rules.Violation
	deferred   []rules.Violation
	planned    []plannedRepair
}

// plannedRepair is one accepted violation whose processor produced an
// edit set, waiting for batch application.
type plannedRepair struct {
	violation rules.Violation
	edits     tree.EditSet
	broken    bool // rule is incompatible with targeted rendering
}
