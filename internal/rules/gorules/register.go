package gorules

import "mend/internal/rules"

// RegisterAll adds every built-in Go rule to the registry.
func RegisterAll(reg *rules.Registry) error {
	for _, rule := range []rules.Rule{
		boolLiteralCompareRule(),
		redundantParensRule(),
		selfAssignmentRule(),
		switchMissingDefaultRule(),
	} {
		if err := reg.Register(rule); err != nil {
			return err
		}
	}
	return nil
}
