package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available repair rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, catalog, err := newCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, id := range catalog.Names() {
			rule, _ := catalog.Get(id)
			note := ""
			if rule.BrokenWithTargeted {
				note = "  (forces full render)"
			}
			fmt.Fprintf(out, "%-28s %-8s %s%s\n", rule.ID, rule.Severity, rule.Description, note)
		}
		return nil
	},
}
