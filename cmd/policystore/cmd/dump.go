package cmd

import (
	"fmt"

	"github.com/solatis/policystore/internal/core/store"
	"github.com/solatis/policystore/internal/types"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print stored rules as casbin policy lines",
	Long: `dump prints every stored rule as "ptype, v0, v1, ...".
With --p or --g only matching rules are printed; values are LIKE patterns
and empty positions match anything.`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringSlice("p", nil, "policy rule filter, comma separated (e.g. alice,,read)")
	dumpCmd.Flags().StringSlice("g", nil, "grouping rule filter, comma separated (e.g. alice)")
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	database, st, err := openStore(ctx, nil)
	if err != nil {
		return err
	}
	defer database.Close()

	var rows []types.StoredRow
	if cmd.Flags().Changed("p") || cmd.Flags().Changed("g") {
		p, _ := cmd.Flags().GetStringSlice("p")
		g, _ := cmd.Flags().GetStringSlice("g")
		rows, err = st.LoadFiltered(ctx, types.Filter{P: p, G: g})
	} else {
		rows, err = st.LoadAll(ctx)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rule := range store.ToRules(rows) {
		fmt.Fprintln(out, rule.Line())
	}
	return nil
}
