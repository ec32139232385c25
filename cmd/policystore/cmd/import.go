package cmd

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/solatis/policystore/internal/adapter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the stored rules with a casbin CSV policy file",
	Long: `import reads a casbin model and CSV policy file and saves every rule
into the policy table, replacing its previous contents in one transaction.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("model", "", "casbin model file (.conf)")
	importCmd.Flags().String("policy", "", "casbin policy file (.csv)")
	importCmd.MarkFlagRequired("model")
	importCmd.MarkFlagRequired("policy")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	modelPath, _ := cmd.Flags().GetString("model")
	policyPath, _ := cmd.Flags().GetString("policy")

	enforcer, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return fmt.Errorf("failed to read policy: %w", err)
	}

	database, st, err := openStore(ctx, nil)
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := adapter.NewAdapter(ctx, st, logger)
	if err != nil {
		return err
	}

	m := enforcer.GetModel()
	if err := a.SavePolicyCtx(ctx, m); err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	count := 0
	for _, sec := range []string{"p", "g"} {
		for _, ast := range m[sec] {
			count += len(ast.Policy)
		}
	}
	logger.Info("policy imported", zap.String("policy", policyPath), zap.Int("rules", count))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules into %s\n", count, st.Table())
	return nil
}
