package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the policy table if it does not exist",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	database, st, err := openStore(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer database.Close()

	logger.Info("policy table provisioned", zap.String("table", st.Table()), zap.String("dialect", st.Dialect().Name))
	fmt.Fprintf(cmd.OutOrStdout(), "policy table %s ready\n", st.Table())
	return nil
}
