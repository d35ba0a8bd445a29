package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trf/internal/port"
)

var reportsJSON bool

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect stored reports",
	Long: `List, show or delete reports kept by the configured report store.

Examples:
  trf reports list
  trf reports show <id> --json
  trf reports delete <id>`,
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored report IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := requireStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ids, err := st.ListReportIDs()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := requireStore()
		if err != nil {
			return err
		}
		defer st.Close()

		report, ok, err := st.GetReport(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("report %s not found", args[0])
		}

		if reportsJSON {
			output, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return nil
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := requireStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteReport(args[0]); err != nil {
			return err
		}
		n, err := st.CountReports()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d reports left)\n", args[0], n)
		return nil
	},
}

func requireStore() (port.ReportStore, error) {
	st, err := openStore(GetConfig(), GetRootDir(), logger)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errors.New("report store is disabled (store.backend: none)")
	}
	return st, nil
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsDeleteCmd)
	reportsShowCmd.Flags().BoolVar(&reportsJSON, "json", false, "output as JSON")
}
