package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/ogulcanaydogan/settings-bill/pkg/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled actions, newest first",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("type", "t", "", "Filter by action type")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of actions (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	actionType, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer journal.Close()

	actions, err := journal.QueryActions(cmd.Context(), model.ActionFilter{
		Type:  model.ActionType(actionType),
		Limit: limit,
	})
	if err != nil {
		return fmt.Errorf("query actions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(actions) == 0 {
		fmt.Fprintln(out, "No actions journaled.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIMESTAMP\tWHEN\tTYPE\tCOST\n")
	for _, a := range actions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.Timestamp.Local().Format("2006-01-02 15:04:05"),
			humanize.Time(a.Timestamp),
			a.Type,
			model.FormatAmount(a.Cost),
		)
	}
	return w.Flush()
}
