package cli

import (
	"fmt"
	"io"
	"math"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ogulcanaydogan/settings-bill/pkg/model"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise journaled actions",
	Long:  `Summarise the SQLite journal by action type for a daily, weekly or monthly period.`,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("period", "P", "daily", "Report period (daily, weekly, monthly)")
	reportCmd.Flags().StringP("type", "t", "", "Filter by action type")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	period, _ := cmd.Flags().GetString("period")
	actionType, _ := cmd.Flags().GetString("type")

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer journal.Close()

	start, end := model.PeriodBounds(model.Period(period))
	filter := model.ActionFilter{
		Type:      model.ActionType(actionType),
		StartTime: start,
		EndTime:   end,
	}

	ctx := cmd.Context()
	summary, err := journal.Summarize(ctx, filter)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	resets, err := journal.CountResets(ctx, filter)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	settings, err := journal.LatestSettings(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Settings Bill Report (%s) ===\n", period)
	fmt.Fprintf(out, "Period: %s to %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Fprintf(out, "Total Cost:    %s\n", model.FormatAmount(summary.TotalCost))
	fmt.Fprintf(out, "Total Actions: %d\n", summary.ActionCount)
	fmt.Fprintf(out, "Resets:        %d\n", resets)

	if len(summary.ByType) > 0 {
		fmt.Fprintf(out, "\nBy Type:\n")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  TYPE\tCOUNT\tCOST\n")
		for _, t := range sortedTypes(summary.ByType) {
			fmt.Fprintf(w, "  %s\t%d\t%s\n", t, summary.CountByType[t], model.FormatAmount(summary.ByType[t]))
		}
		w.Flush()
	}

	if settings != nil {
		fmt.Fprintf(out, "\nCurrent Settings:\n")
		printSettings(out, *settings)
	}

	return nil
}

func sortedTypes(m map[model.ActionType]float64) []model.ActionType {
	types := make([]model.ActionType, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func printSettings(out io.Writer, s model.Settings) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Call cost\t%s\n", settingText(s.CallCost))
	fmt.Fprintf(w, "  SMS cost\t%s\n", settingText(s.SmsCost))
	fmt.Fprintf(w, "  Warning level\t%s\n", settingText(s.WarningLevel))
	fmt.Fprintf(w, "  Critical level\t%s\n", settingText(s.CriticalLevel))
	w.Flush()
}

func settingText(v float64) string {
	if math.IsNaN(v) {
		return "unset"
	}
	return model.FormatAmount(v)
}
