package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ogulcanaydogan/settings-bill/pkg/tariff"
)

var tariffCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Inspect tariff files",
}

var tariffShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Show the settings a tariff file applies",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTariffShow,
}

func init() {
	rootCmd.AddCommand(tariffCmd)
	tariffCmd.AddCommand(tariffShowCmd)
}

func runTariffShow(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Tariff.File
	}
	if path == "" {
		return fmt.Errorf("no tariff file given and tariff.file is not configured")
	}

	settings, err := tariff.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tariff: %s\n", path)
	printSettings(out, settings)
	return nil
}
