package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/madara-alliance/madara-cli/internal/cli"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"troubleshoot"},
	Short:   "Run diagnostics",
	Long:    `Check the container runtime, the configuration and the stack layout.`,
	Args:    cobra.NoArgs,
	RunE:    runDoctor,
}

var (
	doctorRuntime bool
	doctorConfig  bool
	doctorLayout  bool
	doctorNetwork bool
)

func init() {
	doctorCmd.Flags().BoolVarP(&doctorRuntime, "runtime", "r", false, "Check the container runtime only")
	doctorCmd.Flags().BoolVarP(&doctorConfig, "config", "k", false, "Check the configuration only")
	doctorCmd.Flags().BoolVarP(&doctorLayout, "layout", "l", false, "Check the stack layout only")
	doctorCmd.Flags().BoolVarP(&doctorNetwork, "network", "n", false, "Check ports and the stored RPC endpoint only")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	d := cli.Diagnostics{Runtime: doctorRuntime, Config: doctorConfig, Layout: doctorLayout, Network: doctorNetwork}
	if d == (cli.Diagnostics{}) {
		d = cli.AllDiagnostics
	}

	app.UI.Header("Madara CLI Diagnostics")
	if failed := cli.PrintChecks(app, cli.Doctor(cmd.Context(), app, d)); failed > 0 {
		return fmt.Errorf("%d diagnostic check(s) failed", failed)
	}
	return nil
}
