package main

import (
	"github.com/spf13/cobra"

	"github.com/madara-alliance/madara-cli/internal/cli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show launched stacks",
	Long:  `List the launched stacks with the services and images of their manifests.`,
	Args:  cobra.NoArgs,
	RunE:  showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	// Status works without a container runtime; running state is then unknown
	rt, err := app.Runtime(cmd.Context())
	if err != nil {
		app.UI.Warning(err.Error())
	}

	stacks, err := cli.Status(cmd.Context(), app, rt)
	if err != nil {
		return err
	}
	cli.PrintStatus(app, stacks)
	return nil
}
