package main

import (
	"github.com/spf13/cobra"

	"github.com/madara-alliance/madara-cli/internal/cli"
	"github.com/madara-alliance/madara-cli/internal/params"
)

var downMode string

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop launched stacks",
	Long:  `Stop a launched stack and remove its volumes. Without --mode every launched stack is stopped.`,
	Args:  cobra.NoArgs,
	RunE:  runDown,
}

func init() {
	downCmd.Flags().StringVarP(&downMode, "mode", "m", "", "Mode of the stack to stop")
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, args []string) error {
	var modes []params.Mode
	if downMode != "" {
		mode, err := params.ParseMode(downMode)
		if err != nil {
			return err
		}
		modes = append(modes, mode)
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	return cli.Down(cmd.Context(), app, modes)
}
