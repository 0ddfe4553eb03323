package main

import (
	"github.com/spf13/cobra"

	"github.com/madara-alliance/madara-cli/internal/cli"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Interactively create a configuration file under <stack-dir>/data/.

The file holds the L1, wallet, chain and orchestrator settings used as
defaults by create. Existing values of the loaded configuration seed every
question.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		path, err := cli.Init(app)
		if err != nil {
			return err
		}
		app.UI.Infof("Use it with: madara-cli create --config-file %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
