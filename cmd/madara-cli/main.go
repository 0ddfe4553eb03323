package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/madara-alliance/madara-cli/internal/cli"
	"github.com/madara-alliance/madara-cli/pkg/version"
)

var (
	verbose     bool
	configFile  string
	useDefaults bool
	stackDir    string
)

var rootCmd = &cobra.Command{
	Use:   "madara-cli",
	Short: "Madara node stack launcher",
	Long: `Launch a local Madara Starknet node stack.

Supported modes:
- Devnet: local development network
- Sequencer: block-producing node
- Full Node: node following a public network
- App Chain: madara, pathfinder, orchestrator, anvil and bootstrapper

Values not given as flags are taken from earlier runs, the configuration
file or prompts. Run without arguments to launch the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractiveMenu,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVarP(&configFile, "config-file", "c", "", "Configuration file (default <stack-dir>/data/my_custom_config.toml)")
	flags.BoolVarP(&useDefaults, "default", "d", false, "Use defaults for every unset value, never prompt")
	flags.StringVar(&stackDir, "stack-dir", cli.DefaultStackDir, "Directory holding the service build contexts")

	rootCmd.AddCommand(versionCmd)
}

// newApp builds the app context from the global flags
func newApp() (*cli.AppContext, error) {
	app, err := cli.NewAppContext(cli.Options{
		StackDir:    stackDir,
		ConfigFile:  configFile,
		UseDefaults: useDefaults,
		Verbose:     verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return app, nil
}

func runInteractiveMenu(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	return cli.NewMenu(cmd.Context(), app).Show()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
