package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/madara-alliance/madara-cli/internal/params"
)

// ErrExit is returned when the user chooses to exit the menu
var ErrExit = errors.New("exit")

// Menu provides an interactive menu interface
type Menu struct {
	ctx context.Context
	app *AppContext
	// pause waits for the operator between screens
	pause func()
}

// NewMenu creates a new Menu instance
func NewMenu(ctx context.Context, app *AppContext) *Menu {
	return &Menu{ctx: ctx, app: app, pause: waitForEnter}
}

func waitForEnter() {
	fmt.Scanln()
}

// clearScreen clears the terminal screen using ANSI escape codes
func (m *Menu) clearScreen() {
	fmt.Fprint(m.app.UI.Writer(), "\033[2J\033[H")
}

// Show displays the main menu and handles user input
func (m *Menu) Show() error {
	if m.app.UI.IsNonInteractive() {
		return fmt.Errorf("the interactive menu needs a terminal; run a subcommand instead (see --help)")
	}

	for {
		m.clearScreen()
		m.displayMenu()

		choice, err := m.app.UI.Ask("Enter your choice", "", nil)
		if err != nil {
			return err
		}

		if err := m.handleChoice(strings.ToUpper(strings.TrimSpace(choice))); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			m.app.UI.Error(err.Error())
		}
		m.app.UI.Print("")
		m.app.UI.Info("Press Enter to return to menu...")
		m.pause()
	}
}

// displayMenu displays the main menu
func (m *Menu) displayMenu() {
	out := m.app.UI.Writer()
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	m.app.UI.Header("Madara CLI")
	m.app.UI.Info("Launch and manage a local Madara node stack.")
	if m.app.Config.Exists() {
		m.app.UI.Infof("Configuration: %s", m.app.Config.FilePath())
	} else {
		m.app.UI.Info("Configuration: built-in defaults (run [I] to create one)")
	}
	fmt.Fprintln(out)

	m.app.UI.Separator()
	m.app.UI.Info("Launch:")
	m.app.UI.Separator()
	fmt.Fprintln(out)

	launched := map[string]bool{}
	if names, err := m.app.Markers.List(); err == nil {
		for _, n := range names {
			launched[n] = true
		}
	}
	for i, mode := range params.Modes {
		status := "  "
		if launched[mode.String()] {
			status = green.Sprint("✓")
		}
		bold.Fprintf(out, "  [%d] ", i+1)
		fmt.Fprintf(out, "%s %s\n", status, mode.DisplayName())
	}
	fmt.Fprintln(out)

	m.app.UI.Separator()
	m.app.UI.Info("Other Options:")
	m.app.UI.Separator()
	fmt.Fprintln(out)

	for _, o := range []struct{ key, label string }{
		{"I", "Create Configuration File"},
		{"S", "Show Stack Status"},
		{"D", "Stop Launched Stacks"},
		{"T", "Run Diagnostics"},
		{"H", "Help"},
		{"X", "Exit"},
	} {
		bold.Fprintf(out, "  [%s] ", o.key)
		fmt.Fprintln(out, o.label)
	}
	fmt.Fprintln(out)
}

// handleChoice processes the user's menu choice
func (m *Menu) handleChoice(choice string) error {
	switch choice {
	case "1", "2", "3", "4":
		return m.launch(params.Modes[int(choice[0]-'1')])
	case "I":
		_, err := Init(m.app)
		return err
	case "S":
		return m.showStatus()
	case "D":
		return Down(m.ctx, m.app, nil)
	case "T":
		PrintChecks(m.app, Doctor(m.ctx, m.app, AllDiagnostics))
		return nil
	case "H":
		m.showHelp()
		return nil
	case "X":
		return ErrExit
	default:
		return fmt.Errorf("invalid choice: %s", choice)
	}
}

func (m *Menu) launch(mode params.Mode) error {
	m.clearScreen()
	m.app.UI.Header(fmt.Sprintf("Launching %s", mode.DisplayName()))

	partial, err := params.New(mode)
	if err != nil {
		return err
	}
	_, err = Create(m.ctx, m.app, partial)
	return err
}

func (m *Menu) showStatus() error {
	rt, err := m.app.Runtime(m.ctx)
	if err != nil {
		m.app.UI.Warning(err.Error())
	}
	stacks, err := Status(m.ctx, m.app, rt)
	if err != nil {
		return err
	}
	PrintStatus(m.app, stacks)
	return nil
}

const helpText = `
MODES:

  Devnet      Local development network with predeployed accounts.
  Sequencer   Block-producing node, optionally synced with an L1.
  Full Node   Node following a public Starknet network. Asks for an
              L1 RPC URL, stored in a secret file.
  App Chain   Full stack: anvil, bootstrapper, madara, pathfinder and
              the orchestrator.

FILES:

  <stack>/data/*.toml           Global configuration (madara-cli init)
  <stack>/madara/.env           Values reused as defaults on the next run
  <stack>/madara/.secrets/      RPC API secret
  <stack>/.launched/            Launched stacks

COMMAND-LINE MODE:

  madara-cli create --mode devnet         Launch without the menu
  madara-cli create --mode devnet -d      Use defaults, no prompts
  madara-cli status                       Show launched stacks
  madara-cli down                         Stop launched stacks
  madara-cli doctor                       Run diagnostics
`

func (m *Menu) showHelp() {
	m.clearScreen()
	m.app.UI.Header("Help")
	m.app.UI.Print(helpText)
}
