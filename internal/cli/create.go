package cli

import (
	"context"
	"fmt"

	"github.com/madara-alliance/madara-cli/internal/deploy"
	"github.com/madara-alliance/madara-cli/internal/params"
)

// CreateFlags are the explicit values given on the command line. A nil field
// was not given and is resolved later.
type CreateFlags struct {
	Mode *string

	Name        *string
	BasePath    *string
	ChainConfig *string
	L1Endpoint  *string
	Network     *string
	RPCAPIURL   *string

	GasPrice     *uint64
	BlobGasPrice *uint64
	BlockTime    *string

	Prover      *string
	AtlanticKey *string
	AtlanticURL *string
	MinBlock    *uint64
	MaxBlock    *uint64
	DeployL2    *bool
}

// Bundle builds the partial bundle described by the flags. Without a mode it
// returns nil so the mode is selected interactively; flags that do not belong
// to the mode are rejected.
func (f CreateFlags) Bundle() (params.Bundle, error) {
	if f.Mode == nil {
		if used := f.given(); len(used) > 0 {
			return nil, fmt.Errorf("--%s requires --mode", used[0])
		}
		return nil, nil
	}

	mode, err := params.ParseMode(*f.Mode)
	if err != nil {
		return nil, err
	}
	if err := f.checkApplicable(mode); err != nil {
		return nil, err
	}

	switch mode {
	case params.ModeDevnet:
		return &params.DevnetParams{Name: f.Name, BasePath: f.BasePath}, nil

	case params.ModeSequencer:
		return &params.SequencerParams{
			Name:            f.Name,
			BasePath:        f.BasePath,
			ChainConfigPath: f.ChainConfig,
			L1Endpoint:      f.L1Endpoint,
			GasPrice:        f.GasPrice,
			BlobGasPrice:    f.BlobGasPrice,
			BlockTime:       f.BlockTime,
		}, nil

	case params.ModeFullNode:
		b := &params.FullNodeParams{Name: f.Name, BasePath: f.BasePath, RPCAPIURL: f.RPCAPIURL}
		if f.Network != nil {
			n, err := params.ParseNetwork(*f.Network)
			if err != nil {
				return nil, err
			}
			b.Network = &n
		}
		return b, nil

	default:
		b := &params.AppChainParams{
			Name:            f.Name,
			ChainConfigPath: f.ChainConfig,
			L1Endpoint:      f.L1Endpoint,
			GasPrice:        f.GasPrice,
			BlobGasPrice:    f.BlobGasPrice,
			BlockTime:       f.BlockTime,
		}
		if f.Prover != nil {
			p, err := params.ParseProverType(*f.Prover)
			if err != nil {
				return nil, err
			}
			b.Prover.Type = &p
		}
		b.Prover.APIKey = f.AtlanticKey
		b.Prover.ServiceURL = f.AtlanticURL
		b.Prover.MinBlock = f.MinBlock
		b.Prover.MaxBlock = f.MaxBlock
		b.Bootstrapper.DeployL2Contracts = f.DeployL2
		return b, nil
	}
}

type flagUse struct {
	name  string
	set   bool
	modes []params.Mode
}

func (f CreateFlags) uses() []flagUse {
	all := params.Modes
	node := []params.Mode{params.ModeSequencer, params.ModeAppChain}
	appChain := []params.Mode{params.ModeAppChain}
	return []flagUse{
		{"name", f.Name != nil, all},
		{"base-path", f.BasePath != nil, []params.Mode{params.ModeDevnet, params.ModeSequencer, params.ModeFullNode}},
		{"chain-config", f.ChainConfig != nil, node},
		{"l1-endpoint", f.L1Endpoint != nil, node},
		{"network", f.Network != nil, []params.Mode{params.ModeFullNode}},
		{"rpc-api-url", f.RPCAPIURL != nil, []params.Mode{params.ModeFullNode}},
		{"gas-price", f.GasPrice != nil, node},
		{"blob-gas-price", f.BlobGasPrice != nil, node},
		{"block-time", f.BlockTime != nil, node},
		{"prover", f.Prover != nil, appChain},
		{"atlantic-api-key", f.AtlanticKey != nil, appChain},
		{"atlantic-url", f.AtlanticURL != nil, appChain},
		{"min-block", f.MinBlock != nil, appChain},
		{"max-block", f.MaxBlock != nil, appChain},
		{"deploy-l2-contracts", f.DeployL2 != nil, appChain},
	}
}

func (f CreateFlags) given() []string {
	var names []string
	for _, u := range f.uses() {
		if u.set {
			names = append(names, u.name)
		}
	}
	return names
}

func (f CreateFlags) checkApplicable(mode params.Mode) error {
	for _, u := range f.uses() {
		if !u.set {
			continue
		}
		applies := false
		for _, m := range u.modes {
			if m == mode {
				applies = true
				break
			}
		}
		if !applies {
			return fmt.Errorf("--%s does not apply to %s mode", u.name, mode.DisplayName())
		}
	}
	return nil
}

// Create resolves, renders and launches a stack
func Create(ctx context.Context, app *AppContext, partial params.Bundle) (deploy.Result, error) {
	rt, err := app.Runtime(ctx)
	if err != nil {
		return deploy.Result{}, err
	}
	driver, err := app.Driver(rt)
	if err != nil {
		return deploy.Result{}, err
	}

	if app.UI.IsNonInteractive() {
		app.UI.Info("Running unattended, using defaults for every unset value")
	}
	return driver.Run(ctx, partial)
}

// Down stops the stacks of modes, or every launched stack when modes is empty
func Down(ctx context.Context, app *AppContext, modes []params.Mode) error {
	driver, err := app.Driver(nil)
	if err != nil {
		return err
	}

	if len(modes) == 0 {
		launches, err := driver.Launched()
		if err != nil {
			return fmt.Errorf("failed to list launched stacks: %w", err)
		}
		if len(launches) == 0 {
			app.UI.Info("No launched stacks")
			return nil
		}
		for _, l := range launches {
			modes = append(modes, l.Mode)
		}
	}

	rt, err := app.Runtime(ctx)
	if err != nil {
		return err
	}
	if driver, err = app.Driver(rt); err != nil {
		return err
	}

	for _, mode := range modes {
		app.UI.Step(fmt.Sprintf("Stopping %s stack", mode.DisplayName()))
		if err := driver.Down(ctx, mode); err != nil {
			return fmt.Errorf("failed to stop %s stack: %w", mode.DisplayName(), err)
		}
	}
	return nil
}
