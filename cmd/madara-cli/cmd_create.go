package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/madara-alliance/madara-cli/internal/cli"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Resolve parameters, render artifacts and launch a stack",
	Long: `Resolve the parameters of a deployment mode, render its launcher script,
environment file and compose manifest, build the images and start the stack.

Without --mode the mode is selected interactively. Every flag is optional;
values not given are taken from earlier runs, the configuration file or
prompts.

Examples:
  madara-cli create --mode devnet --base-path ./data
  madara-cli create --mode sequencer --chain-config sepolia --l1-endpoint ""
  madara-cli create --mode full-node --network mainnet
  madara-cli create --mode app-chain --prover dummy -d`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var createOpts struct {
	mode, name, basePath, chainConfig, l1Endpoint, network, rpcAPIURL string
	gasPrice, blobGasPrice                                            uint64
	blockTime, prover, atlanticKey, atlanticURL                       string
	minBlock, maxBlock                                                uint64
	deployL2                                                          bool
}

func init() {
	f := createCmd.Flags()
	f.StringVarP(&createOpts.mode, "mode", "m", "", "Mode: devnet, sequencer, full-node or app-chain")
	f.StringVar(&createOpts.name, "name", "", "Node name")
	f.StringVar(&createOpts.basePath, "base-path", "", "Database directory on the host")
	f.StringVar(&createOpts.chainConfig, "chain-config", "", "Chain config preset (devnet, mainnet, sepolia, integration, test) or file path")
	f.StringVar(&createOpts.l1Endpoint, "l1-endpoint", "", "L1 RPC endpoint; empty runs a sequencer without L1 sync")
	f.StringVar(&createOpts.network, "network", "", "Network to follow: mainnet, testnet, integration or devnet")
	f.StringVar(&createOpts.rpcAPIURL, "rpc-api-url", "", "L1 RPC URL of a full node, stored as a secret")
	f.Uint64Var(&createOpts.gasPrice, "gas-price", 0, "L1 gas price override")
	f.Uint64Var(&createOpts.blobGasPrice, "blob-gas-price", 0, "L1 blob gas price override")
	f.StringVar(&createOpts.blockTime, "block-time", "", "Block time, e.g. 10s")
	f.StringVar(&createOpts.prover, "prover", "", "Prover: dummy, atlantic or stwo")
	f.StringVar(&createOpts.atlanticKey, "atlantic-api-key", "", "Atlantic API key")
	f.StringVar(&createOpts.atlanticURL, "atlantic-url", "", "Atlantic service URL")
	f.Uint64Var(&createOpts.minBlock, "min-block", 0, "First block the orchestrator processes")
	f.Uint64Var(&createOpts.maxBlock, "max-block", 0, "Last block the orchestrator processes")
	f.BoolVar(&createOpts.deployL2, "deploy-l2-contracts", true, "Deploy L2 contracts with the bootstrapper")

	rootCmd.AddCommand(createCmd)
}

// given returns a pointer to v when the flag was set on the command line
func given[T any](flags *pflag.FlagSet, name string, v T) *T {
	if !flags.Changed(name) {
		return nil
	}
	return &v
}

func createFlags(flags *pflag.FlagSet) cli.CreateFlags {
	o := createOpts
	return cli.CreateFlags{
		Mode:         given(flags, "mode", o.mode),
		Name:         given(flags, "name", o.name),
		BasePath:     given(flags, "base-path", o.basePath),
		ChainConfig:  given(flags, "chain-config", o.chainConfig),
		L1Endpoint:   given(flags, "l1-endpoint", o.l1Endpoint),
		Network:      given(flags, "network", o.network),
		RPCAPIURL:    given(flags, "rpc-api-url", o.rpcAPIURL),
		GasPrice:     given(flags, "gas-price", o.gasPrice),
		BlobGasPrice: given(flags, "blob-gas-price", o.blobGasPrice),
		BlockTime:    given(flags, "block-time", o.blockTime),
		Prover:       given(flags, "prover", o.prover),
		AtlanticKey:  given(flags, "atlantic-api-key", o.atlanticKey),
		AtlanticURL:  given(flags, "atlantic-url", o.atlanticURL),
		MinBlock:     given(flags, "min-block", o.minBlock),
		MaxBlock:     given(flags, "max-block", o.maxBlock),
		DeployL2:     given(flags, "deploy-l2-contracts", o.deployL2),
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	partial, err := createFlags(cmd.Flags()).Bundle()
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	_, err = cli.Create(cmd.Context(), app, partial)
	return err
}
