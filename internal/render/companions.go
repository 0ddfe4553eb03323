package render

import (
	"fmt"
	"strconv"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
)

// MadaraRPCURL is the madara RPC endpoint inside the app-chain network
const MadaraRPCURL = "http://madara:9944"

// PathfinderArgs compiles the indexer flags. Chain id and gateway URLs are
// only passed for a custom network; public networks use pathfinder's built-in
// values.
func PathfinderArgs(p params.IndexerParams) ([]string, error) {
	ethURL, err := common.DockerHostURL(*p.EthereumURL)
	if err != nil {
		return nil, common.ValidationError("pathfinder.ethereum_url", err)
	}

	args := []string{flag("network", p.Network.String())}
	if *p.Network == params.IndexerCustom {
		args = append(args, flag("chain-id", *p.ChainID))
	}
	args = append(args, flag("ethereum.url", ethURL))
	if *p.Network == params.IndexerCustom {
		args = append(args,
			flag("gateway-url", *p.GatewayURL),
			flag("feeder-gateway-url", *p.FeederGatewayURL),
		)
	}
	return append(args,
		"--storage.state-tries archive",
		flag("data-directory", *p.DataDirectory),
		flag("http-rpc", *p.HTTPRPC),
	), nil
}

// OrchestratorArgs compiles the prover service flags. The Atlantic key is
// read from the orchestrator .env file, never written to the script.
func OrchestratorArgs(ac *params.AppChainParams) ([]string, error) {
	l1, err := common.DockerHostURL(*ac.L1Endpoint)
	if err != nil {
		return nil, common.ValidationError("l1_endpoint", err)
	}

	p := ac.Prover
	args := []string{
		"run",
		flag("madara-rpc-url", MadaraRPCURL),
		flag("ethereum-rpc-url", l1),
		flag("prover", p.Type.String()),
	}
	if *p.Type == params.ProverAtlantic {
		args = append(args,
			flag("atlantic-service-url", *p.ServiceURL),
			"--atlantic-api-key $ATLANTIC_API_KEY",
		)
	}
	args = append(args, flag("min-block-to-process", strconv.FormatUint(*p.MinBlock, 10)))
	if p.MaxBlock != nil {
		args = append(args, flag("max-block-to-process", strconv.FormatUint(*p.MaxBlock, 10)))
	}
	return args, nil
}

// OrchestratorEnv renders the orchestrator .env file
func OrchestratorEnv(p params.ProverParams) (string, error) {
	return formatEnv([]envVar{{"ATLANTIC_API_KEY", params.Value(p.APIKey)}})
}

// BootstrapperEnv renders the bootstrapper .env file from the resolved bundle
// and the wallet and chain sections of the global configuration
func BootstrapperEnv(ac *params.AppChainParams, g config.Global) (string, error) {
	l1, err := common.DockerHostURL(*ac.L1Endpoint)
	if err != nil {
		return "", common.ValidationError("l1_endpoint", err)
	}

	return formatEnv([]envVar{
		{"ETH_RPC", l1},
		{"ETH_CHAIN_ID", strconv.FormatUint(g.L1Config.EthChainID, 10)},
		{"ETH_PRIV_KEY", g.EthWallet.EthPrivKey},
		{"VERIFIER_ADDRESS", g.L1Config.VerifierAddress},
		{"L1_DEPLOYER_ADDRESS", g.EthWallet.L1DeployerAddress},
		{"L1_OPERATOR_ADDRESS", g.EthWallet.L1OperatorAddress},
		{"L1_MULTISIG_ADDRESS", g.EthWallet.L1MultisigAddress},
		{"APP_CHAIN_ID", g.Madara.AppChainID},
		{"NATIVE_FEE_TOKEN_ADDRESS", g.Madara.NativeFeeTokenAddress},
		{"PARENT_FEE_TOKEN_ADDRESS", g.Madara.ParentFeeTokenAddress},
		{"LATEST_PROTOCOL_VERSION", g.Madara.LatestProtocolVersion},
		{"MADARA_RPC_URL", MadaraRPCURL},
		{"DEPLOY_L2_CONTRACTS", fmt.Sprint(*ac.Bootstrapper.DeployL2Contracts)},
	})
}
