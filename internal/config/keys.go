package config

import "github.com/madara-alliance/madara-cli/internal/params"

// Keys of the rendered madara .env file
const (
	KeyBasePath          = "BASE_PATH"
	KeyContainerBasePath = "CONTAINER_BASE_PATH"
	KeyChainConfigPath   = "CHAIN_CONFIG_PATH"
	KeyNetwork           = "NETWORK"
)

// Default configuration values
const (
	DefaultEthRPC          = "http://anvil:8545"
	DefaultEthChainID      = uint64(31337)
	DefaultVerifierAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

	// Anvil development account 0 deploys, account 1 is the multisig
	DefaultEthPrivKey        = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	DefaultDeployerAddress   = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	DefaultMultisigAddress   = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	DefaultChainName         = "Madara"
	DefaultAppChainID        = "MADARA_DEVNET"
	DefaultNativeFeeToken    = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"
	DefaultParentFeeToken    = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	DefaultProtocolVersion   = "0.13.2"
	DefaultPendingUpdateTime = "2s"

	DefaultAtlanticURL = "https://atlantic.api.herodotus.cloud"
	DefaultMinBlock    = uint64(1)
	DefaultMaxBlock    = uint64(100)
)

// Defaults returns the built-in configuration document
func Defaults() Global {
	maxBlock := DefaultMaxBlock
	return Global{
		L1Config: L1Config{
			EthRPC:          DefaultEthRPC,
			EthChainID:      DefaultEthChainID,
			VerifierAddress: DefaultVerifierAddress,
		},
		EthWallet: EthWallet{
			EthPrivKey:        DefaultEthPrivKey,
			L1DeployerAddress: DefaultDeployerAddress,
			L1OperatorAddress: DefaultDeployerAddress,
			L1MultisigAddress: DefaultMultisigAddress,
		},
		Madara: Madara{
			ChainName:              DefaultChainName,
			AppChainID:             DefaultAppChainID,
			NativeFeeTokenAddress:  DefaultNativeFeeToken,
			ParentFeeTokenAddress:  DefaultParentFeeToken,
			LatestProtocolVersion:  DefaultProtocolVersion,
			BlockTime:              params.DefaultBlockTime,
			PendingBlockUpdateTime: DefaultPendingUpdateTime,
		},
		Orchestrator: Orchestrator{
			AtlanticServiceURL:    DefaultAtlanticURL,
			MinimumBlockToProcess: DefaultMinBlock,
			MaximumBlockToProcess: &maxBlock,
		},
		Pathfinder: Pathfinder{
			Network:          string(params.IndexerCustom),
			ChainID:          params.DefaultIndexerChainID,
			EthereumURL:      params.DefaultIndexerEthereumURL,
			GatewayURL:       params.DefaultIndexerGatewayURL,
			FeederGatewayURL: params.DefaultIndexerFeederURL,
			HTTPRPC:          params.DefaultIndexerHTTPRPC,
			DataDirectory:    params.DefaultIndexerDataDirectory,
		},
	}
}
