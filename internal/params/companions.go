package params

// Pathfinder defaults for an indexer following the local sequencer
const (
	DefaultIndexerChainID       = "MADARA_DEVNET"
	DefaultIndexerEthereumURL   = "http://anvil:8545"
	DefaultIndexerGatewayURL    = "http://madara:8080/gateway"
	DefaultIndexerFeederURL     = "http://madara:8080/feeder_gateway"
	DefaultIndexerHTTPRPC       = "0.0.0.0:9545"
	DefaultIndexerDataDirectory = "/usr/share/pathfinder/data"
)

// ProverParams configures the orchestrator's proving backend. APIKey and
// ServiceURL are only meaningful for the Atlantic prover.
type ProverParams struct {
	Type       *ProverType `json:"type" validate:"required"`
	APIKey     *string     `json:"api_key,omitempty"`
	ServiceURL *string     `json:"service_url,omitempty" validate:"omitempty,endpoint"`
	MinBlock   *uint64     `json:"min_block" validate:"required"`
	// MaxBlock nil means no upper bound
	MaxBlock *uint64 `json:"max_block,omitempty"`
}

// IndexerParams configures the pathfinder indexer
type IndexerParams struct {
	Network          *IndexerNetwork `json:"network" validate:"required"`
	ChainID          *string         `json:"chain_id" validate:"required,notblank"`
	EthereumURL      *string         `json:"ethereum_url" validate:"required,endpoint"`
	GatewayURL       *string         `json:"gateway_url" validate:"required,endpoint"`
	FeederGatewayURL *string         `json:"feeder_gateway_url" validate:"required,endpoint"`
	HTTPRPC          *string         `json:"http_rpc" validate:"required,hostport"`
	DataDirectory    *string         `json:"data_directory" validate:"required,path"`
}

// BootstrapParams configures the one-shot contract deployment helper
type BootstrapParams struct {
	DeployL2Contracts *bool `json:"deploy_l2_contracts" validate:"required"`
}

func (p ProverParams) clone() ProverParams {
	return ProverParams{
		Type:       clonePtr(p.Type),
		APIKey:     clonePtr(p.APIKey),
		ServiceURL: clonePtr(p.ServiceURL),
		MinBlock:   clonePtr(p.MinBlock),
		MaxBlock:   clonePtr(p.MaxBlock),
	}
}

func (p IndexerParams) clone() IndexerParams {
	return IndexerParams{
		Network:          clonePtr(p.Network),
		ChainID:          clonePtr(p.ChainID),
		EthereumURL:      clonePtr(p.EthereumURL),
		GatewayURL:       clonePtr(p.GatewayURL),
		FeederGatewayURL: clonePtr(p.FeederGatewayURL),
		HTTPRPC:          clonePtr(p.HTTPRPC),
		DataDirectory:    clonePtr(p.DataDirectory),
	}
}

func (p BootstrapParams) clone() BootstrapParams {
	return BootstrapParams{DeployL2Contracts: clonePtr(p.DeployL2Contracts)}
}
