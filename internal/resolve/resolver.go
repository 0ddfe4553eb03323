package resolve

import (
	"fmt"
	"reflect"
	"strconv"

	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
)

// Sources holds values persisted by earlier runs. They seed prompts and never
// override an explicit value.
type Sources struct {
	// Global is the loaded configuration document, or config.Defaults()
	Global config.Global
	// Env holds the values of the previously rendered madara .env file
	Env config.EnvValues
	// Secret is the content of the persisted RPC API secret, if any
	Secret string
}

// Resolver completes partial bundles
type Resolver struct {
	prompt Prompter
	src    Sources
	logger *zap.Logger
}

// New creates a resolver. A nil logger disables logging.
func New(p Prompter, src Sources, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{prompt: p, src: src, logger: logger}
}

// SelectMode asks which deployment mode to launch
func (r *Resolver) SelectMode() (params.Mode, error) {
	mode, err := selectOne(r.prompt, "Select the mode to launch", params.Modes, params.ModeDevnet)
	if err != nil {
		return "", fmt.Errorf("failed to select mode: %w", err)
	}
	return mode, nil
}

// Resolve returns a complete copy of partial. Explicit values are validated
// before the first prompt; any failure leaves nothing half-resolved.
func (r *Resolver) Resolve(partial params.Bundle) (params.Bundle, error) {
	if partial == nil || reflect.ValueOf(partial).IsNil() {
		return nil, common.MissingField("mode")
	}

	if err := CheckExplicit(partial); err != nil {
		return nil, err
	}

	b := params.Clone(partial)
	r.logger.Debug("resolving bundle", zap.Stringer("mode", b.Mode()))

	var err error
	switch v := b.(type) {
	case *params.DevnetParams:
		err = r.devnet(v)
	case *params.SequencerParams:
		err = r.sequencer(v)
	case *params.FullNodeParams:
		err = r.fullNode(v)
	case *params.AppChainParams:
		err = r.appChain(v)
	default:
		err = common.Unsupported(fmt.Sprintf("bundle %T", b))
	}
	if err != nil {
		return nil, err
	}

	if err := params.Check(b); err != nil {
		return nil, fmt.Errorf("resolved %s bundle is incomplete: %w", b.Mode(), err)
	}
	return b, nil
}

func (r *Resolver) devnet(p *params.DevnetParams) error {
	if err := r.str(&p.Name, "name", "Chain name", r.nameSeed(), common.ValidateNotEmpty); err != nil {
		return err
	}
	return r.str(&p.BasePath, "base_path", "Base path", r.basePathSeed(), common.ValidatePath)
}

func (r *Resolver) sequencer(p *params.SequencerParams) error {
	if err := r.str(&p.Name, "name", "Chain name", r.nameSeed(), common.ValidateNotEmpty); err != nil {
		return err
	}
	if err := r.str(&p.BasePath, "base_path", "Base path", r.basePathSeed(), common.ValidatePath); err != nil {
		return err
	}
	if err := r.chainConfig(&p.ChainConfigPath); err != nil {
		return err
	}
	if err := r.optionalEndpoint(&p.L1Endpoint); err != nil {
		return err
	}
	return r.block(&p.GasPrice, &p.BlobGasPrice, &p.BlockTime)
}

// optionalEndpoint asks whether to sync with an L1 before asking for its URL.
// Declining resolves to "", which runs the sequencer without L1 sync.
func (r *Resolver) optionalEndpoint(dst **string) error {
	if *dst != nil {
		r.trace("l1_endpoint", sourceExplicit)
		return nil
	}

	sync, err := r.prompt.Confirm("Sync with an L1 node?", r.src.Secret != "")
	if err != nil {
		return fmt.Errorf("failed to resolve l1_endpoint: %w", err)
	}
	if !sync {
		none := ""
		*dst = &none
		r.trace("l1_endpoint", sourcePrompt)
		return nil
	}
	return r.str(dst, "l1_endpoint", "L1 endpoint", r.src.Secret, common.ValidateURL)
}

func (r *Resolver) fullNode(p *params.FullNodeParams) error {
	if err := r.str(&p.Name, "name", "Node name", r.nameSeed(), common.ValidateNotEmpty); err != nil {
		return err
	}
	if err := r.str(&p.BasePath, "base_path", "Base path", r.basePathSeed(), common.ValidatePath); err != nil {
		return err
	}

	if p.Network == nil {
		seed := params.NetworkMainnet
		if v, ok := r.src.Env.Get(config.KeyNetwork); ok {
			if n, err := params.ParseNetwork(v); err == nil {
				seed = n
			}
		}
		n, err := selectOne(r.prompt, "Select the network", params.Networks, seed)
		if err != nil {
			return fmt.Errorf("failed to resolve network: %w", err)
		}
		p.Network = &n
		r.trace("network", sourcePrompt)
	}

	// rpc_api_url is owned by the secrets manager, which prompts for it
	// when neither an explicit value nor a persisted secret exists.
	return nil
}

func (r *Resolver) appChain(p *params.AppChainParams) error {
	if err := r.str(&p.Name, "name", "Chain name", r.nameSeed(), common.ValidateNotEmpty); err != nil {
		return err
	}
	if err := r.chainConfig(&p.ChainConfigPath); err != nil {
		return err
	}
	if err := r.str(&p.L1Endpoint, "l1_endpoint", "L1 endpoint",
		r.src.Global.L1Config.EthRPC, common.ValidateURL); err != nil {
		return err
	}
	if err := r.block(&p.GasPrice, &p.BlobGasPrice, &p.BlockTime); err != nil {
		return err
	}
	if err := r.prover(&p.Prover); err != nil {
		return err
	}
	if err := r.indexer(&p.Pathfinder); err != nil {
		return err
	}
	return r.bootstrapper(&p.Bootstrapper)
}

func (r *Resolver) block(gas, blobGas **uint64, blockTime **string) error {
	m := r.src.Global.Madara
	if err := r.u64(gas, "gas_price", "Gas price", m.GasPrice); err != nil {
		return err
	}
	if err := r.u64(blobGas, "blob_gas_price", "Blob gas price", m.BlobGasPrice); err != nil {
		return err
	}
	return r.str(blockTime, "block_time", "Block time", orDefault(m.BlockTime, params.DefaultBlockTime),
		common.ValidateBlockTime)
}

// chainConfig resolves a preset token, or a file path for the custom preset
func (r *Resolver) chainConfig(dst **string) error {
	if *dst != nil {
		r.trace("chain_config_path", sourceExplicit)
		return nil
	}

	seed, seedPath := params.PresetDevnet, ""
	if v, ok := r.src.Env.Get(config.KeyChainConfigPath); ok {
		if preset, err := params.ParsePreset(v); err == nil && preset != params.PresetCustom {
			seed = preset
		} else {
			seed, seedPath = params.PresetCustom, v
		}
	}

	preset, err := selectOne(r.prompt, "Select the chain config preset", params.Presets, seed)
	if err != nil {
		return fmt.Errorf("failed to resolve chain_config_path: %w", err)
	}

	if preset != params.PresetCustom {
		v := preset.String()
		*dst = &v
		r.trace("chain_config_path", sourcePrompt)
		return nil
	}
	return r.str(dst, "chain_config_path", "Chain config path", seedPath, common.ValidatePath)
}

func (r *Resolver) prover(p *params.ProverParams) error {
	o := r.src.Global.Orchestrator

	if p.Type == nil {
		t, err := selectOne(r.prompt, "Select the prover", params.ProverTypes, params.ProverDummy)
		if err != nil {
			return fmt.Errorf("failed to resolve prover.type: %w", err)
		}
		p.Type = &t
		r.trace("prover.type", sourcePrompt)
	}

	switch *p.Type {
	case params.ProverStwo:
		return common.Unsupported("prover stwo")
	case params.ProverAtlantic:
		if err := r.secret(&p.APIKey, "prover.api_key", "Atlantic API key", common.ValidateNotEmpty); err != nil {
			return err
		}
		if err := r.str(&p.ServiceURL, "prover.service_url", "Atlantic service URL",
			orDefault(o.AtlanticServiceURL, config.DefaultAtlanticURL), common.ValidateURL); err != nil {
			return err
		}
	}

	if err := r.u64(&p.MinBlock, "prover.min_block", "Minimum block to process", o.MinimumBlockToProcess); err != nil {
		return err
	}

	if p.MaxBlock != nil {
		r.trace("prover.max_block", sourceExplicit)
		return nil
	}
	seed := ""
	if o.MaximumBlockToProcess != nil {
		seed = strconv.FormatUint(*o.MaximumBlockToProcess, 10)
	}
	v, err := r.prompt.Ask("Maximum block to process (empty for no limit)", seed, common.ValidateOptionalU64)
	if err != nil {
		return fmt.Errorf("failed to resolve prover.max_block: %w", err)
	}
	maxBlock, err := common.ParseOptionalU64(v)
	if err != nil {
		return common.ValidationError("prover.max_block", err)
	}
	p.MaxBlock = maxBlock
	r.trace("prover.max_block", sourcePrompt)
	return nil
}

func (r *Resolver) indexer(p *params.IndexerParams) error {
	pf := r.src.Global.Pathfinder

	if p.Network == nil {
		seed := params.IndexerCustom
		if n, err := params.ParseIndexerNetwork(pf.Network); err == nil {
			seed = n
		}
		n, err := selectOne(r.prompt, "Select the pathfinder network", params.IndexerNetworks, seed)
		if err != nil {
			return fmt.Errorf("failed to resolve pathfinder.network: %w", err)
		}
		p.Network = &n
		r.trace("pathfinder.network", sourcePrompt)
	}

	fields := []struct {
		dst      **string
		field    string
		question string
		seed     string
		validate func(string) error
	}{
		{&p.ChainID, "pathfinder.chain_id", "Pathfinder chain ID",
			orDefault(pf.ChainID, params.DefaultIndexerChainID), common.ValidateNotEmpty},
		{&p.EthereumURL, "pathfinder.ethereum_url", "Pathfinder Ethereum URL",
			orDefault(pf.EthereumURL, params.DefaultIndexerEthereumURL), common.ValidateURL},
		{&p.GatewayURL, "pathfinder.gateway_url", "Gateway URL",
			orDefault(pf.GatewayURL, params.DefaultIndexerGatewayURL), common.ValidateURL},
		{&p.FeederGatewayURL, "pathfinder.feeder_gateway_url", "Feeder gateway URL",
			orDefault(pf.FeederGatewayURL, params.DefaultIndexerFeederURL), common.ValidateURL},
		{&p.HTTPRPC, "pathfinder.http_rpc", "Pathfinder HTTP RPC address",
			orDefault(pf.HTTPRPC, params.DefaultIndexerHTTPRPC), common.ValidateHostPort},
		{&p.DataDirectory, "pathfinder.data_directory", "Pathfinder data directory",
			orDefault(pf.DataDirectory, params.DefaultIndexerDataDirectory), common.ValidatePath},
	}
	for _, f := range fields {
		if err := r.str(f.dst, f.field, f.question, f.seed, f.validate); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) bootstrapper(p *params.BootstrapParams) error {
	if p.DeployL2Contracts != nil {
		r.trace("bootstrapper.deploy_l2_contracts", sourceExplicit)
		return nil
	}
	ok, err := r.prompt.Confirm("Deploy L2 contracts?", true)
	if err != nil {
		return fmt.Errorf("failed to resolve bootstrapper.deploy_l2_contracts: %w", err)
	}
	p.DeployL2Contracts = &ok
	r.trace("bootstrapper.deploy_l2_contracts", sourcePrompt)
	return nil
}

func (r *Resolver) nameSeed() string {
	return orDefault(r.src.Global.Madara.ChainName, params.DefaultName)
}

func (r *Resolver) basePathSeed() string {
	if v, ok := r.src.Env.Get(config.KeyBasePath); ok {
		return v
	}
	return params.DefaultBasePath
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
