package params

import (
	"fmt"

	"github.com/madara-alliance/madara-cli/internal/common"
)

// Fallback values used to seed prompts
const (
	DefaultName         = "Madara"
	DefaultBasePath     = "./data"
	DefaultGasPrice     = uint64(0)
	DefaultBlobGasPrice = uint64(0)
	DefaultBlockTime    = "10s"

	// AppChainBasePath is fixed by the app-chain manifest
	AppChainBasePath = "/usr/share/madara/data"
)

// Bundle is the parameter set of exactly one deployment mode. The set of
// implementations is closed: DevnetParams, SequencerParams, FullNodeParams and
// AppChainParams.
type Bundle interface {
	Mode() Mode
	sealed()
}

// DevnetParams launches a local development network
type DevnetParams struct {
	Name     *string `json:"name" validate:"required,notblank"`
	BasePath *string `json:"base_path" validate:"required,path"`
}

// SequencerParams launches a block-producing sequencer
type SequencerParams struct {
	Name            *string `json:"name" validate:"required,notblank"`
	BasePath        *string `json:"base_path" validate:"required,path"`
	ChainConfigPath *string `json:"chain_config_path" validate:"required,path"`
	// L1Endpoint nil or empty means the sequencer runs without L1 sync
	L1Endpoint   *string `json:"l1_endpoint" validate:"omitnil,optendpoint"`
	GasPrice     *uint64 `json:"gas_price" validate:"required"`
	BlobGasPrice *uint64 `json:"blob_gas_price" validate:"required"`
	BlockTime    *string `json:"block_time" validate:"required,blocktime"`
}

// FullNodeParams launches a node that syncs a public network
type FullNodeParams struct {
	Name     *string  `json:"name" validate:"required,notblank"`
	BasePath *string  `json:"base_path" validate:"required,path"`
	Network  *Network `json:"network" validate:"required"`
	// RPCAPIURL is the L1 RPC endpoint; the secrets manager persists it
	RPCAPIURL *string `json:"rpc_api_url" validate:"omitnil,optendpoint"`
}

// AppChainParams launches the full app-chain stack. The L1 endpoint is carried
// inline and never written to a secret file.
type AppChainParams struct {
	Name            *string `json:"name" validate:"required,notblank"`
	ChainConfigPath *string `json:"chain_config_path" validate:"required,path"`
	L1Endpoint      *string `json:"l1_endpoint" validate:"required,endpoint"`
	GasPrice        *uint64 `json:"gas_price" validate:"required"`
	BlobGasPrice    *uint64 `json:"blob_gas_price" validate:"required"`
	BlockTime       *string `json:"block_time" validate:"required,blocktime"`

	Prover       ProverParams    `json:"prover"`
	Pathfinder   IndexerParams   `json:"pathfinder"`
	Bootstrapper BootstrapParams `json:"bootstrapper"`
}

func (*DevnetParams) Mode() Mode    { return ModeDevnet }
func (*SequencerParams) Mode() Mode { return ModeSequencer }
func (*FullNodeParams) Mode() Mode  { return ModeFullNode }
func (*AppChainParams) Mode() Mode  { return ModeAppChain }

func (*DevnetParams) sealed()    {}
func (*SequencerParams) sealed() {}
func (*FullNodeParams) sealed()  {}
func (*AppChainParams) sealed()  {}

// New returns an empty bundle for mode
func New(mode Mode) (Bundle, error) {
	switch mode {
	case ModeDevnet:
		return &DevnetParams{}, nil
	case ModeSequencer:
		return &SequencerParams{}, nil
	case ModeFullNode:
		return &FullNodeParams{}, nil
	case ModeAppChain:
		return &AppChainParams{}, nil
	default:
		return nil, common.Unsupported(fmt.Sprintf("mode %q", mode))
	}
}

// Clone returns a deep copy so a resolved bundle never aliases its input
func Clone(b Bundle) Bundle {
	switch v := b.(type) {
	case *DevnetParams:
		return &DevnetParams{
			Name:     clonePtr(v.Name),
			BasePath: clonePtr(v.BasePath),
		}
	case *SequencerParams:
		return &SequencerParams{
			Name:            clonePtr(v.Name),
			BasePath:        clonePtr(v.BasePath),
			ChainConfigPath: clonePtr(v.ChainConfigPath),
			L1Endpoint:      clonePtr(v.L1Endpoint),
			GasPrice:        clonePtr(v.GasPrice),
			BlobGasPrice:    clonePtr(v.BlobGasPrice),
			BlockTime:       clonePtr(v.BlockTime),
		}
	case *FullNodeParams:
		return &FullNodeParams{
			Name:      clonePtr(v.Name),
			BasePath:  clonePtr(v.BasePath),
			Network:   clonePtr(v.Network),
			RPCAPIURL: clonePtr(v.RPCAPIURL),
		}
	case *AppChainParams:
		return &AppChainParams{
			Name:            clonePtr(v.Name),
			ChainConfigPath: clonePtr(v.ChainConfigPath),
			L1Endpoint:      clonePtr(v.L1Endpoint),
			GasPrice:        clonePtr(v.GasPrice),
			BlobGasPrice:    clonePtr(v.BlobGasPrice),
			BlockTime:       clonePtr(v.BlockTime),
			Prover:          v.Prover.clone(),
			Pathfinder:      v.Pathfinder.clone(),
			Bootstrapper:    v.Bootstrapper.clone(),
		}
	default:
		return b
	}
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences p, returning the zero value for nil
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Endpoint returns the endpoint and whether one is set
func Endpoint(p *string) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
