package resolve

import (
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/params"
)

const (
	sourceExplicit = "explicit"
	sourcePrompt   = "prompt"
)

// trace logs where a field came from. Values are never logged.
func (r *Resolver) trace(field, source string) {
	r.logger.Debug("field resolved", zap.String("field", field), zap.String("source", source))
}

// str resolves a string field unless it is already set. The answer is
// validated again: a non-interactive prompter hands back its seed unchecked.
func (r *Resolver) str(dst **string, field, question, seed string, validate func(string) error) error {
	if *dst != nil {
		r.trace(field, sourceExplicit)
		return nil
	}

	v, err := r.prompt.Ask(question, seed, validate)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", field, err)
	}
	if err := validate(v); err != nil {
		return common.ValidationError(field, err)
	}

	*dst = &v
	r.trace(field, sourcePrompt)
	return nil
}

// secret is str with hidden input and no seed
func (r *Resolver) secret(dst **string, field, question string, validate func(string) error) error {
	if *dst != nil {
		r.trace(field, sourceExplicit)
		return nil
	}

	v, err := r.prompt.AskSecret(question, "", validate)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", field, err)
	}
	if v == "" {
		return common.MissingField(field)
	}
	if err := validate(v); err != nil {
		return common.ValidationError(field, err)
	}

	*dst = &v
	r.trace(field, sourcePrompt)
	return nil
}

func (r *Resolver) u64(dst **uint64, field, question string, seed uint64) error {
	if *dst != nil {
		r.trace(field, sourceExplicit)
		return nil
	}

	v, err := r.prompt.Ask(question, strconv.FormatUint(seed, 10), common.ValidateU64)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", field, err)
	}
	n, err := common.ParseU64(v)
	if err != nil {
		return common.ValidationError(field, err)
	}

	*dst = &n
	r.trace(field, sourcePrompt)
	return nil
}

type enum interface {
	~string
	DisplayName() string
}

// selectOne offers the display names of options and maps the answer back
func selectOne[T enum](p Prompter, question string, options []T, seed T) (T, error) {
	var zero T

	labels := make([]string, len(options))
	def := ""
	for i, o := range options {
		labels[i] = o.DisplayName()
		if o == seed {
			def = labels[i]
		}
	}

	answer, err := p.Select(question, labels, def)
	if err != nil {
		return zero, err
	}
	if i := slices.Index(labels, answer); i >= 0 {
		return options[i], nil
	}
	return zero, fmt.Errorf("unexpected selection %q", answer)
}

type fieldCheck struct {
	field    string
	value    *string
	validate func(string) error
}

func runChecks(checks []fieldCheck) error {
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := c.validate(*c.value); err != nil {
			return common.ValidationError(c.field, err)
		}
	}
	return nil
}

func checkEnum[T comparable](field string, v *T, all []T) error {
	if v != nil && !slices.Contains(all, *v) {
		return common.ValidationError(field, fmt.Errorf("unknown value %v", *v))
	}
	return nil
}

// CheckExplicit validates the values already present in a partial bundle.
// Unset fields are ignored.
func CheckExplicit(b params.Bundle) error {
	switch v := b.(type) {
	case *params.DevnetParams:
		return runChecks([]fieldCheck{
			{"name", v.Name, common.ValidateNotEmpty},
			{"base_path", v.BasePath, common.ValidatePath},
		})

	case *params.SequencerParams:
		return runChecks([]fieldCheck{
			{"name", v.Name, common.ValidateNotEmpty},
			{"base_path", v.BasePath, common.ValidatePath},
			{"chain_config_path", v.ChainConfigPath, common.ValidatePath},
			{"l1_endpoint", v.L1Endpoint, common.ValidateOptionalURL},
			{"block_time", v.BlockTime, common.ValidateBlockTime},
		})

	case *params.FullNodeParams:
		if err := checkEnum("network", v.Network, params.Networks); err != nil {
			return err
		}
		return runChecks([]fieldCheck{
			{"name", v.Name, common.ValidateNotEmpty},
			{"base_path", v.BasePath, common.ValidatePath},
			{"rpc_api_url", v.RPCAPIURL, common.ValidateOptionalURL},
		})

	case *params.AppChainParams:
		return checkAppChain(v)

	default:
		return common.Unsupported(fmt.Sprintf("bundle %T", b))
	}
}

func checkAppChain(v *params.AppChainParams) error {
	if err := checkEnum("prover.type", v.Prover.Type, params.ProverTypes); err != nil {
		return err
	}
	if params.Value(v.Prover.Type) == params.ProverStwo {
		return common.Unsupported("prover stwo")
	}
	if err := checkEnum("pathfinder.network", v.Pathfinder.Network, params.IndexerNetworks); err != nil {
		return err
	}

	if v.Prover.MinBlock != nil && v.Prover.MaxBlock != nil && *v.Prover.MaxBlock < *v.Prover.MinBlock {
		return common.ValidationError("prover.max_block",
			fmt.Errorf("must be at least min_block (%d)", *v.Prover.MinBlock))
	}

	return runChecks([]fieldCheck{
		{"name", v.Name, common.ValidateNotEmpty},
		{"chain_config_path", v.ChainConfigPath, common.ValidatePath},
		{"l1_endpoint", v.L1Endpoint, common.ValidateURL},
		{"block_time", v.BlockTime, common.ValidateBlockTime},
		{"prover.api_key", v.Prover.APIKey, common.ValidateNotEmpty},
		{"prover.service_url", v.Prover.ServiceURL, common.ValidateURL},
		{"pathfinder.chain_id", v.Pathfinder.ChainID, common.ValidateNotEmpty},
		{"pathfinder.ethereum_url", v.Pathfinder.EthereumURL, common.ValidateURL},
		{"pathfinder.gateway_url", v.Pathfinder.GatewayURL, common.ValidateURL},
		{"pathfinder.feeder_gateway_url", v.Pathfinder.FeederGatewayURL, common.ValidateURL},
		{"pathfinder.http_rpc", v.Pathfinder.HTTPRPC, common.ValidateHostPort},
		{"pathfinder.data_directory", v.Pathfinder.DataDirectory, common.ValidatePath},
	})
}
