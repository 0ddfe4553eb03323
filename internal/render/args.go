package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/params"
)

// SecretEnv is the variable the launcher script exports from the secret file
const SecretEnv = "$RPC_API_KEY"

// Args compiles a resolved bundle into madara flags, one "--flag value" entry
// per line of the launcher script. The order is fixed.
func Args(b params.Bundle) ([]string, error) {
	if err := params.Check(b); err != nil {
		return nil, fmt.Errorf("cannot render arguments: %w", err)
	}

	switch v := b.(type) {
	case *params.DevnetParams:
		return []string{
			flag("name", *v.Name),
			"--devnet",
			flag("base-path", *v.BasePath),
			"--rpc-external",
		}, nil

	case *params.SequencerParams:
		args := []string{
			flag("name", *v.Name),
			"--sequencer",
			flag("base-path", *v.BasePath),
			flag("preset", *v.ChainConfigPath),
		}
		args = append(args, sequencerArgs(*v.GasPrice, *v.BlobGasPrice, *v.BlockTime)...)
		if _, ok := params.Endpoint(v.L1Endpoint); ok {
			args = append(args, "--l1-endpoint "+SecretEnv)
		} else {
			args = append(args, "--no-l1-sync")
		}
		return args, nil

	case *params.FullNodeParams:
		return []string{
			flag("name", *v.Name),
			"--full",
			flag("network", v.Network.String()),
			flag("base-path", *v.BasePath),
			"--rpc-external",
			"--l1-endpoint " + SecretEnv,
		}, nil

	case *params.AppChainParams:
		endpoint, err := common.DockerHostURL(*v.L1Endpoint)
		if err != nil {
			return nil, common.ValidationError("l1_endpoint", err)
		}
		args := []string{
			flag("name", *v.Name),
			"--sequencer",
			flag("base-path", params.AppChainBasePath),
			flag("preset", *v.ChainConfigPath),
		}
		args = append(args, sequencerArgs(*v.GasPrice, *v.BlobGasPrice, *v.BlockTime)...)
		args = append(args,
			"--rpc-admin",
			"--rpc-admin-external",
			flag("l1-endpoint", endpoint),
		)
		return args, nil

	default:
		return nil, common.Unsupported(fmt.Sprintf("bundle %T", b))
	}
}

func sequencerArgs(gas, blobGas uint64, blockTime string) []string {
	return []string{
		"--rpc-external",
		"--gateway-enable",
		"--gateway-external",
		"--feeder-gateway-enable",
		flag("gas-price", strconv.FormatUint(gas, 10)),
		flag("blob-gas-price", strconv.FormatUint(blobGas, 10)),
		flag("chain-config-override", "block_time="+blockTime),
	}
}

// NeedsSecretGuard reports whether the launcher must load the RPC secret
func NeedsSecretGuard(mode params.Mode) bool {
	return mode == params.ModeSequencer || mode == params.ModeFullNode
}

func flag(name, value string) string {
	return "--" + name + " " + shellQuote(value)
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_./:=@%+,-", r)
}

// shellQuote single-quotes values that a POSIX shell would otherwise split
// or expand
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool { return !isShellSafe(r) }) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
