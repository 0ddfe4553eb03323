// Package params models the deployment modes of the node stack as a closed set
// of parameter bundles, plus the nested bundles of the app-chain companion
// services.
package params

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/madara-alliance/madara-cli/internal/common"
)

var titleCaser = cases.Title(language.English)

func displayName(token string) string {
	return titleCaser.String(strings.ReplaceAll(token, "-", " "))
}

// Mode is the discriminant of a Bundle
type Mode string

const (
	ModeDevnet    Mode = "devnet"
	ModeSequencer Mode = "sequencer"
	ModeFullNode  Mode = "full-node"
	ModeAppChain  Mode = "app-chain"
)

// Modes lists the supported modes in menu order
var Modes = []Mode{ModeDevnet, ModeSequencer, ModeFullNode, ModeAppChain}

func (m Mode) String() string { return string(m) }

// DisplayName returns the human-readable mode name, e.g. "Full Node"
func (m Mode) DisplayName() string { return displayName(string(m)) }

// ParseMode accepts the canonical token, the display name or the token without
// hyphen (fullnode, appchain).
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "-")
	for _, m := range Modes {
		if key == string(m) || key == strings.ReplaceAll(string(m), "-", "") {
			return m, nil
		}
	}
	return "", common.ValidationError("mode", fmt.Errorf("unknown mode %q (want one of %s)", s, joinTokens(Modes)))
}

// Network is the Starknet network a full node follows
type Network string

const (
	NetworkMainnet     Network = "mainnet"
	NetworkTestnet     Network = "testnet"
	NetworkIntegration Network = "integration"
	NetworkDevnet      Network = "devnet"
)

// Networks lists the selectable networks
var Networks = []Network{NetworkMainnet, NetworkTestnet, NetworkIntegration, NetworkDevnet}

func (n Network) String() string      { return string(n) }
func (n Network) DisplayName() string { return displayName(string(n)) }

// ParseNetwork parses a network token (case-insensitive)
func ParseNetwork(s string) (Network, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, n := range Networks {
		if key == string(n) {
			return n, nil
		}
	}
	return "", common.ValidationError("network", fmt.Errorf("unknown network %q (want one of %s)", s, joinTokens(Networks)))
}

// Preset is a built-in chain configuration, or Custom for a user file
type Preset string

const (
	PresetDevnet      Preset = "devnet"
	PresetMainnet     Preset = "mainnet"
	PresetSepolia     Preset = "sepolia"
	PresetIntegration Preset = "integration"
	PresetTest        Preset = "test"
	PresetCustom      Preset = "custom"
)

// Presets lists the selectable presets, Custom last
var Presets = []Preset{PresetDevnet, PresetMainnet, PresetSepolia, PresetIntegration, PresetTest, PresetCustom}

func (p Preset) String() string      { return string(p) }
func (p Preset) DisplayName() string { return displayName(string(p)) }

// ParsePreset parses a preset token (case-insensitive)
func ParsePreset(s string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Presets {
		if key == string(p) {
			return p, nil
		}
	}
	return "", common.ValidationError("preset", fmt.Errorf("unknown preset %q (want one of %s)", s, joinTokens(Presets)))
}

// ProverType selects the proving backend of the orchestrator
type ProverType string

const (
	ProverDummy    ProverType = "dummy"
	ProverAtlantic ProverType = "atlantic"
	ProverStwo     ProverType = "stwo"
)

// ProverTypes lists the prover backends
var ProverTypes = []ProverType{ProverDummy, ProverAtlantic, ProverStwo}

func (p ProverType) String() string      { return string(p) }
func (p ProverType) DisplayName() string { return displayName(string(p)) }

// ParseProverType parses a prover token (case-insensitive)
func ParseProverType(s string) (ProverType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, p := range ProverTypes {
		if key == string(p) {
			return p, nil
		}
	}
	return "", common.ValidationError("prover.type", fmt.Errorf("unknown prover %q (want one of %s)", s, joinTokens(ProverTypes)))
}

// IndexerNetwork is the network pathfinder indexes
type IndexerNetwork string

const (
	IndexerCustom  IndexerNetwork = "custom"
	IndexerSepolia IndexerNetwork = "sepolia"
	IndexerMainnet IndexerNetwork = "mainnet"
)

// IndexerNetworks lists the pathfinder networks, Custom first since it follows
// the local sequencer.
var IndexerNetworks = []IndexerNetwork{IndexerCustom, IndexerSepolia, IndexerMainnet}

func (n IndexerNetwork) String() string      { return string(n) }
func (n IndexerNetwork) DisplayName() string { return displayName(string(n)) }

// ParseIndexerNetwork parses a pathfinder network token (case-insensitive)
func ParseIndexerNetwork(s string) (IndexerNetwork, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, n := range IndexerNetworks {
		if key == string(n) {
			return n, nil
		}
	}
	return "", common.ValidationError("pathfinder.network", fmt.Errorf("unknown pathfinder network %q (want one of %s)", s, joinTokens(IndexerNetworks)))
}

func joinTokens[T ~string](values []T) string {
	tokens := make([]string, len(values))
	for i, v := range values {
		tokens[i] = string(v)
	}
	return strings.Join(tokens, ", ")
}
