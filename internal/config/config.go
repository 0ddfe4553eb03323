// Package config manages the persisted launcher configuration: the global TOML
// document produced by `init`, values recovered from previously rendered .env
// files, and launch markers for running stacks. The global document is only
// ever used as a source of defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/madara-alliance/madara-cli/internal/common"
)

// DefaultFileName is the name `init` proposes for a new configuration file
const DefaultFileName = "my_custom_config.toml"

// L1Config describes the settlement layer
type L1Config struct {
	EthRPC          string `toml:"eth_rpc" validate:"required,endpoint"`
	EthChainID      uint64 `toml:"eth_chain_id"`
	VerifierAddress string `toml:"verifier_address" validate:"required,eth_addr"`
}

// EthWallet holds the L1 accounts used by the bootstrapper
type EthWallet struct {
	EthPrivKey        string `toml:"eth_priv_key" validate:"required,len=66,startswith=0x,hexadecimal"`
	L1DeployerAddress string `toml:"l1_deployer_address" validate:"required,eth_addr"`
	L1OperatorAddress string `toml:"l1_operator_address" validate:"required,eth_addr"`
	L1MultisigAddress string `toml:"l1_multisig_address" validate:"required,eth_addr"`
}

// Madara holds chain parameters
type Madara struct {
	ChainName              string `toml:"chain_name" validate:"required"`
	AppChainID             string `toml:"app_chain_id" validate:"required"`
	NativeFeeTokenAddress  string `toml:"native_fee_token_address" validate:"required"`
	ParentFeeTokenAddress  string `toml:"parent_fee_token_address" validate:"required"`
	LatestProtocolVersion  string `toml:"latest_protocol_version" validate:"required"`
	BlockTime              string `toml:"block_time" validate:"required,blocktime"`
	PendingBlockUpdateTime string `toml:"pending_block_update_time" validate:"required,blocktime"`
	GasPrice               uint64 `toml:"gas_price"`
	BlobGasPrice           uint64 `toml:"blob_gas_price"`
}

// Orchestrator holds prover service parameters
type Orchestrator struct {
	AtlanticServiceURL    string  `toml:"atlantic_service_url" validate:"required,endpoint"`
	MinimumBlockToProcess uint64  `toml:"minimum_block_to_process"`
	MaximumBlockToProcess *uint64 `toml:"maximum_block_to_process,omitempty"`
}

// Pathfinder holds indexer parameters
type Pathfinder struct {
	Network          string `toml:"network" validate:"required"`
	ChainID          string `toml:"chain_id" validate:"required"`
	EthereumURL      string `toml:"ethereum_url" validate:"required,endpoint"`
	GatewayURL       string `toml:"gateway_url" validate:"required,endpoint"`
	FeederGatewayURL string `toml:"feeder_gateway_url" validate:"required,endpoint"`
	HTTPRPC          string `toml:"http_rpc" validate:"required"`
	DataDirectory    string `toml:"data_directory" validate:"required"`
}

// Global is the persisted configuration document
type Global struct {
	L1Config     L1Config     `toml:"l1_config"`
	EthWallet    EthWallet    `toml:"eth_wallet"`
	Madara       Madara       `toml:"madara"`
	Orchestrator Orchestrator `toml:"orchestrator"`
	Pathfinder   Pathfinder   `toml:"pathfinder"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		return name
	})
	_ = v.RegisterValidation("endpoint", func(fl validator.FieldLevel) bool {
		return common.ValidateURL(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("blocktime", func(fl validator.FieldLevel) bool {
		return common.ValidateBlockTime(fl.Field().String()) == nil
	})
	return v
}()

// Validate checks field syntax and the wallet rule that the multisig account
// differs from the deployer.
func (g Global) Validate() error {
	if err := validate.Struct(g); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			_, field, _ := strings.Cut(fe.Namespace(), ".")
			return common.ValidationError(field, fmt.Errorf("fails %q check", fe.Tag()))
		}
		return err
	}
	if strings.EqualFold(g.EthWallet.L1MultisigAddress, g.EthWallet.L1DeployerAddress) {
		return common.ValidationError("eth_wallet.l1_multisig_address",
			fmt.Errorf("must differ from l1_deployer_address %s", g.EthWallet.L1DeployerAddress))
	}
	if maxBlock := g.Orchestrator.MaximumBlockToProcess; maxBlock != nil && *maxBlock < g.Orchestrator.MinimumBlockToProcess {
		return common.ValidationError("orchestrator.maximum_block_to_process",
			fmt.Errorf("must be >= minimum_block_to_process (%d)", g.Orchestrator.MinimumBlockToProcess))
	}
	return nil
}

// Config loads and saves a Global document with thread-safe access
type Config struct {
	filePath string
	data     Global
	loaded   bool // Track if configuration has been loaded from disk
	mu       sync.RWMutex
}

// DefaultPath returns the configuration path inside a stack directory
func DefaultPath(stackDir string) string {
	return filepath.Join(stackDir, "data", DefaultFileName)
}

// New creates a Config for filePath, pre-populated with defaults
func New(filePath string) *Config {
	return &Config{
		filePath: filePath,
		data:     Defaults(),
	}
}

// ensureLoaded loads configuration data from disk once.
// This method must only be called while holding c.mu.Lock.
func (c *Config) ensureLoaded() error {
	if c.loaded {
		return nil
	}
	return c.load()
}

// Load reads configuration from file. A missing file leaves the defaults in place.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *Config) load() error {
	if c.filePath == "" {
		c.loaded = true
		return nil
	}

	if _, err := os.Stat(c.filePath); os.IsNotExist(err) {
		c.loaded = true
		return nil
	}

	data := Defaults()
	md, err := toml.DecodeFile(c.filePath, &data)
	if err != nil {
		return common.IOError(c.filePath, fmt.Errorf("failed to parse config file: %w", err))
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return common.ValidationError(c.filePath, fmt.Errorf("unknown config keys: %v", undecoded))
	}

	c.data = data
	c.loaded = true
	return nil
}

// Data returns a copy of the configuration document
func (c *Config) Data() (Global, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return Global{}, fmt.Errorf("failed to load config: %w", err)
	}
	data := c.data
	if maxBlock := c.data.Orchestrator.MaximumBlockToProcess; maxBlock != nil {
		v := *maxBlock
		data.Orchestrator.MaximumBlockToProcess = &v
	}
	return data, nil
}

// Replace validates g and stores it in memory; call Save to persist
func (c *Config) Replace(g Global) error {
	if err := g.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = g
	c.loaded = true
	return nil
}

// Save writes configuration to file using atomic write pattern
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return common.IOError(dir, fmt.Errorf("failed to create config directory: %w", err))
	}

	// Create temporary file in the same directory for atomic rename
	tmpFile, err := os.CreateTemp(dir, ".madara-cli.toml.tmp-*")
	if err != nil {
		return common.IOError(dir, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath) // Cleanup on error

	// The wallet private key lives in this file
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		return common.IOError(tmpPath, fmt.Errorf("failed to set permissions on temp file: %w", err))
	}

	fmt.Fprintln(tmpFile, "# Madara CLI configuration")
	fmt.Fprintf(tmpFile, "# Generated: %s\n\n", time.Now().Format(time.RFC3339))

	if err := toml.NewEncoder(tmpFile).Encode(c.data); err != nil {
		tmpFile.Close()
		return common.IOError(tmpPath, fmt.Errorf("failed to encode config: %w", err))
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return common.IOError(tmpPath, fmt.Errorf("failed to sync temp file: %w", err))
	}

	if err := tmpFile.Close(); err != nil {
		return common.IOError(tmpPath, fmt.Errorf("failed to close temp file: %w", err))
	}

	if err := os.Rename(tmpPath, c.filePath); err != nil {
		return common.IOError(c.filePath, fmt.Errorf("failed to rename temp file to config: %w", err))
	}

	return nil
}

// FilePath returns the configuration file path
func (c *Config) FilePath() string {
	return c.filePath
}

// Exists reports whether the configuration file is present on disk
func (c *Config) Exists() bool {
	if c.filePath == "" {
		return false
	}
	_, err := os.Stat(c.filePath)
	return err == nil
}
