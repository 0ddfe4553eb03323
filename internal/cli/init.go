package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/resolve"
	"github.com/madara-alliance/madara-cli/internal/wallet"
)

const customOption = "Custom"

// Init asks for every section of the global configuration, seeded with the
// loaded document, and saves it under <stack>/data/<name>. It returns the path
// written.
func Init(app *AppContext) (string, error) {
	p := app.Prompter()
	g := app.Global

	app.UI.Header("Madara configuration")

	name, err := p.Ask("Config file name", config.DefaultFileName, common.ValidateFilename)
	if err != nil {
		return "", err
	}

	app.UI.Section("L1", "Settlement layer")
	if g.L1Config.EthRPC, err = p.Ask("Ethereum RPC URL", g.L1Config.EthRPC, common.ValidateURL); err != nil {
		return "", err
	}
	if g.L1Config.EthChainID, err = askU64(p, "Ethereum chain ID", g.L1Config.EthChainID); err != nil {
		return "", err
	}
	if g.L1Config.VerifierAddress, err = p.Ask("Verifier contract address", g.L1Config.VerifierAddress, common.ValidateEthAddress); err != nil {
		return "", err
	}

	app.UI.Section("Wallet", "Accounts used to deploy and operate the chain")
	w, err := askWallet(p, g.EthWallet)
	if err != nil {
		return "", err
	}
	g.EthWallet = config.EthWallet{
		EthPrivKey:        w.PrivateKey,
		L1DeployerAddress: w.DeployerAddress,
		L1OperatorAddress: w.OperatorAddress,
		L1MultisigAddress: w.MultisigAddress,
	}
	app.UI.KeyValue("Deployer", w.DeployerAddress)
	app.UI.KeyValue("Multisig", w.MultisigAddress)

	app.UI.Section("Madara", "Chain parameters")
	m := &g.Madara
	for _, q := range []struct {
		question string
		dst      *string
		validate func(string) error
	}{
		{"Chain name", &m.ChainName, common.ValidateNotEmpty},
		{"App chain ID", &m.AppChainID, common.ValidateNotEmpty},
		{"Native fee token address", &m.NativeFeeTokenAddress, common.ValidateNotEmpty},
		{"Parent fee token address", &m.ParentFeeTokenAddress, common.ValidateNotEmpty},
		{"Latest protocol version", &m.LatestProtocolVersion, common.ValidateNotEmpty},
		{"Block time", &m.BlockTime, common.ValidateBlockTime},
		{"Pending block update time", &m.PendingBlockUpdateTime, common.ValidateBlockTime},
	} {
		if *q.dst, err = p.Ask(q.question, *q.dst, q.validate); err != nil {
			return "", err
		}
	}
	if m.GasPrice, err = askU64(p, "Gas price", m.GasPrice); err != nil {
		return "", err
	}
	if m.BlobGasPrice, err = askU64(p, "Blob gas price", m.BlobGasPrice); err != nil {
		return "", err
	}

	app.UI.Section("Orchestrator", "Proving service")
	o := &g.Orchestrator
	if o.AtlanticServiceURL, err = p.Ask("Atlantic service URL", o.AtlanticServiceURL, common.ValidateURL); err != nil {
		return "", err
	}
	if o.MinimumBlockToProcess, err = askU64(p, "Minimum block to process", o.MinimumBlockToProcess); err != nil {
		return "", err
	}
	maxSeed := ""
	if o.MaximumBlockToProcess != nil {
		maxSeed = strconv.FormatUint(*o.MaximumBlockToProcess, 10)
	}
	answer, err := p.Ask("Maximum block to process (empty for no limit)", maxSeed, common.ValidateOptionalU64)
	if err != nil {
		return "", err
	}
	if o.MaximumBlockToProcess, err = common.ParseOptionalU64(answer); err != nil {
		return "", common.ValidationError("orchestrator.maximum_block_to_process", err)
	}

	path := filepath.Join(filepath.Dir(config.DefaultPath(app.Layout.Root)), name)
	cfg := config.New(path)
	if err := cfg.Replace(g); err != nil {
		return "", err
	}
	if err := cfg.Save(); err != nil {
		return "", fmt.Errorf("failed to save config: %w", err)
	}

	app.Logger.Debug("configuration saved")
	app.UI.Successf("Configuration saved to %s", path)
	return path, nil
}

func askU64(p resolve.Prompter, question string, seed uint64) (uint64, error) {
	answer, err := p.Ask(question, strconv.FormatUint(seed, 10), common.ValidateU64)
	if err != nil {
		return 0, err
	}
	v, err := common.ParseU64(answer)
	if err != nil {
		return 0, common.ValidationError(question, err)
	}
	return v, nil
}

// askWallet offers the Anvil development accounts, defaulting to the persisted
// deployer key and multisig address
func askWallet(p resolve.Prompter, current config.EthWallet) (wallet.Wallet, error) {
	var options []string
	var accounts []wallet.Account
	for i := range wallet.AnvilPrivateKeys {
		acct, err := wallet.AnvilAccount(i)
		if err != nil {
			return wallet.Wallet{}, err
		}
		accounts = append(accounts, acct)
		options = append(options, accountLabel(i, acct.Address))
	}
	options = append(options, customOption)

	keySeed, multisigSeed := customOption, customOption
	for i, acct := range accounts {
		if acct.PrivateKey == current.EthPrivKey {
			keySeed = options[i]
		}
		if acct.Address == current.L1MultisigAddress {
			multisigSeed = options[i]
		}
	}

	choice, err := p.Select("Deployer account", options, keySeed)
	if err != nil {
		return wallet.Wallet{}, err
	}
	key := current.EthPrivKey
	if i := indexOf(options, choice); i < len(accounts) {
		key = accounts[i].PrivateKey
	} else if key, err = p.AskSecret("Deployer private key", current.EthPrivKey, common.ValidatePrivateKey); err != nil {
		return wallet.Wallet{}, err
	}

	choice, err = p.Select("Multisig account", options, multisigSeed)
	if err != nil {
		return wallet.Wallet{}, err
	}
	multisig := current.L1MultisigAddress
	if i := indexOf(options, choice); i < len(accounts) {
		multisig = accounts[i].Address
	} else if multisig, err = p.Ask("Multisig address", current.L1MultisigAddress, common.ValidateEthAddress); err != nil {
		return wallet.Wallet{}, err
	}

	return wallet.New(key, multisig)
}

func accountLabel(index int, address string) string {
	return fmt.Sprintf("Anvil account %d (%s)", index, address)
}

func indexOf(options []string, choice string) int {
	for i, o := range options {
		if o == choice {
			return i
		}
	}
	return len(options)
}
