// Package wallet derives L1 account addresses for the bootstrapper and exposes
// Anvil's well-known development accounts.
package wallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/madara-alliance/madara-cli/internal/common"
)

// AnvilPrivateKeys are the ten deterministic keys of Anvil's default mnemonic.
// They are publicly known; use them only against a local Anvil chain.
var AnvilPrivateKeys = []string{
	"0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	"0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
	"0x7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6",
	"0x47e179ec197488593b187f80a00eb0da91f1b9d0b13f8733639f19c30a34926a",
	"0x8b3a350cf5c34c9194ca85829a2df0ec3153be0318b5e2d3348e872092edffba",
	"0x92db14e403b83dfe3df233f83dfa3a0d7096f21ca9b0d6d6b8d88b2b4ec1564e",
	"0x4bbbf85ce3377467afe5d46f804f221813b2bb87f24d81f60f1fcdbf7cbf4356",
	"0xdbda1821b80551c9d65939329250298aa3472ba22feea921c0cf5d620ea67b97",
	"0x2a871d0798f97d79848a013d4936a73bf4cc922c825d33c1cf7073dff6d409c6",
}

// Account is a private key with its derived address
type Account struct {
	PrivateKey string
	// Address is lowercase 0x-prefixed hex
	Address string
}

// Wallet holds the L1 accounts used to deploy and operate the app chain
type Wallet struct {
	PrivateKey      string
	DeployerAddress string
	OperatorAddress string
	MultisigAddress string
}

// Address derives the lowercase Ethereum address of a 0x-prefixed private key
func Address(privateKey string) (string, error) {
	if err := common.ValidatePrivateKey(privateKey); err != nil {
		return "", err
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	return strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex()), nil
}

// AnvilAccount returns development account index (0-9)
func AnvilAccount(index int) (Account, error) {
	if index < 0 || index >= len(AnvilPrivateKeys) {
		return Account{}, fmt.Errorf("anvil account index out of range: %d", index)
	}

	key := AnvilPrivateKeys[index]
	addr, err := Address(key)
	if err != nil {
		return Account{}, err
	}
	return Account{PrivateKey: key, Address: addr}, nil
}

// New builds a wallet whose deployer and operator are the key's own address.
// The multisig must be a different account.
func New(privateKey, multisigAddress string) (Wallet, error) {
	deployer, err := Address(privateKey)
	if err != nil {
		return Wallet{}, common.ValidationError("eth_wallet.eth_priv_key", err)
	}

	if err := common.ValidateEthAddress(multisigAddress); err != nil {
		return Wallet{}, common.ValidationError("eth_wallet.l1_multisig_address", err)
	}

	if strings.EqualFold(deployer, multisigAddress) {
		return Wallet{}, common.ValidationError("eth_wallet.l1_multisig_address",
			fmt.Errorf("expected multisig address to differ from deployer address %s", deployer))
	}

	return Wallet{
		PrivateKey:      privateKey,
		DeployerAddress: deployer,
		OperatorAddress: deployer,
		MultisigAddress: multisigAddress,
	}, nil
}
