// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package wallet

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/event"
)

// KeystoreProvider signs with a geth keystore file over a JSON-RPC endpoint.
type KeystoreProvider struct {
	rpcURL       string
	keystorePath string
	password     string
	feeWallet    common.Address

	mu      sync.Mutex
	client  *ethclient.Client
	key     *keystore.Key
	chainID *big.Int
	events  event.Feed
}

// NewKeystoreProvider builds a provider from an RPC endpoint, a keystore
// file and its passphrase. The fee wallet receives platform fee transfers.
func NewKeystoreProvider(rpcURL, keystorePath, password string, feeWallet common.Address) *KeystoreProvider {
	return &KeystoreProvider{
		rpcURL:       rpcURL,
		keystorePath: keystorePath,
		password:     password,
		feeWallet:    feeWallet,
	}
}

func (p *KeystoreProvider) Connect(ctx context.Context) (common.Address, error) {
	raw, err := os.ReadFile(p.keystorePath)
	if err != nil {
		return common.Address{}, fmt.Errorf("wallet: read keystore: %w", err)
	}
	key, err := keystore.DecryptKey(raw, p.password)
	if err != nil {
		return common.Address{}, fmt.Errorf("wallet: decrypt keystore: %w", err)
	}
	client, err := ethclient.DialContext(ctx, p.rpcURL)
	if err != nil {
		return common.Address{}, fmt.Errorf("wallet: dial %s: %w", p.rpcURL, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return common.Address{}, fmt.Errorf("wallet: chain id: %w", err)
	}

	p.mu.Lock()
	p.client = client
	p.key = key
	p.chainID = chainID
	p.mu.Unlock()
	return key.Address, nil
}

func (p *KeystoreProvider) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
	p.key = nil
	return nil
}

// Subscribe satisfies the provider event surface. A keystore session holds a
// fixed key against a fixed endpoint, so the feed stays silent.
func (p *KeystoreProvider) Subscribe(ch chan<- Event) event.Subscription {
	return p.events.Subscribe(ch)
}

func (p *KeystoreProvider) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	client, _, _, err := p.session()
	if err != nil {
		return nil, err
	}
	return client.BalanceAt(ctx, addr, nil)
}

// TransactOpts returns signing options bound to the connected key.
func (p *KeystoreProvider) TransactOpts() (*bind.TransactOpts, error) {
	_, key, chainID, err := p.session()
	if err != nil {
		return nil, err
	}
	return bind.NewKeyedTransactorWithChainID(key.PrivateKey, chainID)
}

// Client exposes the underlying RPC client for contract bindings.
func (p *KeystoreProvider) Client() (*ethclient.Client, error) {
	client, _, _, err := p.session()
	return client, err
}

// TransferFee sends the platform fee to the fee wallet as a plain value
// transfer and returns the transaction hash without waiting for inclusion.
// A provider without a configured fee wallet refuses the transfer: the fee
// would otherwise burn at the zero address.
func (p *KeystoreProvider) TransferFee(ctx context.Context, amount *big.Int) (common.Hash, error) {
	if p.feeWallet == (common.Address{}) {
		return common.Hash{}, ErrNoFeeWallet
	}
	client, key, chainID, err := p.session()
	if err != nil {
		return common.Hash{}, err
	}
	nonce, err := client.PendingNonceAt(ctx, key.Address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: gas price: %w", err)
	}
	tx := types.NewTransaction(nonce, p.feeWallet, amount, 21000, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key.PrivateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: sign fee transfer: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("wallet: send fee transfer: %w", err)
	}
	return signed.Hash(), nil
}

func (p *KeystoreProvider) session() (*ethclient.Client, *keystore.Key, *big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil || p.key == nil {
		return nil, nil, nil, ErrNotConnected
	}
	return p.client, p.key, p.chainID, nil
}
