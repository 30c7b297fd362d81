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

// Package mojonft provides high-level Go bindings for the MojoNFT contract.
// Minted tokens land in escrow; the contract enforces trait uniqueness and
// releases tokens to their recipients after settlement.
package mojonft

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/TobyLyon/MOJOpfpMaker/contracts/mojonft/contract"
)

// transferTopic is the topic hash of the ERC-721 Transfer event.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// Backend combines the read, write and receipt surfaces the binding needs.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// MojoNFT is a high-level wrapper around the on-chain MojoNFT contract.
type MojoNFT struct {
	abi             abi.ABI
	address         common.Address
	contract        *bind.BoundContract
	contractBackend Backend
	transactOpts    *bind.TransactOpts
}

// NewMojoNFT connects to an already-deployed MojoNFT contract. The transact
// opts may be nil for a read-only binding.
func NewMojoNFT(opts *bind.TransactOpts, addr common.Address, backend Backend) (*MojoNFT, error) {
	parsed, err := abi.JSON(strings.NewReader(contract.MojoNFTABI))
	if err != nil {
		return nil, err
	}
	bound := bind.NewBoundContract(addr, parsed, backend, backend, backend)
	return &MojoNFT{
		abi:             parsed,
		address:         addr,
		contract:        bound,
		contractBackend: backend,
		transactOpts:    opts,
	}, nil
}

// Address returns the contract address.
func (c *MojoNFT) Address() common.Address {
	return c.address
}

// ──────────────────────────────────────────────
//  Write methods
// ──────────────────────────────────────────────

// MintToEscrow mints a token into escrow for the recipient, attaching the
// given value as payment, and waits for the transaction to be mined.
func (c *MojoNFT) MintToEscrow(ctx context.Context, recipient common.Address, tokenURI string, traitHash common.Hash, value *big.Int) (*types.Receipt, error) {
	opts := *c.transactOpts
	opts.Context = ctx
	opts.Value = value

	tx, err := c.contract.Transact(&opts, "mintToEscrow", recipient, tokenURI, [32]byte(traitHash))
	if err != nil {
		return nil, err
	}
	return bind.WaitMined(ctx, c.contractBackend, tx)
}

// ──────────────────────────────────────────────
//  Read methods
// ──────────────────────────────────────────────

// MintPrice returns the current mint price in wei.
func (c *MojoNFT) MintPrice(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "mintPrice")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// MintingActive reports whether the contract currently accepts mints.
func (c *MojoNFT) MintingActive(ctx context.Context) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "mintingActive")
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// TotalSupply returns the number of tokens minted so far.
func (c *MojoNFT) TotalSupply(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "totalSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// MaxSupply returns the collection cap.
func (c *MojoNFT) MaxSupply(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "maxSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// BalanceOf returns how many tokens an address owns.
func (c *MojoNFT) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// TokensOfOwner returns every token id held by an address.
func (c *MojoNFT) TokensOfOwner(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "tokensOfOwner", owner)
	if err != nil {
		return nil, err
	}
	return out[0].([]*big.Int), nil
}

// TokenURI returns the metadata URI of a token.
func (c *MojoNFT) TokenURI(ctx context.Context, tokenId *big.Int) (string, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "tokenURI", tokenId)
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

// TraitExists reports whether a trait combination has already been minted.
func (c *MojoNFT) TraitExists(ctx context.Context, traitHash common.Hash) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "traitExists", [32]byte(traitHash))
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// ──────────────────────────────────────────────
//  Receipt parsing
// ──────────────────────────────────────────────

// ParseMintedTokenID extracts the minted token id from the contract's
// Transfer event in a receipt. It reports false when the receipt carries no
// decodable Transfer log for the contract.
func ParseMintedTokenID(receipt *types.Receipt, contractAddr common.Address) (string, bool) {
	if receipt == nil {
		return "", false
	}
	for _, l := range receipt.Logs {
		if l.Address != contractAddr {
			continue
		}
		if len(l.Topics) != 4 || l.Topics[0] != transferTopic {
			continue
		}
		// topics[3] is the indexed uint256 token id.
		return new(big.Int).SetBytes(l.Topics[3].Bytes()).String(), true
	}
	return "", false
}
