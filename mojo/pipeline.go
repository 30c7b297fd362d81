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

package mojo

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Errors returned by pipeline operations.
var (
	ErrNoImage     = errors.New("mojo: mint requires a rendered image")
	ErrNoRecipient = errors.New("mojo: mint requires a recipient address")
)

// Pinner uploads content to IPFS and returns the resulting CID.
type Pinner interface {
	PinFile(ctx context.Context, name string, data []byte) (cid string, err error)
	PinJSON(ctx context.Context, v interface{}) (cid string, err error)
}

// Contract is the on-chain surface the pipeline needs from the NFT contract.
type Contract interface {
	Address() common.Address
	MintPrice(ctx context.Context) (*big.Int, error)
	MintingActive(ctx context.Context) (bool, error)
	TraitExists(ctx context.Context, traitHash common.Hash) (bool, error)
	MintToEscrow(ctx context.Context, recipient common.Address, tokenURI string, traitHash common.Hash, value *big.Int) (*types.Receipt, error)
}

// FeePayer transfers the platform's cut to the fee wallet ahead of the mint.
type FeePayer interface {
	TransferFee(ctx context.Context, amount *big.Int) (txHash common.Hash, err error)
}

// Recorder persists a completed mint. Recording runs after the mint has
// settled on chain, so its failures are reported but never propagated.
type Recorder interface {
	RecordMint(ctx context.Context, receipt *MintReceipt, sels []Selection, wallet common.Address) error
}

// TokenIDParser extracts the minted token id from a transaction receipt.
// It reports false when no Transfer event for the contract can be decoded.
type TokenIDParser func(receipt *types.Receipt, contract common.Address) (string, bool)

// MintRequest carries everything the pipeline needs for one mint.
type MintRequest struct {
	Recipient  common.Address
	Selections []Selection
	Image      []byte // full-resolution PNG
}

// Pipeline drives a mint end to end: advisory uniqueness check, IPFS uploads,
// fee split, escrow mint, token-id extraction and order recording.
type Pipeline struct {
	contract Contract
	pinner   Pinner
	fees     *FeeSchedule
	parse    TokenIDParser
	payer    FeePayer // optional
	recorder Recorder // optional
	log      log.Logger
}

// NewPipeline wires a pipeline. The fee payer and recorder may be nil, in
// which case the fee transfer and order recording steps are skipped.
func NewPipeline(contract Contract, pinner Pinner, fees *FeeSchedule, parse TokenIDParser, payer FeePayer, recorder Recorder) *Pipeline {
	if fees == nil {
		fees = NewDefaultFeeSchedule()
	}
	return &Pipeline{
		contract: contract,
		pinner:   pinner,
		fees:     fees,
		parse:    parse,
		payer:    payer,
		recorder: recorder,
		log:      log.New("module", "pipeline"),
	}
}

// ContractAddress returns the address of the bound NFT contract.
func (p *Pipeline) ContractAddress() common.Address {
	return p.contract.Address()
}

// Mint runs the full mint flow and returns the receipt. Every returned error
// is tagged with a failure kind recoverable via Classify.
func (p *Pipeline) Mint(ctx context.Context, req *MintRequest) (*MintReceipt, error) {
	if len(req.Image) == 0 {
		return nil, WrapFailure(FailureValidation, ErrNoImage)
	}
	if req.Recipient == (common.Address{}) {
		return nil, WrapFailure(FailureValidation, ErrNoRecipient)
	}
	traitHash := TraitHash(req.Selections)
	p.log.Info("Starting mint", "recipient", req.Recipient, "traits", len(req.Selections), "hash", traitHash)

	// Preflight against the contract before spending anything on uploads.
	active, err := p.contract.MintingActive(ctx)
	if err != nil {
		return nil, WrapFailure(FailureTransaction, fmt.Errorf("minting status check: %w", err))
	}
	if !active {
		return nil, WrapFailure(FailureValidation, ErrMintingClosed)
	}

	// The uniqueness check is advisory: the contract enforces it on chain,
	// this call only saves the user gas when the answer is already known.
	// A failed query therefore lets the mint proceed.
	taken, err := p.contract.TraitExists(ctx, traitHash)
	switch {
	case err != nil:
		p.log.Warn("Trait uniqueness check failed, proceeding", "err", err)
	case taken:
		return nil, WrapFailure(FailureValidation, ErrTraitTaken)
	}

	imageCID, err := p.pinner.PinFile(ctx, "mojo-pfp.png", req.Image)
	if err != nil {
		return nil, WrapFailure(FailureUpload, fmt.Errorf("image upload: %w", err))
	}
	p.log.Info("Image pinned", "cid", imageCID)

	meta := NewMetadata(imageCID, req.Selections)
	if err := meta.Validate(); err != nil {
		return nil, WrapFailure(FailureValidation, err)
	}
	metaCID, err := p.pinner.PinJSON(ctx, meta)
	if err != nil {
		return nil, WrapFailure(FailureUpload, fmt.Errorf("metadata upload: %w", err))
	}
	tokenURI := "ipfs://" + metaCID
	p.log.Info("Metadata pinned", "cid", metaCID)

	price, err := p.contract.MintPrice(ctx)
	if err != nil {
		return nil, WrapFailure(FailureTransaction, fmt.Errorf("mint price: %w", err))
	}
	fee, payment, err := p.fees.SplitMintPrice(price)
	if err != nil {
		return nil, WrapFailure(FailureValidation, err)
	}

	// The platform fee is forwarded best-effort: a failed transfer must not
	// block the mint itself.
	if p.payer != nil && fee.Sign() > 0 {
		if feeTx, err := p.payer.TransferFee(ctx, fee); err != nil {
			p.log.Warn("Platform fee transfer failed", "amount", fee, "err", err)
		} else {
			p.log.Info("Platform fee transferred", "amount", fee, "tx", feeTx)
		}
	}

	receipt, err := p.contract.MintToEscrow(ctx, req.Recipient, tokenURI, traitHash, payment)
	if err != nil {
		return nil, WrapFailure(FailureTransaction, fmt.Errorf("mint transaction: %w", err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, WrapFailure(FailureTransaction, fmt.Errorf("mint transaction %s reverted", receipt.TxHash))
	}

	tokenID := TokenIDUnknown
	if p.parse != nil {
		if id, ok := p.parse(receipt, p.contract.Address()); ok {
			tokenID = id
		} else {
			p.log.Warn("Token id not found in receipt logs", "tx", receipt.TxHash)
		}
	}

	out := &MintReceipt{
		TokenID:     tokenID,
		TxHash:      receipt.TxHash,
		TokenURI:    tokenURI,
		ImageCID:    imageCID,
		MetadataCID: metaCID,
		TraitHash:   traitHash,
	}
	p.log.Info("Mint complete", "token", tokenID, "tx", receipt.TxHash)

	if p.recorder != nil {
		if err := p.recorder.RecordMint(ctx, out, req.Selections, req.Recipient); err != nil {
			p.log.Warn("Order recording failed", "token", tokenID, "err", err)
		}
	}
	return out, nil
}
