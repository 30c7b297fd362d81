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
	"errors"
	"math/big"
)

// Fee-related constants.
var (
	// DefaultPlatformFeeBps is 500 basis points (5%) taken from every mint.
	DefaultPlatformFeeBps = big.NewInt(500)

	// MaxPlatformFeeBps caps the fee at 100% (10000 bps) to match the contract.
	MaxPlatformFeeBps = big.NewInt(10000)

	// BpsBase is the denominator for basis-point math.
	BpsBase = big.NewInt(10000)
)

// Errors for fee validation.
var (
	ErrFeeTooHigh    = errors.New("mojo: platform fee exceeds 10000 bps")
	ErrNegativeFee   = errors.New("mojo: fee cannot be negative")
	ErrNegativePrice = errors.New("mojo: mint price cannot be negative")
)

// FeeSchedule holds the platform's fee parameters.  It is used off-chain to
// split a mint price into the platform cut and the payment forwarded to the
// escrow contract.
type FeeSchedule struct {
	PlatformFeeBps *big.Int // basis points taken from the mint price
}

// NewDefaultFeeSchedule returns a FeeSchedule at the default 5% platform fee.
func NewDefaultFeeSchedule() *FeeSchedule {
	return &FeeSchedule{
		PlatformFeeBps: new(big.Int).Set(DefaultPlatformFeeBps),
	}
}

// NewFeeSchedule creates a FeeSchedule with the given parameters after validation.
func NewFeeSchedule(feeBps *big.Int) (*FeeSchedule, error) {
	if feeBps.Sign() < 0 {
		return nil, ErrNegativeFee
	}
	if feeBps.Cmp(MaxPlatformFeeBps) > 0 {
		return nil, ErrFeeTooHigh
	}
	return &FeeSchedule{
		PlatformFeeBps: new(big.Int).Set(feeBps),
	}, nil
}

// SplitMintPrice divides a mint price into the platform fee and the mint
// payment.  The split is exact: fee + payment == mintPrice, with the fee
// rounded down by integer division so no value is created or lost.
func (fs *FeeSchedule) SplitMintPrice(mintPrice *big.Int) (fee, payment *big.Int, err error) {
	if mintPrice.Sign() < 0 {
		return nil, nil, ErrNegativePrice
	}
	// fee = mintPrice * platformFeeBps / 10000
	fee = new(big.Int).Mul(mintPrice, fs.PlatformFeeBps)
	fee.Div(fee, BpsBase)

	payment = new(big.Int).Sub(mintPrice, fee)
	return fee, payment, nil
}
