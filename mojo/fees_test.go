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
	"testing"
)

func TestSplitMintPrice(t *testing.T) {
	tests := []struct {
		price       int64
		fee, payout int64
	}{
		{1_000_000, 50_000, 950_000},
		{10_000, 500, 9_500},
		{0, 0, 0},
		{1, 0, 1},    // fee rounds down
		{199, 9, 190}, // 199*500/10000 = 9.95 -> 9
	}
	fs := NewDefaultFeeSchedule()
	for _, tt := range tests {
		fee, payment, err := fs.SplitMintPrice(big.NewInt(tt.price))
		if err != nil {
			t.Fatalf("price %d: %v", tt.price, err)
		}
		if fee.Int64() != tt.fee || payment.Int64() != tt.payout {
			t.Errorf("price %d: got (%v, %v), want (%d, %d)", tt.price, fee, payment, tt.fee, tt.payout)
		}
		if sum := new(big.Int).Add(fee, payment); sum.Int64() != tt.price {
			t.Errorf("price %d: fee+payment = %v, split must be exact", tt.price, sum)
		}
	}
}

func TestSplitMintPriceNegative(t *testing.T) {
	fs := NewDefaultFeeSchedule()
	if _, _, err := fs.SplitMintPrice(big.NewInt(-1)); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("err = %v, want ErrNegativePrice", err)
	}
}

func TestNewFeeScheduleValidation(t *testing.T) {
	if _, err := NewFeeSchedule(big.NewInt(-1)); !errors.Is(err, ErrNegativeFee) {
		t.Errorf("negative fee: err = %v", err)
	}
	if _, err := NewFeeSchedule(big.NewInt(10_001)); !errors.Is(err, ErrFeeTooHigh) {
		t.Errorf("excess fee: err = %v", err)
	}
	fs, err := NewFeeSchedule(big.NewInt(10_000))
	if err != nil {
		t.Fatalf("100%% fee should be accepted: %v", err)
	}
	fee, payment, err := fs.SplitMintPrice(big.NewInt(100))
	if err != nil || fee.Int64() != 100 || payment.Int64() != 0 {
		t.Errorf("100%% split: fee %v payment %v err %v", fee, payment, err)
	}
}
