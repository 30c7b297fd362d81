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
	"strings"
)

var (
	// ErrUnknownTrait is returned when a selection names an option that is
	// not in the catalog.
	ErrUnknownTrait = errors.New("unknown trait option")

	// ErrTraitTaken is returned when the combination has already been minted.
	ErrTraitTaken = errors.New("trait combination already minted")

	// ErrMintingClosed is returned when the contract reports minting inactive.
	ErrMintingClosed = errors.New("minting not active")
)

// FailureKind classifies a mint failure for user-facing reporting.
type FailureKind string

const (
	FailureUpload        FailureKind = "upload"
	FailureConfiguration FailureKind = "configuration"
	FailureWallet        FailureKind = "wallet"
	FailureTransaction   FailureKind = "transaction"
	FailureValidation    FailureKind = "validation"
	FailureRecording     FailureKind = "recording"
	FailureUnknown       FailureKind = "unknown"
)

// MintError couples a failure classification with the underlying cause.
type MintError struct {
	Kind FailureKind
	Err  error
}

func (e *MintError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *MintError) Unwrap() error { return e.Err }

// WrapFailure tags an error with a failure kind. A nil error passes through.
func WrapFailure(kind FailureKind, err error) error {
	if err == nil {
		return nil
	}
	return &MintError{Kind: kind, Err: err}
}

// Classify maps an arbitrary mint-pipeline error onto a failure kind. Tagged
// errors keep their kind; untagged ones are classified by content.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	var me *MintError
	if errors.As(err, &me) {
		return me.Kind
	}
	switch {
	case errors.Is(err, ErrTraitTaken), errors.Is(err, ErrUnknownTrait), errors.Is(err, ErrMintingClosed):
		return FailureValidation
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "ipfs"), strings.Contains(msg, "pin"), strings.Contains(msg, "upload"):
		return FailureUpload
	case strings.Contains(msg, "insufficient funds"), strings.Contains(msg, "nonce"),
		strings.Contains(msg, "gas"), strings.Contains(msg, "revert"):
		return FailureTransaction
	case strings.Contains(msg, "wallet"), strings.Contains(msg, "keystore"),
		strings.Contains(msg, "denied"), strings.Contains(msg, "rejected"):
		return FailureWallet
	case strings.Contains(msg, "config"), strings.Contains(msg, "missing"),
		strings.Contains(msg, "not configured"):
		return FailureConfiguration
	}
	return FailureUnknown
}
