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

// Package mojo defines the off-chain domain model for the MOJO PFP maker:
// the trait catalog, the per-session order state, metadata generation, fee
// arithmetic, and the mint pipeline that turns a composited image into an
// escrow-minted NFT.  All heavy media work lives in the compositor package —
// this package only manages selections, pricing inputs, and pipeline state.
package mojo

import (
	"github.com/ethereum/go-ethereum/common"
)

// Category identifies one selectable trait slot over the fixed base body.
type Category string

const (
	CategoryBackground Category = "background"
	CategoryClothes    Category = "clothes"
	CategoryEyes       Category = "eyes"
	CategoryHead       Category = "head"
	CategoryMouth      Category = "mouth"
)

// Categories lists every selectable slot in canonical order.
var Categories = []Category{
	CategoryBackground,
	CategoryClothes,
	CategoryEyes,
	CategoryHead,
	CategoryMouth,
}

// DisplayName returns the attribute label used in NFT metadata.
func (c Category) DisplayName() string {
	switch c {
	case CategoryBackground:
		return "Background"
	case CategoryClothes:
		return "Clothing"
	case CategoryEyes:
		return "Eyes"
	case CategoryHead:
		return "Headwear"
	case CategoryMouth:
		return "Expression"
	default:
		return string(c)
	}
}

// BaseID is the fixed base character layer drawn under every trait.
const BaseID = "MOJO BODY"

// TraitOption is a single selectable trait defined at load time.
// The zero-valued ID (or a category's default ID) means "none selected".
type TraitOption struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceUSD    float64 `json:"price"` // display price; on-chain amounts come from the contract
}

// Trait is one resolved attribute of a finished order, as it appears in
// NFT metadata (trait_type/value pairs per the ERC-721 metadata convention).
type Trait struct {
	Category Category `json:"-"`
	Type     string   `json:"trait_type"`
	Value    string   `json:"value"`
}

// Selection pairs a category with the chosen option id, used for hashing
// and for recording completed actions.
type Selection struct {
	Category Category `json:"category"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
}

// MintReceipt is returned after a successful mint.  Created once, immutable.
type MintReceipt struct {
	// TokenID is the on-chain identifier recovered from the Transfer event,
	// or TokenIDUnknown when the receipt logs could not be parsed.
	TokenID string `json:"token_id"`

	TxHash   common.Hash `json:"tx_hash"`
	TokenURI string      `json:"token_uri"`

	// ImageCID and MetadataCID are the content addresses pinned in stages
	// one and two of the pipeline.
	ImageCID    string `json:"image_cid"`
	MetadataCID string `json:"metadata_cid"`

	TraitHash common.Hash `json:"trait_hash"`
}

// TokenIDUnknown is reported when the mint confirmed on-chain but the token
// identifier could not be recovered from the receipt logs.
const TokenIDUnknown = "unknown"
