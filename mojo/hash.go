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
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TraitHash derives the canonical identity of a trait combination: the
// keccak256 of the sorted "category:id" pairs joined with "|". The encoding
// is order-independent, so two orders with the same selections hash alike.
// Default selections are excluded, matching their absence from metadata.
func TraitHash(sels []Selection) common.Hash {
	pairs := make([]string, 0, len(sels))
	for _, s := range sels {
		pairs = append(pairs, string(s.Category)+":"+s.ID)
	}
	sort.Strings(pairs)
	return crypto.Keccak256Hash([]byte(strings.Join(pairs, "|")))
}
