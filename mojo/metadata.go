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
	"time"
)

// Attribute is a single entry in the token metadata attribute list.
type Attribute struct {
	TraitType   string      `json:"trait_type"`
	Value       interface{} `json:"value"`
	DisplayType string      `json:"display_type,omitempty"`
}

// Properties is the free-form provenance block marketplaces display.
type Properties struct {
	CreatedWith string `json:"created_with"`
	Timestamp   string `json:"timestamp"`
	Blockchain  string `json:"blockchain"`
	Collection  string `json:"collection"`
}

// Collection groups the token under its collection family.
type Collection struct {
	Name   string `json:"name"`
	Family string `json:"family"`
}

// Metadata is the ERC-721 token metadata document pinned alongside the image.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes"`
	Properties  Properties  `json:"properties"`
	Collection  Collection  `json:"collection"`
}

// CollectionName and CollectionFamily identify the collection on market
// surfaces and in the public service config.
const (
	CollectionName   = "MOJO PFP Collection"
	CollectionFamily = "MOJO"
)

const (
	metadataDescription = "A custom MOJO character with hand-picked traits."
	metadataExternalURL = "https://mojotheyeti.com"
	metadataCreator     = "MOJO PFP Maker"
	metadataBlockchain  = "Abstract"
)

// metadataNow stamps new documents; tests pin it.
var metadataNow = time.Now

// Rarity bonuses keyed on substrings of the selected option id. Scores are
// additive over the base and clamped to [1,100].
const (
	rarityBase      = 30
	rarityPerTrait  = 8
	rarityCrownSuit = 25
)

var rarityKeywords = []struct {
	keyword string
	bonus   int
}{
	{"ABSTRACT", 20},
	{"CROWN", 15},
	{"VIKING", 12},
	{"TACTICAL", 10},
	{"KIMONO", 8},
	{"HELMET", 7},
}

// RarityScore computes a deterministic rarity for a trait combination. The
// same selections always score the same.
func RarityScore(sels []Selection) int {
	score := rarityBase + rarityPerTrait*len(sels)
	var hasCrown, hasSuit bool
	for _, s := range sels {
		id := strings.ToUpper(s.ID)
		for _, kw := range rarityKeywords {
			if strings.Contains(id, kw.keyword) {
				score += kw.bonus
			}
		}
		if s.Category == CategoryHead && strings.Contains(id, "CROWN") {
			hasCrown = true
		}
		if s.Category == CategoryClothes && strings.Contains(id, "SUIT") {
			hasSuit = true
		}
	}
	if hasCrown && hasSuit {
		score += rarityCrownSuit
	}
	if score > 100 {
		score = 100
	}
	if score < 1 {
		score = 1
	}
	return score
}

// NewMetadata assembles the token metadata for a finished character. The name
// carries a short prefix of the trait hash so every combination reads unique.
func NewMetadata(imageCID string, sels []Selection) *Metadata {
	hash := TraitHash(sels)
	now := metadataNow().UTC()
	attrs := make([]Attribute, 0, len(sels)+3)
	for _, s := range sels {
		attrs = append(attrs, Attribute{
			TraitType: s.Category.DisplayName(),
			Value:     s.Name,
		})
	}
	attrs = append(attrs,
		Attribute{
			TraitType: "Generation Date",
			Value:     now.Format("2006-01-02"),
		},
		Attribute{
			TraitType:   "Rarity Score",
			Value:       RarityScore(sels),
			DisplayType: "number",
		},
		Attribute{
			TraitType:   "Trait Count",
			Value:       len(sels),
			DisplayType: "number",
		},
	)
	return &Metadata{
		Name:        "MOJO PFP #" + hash.Hex()[2:10],
		Description: metadataDescription,
		Image:       "ipfs://" + imageCID,
		ExternalURL: metadataExternalURL,
		Attributes:  attrs,
		Properties: Properties{
			CreatedWith: metadataCreator,
			Timestamp:   now.Format(time.RFC3339),
			Blockchain:  metadataBlockchain,
			Collection:  CollectionName,
		},
		Collection: Collection{
			Name:   CollectionName,
			Family: CollectionFamily,
		},
	}
}

// Validate checks the document carries the fields marketplaces require
// before it is pinned.
func (m *Metadata) Validate() error {
	switch {
	case m.Name == "":
		return errors.New("mojo: metadata missing name")
	case m.Description == "":
		return errors.New("mojo: metadata missing description")
	case m.Image == "":
		return errors.New("mojo: metadata missing image")
	}
	return nil
}
