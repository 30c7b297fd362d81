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
	"fmt"
	"math/rand"
	"sync"
)

// Order tracks the trait selection for a single character under construction.
// It is safe for concurrent use.
type Order struct {
	mu       sync.RWMutex
	selected map[Category]string
}

// NewOrder returns an order with every category at its default.
func NewOrder() *Order {
	o := &Order{selected: make(map[Category]string, len(Categories))}
	for _, c := range Categories {
		o.selected[c] = DefaultID(c)
	}
	return o
}

// Select sets the option for a category. The id must exist in the catalog.
func (o *Order) Select(c Category, id string) error {
	if _, ok := FindOption(c, id); !ok {
		return fmt.Errorf("%w: unknown %s option %q", ErrUnknownTrait, c, id)
	}
	o.mu.Lock()
	o.selected[c] = id
	o.mu.Unlock()
	return nil
}

// Clear resets a category to its default.
func (o *Order) Clear(c Category) {
	o.mu.Lock()
	o.selected[c] = DefaultID(c)
	o.mu.Unlock()
}

// Reset restores every category to its default.
func (o *Order) Reset() {
	o.mu.Lock()
	for _, c := range Categories {
		o.selected[c] = DefaultID(c)
	}
	o.mu.Unlock()
}

// Selected returns the current option id for a category.
func (o *Order) Selected(c Category) string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.selected[c]
}

// IsDefault reports whether a category holds its default selection.
func (o *Order) IsDefault(c Category) bool {
	return o.Selected(c) == DefaultID(c)
}

// Randomize replaces every selection with a random option from the catalog,
// defaults included. The supplied source keeps the result reproducible.
func (o *Order) Randomize(rng *rand.Rand) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, c := range Categories {
		opts := Catalog[c]
		o.selected[c] = opts[rng.Intn(len(opts))].ID
	}
}

// Selections returns the non-default selections in canonical category order.
func (o *Order) Selections() []Selection {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []Selection
	for _, c := range Categories {
		id := o.selected[c]
		if id == DefaultID(c) {
			continue
		}
		opt, _ := FindOption(c, id)
		out = append(out, Selection{Category: c, ID: id, Name: opt.Name})
	}
	return out
}

// SelectedTraits returns the metadata attributes for the current selection.
// Default categories contribute nothing.
func (o *Order) SelectedTraits() []Trait {
	sels := o.Selections()
	traits := make([]Trait, 0, len(sels))
	for _, s := range sels {
		traits = append(traits, Trait{
			Category: s.Category,
			Type:     s.Category.DisplayName(),
			Value:    s.Name,
		})
	}
	return traits
}

// TraitPriceUSD sums the catalog price of every non-default selection.
func (o *Order) TraitPriceUSD() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var total float64
	for _, c := range Categories {
		id := o.selected[c]
		if id == DefaultID(c) {
			continue
		}
		if opt, ok := FindOption(c, id); ok {
			total += opt.PriceUSD
		}
	}
	return total
}
