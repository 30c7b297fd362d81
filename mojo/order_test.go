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
	"math/rand"
	"testing"
)

func TestOrderDefaults(t *testing.T) {
	o := NewOrder()
	for _, c := range Categories {
		if !o.IsDefault(c) {
			t.Errorf("new order: category %s not at default", c)
		}
	}
	if traits := o.SelectedTraits(); len(traits) != 0 {
		t.Errorf("new order: want no traits, got %v", traits)
	}
	if got := o.Selected(CategoryEyes); got != "NORMAL" {
		t.Errorf("default eyes = %q, want NORMAL", got)
	}
}

func TestOrderSelectClearRoundTrip(t *testing.T) {
	o := NewOrder()
	if err := o.Select(CategoryHead, "CROWN GOLD"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := o.Selected(CategoryHead); got != "CROWN GOLD" {
		t.Fatalf("selected head = %q, want CROWN GOLD", got)
	}
	o.Clear(CategoryHead)
	if !o.IsDefault(CategoryHead) {
		t.Fatal("clear did not restore the default")
	}
	if traits := o.SelectedTraits(); len(traits) != 0 {
		t.Fatalf("after clear: want no traits, got %v", traits)
	}
}

func TestOrderSelectUnknown(t *testing.T) {
	o := NewOrder()
	err := o.Select(CategoryBackground, "PURPLE")
	if !errors.Is(err, ErrUnknownTrait) {
		t.Fatalf("select unknown: err = %v, want ErrUnknownTrait", err)
	}
	if !o.IsDefault(CategoryBackground) {
		t.Fatal("failed select must leave the selection untouched")
	}
}

func TestOrderSelectedTraitsExcludesDefaults(t *testing.T) {
	o := NewOrder()
	if err := o.Select(CategoryBackground, "BLUE"); err != nil {
		t.Fatal(err)
	}
	if err := o.Select(CategoryHead, "CROWN GOLD"); err != nil {
		t.Fatal(err)
	}
	// Eyes and mouth stay at NORMAL and must not appear.
	traits := o.SelectedTraits()
	if len(traits) != 2 {
		t.Fatalf("traits = %v, want 2 entries", traits)
	}
	if traits[0].Type != "Background" || traits[0].Value != "Blue" {
		t.Errorf("traits[0] = %+v", traits[0])
	}
	if traits[1].Type != "Headwear" || traits[1].Value != "Golden Crown" {
		t.Errorf("traits[1] = %+v", traits[1])
	}
}

func TestOrderRandomizeReproducible(t *testing.T) {
	a, b := NewOrder(), NewOrder()
	a.Randomize(rand.New(rand.NewSource(42)))
	b.Randomize(rand.New(rand.NewSource(42)))
	for _, c := range Categories {
		if a.Selected(c) != b.Selected(c) {
			t.Errorf("category %s: %q != %q", c, a.Selected(c), b.Selected(c))
		}
		if _, ok := FindOption(c, a.Selected(c)); !ok {
			t.Errorf("category %s: randomized id %q not in catalog", c, a.Selected(c))
		}
	}
}

func TestOrderTraitPriceUSD(t *testing.T) {
	o := NewOrder()
	if got := o.TraitPriceUSD(); got != 0 {
		t.Fatalf("empty order price = %v, want 0", got)
	}
	if err := o.Select(CategoryBackground, "BLUE"); err != nil { // 0.25
		t.Fatal(err)
	}
	if err := o.Select(CategoryHead, "CROWN GOLD"); err != nil { // 2.00
		t.Fatal(err)
	}
	if got, want := o.TraitPriceUSD(), 2.25; got != want {
		t.Fatalf("price = %v, want %v", got, want)
	}
}
