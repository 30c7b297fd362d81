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

package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/TobyLyon/MOJOpfpMaker/mojo"
)

// openMemory opens an in-memory store for testing. A single connection keeps
// every query on the same in-memory database.
func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPresetRoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	sels := []mojo.Selection{
		{Category: mojo.CategoryBackground, ID: "BLUE", Name: "Blue"},
		{Category: mojo.CategoryHead, ID: "CROWN GOLD", Name: "Golden Crown"},
	}
	if err := s.SavePreset(ctx, "royal", sels); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadPreset(ctx, "royal")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1].ID != "CROWN GOLD" {
		t.Fatalf("loaded = %+v", got)
	}

	// Saving again replaces the preset.
	if err := s.SavePreset(ctx, "royal", sels[:1]); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, err = s.LoadPreset(ctx, "royal")
	if err != nil || len(got) != 1 {
		t.Fatalf("after resave: %v, %v", got, err)
	}
}

func TestLoadMissingPreset(t *testing.T) {
	s := openMemory(t)
	if _, err := s.LoadPreset(context.Background(), "nope"); !errors.Is(err, ErrNoPreset) {
		t.Fatalf("err = %v, want ErrNoPreset", err)
	}
}

func TestListAndDeletePresets(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		if err := s.SavePreset(ctx, name, nil); err != nil {
			t.Fatal(err)
		}
	}
	names, err := s.ListPresets(ctx)
	if err != nil || len(names) != 2 {
		t.Fatalf("list = %v, %v", names, err)
	}
	if err := s.DeletePreset(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeletePreset(ctx, "a"); !errors.Is(err, ErrNoPreset) {
		t.Fatalf("double delete: err = %v", err)
	}
}

func TestUsageCounters(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	crown := []mojo.Selection{{Category: mojo.CategoryHead, ID: "CROWN GOLD"}}
	fish := []mojo.Selection{{Category: mojo.CategoryHead, ID: "FISH"}}
	for i := 0; i < 3; i++ {
		if err := s.BumpUsage(ctx, crown); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.BumpUsage(ctx, fish); err != nil {
		t.Fatal(err)
	}

	top, err := s.TopTraits(ctx, mojo.CategoryHead, 5)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].ID != "CROWN GOLD" || top[0].Uses != 3 {
		t.Fatalf("top = %+v", top)
	}

	// Other categories stay empty.
	other, err := s.TopTraits(ctx, mojo.CategoryMouth, 5)
	if err != nil || len(other) != 0 {
		t.Fatalf("mouth = %+v, %v", other, err)
	}
}

func TestNamedCounters(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	n, err := s.Counter(ctx, CounterOrdersServed)
	if err != nil || n != 0 {
		t.Fatalf("unset counter = %d, %v", n, err)
	}
	if err := s.SetCounter(ctx, CounterOrdersServed, 7); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCounter(ctx, CounterOrdersServed, 9); err != nil {
		t.Fatal(err)
	}
	if n, err = s.Counter(ctx, CounterOrdersServed); err != nil || n != 9 {
		t.Fatalf("counter = %d, %v, want 9", n, err)
	}
	// Counters are independent.
	if n, err = s.Counter(ctx, CounterOrderNumber); err != nil || n != 0 {
		t.Fatalf("order number = %d, %v", n, err)
	}
}
