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

package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/big"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/TobyLyon/MOJOpfpMaker/compositor"
	"github.com/TobyLyon/MOJOpfpMaker/mojo"
	"github.com/TobyLyon/MOJOpfpMaker/prefs"
	"github.com/TobyLyon/MOJOpfpMaker/pricing"
	"github.com/TobyLyon/MOJOpfpMaker/wallet"
)

// layerSource serves solid color layers and records what was asked for.
type layerSource struct {
	mu    sync.Mutex
	loads []string
}

func (s *layerSource) Base(ctx context.Context) (image.Image, error) {
	s.note("base")
	return solid(color.RGBA{G: 255, A: 255}), nil
}

func (s *layerSource) Layer(ctx context.Context, c mojo.Category, id string) (image.Image, error) {
	s.note(string(c) + "/" + id)
	return solid(color.RGBA{R: 255, A: 255}), nil
}

func (s *layerSource) note(key string) {
	s.mu.Lock()
	s.loads = append(s.loads, key)
	s.mu.Unlock()
}

func solid(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

type stubProvider struct {
	addr common.Address
}

func (p *stubProvider) Connect(ctx context.Context) (common.Address, error) { return p.addr, nil }
func (p *stubProvider) Disconnect() error                                   { return nil }
func (p *stubProvider) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (p *stubProvider) Subscribe(ch chan<- wallet.Event) event.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error { <-quit; return nil })
}

type stubContract struct{}

func (stubContract) Address() common.Address { return common.HexToAddress("0xc0") }
func (stubContract) MintPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}
func (stubContract) MintingActive(ctx context.Context) (bool, error) { return true, nil }
func (stubContract) TraitExists(ctx context.Context, h common.Hash) (bool, error) {
	return false, nil
}
func (stubContract) MintToEscrow(ctx context.Context, r common.Address, uri string, h common.Hash, v *big.Int) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: common.HexToHash("0x1")}, nil
}

type stubPinner struct{}

func (stubPinner) PinFile(ctx context.Context, name string, data []byte) (string, error) {
	return "QmImage", nil
}
func (stubPinner) PinJSON(ctx context.Context, v interface{}) (string, error) {
	return "QmMeta", nil
}

func newTestSession(t *testing.T) (*Session, *layerSource, *prefs.Store) {
	t.Helper()
	src := &layerSource{}
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	parse := func(*types.Receipt, common.Address) (string, bool) { return "42", true }
	s := New(Config{
		Compositor: compositor.New(src),
		Oracle:     pricing.NewOracle("0xmojo", nil),
		Connector:  wallet.NewConnector(&stubProvider{addr: common.HexToAddress("0xaa")}),
		Pipeline:   mojo.NewPipeline(stubContract{}, stubPinner{}, nil, parse, nil, nil),
		Store:      store,
	})
	return s, src, store
}

// The canonical walkthrough: blue background plus golden crown, everything
// else at defaults.
func TestSessionCustomizeAndMint(t *testing.T) {
	s, src, store := newTestSession(t)
	ctx := context.Background()

	if err := s.Select(mojo.CategoryBackground, "BLUE"); err != nil {
		t.Fatal(err)
	}
	if err := s.Select(mojo.CategoryHead, "CROWN GOLD"); err != nil {
		t.Fatal(err)
	}

	// Preview renders only background, base and head: NORMAL eyes and
	// mouth contribute no layer.
	data, err := s.Preview(ctx)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if img.Bounds().Dx() != compositor.PreviewSize {
		t.Errorf("preview size = %d", img.Bounds().Dx())
	}
	for _, load := range src.loads {
		switch load {
		case "base", "background/BLUE", "head/CROWN GOLD":
		default:
			t.Errorf("unexpected layer load %q", load)
		}
	}

	// Quoted in MOJO at the fallback rate: 500 base + 2250 traits + 100 gas.
	q := s.Quote()
	if q.TotalMojo != 2850 {
		t.Errorf("quote total = %d, want 2850", q.TotalMojo)
	}
	if got := pricing.FormatMojo(q.TotalMojo); got != "2,850 MOJO" {
		t.Errorf("formatted = %q", got)
	}

	// Mint needs a connected wallet.
	if _, err := s.Mint(ctx); mojo.Classify(err) != mojo.FailureWallet {
		t.Fatalf("mint without wallet: %v", err)
	}
	if err := s.ConnectWallet(ctx); err != nil {
		t.Fatal(err)
	}
	receipt, err := s.Mint(ctx)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if receipt.TokenID != "42" || receipt.ImageCID != "QmImage" {
		t.Errorf("receipt = %+v", receipt)
	}

	// Usage counters recorded the mint.
	top, err := store.TopTraits(ctx, mojo.CategoryHead, 1)
	if err != nil || len(top) != 1 || top[0].ID != "CROWN GOLD" {
		t.Errorf("top = %+v, %v", top, err)
	}
}

// Mints and exports both count as served orders, and the counters survive a
// restart through the preference store.
func TestSessionOrderCounters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	open := func() (*Session, *prefs.Store) {
		store, err := prefs.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		parse := func(*types.Receipt, common.Address) (string, bool) { return "42", true }
		s := New(Config{
			Compositor: compositor.New(&layerSource{}),
			Oracle:     pricing.NewOracle("0xmojo", nil),
			Connector:  wallet.NewConnector(&stubProvider{addr: common.HexToAddress("0xaa")}),
			Pipeline:   mojo.NewPipeline(stubContract{}, stubPinner{}, nil, parse, nil, nil),
			Store:      store,
		})
		return s, store
	}

	s, store := open()
	if st := s.Stats(ctx); st.OrdersServed != 0 || st.OrderNumber != 0 {
		t.Fatalf("fresh stats = %+v", st)
	}

	if err := s.ConnectWallet(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mint(ctx); err != nil {
		t.Fatalf("mint: %v", err)
	}
	var buf bytes.Buffer
	if err := s.ExportTo(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("export wrote nothing")
	}
	if st := s.Stats(ctx); st.OrdersServed != 2 || st.OrderNumber != 2 {
		t.Fatalf("stats after mint+export = %+v", st)
	}
	if n := s.CompleteOrder(ctx, OrderCopy, "clipboard"); n != 3 {
		t.Fatalf("third order number = %d", n)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// A new session over the same database resumes where the last one left off.
	s, store = open()
	defer store.Close()
	if st := s.Stats(ctx); st.OrdersServed != 3 || st.OrderNumber != 3 {
		t.Fatalf("reloaded stats = %+v", st)
	}
}

func TestSessionPresetRoundTrip(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()

	if err := s.Select(mojo.CategoryClothes, "SUIT"); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePreset(ctx, "formal"); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Reset()
	if len(s.Selections()) != 0 {
		t.Fatal("reset must clear the order")
	}
	if err := s.LoadPreset(ctx, "formal"); err != nil {
		t.Fatalf("load: %v", err)
	}
	sels := s.Selections()
	if len(sels) != 1 || sels[0].ID != "SUIT" {
		t.Fatalf("selections = %+v", sels)
	}
}

func TestSessionLoadMissingPreset(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.LoadPreset(context.Background(), "ghost"); !errors.Is(err, prefs.ErrNoPreset) {
		t.Fatalf("err = %v", err)
	}
}
