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

// Package session ties the customization surfaces together: one session owns
// the user's trait order, renders previews, quotes prices and drives mints.
package session

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/TobyLyon/MOJOpfpMaker/compositor"
	"github.com/TobyLyon/MOJOpfpMaker/mojo"
	"github.com/TobyLyon/MOJOpfpMaker/prefs"
	"github.com/TobyLyon/MOJOpfpMaker/pricing"
	"github.com/TobyLyon/MOJOpfpMaker/tracker"
	"github.com/TobyLyon/MOJOpfpMaker/wallet"
)

// Session orchestrates one user's customization flow:
//  1. Pick traits from the catalog (or restore a saved preset)
//  2. Preview the composited character
//  3. Quote the order in MOJO at the live rate
//  4. Connect a wallet and run the mint pipeline
//  5. Follow other users' mints on the shared feed
type Session struct {
	order     *mojo.Order
	comp      *compositor.Compositor
	oracle    *pricing.Oracle
	connector *wallet.Connector
	pipeline  *mojo.Pipeline
	recorder  *tracker.Recorder // optional
	feed      *tracker.LiveFeed // optional
	store     *prefs.Store      // optional
	log       log.Logger

	mu       sync.Mutex
	served   int // orders completed by this installation
	orderNum int // running order number
}

// Order completion kinds. A mint, a download and a copied image all advance
// the same counters.
const (
	OrderMint     = "mint"
	OrderDownload = "download"
	OrderCopy     = "copy"
)

// Config wires a session. Recorder, feed and store may be nil; the session
// skips the corresponding features.
type Config struct {
	Compositor *compositor.Compositor
	Oracle     *pricing.Oracle
	Connector  *wallet.Connector
	Pipeline   *mojo.Pipeline
	Recorder   *tracker.Recorder
	Feed       *tracker.LiveFeed
	Store      *prefs.Store
}

func New(cfg Config) *Session {
	s := &Session{
		order:     mojo.NewOrder(),
		comp:      cfg.Compositor,
		oracle:    cfg.Oracle,
		connector: cfg.Connector,
		pipeline:  cfg.Pipeline,
		recorder:  cfg.Recorder,
		feed:      cfg.Feed,
		store:     cfg.Store,
		log:       log.New("module", "session"),
	}
	s.loadCounters(context.Background())
	return s
}

// loadCounters restores the persisted order counters. A fresh or absent
// store starts both at zero.
func (s *Session) loadCounters(ctx context.Context) {
	if s.store == nil {
		return
	}
	served, err := s.store.Counter(ctx, prefs.CounterOrdersServed)
	if err != nil {
		s.log.Warn("Counter load failed", "name", prefs.CounterOrdersServed, "err", err)
		return
	}
	number, err := s.store.Counter(ctx, prefs.CounterOrderNumber)
	if err != nil {
		s.log.Warn("Counter load failed", "name", prefs.CounterOrderNumber, "err", err)
		return
	}
	s.mu.Lock()
	s.served, s.orderNum = served, number
	s.mu.Unlock()
}

// CompleteOrder advances the order counters and returns the new order
// number. Counters persist on every completion and again on Close.
func (s *Session) CompleteOrder(ctx context.Context, kind, ref string) int {
	s.mu.Lock()
	s.served++
	s.orderNum++
	number := s.orderNum
	s.mu.Unlock()
	s.log.Info("Order completed", "kind", kind, "ref", ref, "number", number)
	s.saveCounters(ctx)
	return number
}

func (s *Session) saveCounters(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	served, number := s.served, s.orderNum
	s.mu.Unlock()
	if err := s.store.SetCounter(ctx, prefs.CounterOrdersServed, served); err != nil {
		s.log.Warn("Counter save failed", "name", prefs.CounterOrdersServed, "err", err)
		return
	}
	if err := s.store.SetCounter(ctx, prefs.CounterOrderNumber, number); err != nil {
		s.log.Warn("Counter save failed", "name", prefs.CounterOrderNumber, "err", err)
	}
}

// Close flushes the session counters. The preference store itself belongs to
// the caller.
func (s *Session) Close() error {
	s.saveCounters(context.Background())
	return nil
}

// ──────────────────────────────────────────────
//  Trait selection
// ──────────────────────────────────────────────

func (s *Session) Select(c mojo.Category, id string) error {
	return s.order.Select(c, id)
}

func (s *Session) Clear(c mojo.Category) {
	s.order.Clear(c)
}

func (s *Session) Reset() {
	s.order.Reset()
}

func (s *Session) Randomize(rng *rand.Rand) {
	s.order.Randomize(rng)
}

// Selections returns the current non-default picks.
func (s *Session) Selections() []mojo.Selection {
	return s.order.Selections()
}

// ──────────────────────────────────────────────
//  Preview and pricing
// ──────────────────────────────────────────────

// Preview renders the current selection at preview resolution as PNG.
func (s *Session) Preview(ctx context.Context) ([]byte, error) {
	full, err := s.comp.Render(ctx, s.order.Selections())
	if err != nil {
		return nil, err
	}
	return compositor.EncodePNG(compositor.Preview(full))
}

// Export renders the current selection at full mint resolution as PNG.
func (s *Session) Export(ctx context.Context) ([]byte, error) {
	full, err := s.comp.Render(ctx, s.order.Selections())
	if err != nil {
		return nil, err
	}
	return compositor.EncodePNG(full)
}

// ExportTo writes the full-resolution PNG to w. The download counts as a
// completed order.
func (s *Session) ExportTo(ctx context.Context, w io.Writer) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	s.CompleteOrder(ctx, OrderDownload, mojo.TraitHash(s.order.Selections()).Hex())
	return nil
}

// Quote prices the current order in MOJO at the live rate.
func (s *Session) Quote() pricing.Quote {
	return s.oracle.OrderTotal(s.order.TraitPriceUSD())
}

// ──────────────────────────────────────────────
//  Wallet
// ──────────────────────────────────────────────

func (s *Session) ConnectWallet(ctx context.Context) error {
	return s.connector.Connect(ctx)
}

func (s *Session) DisconnectWallet() error {
	return s.connector.Disconnect()
}

func (s *Session) WalletState() wallet.State {
	return s.connector.State()
}

// ──────────────────────────────────────────────
//  Minting
// ──────────────────────────────────────────────

// Mint exports the current character and runs the mint pipeline against the
// connected wallet. On success the own-order echo is suppressed on the live
// feed and local usage counters are bumped.
func (s *Session) Mint(ctx context.Context) (*mojo.MintReceipt, error) {
	recipient, err := s.connector.Address()
	if err != nil {
		return nil, mojo.WrapFailure(mojo.FailureWallet, err)
	}
	sels := s.order.Selections()
	image, err := s.Export(ctx)
	if err != nil {
		return nil, mojo.WrapFailure(mojo.FailureValidation, fmt.Errorf("render: %w", err))
	}
	if s.feed != nil {
		s.feed.Suppress(mojo.TraitHash(sels).Hex())
	}
	receipt, err := s.pipeline.Mint(ctx, &mojo.MintRequest{
		Recipient:  recipient,
		Selections: sels,
		Image:      image,
	})
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.BumpUsage(ctx, sels); err != nil {
			s.log.Warn("Usage counter update failed", "err", err)
		}
	}
	s.CompleteOrder(ctx, OrderMint, receipt.TxHash.Hex())
	return receipt, nil
}

// ──────────────────────────────────────────────
//  Service surface
// ──────────────────────────────────────────────

// PublicConfig is the client-facing service configuration.
type PublicConfig struct {
	Contract   common.Address `json:"contract"`
	Collection string         `json:"collection"`
	BaseMojo   int64          `json:"base_price_mojo"`
	GasMojo    int64          `json:"gas_buffer_mojo"`
}

func (s *Session) PublicConfig() PublicConfig {
	return PublicConfig{
		Contract:   s.pipeline.ContractAddress(),
		Collection: mojo.CollectionName,
		BaseMojo:   pricing.BaseMintMojo,
		GasMojo:    pricing.GasBufferMojo,
	}
}

// Stats summarizes local and shared order history.
type Stats struct {
	OrdersServed int `json:"orders_served"`
	OrderNumber  int `json:"order_number"`
	GlobalOrders int `json:"global_orders"`
	TodayOrders  int `json:"today_orders"`
}

// Stats reports this installation's counters plus the shared totals. Shared
// totals stay zero when the tracker is unreachable or not wired.
func (s *Session) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	st := Stats{OrdersServed: s.served, OrderNumber: s.orderNum}
	s.mu.Unlock()
	if s.recorder != nil {
		if n, err := s.recorder.GlobalCount(ctx); err == nil {
			st.GlobalOrders = n
		} else {
			s.log.Warn("Global count unavailable", "err", err)
		}
		if n, err := s.recorder.TodayCount(ctx); err == nil {
			st.TodayOrders = n
		} else {
			s.log.Warn("Today count unavailable", "err", err)
		}
	}
	return st
}

// TrackerHealthy checks the shared order store is reachable. A session
// without a tracker reports healthy.
func (s *Session) TrackerHealthy(ctx context.Context) bool {
	if s.recorder == nil {
		return true
	}
	return s.recorder.TestConnection(ctx) == nil
}

// ──────────────────────────────────────────────
//  History and presets
// ──────────────────────────────────────────────

// RecentOrders returns the newest entries of the shared order history.
func (s *Session) RecentOrders(ctx context.Context, limit int) ([]tracker.Order, error) {
	if s.recorder == nil {
		return nil, nil
	}
	return s.recorder.Recent(ctx, limit)
}

// LiveOrders is the stream of other users' mints, nil when no feed is wired.
func (s *Session) LiveOrders() <-chan tracker.Order {
	if s.feed == nil {
		return nil
	}
	return s.feed.Orders()
}

// SavePreset stores the current selection under a name.
func (s *Session) SavePreset(ctx context.Context, name string) error {
	if s.store == nil {
		return prefs.ErrNoPreset
	}
	return s.store.SavePreset(ctx, name, s.order.Selections())
}

// ListPresets returns the saved preset names, newest first.
func (s *Session) ListPresets(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListPresets(ctx)
}

// LoadPreset replaces the current selection with a saved one. Options that
// have left the catalog are skipped with a warning.
func (s *Session) LoadPreset(ctx context.Context, name string) error {
	if s.store == nil {
		return prefs.ErrNoPreset
	}
	sels, err := s.store.LoadPreset(ctx, name)
	if err != nil {
		return err
	}
	s.order.Reset()
	for _, sel := range sels {
		if err := s.order.Select(sel.Category, sel.ID); err != nil {
			s.log.Warn("Preset option no longer available", "category", sel.Category, "id", sel.ID)
		}
	}
	return nil
}
