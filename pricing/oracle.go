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

// Package pricing quotes trait prices in MOJO tokens from a live USD rate.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

const (
	// FallbackRate is the USD value of one MOJO used until the feed answers.
	FallbackRate = 0.001

	// PollInterval is how often the live rate is refreshed.
	PollInterval = 5 * time.Minute

	// BaseMintMojo is the fixed MOJO cost of the base character.
	BaseMintMojo = 500

	// GasBufferMojo covers network fees on top of the order.
	GasBufferMojo = 100

	dexScreenerURL = "https://api.dexscreener.com/latest/dex/tokens/"
)

var ErrNoPairs = errors.New("pricing: feed returned no trading pairs")

// Oracle tracks the MOJO/USD exchange rate from the DexScreener token feed.
// It serves the fallback rate until the first successful refresh, and keeps
// the last good rate across feed outages.
type Oracle struct {
	client *http.Client
	url    string
	log    log.Logger

	mu      sync.RWMutex
	rate    float64
	updated time.Time
}

// NewOracle builds an oracle for the given MOJO token contract address.
// A nil client falls back to http.DefaultClient.
func NewOracle(tokenAddr string, client *http.Client) *Oracle {
	if client == nil {
		client = http.DefaultClient
	}
	return &Oracle{
		client: client,
		url:    dexScreenerURL + tokenAddr,
		log:    log.New("module", "pricing"),
	}
}

// feedResponse mirrors the DexScreener token endpoint payload.
type feedResponse struct {
	Pairs []struct {
		PriceUSD  string `json:"priceUsd"`
		Liquidity struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
	} `json:"pairs"`
}

// Rate returns the current USD value of one MOJO.
func (o *Oracle) Rate() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.rate == 0 {
		return FallbackRate
	}
	return o.rate
}

// Updated returns when the rate last refreshed, zero if never.
func (o *Oracle) Updated() time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.updated
}

// Refresh fetches the live rate once. The deepest pool wins when the token
// trades in several pairs. Failures leave the previous rate in place.
func (o *Oracle) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("pricing: feed request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pricing: feed status %d", resp.StatusCode)
	}
	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Errorf("pricing: decode feed: %w", err)
	}
	if len(feed.Pairs) == 0 {
		return ErrNoPairs
	}
	best := feed.Pairs[0]
	for _, p := range feed.Pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	rate, err := strconv.ParseFloat(best.PriceUSD, 64)
	if err != nil || rate <= 0 {
		return fmt.Errorf("pricing: bad price %q", best.PriceUSD)
	}

	o.mu.Lock()
	o.rate = rate
	o.updated = time.Now()
	o.mu.Unlock()
	o.log.Debug("Rate refreshed", "usd", rate)
	return nil
}

// Poll refreshes the rate on a fixed interval until the context is done.
// The first refresh fires immediately.
func (o *Oracle) Poll(ctx context.Context) {
	if err := o.Refresh(ctx); err != nil {
		o.log.Warn("Rate refresh failed", "err", err)
	}
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := o.Refresh(ctx); err != nil {
				o.log.Warn("Rate refresh failed", "err", err)
			}
		}
	}
}

// ConvertToMojo converts a USD amount to whole MOJO tokens at the current
// rate. Zero converts to zero regardless of the rate.
func (o *Oracle) ConvertToMojo(usd float64) int64 {
	if usd == 0 {
		return 0
	}
	return int64(math.Round(usd / o.Rate()))
}

// FormatMojo renders a MOJO amount with thousands separators.
func FormatMojo(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if s[0] == '-' {
		neg, s = true, s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s + " MOJO"
}

// Quote itemizes the MOJO cost of an order.
type Quote struct {
	BaseMojo  int64   `json:"base"`
	TraitMojo int64   `json:"traits"`
	GasMojo   int64   `json:"gas"`
	TotalMojo int64   `json:"total"`
	RateUSD   float64 `json:"rate_usd"`
}

// OrderTotal quotes a full order: fixed base and gas components plus the
// selected traits converted from their USD catalog prices.
func (o *Oracle) OrderTotal(traitUSD float64) Quote {
	traits := o.ConvertToMojo(traitUSD)
	return Quote{
		BaseMojo:  BaseMintMojo,
		TraitMojo: traits,
		GasMojo:   GasBufferMojo,
		TotalMojo: BaseMintMojo + traits + GasBufferMojo,
		RateUSD:   o.Rate(),
	}
}
