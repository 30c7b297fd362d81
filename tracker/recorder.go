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

// Package tracker records completed mints in Supabase and follows the shared
// order feed. Recording is an after-the-fact concern: the mint has already
// settled on chain, so every failure here is reported, never propagated.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/TobyLyon/MOJOpfpMaker/mojo"
)

// Table is the Supabase table holding the shared order history.
const Table = "paco_orders"

// Order is one row of the shared order history.
type Order struct {
	ID          string       `json:"id,omitempty"`
	Wallet      string       `json:"wallet_address"`
	TokenID     string       `json:"token_id"`
	TraitHash   string       `json:"trait_hash"`
	ImageCID    string       `json:"image_cid"`
	MetadataCID string       `json:"metadata_cid"`
	TxHash      string       `json:"tx_hash"`
	Traits      []mojo.Trait `json:"traits"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
}

// Result reports a recording outcome without failing the caller.
type Result struct {
	OK  bool
	Err error
}

// Recorder writes and reads orders through the Supabase REST endpoint.
type Recorder struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     log.Logger
	now     func() time.Time
}

// NewRecorder builds a recorder for a Supabase project. A nil client falls
// back to http.DefaultClient.
func NewRecorder(baseURL, apiKey string, hc *http.Client) *Recorder {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Recorder{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log.New("module", "tracker"),
		now:     time.Now,
	}
}

func (r *Recorder) restURL() string {
	return r.baseURL + "/rest/v1/" + Table
}

func (r *Recorder) authorize(req *http.Request) {
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
}

// Insert stores one order. The returned Result carries the error instead of
// failing: order history is an accessory to the mint, not part of it.
func (r *Recorder) Insert(ctx context.Context, o *Order) Result {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	body, err := json.Marshal(o)
	if err != nil {
		return Result{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.restURL(), bytes.NewReader(body))
	if err != nil {
		return Result{Err: err}
	}
	r.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Warn("Order insert failed", "id", o.ID, "err", err)
		return Result{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("tracker: insert status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		r.log.Warn("Order insert rejected", "id", o.ID, "err", err)
		return Result{Err: err}
	}
	r.log.Info("Order recorded", "id", o.ID, "token", o.TokenID)
	return Result{OK: true}
}

// Recent returns the newest orders, most recent first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Order, error) {
	url := r.restURL() + "?select=*&order=created_at.desc&limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	r.authorize(req)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker: query status %d", resp.StatusCode)
	}
	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("tracker: decode orders: %w", err)
	}
	return orders, nil
}

// GlobalCount returns the total number of recorded orders.
func (r *Recorder) GlobalCount(ctx context.Context) (int, error) {
	return r.count(ctx, "")
}

// TodayCount returns the number of orders recorded since UTC midnight.
func (r *Recorder) TodayCount(ctx context.Context) (int, error) {
	midnight := r.now().UTC().Truncate(24 * time.Hour)
	return r.count(ctx, "&created_at=gte."+midnight.Format(time.RFC3339))
}

// count asks PostgREST for an exact row count without transferring rows: a
// HEAD request with Prefer count=exact answers in the Content-Range header.
func (r *Recorder) count(ctx context.Context, filter string) (int, error) {
	url := r.restURL() + "?select=id" + filter
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	r.authorize(req)
	req.Header.Set("Prefer", "count=exact")

	resp, err := r.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("tracker: count status %d", resp.StatusCode)
	}
	cr := resp.Header.Get("Content-Range")
	i := strings.LastIndexByte(cr, '/')
	if i < 0 {
		return 0, fmt.Errorf("tracker: count response without content range")
	}
	n, err := strconv.Atoi(cr[i+1:])
	if err != nil {
		return 0, fmt.Errorf("tracker: bad content range %q", cr)
	}
	return n, nil
}

// TraitTally aggregates one trait value over the recent history.
type TraitTally struct {
	Type  string `json:"trait_type"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PopularTraits tallies trait values over the newest orders. PostgREST has no
// aggregate surface for JSON columns, so the tally runs client side over a
// bounded window.
func (r *Recorder) PopularTraits(ctx context.Context, window, limit int) ([]TraitTally, error) {
	orders, err := r.Recent(ctx, window)
	if err != nil {
		return nil, err
	}
	counts := make(map[[2]string]int)
	for _, o := range orders {
		for _, tr := range o.Traits {
			counts[[2]string{tr.Type, tr.Value}]++
		}
	}
	out := make([]TraitTally, 0, len(counts))
	for k, n := range counts {
		out = append(out, TraitTally{Type: k[0], Value: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TestConnection verifies the endpoint accepts our credentials.
func (r *Recorder) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := r.GlobalCount(ctx)
	return err
}

// RecordMint adapts the recorder to the mint pipeline.
func (r *Recorder) RecordMint(ctx context.Context, receipt *mojo.MintReceipt, sels []mojo.Selection, wallet common.Address) error {
	traits := make([]mojo.Trait, 0, len(sels))
	for _, s := range sels {
		traits = append(traits, mojo.Trait{
			Category: s.Category,
			Type:     s.Category.DisplayName(),
			Value:    s.Name,
		})
	}
	res := r.Insert(ctx, &Order{
		Wallet:      wallet.Hex(),
		TokenID:     receipt.TokenID,
		TraitHash:   receipt.TraitHash.Hex(),
		ImageCID:    receipt.ImageCID,
		MetadataCID: receipt.MetadataCID,
		TxHash:      receipt.TxHash.Hex(),
		Traits:      traits,
	})
	return res.Err
}
