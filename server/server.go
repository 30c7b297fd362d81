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

// Package server exposes the customization session over HTTP: catalog and
// selection endpoints, PNG previews, mint submission and a live order
// websocket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ethereum/go-ethereum/log"

	"github.com/TobyLyon/MOJOpfpMaker/mojo"
	"github.com/TobyLyon/MOJOpfpMaker/prefs"
	"github.com/TobyLyon/MOJOpfpMaker/session"
	"github.com/TobyLyon/MOJOpfpMaker/tracker"
	"github.com/TobyLyon/MOJOpfpMaker/wallet"
)

// Server serves one customization session.
type Server struct {
	sess *session.Session
	hub  *hub
	log  log.Logger
}

// New builds a server over a session. The hub starts broadcasting once
// Router's /live endpoint has subscribers; orders may be nil.
func New(sess *session.Session, orders <-chan tracker.Order) *Server {
	return &Server{
		sess: sess,
		hub:  newHub(orders),
		log:  log.New("module", "server"),
	}
}

// Run pumps live orders to websocket subscribers until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.hub.run(ctx)
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/config", s.handleConfig)
	r.Get("/stats", s.handleStats)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/selection", s.handleSelection)
		r.Post("/selection/{category}", s.handleSelect)
		r.Delete("/selection/{category}", s.handleClear)
		r.Post("/randomize", s.handleRandomize)
		r.Get("/quote", s.handleQuote)

		r.Post("/wallet/connect", s.handleWalletConnect)
		r.Post("/wallet/disconnect", s.handleWalletDisconnect)
		r.Get("/wallet", s.handleWalletState)

		r.Post("/mint", s.handleMint)
		r.Get("/orders", s.handleOrders)

		r.Get("/presets", s.handlePresetList)
		r.Post("/presets/{name}", s.handlePresetSave)
		r.Put("/presets/{name}", s.handlePresetLoad)
	})
	r.Get("/preview.png", s.handlePreview)
	r.Get("/export.png", s.handleExport)
	r.Get("/live", s.handleLive)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := mojo.Classify(err)
	switch {
	case errors.Is(err, mojo.ErrUnknownTrait), errors.Is(err, prefs.ErrNoPreset):
		status = http.StatusNotFound
	case kind == mojo.FailureValidation:
		status = http.StatusConflict
	case kind == mojo.FailureWallet:
		status = http.StatusUnauthorized
	case kind == mojo.FailureUpload, kind == mojo.FailureTransaction:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(kind),
	})
}

// ──────────────────────────────────────────────
//  Service surface
// ──────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	tracker := "ok"
	if !s.sess.TrackerHealthy(r.Context()) {
		tracker = "down"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"tracker": tracker,
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.PublicConfig())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Stats(r.Context()))
}

// ──────────────────────────────────────────────
//  Catalog and selection
// ──────────────────────────────────────────────

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]interface{}, len(mojo.Categories))
	for _, c := range mojo.Categories {
		out[string(c)] = map[string]interface{}{
			"display": c.DisplayName(),
			"default": mojo.DefaultID(c),
			"options": mojo.Options(c),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Selections())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	cat := mojo.Category(chi.URLParam(r, "category"))
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := s.sess.Select(cat, body.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Selections())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.sess.Clear(mojo.Category(chi.URLParam(r, "category")))
	writeJSON(w, http.StatusOK, s.sess.Selections())
}

func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	s.sess.Randomize(rand.New(rand.NewSource(time.Now().UnixNano())))
	writeJSON(w, http.StatusOK, s.sess.Selections())
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Quote())
}

// ──────────────────────────────────────────────
//  Rendering
// ──────────────────────────────────────────────

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, r, s.sess.Preview)
}

// handleExport serves the full-resolution image. Downloading it counts as a
// completed order, like a mint.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.sess.ExportTo(r.Context(), &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, render func(context.Context) ([]byte, error)) {
	data, err := render(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// ──────────────────────────────────────────────
//  Wallet and mint
// ──────────────────────────────────────────────

func (s *Server) handleWalletConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.ConnectWallet(r.Context()); err != nil && !errors.Is(err, wallet.ErrAlreadyConnected) {
		writeError(w, err)
		return
	}
	s.handleWalletState(w, r)
}

func (s *Server) handleWalletDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.DisconnectWallet(); err != nil {
		writeError(w, err)
		return
	}
	s.handleWalletState(w, r)
}

func (s *Server) handleWalletState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"state": s.sess.WalletState().String(),
	})
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.sess.Mint(r.Context())
	if err != nil {
		s.log.Warn("Mint failed", "kind", mojo.Classify(err), "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	orders, err := s.sess.RecentOrders(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// ──────────────────────────────────────────────
//  Presets
// ──────────────────────────────────────────────

func (s *Server) handlePresetList(w http.ResponseWriter, r *http.Request) {
	names, err := s.sess.ListPresets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handlePresetSave(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.SavePreset(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePresetLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.LoadPreset(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Selections())
}
