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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/TobyLyon/MOJOpfpMaker/tracker"
)

// hub fans live orders out to websocket subscribers. Slow subscribers drop
// messages rather than stall the hub.
type hub struct {
	src <-chan tracker.Order

	mu   sync.Mutex
	subs map[chan tracker.Order]struct{}
}

func newHub(src <-chan tracker.Order) *hub {
	return &hub{
		src:  src,
		subs: make(map[chan tracker.Order]struct{}),
	}
}

func (h *hub) subscribe() chan tracker.Order {
	ch := make(chan tracker.Order, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan tracker.Order) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *hub) run(ctx context.Context) {
	if h.src == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-h.src:
			if !ok {
				return
			}
			h.mu.Lock()
			for sub := range h.subs {
				select {
				case sub <- order:
				default:
				}
			}
			h.mu.Unlock()
		}
	}
}

// handleLive streams live orders to a websocket client as JSON frames.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)

	// Reads are drained so pings and close frames are processed.
	readCtx := r.Context()
	go func() {
		for {
			if _, _, err := conn.Read(readCtx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-readCtx.Done():
			return
		case order := <-sub:
			payload, err := json.Marshal(order)
			if err != nil {
				continue
			}
			wctx, cancel := context.WithTimeout(readCtx, 3*time.Second)
			err = conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}
