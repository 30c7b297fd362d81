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

package tracker

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/ethereum/go-ethereum/log"
)

const (
	// heartbeatInterval keeps the phoenix channel alive.
	heartbeatInterval = 25 * time.Second

	// suppressWindow is how long a freshly recorded own order shadows the
	// matching feed event, so the UI does not show its own mint twice.
	suppressWindow = 5 * time.Second

	feedTopic = "realtime:public:" + Table
)

// phoenixMessage is the phoenix channel wire frame.
type phoenixMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// insertPayload is the realtime INSERT event body.
type insertPayload struct {
	Type   string `json:"type"`
	Record Order  `json:"record"`
}

// LiveFeed streams order inserts from the Supabase realtime channel.
type LiveFeed struct {
	url    string
	apiKey string
	out    chan Order
	log    log.Logger

	mu  sync.Mutex
	own map[string]time.Time // trait hash -> recorded at
	now func() time.Time
}

// NewLiveFeed builds a feed for a Supabase project. Orders arrive on
// Orders() once Run is started.
func NewLiveFeed(baseURL, apiKey string) *LiveFeed {
	wsURL := strings.Replace(strings.TrimRight(baseURL, "/"), "http", "ws", 1)
	return &LiveFeed{
		url:    wsURL + "/realtime/v1/websocket?apikey=" + apiKey + "&vsn=1.0.0",
		apiKey: apiKey,
		out:    make(chan Order, 16),
		log:    log.New("module", "livefeed"),
		own:    make(map[string]time.Time),
		now:    time.Now,
	}
}

// Orders is the stream of other users' inserts.
func (f *LiveFeed) Orders() <-chan Order {
	return f.out
}

// Suppress registers an own order so the echo from the shared channel is
// dropped. The suppression expires after a short window.
func (f *LiveFeed) Suppress(traitHash string) {
	f.mu.Lock()
	f.own[traitHash] = f.now()
	f.mu.Unlock()
}

func (f *LiveFeed) suppressed(traitHash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.own[traitHash]
	if !ok {
		return false
	}
	if f.now().Sub(at) > suppressWindow {
		delete(f.own, traitHash)
		return false
	}
	return true
}

// Run connects, joins the order channel and pumps events until the context
// is done. Lost connections are redialed with a short pause.
func (f *LiveFeed) Run(ctx context.Context) {
	for {
		if err := f.session(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.Warn("Live feed dropped, reconnecting", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

func (f *LiveFeed) session(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, f.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	join := phoenixMessage{Topic: feedTopic, Event: "phx_join", Payload: json.RawMessage(`{}`), Ref: "1"}
	if err := f.send(ctx, conn, &join); err != nil {
		return err
	}
	f.log.Info("Live feed joined", "topic", feedTopic)

	// Heartbeats run alongside the read loop; the phoenix server drops
	// silent clients.
	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.heartbeat(hbCtx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}
		var msg phoenixMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			f.log.Debug("Undecodable feed frame", "err", err)
			continue
		}
		if msg.Topic != feedTopic || msg.Event != "INSERT" {
			continue
		}
		var ins insertPayload
		if err := json.Unmarshal(msg.Payload, &ins); err != nil {
			f.log.Debug("Undecodable insert payload", "err", err)
			continue
		}
		if f.suppressed(ins.Record.TraitHash) {
			f.log.Debug("Own order echo suppressed", "hash", ins.Record.TraitHash)
			continue
		}
		select {
		case f.out <- ins.Record:
		default:
			f.log.Warn("Feed consumer lagging, order dropped", "id", ins.Record.ID)
		}
	}
}

func (f *LiveFeed) heartbeat(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	ref := 2
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := phoenixMessage{
				Topic:   "phoenix",
				Event:   "heartbeat",
				Payload: json.RawMessage(`{}`),
				Ref:     strconv.Itoa(ref),
			}
			ref++
			if err := f.send(ctx, conn, &msg); err != nil {
				return
			}
		}
	}
}

func (f *LiveFeed) send(ctx context.Context, conn *websocket.Conn, msg *phoenixMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, data)
}
