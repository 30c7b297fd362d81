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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// feedHarness runs a fake realtime endpoint that waits for the phoenix join
// and then pushes the given frames.
func feedHarness(t *testing.T, frames []phoenixMessage) *LiveFeed {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ctx := r.Context()
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var join phoenixMessage
		if err := json.Unmarshal(data, &join); err != nil || join.Event != "phx_join" {
			t.Errorf("first frame = %s", data)
			return
		}
		for _, frame := range frames {
			payload, _ := json.Marshal(frame)
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
		<-ctx.Done()
	}))
	t.Cleanup(srv.Close)
	return NewLiveFeed(srv.URL, "anon-key")
}

func insertFrame(t *testing.T, o Order) phoenixMessage {
	t.Helper()
	payload, err := json.Marshal(insertPayload{Type: "INSERT", Record: o})
	if err != nil {
		t.Fatal(err)
	}
	return phoenixMessage{Topic: feedTopic, Event: "INSERT", Payload: payload}
}

func awaitOrder(t *testing.T, ch <-chan Order) Order {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed order")
		return Order{}
	}
}

func TestLiveFeedDeliversInserts(t *testing.T) {
	feed := feedHarness(t, []phoenixMessage{
		{Topic: "phoenix", Event: "phx_reply", Payload: json.RawMessage(`{}`)},
		insertFrame(t, Order{ID: "o1", TokenID: "9", TraitHash: "0x01"}),
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	got := awaitOrder(t, feed.Orders())
	if got.ID != "o1" || got.TokenID != "9" {
		t.Fatalf("order = %+v", got)
	}
}

func TestLiveFeedIgnoresOtherTopics(t *testing.T) {
	feed := feedHarness(t, []phoenixMessage{
		{Topic: "realtime:public:other_table", Event: "INSERT", Payload: json.RawMessage(`{"record":{"id":"x"}}`)},
		insertFrame(t, Order{ID: "mine", TraitHash: "0x02"}),
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	if got := awaitOrder(t, feed.Orders()); got.ID != "mine" {
		t.Fatalf("order = %+v, foreign topic must be skipped", got)
	}
}

func TestLiveFeedSuppressesOwnOrders(t *testing.T) {
	feed := feedHarness(t, []phoenixMessage{
		insertFrame(t, Order{ID: "echo", TraitHash: "0xown"}),
		insertFrame(t, Order{ID: "other", TraitHash: "0xother"}),
	})
	feed.Suppress("0xown")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	if got := awaitOrder(t, feed.Orders()); got.ID != "other" {
		t.Fatalf("order = %+v, own echo must be suppressed", got)
	}
}

func TestSuppressWindowExpires(t *testing.T) {
	feed := NewLiveFeed("http://localhost", "key")
	now := time.Now()
	feed.now = func() time.Time { return now }

	feed.Suppress("0xhash")
	if !feed.suppressed("0xhash") {
		t.Fatal("fresh suppression must hold")
	}
	now = now.Add(suppressWindow + time.Second)
	if feed.suppressed("0xhash") {
		t.Fatal("suppression must expire after the window")
	}
}
