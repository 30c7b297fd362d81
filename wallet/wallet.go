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

// Package wallet manages the connection to the user's signing account.
package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

// State is the connection lifecycle position.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyConnected = errors.New("wallet: already connected")
	ErrConnecting       = errors.New("wallet: connection in progress")
	ErrNotConnected     = errors.New("wallet: not connected")
	ErrNoFeeWallet      = errors.New("wallet: no fee wallet configured")
)

// EventKind discriminates provider-level notifications.
type EventKind int

const (
	// EventAccountsChanged reports that the active account switched, or
	// that the provider lost all accounts (zero address).
	EventAccountsChanged EventKind = iota

	// EventChainChanged reports a network switch. Contract bindings cached
	// against the old chain are invalid afterwards.
	EventChainChanged
)

// Event is one provider notification.
type Event struct {
	Kind    EventKind
	Address common.Address // new active account, zero when emptied
	ChainID *big.Int       // new chain on EventChainChanged
}

// Provider is the backing account implementation the connector drives.
type Provider interface {
	// Connect establishes the session and returns the account address.
	Connect(ctx context.Context) (common.Address, error)

	// Disconnect tears the session down.
	Disconnect() error

	// Balance returns the native balance of an address.
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)

	// Subscribe delivers account and chain events on ch until the
	// subscription is cancelled.
	Subscribe(ch chan<- Event) event.Subscription
}

// Connector is the wallet connection state machine. Transitions run
// disconnected -> connecting -> connected, and any connect failure rolls
// back to disconnected. It is safe for concurrent use.
type Connector struct {
	provider Provider
	log      log.Logger

	mu        sync.Mutex
	state     State
	addr      common.Address
	sub       event.Subscription
	listeners []func(State)
	reloads   []func(chainID *big.Int)
}

func NewConnector(p Provider) *Connector {
	return &Connector{
		provider: p,
		log:      log.New("module", "wallet"),
	}
}

// OnChange registers a state listener. Listeners run synchronously on every
// transition, in registration order.
func (c *Connector) OnChange(fn func(State)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// OnChainChanged registers a reload hook. Hooks run when the provider
// switches networks, at which point contract bindings built against the old
// chain must be rebuilt.
func (c *Connector) OnChainChanged(fn func(chainID *big.Int)) {
	c.mu.Lock()
	c.reloads = append(c.reloads, fn)
	c.mu.Unlock()
}

func (c *Connector) setState(s State) {
	c.state = s
	for _, fn := range c.listeners {
		fn(s)
	}
}

// Connect drives the provider to a connected session.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateConnected:
		c.mu.Unlock()
		return ErrAlreadyConnected
	case StateConnecting:
		c.mu.Unlock()
		return ErrConnecting
	}
	c.setState(StateConnecting)
	c.mu.Unlock()

	addr, err := c.provider.Connect(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setState(StateDisconnected)
		c.log.Warn("Wallet connection failed", "err", err)
		return err
	}
	c.addr = addr
	ch := make(chan Event, 16)
	c.sub = c.provider.Subscribe(ch)
	go c.watch(ch, c.sub)
	c.setState(StateConnected)
	c.log.Info("Wallet connected", "address", addr)
	return nil
}

// Disconnect ends the session. Disconnecting an idle connector is a no-op.
func (c *Connector) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return nil
	}
	if err := c.provider.Disconnect(); err != nil {
		return err
	}
	c.teardown()
	c.log.Info("Wallet disconnected")
	return nil
}

// teardown resets the connected session. Callers hold c.mu.
func (c *Connector) teardown() {
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.addr = common.Address{}
	c.setState(StateDisconnected)
}

// watch processes provider events for one connected session. Unsubscribing
// ends the loop.
func (c *Connector) watch(ch chan Event, sub event.Subscription) {
	for {
		select {
		case ev := <-ch:
			c.handleEvent(ev)
		case <-sub.Err():
			return
		}
	}
}

func (c *Connector) handleEvent(ev Event) {
	switch ev.Kind {
	case EventAccountsChanged:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state != StateConnected {
			return
		}
		if ev.Address == (common.Address{}) {
			if err := c.provider.Disconnect(); err != nil {
				c.log.Warn("Provider disconnect failed", "err", err)
			}
			c.teardown()
			c.log.Info("Wallet disconnected, provider lost its accounts")
			return
		}
		c.addr = ev.Address
		c.setState(StateConnected)
		c.log.Info("Wallet account switched", "address", ev.Address)

	case EventChainChanged:
		c.mu.Lock()
		hooks := append(([]func(*big.Int))(nil), c.reloads...)
		c.mu.Unlock()
		c.log.Warn("Chain switched, rebuilding bindings", "chain", ev.ChainID)
		for _, fn := range hooks {
			fn(ev.ChainID)
		}
	}
}

// State returns the current connection state.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Address returns the connected account.
func (c *Connector) Address() (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return common.Address{}, ErrNotConnected
	}
	return c.addr, nil
}

// Balance returns the connected account's native balance.
func (c *Connector) Balance(ctx context.Context) (*big.Int, error) {
	addr, err := c.Address()
	if err != nil {
		return nil, err
	}
	return c.provider.Balance(ctx, addr)
}
