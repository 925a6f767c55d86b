// Copyright 2015 The go-ethereum Authors
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

package node

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/core"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/internal/vaultapi"
	"github.com/tos-network/tosvault/tosdb"
)

var (
	ErrNodeStopped = errors.New("node not started")
	ErrNodeRunning = errors.New("node already running")
)

// Lifecycle encompasses the behavior of services that can be started and
// stopped on the node. Lifecycle management is delegated to the node, but it
// is the responsibility of the service-specific package to configure and
// register the service on the node using the `RegisterLifecycle` method.
type Lifecycle interface {
	// Start is called after all services have been constructed and the
	// ledger has been opened.
	Start() error

	// Stop terminates all goroutines belonging to the service, blocking
	// until they are all terminated.
	Stop() error
}

const (
	initializingState = iota
	runningState
	closedState
)

// Node is a container on which services can be registered.
type Node struct {
	config *Config
	log    log.Logger

	startStopLock sync.Mutex // Start/Stop are protected by an additional lock
	lock          sync.Mutex
	state         int // Tracks state of node lifecycle
	lifecycles    []Lifecycle
	stop          chan struct{} // Channel to wait for termination notifications

	ledger *core.Ledger
	http   *vaultapi.Server
}

// New creates a new node, opening its ledger. The HTTP endpoint is
// registered as a lifecycle when configured.
func New(conf *Config) (*Node, error) {
	confCopy := *conf
	conf = &confCopy

	var (
		db  tosdb.Database
		err error
	)
	if dir := conf.LedgerDir(); dir == "" {
		db = rawdb.NewMemoryDatabase()
	} else {
		db, err = rawdb.NewLevelDBDatabase(dir, conf.DatabaseCache, conf.DatabaseHandles, false)
		if err != nil {
			return nil, fmt.Errorf("open ledger database: %w", err)
		}
	}
	genesis := conf.Genesis
	if genesis == nil {
		genesis = core.DefaultGenesis()
	}
	ledger, err := core.NewLedger(db, genesis)
	if err != nil {
		db.Close()
		return nil, err
	}
	node := &Node{
		config: conf,
		log:    log.New("node", conf.NodeName()),
		stop:   make(chan struct{}),
		ledger: ledger,
	}
	if conf.HTTP.Host != "" {
		node.http = vaultapi.NewServer(ledger, conf.HTTP)
		node.lifecycles = append(node.lifecycles, node.http)
	}
	return node, nil
}

// Start starts all registered lifecycles. Start can only be called once.
func (n *Node) Start() error {
	n.startStopLock.Lock()
	defer n.startStopLock.Unlock()

	n.lock.Lock()
	switch n.state {
	case runningState:
		n.lock.Unlock()
		return ErrNodeRunning
	case closedState:
		n.lock.Unlock()
		return ErrNodeStopped
	}
	n.state = runningState
	lifecycles := make([]Lifecycle, len(n.lifecycles))
	copy(lifecycles, n.lifecycles)
	n.lock.Unlock()

	// Start all registered lifecycles.
	var started []Lifecycle
	var err error
	for _, lifecycle := range lifecycles {
		if err = lifecycle.Start(); err != nil {
			break
		}
		started = append(started, lifecycle)
	}
	// Check if any lifecycle failed to start.
	if err != nil {
		n.stopServices(started)
		n.doClose(nil)
		return err
	}
	n.log.Info("Node started", "sequence", n.ledger.Sequence(), "chainid", n.ledger.Config().ChainID)
	return nil
}

// Close stops the node and releases resources acquired in New.
func (n *Node) Close() error {
	n.startStopLock.Lock()
	defer n.startStopLock.Unlock()

	n.lock.Lock()
	state := n.state
	n.lock.Unlock()
	switch state {
	case initializingState:
		// The node was never started.
		return n.doClose(nil)
	case runningState:
		// The node was started, release resources acquired by Start().
		var errs []error
		if err := n.stopServices(n.lifecycles); err != nil {
			errs = append(errs, err)
		}
		return n.doClose(errs)
	case closedState:
		return ErrNodeStopped
	default:
		panic(fmt.Sprintf("node is in unknown state %d", state))
	}
}

// doClose releases resources acquired by New(), collecting errors.
func (n *Node) doClose(errs []error) error {
	n.lock.Lock()
	n.state = closedState
	if err := n.ledger.Close(); err != nil {
		errs = append(errs, err)
	}
	n.lock.Unlock()

	// Unblock n.Wait.
	close(n.stop)

	// Report any errors that might have occurred.
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("%v", errs)
	}
}

// stopServices terminates running services in reverse order.
func (n *Node) stopServices(running []Lifecycle) error {
	failure := &StopError{Services: make(map[string]error)}
	for i := len(running) - 1; i >= 0; i-- {
		if err := running[i].Stop(); err != nil {
			failure.Services[fmt.Sprintf("%T", running[i])] = err
		}
	}
	if len(failure.Services) > 0 {
		return failure
	}
	return nil
}

// Wait blocks until the node is closed.
func (n *Node) Wait() {
	<-n.stop
}

// RegisterLifecycle registers the given Lifecycle on the node.
func (n *Node) RegisterLifecycle(lifecycle Lifecycle) {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.state != initializingState {
		panic("can't register lifecycle on running/stopped node")
	}
	for _, l := range n.lifecycles {
		if l == lifecycle {
			panic(fmt.Sprintf("attempt to register lifecycle %T more than once", lifecycle))
		}
	}
	n.lifecycles = append(n.lifecycles, lifecycle)
}

// Config returns the configuration of node.
func (n *Node) Config() *Config {
	return n.config
}

// Ledger returns the node's ledger.
func (n *Node) Ledger() *core.Ledger {
	return n.ledger
}

// HTTPEndpoint returns the address the API listens on, or "" when the
// endpoint is disabled or not running.
func (n *Node) HTTPEndpoint() string {
	if n.http == nil {
		return ""
	}
	return n.http.ListenAddr()
}

// StopError is returned if a Node fails to stop either any of its registered
// services or itself.
type StopError struct {
	Services map[string]error
}

// Error generates a textual representation of the stop error.
func (e *StopError) Error() string {
	return fmt.Sprintf("services: %v", e.Services)
}
