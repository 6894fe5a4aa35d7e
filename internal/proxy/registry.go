// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// Package proxy wires outbound handlers together. Each handler dials its
// server either directly or through the outbound named in its dialer-proxy
// field.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/toeirei/sshoutbound/internal/hostkey"
	"github.com/toeirei/sshoutbound/internal/logging"
	"github.com/toeirei/sshoutbound/internal/outbound"
	proxyssh "github.com/toeirei/sshoutbound/internal/proxy/ssh"
)

var (
	// ErrUnknownConnector is returned when dialer-proxy names no outbound.
	ErrUnknownConnector = errors.New("unknown dialer-proxy")
	// ErrConnectorCycle is returned when dialer-proxy references loop.
	ErrConnectorCycle = errors.New("dialer-proxy cycle")
	// ErrDuplicateName is returned when two outbounds share a name.
	ErrDuplicateName = errors.New("duplicate outbound name")
)

// Direct dials without any proxy.
var Direct proxyssh.Dialer = &net.Dialer{}

// Registry owns the handlers built from a configuration.
type Registry struct {
	handlers map[string]*proxyssh.Handler
}

// NewRegistry resolves every entry, links each handler to its connector and
// rejects unknown or cyclic references. Dropped host key algorithm names are
// logged as warnings.
func NewRegistry(entries []outbound.SSH) (*Registry, error) {
	r := &Registry{handlers: make(map[string]*proxyssh.Handler, len(entries))}

	for i := range entries {
		e := &entries[i]
		if _, dup := r.handlers[e.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, e.Name)
		}
		if e.HostKeyAlgorithms != nil {
			for _, name := range hostkey.Unresolved(*e.HostKeyAlgorithms) {
				logging.Warnf("%s: ignoring unsupported host key algorithm %q", e.Name, name)
			}
		}
		r.handlers[e.Name] = proxyssh.NewHandlerFromOutbound(e)
	}

	for name, h := range r.handlers {
		if err := r.checkChain(name); err != nil {
			return nil, err
		}
		via := h.Options().CommonOpts.Connector
		if via == nil {
			h.SetDialer(Direct)
			continue
		}
		h.SetDialer(r.handlers[*via])
	}

	return r, nil
}

func (r *Registry) checkChain(start string) error {
	seen := map[string]bool{start: true}
	path := []string{start}
	cur := r.handlers[start]
	for {
		via := cur.Options().CommonOpts.Connector
		if via == nil {
			return nil
		}
		next, ok := r.handlers[*via]
		if !ok {
			return fmt.Errorf("%w %q referenced by %s", ErrUnknownConnector, *via, cur.Name())
		}
		path = append(path, *via)
		if seen[*via] {
			return fmt.Errorf("%w: %s", ErrConnectorCycle, strings.Join(path, " -> "))
		}
		seen[*via] = true
		cur = next
	}
}

// Get returns the handler named name.
func (r *Registry) Get(name string) (*proxyssh.Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DialContext dials addr through the handler named name.
func (r *Registry) DialContext(ctx context.Context, name, network, addr string) (net.Conn, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownConnector, name)
	}
	return h.DialContext(ctx, network, addr)
}

// Close closes every handler and returns the first error seen.
func (r *Registry) Close() error {
	var first error
	for _, name := range r.Names() {
		if err := r.handlers[name].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
