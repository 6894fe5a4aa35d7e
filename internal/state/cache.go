// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// package state holds transient secrets for the lifetime of one command, such
// as private key passphrases typed at a prompt, so that several proxies
// sharing a key only ask once.
package state

import "sync"

// Passphrases caches passphrases keyed by private key reference (the inline
// key or its path). Values are stored as byte slices so they can be zeroed.
var Passphrases = &passphraseCache{values: make(map[string][]byte)}

type passphraseCache struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// Set stores a copy of pass for keyRef, replacing and wiping any previous value.
func (p *passphraseCache) Set(keyRef string, pass []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	wipe(p.values[keyRef])
	if pass == nil {
		delete(p.values, keyRef)
		return
	}
	v := make([]byte, len(pass))
	copy(v, pass)
	p.values[keyRef] = v
}

// Get returns a copy of the passphrase for keyRef. The caller owns the copy
// and may zero it.
func (p *passphraseCache) Get(keyRef string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.values[keyRef]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Clear wipes every cached passphrase.
func (p *passphraseCache) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range p.values {
		wipe(v)
		delete(p.values, k)
	}
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
