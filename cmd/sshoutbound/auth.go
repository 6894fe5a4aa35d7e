// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/sshoutbound/internal/proxy"
	proxyssh "github.com/toeirei/sshoutbound/internal/proxy/ssh"
	"github.com/toeirei/sshoutbound/internal/state"
	"golang.org/x/term"
)

// promptPassphrases asks on the terminal for the passphrase of every
// encrypted private key that has none configured. Each key is asked for once
// even when several proxies use it. Without a terminal the entries are left
// alone and the handler reports the missing passphrase.
func (a *app) promptPassphrases(cmd *cobra.Command) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	for i := range a.cfg.Proxies {
		e := &a.cfg.Proxies[i]
		if e.PrivateKey == nil || e.PrivateKeyPassphrase != nil || !proxyssh.IsEncryptedKey(*e.PrivateKey) {
			continue
		}
		pass, ok := state.Passphrases.Get(*e.PrivateKey)
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Passphrase for the private key of %s: ", e.Name)
			var err error
			pass, err = term.ReadPassword(fd)
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to read passphrase: %w", err)
			}
			state.Passphrases.Set(*e.PrivateKey, pass)
		}
		p := string(pass)
		e.PrivateKeyPassphrase = &p
	}
	return nil
}

// buildRegistry prepares handlers for connecting: passphrases are prompted
// for and, with useAgent, the system SSH agent is attached to every handler.
func (a *app) buildRegistry(cmd *cobra.Command, useAgent bool) (*proxy.Registry, error) {
	if err := a.promptPassphrases(cmd); err != nil {
		return nil, err
	}
	reg, err := proxy.NewRegistry(a.cfg.Proxies)
	if err != nil {
		return nil, err
	}
	if useAgent {
		ag := proxyssh.SystemAgent()
		if ag == nil {
			reg.Close()
			return nil, fmt.Errorf("--agent given but no SSH agent is reachable")
		}
		for _, n := range reg.Names() {
			h, _ := reg.Get(n)
			h.SetAgent(ag)
		}
	}
	return reg, nil
}
