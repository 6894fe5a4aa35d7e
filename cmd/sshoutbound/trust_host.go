// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/sshoutbound/internal/config"
	"github.com/toeirei/sshoutbound/internal/hostkey"
	"github.com/toeirei/sshoutbound/internal/logging"
	"github.com/toeirei/sshoutbound/internal/proxy"
	proxyssh "github.com/toeirei/sshoutbound/internal/proxy/ssh"
	gossh "golang.org/x/crypto/ssh"
)

func newTrustHostCmd(a *app) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "trust-host <name>",
		Short: "Pin the current host key of a proxy's SSH server",
		Long: `Connects to the SSH server of the named proxy (through its dialer-proxy
chain, if any), shows the host key it presents and, once confirmed,
stores it as the proxy's host-key in the configuration file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := a.cfg.Proxy(args[0])
			if !ok {
				return fmt.Errorf("no proxy named %q in configuration", args[0])
			}

			reg, err := proxy.NewRegistry(a.cfg.Proxies)
			if err != nil {
				return err
			}
			defer reg.Close()
			h, _ := reg.Get(entry.Name)

			var algos []string
			if resolved := h.Options().HostKeyAlgorithms; resolved != nil {
				algos = hostkey.KeyAlgos(*resolved)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Retrieving host key of %s (%s)...\n", h.Addr(), entry.Name)
			key, err := proxyssh.GetRemoteHostKey(cmd.Context(), h.Dialer(), h.Addr(), algos)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "The server presented a %s key with fingerprint %s.\n", key.Type(), gossh.FingerprintSHA256(key))
			if entry.HostKey != nil {
				if pinned, err := proxyssh.ParseHostKey(*entry.HostKey); err == nil && string(pinned.Marshal()) == string(key.Marshal()) {
					fmt.Fprintln(out, "This key is already pinned.")
					return nil
				}
				fmt.Fprintln(out, "WARNING: this differs from the currently pinned host key.")
			}

			if !assumeYes {
				fmt.Fprint(out, "Pin this key? (yes/no): ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
					return fmt.Errorf("host key not trusted, aborting")
				}
			}

			pin := strings.TrimSpace(string(gossh.MarshalAuthorizedKey(key)))
			entry.HostKey = &pin

			path, err := config.WriteConfigFile(&a.cfg, a.cfg.Source, false)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			logging.Infof("pinned %s host key for %s in %s", key.Type(), entry.Name, path)
			fmt.Fprintf(out, "Pinned %s host key for %s.\n", key.Type(), entry.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "pin without asking for confirmation")
	return cmd
}
