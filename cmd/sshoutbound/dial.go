// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"net"

	"github.com/spf13/cobra"
	"github.com/toeirei/sshoutbound/internal/logging"
)

func newDialCmd(a *app) *cobra.Command {
	var useAgent bool

	cmd := &cobra.Command{
		Use:   "dial <name> <host:port>",
		Short: "Open a TCP connection through a proxy and pipe it to stdio",
		Long: `Opens a connection to host:port through the named proxy and copies
stdin to it and its output to stdout, which makes it usable as an
OpenSSH ProxyCommand.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, target := args[0], args[1]
			if _, _, err := net.SplitHostPort(target); err != nil {
				return fmt.Errorf("invalid target %q: %w", target, err)
			}
			if _, ok := a.cfg.Proxy(name); !ok {
				return fmt.Errorf("no proxy named %q in configuration", name)
			}

			reg, err := a.buildRegistry(cmd, useAgent)
			if err != nil {
				return err
			}
			defer reg.Close()

			conn, err := reg.DialContext(cmd.Context(), name, "tcp", target)
			if err != nil {
				return err
			}
			defer conn.Close()
			logging.Debugf("tunnel to %s via %s open", target, name)

			return pipe(conn, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&useAgent, "agent", false, "also offer keys from the running SSH agent")
	return cmd
}

// pipe copies in to conn and conn to out until conn is closed by the remote
// end. End of input half-closes the connection when it supports that.
func pipe(conn net.Conn, in io.Reader, out io.Writer) error {
	go func() {
		_, _ = io.Copy(conn, in)
		if cw, ok := conn.(interface{ CloseWrite() error }); ok {
			_ = cw.CloseWrite()
		}
	}()
	_, err := io.Copy(out, conn)
	return err
}
