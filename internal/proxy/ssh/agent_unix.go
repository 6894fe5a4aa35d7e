//go:build !windows
// +build !windows

// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"net"
	"os"

	"golang.org/x/crypto/ssh/agent"
)

// SystemAgent connects to the agent behind SSH_AUTH_SOCK. It returns nil when
// no agent is reachable.
func SystemAgent() agent.Agent {
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			return agent.NewClient(conn)
		}
	}
	return nil
}
