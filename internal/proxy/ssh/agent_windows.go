//go:build windows
// +build windows

// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"os"

	"github.com/Microsoft/go-winio"
	"github.com/davidmz/go-pageant"
	"golang.org/x/crypto/ssh/agent"
)

// SystemAgent connects to a Pageant compatible agent if one is running,
// otherwise to the OpenSSH agent named pipe. It returns nil when neither is
// reachable.
func SystemAgent() agent.Agent {
	if pageant.Available() {
		return pageant.New()
	}

	pipe := os.Getenv("SSH_AUTH_SOCK")
	if pipe == "" {
		pipe = `\\.\pipe\openssh-ssh-agent`
	}
	conn, err := winio.DialPipe(pipe, nil)
	if err != nil || conn == nil {
		return nil
	}
	return agent.NewClient(conn)
}
