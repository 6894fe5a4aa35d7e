// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	gossh "golang.org/x/crypto/ssh"
)

var errProbeDone = errors.New("sshoutbound: host key retrieved")

// GetRemoteHostKey starts a handshake with addr just far enough to learn
// the server's host key. algos, when non-empty, restricts the key types the
// server may offer. A missing port defaults to 22.
func GetRemoteHostKey(ctx context.Context, d Dialer, addr string, algos []string) (gossh.PublicKey, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "22")
	}
	if d == nil {
		d = &net.Dialer{}
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	keyChan := make(chan gossh.PublicKey, 1)
	config := &gossh.ClientConfig{
		// No authentication happens; the callback aborts the handshake.
		User:              "sshoutbound-probe",
		HostKeyAlgorithms: algos,
		HostKeyCallback: func(hostname string, remote net.Addr, key gossh.PublicKey) error {
			keyChan <- key
			return errProbeDone
		},
	}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, ClassifyConnectionError(addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, _, _, err := gossh.NewClientConn(conn, addr, config)
	if err == nil {
		c.Close()
		return nil, fmt.Errorf("handshake with %s succeeded unexpectedly, could not retrieve key", addr)
	}

	select {
	case key := <-keyChan:
		return key, nil
	default:
		return nil, ClassifyConnectionError(addr, err)
	}
}
