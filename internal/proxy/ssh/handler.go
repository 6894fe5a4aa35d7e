// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/toeirei/sshoutbound/internal/hostkey"
	"github.com/toeirei/sshoutbound/internal/logging"
	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// DefaultConnectionTimeout bounds the TCP connect plus SSH handshake when the
// caller's context carries no deadline.
const DefaultConnectionTimeout = 10 * time.Second

// Dialer opens the underlying connection to the SSH server. Other handlers
// satisfy it, which is how chains are built.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Handler tunnels connections through a single SSH server. The SSH client is
// established lazily on first use and shared by all tunnelled connections.
type Handler struct {
	opts    HandlerOptions
	dialer  Dialer
	agent   agent.Agent
	timeout time.Duration

	mu     sync.Mutex
	client *gossh.Client
}

// NewHandler returns a handler for opts that dials the server directly.
func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		opts:    opts,
		dialer:  &net.Dialer{},
		timeout: DefaultConnectionTimeout,
	}
}

// Name returns the configured outbound name.
func (h *Handler) Name() string { return h.opts.Name }

// Options returns the options the handler was built from.
func (h *Handler) Options() HandlerOptions { return h.opts }

// Addr returns the server address in host:port form.
func (h *Handler) Addr() string {
	return net.JoinHostPort(h.opts.Server, strconv.Itoa(int(h.opts.Port)))
}

// SetDialer replaces the dialer used to reach the SSH server.
func (h *Handler) SetDialer(d Dialer) {
	if d == nil {
		d = &net.Dialer{}
	}
	h.dialer = d
}

// Dialer returns the dialer used to reach the SSH server.
func (h *Handler) Dialer() Dialer { return h.dialer }

// SetAgent attaches an SSH agent whose signers are tried after the
// configured private key and password.
func (h *Handler) SetAgent(a agent.Agent) { h.agent = a }

// SetTimeout overrides DefaultConnectionTimeout.
func (h *Handler) SetTimeout(d time.Duration) { h.timeout = d }

// ClientConfig builds the x/crypto/ssh client configuration. Authentication
// is attempted with the private key first, then the password, then agent
// signers.
func (h *Handler) ClientConfig() (*gossh.ClientConfig, error) {
	var auth []gossh.AuthMethod

	if h.opts.PrivateKey != nil {
		signer, err := ParseSigner(*h.opts.PrivateKey, h.opts.PrivateKeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", h.opts.Name, err)
		}
		auth = append(auth, gossh.PublicKeys(signer))
	}
	if h.opts.Password != nil {
		auth = append(auth, gossh.Password(*h.opts.Password))
	}
	if h.agent != nil {
		auth = append(auth, gossh.PublicKeysCallback(h.agent.Signers))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("%s: %w", h.opts.Name, ErrNoAuthMethod)
	}

	callback, err := HostKeyCallback(h.opts.HostKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.opts.Name, err)
	}

	config := &gossh.ClientConfig{
		User:            h.opts.Username,
		Auth:            auth,
		HostKeyCallback: callback,
		Timeout:         h.timeout,
	}

	if h.opts.HostKeyAlgorithms != nil {
		if len(*h.opts.HostKeyAlgorithms) == 0 {
			return nil, fmt.Errorf("%s: %w", h.opts.Name, ErrNoHostKeyAlgorithms)
		}
		config.HostKeyAlgorithms = hostkey.KeyAlgos(*h.opts.HostKeyAlgorithms)
	}

	return config, nil
}

// Connect returns the shared SSH client, establishing it if needed.
func (h *Handler) Connect(ctx context.Context) (*gossh.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		return h.client, nil
	}

	config, err := h.ClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := h.handshake(ctx, config)
	if err != nil {
		return nil, ClassifyConnectionError(h.Addr(), err)
	}
	h.client = client

	// Forget the client once the server goes away so the next call redials.
	go func() {
		_ = client.Wait()
		h.mu.Lock()
		if h.client == client {
			h.client = nil
		}
		h.mu.Unlock()
		logging.Debugf("ssh connection to %s (%s) closed", h.Addr(), h.opts.Name)
	}()

	logging.Infof("connected to %s as %s via %s", h.Addr(), h.opts.Username, h.opts.Name)
	return client, nil
}

func (h *Handler) handshake(ctx context.Context, config *gossh.ClientConfig) (*gossh.Client, error) {
	if _, ok := ctx.Deadline(); !ok && h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	addr := h.Addr()
	conn, err := h.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Tunnelled conns reject deadlines; the AfterFunc below covers them.
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	// The handshake itself ignores ctx; closing the conn unblocks it.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	c, chans, reqs, err := gossh.NewClientConn(conn, addr, config)
	if !stop() {
		if err == nil {
			c.Close()
		}
		return nil, ctx.Err()
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	return gossh.NewClient(c, chans, reqs), nil
}

// DialContext opens a connection to addr through the SSH server.
func (h *Handler) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	client, err := h.Connect(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := client.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open tunnel to %s: %w", h.opts.Name, addr, err)
	}
	return conn, nil
}

// Close tears down the shared SSH client, if any.
func (h *Handler) Close() error {
	h.mu.Lock()
	client := h.client
	h.client = nil
	h.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Close()
}
