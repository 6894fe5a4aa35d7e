// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"
	"net"
	"strconv"
	"testing"

	gossh "golang.org/x/crypto/ssh"
)

// testServer is an in-process SSH server that accepts user "u" with password
// "p" and forwards direct-tcpip channels to their requested target.
type testServer struct {
	addr    string
	port    uint16
	hostKey gossh.Signer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hostKey := newSigner(t)
	config := &gossh.ServerConfig{
		PasswordCallback: func(c gossh.ConnMetadata, pass []byte) (*gossh.Permissions, error) {
			if c.User() == "u" && string(pass) == "p" {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %s", c.User())
		},
	}
	config.AddHostKey(hostKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(c, config)
		}
	}()

	return &testServer{
		addr:    ln.Addr().String(),
		port:    uint16(ln.Addr().(*net.TCPAddr).Port),
		hostKey: hostKey,
	}
}

// authorizedHostKey returns the server key in authorized_keys form.
func (s *testServer) authorizedHostKey() string {
	return string(gossh.MarshalAuthorizedKey(s.hostKey.PublicKey()))
}

func serveConn(c net.Conn, config *gossh.ServerConfig) {
	sc, chans, reqs, err := gossh.NewServerConn(c, config)
	if err != nil {
		c.Close()
		return
	}
	defer sc.Close()
	go gossh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "direct-tcpip" {
			_ = nc.Reject(gossh.UnknownChannelType, "unsupported channel type")
			continue
		}
		var target struct {
			Host     string
			Port     uint32
			OrigHost string
			OrigPort uint32
		}
		if err := gossh.Unmarshal(nc.ExtraData(), &target); err != nil {
			_ = nc.Reject(gossh.ConnectionFailed, "bad payload")
			continue
		}
		upstream, err := net.Dial("tcp", net.JoinHostPort(target.Host, strconv.Itoa(int(target.Port))))
		if err != nil {
			_ = nc.Reject(gossh.ConnectionFailed, err.Error())
			continue
		}
		ch, creqs, err := nc.Accept()
		if err != nil {
			upstream.Close()
			continue
		}
		go gossh.DiscardRequests(creqs)
		go func() {
			defer ch.Close()
			defer upstream.Close()
			go func() { _, _ = io.Copy(upstream, ch) }()
			_, _ = io.Copy(ch, upstream)
		}()
	}
}

// newEchoServer returns the address of a TCP server echoing every byte.
func newEchoServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				_, _ = io.Copy(c, c)
			}()
		}
	}()
	return ln.Addr().String()
}

func newSigner(t *testing.T) gossh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := gossh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer
}

// newPrivateKeyPEM returns an OpenSSH PEM private key, encrypted when
// passphrase is not empty.
func newPrivateKeyPEM(t *testing.T, passphrase string) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var block *pem.Block
	if passphrase == "" {
		block, err = gossh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = gossh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte(passphrase))
	}
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	return string(pem.EncodeToMemory(block))
}
