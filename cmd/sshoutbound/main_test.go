// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	gossh "golang.org/x/crypto/ssh"
)

// runCmd executes a fresh command tree with args and returns stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	t.Logf("stderr: %s", errOut.String())
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sshoutbound.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// startSSHServer runs an SSH server accepting user "u" / password "p" whose
// direct-tcpip channels echo their input. It returns the port and the host
// key in authorized_keys form.
func startSSHServer(t *testing.T) (uint16, string) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := gossh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	config := &gossh.ServerConfig{
		PasswordCallback: func(c gossh.ConnMetadata, pass []byte) (*gossh.Permissions, error) {
			if c.User() == "u" && string(pass) == "p" {
				return nil, nil
			}
			return nil, fmt.Errorf("denied")
		},
	}
	config.AddHostKey(signer)

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
				sc, chans, reqs, err := gossh.NewServerConn(c, config)
				if err != nil {
					c.Close()
					return
				}
				defer sc.Close()
				go gossh.DiscardRequests(reqs)
				for nc := range chans {
					ch, creqs, err := nc.Accept()
					if err != nil {
						continue
					}
					go gossh.DiscardRequests(creqs)
					go func() {
						defer ch.Close()
						_, _ = io.Copy(ch, ch)
					}()
				}
			}()
		}
	}()

	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	return port, strings.TrimSpace(string(gossh.MarshalAuthorizedKey(signer.PublicKey())))
}

func TestResolveCmd(t *testing.T) {
	path := writeConfig(t, `proxies:
  - name: edge1
    server: 10.0.0.1
    port: 22
    username: u
    password: hunter2
    host-key-algorithms: [rsa-sha2-512, ssh-ed25519, bogus, ecdsa-sha2-nistp256]
  - name: edge2
    server: 10.0.0.2
    port: 2222
    username: u
    host-key-algorithms: [bogus]
  - name: edge3
    server: 10.0.0.3
    port: 22
    username: u
`)

	out, err := runCmd(t, "", "--config", path, "resolve")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Fatalf("password leaked: %s", out)
	}

	var got []map[string]any
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 proxies, got %d", len(got))
	}

	if diff := cmp.Diff(
		[]any{"rsa-sha2-512", "ssh-ed25519", "ecdsa-sha2-nistp256"},
		got[0]["host-key-algorithms"],
	); diff != "" {
		t.Fatalf("edge1 algorithms mismatch (-want +got):\n%s", diff)
	}
	if got[0]["password"] != "[SECRET]" {
		t.Fatalf("password not redacted: %v", got[0]["password"])
	}

	algos, present := got[1]["host-key-algorithms"]
	if !present {
		t.Fatalf("edge2: explicitly configured list must stay present")
	}
	if l, ok := algos.([]any); !ok || len(l) != 0 {
		t.Fatalf("edge2: expected empty list, got %#v", algos)
	}

	if _, present := got[2]["host-key-algorithms"]; present {
		t.Fatalf("edge3: absent list must stay absent")
	}
}

func TestResolveCmd_UnknownName(t *testing.T) {
	path := writeConfig(t, "proxies: []\n")
	if _, err := runCmd(t, "", "--config", path, "resolve", "nope"); err == nil {
		t.Fatalf("expected error for unknown proxy")
	}
}

func TestAlgorithmsCmd(t *testing.T) {
	out, err := runCmd(t, "", "algorithms")
	if err != nil {
		t.Fatalf("algorithms: %v", err)
	}
	for _, want := range []string{"ssh-ed25519", "ed25519", "rsa-sha2-256", "ecdsa-sha2-nistp521", "RSA/SHA-512"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestTrustHostCmd_PinsKey(t *testing.T) {
	port, hostKey := startSSHServer(t)
	path := writeConfig(t, fmt.Sprintf(`proxies:
  - name: edge1
    server: 127.0.0.1
    port: %d
    username: u
    password: p
`, port))

	if _, err := runCmd(t, "", "--config", path, "trust-host", "edge1"); err == nil {
		t.Fatalf("expected abort without confirmation")
	}

	out, err := runCmd(t, "yes\n", "--config", path, "trust-host", "edge1")
	if err != nil {
		t.Fatalf("trust-host: %v", err)
	}
	if !strings.Contains(out, "Pinned") {
		t.Fatalf("unexpected output: %s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), hostKey) {
		t.Fatalf("host key not written to config:\n%s", data)
	}

	out, err = runCmd(t, "", "--config", path, "trust-host", "--yes", "edge1")
	if err != nil {
		t.Fatalf("trust-host again: %v", err)
	}
	if !strings.Contains(out, "already pinned") {
		t.Fatalf("expected already pinned, got: %s", out)
	}
}

func TestCheckCmd(t *testing.T) {
	port, hostKey := startSSHServer(t)
	path := writeConfig(t, fmt.Sprintf(`proxies:
  - name: good
    server: 127.0.0.1
    port: %[1]d
    username: u
    password: p
    host-key: %[2]q
    host-key-algorithms: [ed25519]
  - name: badpass
    server: 127.0.0.1
    port: %[1]d
    username: u
    password: wrong
  - name: noalgos
    server: 127.0.0.1
    port: %[1]d
    username: u
    password: p
    host-key-algorithms: [bogus]
`, port, hostKey))

	out, err := runCmd(t, "", "--config", path, "check", "good")
	if err != nil {
		t.Fatalf("check good: %v\n%s", err, out)
	}
	if !strings.Contains(out, "OK    good") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = runCmd(t, "", "--config", path, "check")
	if err == nil {
		t.Fatalf("expected failures, got none:\n%s", out)
	}
	if !strings.Contains(out, "FAIL  badpass") || !strings.Contains(out, "FAIL  noalgos") {
		t.Fatalf("expected badpass and noalgos to fail:\n%s", out)
	}
}

func TestDialCmd(t *testing.T) {
	port, hostKey := startSSHServer(t)
	path := writeConfig(t, fmt.Sprintf(`proxies:
  - name: edge1
    server: 127.0.0.1
    port: %d
    username: u
    password: p
    host-key: %q
`, port, hostKey))

	out, err := runCmd(t, "hello through the tunnel", "--config", path, "dial", "edge1", "example.internal:80")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if out != "hello through the tunnel" {
		t.Fatalf("echo = %q", out)
	}
}

func TestDialCmd_BadTarget(t *testing.T) {
	path := writeConfig(t, "proxies: []\n")
	if _, err := runCmd(t, "", "--config", path, "dial", "edge1", "no-port"); err == nil {
		t.Fatalf("expected error for target without port")
	}
}
