// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/toeirei/sshoutbound/internal/logging"
	gossh "golang.org/x/crypto/ssh"
)

// LoadPrivateKey returns the PEM material for ref. ref is either the key
// itself or a path to it; a leading "~/" is expanded to the home directory.
func LoadPrivateKey(ref string) ([]byte, error) {
	if strings.Contains(ref, "PRIVATE KEY-----") {
		return []byte(ref), nil
	}

	path := ref
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}
	return data, nil
}

// ParseSigner loads and parses a private key, decrypting it with passphrase
// when one is given.
func ParseSigner(ref string, passphrase *string) (gossh.Signer, error) {
	pem, err := LoadPrivateKey(ref)
	if err != nil {
		return nil, err
	}

	var signer gossh.Signer
	if passphrase != nil {
		signer, err = gossh.ParsePrivateKeyWithPassphrase(pem, []byte(*passphrase))
	} else {
		signer, err = gossh.ParsePrivateKey(pem)
	}
	if err != nil {
		var missing *gossh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("private key is encrypted and no passphrase is configured: %w", err)
		}
		return nil, fmt.Errorf("unable to parse private key: %w", err)
	}
	return signer, nil
}

// IsEncryptedKey reports whether ref loads to a passphrase protected key.
func IsEncryptedKey(ref string) bool {
	pem, err := LoadPrivateKey(ref)
	if err != nil {
		return false
	}
	_, err = gossh.ParsePrivateKey(pem)
	var missing *gossh.PassphraseMissingError
	return errors.As(err, &missing)
}

// ParseHostKey accepts a host key in authorized_keys form
// ("ssh-ed25519 AAAA... comment") or as the bare base64 blob.
func ParseHostKey(s string) (gossh.PublicKey, error) {
	key, _, _, _, err := gossh.ParseAuthorizedKey([]byte(s))
	if err == nil {
		return key, nil
	}
	raw, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if decErr != nil {
		return nil, fmt.Errorf("invalid host key: %w", err)
	}
	key, err = gossh.ParsePublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid host key: %w", err)
	}
	return key, nil
}

// HostKeyCallback returns a callback that accepts only the pinned key. With
// nothing pinned every key is accepted and a warning is logged.
func HostKeyCallback(pinned *string) (gossh.HostKeyCallback, error) {
	if pinned == nil {
		return func(hostname string, remote net.Addr, key gossh.PublicKey) error {
			logging.Warnf("no host key pinned for %s, accepting %s %s", hostname, key.Type(), gossh.FingerprintSHA256(key))
			return nil
		}, nil
	}

	want, err := ParseHostKey(*pinned)
	if err != nil {
		return nil, err
	}
	wantBytes := want.Marshal()

	return func(hostname string, remote net.Addr, key gossh.PublicKey) error {
		if !bytes.Equal(key.Marshal(), wantBytes) {
			return fmt.Errorf("%w for %s: remote key presented: %s %s", ErrHostKeyMismatch, hostname, key.Type(), gossh.FingerprintSHA256(key))
		}
		return nil
	}, nil
}
