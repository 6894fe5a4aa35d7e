// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoAuthMethod is returned when neither a private key, a password nor
	// an agent is available.
	ErrNoAuthMethod = errors.New("no authentication method available")
	// ErrNoHostKeyAlgorithms is returned when the configured host key
	// algorithm list resolved to nothing.
	ErrNoHostKeyAlgorithms = errors.New("no acceptable host key algorithms configured")
	// ErrHostKeyMismatch is returned when the server presents a key other
	// than the pinned one.
	ErrHostKeyMismatch = errors.New("host key mismatch")
)

func containsAny(err error, needles ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

// IsConnectionTimeoutError reports whether err looks like a connect timeout.
func IsConnectionTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(err, "timeout", "timed out", "deadline exceeded")
}

// IsConnectionRefusedError reports whether the server could not be reached.
func IsConnectionRefusedError(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(err, "connection refused", "no route to host")
}

// IsAuthenticationError reports whether the server rejected our credentials.
func IsAuthenticationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoAuthMethod) {
		return true
	}
	return containsAny(err, "unable to authenticate", "authentication failed", "permission denied")
}

// IsHostKeyError reports whether host key verification failed.
func IsHostKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrHostKeyMismatch) {
		return true
	}
	return containsAny(err, "host key mismatch", "unknown host key", "host key verification failed")
}

// ClassifyConnectionError wraps err with a short description of what went
// wrong while connecting to host. The original error stays reachable.
func ClassifyConnectionError(host string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsHostKeyError(err):
		return fmt.Errorf("host key verification failed for %s: %w", host, err)
	case IsConnectionTimeoutError(err):
		return fmt.Errorf("connection to %s timed out: %w", host, err)
	case IsConnectionRefusedError(err):
		return fmt.Errorf("connection to %s refused: %w", host, err)
	case IsAuthenticationError(err):
		return fmt.Errorf("authentication failed for %s: %w", host, err)
	default:
		return fmt.Errorf("failed to connect to %s: %w", host, err)
	}
}
