// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security provides a small wrapper for sensitive strings
// (passwords, private keys, passphrases) so they never end up in logs or
// rendered output by accident.
package security

import (
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret holds sensitive material. Every formatting and marshalling path
// renders it as "[SECRET]".
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter so %v, %#v and friends are redacted too.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, redacted)
}

// Bytes returns a copy of the underlying bytes.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Zero overwrites the underlying byte slice with zeros.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// MarshalJSON redacts secrets in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText redacts secrets for text encoders.
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// MarshalYAML redacts secrets in YAML output.
func (s Secret) MarshalYAML() (any, error) { return redacted, nil }

// FromString copies in into a Secret.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromPtr wraps an optional string, keeping absence as nil.
func FromPtr(in *string) *Secret {
	if in == nil {
		return nil
	}
	s := FromString(*in)
	return &s
}
