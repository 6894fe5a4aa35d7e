// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// Package outbound holds the configuration records for outbound proxy entries
// as they come out of the configuration file. Records are already structurally
// valid by the time they get here; nothing in this package validates them.
package outbound

// CommonOptions are the fields shared by every outbound entry.
type CommonOptions struct {
	Name string `mapstructure:"name" yaml:"name"`
	// ConnectVia names another outbound to dial the server through.
	ConnectVia *string `mapstructure:"dialer-proxy" yaml:"dialer-proxy,omitempty"`
	Server     string  `mapstructure:"server" yaml:"server"`
	Port       uint16  `mapstructure:"port" yaml:"port"`
}

// SSH is an outbound entry that tunnels traffic through an SSH server.
type SSH struct {
	CommonOptions `mapstructure:",squash" yaml:",inline"`

	Username             string  `mapstructure:"username" yaml:"username"`
	Password             *string `mapstructure:"password" yaml:"password,omitempty"`
	PrivateKey           *string `mapstructure:"private-key" yaml:"private-key,omitempty"`
	PrivateKeyPassphrase *string `mapstructure:"private-key-passphrase" yaml:"private-key-passphrase,omitempty"`
	HostKey              *string `mapstructure:"host-key" yaml:"host-key,omitempty"`
	// HostKeyAlgorithms is nil when the key is absent from the configuration,
	// which is distinct from an explicitly empty list.
	HostKeyAlgorithms *[]string `mapstructure:"host-key-algorithms" yaml:"host-key-algorithms,omitempty"`
}

// StringPtr returns a pointer to s. Handy when building records in code.
func StringPtr(s string) *string { return &s }

// Strings returns a pointer to a copy of s. With no arguments it yields a
// present but empty list.
func Strings(s ...string) *[]string {
	out := make([]string, len(s))
	copy(out, s)
	return &out
}
