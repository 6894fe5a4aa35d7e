// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package ssh

import (
	"github.com/toeirei/sshoutbound/internal/hostkey"
	"github.com/toeirei/sshoutbound/internal/outbound"
)

// CommonOptions are the connector options shared by all handlers.
type CommonOptions struct {
	// Connector names the outbound this handler dials through. Nil means a
	// direct connection.
	Connector *string
}

// HandlerOptions is the fully resolved configuration of an SSH handler.
type HandlerOptions struct {
	Name       string
	CommonOpts CommonOptions
	Server     string
	Port       uint16
	Username   string

	Password             *string
	PrivateKey           *string
	PrivateKeyPassphrase *string
	HostKey              *string

	// HostKeyAlgorithms is nil when no preference was configured and the
	// transport picks its defaults. A non-nil pointer to an empty slice means
	// no algorithm is acceptable.
	HostKeyAlgorithms *[]hostkey.Algorithm
}

// ResolveOptions builds handler options from an outbound entry. Identity and
// credential fields are copied as they are; host key algorithm names are
// resolved in order and unrecognised names are dropped. It never fails and
// does not modify cfg.
func ResolveOptions(cfg *outbound.SSH) HandlerOptions {
	var algos *[]hostkey.Algorithm
	if cfg.HostKeyAlgorithms != nil {
		resolved := hostkey.ResolveAll(*cfg.HostKeyAlgorithms)
		if resolved == nil {
			resolved = []hostkey.Algorithm{}
		}
		algos = &resolved
	}

	return HandlerOptions{
		Name: cfg.Name,
		CommonOpts: CommonOptions{
			Connector: cloneString(cfg.ConnectVia),
		},
		Server:               cfg.Server,
		Port:                 cfg.Port,
		Username:             cfg.Username,
		Password:             cloneString(cfg.Password),
		PrivateKey:           cloneString(cfg.PrivateKey),
		PrivateKeyPassphrase: cloneString(cfg.PrivateKeyPassphrase),
		HostKey:              cloneString(cfg.HostKey),
		HostKeyAlgorithms:    algos,
	}
}

// NewHandlerFromOutbound resolves cfg and wraps the result in a Handler.
func NewHandlerFromOutbound(cfg *outbound.SSH) *Handler {
	return NewHandler(ResolveOptions(cfg))
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
