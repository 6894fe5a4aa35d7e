// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/toeirei/sshoutbound/internal/hostkey"
	"github.com/toeirei/sshoutbound/internal/logging"
	proxyssh "github.com/toeirei/sshoutbound/internal/proxy/ssh"
	"github.com/toeirei/sshoutbound/internal/security"
)

// resolvedView is the printable form of proxyssh.HandlerOptions. Credentials
// are redacted; host key algorithms are shown by wire name.
type resolvedView struct {
	Name                 string           `yaml:"name"`
	Connector            *string          `yaml:"connector,omitempty"`
	Server               string           `yaml:"server"`
	Port                 uint16           `yaml:"port"`
	Username             string           `yaml:"username"`
	Password             *security.Secret `yaml:"password,omitempty"`
	PrivateKey           *security.Secret `yaml:"private-key,omitempty"`
	PrivateKeyPassphrase *security.Secret `yaml:"private-key-passphrase,omitempty"`
	HostKey              *string          `yaml:"host-key,omitempty"`
	HostKeyAlgorithms    *[]string        `yaml:"host-key-algorithms,omitempty"`
}

func newResolvedView(o proxyssh.HandlerOptions) resolvedView {
	v := resolvedView{
		Name:                 o.Name,
		Connector:            o.CommonOpts.Connector,
		Server:               o.Server,
		Port:                 o.Port,
		Username:             o.Username,
		Password:             security.FromPtr(o.Password),
		PrivateKey:           security.FromPtr(o.PrivateKey),
		PrivateKeyPassphrase: security.FromPtr(o.PrivateKeyPassphrase),
		HostKey:              o.HostKey,
	}
	if o.HostKeyAlgorithms != nil {
		names := hostkey.KeyAlgos(*o.HostKeyAlgorithms)
		v.HostKeyAlgorithms = &names
	}
	return v
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [name...]",
		Short: "Print the resolved handler configuration of proxies",
		Long: `Resolves the named proxies (all when none are given) and prints the
handler configuration as YAML. Credentials are redacted. Host key algorithm
names that are not recognised are dropped and reported as warnings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.selectProxies(args)
			if err != nil {
				return err
			}

			views := make([]resolvedView, 0, len(idx))
			for _, i := range idx {
				entry := &a.cfg.Proxies[i]
				if entry.HostKeyAlgorithms != nil {
					for _, name := range hostkey.Unresolved(*entry.HostKeyAlgorithms) {
						logging.Warnf("%s: ignoring unsupported host key algorithm %q", entry.Name, name)
					}
				}
				views = append(views, newResolvedView(proxyssh.ResolveOptions(entry)))
			}

			out, err := yaml.Marshal(views)
			if err != nil {
				return fmt.Errorf("failed to render resolved proxies: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
