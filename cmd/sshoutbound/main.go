// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for sshoutbound using Cobra. It
// defines the root command, its persistent flags and the subcommands that
// inspect, pin and use the configured SSH outbounds.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/sshoutbound/buildvars"
	"github.com/toeirei/sshoutbound/internal/config"
	"github.com/toeirei/sshoutbound/internal/logging"
	"github.com/toeirei/sshoutbound/internal/state"
)

// main is the entry point of the application.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}

// app carries state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	cfg     config.Config
}

// newRootCmd builds a fresh command tree. Tests call it to get isolated
// instances.
func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "sshoutbound",
		Short: "Inspect and use SSH outbound proxies",
		Long: `sshoutbound reads outbound SSH proxy entries from sshoutbound.yaml,
resolves them into handler configurations and can tunnel connections
through them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cmd, &a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = c
			if err := logging.SetLevel(c.Log.Level); err != nil {
				return err
			}
			logging.SetOutput(cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			state.Passphrases.Clear()
		},
	}

	cmd.Version = buildvars.VersionOrDefault("dev")

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is sshoutbound.yaml in the user config dir or .)")
	cmd.PersistentFlags().String("log-level", "info", `log level ("debug", "info", "warn", "error")`)

	cmd.AddCommand(
		newResolveCmd(a),
		newAlgorithmsCmd(),
		newTrustHostCmd(a),
		newCheckCmd(a),
		newDialCmd(a),
	)

	return cmd
}

// selectProxies returns the named entries, or all entries when names is empty.
func (a *app) selectProxies(names []string) ([]int, error) {
	if len(names) == 0 {
		idx := make([]int, len(a.cfg.Proxies))
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	var idx []int
	for _, n := range names {
		found := false
		for i := range a.cfg.Proxies {
			if a.cfg.Proxies[i].Name == n {
				idx = append(idx, i)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no proxy named %q in configuration", n)
		}
	}
	return idx, nil
}
