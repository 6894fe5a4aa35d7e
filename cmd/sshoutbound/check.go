// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/sshoutbound/internal/logging"
	"github.com/toeirei/sshoutbound/internal/proxy"
)

// checkResult is the outcome of connecting to one proxy.
type checkResult struct {
	name string
	err  error
}

// runParallelChecks connects to every named proxy concurrently and returns
// the results sorted by name.
func runParallelChecks(ctx context.Context, reg *proxy.Registry, names []string) []checkResult {
	var wg sync.WaitGroup
	results := make(chan checkResult, len(names))

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			h, _ := reg.Get(name)
			_, err := h.Connect(ctx)
			if err != nil {
				logging.Debugf("check %s failed: %v", name, err)
			}
			results <- checkResult{name: name, err: err}
		}(name)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []checkResult
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		useAgent bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check [name...]",
		Short: "Connect to proxies and report which ones work",
		Long: `Connects to the SSH server of each named proxy (all when none are given),
authenticating and verifying host keys exactly as a tunnel would.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.selectProxies(args)
			if err != nil {
				return err
			}
			if len(idx) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No proxies configured.")
				return nil
			}

			reg, err := a.buildRegistry(cmd, useAgent)
			if err != nil {
				return err
			}
			defer reg.Close()

			names := make([]string, 0, len(idx))
			for _, i := range idx {
				names = append(names, a.cfg.Proxies[i].Name)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			failed := 0
			for _, r := range runParallelChecks(ctx, reg, names) {
				if r.err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", r.name, r.err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK    %s\n", r.name)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d proxies failed", failed, len(names))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useAgent, "agent", false, "also offer keys from the running SSH agent")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "overall time limit")
	return cmd
}
