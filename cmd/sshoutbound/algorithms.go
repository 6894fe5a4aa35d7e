// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toeirei/sshoutbound/internal/hostkey"
)

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List accepted host-key-algorithms names",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tALGORITHM\tWIRE NAME")
			for _, e := range hostkey.Names() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Algorithm, e.Algorithm.KeyAlgo())
			}
			return w.Flush()
		},
	}
}
