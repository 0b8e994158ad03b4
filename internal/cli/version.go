// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/version"
)

func versionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Needs no configuration or credentials.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			jsonOut, _ := cmd.Flags().GetBool("json")
			w := cmd.OutOrStdout()

			if short {
				fmt.Fprintln(w, info.Version)
				return nil
			}
			if jsonOut {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					version.Info
					GoVersion string `json:"goVersion"`
					Platform  string `json:"platform"`
				}{info, runtime.Version(), runtime.GOOS + "/" + runtime.GOARCH})
			}

			fmt.Fprintf(w, "recipectl %s\n", info)
			fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version string only")
	return cmd
}
