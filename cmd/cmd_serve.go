// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericabertugli/sitetools/preview"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the generated layers on a local map (local only)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println("Preview server starting...")
		fmt.Println("Open http://localhost:8080 in your browser")
		fmt.Println("Local only - not exposed to the internet")

		return preview.NewServer(dataDir).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
