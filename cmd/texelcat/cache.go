// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelcat/cache.go
// Summary: The cache subcommand builds or clears the definition cache.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelcat/assets"
	"github.com/framegrace/texelcat/config"
	"github.com/framegrace/texelcat/pretty"
)

type cacheOptions struct {
	build bool
	clear bool
	dir   string
}

func newCacheCmd() *cobra.Command {
	opts := &cacheOptions{}
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Build or clear the syntax and theme cache",
		Long: `Build writes every syntax and theme, including the definitions named in
the configuration file, to the cache directory so later runs load them from
there. Clear removes the cache files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.build, "build", "b", false, "Write the cache")
	cmd.Flags().BoolVarP(&opts.clear, "clear", "c", false, "Remove the cache")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Cache directory (default: the user cache directory)")
	cmd.MarkFlagsMutuallyExclusive("build", "clear")
	cmd.MarkFlagsOneRequired("build", "clear")
	return cmd
}

func runCache(cmd *cobra.Command, opts *cacheOptions) error {
	dir := opts.dir
	if dir == "" {
		d, err := assets.DefaultCacheDir()
		if err != nil {
			return err
		}
		dir = d
	}
	out := cmd.OutOrStdout()

	if opts.clear {
		if err := assets.ClearCache(dir); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared cache in %s\n", dir)
		return nil
	}

	loadOpts := assets.LoadOptions{NoCache: true}
	if path, err := config.Path(); err == nil {
		file, err := config.Load(path)
		if err != nil {
			return err
		}
		if loadOpts, err = file.AssetOptions(); err != nil {
			return err
		}
		loadOpts.NoCache = true
	}
	prov, err := pretty.LoadAssets(loadOpts)
	if err != nil {
		return err
	}
	if err := assets.WriteCache(dir, prov); err != nil {
		return &pretty.Error{Kind: pretty.KindAssetCache, Name: dir, Err: err}
	}
	fmt.Fprintf(out, "Wrote %d syntaxes and %d themes to %s\n", len(prov.SyntaxNames()), len(prov.ThemeNames()), dir)
	return nil
}
