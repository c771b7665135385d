package main

import (
	"context"
	"fmt"
	"time"

	"formulate/internal/logging"
	"formulate/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cacheCmd manages the offline catalog copy
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the offline catalog cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached variable",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the cache location, size and age",
	Args:  cobra.NoArgs,
	RunE:  runCacheInfo,
}

func openCache() (*store.LocalStore, error) {
	if cfg.Catalog.CachePath == "" {
		return nil, fmt.Errorf("no catalog cache configured (set catalog.cache_path or FORMULATE_CACHE_PATH)")
	}
	return store.NewLocalStore(cfg.Catalog.CachePath)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	st, err := openCache()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Clear(contextOf(cmd)); err != nil {
		return err
	}
	logging.For(logger, logging.CategoryCache).Info("cache cleared", zap.String("path", st.Path()))
	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", st.Path())
	return nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	st, err := openCache()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := contextOf(cmd)
	vars, err := st.Load(ctx)
	if err != nil {
		return err
	}
	savedAt, ok, err := st.SavedAt(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Path:      %s\n", st.Path())
	fmt.Fprintf(out, "Variables: %d\n", len(vars))
	if ok {
		fmt.Fprintf(out, "Saved at:  %s\n", savedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintln(out, "Saved at:  never")
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
