package main

import (
	"formulate/internal/catalog"
	"formulate/internal/config"
	"formulate/internal/logging"
	"formulate/internal/store"

	"go.uber.org/zap"
)

// buildLoader wires the catalog client and the SQLite cache into a Loader.
// The returned cleanup closes the cache.
func buildLoader(c *config.Config, log *zap.Logger) (*catalog.Loader, func(), error) {
	opts := []catalog.LoaderOption{
		catalog.WithOffline(c.Catalog.Offline),
		catalog.WithLogger(logging.For(log, logging.CategoryCatalog)),
	}

	cleanup := func() {}
	if path := c.Catalog.CachePath; path != "" {
		st, err := store.NewLocalStore(path)
		if err != nil {
			// Without a cache the editor still works online.
			logging.For(log, logging.CategoryCache).Warn("catalog cache unavailable",
				zap.String("path", path), zap.Error(err))
		} else {
			opts = append(opts, catalog.WithStore(st))
			cleanup = func() { _ = st.Close() }
		}
	}

	var fetcher catalog.Fetcher
	if !c.Catalog.Offline {
		client, err := catalog.NewClient(c.Catalog.BaseURL, c.Catalog.Path, c.GetCatalogTimeout())
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		fetcher = client
	}

	return catalog.NewLoader(fetcher, opts...), cleanup, nil
}
