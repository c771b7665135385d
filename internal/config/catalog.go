package config

// CatalogConfig configures the variable catalog service and its cache.
type CatalogConfig struct {
	BaseURL   string `yaml:"base_url"`
	Path      string `yaml:"path"`
	Timeout   string `yaml:"timeout"`
	CachePath string `yaml:"cache_path"` // SQLite file holding the last fetched catalog; empty disables caching
	Offline   bool   `yaml:"offline"`    // read only from the cache
}
