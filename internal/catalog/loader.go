package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source identifies where a loaded catalog came from.
type Source int

const (
	SourceNone   Source = iota
	SourceRemote        // fetched from the catalog service
	SourceCache         // read from the offline copy
)

// String returns the display name for each source.
func (s Source) String() string {
	names := []string{"none", "remote", "cache"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Store persists the most recent catalog.
type Store interface {
	Save(ctx context.Context, vars []Variable) error
	Load(ctx context.Context) ([]Variable, error)
}

// ErrNoCatalog is returned when neither the service nor the cache produced
// a catalog.
var ErrNoCatalog = errors.New("catalog unavailable")

// Loader fetches the catalog at most once per process. Concurrent callers
// share one in-flight fetch; later callers get the cached result. There is
// no background refresh.
type Loader struct {
	fetcher Fetcher
	store   Store
	offline bool
	logger  *zap.Logger

	group singleflight.Group

	mu     sync.Mutex
	loaded *Catalog
	source Source
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStore sets the offline copy used as fallback and refreshed on success.
func WithStore(s Store) LoaderOption {
	return func(l *Loader) { l.store = s }
}

// WithOffline skips the remote fetch and reads only the store.
func WithOffline(offline bool) LoaderOption {
	return func(l *Loader) { l.offline = offline }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader. fetcher may be nil when running offline.
func NewLoader(fetcher Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{fetcher: fetcher, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the catalog, fetching it on the first call.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	l.mu.Lock()
	if l.loaded != nil {
		c := l.loaded
		l.mu.Unlock()
		return c, nil
	}
	l.mu.Unlock()

	v, err, shared := l.group.Do("catalog", func() (interface{}, error) {
		return l.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug("catalog fetch shared with concurrent caller")
	}
	return v.(*Catalog), nil
}

// Source reports where the current catalog came from.
func (l *Loader) Source() Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

func (l *Loader) load(ctx context.Context) (*Catalog, error) {
	// A caller may have finished loading between our check and Do.
	l.mu.Lock()
	if l.loaded != nil {
		c := l.loaded
		l.mu.Unlock()
		return c, nil
	}
	l.mu.Unlock()

	var fetchErr error
	if !l.offline && l.fetcher != nil {
		vars, err := l.fetcher.Fetch(ctx)
		if err == nil {
			cat := New(vars)
			l.logger.Info("catalog fetched", zap.Int("variables", cat.Len()))
			if l.store != nil {
				if err := l.store.Save(ctx, vars); err != nil {
					l.logger.Warn("failed to cache catalog", zap.Error(err))
				}
			}
			l.remember(cat, SourceRemote)
			return cat, nil
		}
		fetchErr = err
		l.logger.Warn("catalog fetch failed", zap.Error(err))
	}

	if l.store == nil {
		if fetchErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCatalog, fetchErr)
		}
		return nil, ErrNoCatalog
	}

	vars, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: cache read failed: %v", ErrNoCatalog, err)
	}
	if len(vars) == 0 && fetchErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCatalog, fetchErr)
	}

	cat := New(vars)
	l.logger.Info("catalog loaded from cache", zap.Int("variables", cat.Len()))
	l.remember(cat, SourceCache)
	return cat, nil
}

func (l *Loader) remember(cat *Catalog, src Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = cat
	l.source = src
}
