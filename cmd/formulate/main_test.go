package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"formulate/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"id": "1", "name": "Revenue", "category": "Finance", "value": 100},
	{"id": "2", "name": "Cost", "category": "Finance", "value": "40"},
	{"id": "3", "name": "Reserve", "category": "", "value": null}
]`

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/autocomplete" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupEnv isolates a test from the user's config, environment and cache.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"FORMULATE_CATALOG_URL", "FORMULATE_OFFLINE", "FORMULATE_LOG_LEVEL", "FORMULATE_DARK_MODE"} {
		t.Setenv(key, "")
	}
	t.Setenv("FORMULATE_CACHE_PATH", filepath.Join(dir, "catalog.db"))
	return dir
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath = filepath.Join(t.TempDir(), "absent.yaml")
	catalogURL = ""
	offline = false
	verbose = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEval_SubstitutesVariables(t *testing.T) {
	setupEnv(t)
	srv := catalogServer(t)

	out, err := execute(t, "eval", "--catalog-url", srv.URL, "Revenue - Cost")
	require.NoError(t, err)
	assert.Equal(t, "Result: 60\n", out)
}

func TestEval_JoinsArguments(t *testing.T) {
	setupEnv(t)
	srv := catalogServer(t)

	out, err := execute(t, "eval", "--catalog-url", srv.URL, "(2", "+", "3)", "*", "Revenue")
	require.NoError(t, err)
	assert.Equal(t, "Result: 500\n", out)
}

func TestEval_ReportsStatesWithoutFailing(t *testing.T) {
	setupEnv(t)
	srv := catalogServer(t)

	tests := []struct {
		expr string
		want string
	}{
		{"2 +", "Result: Incomplete expression\n"},
		{"Profit * 2", "Result: Unknown variables in expression\n"},
		{"(2 + 3", "Result: Error: Invalid expression\n"},
		{"Reserve + 1", "Result: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			out, err := execute(t, "eval", "--catalog-url", srv.URL, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEval_OfflineUsesCache(t *testing.T) {
	setupEnv(t)
	srv := catalogServer(t)

	_, err := execute(t, "eval", "--catalog-url", srv.URL, "1")
	require.NoError(t, err, "online run fills the cache")
	srv.Close()

	out, err := execute(t, "eval", "--offline", "Revenue / 4")
	require.NoError(t, err)
	assert.Equal(t, "Result: 25\n", out)
}

func TestEval_FallsBackToCacheWhenServiceFails(t *testing.T) {
	setupEnv(t)
	srv := catalogServer(t)
	_, err := execute(t, "eval", "--catalog-url", srv.URL, "1")
	require.NoError(t, err)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	out, err := execute(t, "eval", "--catalog-url", broken.URL, "Cost")
	require.NoError(t, err)
	assert.Equal(t, "Result: 40\n", out)
}

func TestEval_NoCatalogIsAnError(t *testing.T) {
	setupEnv(t)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	_, err := execute(t, "eval", "--catalog-url", broken.URL, "1 + 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrNoCatalog)
}

func TestVars_GroupsByCategory(t *testing.T) {
	setupEnv(t)
	srv := catalogServer(t)

	out, err := execute(t, "vars", "--catalog-url", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "◉ FINANCE\n  Revenue (100)\n  Cost (40)\n")
	assert.Contains(t, out, "◉ UNCATEGORIZED\n  Reserve\n")
	assert.Less(t, strings.Index(out, "FINANCE"), strings.Index(out, "UNCATEGORIZED"))
}

func TestVars_FiltersByTerm(t *testing.T) {
	setupEnv(t)
	srv := catalogServer(t)

	out, err := execute(t, "vars", "--catalog-url", srv.URL, "CO")
	require.NoError(t, err)
	assert.Contains(t, out, "Cost (40)")
	assert.NotContains(t, out, "Revenue")

	out, err = execute(t, "vars", "--catalog-url", srv.URL, "zzz")
	require.NoError(t, err)
	assert.Equal(t, "No variables found\n", out)
}

func TestCache_InfoAndClear(t *testing.T) {
	dir := setupEnv(t)
	srv := catalogServer(t)

	out, err := execute(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Variables: 0")
	assert.Contains(t, out, "Saved at:  never")

	_, err = execute(t, "eval", "--catalog-url", srv.URL, "1")
	require.NoError(t, err)

	out, err = execute(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "catalog.db"))
	assert.Contains(t, out, "Variables: 3")
	assert.NotContains(t, out, "never")

	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")

	out, err = execute(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Variables: 0")
}

func TestCache_RequiresPath(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "formulate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  cache_path: \"\"\n"), 0644))
	t.Setenv("FORMULATE_CACHE_PATH", "")

	_, err := execute(t, "cache", "clear", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog cache configured")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "formulate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	_, err := execute(t, "eval", "--config", path, "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
