package main

import (
	"context"
	"fmt"
	"strings"

	"formulate/internal/autocomplete"
	"formulate/internal/catalog"
	"formulate/internal/formula"
	"formulate/internal/logging"
	"formulate/internal/resolver"
	"formulate/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// evalCmd evaluates one formula against the catalog
var evalCmd = &cobra.Command{
	Use:   "eval [expression...]",
	Short: "Evaluate a formula and print its result",
	Long: `Types "= <expression>" into a fresh editor session and prints the
result line. Variable names are substituted from the catalog.

Example:
  formulate eval "Revenue - Cost"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

// varsCmd lists the catalog
var varsCmd = &cobra.Command{
	Use:   "vars [term]",
	Short: "List catalog variables grouped by category",
	Long: `Prints the variable catalog grouped by category. An optional term
filters the list the same way the editor's suggestion panel does.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVars,
}

func runEval(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(contextOf(cmd))
	if err != nil {
		return err
	}

	r := resolver.New(resolver.WithLogger(logging.For(logger, logging.CategoryResolver)))
	s := session.New(cat, r).EditText(formula.Prefix + strings.Join(args, " "))

	logging.For(logger, logging.CategorySession).Debug("formula evaluated",
		zap.String("session", s.ID),
		zap.String("formula", s.Formula()),
		zap.Stringer("status", s.Result.Status))

	fmt.Fprintf(cmd.OutOrStdout(), "Result: %s\n", s.Result)
	return nil
}

func runVars(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(contextOf(cmd))
	if err != nil {
		return err
	}

	state := autocomplete.State{}.Seed(cat)
	if len(args) == 1 {
		state = state.Search(strings.TrimSpace(args[0]), cat)
	}

	out := cmd.OutOrStdout()
	groups := state.Groups()
	if len(groups) == 0 {
		fmt.Fprintln(out, "No variables found")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintf(out, "◉ %s\n", strings.ToUpper(g.Category))
		for _, v := range g.Options {
			if v.Value.IsEmpty() {
				fmt.Fprintf(out, "  %s\n", v.Name)
				continue
			}
			fmt.Fprintf(out, "  %s (%s)\n", v.Name, v.Value)
		}
	}
	return nil
}

// loadCatalog loads the catalog once for a one-shot command.
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	loader, cleanup, err := buildLoader(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	timer := logging.StartTimer(logging.For(logger, logging.CategoryCatalog), "catalog load")
	cat, err := loader.Load(ctx)
	timer.Stop()
	if err != nil {
		return nil, err
	}
	logging.For(logger, logging.CategoryCatalog).Debug("catalog ready",
		zap.Int("variables", cat.Len()),
		zap.Stringer("source", loader.Source()))
	return cat, nil
}
