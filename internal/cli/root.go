// Package cli implements the circuitry command line: generate and validate
// workouts against a local catalog, manage that catalog, and serve MCP over stdio.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/storage"
)

// Options holds CLI-level configuration.
type Options struct {
	Version string
	// LogOutput receives slog output. Nil means stderr.
	LogOutput io.Writer
}

// env is shared by every subcommand and filled from persistent flags.
type env struct {
	dbPath      string
	catalogFile string
	seed        uint64
	verbose     bool
	opts        Options
}

func (e *env) logger() *slog.Logger {
	out := e.opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	level := slog.LevelWarn
	if e.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// openCatalog returns the catalog named by the flags: a YAML file when
// --catalog is set, otherwise the SQLite database, seeded with the built-in
// exercises on first use.
func (e *env) openCatalog(ctx context.Context) (catalog.Catalog, func() error, error) {
	if e.catalogFile != "" {
		exs, err := catalog.LoadFile(e.catalogFile)
		if err != nil {
			return nil, nil, err
		}
		m, err := catalog.NewMemory(exs)
		if err != nil {
			return nil, nil, err
		}
		return m, func() error { return nil }, nil
	}

	s, err := storage.OpenSQLite(e.dbPath)
	if err != nil {
		return nil, nil, err
	}
	if n, err := storage.Seed(ctx, s, catalog.Default(), false); err != nil {
		s.Close()
		return nil, nil, err
	} else if n > 0 {
		e.logger().Info("catalog seeded with built-in exercises", "path", e.dbPath, "rows", n)
	}
	return s, s.Close, nil
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "circuitry",
		Short:         "Circuit workout generator",
		Long:          "Circuitry builds circuit workouts in which no two consecutive exercises train the same muscle group.",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&e.dbPath, "db", "circuitry.db", "SQLite catalog database")
	root.PersistentFlags().StringVar(&e.catalogFile, "catalog", "", "YAML exercise file to use instead of the database")
	root.PersistentFlags().Uint64Var(&e.seed, "rand-seed", 0, "random seed for reproducible workouts (0 = random)")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newGenerateCommand(e),
		newGroupsCommand(e),
		newExercisesCommand(e),
		newValidateCommand(e),
		newSeedCommand(e),
		newMCPCommand(e),
	)
	return root
}
