package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/claude/circuitry/internal/catalog"
	cmcp "github.com/claude/circuitry/internal/mcp"
	"github.com/claude/circuitry/internal/models"
	"github.com/claude/circuitry/internal/sequence"
	"github.com/claude/circuitry/internal/session"
	"github.com/claude/circuitry/internal/storage"
)

// errInvalidWorkout makes `validate` exit non-zero after printing its report.
var errInvalidWorkout = errors.New("workout is invalid")

func newGenerateCommand(e *env) *cobra.Command {
	var (
		length     int
		groups     []string
		even       bool
		unique     bool
		maxRetries int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a workout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			enabled, err := models.ParseMuscleGroups(groups)
			if err != nil {
				return err
			}
			if len(enabled) == 0 {
				enabled = models.AllMuscleGroups()
			}

			cat, closeFn, err := e.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			gen := sequence.NewGenerator(cat, sequence.NewRand(e.seed), e.logger())
			res, err := gen.Generate(ctx, length, enabled, sequence.GenerateOptions{
				EvenDistribution: even,
				MaxRetries:       maxRetries,
				UniqueExercises:  unique,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			printWorkout(out, res.Workout)
			fmt.Fprintf(out, "\n%d exercises, %d muscle groups, %d attempt(s)\n",
				len(res.Workout), len(res.Metadata.MuscleGroupsUsed), res.Metadata.Attempts)
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "n", 10, "number of exercises (5-20)")
	cmd.Flags().StringSliceVarP(&groups, "groups", "g", nil, "muscle groups to use (default all)")
	cmd.Flags().BoolVar(&even, "even", true, "balance the pool across groups")
	cmd.Flags().BoolVar(&unique, "unique", false, "never repeat an exercise when possible")
	cmd.Flags().IntVar(&maxRetries, "max-retries", sequence.DefaultMaxRetries, "restart budget")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newGroupsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List muscle groups with exercise counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeFn, err := e.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			counts, err := cat.ExerciseCounts(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, gc := range catalog.SortedCounts(counts) {
				fmt.Fprintf(tw, "%s\t%d\n", gc.MuscleGroup, gc.Count)
			}
			return tw.Flush()
		},
	}
}

func newExercisesCommand(e *env) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List catalog exercises",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, closeFn, err := e.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var exs []models.Exercise
			if group != "" {
				g, err := models.ParseMuscleGroup(group)
				if err != nil {
					return err
				}
				exs, err = cat.ExercisesByMuscleGroup(ctx, g)
				if err != nil {
					return err
				}
			} else if exs, err = cat.AllExercises(ctx); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tGROUP\tEQUIPMENT")
			for _, ex := range exs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ex.ID, ex.Name, ex.MuscleGroup, ex.Equipment)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "only this muscle group")
	return cmd
}

func newValidateCommand(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a workout file (YAML or JSON list of exercises)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading workout: %w", err)
			}
			var w models.Workout
			if err := yaml.Unmarshal(data, &w); err != nil {
				return fmt.Errorf("parsing workout: %w", err)
			}

			res := sequence.ValidateWorkout(w)
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				printValidation(out, res)
			}
			if !res.Valid {
				return errInvalidWorkout
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newSeedCommand(e *env) *cobra.Command {
	var (
		file  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load exercises into the SQLite catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			exs := catalog.Default()
			if file != "" {
				var err error
				if exs, err = catalog.LoadFile(file); err != nil {
					return err
				}
			}

			s, err := storage.OpenSQLite(e.dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := storage.Seed(cmd.Context(), s, exs, force)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has exercises; use --force to overwrite\n", e.dbPath)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d exercises into %s\n", n, e.dbPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML exercise file (default built-in catalog)")
	cmd.Flags().BoolVar(&force, "force", false, "upsert even if the catalog is not empty")
	return cmd
}

func newMCPCommand(e *env) *cobra.Command {
	var (
		remote          string
		apiKey          string
		historyCapacity int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP over stdio",
		Long:  "Serve MCP over stdio, either from the local catalog or proxied to a remote circuitry server with --remote.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := e.logger()

			var backend cmcp.Backend
			if remote != "" {
				backend = cmcp.NewHTTPClient(remote, apiKey)
				log.Info("mcp proxying to remote server", "url", remote)
			} else {
				cat, closeFn, err := e.openCatalog(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()
				gen := sequence.NewGenerator(cat, sequence.NewRand(e.seed), log)
				backend = cmcp.NewLocal(session.NewStore(gen, historyCapacity, log), sequence.DefaultGenerateOptions())
			}

			return server.ServeStdio(cmcp.New(backend, e.opts.Version, log))
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a circuitry server")
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("CIRCUITRY_AUTH_API_KEY"), "API key for the remote server")
	cmd.Flags().IntVar(&historyCapacity, "history", sequence.DefaultHistoryCapacity, "undo history per workout")
	return cmd
}

func printWorkout(out io.Writer, w models.Workout) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, ex := range w {
		fmt.Fprintf(tw, "%2d.\t%s\t%s\n", i+1, ex.Name, ex.MuscleGroup)
	}
	tw.Flush()
}

func printValidation(out io.Writer, res sequence.ValidationResult) {
	if res.Valid {
		fmt.Fprintln(out, "valid")
	} else {
		fmt.Fprintln(out, "invalid")
	}
	for _, is := range res.Errors {
		fmt.Fprintf(out, "  error   %s: %s\n", is.Code, is.Message)
	}
	for _, is := range res.Warnings {
		fmt.Fprintf(out, "  warning %s: %s\n", is.Code, is.Message)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
