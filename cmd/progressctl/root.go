package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"progress-service/internal/attempt"
	"progress-service/internal/config"
	"progress-service/internal/db"
	"progress-service/internal/metrics"
	"progress-service/internal/roster"
	"progress-service/internal/stats"
	"progress-service/internal/user"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:           "progressctl",
	Short:         "Administer the trainer progress database",
	Long:          "Manage teachers, courses and enrollments, and read cohort statistics without running the server.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(unenrollCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(cohortCmd)
}

// openDB connects using the service configuration. Tests replace it.
var openDB = func(ctx context.Context) (*bun.DB, func(), error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, nil, err
	}
	database := db.New(cfg.Database)
	if err := database.PingContext(ctx); err != nil {
		db.Close(database)
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return database, func() { db.Close(database) }, nil
}

// services bundles what the subcommands operate on.
type services struct {
	users   user.Repository
	courses roster.Service
	stats   stats.Service
}

func withServices(ctx context.Context, fn func(s services) error) error {
	database, closeDB, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	m := metrics.NewMock()
	users := user.NewRepository(database, m)
	return fn(services{
		users:   users,
		courses: roster.NewService(roster.NewRepository(database, m), users),
		stats:   stats.NewService(attempt.NewRepository(database, m), stats.NewCohortRepository(database, m), stats.Options{}),
	})
}

func parseCourseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid course id %q", raw)
	}
	return id, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
