package main

import (
	"fmt"
	"os"
	"time"

	"progress-service/internal/stats"

	"github.com/spf13/cobra"
)

var (
	cohortQuery        string
	cohortFrom         string
	cohortTo           string
	cohortSort         string
	cohortExerciseType string
	cohortTimezone     string
	cohortXLSX         string
)

var cohortCmd = &cobra.Command{
	Use:   "cohort <course-id>",
	Short: "Show per-student statistics for a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runCohort,
}

func init() {
	cohortCmd.Flags().StringVar(&cohortQuery, "q", "", "Filter by name or email substring")
	cohortCmd.Flags().StringVar(&cohortFrom, "from", "", "Only attempts at or after this date (YYYY-MM-DD or RFC 3339)")
	cohortCmd.Flags().StringVar(&cohortTo, "to", "", "Only attempts before this date (YYYY-MM-DD or RFC 3339)")
	cohortCmd.Flags().StringVar(&cohortSort, "sort", string(stats.SortPercentDesc), "Sort order")
	cohortCmd.Flags().StringVar(&cohortExerciseType, "exercise-type", "", "Only this exercise type (default: all)")
	cohortCmd.Flags().StringVar(&cohortTimezone, "tz", "UTC", "Timezone for date-only bounds")
	cohortCmd.Flags().StringVar(&cohortXLSX, "xlsx", "", "Write a spreadsheet to this path instead of printing")
}

func runCohort(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	courseID, err := parseCourseID(args[0])
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cohortTimezone)
	if err != nil {
		return fmt.Errorf("invalid --tz: %w", err)
	}

	q := stats.CohortQuery{
		CourseID:     courseID,
		Query:        cohortQuery,
		Sort:         stats.ParseSortMode(cohortSort),
		ExerciseType: cohortExerciseType,
	}
	if q.From, err = stats.ParseBound(cohortFrom, loc); err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	if q.To, err = stats.ParseBound(cohortTo, loc); err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}

	return withServices(ctx, func(s services) error {
		if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
			return err
		}
		rows, err := s.stats.CohortStats(ctx, q)
		if err != nil {
			return err
		}

		if cohortXLSX != "" {
			return writeXLSX(cmd, cohortXLSX, rows)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"courseId": courseID, "sort": q.Sort, "rows": rows})
		}

		w := newTabWriter(cmd.OutOrStdout())
		fmt.Fprintln(w, "LAST NAME\tFIRST NAME\tEMAIL\tATTEMPTS\tCORRECT\tWRONG\tPERCENT\tAVG TIME")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
				dash(r.LastName), dash(r.FirstName), r.Email,
				r.Attempts, r.TotalCorrect, r.TotalWrong,
				formatOptional(r.PercentCorrect, "%.2f%%"), formatOptional(r.AvgTime, "%.2fs"))
		}
		return w.Flush()
	})
}

func writeXLSX(cmd *cobra.Command, path string, rows []stats.StudentRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := stats.ExportCohortXLSX(rows, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d students to %s\n", len(rows), path)
	return nil
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
