package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var courseTeacher string

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage courses",
}

var courseCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a course owned by a teacher",
	Args:  cobra.ExactArgs(1),
	RunE:  runCourseCreate,
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <course-id> <student-email>...",
	Short: "Enroll students in a course",
	Long:  "Enroll students in a course. Enrolling an already enrolled student is a no-op.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runEnroll,
}

var unenrollCmd = &cobra.Command{
	Use:   "unenroll <course-id> <student-email>",
	Short: "Remove a student from a course",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnenroll,
}

var rosterCmd = &cobra.Command{
	Use:   "roster <course-id>",
	Short: "List the students of a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoster,
}

func init() {
	courseCreateCmd.Flags().StringVar(&courseTeacher, "teacher", "", "Owning teacher's email (required)")
	_ = courseCreateCmd.MarkFlagRequired("teacher")

	courseCmd.AddCommand(courseCreateCmd)
}

func runCourseCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withServices(ctx, func(s services) error {
		teacher, err := s.users.GetByEmail(ctx, strings.TrimSpace(courseTeacher))
		if err != nil {
			return fmt.Errorf("teacher %q: %w", courseTeacher, err)
		}

		course, err := s.courses.CreateCourse(ctx, args[0], teacher.ID)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), course)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created course %q (id %d)\n", course.Name, course.ID)
		return nil
	})
}

func runEnroll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	courseID, err := parseCourseID(args[0])
	if err != nil {
		return err
	}

	return withServices(ctx, func(s services) error {
		if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
			return err
		}
		for _, email := range args[1:] {
			student, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
			if err != nil {
				return fmt.Errorf("student %q: %w", email, err)
			}
			if err := s.courses.Enroll(ctx, student.ID, courseID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s\n", student.Email)
		}
		return nil
	})
}

func runUnenroll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	courseID, err := parseCourseID(args[0])
	if err != nil {
		return err
	}

	return withServices(ctx, func(s services) error {
		student, err := s.users.GetByEmail(ctx, strings.TrimSpace(args[1]))
		if err != nil {
			return fmt.Errorf("student %q: %w", args[1], err)
		}
		if err := s.courses.Unenroll(ctx, student.ID, courseID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unenrolled %s\n", student.Email)
		return nil
	})
}

func runRoster(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	courseID, err := parseCourseID(args[0])
	if err != nil {
		return err
	}

	return withServices(ctx, func(s services) error {
		if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
			return err
		}
		students, err := s.courses.ListStudents(ctx, courseID)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"students": students, "total": len(students)})
		}
		if len(students) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No students enrolled.")
			return nil
		}

		w := newTabWriter(cmd.OutOrStdout())
		fmt.Fprintln(w, "ID\tLAST NAME\tFIRST NAME\tEMAIL\tASSIGNED")
		for _, st := range students {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				st.ID, dash(st.LastName), dash(st.FirstName), st.Email,
				st.AssignedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	})
}
