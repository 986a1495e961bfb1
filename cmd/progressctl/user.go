package main

import (
	"fmt"
	"strings"

	"progress-service/internal/user"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	userPassword  string
	userRole      string
	userFirstName string
	userLastName  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create an account",
	Long:  "Create an account. Students are normally created on first login; teachers are created here.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserCreate,
}

func init() {
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Initial password (required)")
	userCreateCmd.Flags().StringVar(&userRole, "role", user.RoleTeacher, "Role: teacher or student")
	userCreateCmd.Flags().StringVar(&userFirstName, "first-name", "", "First name")
	userCreateCmd.Flags().StringVar(&userLastName, "last-name", "", "Last name")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(args[0])
	if userRole != user.RoleTeacher && userRole != user.RoleStudent {
		return fmt.Errorf("unknown role %q", userRole)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return withServices(cmd.Context(), func(s services) error {
		u, err := s.users.Create(cmd.Context(), &user.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         userRole,
			FirstName:    userFirstName,
			LastName:     userLastName,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), u)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (id %d)\n", u.Role, u.Email, u.ID)
		return nil
	})
}
