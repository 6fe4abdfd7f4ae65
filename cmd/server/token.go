package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpapi "vehicle-ticket-service/internal/http"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("role", httpapi.RoleOperator, "Role claim (operator or admin)")
	tokenCmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
}

var tokenCmd = &cobra.Command{
	Use:   "token STAFF_ID",
	Short: "Issue a signed access token for a staff member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		staffID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid staff id: %w", err)
		}
		role, _ := cmd.Flags().GetString("role")
		if role != httpapi.RoleOperator && role != httpapi.RoleAdmin {
			return fmt.Errorf("unknown role %q", role)
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is not configured")
		}

		token, err := httpapi.GenerateToken(cfg.Auth.JWTSecret, staffID, role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
