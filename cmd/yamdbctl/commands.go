// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/migration"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// commandTimeout bounds a single database command.
const commandTimeout = time.Minute

// loadDatabase is swapped in tests.
var loadDatabase = config.LoadDatabase

// newRootCommand assembles the command tree.
func newRootCommand(log *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "yamdbctl",
		Short:         "YaMDb operator commands",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCommand(log))
	root.AddCommand(newCreateSuperuserCommand(log))
	return root
}

// # Migrations

func newMigrateCommand(log *slog.Logger) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabase()
			if err != nil {
				return err
			}
			return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabase()
			if err != nil {
				return err
			}
			return migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert")

	migrate.AddCommand(up, down)
	return migrate
}

// # Superuser

// superuserInput holds the createsuperuser flags.
type superuserInput struct {
	email    string
	username string
}

// validate applies the profile rules to the flags.
func (input *superuserInput) validate() error {
	input.email = auth.NormalizeEmail(input.email)
	input.username = strings.TrimSpace(input.username)

	validator := &validate.Validator{}
	validator.Required(auth.FieldEmail, input.email).
		MaxLen(auth.FieldEmail, input.email, auth.MaxEmailLength).
		Email(auth.FieldEmail, input.email)

	if input.username != "" {
		validator.MaxLen(auth.FieldUsername, input.username, auth.MaxUsernameLength).
			Username(auth.FieldUsername, input.username).
			Custom(auth.FieldUsername, input.username == auth.ReservedUsername, "This username is reserved")
	}

	if err := validator.Err(); err != nil {
		return describeValidation(err)
	}
	return nil
}

func newCreateSuperuserCommand(log *slog.Logger) *cobra.Command {
	var input superuserInput

	command := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an admin superuser, or promote the account owning the email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := input.validate(); err != nil {
				return err
			}

			cfg, err := loadDatabase()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			pool, err := postgres.NewSmallPool(ctx, cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			user, err := account.NewAccountRepository(pool).EnsureSuperuser(ctx, input.email, input.username)
			if err != nil {
				return err
			}

			log.Info("superuser_ready",
				slog.String("user_id", user.ID),
				slog.String("email", user.Email),
				slog.String("username", user.Username),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s is ready.\n", user.Email)
			return nil
		},
	}

	command.Flags().StringVar(&input.email, "email", "", "Email address of the superuser (required)")
	command.Flags().StringVar(&input.username, "username", "", "Username of the superuser")
	_ = command.MarkFlagRequired("email")
	return command
}

// describeValidation flattens field errors into one CLI line.
func describeValidation(err error) error {
	var builder strings.Builder
	builder.WriteString("invalid flags:")

	appErr := apperr.As(err)
	if appErr == nil {
		return err
	}
	for _, detail := range appErr.Details {
		builder.WriteString(fmt.Sprintf(" --%s: %s;", detail.Field, detail.Message))
	}
	return errors.New(strings.TrimSuffix(builder.String(), ";"))
}
