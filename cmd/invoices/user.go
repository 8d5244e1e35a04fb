package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/invoices/internal/config"
	"github.com/deppfellow/invoices/internal/database"
	"github.com/deppfellow/invoices/internal/logger"
	"github.com/deppfellow/invoices/internal/repository"
	"github.com/deppfellow/invoices/internal/service"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newUserCreateCommand())

	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var input service.NewUser

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a user that signs in with email and password",
		Example: `  invoices user create --name "User" --email user@nextmail.com --password 123456`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig()
			log := logger.NewLoggerWithService(cfg.Observability, nil)

			db, err := database.New(cfg, &log, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			users := service.NewAuthService(nil, nil, repository.NewUserRepository(db.Pool))

			user, err := users.CreateUser(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "sign-in email")
	cmd.Flags().StringVar(&input.Password, "password", "", "sign-in password, at least 6 characters")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
