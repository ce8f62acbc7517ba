// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/spf13/cobra"

	"inkwell/internal/store"
)

// minPasswordLength is the shortest password createuser accepts.
const minPasswordLength = 8

func newCreateUserCmd() *cobra.Command {
	var nu store.NewUser

	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create an account that can authenticate against the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateNewUser(nu); err != nil {
				return err
			}

			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := store.NewUserStore(db).Create(cmd.Context(), nu)
			if err != nil {
				return fmt.Errorf("create user %q: %w", nu.Username, err)
			}
			slog.Info("user created", "id", u.ID, "username", u.Username, "staff", u.IsStaff)
			return nil
		},
	}

	cmd.Flags().StringVar(&nu.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&nu.Email, "email", "", "contact address")
	cmd.Flags().StringVar(&nu.Password, "password", "", "initial password (required)")
	cmd.Flags().StringVar(&nu.FirstName, "first-name", "", "given name")
	cmd.Flags().StringVar(&nu.LastName, "last-name", "", "family name")
	cmd.Flags().BoolVar(&nu.IsStaff, "staff", false, "grant staff rights (see drafts, manage categories)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func validateNewUser(nu store.NewUser) error {
	var errs []error
	if nu.Username == "" || len(nu.Username) > 150 {
		errs = append(errs, errors.New("username must be 1 to 150 characters"))
	}
	if len(nu.Password) < minPasswordLength {
		errs = append(errs, fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}
	if nu.Email != "" {
		if _, err := mail.ParseAddress(nu.Email); err != nil {
			errs = append(errs, fmt.Errorf("email %q is not valid", nu.Email))
		}
	}
	return errors.Join(errs...)
}
