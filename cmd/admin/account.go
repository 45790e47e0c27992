package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"workzone_backend/internal/feature/auth/domain/entity"
	authusecase "workzone_backend/internal/feature/auth/usecase"
)

func newAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
		Long:  "Inspect accounts and switch them between active and disabled. Disabled accounts cannot log in and their tokens stop working.",
	}

	cmd.AddCommand(newAccountShowCommand())
	cmd.AddCommand(newAccountSetActiveCommand("disable", false))
	cmd.AddCommand(newAccountSetActiveCommand("enable", true))
	cmd.AddCommand(newAccountSetPasswordCommand())

	return cmd
}

// withStore opens the database, runs fn and closes the connection.
func withStore(ctx context.Context, fn func(ctx context.Context, store *authusecase.CredentialStore) error) error {
	gdb, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(gdb)
	return fn(ctx, newCredentialStore(gdb, cfg))
}

func newAccountShowCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show an account",
		Example: `  admin account show --email hr@acme.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *authusecase.CredentialStore) error {
				identity, err := store.FindByEmail(ctx, email, false)
				if err != nil {
					return fmt.Errorf("find %s: %w", email, err)
				}
				printIdentity(cmd.OutOrStdout(), identity)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAccountSetActiveCommand(use string, active bool) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:     use,
		Short:   use + " an account",
		Example: fmt.Sprintf("  admin account %s --email hr@acme.example.com", use),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *authusecase.CredentialStore) error {
				identity, err := store.SetActive(ctx, email, active)
				if err != nil {
					return fmt.Errorf("%s %s: %w", use, email, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: active=%t\n", identity.Email, identity.Active)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAccountSetPasswordCommand() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Set a local password",
		Long:  "Set or replace the local password of an account. Google-only accounts can then also log in with a password.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *authusecase.CredentialStore) error {
				identity, err := store.FindByEmail(ctx, email, false)
				if err != nil {
					return fmt.Errorf("find %s: %w", email, err)
				}
				if err := store.ChangeSecret(ctx, identity.ID, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: password updated\n", identity.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "New password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func printIdentity(w io.Writer, i *entity.Identity) {
	fmt.Fprintf(w, "id:         %s\n", i.ID)
	fmt.Fprintf(w, "name:       %s\n", i.DisplayName)
	fmt.Fprintf(w, "email:      %s\n", i.Email)
	fmt.Fprintf(w, "role:       %s\n", i.Role)
	fmt.Fprintf(w, "active:     %t\n", i.Active)
	fmt.Fprintf(w, "federated:  %t\n", i.IsFederated())
	if i.LastAuthenticatedAt != nil {
		fmt.Fprintf(w, "last login: %s\n", i.LastAuthenticatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "created:    %s\n", i.CreatedAt.Format(time.RFC3339))
}
