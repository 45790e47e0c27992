// Command admin は運用者向けのCLIです（アカウントの有効化・無効化、マイグレーション）。
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	authadapters "workzone_backend/internal/feature/auth/adapters"
	authusecase "workzone_backend/internal/feature/auth/usecase"
	"workzone_backend/internal/platform/config"
	"workzone_backend/internal/platform/db"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "WorkZone operator commands",
		Long:          "Operator commands for the WorkZone backend. Configuration is read from the same environment variables as the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newAccountCommand())
	cmd.AddCommand(newMigrateCommand())

	return cmd
}

// openDB はサーバーと同じ環境変数でデータベースを開きます。
func openDB() (*gorm.DB, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("failed to open database: %w", err)
	}
	return gdb, cfg, nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}
}

func newCredentialStore(gdb *gorm.DB, cfg config.Config) *authusecase.CredentialStore {
	return authusecase.NewCredentialStore(authadapters.NewIdentityGorm(gdb, cfg.StoreTimeout))
}
