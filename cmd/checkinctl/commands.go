package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gerejaku_backend/internals/configs"
	database "gerejaku_backend/internals/databases"
	tokenDTO "gerejaku_backend/internals/features/checkin/tokens/dto"
	"gerejaku_backend/internals/features/checkin/tokens/scheduler"
	tokenService "gerejaku_backend/internals/features/checkin/tokens/service"
	"gerejaku_backend/internals/features/checkin/tokens/store"
	occRepo "gerejaku_backend/internals/features/services/occurrences/repository"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errMemoryStore = errors.New("CHECKIN_TOKEN_STORE=memory: token tersimpan di RAM server, tidak bisa diakses dari CLI")

// requireSharedStore: CLI hanya bisa bekerja dengan store yang dipakai bersama server (Postgres).
// Dicek sebelum koneksi DB dibuka.
func requireSharedStore(cfg configs.CheckinConfig) error {
	if cfg.TokenStore == configs.TokenStoreMemory {
		return errMemoryStore
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "AutoMigrate tabel check-in (members, service_occurrences, checkin_tokens, service_attendances)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := configs.InitCLIDB()
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("✅ Migrasi selesai")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Hapus token QR yang sudah kedaluwarsa (sekali jalan)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configs.LoadCheckinConfig()
			if err != nil {
				return err
			}
			if err := requireSharedStore(cfg); err != nil {
				return err
			}
			db := configs.InitCLIDB()
			n, err := scheduler.SweepOnce(cmd.Context(), store.NewGormStore(db), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("%d token dihapus\n", n)
			return nil
		},
	}
}

func issueStaticCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "issue-static [occurrence-id]",
		Short: "Terbitkan (atau ambil) token QR statis untuk dicetak",
		Long: `Token statis dipakai ulang sampai kedaluwarsa (CHECKIN_STATIC_TTL, default 24 jam),
jadi menjalankan perintah ini berkali-kali untuk jadwal yang sama menghasilkan token yang sama.

Contoh:
  checkinctl issue-static 7d3f8c0e-5b1a-4d2e-9f60-1a2b3c4d5e6f
  checkinctl issue-static 7d3f8c0e-5b1a-4d2e-9f60-1a2b3c4d5e6f --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			occID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("occurrence id tidak valid: %w", err)
			}
			cfg, err := configs.LoadCheckinConfig()
			if err != nil {
				return err
			}
			if err := requireSharedStore(cfg); err != nil {
				return err
			}

			db := configs.InitCLIDB()
			iss := tokenService.NewIssuer(store.NewGormStore(db), occRepo.NewOccurrenceRepository(db), cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			issued, err := iss.StaticToken(ctx, occID)
			if err != nil {
				return fmt.Errorf("issue static token: %w", err)
			}

			if asJSON {
				out, err := sonic.Marshal(tokenDTO.FromIssued(issued))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nberlaku sampai %s\n", issued.Token, issued.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}
