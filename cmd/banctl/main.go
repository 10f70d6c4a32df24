package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/cloudban/cloudban-api/internal/config"
	"github.com/cloudban/cloudban-api/internal/domain/blocklist"
	"github.com/cloudban/cloudban-api/internal/domain/feed"
	"github.com/cloudban/cloudban-api/internal/domain/moderation"
	"github.com/cloudban/cloudban-api/internal/pkg/database"
	"github.com/cloudban/cloudban-api/internal/pkg/jwt"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
)

// actor recorded on feed events raised from the CLI
const actor = "banctl"

var (
	cfgFile string
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "banctl",
	Short: "Operator CLI for the cloudban service",
	Long: `banctl works directly against the cloudban database and settings file.

It can bootstrap the schema, manage blocked devices, print moderation
statistics and mint admin tokens without going through the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		logger.Init(logger.Config{Level: cfg.LogLevel, Debug: true})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default $CLOUDBAN_CONFIG or config.json)")

	blockCmd.Flags().StringVar(&blockReason, "reason", "", "why the device is blocked")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(unblockCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tokenCmd)
}

// ── migrate ──────────────────────────────────────────────────────────────────

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sqlx.DB) error {
			if err := database.EnsureSchema(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		})
	},
}

// ── block / unblock ──────────────────────────────────────────────────────────

var blockReason string

var blockCmd = &cobra.Command{
	Use:   "block <hwic>",
	Short: "Block a device from submitting reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBlocklist(cmd.Context(), func(ctx context.Context, svc *blocklist.Service) error {
			res, err := svc.Block(ctx, actor, args[0], blockReason)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		})
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <hwic>",
	Short: "Remove every block entry for a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBlocklist(cmd.Context(), func(ctx context.Context, svc *blocklist.Service) error {
			res, err := svc.Unblock(ctx, actor, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d removed)\n", res.Message, res.Deleted)
			return nil
		})
	},
}

// ── stats ────────────────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print record counts by status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sqlx.DB) error {
			svc := moderation.NewService(moderation.NewRepository(db), nil, nil)
			stats, err := svc.Stats(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tCOUNT")
			fmt.Fprintf(tw, "total\t%d\n", stats.Total)
			fmt.Fprintf(tw, "pending\t%d\n", stats.Pending)
			fmt.Fprintf(tw, "approved\t%d\n", stats.Approved)
			fmt.Fprintf(tw, "rejected\t%d\n", stats.Rejected)
			return tw.Flush()
		})
	},
}

// ── token ────────────────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin bearer token from the settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, expiresAt, err := jwt.NewService(cfg.SecretKey, cfg.AccessTokenTTL).GenerateAccessToken(cfg.Username)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

// ── helpers ──────────────────────────────────────────────────────────────────

func withDB(ctx context.Context, fn func(context.Context, *sqlx.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return fn(ctx, db)
}

// withBlocklist publishes block changes on the Redis feed so running API instances see them.
func withBlocklist(ctx context.Context, fn func(context.Context, *blocklist.Service) error) error {
	return withDB(ctx, func(ctx context.Context, db *sqlx.DB) error {
		rdb, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer database.CloseRedis(rdb)

		hub := feed.NewHub(rdb)
		defer hub.Shutdown()

		return fn(ctx, blocklist.NewService(blocklist.NewRepository(db), hub))
	})
}
