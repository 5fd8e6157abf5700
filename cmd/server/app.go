package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/export"
	"github.com/diewo77/go-rentals/internal/handlers"
	"github.com/diewo77/go-rentals/internal/logging"
	"github.com/diewo77/go-rentals/internal/server"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is what every subcommand starts from.
type env struct {
	cfg config.Config
	log *zap.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Dev {
		// view reloads templates and the asset manifest on every request
		_ = os.Setenv("DEV", "1")
	}
	return &env{cfg: cfg, log: log}, nil
}

// attachmentStore opens the configured backend. The closer releases GCS clients.
func attachmentStore(ctx context.Context, cfg config.Config) (attachments.Store, func() error, error) {
	switch cfg.AttachmentBackend {
	case config.BackendGCS:
		g, err := attachments.NewGCS(ctx, cfg.GCSBucket, cfg.GCSPublicBaseURL, cfg.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		l, err := attachments.NewLocal(cfg.UploadDir, cfg.UploadURLPrefix)
		if err != nil {
			return nil, nil, err
		}
		return l, func() error { return nil }, nil
	}
}

func runServe(ctx context.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	conn, err := db.ConnectAndMigrate(e.cfg, e.log)
	if err != nil {
		e.log.Error("database unavailable", zap.Error(err))
		return err
	}
	st, closeStore, err := attachmentStore(ctx, e.cfg)
	if err != nil {
		e.log.Error("attachment store unavailable", zap.String("backend", e.cfg.AttachmentBackend), zap.Error(err))
		return err
	}
	defer func() { _ = closeStore() }()

	auth.SetSecret(e.cfg.SessionSecret)
	deps := handlers.NewDeps(conn, services.NewFiles(st, e.cfg.MaxUploadBytes()), e.log)
	opts := server.Options{StaticDir: "static"}
	if e.cfg.AttachmentBackend == config.BackendLocal {
		opts.UploadDir, opts.UploadPrefix = e.cfg.UploadDir, e.cfg.UploadURLPrefix
	}
	e.log.Info("starting",
		zap.String("env", e.cfg.Env),
		zap.String("port", e.cfg.Port),
		zap.String("attachments", e.cfg.AttachmentBackend))
	return server.Run(ctx, ":"+e.cfg.Port, server.New(deps, opts), e.log)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// withDB runs fn against a migrated connection.
func withDB(fn func(e *env, conn *gorm.DB) error) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()
	conn, err := db.ConnectAndMigrate(e.cfg, e.log)
	if err != nil {
		return err
	}
	return fn(e, conn)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(*cobra.Command, []string) error {
			return withDB(func(e *env, _ *gorm.DB) error {
				e.log.Info("migrations completed")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert reference data (categories, issuer profile, admin operator)",
		RunE: func(*cobra.Command, []string) error {
			return withDB(func(e *env, conn *gorm.DB) error {
				if err := db.Seed(conn, e.log); err != nil {
					return err
				}
				e.log.Info("seed completed")
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var entity, format, out, search, lang string
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export a list as CSV or XLSX",
		Example: "  rentals export --entity assets --format xlsx --out assets.xlsx",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if _, ok := export.Entities[entity]; !ok {
				return fmt.Errorf("%q (one of %s): %w", entity, strings.Join(export.Names(), ", "), export.ErrUnknownEntity)
			}
			return withDB(func(e *env, conn *gorm.DB) error {
				f := store.Filter{Search: search, SearchColumns: export.Entities[entity].Search}
				view, err := export.Load(cmd.Context(), conn, entity, f)
				if err != nil {
					return err
				}
				var w io.Writer = cmd.OutOrStdout()
				if out == "" {
					out = export.Filename(entity, format, time.Now())
				}
				if out != "-" {
					file, err := os.Create(out)
					if err != nil {
						return err
					}
					defer file.Close()
					w = file
				}
				if err := export.Write(w, format, view, lang, entity); err != nil {
					return err
				}
				e.log.Info("export written", zap.String("entity", entity), zap.String("format", format), zap.String("out", out), zap.Int("rows", len(view.Rows)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "entity to export ("+strings.Join(export.Names(), ", ")+")")
	cmd.Flags().StringVar(&format, "format", export.CSV, "csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file, - for stdout (default {entity}-{date}.{format})")
	cmd.Flags().StringVar(&search, "q", "", "search text")
	cmd.Flags().StringVar(&lang, "lang", "es", "header language (es or en)")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func newCreateUserCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a back-office operator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(e *env, conn *gorm.DB) error {
				u, err := services.NewUserService(conn).Create(cmd.Context(), email, password, name)
				if err != nil {
					return err
				}
				e.log.Info("operator created", zap.String("id", u.ID.String()), zap.String("email", u.Email))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
