package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/kavyakala/kavyakala/auth"
	"github.com/kavyakala/kavyakala/config"
	"github.com/kavyakala/kavyakala/logger"
	"github.com/kavyakala/kavyakala/mailer"
	"github.com/kavyakala/kavyakala/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := openDatabase(cfg.DSN)
	if err != nil {
		zl.Error("Database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	if err := createSchema(ctx, db); err != nil {
		zl.Error("Schema creation failed", "error", err)
		os.Exit(1)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	auther := auth.NewAuthenticator(repo, cfg).WithLogger(zl)

	var mail auth.Mailer
	if cfg.MailConfigured() {
		mail, err = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		}, zl)
		if err != nil {
			zl.Error("Mailer setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		zl.Warn("SMTP not configured, outbound mail goes to the log")
		mail = mailer.NewLogMailer(zl)
	}

	if err := seedAdmin(ctx, cfg, repo, zl); err != nil {
		zl.Error("Admin seeding failed", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, zl, repo, auther, mail)

	go func() {
		zl.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.Listen(cfg.HTTPAddr); err != nil {
			zl.Error("HTTP server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down")
	if err := srv.Shutdown(); err != nil {
		zl.Error("Shutdown error", "error", err)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	return db, nil
}

func createSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// seedAdmin bootstraps the initial admin when SEED_ADMIN_PASSWORD is set.
// Safe to run on every start, it is a no-op once any admin exists.
func seedAdmin(ctx context.Context, cfg *config.Config, repo auth.RepositoryManager, zl auth.Logger) error {
	if cfg.SeedAdminPassword == "" {
		zl.Debug("SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	handler := auth.NewSeedAdminHandler(repo, zl)

	return handler.Execute(ctx, auth.SeedAdminMessage{
		Name:     cfg.SeedAdminName,
		Email:    cfg.SeedAdminEmail,
		Handle:   cfg.SeedAdminHandle,
		Password: cfg.SeedAdminPassword,
	})
}
