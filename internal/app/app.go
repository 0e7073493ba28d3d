// Package app wires the register's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/database"
	"github.com/akyairhashvil/problemtracker/internal/lifecycle"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/report"
	"github.com/akyairhashvil/problemtracker/internal/snapshot"
	"github.com/akyairhashvil/problemtracker/internal/staleness"
	"github.com/akyairhashvil/problemtracker/internal/transfer"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

// Options override pieces of the default wiring.
type Options struct {
	Opener  lifecycle.LinkOpener
	Clock   func() time.Time
	Logger  *zap.Logger
	Storage snapshot.Storage
}

// App owns every long-lived component. Close releases them in reverse order.
type App struct {
	Config   config.Config
	Log      *zap.Logger
	DB       *database.Database
	Bridge   *snapshot.Bridge
	Engine   *lifecycle.Engine
	Checker  *staleness.Checker
	Exporter *transfer.Exporter
	Importer *transfer.Importer

	now     func() time.Time
	closers []func() error
}

// New builds the application. cfg should already have its directories
// resolved.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg, now: opts.Clock}
	if a.now == nil {
		a.now = time.Now
	}

	if opts.Logger != nil {
		a.Log = opts.Logger
		util.SetLogger(a.Log)
	} else {
		logger, closeLog, err := util.InitLogger(util.LogOptions{Level: cfg.Log.Level, Format: cfg.Log.Format, Path: cfg.Log.Path})
		if err != nil {
			return nil, err
		}
		a.Log = logger
		a.closers = append(a.closers, func() error {
			util.SetLogger(nil)
			return closeLog()
		})
	}

	storage := opts.Storage
	if storage == nil {
		s, err := a.openStorage()
		if err != nil {
			a.Close()
			return nil, err
		}
		storage = s
	}
	a.Bridge = snapshot.NewBridge(storage, cfg.Snapshot.Key)

	db, err := database.Open(ctx, database.Options{
		Bridge:   a.Bridge,
		Clock:    a.now,
		PageSize: cfg.PageSize,
		Logger:   a.Log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	a.Engine = lifecycle.NewEngine(db, lifecycle.Options{
		LinkBase: cfg.Notify.LinkBase,
		Message:  cfg.Notify.Message,
		Opener:   opts.Opener,
		Clock:    a.now,
		Logger:   a.Log.Named("lifecycle"),
	})
	a.Checker = staleness.NewChecker(db, staleness.Options{Clock: a.now, Logger: a.Log.Named("staleness")})
	a.Exporter = transfer.NewExporter(db, a.Log.Named("export"))
	a.Importer = transfer.NewImporter(db, transfer.ImporterOptions{Clock: a.now, Logger: a.Log.Named("import")})

	a.Log.Info("register opened",
		zap.String("backend", cfg.Snapshot.Backend),
		zap.String("key", cfg.Snapshot.Key))
	return a, nil
}

func (a *App) openStorage() (snapshot.Storage, error) {
	switch a.Config.Snapshot.Backend {
	case "redis":
		rc := a.Config.Snapshot.Redis
		return snapshot.NewRedisStorage(snapshot.RedisOptions{
			Host:   rc.Host,
			Pass:   rc.Pass,
			TLS:    rc.TLS,
			Prefix: rc.Prefix,
		})
	case "", "local":
		if err := os.MkdirAll(a.Config.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		local, err := snapshot.OpenLocalStorage(filepath.Join(a.Config.DataDir, config.LocalStorageFile), a.Config.Snapshot.QuotaBytes)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, local.Close)
		return local, nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", a.Config.Snapshot.Backend)
	}
}

func (a *App) Now() time.Time { return a.now() }

// ExportCSV writes the CSV report into the reports dir.
func (a *App) ExportCSV(ctx context.Context) (string, error) {
	return a.Exporter.ExportCSV(ctx, a.Config.ReportsDir, a.now())
}

// ExportBackup writes the database image into the reports dir, sealed when
// passphrase is set.
func (a *App) ExportBackup(ctx context.Context, passphrase string) (string, error) {
	return a.Exporter.ExportBackup(ctx, a.Config.ReportsDir, a.now(), passphrase)
}

func (a *App) Import(ctx context.Context, path string) (database.ImportResult, error) {
	return a.Importer.Import(ctx, path)
}

// RestoreFile replaces the register with a backup file.
func (a *App) RestoreFile(ctx context.Context, path, passphrase string) error {
	image, err := transfer.ReadBackup(path, passphrase)
	if err != nil {
		return err
	}
	if err := a.DB.Restore(ctx, image); err != nil {
		return err
	}
	a.Log.Info("register restored", zap.String("file", filepath.Base(path)))
	return nil
}

func (a *App) StaleReport(ctx context.Context) (staleness.Report, error) {
	return a.Checker.Check(ctx, a.now())
}

// WriteReport renders the PDF report into the reports dir.
func (a *App) WriteReport(ctx context.Context) (string, error) {
	problems, err := a.DB.ListProblems(ctx)
	if err != nil {
		return "", err
	}
	stale, err := a.StaleReport(ctx)
	if err != nil {
		return "", err
	}
	now := a.now()
	path := filepath.Join(a.Config.ReportsDir, util.DatedFileName(config.PDFReportPrefix, now, ".pdf"))
	if err := report.WritePDF(path, problems, stale, report.Options{FontPath: a.Config.Report.FontPath, GeneratedAt: now}); err != nil {
		return "", err
	}
	a.Log.Info("pdf report written", zap.String("path", path), zap.Int("rows", len(problems)))
	return path, nil
}

// Summary returns the header counters.
func (a *App) Summary(ctx context.Context) (models.Stats, error) {
	return a.DB.CountByStatus(ctx)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
