package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/snapshot"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

const defaultDBTimeout = config.DefaultDBTimeout

// Options configures Open. A nil Bridge keeps the database purely in memory.
type Options struct {
	Bridge   *snapshot.Bridge
	Clock    func() time.Time
	Timeout  time.Duration
	PageSize int
	Logger   *zap.Logger
}

// Database is the in-memory register. It holds exactly one SQLite
// connection; every mutation is followed by a snapshot flush.
type Database struct {
	DB       *sql.DB
	bridge   *snapshot.Bridge
	now      func() time.Time
	timeout  time.Duration
	pageSize int
	log      *zap.Logger
}

func Open(ctx context.Context, opts Options) (*Database, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	d := &Database{
		DB:       db,
		bridge:   opts.Bridge,
		now:      opts.Clock,
		timeout:  opts.Timeout,
		pageSize: opts.PageSize,
		log:      opts.Logger,
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.timeout <= 0 {
		d.timeout = defaultDBTimeout
	}
	if d.pageSize <= 0 {
		d.pageSize = config.ItemsPerPage
	}
	if d.log == nil {
		d.log = util.Logger()
	}

	if err := d.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := d.loadSnapshot(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := d.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := d.migrate(ctx); err != nil {
		d.log.Warn("schema upgrade failed", zap.Error(err))
	}
	return d, nil
}

func (d *Database) PingContext(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.DB.Close()
}

// PageSize is the default number of rows per page.
func (d *Database) PageSize() int { return d.pageSize }

// Now is the clock used for added/completed stamps.
func (d *Database) Now() time.Time { return d.now() }

func (d *Database) loadSnapshot(ctx context.Context) error {
	if d.bridge == nil {
		return nil
	}
	image, ok, err := d.bridge.Load(ctx)
	if errors.Is(err, snapshot.ErrCorrupted) {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	if err := d.loadImage(ctx, image, false); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
	}
	d.log.Info("snapshot loaded", zap.String("key", d.bridge.Key()), zap.Int("bytes", len(image)))
	return nil
}

func (d *Database) createSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS problems (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			problem_number TEXT,
			entity TEXT,
			description TEXT,
			reporter TEXT,
			phone TEXT,
			status TEXT,
			added_date TEXT,
			completed_date TEXT
		)`,
	}
	for _, query := range queries {
		if _, err := d.DB.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// migrate upgrades registers created before problem numbers existed.
func (d *Database) migrate(ctx context.Context) error {
	cols, err := d.tableColumns(ctx, "problems")
	if err != nil {
		return err
	}
	if !cols["problem_number"] {
		_, err := d.DB.ExecContext(ctx, "ALTER TABLE problems ADD COLUMN problem_number TEXT")
		if err != nil && !isIgnorableMigrationErr(err) {
			return fmt.Errorf("add problem_number: %w", err)
		}
		d.log.Info("added problem_number column")
	}
	if _, err := d.DB.ExecContext(ctx,
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_problems_problem_number ON problems(problem_number)"); err != nil {
		return fmt.Errorf("create problem_number index: %w", err)
	}
	return nil
}

func (d *Database) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("table info %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Serialize returns the full database image.
func (d *Database) Serialize(ctx context.Context) ([]byte, error) {
	conn, err := d.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	defer conn.Close()

	var image []byte
	err = conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		var err error
		image, err = c.Serialize("main")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return image, nil
}

// Restore replaces the live database with image after checking that it is
// a readable register.
func (d *Database) Restore(ctx context.Context, image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if err := d.loadImage(ctx, image, true); err != nil {
		return err
	}
	if err := d.migrate(ctx); err != nil {
		d.log.Warn("schema upgrade after restore failed", zap.Error(err))
	}
	d.flush(ctx)
	return nil
}

// loadImage deserializes image into a scratch connection, validates it, and
// copies it into the live connection with the online backup API so the live
// database stays growable.
func (d *Database) loadImage(ctx context.Context, image []byte, requireTable bool) error {
	scratch, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return err
	}
	defer scratch.Close()
	scratch.SetMaxOpenConns(1)

	src, err := scratch.Conn(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	err = src.Raw(func(driverConn any) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		return c.Deserialize(image, "main")
	})
	if err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}

	var check string
	if err := src.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&check); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if check != "ok" {
		return fmt.Errorf("%w: integrity check: %s", ErrInvalidImage, check)
	}
	if requireTable {
		var n int
		err := src.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'problems'").Scan(&n)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: no problems table", ErrInvalidImage)
		}
	}

	dst, err := d.DB.Conn(ctx)
	if err != nil {
		return err
	}
	defer dst.Close()

	return dst.Raw(func(dstConn any) error {
		dc, ok := dstConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", dstConn)
		}
		return src.Raw(func(srcConn any) error {
			sc, ok := srcConn.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("unexpected driver connection %T", srcConn)
			}
			bk, err := dc.Backup("main", sc, "main")
			if err != nil {
				return fmt.Errorf("backup init: %w", err)
			}
			if _, err := bk.Step(-1); err != nil {
				_ = bk.Finish()
				return fmt.Errorf("backup step: %w", err)
			}
			return bk.Finish()
		})
	})
}

// Flush writes the current image through the snapshot bridge.
func (d *Database) Flush(ctx context.Context) error {
	if d.bridge == nil {
		return nil
	}
	image, err := d.Serialize(ctx)
	if err != nil {
		return err
	}
	if err := d.bridge.Save(ctx, image); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// flush is Flush for mutation paths: the in-memory change stands even when
// persisting it fails.
func (d *Database) flush(ctx context.Context) {
	if err := d.Flush(ctx); err != nil {
		if errors.Is(err, snapshot.ErrQuotaExceeded) {
			d.log.Warn("snapshot not persisted: quota exceeded", zap.Error(err))
			return
		}
		util.LogError(d.log, "snapshot not persisted", err)
	}
}

// Exec runs a parameterized statement and flushes on success.
func (d *Database) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := withDBContextResult(d, ctx, func(ctx context.Context) (sql.Result, error) {
		res, err := d.DB.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, wrapErr(EntityDatabase, "exec", 0, err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	d.flush(ctx)
	return res, nil
}

// Query runs a parameterized read. The caller closes the rows.
func (d *Database) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(EntityDatabase, "query", 0, err)
	}
	return rows, nil
}

func (d *Database) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		d.rollbackWithLog(tx)
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (d *Database) rollbackWithLog(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		d.log.Error("rollback failed", zap.Error(err))
	}
}

func (d *Database) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}

func (d *Database) withDBContext(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return fn(ctx)
}

func withDBContextResult[T any](d *Database, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return fn(ctx)
}
