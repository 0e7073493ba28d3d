package transfer

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akyairhashvil/problemtracker/internal/database"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

// ImportTarget applies a batch atomically.
type ImportTarget interface {
	ImportProblems(ctx context.Context, rows []database.ImportRow) (database.ImportResult, error)
}

type Importer struct {
	target ImportTarget
	now    func() time.Time
	loc    *time.Location
	log    *zap.Logger
}

type ImporterOptions struct {
	Clock    func() time.Time
	Location *time.Location
	Logger   *zap.Logger
}

func NewImporter(target ImportTarget, opts ImporterOptions) *Importer {
	i := &Importer{target: target, now: opts.Clock, loc: opts.Location, log: opts.Logger}
	if i.now == nil {
		i.now = time.Now
	}
	if i.loc == nil {
		i.loc = time.Local
	}
	if i.log == nil {
		i.log = util.Logger()
	}
	return i
}

// Import reads path and applies every row in one transaction. Rows whose
// problem number already exists update that record.
func (i *Importer) Import(ctx context.Context, path string) (database.ImportResult, error) {
	log := i.log.With(zap.String("batch", uuid.NewString()), zap.String("file", filepath.Base(path)))

	table, err := ReadFile(path)
	if err != nil {
		log.Warn("import read failed", zap.Error(err))
		return database.ImportResult{}, err
	}
	if len(table.Records) == 0 {
		return database.ImportResult{}, ErrEmptyImport
	}
	rows, err := MapRecords(table.Records, i.now(), i.loc)
	if err != nil {
		log.Warn("import rejected", zap.Error(err))
		return database.ImportResult{}, err
	}

	res, err := i.target.ImportProblems(ctx, rows)
	if err != nil {
		var rowErr *database.ImportRowError
		if errors.As(err, &rowErr) {
			err = &ImportError{Row: rowErr.Row, Number: rowErr.Number, Err: rowErr.Err}
		}
		log.Warn("import rolled back", zap.Error(err))
		return database.ImportResult{}, err
	}
	log.Info("import applied",
		zap.Int("rows", len(rows)),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated))
	return res, nil
}
